package sessionlog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AppendJSONL appends one object as a JSON line, creating parents as needed.
func AppendJSONL(path string, obj any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create log directory for %s", path)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	raw, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrap(err, "failed to marshal log entry")
	}
	if _, err := f.Write(append(raw, '\n')); err != nil {
		return errors.Wrapf(err, "failed to append to %s", path)
	}
	return nil
}

// WriteJSON writes an object as indented JSON, creating parents as needed.
func WriteJSON(path string, obj any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	raw, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal artifact")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
