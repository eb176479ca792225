package artifact

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/haic-lab/haicmetrics/haicerr"
)

// LoadJSON reads a JSON object from disk.
func LoadJSON(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrapf(err, "invalid JSON in %s", path)
	}
	return obj, nil
}

// LoadJSONL reads newline-delimited JSON objects, skipping blank lines.
// A malformed line fails the whole load with its line number.
func LoadJSONL(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var rows []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, errors.Wrapf(err, "invalid JSON on line %d of %s", lineNo, path)
		}
		rows = append(rows, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", path)
	}
	return rows, nil
}

// LoadDecisionsArtifact loads a decisions artifact and checks it against the
// structural schema before extraction.
func LoadDecisionsArtifact(path string) (*Artifact, error) {
	obj, err := LoadJSON(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateShape(obj); err != nil {
		return nil, haicerr.Wrap(err, haicerr.CodeInputShape,
			"%s is not a valid decisions artifact", path)
	}
	_, art, err := Extract(obj)
	if err != nil {
		return nil, err
	}
	return art, nil
}
