// Package artifact defines the decisions-artifact boundary shape and its
// loaders. An artifact is what the logging collaborator hands the metric
// engine: session metadata, decision records, and optional diagnostic events.
package artifact

import (
	"encoding/json"

	"github.com/haic-lab/haicmetrics/haicerr"
	"github.com/haic-lab/haicmetrics/timeparse"
)

// Artifact is a materialized decisions artifact.
type Artifact struct {
	ArtifactSchema string           `json:"artifact_schema,omitempty"`
	SchemaVersion  string           `json:"schema_version,omitempty"`
	SessionID      string           `json:"session_id,omitempty"`
	RunID          string           `json:"run_id,omitempty"`
	Meta           map[string]any   `json:"meta,omitempty"`
	Decisions      []map[string]any `json:"decisions"`
	Events         []map[string]any `json:"events,omitempty"`
}

// SessionBounds returns the numeric meta.timestamps.start_time/end_time
// values when present. Non-numeric values are treated as absent.
func (a *Artifact) SessionBounds() (start, end *float64) {
	if a == nil || a.Meta == nil {
		return nil, nil
	}
	ts, ok := a.Meta["timestamps"].(map[string]any)
	if !ok {
		return nil, nil
	}
	if v, ok := timeparse.AsFloat(ts["start_time"]); ok {
		start = &v
	}
	if v, ok := timeparse.AsFloat(ts["end_time"]); ok {
		end = &v
	}
	return start, end
}

// Extract accepts the shapes callers are allowed to hand the orchestrator:
//   - []map[string]any: a bare decision list
//   - map[string]any with a "decisions" list: an artifact
//   - *Artifact / Artifact
//   - []byte / json.RawMessage: raw JSON of either shape
//
// It returns the decision list and, when available, the enclosing artifact.
func Extract(input any) ([]map[string]any, *Artifact, error) {
	switch v := input.(type) {
	case nil:
		return nil, nil, haicerr.New(haicerr.CodeInputShape, "input is nil")
	case []map[string]any:
		return v, nil, nil
	case []any:
		decs, err := toObjectList(v)
		if err != nil {
			return nil, nil, err
		}
		return decs, nil, nil
	case *Artifact:
		if v.Decisions == nil {
			return nil, nil, haicerr.New(haicerr.CodeInputShape, "artifact missing 'decisions' list")
		}
		return v.Decisions, v, nil
	case Artifact:
		return Extract(&v)
	case map[string]any:
		return fromMap(v)
	case json.RawMessage:
		return fromJSON(v)
	case []byte:
		return fromJSON(v)
	default:
		return nil, nil, haicerr.New(haicerr.CodeInputShape,
			"expected a decisions list or an artifact with key 'decisions', got %T", input)
	}
}

func fromMap(m map[string]any) ([]map[string]any, *Artifact, error) {
	rawDecisions, ok := m["decisions"].([]any)
	if !ok {
		if typed, isTyped := m["decisions"].([]map[string]any); isTyped {
			return typed, assemble(m, typed), nil
		}
		return nil, nil, haicerr.New(haicerr.CodeInputShape, "artifact missing 'decisions' list")
	}
	decs, err := toObjectList(rawDecisions)
	if err != nil {
		return nil, nil, err
	}
	return decs, assemble(m, decs), nil
}

func assemble(m map[string]any, decisions []map[string]any) *Artifact {
	a := &Artifact{Decisions: decisions}
	if meta, ok := m["meta"].(map[string]any); ok {
		a.Meta = meta
	}
	if ev, ok := m["events"].([]any); ok {
		for _, e := range ev {
			if obj, isObj := e.(map[string]any); isObj {
				a.Events = append(a.Events, obj)
			}
		}
	} else if typed, ok := m["events"].([]map[string]any); ok {
		a.Events = typed
	}
	if s, ok := m["session_id"].(string); ok {
		a.SessionID = s
	}
	if s, ok := m["run_id"].(string); ok {
		a.RunID = s
	}
	if s, ok := m["schema_version"].(string); ok {
		a.SchemaVersion = s
	}
	return a
}

func fromJSON(raw []byte) ([]map[string]any, *Artifact, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil, haicerr.Wrap(err, haicerr.CodeInputShape, "input is not valid JSON")
	}
	return Extract(v)
}

func toObjectList(items []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, haicerr.New(haicerr.CodeInputShape, "decision[%d] is not an object", i)
		}
		out = append(out, obj)
	}
	return out, nil
}
