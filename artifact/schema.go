package artifact

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// decisionsArtifactSchema is the structural contract for an artifact: the
// decision payload itself stays open (alias resolution handles vocabulary),
// only the container shape is pinned.
const decisionsArtifactSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "haic.decisions_artifact",
  "type": "object",
  "required": ["decisions"],
  "properties": {
    "artifact_schema": {"type": "string"},
    "schema_version": {"type": "string"},
    "session_id": {"type": "string"},
    "run_id": {"type": "string"},
    "meta": {
      "type": "object",
      "properties": {
        "timestamps": {
          "type": "object",
          "properties": {
            "start_time": {"type": ["number", "null"]},
            "end_time": {"type": ["number", "null"]}
          }
        }
      }
    },
    "decisions": {
      "type": "array",
      "items": {"type": "object"}
    },
    "events": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("decisions_artifact.schema.json", strings.NewReader(decisionsArtifactSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile("decisions_artifact.schema.json")
}

// ValidateShape checks a decoded artifact document against the structural
// schema. Advisory use only: callers treat failures as fatal input-shape
// problems, never as per-record issues.
func ValidateShape(doc map[string]any) error {
	return compiledSchema.Validate(normalizeForSchema(doc))
}

// normalizeForSchema converts typed sub-slices back to the generic shapes the
// validator expects, since artifacts built in-process use []map[string]any.
func normalizeForSchema(doc map[string]any) any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch typed := v.(type) {
		case []map[string]any:
			generic := make([]any, len(typed))
			for i, obj := range typed {
				generic[i] = obj
			}
			out[k] = generic
		default:
			out[k] = v
		}
	}
	return out
}
