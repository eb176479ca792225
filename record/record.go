// Package record normalizes heterogeneous decision records into a canonical
// shape with a guaranteed numeric time axis.
package record

import (
	"fmt"
	"strings"

	"github.com/haic-lab/haicmetrics/timeparse"
)

// Decision is one observed action by an actor, normalized from a raw record.
// Fields holds the original payload untouched; the typed fields are the
// canonical view the metric engines operate on.
type Decision struct {
	// T is the canonical time axis in seconds. Always set after Normalize.
	T *float64
	// Agent is the canonical actor tag (HUMAN/AI/SYS) or the source label
	// passed through verbatim when unrecognized. Empty when absent.
	Agent string
	// ActorType is the lower-cased raw actor label.
	ActorType string
	// Action is the alias-resolved action/event identifier, verbatim.
	Action string
	// DurationS and LatencyMS are optional timing fields.
	DurationS *float64
	LatencyMS *float64
	// Correct is the optional boolean outcome flag.
	Correct *bool
	// Instant is the parsed source timestamp (epoch seconds), kept so later
	// stages can fall back to wall-clock ranges. Nil when no timestamp parsed.
	Instant *float64
	// Fields is the raw record. Never mutated.
	Fields map[string]any

	hasActor bool
}

// IsAgentRow reports whether the record represents an agent action.
func (d *Decision) IsAgentRow() bool {
	return d.hasActor
}

// ActionCanon returns the canonicalized (trimmed, lower-cased) action label.
func (d *Decision) ActionCanon() string {
	return Canon(d.Action)
}

// IsHuman reports whether the row is attributable to a human actor.
func (d *Decision) IsHuman() bool {
	return d.ActorType == "human" || strings.HasPrefix(strings.ToUpper(d.Agent), "H")
}

// RTSeconds derives a response time in seconds: duration_s preferred,
// latency_ms/1000 as fallback. ok=false when neither signal exists.
func (d *Decision) RTSeconds() (float64, bool) {
	if d.DurationS != nil {
		return *d.DurationS, true
	}
	if d.LatencyMS != nil {
		return *d.LatencyMS / 1000.0, true
	}
	return 0, false
}

// Probs returns a probability distribution stored under the given raw field
// (e.g. "probs", "surrogate_probs"), or nil when absent or empty.
func (d *Decision) Probs(key string) map[string]float64 {
	raw, ok := d.Fields[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if f, ok := timeparse.AsFloat(v); ok {
			out[k] = f
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Canon normalizes a free-text label: trim, lower-case, collapse internal
// whitespace, and rewrite '&' to 'and'.
func Canon(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "&", "and")
	return strings.Join(strings.Fields(s), " ")
}

// stringify renders an arbitrary scalar the way source logs spell it.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Truthy mirrors loose-JSON truthiness for flag fields like off_role_action.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "0" && strings.ToLower(x) != "false"
	default:
		if f, ok := timeparse.AsFloat(v); ok {
			return f != 0
		}
		return true
	}
}
