package record

// Alias tables map canonical field names to the key spellings observed
// across source vocabularies, in lookup priority order. This is a pure
// data-driven dispatch table; lookups take the first present, non-empty key.
var aliases = map[string][]string{
	"agent":      {"agent", "actor_type", "actor", "role"},
	"timestamp":  {"timestamp", "time", "created_at", "event_time", "date"},
	"action":     {"action", "event_type", "type", "name"},
	"duration_s": {"duration_s", "human_duration_s", "duration"},
	"latency_ms": {"latency_ms", "inference_ms"},
	"correct":    {"correct", "agreement", "is_correct"},
}

// agentMap canonicalizes known actor labels. Unknown labels pass through
// verbatim so domain-specific roles are not destroyed.
var agentMap = map[string]string{
	"human":  "HUMAN",
	"ai":     "AI",
	"system": "SYS",
}

// lookup returns the first present, non-empty value among the keys.
func lookup(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case string:
			if x == "" {
				continue
			}
		case []any:
			if len(x) == 0 {
				continue
			}
		case map[string]any:
			if len(x) == 0 {
				continue
			}
		}
		return v, true
	}
	return nil, false
}

// lookupAlias resolves a canonical field name through its alias table.
func lookupAlias(fields map[string]any, canonical string) (any, bool) {
	return lookup(fields, aliases[canonical])
}
