package record

import (
	"sort"
	"strconv"

	"github.com/haic-lab/haicmetrics/timeparse"
)

// Normalize maps raw records into canonical Decisions and guarantees every
// row a numeric t, sorted ascending.
//
// The t fill is a two-phase pass: first all parseable timestamps are
// collected, then rows still missing t get either an offset from the earliest
// parsed instant (the session reference) or, failing that, a monotonically
// increasing counter scoped to this call. The counter recovers total ordering
// from un-timestamped logs but loses true temporal distance between those
// rows; treat it as sequencing, not wall-clock truth.
func Normalize(raw []map[string]any) []Decision {
	if len(raw) == 0 {
		return nil
	}

	rows := make([]Decision, 0, len(raw))
	var instants []float64

	for _, fields := range raw {
		if fields == nil {
			continue
		}
		d := Decision{Fields: fields}

		if rawAgent, ok := lookupAlias(fields, "agent"); ok {
			label := stringify(rawAgent)
			if mapped, known := agentMap[Canon(label)]; known {
				d.Agent = mapped
			} else {
				d.Agent = label
			}
			d.ActorType = Canon(label)
			d.hasActor = true
		} else if _, ok := fields["agent"]; ok {
			d.hasActor = true
		} else if _, ok := fields["actor_type"]; ok {
			d.hasActor = true
		}

		if ts, ok := lookupAlias(fields, "timestamp"); ok {
			if instant, parsed := timeparse.ParseLenient(ts); parsed {
				d.Instant = &instant
				instants = append(instants, instant)
			}
		}

		if t, ok := timeparse.AsFloat(fields["t"]); ok {
			d.T = &t
		}

		if v, ok := lookupAlias(fields, "action"); ok {
			d.Action = stringify(v)
		}
		if v, ok := lookupAlias(fields, "duration_s"); ok {
			if f, ok := coerceFloat(v); ok {
				d.DurationS = &f
			}
		}
		if v, ok := lookupAlias(fields, "latency_ms"); ok {
			if f, ok := coerceFloat(v); ok {
				d.LatencyMS = &f
			}
		}
		if v, ok := lookupAlias(fields, "correct"); ok {
			if b, isBool := v.(bool); isBool {
				d.Correct = &b
			}
		}

		rows = append(rows, d)
	}

	var sessionRef *float64
	if len(instants) > 0 {
		ref := instants[0]
		for _, v := range instants[1:] {
			if v < ref {
				ref = v
			}
		}
		sessionRef = &ref
	}

	counter := 0.0
	for i := range rows {
		if rows[i].T != nil {
			continue
		}
		if sessionRef != nil && rows[i].Instant != nil {
			t := *rows[i].Instant - *sessionRef
			if t < 0 {
				t = 0
			}
			rows[i].T = &t
			continue
		}
		t := counter
		rows[i].T = &t
		counter++
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].T < *rows[j].T
	})
	return rows
}

// coerceFloat is the tolerant numeric coercion used for timing fields.
// Unparseable values are signal-absent, never an error.
func coerceFloat(v any) (float64, bool) {
	if f, ok := timeparse.AsFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
