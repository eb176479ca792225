// Package haicmetrics computes human-AI-interaction quality metrics from a
// log of timestamped decision records.
//
// The pipeline is: raw records -> normalizer -> window resolver/filter ->
// {interaction KPIs, RT/latency summaries, outcome catalogue} -> merged
// metrics plus a window summary and advisory warnings. Everything is purely
// functional over the in-memory record set: no I/O, no shared state, and
// concurrent calls on disjoint inputs need no synchronization.
package haicmetrics

import (
	"fmt"

	"github.com/haic-lab/haicmetrics/artifact"
	"github.com/haic-lab/haicmetrics/interaction"
	"github.com/haic-lab/haicmetrics/outcome"
	"github.com/haic-lab/haicmetrics/record"
	"github.com/haic-lab/haicmetrics/rtstats"
	"github.com/haic-lab/haicmetrics/window"
)

// Result is the assembled output of one computation.
type Result struct {
	Metrics       map[string]float64 `json:"metrics"`
	WindowSummary window.Summary     `json:"window_summary"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// Compute runs the full pipeline over a decisions artifact, a bare decision
// list, or raw JSON of either shape. See Options for the recognized knobs.
//
// Only structural violations are fatal: wrong container shapes, contradictory
// windows, unparseable window times, unknown profiles. Per-record anomalies
// degrade to neutral metric values and warnings.
func Compute(input any, opts *Options) (*Result, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	rawDecisions, art, err := artifact.Extract(input)
	if err != nil {
		return nil, err
	}

	warnings := validateMinimal(rawDecisions)

	decisions := record.Normalize(rawDecisions)

	decisions, _, summary, err := window.Filter(art, decisions, o.Window)
	if err != nil {
		return nil, err
	}

	metrics := make(map[string]float64)

	vector := interaction.Compute(decisions, interaction.Params{
		BaselineS: o.BaselineS,
		RTMaxS:    o.RTMaxS,
	})
	merge(metrics, vector.Map())
	merge(metrics, rtstats.HumanRT(decisions).Map())
	merge(metrics, rtstats.AILatency(decisions).Map())

	if o.Profile == ProfileFull {
		merge(metrics, outcome.Compute(decisions, o.Vocabulary).Map())
	}

	result := &Result{Metrics: metrics, WindowSummary: summary}
	if !o.OmitWarnings {
		if warnings == nil {
			warnings = []string{}
		}
		result.Warnings = warnings
	}
	return result, nil
}

// ComputeByAgent runs the interaction pipeline once per agent label and
// returns the per-agent metric vectors. Window options apply before the
// records are bucketed.
func ComputeByAgent(input any, opts *Options) (map[string]map[string]float64, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	rawDecisions, art, err := artifact.Extract(input)
	if err != nil {
		return nil, err
	}
	decisions := record.Normalize(rawDecisions)
	decisions, _, _, err = window.Filter(art, decisions, o.Window)
	if err != nil {
		return nil, err
	}

	vectors := interaction.ComputeByAgent(decisions, interaction.Params{
		BaselineS: o.BaselineS,
		RTMaxS:    o.RTMaxS,
	})
	out := make(map[string]map[string]float64, len(vectors))
	for agent, v := range vectors {
		out[agent] = v.Map()
	}
	return out, nil
}

// validateMinimal performs the advisory sanity pass: it never fails, it only
// hints at records that will contribute weak or synthetic signal. Only the
// first few rows are sampled; the point is catching systematically wrong
// inputs, not auditing every record.
func validateMinimal(decisions []map[string]any) []string {
	var warnings []string
	if len(decisions) == 0 {
		return []string{"decisions list is empty"}
	}

	sample := decisions
	if len(sample) > 10 {
		sample = sample[:10]
	}
	for idx, d := range sample {
		hasTime := false
		for _, k := range []string{"timestamp", "ts", "t", "time"} {
			if _, ok := d[k]; ok {
				hasTime = true
				break
			}
		}
		if !hasTime {
			warnings = append(warnings, fmt.Sprintf("decision[%d] has no timestamp key (timestamp/ts/t/time).", idx))
		}

		hasType := false
		for _, k := range []string{"event_type", "action", "type"} {
			if _, ok := d[k]; ok {
				hasType = true
				break
			}
		}
		if !hasType {
			warnings = append(warnings, fmt.Sprintf("decision[%d] has no type key (event_type/action/type).", idx))
		}
	}
	return warnings
}

func merge(dst map[string]float64, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}
