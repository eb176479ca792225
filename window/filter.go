package window

import (
	"github.com/haic-lab/haicmetrics/artifact"
	"github.com/haic-lab/haicmetrics/record"
	"github.com/haic-lab/haicmetrics/timeparse"
)

// Counts are the before/after tallies of a filter pass.
type Counts struct {
	DecisionsTotal int `json:"decisions_total"`
	DecisionsUsed  int `json:"decisions_used"`
	EventsTotal    int `json:"events_total"`
	EventsUsed     int `json:"events_used"`
}

// Summary is the immutable diagnostic record of one window application.
type Summary struct {
	Basis     string         `json:"basis"`
	Requested map[string]any `json:"requested"`
	Effective Effective      `json:"effective"`
	Counts    Counts         `json:"counts"`
	DurationS float64        `json:"duration_s"`
	Notes     []string       `json:"notes"`
}

// Filter applies a window spec to the decision stream and, when the artifact
// carries an events list, to that parallel stream as well (events stay
// diagnostic-only; they never feed metric computation).
//
// A nil spec is a passthrough: the summary reports min/max decision t as the
// effective range with full retention. Resolved bounds are inclusive on both
// ends; rows without numeric t are excluded and noted.
func Filter(art *artifact.Artifact, decisions []record.Decision, spec *Spec) ([]record.Decision, []map[string]any, Summary, error) {
	var events []map[string]any
	if art != nil {
		events = art.Events
	}

	counts := Counts{DecisionsTotal: len(decisions), EventsTotal: len(events)}

	if spec == nil {
		lo, hi := minMaxT(decisions)
		duration := 0.0
		if lo != nil && hi != nil {
			duration = *hi - *lo
		}
		counts.DecisionsUsed = counts.DecisionsTotal
		counts.EventsUsed = counts.EventsTotal
		return decisions, events, Summary{
			Basis:     BasisAbsolute,
			Requested: map[string]any{"mode": "full"},
			Effective: Effective{TStartEpoch: lo, TEndEpoch: hi},
			Counts:    counts,
			DurationS: duration,
			Notes:     []string{},
		}, nil
	}

	eff, notes, err := Resolve(art, decisions, spec)
	if err != nil {
		return nil, nil, Summary{}, err
	}

	if !eff.Resolved() {
		notes = append(notes, "Window bounds could not be resolved; no items selected.")
		return nil, nil, Summary{
			Basis:     spec.Basis,
			Requested: spec.requested(),
			Effective: eff,
			Counts:    counts,
			DurationS: 0,
			Notes:     notes,
		}, nil
	}

	tStart, tEnd := *eff.TStartEpoch, *eff.TEndEpoch

	var decisionsOut []record.Decision
	missingTDecisions := 0
	for i := range decisions {
		t := decisions[i].T
		if t == nil {
			missingTDecisions++
			continue
		}
		if tStart <= *t && *t <= tEnd {
			decisionsOut = append(decisionsOut, decisions[i])
		}
	}

	var eventsOut []map[string]any
	missingTEvents := 0
	for _, e := range events {
		t, ok := timeparse.AsFloat(e["t"])
		if !ok {
			missingTEvents++
			continue
		}
		if tStart <= t && t <= tEnd {
			eventsOut = append(eventsOut, e)
		}
	}

	if missingTDecisions > 0 {
		notes = append(notes, noteExcluded("decisions", missingTDecisions))
	}
	if missingTEvents > 0 {
		notes = append(notes, noteExcluded("events", missingTEvents))
	}

	counts.DecisionsUsed = len(decisionsOut)
	counts.EventsUsed = len(eventsOut)
	if notes == nil {
		notes = []string{}
	}

	return decisionsOut, eventsOut, Summary{
		Basis:     spec.Basis,
		Requested: spec.requested(),
		Effective: eff,
		Counts:    counts,
		DurationS: tEnd - tStart,
		Notes:     notes,
	}, nil
}
