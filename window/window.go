// Package window resolves time-window specifications to absolute epoch
// bounds and filters decision/event streams against them.
package window

import (
	"fmt"

	"github.com/haic-lab/haicmetrics/artifact"
	"github.com/haic-lab/haicmetrics/haicerr"
	"github.com/haic-lab/haicmetrics/record"
	"github.com/haic-lab/haicmetrics/timeparse"
)

// Spec is a window request. Basis selects the time reference:
//
//	relative: Start/End are seconds offset from the session start, or Last
//	          selects the trailing N seconds of the session. Last is mutually
//	          exclusive with Start/End.
//	absolute: Start/End are epoch seconds or ISO-8601 strings.
type Spec struct {
	Basis string `json:"basis"`
	Start any    `json:"start,omitempty"`
	End   any    `json:"end,omitempty"`
	Last  any    `json:"last,omitempty"`
}

const (
	BasisRelative = "relative"
	BasisAbsolute = "absolute"
)

// Effective holds the resolved absolute bounds plus, for relative windows,
// the offsets they came from.
type Effective struct {
	TStartEpoch       *float64 `json:"t_start_epoch"`
	TEndEpoch         *float64 `json:"t_end_epoch"`
	TStartRelS        *float64 `json:"t_start_rel_s,omitempty"`
	TEndRelS          *float64 `json:"t_end_rel_s,omitempty"`
	SessionStartEpoch *float64 `json:"session_start_epoch,omitempty"`
}

// Resolved reports whether both bounds were established.
func (e Effective) Resolved() bool {
	return e.TStartEpoch != nil && e.TEndEpoch != nil
}

func (s *Spec) requested() map[string]any {
	req := map[string]any{"basis": s.Basis}
	if s.Start != nil {
		req["start"] = s.Start
	}
	if s.End != nil {
		req["end"] = s.End
	}
	if s.Last != nil {
		req["last"] = s.Last
	}
	return req
}

// minMaxT returns the numeric t range across decisions.
func minMaxT(decisions []record.Decision) (lo, hi *float64) {
	for i := range decisions {
		t := decisions[i].T
		if t == nil {
			continue
		}
		if lo == nil || *t < *lo {
			v := *t
			lo = &v
		}
		if hi == nil || *t > *hi {
			v := *t
			hi = &v
		}
	}
	return lo, hi
}

// sessionStart prefers artifact meta.timestamps.start_time, falling back to
// min(decision.t) with a diagnostic note.
func sessionStart(art *artifact.Artifact, decisions []record.Decision, notes *[]string) *float64 {
	metaStart, _ := art.SessionBounds()
	if metaStart != nil {
		return metaStart
	}
	lo, _ := minMaxT(decisions)
	if lo != nil {
		*notes = append(*notes, "Fallback: meta.timestamps.start_time missing; using min(decision.t) as session start.")
		return lo
	}
	*notes = append(*notes, "No usable timestamps found to establish session start.")
	return nil
}

// Resolve computes absolute epoch bounds for a window spec.
//
// An unresolvable relative reference is not an error: the returned Effective
// has nil bounds and the notes explain why, letting the filter select zero
// records. Contradictory or malformed specs fail with INVALID_WINDOW.
func Resolve(art *artifact.Artifact, decisions []record.Decision, spec *Spec) (Effective, []string, error) {
	var notes []string
	var eff Effective

	if spec == nil {
		return eff, notes, haicerr.New(haicerr.CodeInvalidWindow, "window spec is nil")
	}
	if spec.Basis != BasisRelative && spec.Basis != BasisAbsolute {
		return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
			"window basis must be %q or %q, got %q", BasisRelative, BasisAbsolute, spec.Basis)
	}

	hasStart := spec.Start != nil
	hasEnd := spec.End != nil
	hasLast := spec.Last != nil

	if spec.Basis == BasisRelative {
		if hasLast && (hasStart || hasEnd) {
			return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
				"relative windows take either last=N or start+end, not both")
		}
		var lastS float64
		if hasLast {
			v, ok := timeparse.AsFloat(spec.Last)
			if !ok {
				return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
					"relative window 'last' must be a number of seconds")
			}
			lastS = v
		} else {
			if !hasStart || !hasEnd {
				return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
					"relative window requires both 'start' and 'end' unless using 'last'")
			}
			if _, ok := timeparse.AsFloat(spec.Start); !ok {
				return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
					"relative window 'start' must be a number of seconds")
			}
			if _, ok := timeparse.AsFloat(spec.End); !ok {
				return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
					"relative window 'end' must be a number of seconds")
			}
		}

		t0 := sessionStart(art, decisions, &notes)
		if t0 == nil {
			return eff, notes, nil
		}

		var tStart, tEnd, relStart, relEnd float64
		if hasLast {
			_, metaEnd := art.SessionBounds()
			sessionEnd := metaEnd
			if sessionEnd == nil {
				_, hi := minMaxT(decisions)
				sessionEnd = hi
			}
			if sessionEnd == nil {
				notes = append(notes, "Cannot resolve relative 'last' window end; missing session end time.")
				return eff, notes, nil
			}
			tEnd = *sessionEnd
			tStart = tEnd - lastS
			if tStart < *t0 {
				tStart = *t0
			}
			relStart = tStart - *t0
			relEnd = tEnd - *t0
		} else {
			relStart, _ = timeparse.AsFloat(spec.Start)
			relEnd, _ = timeparse.AsFloat(spec.End)
			if relEnd < relStart {
				return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
					"relative window 'end' must be >= 'start'")
			}
			tStart = *t0 + relStart
			tEnd = *t0 + relEnd
		}

		eff = Effective{
			TStartEpoch:       &tStart,
			TEndEpoch:         &tEnd,
			TStartRelS:        &relStart,
			TEndRelS:          &relEnd,
			SessionStartEpoch: t0,
		}
		return eff, notes, nil
	}

	// Absolute basis.
	if !hasStart || !hasEnd {
		return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
			"absolute window requires both 'start' and 'end' (epoch seconds or ISO strings)")
	}
	tStart, err := timeparse.Parse(spec.Start, &notes)
	if err != nil {
		return eff, notes, err
	}
	tEnd, err := timeparse.Parse(spec.End, &notes)
	if err != nil {
		return eff, notes, err
	}
	if tEnd < tStart {
		return eff, notes, haicerr.New(haicerr.CodeInvalidWindow,
			"absolute window 'end' must be >= 'start'")
	}
	eff = Effective{TStartEpoch: &tStart, TEndEpoch: &tEnd}
	return eff, notes, nil
}

func noteExcluded(kind string, n int) string {
	return fmt.Sprintf("%d %s missing numeric 't' were excluded from windowing.", n, kind)
}
