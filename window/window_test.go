package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haic-lab/haicmetrics/artifact"
	"github.com/haic-lab/haicmetrics/haicerr"
	"github.com/haic-lab/haicmetrics/record"
)

func decisionsAt(ts ...float64) []record.Decision {
	out := make([]record.Decision, len(ts))
	for i := range ts {
		t := ts[i]
		out[i] = record.Decision{T: &t}
	}
	return out
}

func artifactWithStart(start, end float64) *artifact.Artifact {
	return &artifact.Artifact{
		Meta: map[string]any{
			"timestamps": map[string]any{
				"start_time": start,
				"end_time":   end,
			},
		},
	}
}

func TestResolveRelativeWithMetaStart(t *testing.T) {
	art := artifactWithStart(1000, 1300)
	decisions := decisionsAt(1000, 1100, 1200)

	eff, notes, err := Resolve(art, decisions, &Spec{Basis: BasisRelative, Start: float64(60), End: float64(180)})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(1060), *eff.TStartEpoch)
	assert.Equal(t, float64(1180), *eff.TEndEpoch)
	assert.Equal(t, float64(60), *eff.TStartRelS)
	assert.Equal(t, float64(180), *eff.TEndRelS)
	assert.Equal(t, float64(1000), *eff.SessionStartEpoch)
	assert.Empty(t, notes)
}

func TestResolveRelativeFallsBackToMinT(t *testing.T) {
	art := &artifact.Artifact{}
	decisions := decisionsAt(50, 60, 70)

	eff, notes, err := Resolve(art, decisions, &Spec{Basis: BasisRelative, Start: float64(0), End: float64(15)})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(50), *eff.TStartEpoch)
	assert.Equal(t, float64(65), *eff.TEndEpoch)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0], "min(decision.t)")
}

func TestResolveRelativeUnresolvable(t *testing.T) {
	art := &artifact.Artifact{}

	eff, notes, err := Resolve(art, nil, &Spec{Basis: BasisRelative, Start: float64(0), End: float64(10)})
	require.NoError(t, err, "an unresolvable reference is not an error")
	assert.False(t, eff.Resolved())
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[len(notes)-1], "No usable timestamps")
}

func TestResolveRelativeLast(t *testing.T) {
	art := artifactWithStart(1000, 1300)

	eff, _, err := Resolve(art, nil, &Spec{Basis: BasisRelative, Last: float64(120)})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(1180), *eff.TStartEpoch)
	assert.Equal(t, float64(1300), *eff.TEndEpoch)
}

func TestResolveRelativeLastClampsToSessionStart(t *testing.T) {
	art := artifactWithStart(1000, 1050)

	eff, _, err := Resolve(art, nil, &Spec{Basis: BasisRelative, Last: float64(500)})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(1000), *eff.TStartEpoch, "start is clamped to the session start")
	assert.Equal(t, float64(1050), *eff.TEndEpoch)
}

func TestResolveRelativeLastWithoutSessionEnd(t *testing.T) {
	art := &artifact.Artifact{
		Meta: map[string]any{"timestamps": map[string]any{"start_time": float64(100)}},
	}
	decisions := decisionsAt(100, 130, 160)

	eff, _, err := Resolve(art, decisions, &Spec{Basis: BasisRelative, Last: float64(20)})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(140), *eff.TStartEpoch, "end falls back to max(decision.t)")
	assert.Equal(t, float64(160), *eff.TEndEpoch)
}

func TestResolveAbsolute(t *testing.T) {
	eff, _, err := Resolve(&artifact.Artifact{}, nil, &Spec{Basis: BasisAbsolute, Start: float64(500), End: float64(900)})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(500), *eff.TStartEpoch)
	assert.Equal(t, float64(900), *eff.TEndEpoch)
}

func TestResolveAbsoluteISOStrings(t *testing.T) {
	eff, notes, err := Resolve(&artifact.Artifact{}, nil, &Spec{
		Basis: BasisAbsolute,
		Start: "1970-01-01T00:00:10Z",
		End:   "1970-01-01T00:01:00",
	})
	require.NoError(t, err)
	require.True(t, eff.Resolved())
	assert.Equal(t, float64(10), *eff.TStartEpoch)
	assert.Equal(t, float64(60), *eff.TEndEpoch)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0], "assuming UTC")
}

func TestResolveInvalidSpecs(t *testing.T) {
	art := artifactWithStart(0, 100)
	tests := []struct {
		name string
		spec *Spec
		code haicerr.Code
	}{
		{"unknown basis", &Spec{Basis: "sideways"}, haicerr.CodeInvalidWindow},
		{"last with start", &Spec{Basis: BasisRelative, Last: float64(5), Start: float64(0)}, haicerr.CodeInvalidWindow},
		{"relative missing end", &Spec{Basis: BasisRelative, Start: float64(0)}, haicerr.CodeInvalidWindow},
		{"relative non-numeric", &Spec{Basis: BasisRelative, Start: "abc", End: float64(5)}, haicerr.CodeInvalidWindow},
		{"relative end before start", &Spec{Basis: BasisRelative, Start: float64(10), End: float64(5)}, haicerr.CodeInvalidWindow},
		{"absolute missing end", &Spec{Basis: BasisAbsolute, Start: float64(0)}, haicerr.CodeInvalidWindow},
		{"absolute end before start", &Spec{Basis: BasisAbsolute, Start: float64(10), End: float64(5)}, haicerr.CodeInvalidWindow},
		{"absolute bad time", &Spec{Basis: BasisAbsolute, Start: "garbage", End: float64(5)}, haicerr.CodeTimeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Resolve(art, nil, tt.spec)
			require.Error(t, err)
			assert.True(t, haicerr.IsCode(err, tt.code))
		})
	}
}

func TestFilterPassthrough(t *testing.T) {
	art := &artifact.Artifact{Events: []map[string]any{{"t": float64(5)}}}
	decisions := decisionsAt(1, 2, 3)

	outDecisions, outEvents, summary, err := Filter(art, decisions, nil)
	require.NoError(t, err)
	assert.Len(t, outDecisions, 3)
	assert.Len(t, outEvents, 1)
	assert.Equal(t, BasisAbsolute, summary.Basis)
	assert.Equal(t, map[string]any{"mode": "full"}, summary.Requested)
	assert.Equal(t, float64(1), *summary.Effective.TStartEpoch)
	assert.Equal(t, float64(3), *summary.Effective.TEndEpoch)
	assert.Equal(t, float64(2), summary.DurationS)
	assert.Equal(t, 3, summary.Counts.DecisionsUsed)
	assert.Equal(t, 1, summary.Counts.EventsUsed)
}

func TestFilterInclusiveBounds(t *testing.T) {
	art := artifactWithStart(0, 100)
	decisions := decisionsAt(9.999, 10, 25, 40, 40.001)
	art.Events = []map[string]any{
		{"t": float64(10)},
		{"t": float64(41)},
		{"note": "no t"},
	}

	outDecisions, outEvents, summary, err := Filter(art, decisions, &Spec{
		Basis: BasisRelative, Start: float64(10), End: float64(40),
	})
	require.NoError(t, err)
	require.Len(t, outDecisions, 3)
	assert.Equal(t, float64(10), *outDecisions[0].T)
	assert.Equal(t, float64(40), *outDecisions[2].T)
	require.Len(t, outEvents, 1)
	assert.Equal(t, 3, summary.Counts.DecisionsUsed)
	assert.Equal(t, 1, summary.Counts.EventsUsed)
	assert.Equal(t, 5, summary.Counts.DecisionsTotal)
	assert.Equal(t, 3, summary.Counts.EventsTotal)
	assert.Contains(t, summary.Notes[len(summary.Notes)-1], "events missing numeric 't'")
	assert.Equal(t, float64(30), summary.DurationS)
}

func TestFilterUnresolvedSelectsNothing(t *testing.T) {
	art := &artifact.Artifact{}

	outDecisions, outEvents, summary, err := Filter(art, nil, &Spec{
		Basis: BasisRelative, Start: float64(0), End: float64(10),
	})
	require.NoError(t, err)
	assert.Empty(t, outDecisions)
	assert.Empty(t, outEvents)
	assert.Equal(t, 0, summary.Counts.DecisionsUsed)
	assert.Contains(t, summary.Notes[len(summary.Notes)-1], "no items selected")
}

func TestFilterPropagatesResolveError(t *testing.T) {
	_, _, _, err := Filter(&artifact.Artifact{}, nil, &Spec{Basis: "bogus"})
	require.Error(t, err)
	assert.True(t, haicerr.IsCode(err, haicerr.CodeInvalidWindow))
}
