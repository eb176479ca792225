package interaction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haic-lab/haicmetrics/record"
)

func norm(raws ...map[string]any) []record.Decision {
	return record.Normalize(raws)
}

func TestComputeEmptyInputIsNeutral(t *testing.T) {
	v := Compute(nil, Params{})
	assert.Equal(t, 0.0, v.F)
	assert.Equal(t, 0.0, v.D)
	assert.Equal(t, 0.0, v.HCL, "no timing signal pins the mean to rt_max")
	assert.Equal(t, 1.0, v.Tr, "no labels means no evidence of distrust")
	assert.Equal(t, 0.0, v.A)
	assert.Equal(t, 0.0, v.S)
	assert.Equal(t, 0.0, v.EL)
	assert.Equal(t, 1.0, v.EfficiencyScore)
}

func TestComputeFrequencyAndDuration(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "duration_s": float64(2)},
		map[string]any{"agent": "ai", "t": float64(30), "duration_s": float64(4)},
		map[string]any{"agent": "human", "t": float64(60), "duration_s": float64(6)},
	)
	v := Compute(rows, Params{})

	// 3 interactions over a 60 s span.
	assert.InDelta(t, 3.0, v.F, 1e-9)
	assert.InDelta(t, 4.0, v.D, 1e-9)
}

func TestComputeExplicitTotalTime(t *testing.T) {
	total := 120.0
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0)},
		map[string]any{"agent": "ai", "t": float64(10)},
	)
	v := Compute(rows, Params{TotalTimeS: &total})
	assert.InDelta(t, 1.0, v.F, 1e-9)
}

func TestComputeHCL(t *testing.T) {
	// Human response times dominate: mean 2.5 s against the default 5 s cap.
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "duration_s": float64(2)},
		map[string]any{"agent": "human", "t": float64(10), "duration_s": float64(3)},
		map[string]any{"agent": "ai", "t": float64(20), "latency_ms": float64(9000)},
	)
	v := Compute(rows, Params{})
	assert.InDelta(t, 0.5, v.HCL, 1e-9)
}

func TestComputeHCLCustomRTMax(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "duration_s": float64(5)},
	)
	v := Compute(rows, Params{RTMaxS: 10})
	assert.InDelta(t, 0.5, v.HCL, 1e-9)
}

func TestComputeHCLUntimedHumanRowCountsAsZero(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "duration_s": float64(4)},
		map[string]any{"agent": "human", "t": float64(5)},
	)
	v := Compute(rows, Params{})
	// mean([4, 0]) = 2 against the 5 s cap.
	assert.InDelta(t, 0.6, v.HCL, 1e-9)
}

func TestComputeHCLLatencyFallback(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "ai", "t": float64(0), "latency_ms": float64(2500)},
	)
	v := Compute(rows, Params{})
	// No human rows; the 2.5 s value flows in through durations.
	assert.InDelta(t, 0.5, v.HCL, 1e-9)
}

func TestComputeTrust(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "ai", "t": float64(0), "correct": true},
		map[string]any{"agent": "ai", "t": float64(1), "correct": true},
		map[string]any{"agent": "ai", "t": float64(2), "correct": true},
		map[string]any{"agent": "ai", "t": float64(3), "correct": false},
	)
	v := Compute(rows, Params{})
	assert.InDelta(t, 0.75, v.Tr, 1e-9)
}

func TestComputeTrustCountsErrorEvents(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "ai", "t": float64(0), "correct": true},
		map[string]any{"t": float64(1), "event_type": "error"},
	)
	v := Compute(rows, Params{})
	// One correct label plus one explicit error event: 1 error over 2 labeled.
	assert.InDelta(t, 0.5, v.Tr, 1e-9)
}

func TestComputeTrustUnlabeled(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "ai", "t": float64(0)},
		map[string]any{"agent": "human", "t": float64(1)},
	)
	v := Compute(rows, Params{})
	assert.Equal(t, 1.0, v.Tr)
}

func TestComputeAdaptability(t *testing.T) {
	// 10 agent rows, k = ceil(0.2*10) = 2. Early bucket all wrong, late
	// bucket all right: the drift saturates tanh at 1.
	raws := make([]map[string]any, 0, 10)
	for i := 0; i < 10; i++ {
		raws = append(raws, map[string]any{
			"agent": "ai", "t": float64(i), "correct": i >= 2,
		})
	}
	v := Compute(norm(raws...), Params{})
	assert.InDelta(t, 1.0, v.A, 1e-6)
}

func TestComputeAdaptabilityDecline(t *testing.T) {
	raws := make([]map[string]any, 0, 10)
	for i := 0; i < 10; i++ {
		raws = append(raws, map[string]any{
			"agent": "ai", "t": float64(i), "correct": i < 8,
		})
	}
	v := Compute(norm(raws...), Params{})
	// accEarly=1, accLate=0: tanh(-1).
	assert.InDelta(t, math.Tanh(-1), v.A, 1e-9)
}

func TestComputeAdaptabilityUnlabeledIsNeutral(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "ai", "t": float64(0)},
		map[string]any{"agent": "ai", "t": float64(1)},
		map[string]any{"agent": "ai", "t": float64(2)},
	)
	v := Compute(rows, Params{})
	assert.Equal(t, 0.0, v.A)
}

func TestComputeSimilarityKL(t *testing.T) {
	identical := map[string]any{"accept": float64(0.7), "reject": float64(0.3)}
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "probs": identical, "surrogate_probs": identical},
	)
	v := Compute(rows, Params{})
	assert.InDelta(t, 1.0, v.S, 1e-9, "identical distributions have zero divergence")

	rows = norm(
		map[string]any{
			"agent": "human", "t": float64(0),
			"probs":           map[string]any{"accept": float64(0.9), "reject": float64(0.1)},
			"surrogate_probs": map[string]any{"accept": float64(0.1), "reject": float64(0.9)},
		},
	)
	v = Compute(rows, Params{})
	assert.Less(t, v.S, 1.0)
	assert.Greater(t, v.S, 0.0)
}

func TestComputeSimilaritySurrogateFallback(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "action": "accept", "surrogate_action": "accept"},
		map[string]any{"agent": "human", "t": float64(1), "action": "reject", "surrogate_action": "accept"},
	)
	v := Compute(rows, Params{})
	assert.InDelta(t, 0.5, v.S, 1e-9)
}

func TestComputeExcessLatencyAndEfficiency(t *testing.T) {
	baseline := 60.0
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0)},
		map[string]any{"agent": "ai", "t": float64(120)},
	)
	v := Compute(rows, Params{BaselineS: &baseline})
	assert.InDelta(t, 1.0, v.EL, 1e-9)
	assert.InDelta(t, 0.5, v.EfficiencyScore, 1e-9)
}

func TestComputeEfficiencyOffRolePenalty(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "off_role_action": true},
		map[string]any{"agent": "human", "t": float64(10), "off_role_action": true},
	)
	v := Compute(rows, Params{})
	// EL=0 so the base is 1; all rows off-role applies the full penalty.
	assert.InDelta(t, 0.65, v.EfficiencyScore, 1e-9)
}

func TestComputeEfficiencyProgressBonusIsClipped(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0)},
		map[string]any{"t": float64(1), "event_type": "checklist_progress"},
		map[string]any{"agent": "human", "t": float64(10)},
	)
	v := Compute(rows, Params{})
	// Base 1 with a bonus would exceed 1; the score is clipped.
	assert.Equal(t, 1.0, v.EfficiencyScore)
}

func TestComputeByAgent(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "duration_s": float64(2)},
		map[string]any{"agent": "ai", "t": float64(5), "latency_ms": float64(1000)},
		map[string]any{"agent": "human", "t": float64(10), "duration_s": float64(4)},
	)
	byAgent := ComputeByAgent(rows, Params{})
	require.Contains(t, byAgent, "HUMAN")
	require.Contains(t, byAgent, "AI")
	assert.InDelta(t, 3.0, byAgent["HUMAN"].D, 1e-9)
	assert.InDelta(t, 1.0, byAgent["AI"].D, 1e-9)
}

func TestComputeRangesHold(t *testing.T) {
	rows := norm(
		map[string]any{"agent": "human", "t": float64(0), "duration_s": float64(1), "correct": true},
		map[string]any{"agent": "ai", "t": float64(30), "latency_ms": float64(700), "correct": false},
		map[string]any{"t": float64(40), "event_type": "error"},
	)
	v := Compute(rows, Params{})
	assert.GreaterOrEqual(t, v.F, 0.0)
	assert.GreaterOrEqual(t, v.D, 0.0)
	assert.GreaterOrEqual(t, v.HCL, 0.0)
	assert.LessOrEqual(t, v.HCL, 1.0)
	assert.GreaterOrEqual(t, v.Tr, 0.0)
	assert.LessOrEqual(t, v.Tr, 1.0)
	assert.GreaterOrEqual(t, v.A, -1.0)
	assert.LessOrEqual(t, v.A, 1.0)
	assert.GreaterOrEqual(t, v.S, 0.0)
	assert.LessOrEqual(t, v.S, 1.0)
	assert.GreaterOrEqual(t, v.EL, 0.0)
	assert.GreaterOrEqual(t, v.EfficiencyScore, 0.0)
	assert.LessOrEqual(t, v.EfficiencyScore, 1.0)
}
