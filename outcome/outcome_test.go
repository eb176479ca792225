package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haic-lab/haicmetrics/record"
)

func norm(raws ...map[string]any) []record.Decision {
	return record.Normalize(raws)
}

func TestComputeExplicitResultLabels(t *testing.T) {
	rows := norm(
		map[string]any{"t": float64(0), "ai_detection_results": "true_positive"},
		map[string]any{"t": float64(1), "ai_detection_results": "TP"},
		map[string]any{"t": float64(2), "ai_detection_results": "false_positive"},
		map[string]any{"t": float64(3), "ai_detection_results": "true_negative"},
		map[string]any{"t": float64(4), "ai_detection_results": "false_negative"},
	)
	s := Compute(rows, nil)

	// TP=2 FP=1 TN=1 FN=1 over 5 resolvable records.
	assert.InDelta(t, 3.0/5.0, s.PredictionAccuracy, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.Recall, 1e-9)
}

func TestComputeInferredPairs(t *testing.T) {
	rows := norm(
		map[string]any{"t": float64(0), "prediction": "defect", "ground_truth": "defect"},   // TP
		map[string]any{"t": float64(1), "prediction": "defect", "ground_truth": "ok"},       // FP
		map[string]any{"t": float64(2), "prediction": "ok", "ground_truth": "ok"},           // TN
		map[string]any{"t": float64(3), "prediction": "ok", "ground_truth": "defect"},       // FN
		map[string]any{"t": float64(4), "prediction": "mystery", "ground_truth": "strange"}, // unresolvable
	)
	s := Compute(rows, nil)

	assert.InDelta(t, 2.0/5.0, s.PredictionAccuracy, 1e-9)
	assert.InDelta(t, 0.5, s.Precision, 1e-9)
	assert.InDelta(t, 0.5, s.Recall, 1e-9)

	// Agreement compares canonical labels directly, including the pair the
	// vocabulary could not classify.
	assert.InDelta(t, 2.0/5.0, s.HumanAIAgreementRate, 1e-9)
}

func TestComputeNumericAndBooleanLabels(t *testing.T) {
	rows := norm(
		map[string]any{"t": float64(0), "prediction": float64(1), "ground_truth": float64(1)},
		map[string]any{"t": float64(1), "prediction": true, "ground_truth": false},
	)
	s := Compute(rows, nil)
	assert.InDelta(t, 0.5, s.PredictionAccuracy, 1e-9)
	assert.InDelta(t, 0.5, s.Precision, 1e-9)
	assert.InDelta(t, 1.0, s.Recall, 1e-9)
}

func TestComputeOverallAccuracy(t *testing.T) {
	rows := norm(
		map[string]any{"t": float64(0), "correct": true},
		map[string]any{"t": float64(1), "is_correct": true},
		map[string]any{"t": float64(2), "result": "correct"},
		map[string]any{"t": float64(3), "result": "incorrect"},
	)
	s := Compute(rows, nil)
	assert.InDelta(t, 75.0, s.OverallAccuracyPct, 1e-9)
}

func TestComputeTrustScore(t *testing.T) {
	rows := norm(
		map[string]any{"t": float64(0), "trust_rating": float64(4), "trust_scale_maximum": float64(5)},
		map[string]any{"t": float64(1), "trust_rating": float64(3), "trust_scale_maximum": float64(5)},
	)
	s := Compute(rows, nil)
	assert.InDelta(t, 70.0, s.TrustScore, 1e-9)
}

func TestComputeCustomVocabulary(t *testing.T) {
	vocab := &Vocabulary{
		Positive: map[string]struct{}{"fraud": {}},
		Negative: map[string]struct{}{"legit": {}},
	}
	rows := norm(
		map[string]any{"t": float64(0), "prediction": "fraud", "ground_truth": "fraud"},
		map[string]any{"t": float64(1), "prediction": "legit", "ground_truth": "fraud"},
	)
	s := Compute(rows, vocab)
	assert.InDelta(t, 0.5, s.PredictionAccuracy, 1e-9)
	assert.InDelta(t, 0.5, s.Recall, 1e-9)
	assert.InDelta(t, 1.0, s.Precision, 1e-9)
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, nil)
	assert.Equal(t, Summary{}, s)
	require.Contains(t, s.Map(), "outcome_prediction_accuracy")
}

func TestIsPositive(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		label any
		want  *bool
	}{
		{"Anomaly", boolPtr(true)},
		{"OK", boolPtr(false)},
		{"yes", boolPtr(true)},
		{float64(0), boolPtr(false)},
		{true, boolPtr(true)},
		{"ambiguous", nil},
		{nil, nil},
	}
	for _, tt := range tests {
		got := v.isPositive(tt.label)
		if tt.want == nil {
			assert.Nil(t, got, "label %v", tt.label)
		} else {
			require.NotNil(t, got, "label %v", tt.label)
			assert.Equal(t, *tt.want, *got, "label %v", tt.label)
		}
	}
}
