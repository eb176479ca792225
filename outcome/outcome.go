// Package outcome derives confusion-matrix statistics and trust proxies from
// heterogeneous label schemes.
package outcome

import (
	"fmt"
	"strings"

	"github.com/haic-lab/haicmetrics/record"
	"github.com/haic-lab/haicmetrics/timeparse"
)

// Confusion is a one-hot contribution per record; all-zero when nothing
// about the record resolves to a cell.
type Confusion struct {
	TP, FP, TN, FN int
}

func (c Confusion) total() int { return c.TP + c.FP + c.TN + c.FN }

// Summary is the outcome catalogue added under profile "full".
type Summary struct {
	PredictionAccuracy   float64 `json:"outcome_prediction_accuracy"`
	Precision            float64 `json:"outcome_precision"`
	Recall               float64 `json:"outcome_recall"`
	OverallAccuracyPct   float64 `json:"outcome_overall_accuracy_pct"`
	HumanAIAgreementRate float64 `json:"outcome_human_ai_agreement_rate"`
	TrustScore           float64 `json:"outcome_trust_score"`
}

// Map flattens the summary into the merged metrics namespace.
func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"outcome_prediction_accuracy":     s.PredictionAccuracy,
		"outcome_precision":               s.Precision,
		"outcome_recall":                  s.Recall,
		"outcome_overall_accuracy_pct":    s.OverallAccuracyPct,
		"outcome_human_ai_agreement_rate": s.HumanAIAgreementRate,
		"outcome_trust_score":             s.TrustScore,
	}
}

// Compute aggregates the outcome catalogue across rows. A nil vocabulary
// uses the default table.
func Compute(rows []record.Decision, vocab *Vocabulary) Summary {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}

	var agg Confusion
	accuracyDenom := 0
	boolCorrect := 0
	agree, agreeTotal := 0, 0
	trustRatings, trustScale := 0.0, 0.0

	for i := range rows {
		fields := rows[i].Fields

		conf := deriveConfusion(fields, vocab)
		agg.TP += conf.TP
		agg.FP += conf.FP
		agg.TN += conf.TN
		agg.FN += conf.FN
		if n := conf.total(); n > 0 {
			accuracyDenom += n
		} else {
			// Records with no derivable cell still count against accuracy.
			accuracyDenom++
		}

		if isCorrect(fields, vocab) {
			boolCorrect++
		}

		gt, hasGT := pick(fields, "ground_truth")
		pred, hasPred := pick(fields, "prediction")
		if hasGT || hasPred {
			agreeTotal++
			if canonLabel(gt) == canonLabel(pred) {
				agree++
			}
		}

		if v, ok := pick(fields, "trust_rating"); ok {
			if f, ok := toFloat(v); ok {
				trustRatings += f
			}
		}
		if v, ok := pick(fields, "trust_scale_maximum"); ok {
			if f, ok := toFloat(v); ok {
				trustScale += f
			}
		}
	}

	var s Summary
	if accuracyDenom > 0 {
		s.PredictionAccuracy = float64(agg.TP+agg.TN) / float64(accuracyDenom)
	}
	if agg.TP+agg.FP > 0 {
		s.Precision = float64(agg.TP) / float64(agg.TP+agg.FP)
	}
	if agg.TP+agg.FN > 0 {
		s.Recall = float64(agg.TP) / float64(agg.TP+agg.FN)
	}
	if len(rows) > 0 {
		s.OverallAccuracyPct = float64(boolCorrect) / float64(len(rows)) * 100.0
	}
	if agreeTotal > 0 {
		s.HumanAIAgreementRate = float64(agree) / float64(agreeTotal)
	}
	if trustScale > 0 {
		s.TrustScore = trustRatings / trustScale * 100.0
	}
	return s
}

// deriveConfusion resolves one record's confusion cell, in priority order:
// an explicit combined result label, then the (prediction, ground_truth)
// pair through the vocabulary. Unresolvable records contribute all zeros.
func deriveConfusion(fields map[string]any, vocab *Vocabulary) Confusion {
	if v, ok := pick(fields, "result_label"); ok {
		if c, resolved := confusionFromLabel(v); resolved {
			return c
		}
	}

	pred, hasPred := pick(fields, "prediction")
	gt, hasGT := pick(fields, "ground_truth")
	if hasPred && hasGT {
		p := vocab.isPositive(pred)
		g := vocab.isPositive(gt)
		if p != nil && g != nil {
			switch {
			case *p && *g:
				return Confusion{TP: 1}
			case *p && !*g:
				return Confusion{FP: 1}
			case !*p && !*g:
				return Confusion{TN: 1}
			default:
				return Confusion{FN: 1}
			}
		}
	}
	return Confusion{}
}

func confusionFromLabel(v any) (Confusion, bool) {
	switch canonLabel(v) {
	case "true_positive", "tp":
		return Confusion{TP: 1}, true
	case "false_positive", "fp":
		return Confusion{FP: 1}, true
	case "true_negative", "tn":
		return Confusion{TN: 1}, true
	case "false_negative", "fn":
		return Confusion{FN: 1}, true
	}
	return Confusion{}, false
}

// isPositive classifies a label through the vocabulary with numeric/boolean
// fallback; nil means unknown.
func (v *Vocabulary) isPositive(label any) *bool {
	if label == nil {
		return nil
	}
	s := canonLabel(label)
	if _, ok := v.Positive[s]; ok {
		return boolPtr(true)
	}
	if _, ok := v.Negative[s]; ok {
		return boolPtr(false)
	}
	switch s {
	case "1", "true", "t", "yes":
		return boolPtr(true)
	case "0", "false", "f", "no":
		return boolPtr(false)
	}
	return nil
}

// isCorrect derives boolean correctness: explicit flag first, then a
// "correct"/"incorrect" string, then the confusion cell (TP or TN).
func isCorrect(fields map[string]any, vocab *Vocabulary) bool {
	if v, ok := pick(fields, "outcome_bool"); ok {
		return record.Truthy(v)
	}
	if v, ok := pick(fields, "result_correct_str"); ok {
		_, correct := correctTokens[canonLabel(v)]
		return correct
	}
	conf := deriveConfusion(fields, vocab)
	return conf.TP+conf.TN > 0
}

func pick(fields map[string]any, logical string) (any, bool) {
	for _, k := range fieldAliases[logical] {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func canonLabel(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(x))
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
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", v)))
	}
}

func toFloat(v any) (float64, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, true
		}
		return 0, true
	}
	return timeparse.AsFloat(v)
}

func boolPtr(b bool) *bool { return &b }
