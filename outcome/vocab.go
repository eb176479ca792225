package outcome

// fieldAliases are the outcome-specific key spellings, lookup-priority order.
var fieldAliases = map[string][]string{
	"result_label": {"ai_detection_results", "result", "outcome_label"},
	"prediction":   {"prediction", "predicted", "pred_label", "ai_label", "ai_decision", "ai_suggestion"},
	"ground_truth": {"ground_truth", "true_label", "label", "human_label", "human_decision", "op_decision"},
	"outcome_bool": {"correct", "is_correct", "agreement"},

	"result_correct_str":  {"result", "outcome"},
	"trust_rating":        {"trust_rating"},
	"trust_scale_maximum": {"trust_scale_maximum"},
}

// Vocabulary decides which label strings count as positive or negative when
// inferring confusion cells. The default table is tuned to the radiology and
// manufacturing logs this engine grew up on; other domains should supply
// their own rather than trust it as universal.
type Vocabulary struct {
	Positive map[string]struct{}
	Negative map[string]struct{}
}

// DefaultVocabulary returns the stock positive/negative label table.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Positive: set("positive", "pos", "yes", "1", "true", "flagged", "rejected",
			"anomaly", "error", "issue", "defect", "unsafe", "invalid"),
		Negative: set("negative", "neg", "no", "0", "false", "accepted", "ok",
			"valid", "secure", "correct", "safe"),
	}
}

// correctTokens are strings meaning "correct outcome".
var correctTokens = set("correct", "true", "1")

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}
