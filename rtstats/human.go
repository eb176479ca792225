package rtstats

import "github.com/haic-lab/haicmetrics/record"

// humanActorLabels are the actor spellings accepted as human respondents.
var humanActorLabels = map[string]struct{}{
	"human":       {},
	"operator":    {},
	"radiologist": {},
}

// HumanRTSummary is the human response-time percentile report, in seconds.
type HumanRTSummary struct {
	N     int     `json:"human_rt_n"`
	MeanS float64 `json:"human_rt_mean_s"`
	P50S  float64 `json:"human_rt_p50_s"`
	P90S  float64 `json:"human_rt_p90_s"`
	P95S  float64 `json:"human_rt_p95_s"`
}

// Map flattens the summary into the merged metrics namespace.
func (s HumanRTSummary) Map() map[string]float64 {
	return map[string]float64{
		"human_rt_n":      float64(s.N),
		"human_rt_mean_s": s.MeanS,
		"human_rt_p50_s":  s.P50S,
		"human_rt_p90_s":  s.P90S,
		"human_rt_p95_s":  s.P95S,
	}
}

// HumanRT summarizes response times for human-attributable rows. The actor
// filter is permissive: rows with no actor label at all are kept, on the
// grounds that bare timing logs are usually human-side.
func HumanRT(rows []record.Decision) HumanRTSummary {
	var xs []float64
	for i := range rows {
		label := rows[i].ActorType
		if label == "" {
			label = record.Canon(rows[i].Agent)
		}
		if label != "" {
			if _, ok := humanActorLabels[label]; !ok {
				continue
			}
		}
		if rt, ok := rows[i].RTSeconds(); ok {
			xs = append(xs, rt)
		}
	}

	if len(xs) == 0 {
		return HumanRTSummary{}
	}
	return HumanRTSummary{
		N:     len(xs),
		MeanS: mean(xs),
		P50S:  percentile(xs, 0.50),
		P90S:  percentile(xs, 0.90),
		P95S:  percentile(xs, 0.95),
	}
}
