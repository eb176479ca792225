package rtstats

import (
	"github.com/haic-lab/haicmetrics/record"
	"github.com/haic-lab/haicmetrics/timeparse"
)

// aiActions is the action vocabulary that marks a row as AI work even when
// its actor label is missing or unconventional.
var aiActions = map[string]struct{}{
	"ai_evaluated": {},
	"classify":     {},
	"forecast":     {},
	"ai_inference": {},
	"ai_decision":  {},
}

// AILatencySummary is the AI latency percentile report, in milliseconds.
type AILatencySummary struct {
	N      int     `json:"ai_latency_n"`
	MeanMS float64 `json:"ai_latency_mean_ms"`
	P50MS  float64 `json:"ai_latency_p50_ms"`
	P90MS  float64 `json:"ai_latency_p90_ms"`
	P95MS  float64 `json:"ai_latency_p95_ms"`
}

// Map flattens the summary into the merged metrics namespace.
func (s AILatencySummary) Map() map[string]float64 {
	return map[string]float64{
		"ai_latency_n":       float64(s.N),
		"ai_latency_mean_ms": s.MeanMS,
		"ai_latency_p50_ms":  s.P50MS,
		"ai_latency_p90_ms":  s.P90MS,
		"ai_latency_p95_ms":  s.P95MS,
	}
}

// AILatency summarizes latencies for rows that are either agent-labeled
// ai/model or carry a known AI action.
func AILatency(rows []record.Decision) AILatencySummary {
	var xs []float64
	for i := range rows {
		agent := rows[i].ActorType
		if agent == "" {
			agent = record.Canon(rows[i].Agent)
		}
		_, aiAction := aiActions[rows[i].ActionCanon()]
		if agent != "ai" && agent != "model" && !aiAction {
			continue
		}
		if ms, ok := latencyMS(&rows[i]); ok {
			xs = append(xs, ms)
		}
	}

	if len(xs) == 0 {
		return AILatencySummary{}
	}
	return AILatencySummary{
		N:      len(xs),
		MeanMS: mean(xs),
		P50MS:  percentile(xs, 0.50),
		P90MS:  percentile(xs, 0.90),
		P95MS:  percentile(xs, 0.95),
	}
}

// latencyMS derives milliseconds: latency_ms verbatim, duration_s scaled,
// else a heuristic on a bare "latency" field where values >= 500 are taken
// as milliseconds already, smaller ones as seconds.
func latencyMS(d *record.Decision) (float64, bool) {
	if d.LatencyMS != nil {
		return *d.LatencyMS, true
	}
	if d.DurationS != nil {
		return *d.DurationS * 1000.0, true
	}
	if v, ok := timeparse.AsFloat(d.Fields["latency"]); ok {
		if v >= 500 {
			return v, true
		}
		return v * 1000.0, true
	}
	return 0, false
}
