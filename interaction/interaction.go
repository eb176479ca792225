// Package interaction derives the primary HAIC KPI vector from normalized,
// time-sorted, window-filtered decision records.
//
// Every metric degrades to a documented neutral or zero value on missing
// signal; nothing in here returns an error or performs I/O. These are
// heuristic proxies over whatever the session happened to log, not certified
// estimators.
package interaction

import (
	"math"

	"github.com/haic-lab/haicmetrics/record"
)

// DefaultRTMaxS is the SLA threshold HCL normalizes against.
const DefaultRTMaxS = 5.0

// Soft weights shaping the composite EfficiencyScore.
const (
	offRolePenaltyWeight = 0.35
	progressBonusWeight  = 0.10
)

// Params tunes a computation. Zero value means defaults throughout.
type Params struct {
	// TotalTimeS overrides the session span derived from the data.
	TotalTimeS *float64
	// BaselineS is the reference session duration EL is measured against.
	BaselineS *float64
	// RTMaxS is the SLA seconds threshold for HCL (default 5.0).
	RTMaxS float64
}

func (p Params) rtMax() float64 {
	if p.RTMaxS > 0 {
		return p.RTMaxS
	}
	return DefaultRTMaxS
}

// Vector is the primary KPI vector.
//
//	F   interactions per minute           >= 0
//	D   mean action duration (seconds)    >= 0
//	HCL human-centered latency            [0, 1]
//	Tr  trust / accuracy proxy            [0, 1]
//	A   adaptability (early vs late acc)  [-1, 1]
//	S   policy similarity                 [0, 1]
//	EL  effort loss vs baseline           >= 0
type Vector struct {
	F               float64 `json:"F"`
	D               float64 `json:"D"`
	HCL             float64 `json:"HCL"`
	Tr              float64 `json:"Tr"`
	A               float64 `json:"A"`
	S               float64 `json:"S"`
	EL              float64 `json:"EL"`
	EfficiencyScore float64 `json:"EfficiencyScore"`
}

// Map flattens the vector into the merged metrics namespace.
func (v Vector) Map() map[string]float64 {
	return map[string]float64{
		"F":               v.F,
		"D":               v.D,
		"HCL":             v.HCL,
		"Tr":              v.Tr,
		"A":               v.A,
		"S":               v.S,
		"EL":              v.EL,
		"EfficiencyScore": v.EfficiencyScore,
	}
}

// Compute derives the KPI vector. rows must already be normalized and sorted
// ascending by t (record.Normalize guarantees both).
func Compute(rows []record.Decision, p Params) Vector {
	agentRows := onlyAgentRows(rows)
	n := len(agentRows)

	totalTime := totalTimeS(agentRows, p.TotalTimeS)

	var v Vector

	// F: interactions per minute over agent rows.
	if totalTime > 0 {
		v.F = float64(n) / (totalTime / 60.0)
	}

	// D: mean atomic action duration.
	durs := durations(agentRows)
	v.D = mean(durs)

	// HCL: prefer human rows, then any duration, then latencies; a session
	// with no timing signal at all pins the mean to rt_max, yielding HCL=0.
	rtMax := p.rtMax()
	var meanRT float64
	humanRTs := humanResponseTimes(agentRows)
	latencies := latenciesSeconds(agentRows)
	switch {
	case len(humanRTs) > 0:
		meanRT = mean(humanRTs)
	case len(durs) > 0:
		meanRT = mean(durs)
	case len(latencies) > 0:
		meanRT = mean(latencies)
	default:
		meanRT = rtMax
	}
	v.HCL = clip01(1.0 - meanRT/rtMax)

	// Tr: errors over explicitly labeled rows; explicit error events count as
	// both labeled and erroneous. Nothing labeled means no evidence of
	// distrust, so Tr stays 1.
	labeled, errCount := 0, 0
	for i := range agentRows {
		if agentRows[i].Correct != nil {
			labeled++
			if !*agentRows[i].Correct {
				errCount++
			}
		}
	}
	for i := range rows {
		if rows[i].ActionCanon() == "error" {
			labeled++
			errCount++
		}
	}
	if labeled > 0 {
		v.Tr = clip01(1.0 - float64(errCount)/float64(labeled))
	} else {
		v.Tr = 1.0
	}

	// A: accuracy drift between the first and last ceil(0.2*N) agent rows,
	// squashed through tanh. Unlabeled rows read as the neutral 1.0.
	if n > 0 {
		k := int(math.Ceil(0.2 * float64(n)))
		if k < 1 {
			k = 1
		}
		accEarly := bucketAccuracy(agentRows[:k])
		accLate := bucketAccuracy(agentRows[n-k:])
		denom := math.Max(1e-9, accEarly)
		v.A = math.Tanh((accLate - accEarly) / denom)
	}

	// S: distribution similarity when both sides logged one, else exact-match
	// rate against surrogate actions, else no signal.
	v.S = clip01(similarity(agentRows))

	// EL: session overrun versus the supplied baseline.
	if p.BaselineS != nil && *p.BaselineS > 0 && totalTime > 0 {
		v.EL = math.Max(0, (totalTime-*p.BaselineS) / *p.BaselineS)
	}

	// EfficiencyScore: EL base, softly shaped by off-role and progress rates.
	score := 1.0 / (1.0 + v.EL)

	offRole := 0
	for i := range agentRows {
		if record.Truthy(agentRows[i].Fields["off_role_action"]) {
			offRole++
		}
	}
	offRoleRate := 0.0
	if n > 0 {
		offRoleRate = float64(offRole) / float64(n)
	}

	progress := 0
	for i := range rows {
		switch rows[i].ActionCanon() {
		case "checklist_progress", "progress":
			progress++
		}
	}
	progressRate := 0.0
	if totalTime > 0 {
		progressRate = float64(progress) / math.Max(1.0, totalTime)
	}

	score *= 1.0 - offRolePenaltyWeight*clip01(offRoleRate)
	score *= 1.0 + progressBonusWeight*clip01(progressRate)
	v.EfficiencyScore = clip01(score)

	return v
}

// ComputeByAgent buckets rows by canonical agent and computes a vector per
// bucket.
func ComputeByAgent(rows []record.Decision, p Params) map[string]Vector {
	buckets := make(map[string][]record.Decision)
	for i := range rows {
		buckets[rows[i].Agent] = append(buckets[rows[i].Agent], rows[i])
	}
	out := make(map[string]Vector, len(buckets))
	for agent, bucket := range buckets {
		out[agent] = Compute(bucket, p)
	}
	return out
}

func onlyAgentRows(rows []record.Decision) []record.Decision {
	out := make([]record.Decision, 0, len(rows))
	for i := range rows {
		if rows[i].IsAgentRow() {
			out = append(out, rows[i])
		}
	}
	return out
}

// totalTimeS prefers the explicit override, then the t-range over agent
// rows, then the parsed-instant range.
func totalTimeS(rows []record.Decision, explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	if len(rows) == 0 {
		return 0
	}

	var lo, hi *float64
	for i := range rows {
		t := rows[i].T
		if t == nil {
			continue
		}
		if lo == nil || *t < *lo {
			lo = t
		}
		if hi == nil || *t > *hi {
			hi = t
		}
	}
	if lo != nil && hi != nil && *hi-*lo > 0 {
		return *hi - *lo
	}

	var iLo, iHi *float64
	for i := range rows {
		in := rows[i].Instant
		if in == nil {
			continue
		}
		if iLo == nil || *in < *iLo {
			iLo = in
		}
		if iHi == nil || *in > *iHi {
			iHi = in
		}
	}
	if iLo != nil && iHi != nil && *iHi-*iLo > 0 {
		return *iHi - *iLo
	}
	return 0
}

func durations(rows []record.Decision) []float64 {
	var out []float64
	for i := range rows {
		if rt, ok := rows[i].RTSeconds(); ok {
			out = append(out, math.Max(0, rt))
		}
	}
	return out
}

// humanResponseTimes collects per-row response seconds for human rows.
// A human row without duration falls back to its latency (zero when absent),
// so an untimed human action still anchors the HCL mean.
func humanResponseTimes(rows []record.Decision) []float64 {
	var out []float64
	for i := range rows {
		if !rows[i].IsHuman() {
			continue
		}
		if rows[i].DurationS != nil {
			out = append(out, *rows[i].DurationS)
		} else if rows[i].LatencyMS != nil {
			out = append(out, *rows[i].LatencyMS/1000.0)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func latenciesSeconds(rows []record.Decision) []float64 {
	var out []float64
	for i := range rows {
		if rows[i].LatencyMS != nil {
			out = append(out, *rows[i].LatencyMS/1000.0)
		}
	}
	return out
}

// bucketAccuracy averages per-row correctness over the bucket; rows without
// a label contribute the neutral 1.0.
func bucketAccuracy(rows []record.Decision) float64 {
	if len(rows) == 0 {
		return 1.0
	}
	sum := 0.0
	for i := range rows {
		if rows[i].Correct == nil || *rows[i].Correct {
			sum++
		}
	}
	return sum / float64(len(rows))
}

func similarity(rows []record.Decision) float64 {
	pHuman := aggregateProbs(rows, "probs")
	pSurrogate := aggregateProbs(rows, "surrogate_probs")
	if len(pHuman) > 0 && len(pSurrogate) > 0 {
		return math.Exp(-klDivergence(pHuman, pSurrogate))
	}

	matches, compared := 0, 0
	for i := range rows {
		sv, ok := rows[i].Fields["surrogate_action"]
		if !ok {
			continue
		}
		compared++
		if s, isString := sv.(string); isString && s == rows[i].Action {
			matches++
		}
	}
	if compared > 0 {
		return float64(matches) / float64(compared)
	}
	return 0
}

// aggregateProbs averages the distributions found under key across rows,
// then renormalizes, yielding the session-level policy for that side.
func aggregateProbs(rows []record.Decision, key string) map[string]float64 {
	accum := make(map[string]float64)
	count := 0
	for i := range rows {
		dist := rows[i].Probs(key)
		if dist == nil {
			continue
		}
		for action, p := range normalizeDist(dist) {
			accum[action] += p
		}
		count++
	}
	if count == 0 || len(accum) == 0 {
		return nil
	}
	for k := range accum {
		accum[k] /= float64(count)
	}
	return normalizeDist(accum)
}

func normalizeDist(p map[string]float64) map[string]float64 {
	total := 0.0
	for _, v := range p {
		total += math.Max(0, v)
	}
	out := make(map[string]float64, len(p))
	for k, v := range p {
		if total <= 0 {
			out[k] = 0
		} else {
			out[k] = math.Max(0, v) / total
		}
	}
	return out
}

// klDivergence computes KL(P||Q) over the union of actions, flooring both
// operands at eps to avoid log(0).
func klDivergence(p, q map[string]float64) float64 {
	const eps = 1e-12
	keys := make(map[string]struct{}, len(p)+len(q))
	for k := range p {
		keys[k] = struct{}{}
	}
	for k := range q {
		keys[k] = struct{}{}
	}
	kl := 0.0
	for k := range keys {
		pk := math.Max(eps, p[k])
		qk := math.Max(eps, q[k])
		kl += pk * math.Log(pk/qk)
	}
	return kl
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clip01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
