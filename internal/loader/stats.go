package loader

import "slices"

// StatsSnapshot aggregates the bulk insert durations of one Load.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

func summarize(durationsMs []int64) StatsSnapshot {
	if len(durationsMs) == 0 {
		return StatsSnapshot{}
	}
	sorted := slices.Clone(durationsMs)
	slices.Sort(sorted)

	var sum int64
	for _, d := range sorted {
		sum += d
	}
	return StatsSnapshot{
		Count: len(sorted),
		MinMs: sorted[0],
		MaxMs: sorted[len(sorted)-1],
		AvgMs: float64(sum) / float64(len(sorted)),
		P50Ms: percentile(sorted, 50),
		P95Ms: percentile(sorted, 95),
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
