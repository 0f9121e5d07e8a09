package normalize

import (
	"math"
	"slices"
)

const (
	outlierPercentile = 0.99
	lowVolumeLiters   = 100.0

	scoreClean     = 1.0
	scoreOutlier   = 0.8
	scoreLowVolume = 0.7
)

// Percentile computes the p-th percentile (0..1) of values using linear
// interpolation over the sorted sequence. An empty input yields NaN.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// qualityFlags holds the per-record output of the batch flagging pass.
type qualityFlags struct {
	isOutlier bool
	score     float64
}

// flagVolume scores one record's liters volume against the batch p99
// threshold. Assignment order matters: a sub-100 outlier ends at 0.7,
// matching the historical last-assignment-wins behavior.
func flagVolume(liters, p99 float64) qualityFlags {
	f := qualityFlags{score: scoreClean}
	if liters > p99 {
		f.isOutlier = true
		f.score = scoreOutlier
	}
	if liters < lowVolumeLiters {
		f.score = scoreLowVolume
	}
	return f
}
