package scoring

import (
	"math"

	"github.com/talentradar/talentradar/internal/domain/model"
)

// ComputeStats builds the per-platform rating distribution for a batch.
// StdDev is the population standard deviation. Records without a usable
// rating are excluded from the population. The result is an explicit table
// passed into scoring, never ambient state.
func ComputeStats(records []model.RawRecord) map[model.Platform]model.PlatformStats {
	sums := make(map[model.Platform]float64)
	counts := make(map[model.Platform]int)
	for _, r := range records {
		if !r.HasRating() {
			continue
		}
		sums[r.Platform] += r.Rating
		counts[r.Platform]++
	}

	stats := make(map[model.Platform]model.PlatformStats, len(counts))
	for platform, n := range counts {
		mean := sums[platform] / float64(n)
		var sq float64
		for _, r := range records {
			if r.Platform == platform && r.HasRating() {
				d := r.Rating - mean
				sq += d * d
			}
		}
		stats[platform] = model.PlatformStats{
			Mean:   mean,
			StdDev: math.Sqrt(sq / float64(n)),
			Count:  n,
		}
	}
	return stats
}

// ZScore expresses a rating as standard deviations from its platform mean.
// A zero or undefined deviation (single-sample or constant platform) yields
// 0 rather than a division fault.
func ZScore(rating float64, st model.PlatformStats) float64 {
	if st.StdDev == 0 || st.Count == 0 {
		return 0
	}
	return (rating - st.Mean) / st.StdDev
}
