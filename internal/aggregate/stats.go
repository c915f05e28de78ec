package aggregate

import (
	"math"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

// ComputeStats summarizes the totals of set.
//
// Average is rounded to one decimal place. SecondHighest is the largest
// total strictly below Highest and is nil when fewer than two distinct
// totals exist.
func ComputeStats(set datmerge.RecordSet) datmerge.Stats {
	stats := datmerge.Stats{Identities: set.Len()}
	if set.Len() == 0 {
		return stats
	}

	highest := math.Inf(-1)
	second := math.Inf(-1)
	for _, e := range set.Entries {
		stats.GrandTotal += e.Total
		switch {
		case e.Total > highest:
			second = highest
			highest = e.Total
		case e.Total < highest && e.Total > second:
			second = e.Total
		}
	}

	stats.Highest = highest
	if !math.IsInf(second, -1) {
		stats.SecondHighest = &second
	}
	stats.Average = math.Round(stats.GrandTotal/float64(set.Len())*10) / 10

	return stats
}
