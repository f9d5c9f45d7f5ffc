// Package ranking orders a job's offers for display to the buyer.
package ranking

import (
	"math"
	"sort"

	"souk/services/estimation/internal/models"
)

// Scorer rates an offer against the job's price band. Higher is better.
// Implementations must be deterministic and free of side effects.
type Scorer func(offer models.Offer, band models.PriceBand) float64

// Rank returns a copy of offers sorted by descending AIScore with 1-based
// positions assigned. Offers with equal scores keep their input order.
// Missing and NaN scores count as zero. The input slice is not modified.
func Rank(offers []models.Offer) []models.Offer {
	keys := make([]float64, len(offers))
	for i, o := range offers {
		keys[i] = o.Score()
	}
	return order(offers, keys)
}

// ScoreAndRank orders every offer by scorer(offer, band) instead of its
// AIScore. Only Position changes on the returned offers. A nil scorer falls
// back to Rank.
func ScoreAndRank(offers []models.Offer, band models.PriceBand, scorer Scorer) []models.Offer {
	if scorer == nil {
		return Rank(offers)
	}
	keys := make([]float64, len(offers))
	for i, o := range offers {
		keys[i] = scorer(o, band)
	}
	return order(offers, keys)
}

// order sorts a copy of offers by keys, highest first.
func order(offers []models.Offer, keys []float64) []models.Offer {
	idx := make([]int, len(offers))
	for i := range idx {
		idx[i] = i
		if math.IsNaN(keys[i]) {
			keys[i] = 0
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] > keys[idx[b]]
	})

	ranked := make([]models.Offer, len(offers))
	for pos, i := range idx {
		ranked[pos] = offers[i]
		ranked[pos].Position = pos + 1
	}
	return ranked
}
