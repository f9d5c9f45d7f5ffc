package ranking

import (
	"math"

	"souk/services/estimation/internal/models"
)

// BandDistanceScore is a placeholder scorer: 100 for a price at the band
// midpoint, falling linearly to 0 at one midpoint's distance away. Bands
// without a positive midpoint (financing) score every offer 0.
//
// TODO: replace with the marketplace scoring model once provider rating and
// response time are available on offers.
func BandDistanceScore(offer models.Offer, band models.PriceBand) float64 {
	mid := band.Midpoint()
	if mid <= 0 || math.IsNaN(offer.Price) {
		return 0
	}
	score := 100 * (1 - math.Abs(offer.Price-mid)/mid)
	return math.Max(0, math.Min(100, score))
}
