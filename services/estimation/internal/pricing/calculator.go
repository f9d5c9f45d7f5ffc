// Package pricing computes price bands for jobs from category base rates,
// a time-of-week surge and caller-supplied or default quantities.
//
// Nothing here returns an error. Unknown categories use a fallback estimate
// and unparseable timestamps get a neutral surge. Negative or NaN quantities
// flow through the arithmetic unchanged.
package pricing

import (
	"math"
	"strings"
	"time"

	"souk/services/estimation/internal/models"
)

const neutralSurgePercent = 100

// Request carries the inputs of one estimate. Km and Pax are nil when the
// caller did not supply them.
type Request struct {
	City     string
	Category models.Category
	Time     string
	Km       *float64
	Pax      *int
}

// Calculator is immutable after construction and safe for concurrent use.
type Calculator struct {
	rates  Rates
	market Market
}

func NewCalculator(rates Rates, market Market) *Calculator {
	if market.Location == nil {
		market.Location = time.UTC
	}
	return &Calculator{rates: rates, market: market}
}

// Currency returns the unit every band is quoted in.
func (c *Calculator) Currency() string {
	return c.market.Currency
}

// Estimate returns the price band for req. City is carried for callers but
// does not change the rates.
func (c *Calculator) Estimate(req Request) models.PriceBand {
	if req.Category == models.CategoryFinancing {
		return models.PriceBand{
			Low:      0,
			High:     0,
			Currency: c.market.Currency,
			Factors:  models.Factors{Base: 0, Surge: 1},
		}
	}

	surgePercent := neutralSurgePercent
	if at, ok := ParseTimestamp(req.Time, c.market.Location); ok {
		surgePercent = c.surgePercent(at)
	}

	base := c.rates.Base[req.Category]
	point := c.pointEstimate(req, base)

	surged := roundHalfUp(point * float64(surgePercent) / 100)
	band := models.PriceBand{
		Low:      roundHalfUp(float64(surged) * float64(c.rates.LowPercent) / 100),
		High:     roundHalfUp(float64(surged) * float64(c.rates.HighPercent) / 100),
		Currency: c.market.Currency,
		Factors: models.Factors{
			Base:  base,
			Surge: float64(surgePercent) / 100,
		},
	}
	if req.Km != nil {
		km := *req.Km
		band.Factors.Distance = &km
	}
	return band
}

func (c *Calculator) pointEstimate(req Request, base float64) float64 {
	switch req.Category {
	case models.CategoryTransport:
		km := c.rates.DefaultKm
		if req.Km != nil {
			km = *req.Km
		}
		return base * km
	case models.CategoryTour:
		pax := c.rates.DefaultPax
		if req.Pax != nil {
			pax = *req.Pax
		}
		return base * float64(pax) * c.rates.TourHours
	case models.CategoryService:
		return base * c.rates.ServiceHours
	default:
		return c.rates.FallbackEstimate
	}
}

// Surge returns the multiplier for a moment: peak hours first, then weekend
// days, else 1. The two never compound.
func (c *Calculator) Surge(at time.Time) float64 {
	return float64(c.surgePercent(at)) / 100
}

func (c *Calculator) surgePercent(at time.Time) int {
	local := at.In(c.market.Location)
	hour := local.Hour()
	for _, w := range c.rates.PeakHours {
		if w.contains(hour) {
			return c.rates.PeakSurgePercent
		}
	}
	if c.market.isWeekend(local.Weekday()) {
		return c.rates.WeekendSurgePercent
	}
	return neutralSurgePercent
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. Values without a zone are
// taken to be in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// roundHalfUp rounds to the nearest integer with ties going up (2.5 -> 3,
// -2.5 -> -2).
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
