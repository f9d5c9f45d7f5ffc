package pricing

import (
	"time"

	"souk/services/estimation/internal/models"
)

// HourWindow is a half-open range of local hours [From, To).
type HourWindow struct {
	From int
	To   int
}

func (w HourWindow) contains(hour int) bool {
	return hour >= w.From && hour < w.To
}

// Rates is the read-only rate table used by a Calculator. Multipliers are
// held in whole percent so that band arithmetic rounds predictably.
type Rates struct {
	Base map[models.Category]float64

	DefaultKm    float64
	DefaultPax   int
	TourHours    float64
	ServiceHours float64

	// FallbackEstimate is the point estimate for categories without a formula.
	FallbackEstimate float64

	PeakHours           []HourWindow
	PeakSurgePercent    int
	WeekendSurgePercent int

	LowPercent  int
	HighPercent int
}

func DefaultRates() Rates {
	return Rates{
		Base: map[models.Category]float64{
			models.CategoryTransport: 8,
			models.CategoryTour:      150,
			models.CategoryService:   200,
			models.CategoryFinancing: 0,
		},
		DefaultKm:        20,
		DefaultPax:       1,
		TourHours:        4,
		ServiceHours:     3,
		FallbackEstimate: 500,
		PeakHours: []HourWindow{
			{From: 7, To: 9},
			{From: 17, To: 20},
			{From: 23, To: 24},
			{From: 0, To: 6},
		},
		PeakSurgePercent:    120,
		WeekendSurgePercent: 115,
		LowPercent:          80,
		HighPercent:         125,
	}
}

// Market describes where hours and weekdays are read and what currency
// bands are quoted in.
type Market struct {
	Location    *time.Location
	WeekendDays []time.Weekday
	Currency    string
}

func DefaultMarket() Market {
	loc, err := time.LoadLocation("Africa/Casablanca")
	if err != nil {
		loc = time.UTC
	}
	return Market{
		Location:    loc,
		WeekendDays: []time.Weekday{time.Saturday, time.Sunday},
		Currency:    "MAD",
	}
}

func (m Market) isWeekend(day time.Weekday) bool {
	for _, d := range m.WeekendDays {
		if d == day {
			return true
		}
	}
	return false
}
