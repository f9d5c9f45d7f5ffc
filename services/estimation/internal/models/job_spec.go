package models

// JobSpec holds the fields extracted from a job's free-text description.
// Only Description is guaranteed to be set.
type JobSpec struct {
	Description   string   `json:"description"`
	Pickup        string   `json:"pickup,omitempty"`
	Dropoff       string   `json:"dropoff,omitempty"`
	Pax           *int     `json:"pax,omitempty"`
	PreferredTime string   `json:"preferredTime,omitempty"`
	Km            *float64 `json:"km,omitempty"`
}

// PriceBand is the estimated fair-price interval for a job, in whole
// currency units.
type PriceBand struct {
	Low      int     `json:"low"`
	High     int     `json:"high"`
	Currency string  `json:"currency"`
	Factors  Factors `json:"factors"`
}

// Factors records what went into a PriceBand. Distance is only present when
// the caller supplied a distance.
type Factors struct {
	Base     float64  `json:"base"`
	Surge    float64  `json:"surge"`
	Distance *float64 `json:"distance,omitempty"`
}

// Midpoint returns the centre of the band.
func (b PriceBand) Midpoint() float64 {
	return float64(b.Low+b.High) / 2
}
