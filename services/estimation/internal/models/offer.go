package models

// Offer is a provider's priced response to a job. AIScore is derived
// elsewhere and only used for ordering; Position is assigned by ranking.
type Offer struct {
	ID         string   `json:"id"`
	JobID      string   `json:"jobId,omitempty"`
	ProviderID string   `json:"providerId,omitempty"`
	Price      float64  `json:"price"`
	AIScore    *float64 `json:"aiScore,omitempty"`
	Position   int      `json:"position,omitempty"`
}

// Score returns the offer's score, treating an absent score as zero.
func (o Offer) Score() float64 {
	if o.AIScore == nil {
		return 0
	}
	return *o.AIScore
}
