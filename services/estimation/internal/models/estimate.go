package models

import (
	"encoding/json"
	"time"
)

// JobEstimate is the engine output persisted alongside a job.
type JobEstimate struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	Category    Category  `json:"category"`
	City        string    `json:"city"`
	RequestedAt string    `json:"requestedAt"`
	Fingerprint string    `json:"fingerprint"`
	Spec        JobSpec   `json:"spec"`
	PriceBand   PriceBand `json:"priceBand"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e JobEstimate) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *JobEstimate) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
