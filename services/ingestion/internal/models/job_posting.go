package models

import (
	"encoding/json"
	"strings"
)

// JobPosting is a job as exported by the marketplace, in the shape the
// estimation service consumes from jobs.posted.
type JobPosting struct {
	JobID     string `json:"jobId"`
	FreeText  string `json:"freeText"`
	Category  string `json:"category"`
	City      string `json:"city"`
	Timestamp string `json:"timestamp"`
}

func (p JobPosting) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *JobPosting) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

// Valid reports whether the posting can be sent for estimation.
func (p JobPosting) Valid() bool {
	return strings.TrimSpace(p.JobID) != ""
}
