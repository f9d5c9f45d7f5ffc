package models

// JobPostedEvent is published by the job-posting flow when a job is created
// or its estimation inputs are edited.
type JobPostedEvent struct {
	JobID     string `json:"jobId"`
	FreeText  string `json:"freeText"`
	Category  string `json:"category"`
	City      string `json:"city"`
	Timestamp string `json:"timestamp"`
}

// RankRequest asks for a job's offers to be ordered against its band.
type RankRequest struct {
	JobID     string    `json:"jobId"`
	PriceBand PriceBand `json:"priceBand"`
	Offers    []Offer   `json:"offers"`
}

type RankResponse struct {
	JobID  string  `json:"jobId"`
	Offers []Offer `json:"offers"`
}

// ErrorReply is returned to request/reply callers when processing fails.
type ErrorReply struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}
