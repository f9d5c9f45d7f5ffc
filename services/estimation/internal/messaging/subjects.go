package messaging

const (
	JobPostedSubject    = "jobs.posted"
	JobUpdatedSubject   = "jobs.updated"
	JobEstimatedSubject = "jobs.estimated"
	OffersRankSubject   = "offers.rank"
)
