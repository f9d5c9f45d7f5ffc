package migrations

import "souk/common/database/schema"

// All lists every migration in version order.
var All = []schema.Migration{
	CreateJobEstimatesTable,
	CreateOfferRankingsTable,
}
