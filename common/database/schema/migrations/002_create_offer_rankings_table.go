package migrations

import "souk/common/database/schema"

var CreateOfferRankingsTable = schema.Migration{
	Version:     2,
	Description: "Create offer_rankings table",
	Up: `
		CREATE TABLE IF NOT EXISTS offer_rankings (
			job_id String,
			offer_id String,
			position UInt32,
			score Float64,
			price Float64,
			ranked_at DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ranked_at)
		ORDER BY (job_id, ranked_at, position)
	`,
	Down: `DROP TABLE IF EXISTS offer_rankings`,
}
