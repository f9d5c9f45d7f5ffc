package migrations

import "souk/common/database/schema"

var CreateJobEstimatesTable = schema.Migration{
	Version:     1,
	Description: "Create job_estimates table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_estimates (
			id UUID,
			job_id String,
			category LowCardinality(String),
			city String,
			requested_at String,
			fingerprint UUID,
			description String,
			pickup String,
			dropoff String,
			pax Nullable(Int32),
			preferred_time String,
			km Nullable(Float64),
			band_low Int64,
			band_high Int64,
			currency LowCardinality(String),
			factor_base Float64,
			factor_surge Float64,
			factor_distance Nullable(Float64),
			created_at DateTime64(3),
			updated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(updated_at)
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (job_id, id)
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS job_estimates`,
}
