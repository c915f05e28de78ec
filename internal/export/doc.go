// Package export publishes merge results to PostgreSQL.
//
// An export replaces the whole content of the target table inside one
// transaction, so readers see either the previous result or the new one.
// The table is created on first use:
//
//	CREATE TABLE IF NOT EXISTS combined_salary (
//	    identity_key text PRIMARY KEY,
//	    total_salary double precision NOT NULL
//	)
package export
