// Package testroutes generates synthetic GPS routes and submits them to a
// running grading service, then verifies the resulting leaderboard.
package testroutes

import (
	"time"
)

// Config controls a test run.
type Config struct {
	// BaseURL of the running service, e.g. http://localhost:9080.
	BaseURL string

	// NumRoutes is how many routes to generate and submit.
	NumRoutes int

	// TopN is how many leaderboard entries to fetch at the end.
	TopN int

	// Workers is the number of concurrent submitters.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Verbose enables per-route logging.
	Verbose bool
}

// Stats accumulates counters over a run.
type Stats struct {
	Generated  int64
	Submitted  int64
	Accepted   int64
	Duplicates int64
	Failed     int64
	Elapsed    time.Duration
}
