package service

import "errors"

// ErrNotStarted is returned when a grading or leaderboard operation is
// invoked before Start has built the service components.
var ErrNotStarted = errors.New("service not started")
