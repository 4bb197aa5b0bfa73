package align

import "errors"

// ErrSearchTimeout is returned when the orientation search is cancelled
// before exhausting its candidate set. Callers may retry with a coarser
// profile.
var ErrSearchTimeout = errors.New("orientation search timed out")
