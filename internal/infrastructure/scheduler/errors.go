package scheduler

import "errors"

// ErrRunPanicked is reported when a tenant's run panicked instead of
// returning; the sweep continues with the next tenant.
var ErrRunPanicked = errors.New("reconciliation run panicked")
