package reconciliation

import (
	"fmt"

	"github.com/packhouse/backend/internal/domain/shared"
)

var (
	// ErrCheckFailed is returned when a single check fails; the whole run is
	// aborted rather than reporting a partial alert set.
	ErrCheckFailed = shared.NewDomainError("CHECK_FAILED", "Reconciliation check failed")

	// ErrRunPersistence is returned when the transactional write of a run
	// fails; the run is treated as not having happened.
	ErrRunPersistence = shared.NewDomainError("RUN_PERSISTENCE_FAILED", "Failed to persist reconciliation run")

	// ErrRunInProgress is returned when another run already holds the
	// per-tenant run lock.
	ErrRunInProgress = shared.NewDomainError("RUN_IN_PROGRESS", "A reconciliation run is already in progress for this tenant")
)

// CheckError wraps the failure of one check with the check's type
type CheckError struct {
	CheckType AlertType
	Err       error
}

// Error implements the error interface
func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s failed: %v", e.CheckType, e.Err)
}

// Unwrap returns the underlying cause
func (e *CheckError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a CheckError against ErrCheckFailed
func (e *CheckError) Is(target error) bool {
	return target == ErrCheckFailed
}
