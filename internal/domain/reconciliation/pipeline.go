package reconciliation

import (
	"context"
)

// Pipeline is an ordered list of checks. Order is presentation only: checks
// share no state and their results do not depend on each other.
type Pipeline struct {
	checks []Check
}

// NewPipeline creates a pipeline over the given checks
func NewPipeline(checks ...Check) *Pipeline {
	return &Pipeline{checks: checks}
}

// DefaultPipeline returns the fixed set of reconciliation checks
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		BatchLotWeightCheck{},
		GrowerPaymentCheck{},
		TeamPaymentCheck{},
		ExportWeightCheck{},
		ExportValueCheck{},
		ContainerPalletCheck{},
		LabourCostCheck{},
		UnpaidBatchesCheck{},
	)
}

// Checks returns the checks in pipeline order
func (p *Pipeline) Checks() []Check {
	return p.checks
}

// Evaluate runs every check against the reader and collects all candidates.
// The first check error aborts the pass: a partial alert set is worse than no
// result, since severity dashboards assume completeness within a run.
func (p *Pipeline) Evaluate(ctx context.Context, r Reader) ([]*Alert, error) {
	var candidates []*Alert
	for _, check := range p.checks {
		if err := ctx.Err(); err != nil {
			return nil, &CheckError{CheckType: check.Type(), Err: err}
		}
		alerts, err := check.Evaluate(ctx, r)
		if err != nil {
			return nil, &CheckError{CheckType: check.Type(), Err: err}
		}
		candidates = append(candidates, alerts...)
	}
	return candidates, nil
}
