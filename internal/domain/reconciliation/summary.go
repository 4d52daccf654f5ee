package reconciliation

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary reports the outcome of one reconciliation pass for one tenant
type RunSummary struct {
	RunID       uuid.UUID         `json:"run_id"`
	RanAt       time.Time         `json:"ran_at"`
	TotalAlerts int               `json:"total_alerts"`
	ByType      map[AlertType]int `json:"by_type"`
	BySeverity  map[Severity]int  `json:"by_severity"`
}

// NewRunSummary tallies the alerts produced by one run
func NewRunSummary(runID uuid.UUID, ranAt time.Time, alerts []*Alert) *RunSummary {
	s := &RunSummary{
		RunID:       runID,
		RanAt:       ranAt,
		TotalAlerts: len(alerts),
		ByType:      make(map[AlertType]int),
		BySeverity:  make(map[Severity]int),
	}
	for _, a := range alerts {
		s.ByType[a.AlertType]++
		s.BySeverity[a.Severity]++
	}
	return s
}
