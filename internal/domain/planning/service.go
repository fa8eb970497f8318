package planning

import (
	"context"
)

// PlanningService runs the overlay engine and the two-stage solver for
// whole units and exposes the results.
type PlanningService interface {
	// CreateRuns starts one run per requested unit. Units are independent
	// and planned in parallel; each failure stays scoped to its unit.
	CreateRuns(ctx context.Context, req CreateRunRequest) ([]RunResponse, error)
	GetRun(ctx context.Context, runID string) (RunResponse, error)
	GetSchedule(ctx context.Context, runID string) (ScheduleResponse, error)
	GetEmployeeSchedule(ctx context.Context, runID, employeeID string) ([]ScheduleCellResponse, error)
}
