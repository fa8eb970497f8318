package planning

import (
	"context"
)

// RunRepository - interface for planning_runs table
type RunRepository interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, id string) (Run, error)
	Update(ctx context.Context, run Run) error
	ListByUnit(ctx context.Context, unitID string, limit int) ([]Run, error)
}

// ScheduleRepository - interface for schedule_cells table
type ScheduleRepository interface {
	BatchCreate(ctx context.Context, cells []ScheduleCell) error
	ListByRun(ctx context.Context, runID string) ([]ScheduleCell, error)
	ListByRunAndEmployee(ctx context.Context, runID, employeeID string) ([]ScheduleCell, error)
}
