package planning

import (
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
)

type RunStatus string

const (
	RunStatusPending      RunStatus = "pending"
	RunStatusRunning      RunStatus = "running"
	RunStatusDone         RunStatus = "done"
	RunStatusDoneDegraded RunStatus = "done_degraded" // stage 2 infeasible, stage 1 kept
	RunStatusNoSchedule   RunStatus = "no_schedule"   // stage 1 infeasible
	RunStatusFailed       RunStatus = "failed"        // input or internal error
)

// Terminal reports whether the run can no longer change.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusDone, RunStatusDoneDegraded, RunStatusNoSchedule, RunStatusFailed:
		return true
	}
	return false
}

type SolveStatus string

const (
	SolveStatusOptimal    SolveStatus = "optimal"
	SolveStatusFeasible   SolveStatus = "feasible"
	SolveStatusInfeasible SolveStatus = "infeasible" // proven: the search exhausted every branch
	SolveStatusTimeout    SolveStatus = "timeout"    // budget ran out before any complete assignment
	SolveStatusFailed     SolveStatus = "failed"
)

// StageDiagnostics captures one solve stage's search statistics.
type StageDiagnostics struct {
	Status    SolveStatus
	Elapsed   time.Duration
	Nodes     int64
	Conflicts int64
	Objective float64
}

// Diagnostics is the observable outcome of the two-stage protocol.
type Diagnostics struct {
	Stage1 StageDiagnostics
	Stage2 *StageDiagnostics // nil when stage 1 already failed

	// Degraded is set when stage 2 was infeasible and the stage-1
	// assignment was returned instead.
	Degraded bool
}

// Run is one planning execution over a unit and horizon.
type Run struct {
	ID     string
	UnitID string
	From   time.Time
	To     time.Time

	Status      RunStatus
	Warnings    []string
	Diagnostics *Diagnostics
	FailReason  *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// ScheduleCell is one persisted cell of a completed run's final grid.
type ScheduleCell struct {
	RunID      string
	EmployeeID string
	Date       string // calendar.DateLayout
	Period     calendar.Period
	State      calendar.SlotState
}
