package planning

import "errors"

var (
	ErrRunNotFound           = errors.New("planning run not found")
	ErrRunNotCompleted       = errors.New("planning run has not completed")
	ErrNoEmployees           = errors.New("no schedulable employees in unit")
	ErrEmptyHorizon          = errors.New("planning horizon is empty")
	ErrNoSchedule            = errors.New("no feasible schedule exists for the unit")
	ErrSolveBudgetExhausted  = errors.New("solve budget exhausted before a schedule was found")
	ErrInternalInconsistency = errors.New("post-solve invariant violated")
)
