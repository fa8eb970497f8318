package solver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/config"
	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
)

// Solver runs the two-stage assignment protocol over a compiled model.
type Solver struct {
	cfg    config.SolverConfig
	logger *slog.Logger
}

func NewSolver(cfg config.SolverConfig, logger *slog.Logger) *Solver {
	return &Solver{cfg: cfg, logger: logger}
}

// Result is the outcome of one unit's solve.
type Result struct {
	Status      planning.SolveStatus
	Final       *Assignment
	Grid        *calendar.Grid
	Diagnostics planning.Diagnostics
}

// Solve executes both stages. The first stage satisfies the full base
// constraint set while minimizing coverage deviation; the second re-solves
// with the quality weekends of the first stage widened to three days.
// When the second stage is infeasible or runs out of budget the first
// stage's schedule is returned with Degraded set. When the first stage is
// proven infeasible there is no schedule at all; running out of budget
// before any complete assignment is a distinct outcome, never reported as
// infeasibility.
func (s *Solver) Solve(ctx context.Context, grid *calendar.Grid, m *Model) (*Result, error) {
	cons := DefaultConstraints(m)

	first := NewAssignment(m)
	d1 := s.runStage(ctx, m, first, cons, nil)
	res := &Result{Diagnostics: planning.Diagnostics{Stage1: d1}}
	if !solved(d1.Status) {
		res.Status = d1.Status
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if d1.Status == planning.SolveStatusTimeout {
			// Running out of budget proves nothing about feasibility.
			return res, planning.ErrSolveBudgetExhausted
		}
		return res, planning.ErrNoSchedule
	}
	s.logger.Info("first stage solved",
		slog.String("status", string(d1.Status)),
		slog.Int64("nodes", d1.Nodes),
		slog.Float64("objective", d1.Objective))

	if err := ctx.Err(); err != nil {
		res.Status = planning.SolveStatusFailed
		return res, err
	}

	cons2 := append(append([]Constraint(nil), cons...), NewQualityWeekendTriple(m, first))
	second := NewAssignment(m)
	d2 := s.runStage(ctx, m, second, cons2, first)
	res.Diagnostics.Stage2 = &d2

	final := second
	if !solved(d2.Status) {
		// Quality escalation failed; the first stage's schedule stands.
		final = first
		res.Diagnostics.Degraded = true
		res.Status = d1.Status
		s.logger.Warn("second stage infeasible, returning first-stage schedule",
			slog.String("stage2_status", string(d2.Status)))
	} else {
		res.Status = d2.Status
		cons = cons2
	}
	res.Final = final

	if errs := validate(m, final, cons); len(errs) > 0 {
		for _, v := range errs {
			s.logger.Error("post-solve invariant violated", slog.String("violation", v))
		}
		res.Status = planning.SolveStatusFailed
		return res, fmt.Errorf("%w: %s", planning.ErrInternalInconsistency, errs[0])
	}

	out := grid.Clone()
	if err := writeAssignment(m, final, out); err != nil {
		res.Status = planning.SolveStatusFailed
		return res, err
	}
	res.Grid = out
	return res, nil
}

// solved reports whether the stage produced a complete assignment. The
// search keeps the first complete assignment it reaches, so a stage whose
// budget expires after that point still counts as solved.
func solved(s planning.SolveStatus) bool {
	return s == planning.SolveStatusOptimal || s == planning.SolveStatusFeasible
}

func (s *Solver) runStage(ctx context.Context, m *Model, a *Assignment, cons []Constraint, seed *Assignment) planning.StageDiagnostics {
	start := time.Now()
	b := budget{nodes: int64(s.cfg.NodeLimit)}
	if s.cfg.StageTimeLimit > 0 {
		b.deadline = start.Add(s.cfg.StageTimeLimit)
	}

	var stats searchStats
	found := search(ctx, m, a, cons, seed, b, &stats)
	diag := planning.StageDiagnostics{
		Nodes:     stats.Nodes,
		Conflicts: stats.Conflicts,
	}
	switch {
	case found:
		repair(ctx, m, a, cons, s.cfg.RepairIterations, b.deadline)
		diag.Objective = objective(m, a)
		if diag.Objective == 0 {
			diag.Status = planning.SolveStatusOptimal
		} else {
			diag.Status = planning.SolveStatusFeasible
		}
	case ctx.Err() != nil:
		diag.Status = planning.SolveStatusFailed
	case stats.Aborted:
		diag.Status = planning.SolveStatusTimeout
	default:
		diag.Status = planning.SolveStatusInfeasible
	}
	diag.Elapsed = time.Since(start)
	return diag
}

// validate runs every constraint's post-solve check.
func validate(m *Model, a *Assignment, cons []Constraint) []string {
	var out []string
	for _, c := range cons {
		for _, v := range c.Violations(m, a) {
			out = append(out, c.Name()+": "+v)
		}
	}
	return out
}

// writeAssignment materializes the choices into the grid. A day-level
// choice lands on both periods; half-fixed priors keep their fixed period
// and close the open sibling as no_work.
func writeAssignment(m *Model, a *Assignment, grid *calendar.Grid) error {
	for e, em := range m.Employees {
		for d, date := range m.Dates {
			if fd := em.Fixed[d]; fd != nil {
				for _, p := range calendar.Periods {
					key := calendar.SlotKey{EmployeeID: em.Emp.ID, Date: date, Period: p}
					state, _ := grid.State(key)
					if state != calendar.StateUnresolved {
						continue
					}
					sibling := fd.Morning
					if p == calendar.PeriodAfternoon {
						sibling = fd.Afternoon
					}
					if !grid.SetState(key, sibling) {
						return fmt.Errorf("cell %s/%s outside grid", em.Emp.ID, date)
					}
				}
				continue
			}
			state := a.Choice[e][d].State()
			for _, p := range calendar.Periods {
				key := calendar.SlotKey{EmployeeID: em.Emp.ID, Date: date, Period: p}
				if !grid.SetState(key, state) {
					return fmt.Errorf("cell %s/%s outside grid", em.Emp.ID, date)
				}
			}
		}
	}
	return nil
}
