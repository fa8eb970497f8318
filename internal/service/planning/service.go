package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/shiftwise/roster-engine-go/internal/config"
	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/demand"
	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
	"github.com/shiftwise/roster-engine-go/internal/repository/postgresql"
	"github.com/shiftwise/roster-engine-go/internal/service/overlay"
	"github.com/shiftwise/roster-engine-go/internal/service/quota"
	"github.com/shiftwise/roster-engine-go/internal/service/solver"
)

type PlanningServiceImpl struct {
	db     *database.DB
	cfg    config.SolverConfig
	logger *slog.Logger

	planning.RunRepository
	planning.ScheduleRepository
	employee.EmployeeRepository
	calendar.SourceRepository
	demand.DemandRepository

	engine *overlay.Engine
	quotas *quota.Provider
	solver *solver.Solver

	// runInTx wraps the run-outcome writes in one transaction.
	runInTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewPlanningService(
	db *database.DB,
	cfg config.SolverConfig,
	logger *slog.Logger,
	runRepo planning.RunRepository,
	scheduleRepo planning.ScheduleRepository,
	employeeRepo employee.EmployeeRepository,
	sourceRepo calendar.SourceRepository,
	demandRepo demand.DemandRepository,
) planning.PlanningService {
	s := &PlanningServiceImpl{
		db:                 db,
		cfg:                cfg,
		logger:             logger,
		RunRepository:      runRepo,
		ScheduleRepository: scheduleRepo,
		EmployeeRepository: employeeRepo,
		SourceRepository:   sourceRepo,
		DemandRepository:   demandRepo,
		engine:             overlay.NewEngine(logger),
		quotas:             quota.NewProvider(),
		solver:             solver.NewSolver(cfg, logger),
	}
	s.runInTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
		return postgresql.WithTransaction(ctx, db, func(tx pgx.Tx) error {
			return fn(context.WithValue(ctx, "tx", tx))
		})
	}
	return s
}

// CreateRuns implements planning.PlanningService. Units are planned in
// parallel; a unit's failure is recorded on its run and never aborts the
// siblings.
func (s *PlanningServiceImpl) CreateRuns(ctx context.Context, req planning.CreateRunRequest) ([]planning.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, _ := time.ParseInLocation(calendar.DateLayout, req.From, time.UTC)
	to, _ := time.ParseInLocation(calendar.DateLayout, req.To, time.UTC)
	if to.Before(from) {
		return nil, planning.ErrEmptyHorizon
	}

	runs := make([]planning.Run, len(req.UnitIDs))
	for i, unitID := range req.UnitIDs {
		runs[i] = planning.Run{
			ID:     uuid.NewString(),
			UnitID: unitID,
			From:   from,
			To:     to,
			Status: planning.RunStatusPending,
		}
		if err := s.RunRepository.Create(ctx, runs[i]); err != nil {
			return nil, fmt.Errorf("failed to create planning run: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.MaxParallelUnits > 0 {
		g.SetLimit(s.cfg.MaxParallelUnits)
	}
	for i := range runs {
		run := &runs[i]
		g.Go(func() error {
			s.planUnit(gctx, run)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	responses := make([]planning.RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = toRunResponse(run)
	}
	return responses, nil
}

// planUnit executes one unit's overlay and solve. Every exit path leaves
// the run in a terminal status.
func (s *PlanningServiceImpl) planUnit(ctx context.Context, run *planning.Run) {
	logger := s.logger.With(slog.String("run_id", run.ID), slog.String("unit_id", run.UnitID))

	run.Status = planning.RunStatusRunning
	if err := s.RunRepository.Update(ctx, *run); err != nil {
		logger.Error("failed to mark run running", slog.Any("error", err))
	}

	grid, cells, err := s.executeUnit(ctx, run, logger)
	switch {
	case err == nil:
		// status already set by executeUnit
	case errors.Is(err, planning.ErrNoSchedule):
		run.Status = planning.RunStatusNoSchedule
	default:
		run.Status = planning.RunStatusFailed
		reason := err.Error()
		run.FailReason = &reason
		logger.Error("planning run failed", slog.Any("error", err))
	}
	now := time.Now().UTC()
	run.CompletedAt = &now

	if grid != nil {
		err = s.runInTx(ctx, func(txCtx context.Context) error {
			if err := s.ScheduleRepository.BatchCreate(txCtx, cells); err != nil {
				return fmt.Errorf("failed to persist schedule cells: %w", err)
			}
			return s.RunRepository.Update(txCtx, *run)
		})
	} else {
		err = s.RunRepository.Update(ctx, *run)
	}
	if err != nil {
		logger.Error("failed to persist run outcome", slog.Any("error", err))
	}
}

// executeUnit loads the unit's data, overlays the calendar and solves.
// A non-nil grid means the schedule should be persisted.
func (s *PlanningServiceImpl) executeUnit(ctx context.Context, run *planning.Run, logger *slog.Logger) (*calendar.Grid, []planning.ScheduleCell, error) {
	all, err := s.EmployeeRepository.ListByUnit(ctx, run.UnitID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list unit roster: %w", err)
	}

	// Exclude records that fail validation or never overlap the horizon;
	// each exclusion is a warning, not a failure.
	var employees []employee.Employee
	for _, emp := range all {
		if vErr := emp.Validate(); vErr != nil {
			run.Warnings = append(run.Warnings, fmt.Sprintf("employee %s excluded: %v", emp.ID, vErr))
			continue
		}
		if !emp.ActiveDuring(run.From, run.To) {
			run.Warnings = append(run.Warnings, fmt.Sprintf("employee %s excluded: outside employment period", emp.ID))
			continue
		}
		employees = append(employees, emp)
	}
	if len(employees) == 0 {
		return nil, nil, planning.ErrNoEmployees
	}

	ids := make([]string, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
	}
	grid := calendar.NewGrid(ids, run.From, run.To)

	layers, err := s.loadLayers(ctx, run.UnitID, run.From, run.To)
	if err != nil {
		return nil, nil, err
	}

	// Days outside an employee's employment period are closed off ahead
	// of every calendar source.
	var inactive []calendar.Record
	for _, emp := range employees {
		for _, day := range grid.Days {
			if !emp.ActiveOn(day) {
				inactive = append(inactive, calendar.Record{EmployeeID: emp.ID, Date: day.Format(calendar.DateLayout), State: calendar.StateNoWork})
			}
		}
	}
	if len(inactive) > 0 {
		layers = append([]calendar.Layer{{Priority: 0, Source: calendar.SourceBaseDefaults, Rule: calendar.WriteOverrideAll, Records: inactive}}, layers...)
	}

	overlayWarnings, err := s.engine.Apply(grid, layers)
	if err != nil {
		return nil, nil, fmt.Errorf("overlay failed: %w", err)
	}
	for _, w := range overlayWarnings {
		run.Warnings = append(run.Warnings, w.String())
	}

	for i := range employees {
		q, qErr := s.quotas.Horizon(employees[i], run.From, run.To, employee.QuotaSet{})
		if qErr != nil {
			return nil, nil, fmt.Errorf("failed to compute quotas for employee %s: %w", employees[i].ID, qErr)
		}
		if q.Clamped {
			run.Warnings = append(run.Warnings, fmt.Sprintf("employee %s: quota clamped to zero after proration", employees[i].ID))
		}
		employees[i].Quotas = q
	}

	demands, err := s.DemandRepository.ListByUnit(ctx, run.UnitID, run.From, run.To)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list staffing demand: %w", err)
	}

	m, err := solver.Build(grid, employees, demands, solver.BuildOptions{VolatilityThreshold: s.cfg.VolatilityThreshold})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build solver model: %w", err)
	}

	res, err := s.solver.Solve(ctx, grid, m)
	if res != nil {
		run.Diagnostics = &res.Diagnostics
	}
	if err != nil {
		return nil, nil, err
	}

	if res.Diagnostics.Degraded {
		run.Status = planning.RunStatusDoneDegraded
	} else {
		run.Status = planning.RunStatusDone
	}
	logger.Info("planning run solved",
		slog.String("status", string(run.Status)),
		slog.Int64("stage1_nodes", res.Diagnostics.Stage1.Nodes))

	return res.Grid, gridCells(run.ID, res.Grid), nil
}

func (s *PlanningServiceImpl) loadLayers(ctx context.Context, unitID string, from, to time.Time) ([]calendar.Layer, error) {
	holidays, err := s.SourceRepository.ListClosedHolidays(ctx, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed holidays: %w", err)
	}
	absences, err := s.SourceRepository.ListAbsences(ctx, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	rotation, err := s.SourceRepository.ListRotationSchedule(ctx, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list rotation schedule: %w", err)
	}
	carryover, err := s.SourceRepository.ListCarryover(ctx, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list carryover: %w", err)
	}
	fixedDayOffs, err := s.SourceRepository.ListFixedDayOffs(ctx, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixed day-offs: %w", err)
	}
	return overlay.Layers(holidays, absences, rotation, carryover, fixedDayOffs), nil
}

func gridCells(runID string, grid *calendar.Grid) []planning.ScheduleCell {
	cells := make([]planning.ScheduleCell, 0, grid.Len())
	for _, day := range grid.Days {
		date := day.Format(calendar.DateLayout)
		for _, empID := range grid.EmployeeIDs {
			for _, p := range calendar.Periods {
				state, _ := grid.State(calendar.SlotKey{EmployeeID: empID, Date: date, Period: p})
				cells = append(cells, planning.ScheduleCell{
					RunID:      runID,
					EmployeeID: empID,
					Date:       date,
					Period:     p,
					State:      state,
				})
			}
		}
	}
	return cells
}

// GetRun implements planning.PlanningService.
func (s *PlanningServiceImpl) GetRun(ctx context.Context, runID string) (planning.RunResponse, error) {
	run, err := s.RunRepository.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return planning.RunResponse{}, planning.ErrRunNotFound
		}
		return planning.RunResponse{}, fmt.Errorf("failed to get planning run: %w", err)
	}
	return toRunResponse(run), nil
}

// GetSchedule implements planning.PlanningService.
func (s *PlanningServiceImpl) GetSchedule(ctx context.Context, runID string) (planning.ScheduleResponse, error) {
	run, err := s.RunRepository.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return planning.ScheduleResponse{}, planning.ErrRunNotFound
		}
		return planning.ScheduleResponse{}, fmt.Errorf("failed to get planning run: %w", err)
	}
	if run.Status != planning.RunStatusDone && run.Status != planning.RunStatusDoneDegraded {
		return planning.ScheduleResponse{}, planning.ErrRunNotCompleted
	}

	cells, err := s.ScheduleRepository.ListByRun(ctx, runID)
	if err != nil {
		return planning.ScheduleResponse{}, fmt.Errorf("failed to list schedule cells: %w", err)
	}
	resp := planning.ScheduleResponse{RunID: runID, Cells: make([]planning.ScheduleCellResponse, len(cells))}
	for i, c := range cells {
		resp.Cells[i] = toCellResponse(c)
	}
	return resp, nil
}

// GetEmployeeSchedule implements planning.PlanningService.
func (s *PlanningServiceImpl) GetEmployeeSchedule(ctx context.Context, runID, employeeID string) ([]planning.ScheduleCellResponse, error) {
	run, err := s.RunRepository.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, planning.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get planning run: %w", err)
	}
	if run.Status != planning.RunStatusDone && run.Status != planning.RunStatusDoneDegraded {
		return nil, planning.ErrRunNotCompleted
	}

	cells, err := s.ScheduleRepository.ListByRunAndEmployee(ctx, runID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee schedule: %w", err)
	}
	out := make([]planning.ScheduleCellResponse, len(cells))
	for i, c := range cells {
		out[i] = toCellResponse(c)
	}
	return out, nil
}

func toCellResponse(c planning.ScheduleCell) planning.ScheduleCellResponse {
	return planning.ScheduleCellResponse{
		EmployeeID: c.EmployeeID,
		Date:       c.Date,
		Period:     string(c.Period),
		State:      string(c.State),
	}
}

func toRunResponse(run planning.Run) planning.RunResponse {
	resp := planning.RunResponse{
		ID:          run.ID,
		UnitID:      run.UnitID,
		From:        run.From.Format(calendar.DateLayout),
		To:          run.To.Format(calendar.DateLayout),
		Status:      string(run.Status),
		Warnings:    run.Warnings,
		FailReason:  run.FailReason,
		CreatedAt:   run.CreatedAt,
		CompletedAt: run.CompletedAt,
	}
	if run.Diagnostics != nil {
		resp.Diagnostics = &planning.DiagnosticsResponse{
			Stage1:   toStageResponse(run.Diagnostics.Stage1),
			Degraded: run.Diagnostics.Degraded,
		}
		if run.Diagnostics.Stage2 != nil {
			st2 := toStageResponse(*run.Diagnostics.Stage2)
			resp.Diagnostics.Stage2 = &st2
		}
	}
	return resp
}

func toStageResponse(d planning.StageDiagnostics) planning.StageDiagnosticsResponse {
	return planning.StageDiagnosticsResponse{
		Status:    string(d.Status),
		ElapsedMS: d.Elapsed.Milliseconds(),
		Nodes:     d.Nodes,
		Conflicts: d.Conflicts,
		Objective: d.Objective,
	}
}
