package solver

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/roster-engine-go/internal/config"
	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/demand"
	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
)

func testSolverConfig() config.SolverConfig {
	return config.SolverConfig{
		StageTimeLimit:      10 * time.Second,
		NodeLimit:           2_000_000,
		RepairIterations:    1_000,
		VolatilityThreshold: 1.5,
	}
}

func testEmployee(id string, ct employee.ContractType, rc employee.RotationClass, q employee.QuotaSet) employee.Employee {
	return employee.Employee{
		ID:            id,
		UnitID:        "unit-1",
		FullName:      "Employee " + id,
		Code:          id,
		ContractType:  ct,
		RotationClass: rc,
		AdmissionDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Quotas:        q,
	}
}

// week of Monday 2025-06-02 through Sunday 2025-06-08
func testWeek(t *testing.T, employees []employee.Employee) *calendar.Grid {
	t.Helper()
	ids := make([]string, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	return calendar.NewGrid(ids, from, to)
}

func TestSolve_OneWeek_Feasible(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
		testEmployee("e2", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 14, m.OpenCells())

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)
	require.NotNil(t, res.Grid)
	assert.Equal(t, planning.SolveStatusOptimal, res.Status)

	// Every cell resolved, and each employee works four or five days with
	// at least one rest day.
	for _, e := range emps {
		worked, rested := 0, 0
		for d := 0; d < 7; d++ {
			date := m.Dates[d]
			state, ok := res.Grid.State(calendar.SlotKey{EmployeeID: e.ID, Date: date, Period: calendar.PeriodMorning})
			require.True(t, ok)
			require.NotEqual(t, calendar.StateUnresolved, state)
			if state.IsWorking() {
				worked++
			}
			if state.IsRest() {
				rested++
			}
		}
		assert.GreaterOrEqual(t, worked, 4)
		assert.LessOrEqual(t, worked, 5)
		assert.GreaterOrEqual(t, rested, 1)
		assert.LessOrEqual(t, rested, quota.TotalRest)
	}
}

func TestSolve_CoverageMinimumUnreachable(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
		testEmployee("e2", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	var demands []demand.Demand
	for d := 0; d < 7; d++ {
		demands = append(demands, demand.Demand{
			UnitID:  "unit-1",
			Date:    grid.Days[d].Format(calendar.DateLayout),
			Period:  calendar.PeriodMorning,
			Minimum: 3, // only two employees exist
			Mean:    3,
		})
	}

	m, err := Build(grid, emps, demands, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.ErrorIs(t, err, planning.ErrNoSchedule)
	assert.Equal(t, planning.SolveStatusInfeasible, res.Status)
	assert.Nil(t, res.Grid)
}

func TestSolve_CoverageMaximumRespected(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType4, employee.RotationFlexible, quota),
		testEmployee("e2", employee.ContractType4, employee.RotationFlexible, quota),
		testEmployee("e3", employee.ContractType4, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	var demands []demand.Demand
	for d := 0; d < 7; d++ {
		for _, p := range calendar.Periods {
			demands = append(demands, demand.Demand{
				UnitID:  "unit-1",
				Date:    grid.Days[d].Format(calendar.DateLayout),
				Period:  p,
				Maximum: 2,
				Mean:    1,
			})
		}
	}

	m, err := Build(grid, emps, demands, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)

	for d := 0; d < 7; d++ {
		for _, p := range calendar.Periods {
			count := 0
			for _, e := range emps {
				state, _ := res.Grid.State(calendar.SlotKey{EmployeeID: e.ID, Date: m.Dates[d], Period: p})
				if state == calendar.StateSplitShift ||
					(p == calendar.PeriodMorning && state == calendar.StateWorkingMorning) ||
					(p == calendar.PeriodAfternoon && state == calendar.StateWorkingAfternoon) {
					count++
				}
			}
			assert.LessOrEqual(t, count, 2, "day %s period %s", m.Dates[d], p)
		}
	}
}

func TestSolve_FixedPriorsSurvive(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType4, employee.RotationFlexible, quota),
		testEmployee("e2", employee.ContractType4, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	// e1 is on vacation Wednesday.
	wed := grid.Days[2].Format(calendar.DateLayout)
	for _, p := range calendar.Periods {
		require.True(t, grid.SetState(calendar.SlotKey{EmployeeID: "e1", Date: wed, Period: p}, calendar.StateVacation))
	}

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 13, m.OpenCells())

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)

	state, _ := res.Grid.State(calendar.SlotKey{EmployeeID: "e1", Date: wed, Period: calendar.PeriodMorning})
	assert.Equal(t, calendar.StateVacation, state)
}

func TestSolve_DegradedFallback(t *testing.T) {
	t.Parallel()
	// A tight quota can leave no room for a third weekend rest day. The
	// solver must still return a schedule either way.
	quota := employee.QuotaSet{TotalRest: 2, SpecialRest: 1, QualityRest: 1, DailyRest: 0}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)
	require.NotNil(t, res.Diagnostics.Stage2)

	if res.Diagnostics.Degraded {
		// Fallback keeps the first-stage schedule intact.
		assert.Equal(t, res.Diagnostics.Stage1.Status, res.Status)
	}
	assert.NotNil(t, res.Grid)
}

func TestSolve_BudgetExhaustedNotInfeasible(t *testing.T) {
	t.Parallel()
	// The model is feasible, but the budget expires before the search can
	// prove anything. That must surface as a timeout, never as ErrNoSchedule.
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
		testEmployee("e2", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)

	cfg := testSolverConfig()
	cfg.StageTimeLimit = time.Nanosecond

	s := NewSolver(cfg, slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.ErrorIs(t, err, planning.ErrSolveBudgetExhausted)
	assert.NotErrorIs(t, err, planning.ErrNoSchedule)
	assert.Equal(t, planning.SolveStatusTimeout, res.Status)
	assert.Equal(t, planning.SolveStatusTimeout, res.Diagnostics.Stage1.Status)
	assert.Nil(t, res.Grid)
}

func TestSolve_QualityWeekendAtHorizonEdge(t *testing.T) {
	t.Parallel()
	// Monday through Friday are fixed working days and the horizon ends on
	// Sunday, so a stage-one quality weekend has no workable extension day on
	// either side. The refinement stage must accept the schedule as is rather
	// than chase a triple it can never build.
	quota := employee.QuotaSet{TotalRest: 2, SpecialRest: 1, QualityRest: 2, DailyRest: 0}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	for d := 0; d < 5; d++ {
		date := grid.Days[d].Format(calendar.DateLayout)
		for _, p := range calendar.Periods {
			require.True(t, grid.SetState(calendar.SlotKey{EmployeeID: "e1", Date: date, Period: p}, calendar.StateSplitShift))
		}
	}

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 2, m.OpenCells())

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)
	require.NotNil(t, res.Grid)
	assert.False(t, res.Diagnostics.Degraded)

	// The weekly cap is spent on the fixed days, so the weekend rests.
	for d := 5; d < 7; d++ {
		state, _ := res.Grid.State(calendar.SlotKey{EmployeeID: "e1", Date: m.Dates[d], Period: calendar.PeriodMorning})
		assert.Equal(t, calendar.StateQualityRest, state, "day %s", m.Dates[d])
	}
}

func TestSolve_DegradedFallbackDeterministic(t *testing.T) {
	t.Parallel()
	// Eight-day horizon: the fixed week forces a quality weekend, and the
	// trailing Monday is the only candidate extension day. Rest quotas are
	// spent by then, so the refinement stage is provably unsatisfiable and
	// the solver must fall back to the first-stage schedule unchanged.
	quota := employee.QuotaSet{TotalRest: 2, SpecialRest: 1, QualityRest: 2, DailyRest: 0}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
	}
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	grid := calendar.NewGrid([]string{"e1"}, from, to)

	for d := 0; d < 5; d++ {
		date := grid.Days[d].Format(calendar.DateLayout)
		for _, p := range calendar.Periods {
			require.True(t, grid.SetState(calendar.SlotKey{EmployeeID: "e1", Date: date, Period: p}, calendar.StateSplitShift))
		}
	}

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 3, m.OpenCells())

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)
	require.NotNil(t, res.Grid)
	require.NotNil(t, res.Diagnostics.Stage2)

	assert.True(t, res.Diagnostics.Degraded)
	assert.Equal(t, planning.SolveStatusInfeasible, res.Diagnostics.Stage2.Status)
	assert.Equal(t, res.Diagnostics.Stage1.Status, res.Status)

	// The first-stage grid survives: quality weekend, working Monday.
	for d := 5; d < 7; d++ {
		state, _ := res.Grid.State(calendar.SlotKey{EmployeeID: "e1", Date: m.Dates[d], Period: calendar.PeriodMorning})
		assert.Equal(t, calendar.StateQualityRest, state, "day %s", m.Dates[d])
	}
	state, _ := res.Grid.State(calendar.SlotKey{EmployeeID: "e1", Date: m.Dates[7], Period: calendar.PeriodMorning})
	assert.True(t, state.IsWorking(), "trailing Monday should work, got %s", state)
}

func TestSolve_AmbiguousShiftResolved(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	// Wednesday mandates work but leaves the shift open.
	wed := grid.Days[2].Format(calendar.DateLayout)
	for _, p := range calendar.Periods {
		require.True(t, grid.SetState(calendar.SlotKey{EmployeeID: "e1", Date: wed, Period: p}, calendar.StateAmbiguousShift))
	}

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 7, m.OpenCells())

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	res, err := s.Solve(context.Background(), grid, m)
	require.NoError(t, err)
	require.NotNil(t, res.Grid)

	state, _ := res.Grid.State(calendar.SlotKey{EmployeeID: "e1", Date: wed, Period: calendar.PeriodMorning})
	assert.Contains(t, []calendar.SlotState{calendar.StateWorkingMorning, calendar.StateWorkingAfternoon}, state)
}

func TestSolve_Cancellation(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)

	m, err := Build(grid, emps, nil, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSolver(testSolverConfig(), slog.New(slog.DiscardHandler))
	_, err = s.Solve(ctx, grid, m)
	require.Error(t, err)
}

func TestBuild_VolatilityTarget(t *testing.T) {
	t.Parallel()
	quota := employee.QuotaSet{TotalRest: 3, SpecialRest: 1, QualityRest: 1, DailyRest: 1}
	emps := []employee.Employee{
		testEmployee("e1", employee.ContractType5, employee.RotationFlexible, quota),
	}
	grid := testWeek(t, emps)
	date := grid.Days[0].Format(calendar.DateLayout)

	demands := []demand.Demand{
		{UnitID: "unit-1", Date: date, Period: calendar.PeriodMorning, Mean: 2.3, StdDev: 0.4, Maximum: 10},
		{UnitID: "unit-1", Date: date, Period: calendar.PeriodAfternoon, Mean: 2.3, StdDev: 2.0, Maximum: 10},
	}

	m, err := Build(grid, emps, demands, BuildOptions{VolatilityThreshold: 1.5})
	require.NoError(t, err)

	// Calm series rounds the mean; a volatile one rounds it up.
	assert.Equal(t, 2, m.Targets[demand.Key{Date: date, Period: calendar.PeriodMorning}])
	assert.Equal(t, 3, m.Targets[demand.Key{Date: date, Period: calendar.PeriodAfternoon}])
}
