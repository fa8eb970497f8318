package overlay

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
)

func testGrid(t *testing.T, employees ...string) *calendar.Grid {
	t.Helper()
	from := time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC)
	return calendar.NewGrid(employees, from, to)
}

func stateOf(t *testing.T, g *calendar.Grid, emp, date string, p calendar.Period) calendar.SlotState {
	t.Helper()
	s, ok := g.State(calendar.SlotKey{EmployeeID: emp, Date: date, Period: p})
	require.True(t, ok)
	return s
}

func TestApply_ClosedHolidayBeatsAbsence(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	holidays := []calendar.Record{{Date: "2024-12-25", State: calendar.StateClosedHoliday}}
	absences := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-25", State: calendar.StateAbsence}}

	warnings, err := engine.Apply(grid, Layers(holidays, absences, nil, nil, nil))
	require.NoError(t, err)
	assert.Empty(t, warnings)

	for _, p := range calendar.Periods {
		assert.Equal(t, calendar.StateClosedHoliday, stateOf(t, grid, "e1", "2024-12-25", p))
	}
}

func TestApply_ProtectionHoldsAcrossLayerOrderings(t *testing.T) {
	t.Parallel()
	engine := NewEngine(slog.New(slog.DiscardHandler))

	holiday := []calendar.Record{{Date: "2024-12-25", State: calendar.StateClosedHoliday}}
	others := [][]calendar.Record{
		{{EmployeeID: "e1", Date: "2024-12-25", State: calendar.StateAbsence}},
		{{EmployeeID: "e1", Date: "2024-12-25", State: calendar.StateWorkingMorning}},
		{{EmployeeID: "e1", Date: "2024-12-25", State: calendar.StateRest}},
		{{EmployeeID: "e1", Date: "2024-12-25", State: calendar.StateNoWork}},
	}

	// Whatever follows the closure, and whatever rule carries it, the
	// closure stands.
	perms := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	for _, perm := range perms {
		grid := testGrid(t, "e1")
		layers := []calendar.Layer{{Priority: 1, Source: calendar.SourceClosedHolidays, Rule: calendar.WriteOverrideAll, Records: holiday}}
		for i, oi := range perm {
			rule := calendar.WriteOverrideAll
			if i%2 == 1 {
				rule = calendar.WriteOverrideExceptProtected
			}
			layers = append(layers, calendar.Layer{Priority: 2 + i, Source: calendar.SourceAbsenceVacation, Rule: rule, Records: others[oi]})
		}
		_, err := engine.Apply(grid, layers)
		require.NoError(t, err)
		for _, p := range calendar.Periods {
			assert.Equal(t, calendar.StateClosedHoliday, stateOf(t, grid, "e1", "2024-12-25", p))
		}
	}
}

func TestApply_VacationProtectedFromWorkingCodes(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	absences := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateVacation}}
	rotation := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateWorkingMorning}}

	_, err := engine.Apply(grid, Layers(nil, absences, rotation, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, calendar.StateVacation, stateOf(t, grid, "e1", "2024-12-24", calendar.PeriodMorning))
}

func TestApply_NoWorkFoldsIntoCompoundStates(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1", "e2")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	absences := []calendar.Record{
		{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateVacation},
		{EmployeeID: "e2", Date: "2024-12-24", State: calendar.StateAbsence},
	}
	rotation := []calendar.Record{
		{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateNoWork},
		{EmployeeID: "e2", Date: "2024-12-24", State: calendar.StateNoWork},
	}

	_, err := engine.Apply(grid, Layers(nil, absences, rotation, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, calendar.StateNoWorkVacation, stateOf(t, grid, "e1", "2024-12-24", calendar.PeriodMorning))
	assert.Equal(t, calendar.StateNoWorkAbsence, stateOf(t, grid, "e2", "2024-12-24", calendar.PeriodMorning))
}

func TestApply_DayOffOverridesVacation(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	absences := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateVacation}}
	carryover := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateRest}}

	_, err := engine.Apply(grid, Layers(nil, absences, nil, carryover, nil))
	require.NoError(t, err)
	assert.Equal(t, calendar.StateRest, stateOf(t, grid, "e1", "2024-12-24", calendar.PeriodMorning))
}

func TestApply_RecordOutsideGridWarnsAndContinues(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	absences := []calendar.Record{
		{EmployeeID: "ghost", Date: "2024-12-24", State: calendar.StateVacation},
		{EmployeeID: "e1", Date: "2025-03-01", State: calendar.StateVacation},
		{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateVacation},
	}

	warnings, err := engine.Apply(grid, Layers(nil, absences, nil, nil, nil))
	require.NoError(t, err)
	assert.Len(t, warnings, 4) // two periods per skipped record
	assert.Equal(t, calendar.StateVacation, stateOf(t, grid, "e1", "2024-12-24", calendar.PeriodMorning))
}

func TestApply_MalformedStateAborts(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	bad := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-24", State: calendar.SlotState("afternoon_nap")}}

	_, err := engine.Apply(grid, Layers(nil, bad, nil, nil, nil))
	require.ErrorIs(t, err, calendar.ErrMalformedStateCode)
}

func TestApply_Idempotent(t *testing.T) {
	t.Parallel()
	engine := NewEngine(slog.New(slog.DiscardHandler))

	period := calendar.PeriodMorning
	layers := Layers(
		[]calendar.Record{{Date: "2024-12-25", State: calendar.StateClosedHoliday}},
		[]calendar.Record{{EmployeeID: "e1", Date: "2024-12-24", State: calendar.StateVacation}},
		[]calendar.Record{{EmployeeID: "e2", Date: "2024-12-23", Period: &period, State: calendar.StateWorkingMorning}},
		[]calendar.Record{{EmployeeID: "e1", Date: "2024-12-27", State: calendar.StateRest}},
		[]calendar.Record{{EmployeeID: "e2", Date: "2024-12-28", State: calendar.StateRest}},
	)

	grid := testGrid(t, "e1", "e2")
	_, err := engine.Apply(grid, layers)
	require.NoError(t, err)

	again := grid.Clone()
	_, err = engine.Apply(again, layers)
	require.NoError(t, err)
	assert.True(t, grid.Equal(again))
}

func TestApply_HalfDayRecord(t *testing.T) {
	t.Parallel()
	grid := testGrid(t, "e1")
	engine := NewEngine(slog.New(slog.DiscardHandler))

	morning := calendar.PeriodMorning
	rotation := []calendar.Record{{EmployeeID: "e1", Date: "2024-12-23", Period: &morning, State: calendar.StateWorkingMorning}}

	_, err := engine.Apply(grid, Layers(nil, nil, rotation, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, calendar.StateWorkingMorning, stateOf(t, grid, "e1", "2024-12-23", calendar.PeriodMorning))
	assert.Equal(t, calendar.StateUnresolved, stateOf(t, grid, "e1", "2024-12-23", calendar.PeriodAfternoon))
}
