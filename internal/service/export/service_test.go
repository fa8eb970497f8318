package export

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
)

type stubRunRepo struct{ runs map[string]planning.Run }

func (r *stubRunRepo) Create(context.Context, planning.Run) error { return nil }
func (r *stubRunRepo) Update(context.Context, planning.Run) error { return nil }
func (r *stubRunRepo) ListByUnit(context.Context, string, int) ([]planning.Run, error) {
	return nil, nil
}
func (r *stubRunRepo) GetByID(_ context.Context, id string) (planning.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return planning.Run{}, pgx.ErrNoRows
	}
	return run, nil
}

type stubScheduleRepo struct{ cells []planning.ScheduleCell }

func (r *stubScheduleRepo) BatchCreate(context.Context, []planning.ScheduleCell) error { return nil }
func (r *stubScheduleRepo) ListByRun(context.Context, string) ([]planning.ScheduleCell, error) {
	return r.cells, nil
}
func (r *stubScheduleRepo) ListByRunAndEmployee(context.Context, string, string) ([]planning.ScheduleCell, error) {
	return nil, nil
}

func TestExportRun_WritesGrid(t *testing.T) {
	t.Parallel()
	run := planning.Run{
		ID:     "run-1",
		UnitID: "unit-1",
		From:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Status: planning.RunStatusDone,
	}
	cells := []planning.ScheduleCell{
		{RunID: "run-1", EmployeeID: "e1", Date: "2025-06-02", Period: calendar.PeriodMorning, State: calendar.StateWorkingMorning},
		{RunID: "run-1", EmployeeID: "e1", Date: "2025-06-02", Period: calendar.PeriodAfternoon, State: calendar.StateWorkingMorning},
		{RunID: "run-1", EmployeeID: "e1", Date: "2025-06-03", Period: calendar.PeriodMorning, State: calendar.StateRest},
		{RunID: "run-1", EmployeeID: "e1", Date: "2025-06-03", Period: calendar.PeriodAfternoon, State: calendar.StateRest},
	}

	svc := NewExportService(slog.New(slog.DiscardHandler), &stubRunRepo{runs: map[string]planning.Run{"run-1": run}}, &stubScheduleRepo{cells: cells})
	buf, filename, err := svc.ExportRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "schedule_unit-1_2025-06-02_2025-06-03.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	emp, err := f.GetCellValue("Schedule", "A2")
	require.NoError(t, err)
	assert.Equal(t, "e1", emp)

	state, err := f.GetCellValue("Schedule", "C2")
	require.NoError(t, err)
	assert.Equal(t, string(calendar.StateWorkingMorning), state)

	restState, err := f.GetCellValue("Schedule", "D2")
	require.NoError(t, err)
	assert.Equal(t, string(calendar.StateRest), restState)
}

func TestExportRun_IncompleteRunRejected(t *testing.T) {
	t.Parallel()
	run := planning.Run{ID: "run-1", Status: planning.RunStatusRunning}
	svc := NewExportService(slog.New(slog.DiscardHandler), &stubRunRepo{runs: map[string]planning.Run{"run-1": run}}, &stubScheduleRepo{})

	_, _, err := svc.ExportRun(context.Background(), "run-1")
	require.ErrorIs(t, err, planning.ErrRunNotCompleted)
}

func TestExportRun_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewExportService(slog.New(slog.DiscardHandler), &stubRunRepo{runs: map[string]planning.Run{}}, &stubScheduleRepo{})

	_, _, err := svc.ExportRun(context.Background(), "missing")
	require.ErrorIs(t, err, planning.ErrRunNotFound)
}
