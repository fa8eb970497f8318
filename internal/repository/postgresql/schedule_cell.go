package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) planning.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

// BatchCreate implements planning.ScheduleRepository. A year-long unit
// easily produces tens of thousands of cells, so this goes through
// CopyFrom instead of row-by-row inserts.
func (r *scheduleRepositoryImpl) BatchCreate(ctx context.Context, cells []planning.ScheduleCell) error {
	q := GetQuerier(ctx, r.db)

	rows := make([][]interface{}, len(cells))
	for i, c := range cells {
		rows[i] = []interface{}{c.RunID, c.EmployeeID, c.Date, string(c.Period), string(c.State)}
	}

	copier, ok := q.(interface {
		CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	})
	if !ok {
		copier = r.db.Pool
	}
	_, err := copier.CopyFrom(ctx,
		pgx.Identifier{"schedule_cells"},
		[]string{"run_id", "employee_id", "date", "period", "state"},
		pgx.CopyFromRows(rows),
	)
	return err
}

const cellColumns = `run_id, employee_id, to_char(date, 'YYYY-MM-DD'), period, state`

func scanCell(row pgx.Row) (planning.ScheduleCell, error) {
	var (
		c      planning.ScheduleCell
		period string
		state  string
	)
	if err := row.Scan(&c.RunID, &c.EmployeeID, &c.Date, &period, &state); err != nil {
		return planning.ScheduleCell{}, err
	}
	c.Period = calendar.Period(period)
	c.State = calendar.SlotState(state)
	return c, nil
}

// ListByRun implements planning.ScheduleRepository.
func (r *scheduleRepositoryImpl) ListByRun(ctx context.Context, runID string) ([]planning.ScheduleCell, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cellColumns + ` FROM schedule_cells WHERE run_id = $1 ORDER BY date, employee_id, period`
	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []planning.ScheduleCell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

// ListByRunAndEmployee implements planning.ScheduleRepository.
func (r *scheduleRepositoryImpl) ListByRunAndEmployee(ctx context.Context, runID, employeeID string) ([]planning.ScheduleCell, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + cellColumns + ` FROM schedule_cells WHERE run_id = $1 AND employee_id = $2 ORDER BY date, period`
	rows, err := q.Query(ctx, query, runID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []planning.ScheduleCell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}
