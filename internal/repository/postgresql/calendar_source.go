package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
)

type calendarSourceRepositoryImpl struct {
	db *database.DB
}

func NewCalendarSourceRepository(db *database.DB) calendar.SourceRepository {
	return &calendarSourceRepositoryImpl{db: db}
}

// listRecords loads one source's sparse facts. State codes are validated
// at the boundary so the overlay engine never sees a malformed code
// without context.
func (r *calendarSourceRepositoryImpl) listRecords(ctx context.Context, source calendar.SourceKind, unitID string, from, to time.Time) ([]calendar.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, to_char(date, 'YYYY-MM-DD'), period, state
		FROM calendar_records
		WHERE source = $1 AND unit_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date, employee_id
	`
	rows, err := q.Query(ctx, query, string(source), unitID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []calendar.Record
	for rows.Next() {
		var (
			employeeID *string
			date       string
			period     *string
			stateCode  string
		)
		if err := rows.Scan(&employeeID, &date, &period, &stateCode); err != nil {
			return nil, err
		}
		state, err := calendar.ParseSlotState(stateCode)
		if err != nil {
			return nil, fmt.Errorf("source %s, date %s: %w", source, date, err)
		}
		rec := calendar.Record{Date: date, State: state}
		if employeeID != nil {
			rec.EmployeeID = *employeeID
		}
		if period != nil {
			p := calendar.Period(*period)
			rec.Period = &p
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListClosedHolidays implements calendar.SourceRepository.
func (r *calendarSourceRepositoryImpl) ListClosedHolidays(ctx context.Context, unitID string, from, to time.Time) ([]calendar.Record, error) {
	return r.listRecords(ctx, calendar.SourceClosedHolidays, unitID, from, to)
}

// ListAbsences implements calendar.SourceRepository.
func (r *calendarSourceRepositoryImpl) ListAbsences(ctx context.Context, unitID string, from, to time.Time) ([]calendar.Record, error) {
	return r.listRecords(ctx, calendar.SourceAbsenceVacation, unitID, from, to)
}

// ListRotationSchedule implements calendar.SourceRepository.
func (r *calendarSourceRepositoryImpl) ListRotationSchedule(ctx context.Context, unitID string, from, to time.Time) ([]calendar.Record, error) {
	return r.listRecords(ctx, calendar.SourceFullRotation, unitID, from, to)
}

// ListCarryover implements calendar.SourceRepository.
func (r *calendarSourceRepositoryImpl) ListCarryover(ctx context.Context, unitID string, from, to time.Time) ([]calendar.Record, error) {
	return r.listRecords(ctx, calendar.SourceHistoricalCarryover, unitID, from, to)
}

// ListFixedDayOffs implements calendar.SourceRepository.
func (r *calendarSourceRepositoryImpl) ListFixedDayOffs(ctx context.Context, unitID string, from, to time.Time) ([]calendar.Record, error) {
	return r.listRecords(ctx, calendar.SourceFixedDayOff, unitID, from, to)
}
