package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
)

var ErrGenerateFailed = errors.New("failed to generate schedule spreadsheet")

// ExportService renders a completed run's schedule as a spreadsheet.
type ExportService interface {
	// ExportRun returns the spreadsheet bytes and a suggested filename.
	ExportRun(ctx context.Context, runID string) (*bytes.Buffer, string, error)
}

type ExportServiceImpl struct {
	logger *slog.Logger
	planning.RunRepository
	planning.ScheduleRepository
}

func NewExportService(logger *slog.Logger, runRepo planning.RunRepository, scheduleRepo planning.ScheduleRepository) ExportService {
	return &ExportServiceImpl{
		logger:             logger,
		RunRepository:      runRepo,
		ScheduleRepository: scheduleRepo,
	}
}

// ExportRun implements ExportService. Layout: one row per employee and
// period, one column per horizon day, cells holding the state codes.
func (s *ExportServiceImpl) ExportRun(ctx context.Context, runID string) (*bytes.Buffer, string, error) {
	run, err := s.RunRepository.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", planning.ErrRunNotFound
		}
		return nil, "", fmt.Errorf("failed to get planning run: %w", err)
	}
	if run.Status != planning.RunStatusDone && run.Status != planning.RunStatusDoneDegraded {
		return nil, "", planning.ErrRunNotCompleted
	}

	cells, err := s.ScheduleRepository.ListByRun(ctx, runID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list schedule cells: %w", err)
	}

	dates, employees, index := indexCells(cells)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Schedule"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrGenerateFailed
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "B", 12)

	f.SetCellValue(sheet, "A1", "Employee")
	f.SetCellValue(sheet, "B1", "Period")
	for i, date := range dates {
		col, _ := excelize.ColumnNumberToName(3 + i)
		f.SetColWidth(sheet, col, col, 14)
		f.SetCellValue(sheet, col+"1", date)
	}
	last, _ := excelize.ColumnNumberToName(2 + len(dates))
	f.SetCellStyle(sheet, "A1", last+"1", headerStyle)

	row := 2
	for _, empID := range employees {
		for _, p := range calendar.Periods {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), empID)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(p))
			for i, date := range dates {
				col, _ := excelize.ColumnNumberToName(3 + i)
				state := index[cellKey{empID, date, p}]
				f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), string(state))
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write spreadsheet", slog.Any("error", err))
		return nil, "", ErrGenerateFailed
	}

	filename := fmt.Sprintf("schedule_%s_%s_%s.xlsx", run.UnitID, run.From.Format(calendar.DateLayout), run.To.Format(calendar.DateLayout))
	return buf, filename, nil
}

type cellKey struct {
	employeeID string
	date       string
	period     calendar.Period
}

// indexCells orders the axes and builds the lookup map. ISO dates sort
// lexicographically, so plain string sorting keeps the horizon in order.
func indexCells(cells []planning.ScheduleCell) (dates, employees []string, index map[cellKey]calendar.SlotState) {
	index = make(map[cellKey]calendar.SlotState, len(cells))
	dateSeen := make(map[string]bool)
	empSeen := make(map[string]bool)
	for _, c := range cells {
		index[cellKey{c.EmployeeID, c.Date, c.Period}] = c.State
		if !dateSeen[c.Date] {
			dateSeen[c.Date] = true
			dates = append(dates, c.Date)
		}
		if !empSeen[c.EmployeeID] {
			empSeen[c.EmployeeID] = true
			employees = append(employees, c.EmployeeID)
		}
	}
	sort.Strings(dates)
	sort.Strings(employees)
	return dates, employees, index
}
