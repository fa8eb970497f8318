package overlay

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
)

// Engine merges ordered overlay layers into a calendar grid. It is a
// pure in-memory transformation; adding a calendar source means handing
// it another layer, not changing this code.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Warning describes a skipped record. Warnings do not fail the run; they
// surface on the planning run for the caller to report.
type Warning struct {
	Source calendar.SourceKind `json:"source"`
	Key    calendar.SlotKey    `json:"key"`
	Reason string              `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s %s/%s skipped: %s", w.Source, w.Key.EmployeeID, w.Key.Date, w.Key.Period, w.Reason)
}

// Apply merges the layers into grid in ascending priority order and
// returns the warnings collected along the way. The grid is mutated in
// place. Records addressing keys outside the grid are skipped with a
// warning; a record carrying a state outside the closed set is a data
// error and aborts the run.
func (e *Engine) Apply(grid *calendar.Grid, layers []calendar.Layer) ([]Warning, error) {
	ordered := append([]calendar.Layer(nil), layers...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	var warnings []Warning
	for _, layer := range ordered {
		for _, rec := range layer.Records {
			if !rec.State.Valid() {
				return warnings, fmt.Errorf("layer %s: state %q: %w", layer.Source, rec.State, calendar.ErrMalformedStateCode)
			}
			for _, key := range expand(grid, rec) {
				if !grid.Contains(key) {
					w := Warning{Source: layer.Source, Key: key, Reason: "outside grid domain"}
					warnings = append(warnings, w)
					e.logger.Warn("overlay record skipped",
						slog.String("source", string(layer.Source)),
						slog.String("employee_id", key.EmployeeID),
						slog.String("date", key.Date),
						slog.String("reason", w.Reason))
					continue
				}
				e.write(grid, key, rec.State, layer.Rule)
			}
		}
	}
	return warnings, nil
}

// expand turns one sparse record into concrete slot keys: unit-wide
// records fan out to every employee, whole-day records to both periods.
func expand(grid *calendar.Grid, rec calendar.Record) []calendar.SlotKey {
	employees := []string{rec.EmployeeID}
	if rec.EmployeeID == "" {
		employees = grid.EmployeeIDs
	}
	periods := calendar.Periods
	if rec.Period != nil {
		periods = []calendar.Period{*rec.Period}
	}
	keys := make([]calendar.SlotKey, 0, len(employees)*len(periods))
	for _, emp := range employees {
		for _, p := range periods {
			keys = append(keys, calendar.SlotKey{EmployeeID: emp, Date: rec.Date, Period: p})
		}
	}
	return keys
}

// write applies one candidate state under the layer's rule. The closed
// holiday guard sits here, ahead of every rule, so no layer can undo a
// closure.
func (e *Engine) write(grid *calendar.Grid, key calendar.SlotKey, candidate calendar.SlotState, rule calendar.WriteRule) {
	current, _ := grid.State(key)
	if current == calendar.StateClosedHoliday {
		return
	}

	switch rule {
	case calendar.WriteOverrideAll:
		grid.SetState(key, candidate)

	case calendar.WriteOverrideExceptProtected:
		if current == calendar.StateVacation || current == calendar.StateAbsence {
			switch {
			case candidate == calendar.StateNoWork:
				// The no-work marker folds into the compound form instead
				// of erasing the leave.
				compound := calendar.StateNoWorkVacation
				if current == calendar.StateAbsence {
					compound = calendar.StateNoWorkAbsence
				}
				grid.SetState(key, compound)
			case candidate.IsRest():
				// Explicit day-off codes win over leave.
				grid.SetState(key, candidate)
			default:
				// Generic working codes lose to leave.
			}
			return
		}
		grid.SetState(key, candidate)

	case calendar.WriteFillEmptyOnly:
		if current == calendar.StateUnresolved {
			grid.SetState(key, candidate)
		}
	}
}

// Layers assembles the application order from the per-source record
// sets. Closed holidays run first so the protection guard sees them
// before any other source touches the day.
func Layers(closedHolidays, absences, rotation, carryover, fixedDayOffs []calendar.Record) []calendar.Layer {
	return []calendar.Layer{
		{Priority: 1, Source: calendar.SourceClosedHolidays, Rule: calendar.WriteOverrideAll, Records: closedHolidays},
		{Priority: 2, Source: calendar.SourceAbsenceVacation, Rule: calendar.WriteOverrideAll, Records: absences},
		{Priority: 3, Source: calendar.SourceFullRotation, Rule: calendar.WriteOverrideExceptProtected, Records: rotation},
		{Priority: 4, Source: calendar.SourceHistoricalCarryover, Rule: calendar.WriteOverrideExceptProtected, Records: carryover},
		{Priority: 5, Source: calendar.SourceFixedDayOff, Rule: calendar.WriteOverrideExceptProtected, Records: fixedDayOffs},
	}
}
