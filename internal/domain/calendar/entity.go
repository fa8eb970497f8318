package calendar

import (
	"time"
)

// Period is the half-day granularity of the schedule grid.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
)

// Periods lists the grid periods in order.
var Periods = []Period{PeriodMorning, PeriodAfternoon}

// SlotState is the closed set of per-slot day states. Exactly one state
// holds per (employee, date, period) at all times.
type SlotState string

const (
	StateUnresolved       SlotState = "unresolved"
	StateWorkingMorning   SlotState = "working_morning"
	StateWorkingAfternoon SlotState = "working_afternoon"
	StateRest             SlotState = "rest"
	StateQualityRest      SlotState = "quality_rest"
	StateDailyRest        SlotState = "daily_rest"
	StateClosedHoliday    SlotState = "closed_holiday"
	StateVacation         SlotState = "vacation"
	StateAbsence          SlotState = "absence"
	StateNoWork           SlotState = "no_work"
	StateNoWorkVacation   SlotState = "no_work_vacation"
	StateNoWorkAbsence    SlotState = "no_work_absence"
	StateAmbiguousShift   SlotState = "ambiguous_shift"
	StateSplitShift       SlotState = "split_shift"
	StateSpecialComp      SlotState = "special_comp"
)

var validStates = map[SlotState]bool{
	StateUnresolved:       true,
	StateWorkingMorning:   true,
	StateWorkingAfternoon: true,
	StateRest:             true,
	StateQualityRest:      true,
	StateDailyRest:        true,
	StateClosedHoliday:    true,
	StateVacation:         true,
	StateAbsence:          true,
	StateNoWork:           true,
	StateNoWorkVacation:   true,
	StateNoWorkAbsence:    true,
	StateAmbiguousShift:   true,
	StateSplitShift:       true,
	StateSpecialComp:      true,
}

// Valid reports whether the state belongs to the closed set.
func (s SlotState) Valid() bool {
	return validStates[s]
}

// ParseSlotState validates a raw state code from a calendar source.
func ParseSlotState(code string) (SlotState, error) {
	s := SlotState(code)
	if !validStates[s] {
		return "", ErrMalformedStateCode
	}
	return s, nil
}

// IsWorking reports whether the state occupies the slot with work.
func (s SlotState) IsWorking() bool {
	switch s {
	case StateWorkingMorning, StateWorkingAfternoon, StateSplitShift, StateAmbiguousShift:
		return true
	}
	return false
}

// IsRest reports whether the state consumes a rest entitlement.
func (s SlotState) IsRest() bool {
	switch s {
	case StateRest, StateQualityRest, StateDailyRest:
		return true
	}
	return false
}

// IsProtected reports whether override-except-protected layers must leave
// the state alone for generic candidate codes.
func (s SlotState) IsProtected() bool {
	switch s {
	case StateVacation, StateAbsence:
		return true
	}
	return false
}

// DateLayout is the wire format for grid dates.
const DateLayout = "2006-01-02"

// SlotKey addresses one cell of the grid.
type SlotKey struct {
	EmployeeID string
	Date       string // DateLayout
	Period     Period
}

// Grid is the dense per-employee, per-day, per-period state map. It is
// fully enumerated at construction; overlay layers and the solver are the
// only writers, in that order.
type Grid struct {
	EmployeeIDs []string
	Days        []time.Time // UTC midnights, ascending

	slots    map[SlotKey]SlotState
	dayIndex map[string]int
}

// NewGrid enumerates every (employee, day, period) key, all unresolved.
func NewGrid(employeeIDs []string, from, to time.Time) *Grid {
	g := &Grid{
		EmployeeIDs: employeeIDs,
		slots:       make(map[SlotKey]SlotState),
		dayIndex:    make(map[string]int),
	}
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		g.dayIndex[d.Format(DateLayout)] = len(g.Days)
		g.Days = append(g.Days, d)
	}
	for _, id := range employeeIDs {
		for _, d := range g.Days {
			date := d.Format(DateLayout)
			for _, p := range Periods {
				g.slots[SlotKey{EmployeeID: id, Date: date, Period: p}] = StateUnresolved
			}
		}
	}
	return g
}

// Contains reports whether the key addresses a cell inside the grid domain.
func (g *Grid) Contains(key SlotKey) bool {
	_, ok := g.slots[key]
	return ok
}

// State returns the state at key; the boolean is false outside the domain.
func (g *Grid) State(key SlotKey) (SlotState, bool) {
	s, ok := g.slots[key]
	return s, ok
}

// SetState writes a state. Callers are the overlay engine and the solver;
// the closed-holiday guard lives in the engine, not here.
func (g *Grid) SetState(key SlotKey, s SlotState) bool {
	if _, ok := g.slots[key]; !ok {
		return false
	}
	g.slots[key] = s
	return true
}

// DayIndex maps a DateLayout string to its horizon position.
func (g *Grid) DayIndex(date string) (int, bool) {
	i, ok := g.dayIndex[date]
	return i, ok
}

// Clone returns an independent copy; used for stage references and
// idempotence checks.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		EmployeeIDs: append([]string(nil), g.EmployeeIDs...),
		Days:        append([]time.Time(nil), g.Days...),
		slots:       make(map[SlotKey]SlotState, len(g.slots)),
		dayIndex:    make(map[string]int, len(g.dayIndex)),
	}
	for k, v := range g.slots {
		c.slots[k] = v
	}
	for k, v := range g.dayIndex {
		c.dayIndex[k] = v
	}
	return c
}

// Equal compares two grids cell by cell.
func (g *Grid) Equal(o *Grid) bool {
	if len(g.slots) != len(o.slots) {
		return false
	}
	for k, v := range g.slots {
		if ov, ok := o.slots[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.slots)
}
