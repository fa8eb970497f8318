package solver

import (
	"fmt"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/demand"
	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
)

// DayChoice is the categorical decision for one (employee, day). The
// booleans of the source formulation collapse into one enum; exclusivity
// is structural.
type DayChoice int8

const (
	ChoiceNone DayChoice = iota // open, not yet decided
	ChoiceWorkMorning
	ChoiceWorkAfternoon
	ChoiceWorkSplit
	ChoiceRest
	ChoiceQualityRest
	ChoiceDailyRest
	ChoiceSpecialComp
	ChoiceFixed // day fully determined by the overlay grid
)

// IsWork reports whether the choice occupies the day with work.
func (c DayChoice) IsWork() bool {
	switch c {
	case ChoiceWorkMorning, ChoiceWorkAfternoon, ChoiceWorkSplit:
		return true
	}
	return false
}

// IsRest reports whether the choice consumes rest entitlement.
func (c DayChoice) IsRest() bool {
	switch c {
	case ChoiceRest, ChoiceQualityRest, ChoiceDailyRest:
		return true
	}
	return false
}

// State translates a solver choice into the grid state written to both
// periods of the day.
func (c DayChoice) State() calendar.SlotState {
	switch c {
	case ChoiceWorkMorning:
		return calendar.StateWorkingMorning
	case ChoiceWorkAfternoon:
		return calendar.StateWorkingAfternoon
	case ChoiceWorkSplit:
		return calendar.StateSplitShift
	case ChoiceRest:
		return calendar.StateRest
	case ChoiceQualityRest:
		return calendar.StateQualityRest
	case ChoiceDailyRest:
		return calendar.StateDailyRest
	case ChoiceSpecialComp:
		return calendar.StateSpecialComp
	}
	return calendar.StateUnresolved
}

// Limits are the contiguity parameters of the constraint families.
type Limits struct {
	MaxWorkRun        int // longest allowed working streak
	MaxWorkRunSpecial int // stricter cap when the streak contains a special day
	MaxRestRun        int // longest allowed rest streak
	MinRestSpacing    int // working days required between two rest blocks
}

// DefaultLimits mirrors the collective-agreement defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxWorkRun:        6,
		MaxWorkRunSpecial: 5,
		MaxRestRun:        3,
		MinRestSpacing:    2,
	}
}

// FixedDay describes a day decided by the overlay before the solve.
type FixedDay struct {
	Morning   calendar.SlotState
	Afternoon calendar.SlotState
}

// RestLike reports whether the fixed day counts as the week's rest day.
func (f FixedDay) RestLike() bool {
	switch f.Morning {
	case calendar.StateRest, calendar.StateQualityRest, calendar.StateDailyRest,
		calendar.StateClosedHoliday, calendar.StateVacation, calendar.StateAbsence,
		calendar.StateNoWork, calendar.StateNoWorkVacation, calendar.StateNoWorkAbsence:
		return true
	}
	return false
}

// Working reports whether the fixed day works the given period.
func (f FixedDay) Working(p calendar.Period) bool {
	s := f.Morning
	if p == calendar.PeriodAfternoon {
		s = f.Afternoon
	}
	switch s {
	case calendar.StateSplitShift:
		return true
	case calendar.StateWorkingMorning:
		return p == calendar.PeriodMorning
	case calendar.StateWorkingAfternoon:
		return p == calendar.PeriodAfternoon
	}
	return false
}

// EmployeeModel is one employee's slice of the decision grid.
type EmployeeModel struct {
	Emp employee.Employee

	// Fixed[d] is non-nil when the overlay decided day d.
	Fixed []*FixedDay
	// Domain[d] lists the feasible choices for open day d, empty for
	// fixed days.
	Domain [][]DayChoice
}

// Open reports whether day d is a true decision variable.
func (em *EmployeeModel) Open(d int) bool {
	return em.Fixed[d] == nil
}

// Model is the compiled decision model for one unit's solve.
type Model struct {
	Days    []time.Time
	Dates   []string // Days formatted with calendar.DateLayout
	Weeks   [][]int  // day indexes grouped Monday..Sunday
	WeekOf  []int    // day index -> week index
	Special []bool   // Sunday or unit-wide closed holiday

	Employees []*EmployeeModel
	Targets   map[demand.Key]int
	Demands   map[demand.Key]demand.Demand
	Limits    Limits

	dateIdx   map[string]int
	openCells int
}

// OpenCells returns the number of decision variables.
func (m *Model) OpenCells() int {
	return m.openCells
}

// BuildOptions tune model compilation.
type BuildOptions struct {
	VolatilityThreshold float64
	Limits              Limits
}

// Build compiles the overlaid grid, the employees and the staffing demand
// into a decision model. Cells already resolved by the overlay become
// fixed priors; unresolved cells become variables, and a day marked
// ambiguous_shift becomes a variable restricted to the two shifts.
func Build(grid *calendar.Grid, employees []employee.Employee, demands []demand.Demand, opts BuildOptions) (*Model, error) {
	if len(grid.Days) == 0 {
		return nil, fmt.Errorf("empty horizon")
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}

	m := &Model{
		Days:    grid.Days,
		Dates:   make([]string, len(grid.Days)),
		WeekOf:  make([]int, len(grid.Days)),
		Special: make([]bool, len(grid.Days)),
		Targets: make(map[demand.Key]int),
		Demands: make(map[demand.Key]demand.Demand),
		Limits:  opts.Limits,
	}
	m.dateIdx = make(map[string]int, len(grid.Days))
	for i, d := range grid.Days {
		m.Dates[i] = d.Format(calendar.DateLayout)
		m.Special[i] = d.Weekday() == time.Sunday
		m.dateIdx[m.Dates[i]] = i
	}

	// Week grouping, Monday-aligned. Leading and trailing partial weeks
	// stay partial; the weekly constraints scale for them.
	week := -1
	for i, d := range grid.Days {
		if i == 0 || d.Weekday() == time.Monday {
			week++
			m.Weeks = append(m.Weeks, nil)
		}
		m.Weeks[week] = append(m.Weeks[week], i)
		m.WeekOf[i] = week
	}

	for _, dm := range demands {
		if _, ok := grid.DayIndex(dm.Date); !ok {
			continue
		}
		m.Demands[dm.Key()] = dm
		m.Targets[dm.Key()] = dm.Target(opts.VolatilityThreshold)
	}

	for _, emp := range employees {
		em := &EmployeeModel{
			Emp:    emp,
			Fixed:  make([]*FixedDay, len(grid.Days)),
			Domain: make([][]DayChoice, len(grid.Days)),
		}
		for d, date := range m.Dates {
			morning, ok := grid.State(calendar.SlotKey{EmployeeID: emp.ID, Date: date, Period: calendar.PeriodMorning})
			if !ok {
				return nil, fmt.Errorf("grid missing cell for employee %s on %s", emp.ID, date)
			}
			afternoon, _ := grid.State(calendar.SlotKey{EmployeeID: emp.ID, Date: date, Period: calendar.PeriodAfternoon})

			if morning == calendar.StateAmbiguousShift || afternoon == calendar.StateAmbiguousShift {
				// The marker mandates work but leaves the shift open;
				// the day becomes a morning-or-afternoon decision.
				em.Domain[d] = []DayChoice{ChoiceWorkMorning, ChoiceWorkAfternoon}
				m.openCells++
				continue
			}

			if morning != calendar.StateUnresolved || afternoon != calendar.StateUnresolved {
				// A half-fixed day is still a prior: the open sibling
				// period is finalized as no_work when results are written.
				fd := &FixedDay{Morning: morning, Afternoon: afternoon}
				if morning == calendar.StateUnresolved {
					fd.Morning = calendar.StateNoWork
				}
				if afternoon == calendar.StateUnresolved {
					fd.Afternoon = calendar.StateNoWork
				}
				em.Fixed[d] = fd
				if morning == calendar.StateClosedHoliday {
					m.Special[d] = true
				}
				continue
			}

			em.Domain[d] = domainFor(emp, m.Special[d])
			m.openCells++
		}
		m.Employees = append(m.Employees, em)
	}

	return m, nil
}

// domainFor derives the feasible choice set from the rotation class. The
// compensation choice exists only for the lower-seniority contract types
// on special days.
func domainFor(emp employee.Employee, special bool) []DayChoice {
	var dom []DayChoice
	switch emp.RotationClass {
	case employee.RotationSplit:
		dom = []DayChoice{ChoiceWorkSplit}
	case employee.RotationFull:
		// The external 90-day pattern supplies working days through the
		// overlay; leftover open days can only be rest.
		dom = []DayChoice{}
	default: // fixed_weekly, flexible
		dom = []DayChoice{ChoiceWorkMorning, ChoiceWorkAfternoon}
	}
	dom = append(dom, ChoiceRest, ChoiceQualityRest, ChoiceDailyRest)
	if special && emp.ContractType <= employee.ContractType3 {
		dom = append(dom, ChoiceSpecialComp)
	}
	return dom
}
