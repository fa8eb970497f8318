package solver

import (
	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
)

// Assignment is the mutable search state: one choice per (employee, day)
// plus incrementally maintained counters. Counters include the fixed
// priors so constraint checks never rescan the grid.
type Assignment struct {
	Choice [][]DayChoice // [employee][day]

	totalRestUsed   []int
	qualityUsed     []int
	dailyUsed       []int
	specialRestUsed []int
	specialWorked   []int
	compUsed        []int

	workWeek [][]int // [employee][week] decided working days

	covMorning   []int // [day] assigned morning headcount
	covAfternoon []int
}

// NewAssignment seeds the counters with every fixed prior of the model.
func NewAssignment(m *Model) *Assignment {
	a := &Assignment{
		Choice:          make([][]DayChoice, len(m.Employees)),
		totalRestUsed:   make([]int, len(m.Employees)),
		qualityUsed:     make([]int, len(m.Employees)),
		dailyUsed:       make([]int, len(m.Employees)),
		specialRestUsed: make([]int, len(m.Employees)),
		specialWorked:   make([]int, len(m.Employees)),
		compUsed:        make([]int, len(m.Employees)),
		workWeek:        make([][]int, len(m.Employees)),
		covMorning:      make([]int, len(m.Days)),
		covAfternoon:    make([]int, len(m.Days)),
	}
	for e, em := range m.Employees {
		a.Choice[e] = make([]DayChoice, len(m.Days))
		a.workWeek[e] = make([]int, len(m.Weeks))
		for d := range m.Days {
			fd := em.Fixed[d]
			if fd == nil {
				continue
			}
			a.Choice[e][d] = ChoiceFixed
			if fd.Working(calendar.PeriodMorning) {
				a.covMorning[d]++
			}
			if fd.Working(calendar.PeriodAfternoon) {
				a.covAfternoon[d]++
			}
			if fd.Working(calendar.PeriodMorning) || fd.Working(calendar.PeriodAfternoon) {
				a.workWeek[e][m.WeekOf[d]]++
				if m.Special[d] {
					a.specialWorked[e]++
				}
			}
			// Carryover rest states consume quota like solver decisions.
			switch fd.Morning {
			case calendar.StateRest:
				a.totalRestUsed[e]++
			case calendar.StateQualityRest:
				a.totalRestUsed[e]++
				a.qualityUsed[e]++
			case calendar.StateDailyRest:
				a.totalRestUsed[e]++
				a.dailyUsed[e]++
			}
			if m.Special[d] && fd.Morning.IsRest() {
				a.specialRestUsed[e]++
			}
		}
	}
	return a
}

// Assign applies choice c to the open cell (e, d) and updates counters.
func (a *Assignment) Assign(m *Model, e, d int, c DayChoice) {
	a.Choice[e][d] = c
	a.apply(m, e, d, c, 1)
}

// Unassign reverts the cell to undecided.
func (a *Assignment) Unassign(m *Model, e, d int) {
	c := a.Choice[e][d]
	a.Choice[e][d] = ChoiceNone
	a.apply(m, e, d, c, -1)
}

func (a *Assignment) apply(m *Model, e, d int, c DayChoice, delta int) {
	switch c {
	case ChoiceWorkMorning:
		a.covMorning[d] += delta
	case ChoiceWorkAfternoon:
		a.covAfternoon[d] += delta
	case ChoiceWorkSplit:
		a.covMorning[d] += delta
		a.covAfternoon[d] += delta
	}
	if c.IsWork() {
		a.workWeek[e][m.WeekOf[d]] += delta
		if m.Special[d] {
			a.specialWorked[e] += delta
		}
	}
	if c.IsRest() {
		a.totalRestUsed[e] += delta
		if m.Special[d] {
			a.specialRestUsed[e] += delta
		}
	}
	switch c {
	case ChoiceQualityRest:
		a.qualityUsed[e] += delta
	case ChoiceDailyRest:
		a.dailyUsed[e] += delta
	case ChoiceSpecialComp:
		a.compUsed[e] += delta
	}
}

// Decided reports whether the cell holds a choice (fixed or assigned).
func (a *Assignment) Decided(e, d int) bool {
	return a.Choice[e][d] != ChoiceNone
}

// WorksDay reports whether (e, d) is decided and working either period.
func (a *Assignment) WorksDay(m *Model, e, d int) bool {
	c := a.Choice[e][d]
	if c == ChoiceFixed {
		fd := m.Employees[e].Fixed[d]
		return fd.Working(calendar.PeriodMorning) || fd.Working(calendar.PeriodAfternoon)
	}
	return c.IsWork()
}

// RestsDay reports whether (e, d) is decided as a non-working day that
// counts for the weekly rest guarantee. Vacation, absence, closed
// holidays and no-work days count; they already keep the employee off.
func (a *Assignment) RestsDay(m *Model, e, d int) bool {
	c := a.Choice[e][d]
	if c == ChoiceFixed {
		return m.Employees[e].Fixed[d].RestLike()
	}
	return c.IsRest() || c == ChoiceSpecialComp
}

// ChosenRest reports whether the day is a rest block member for the
// contiguity rules: solver rest choices and carried-over rest states,
// but not vacation or closure.
func (a *Assignment) ChosenRest(m *Model, e, d int) bool {
	c := a.Choice[e][d]
	if c == ChoiceFixed {
		return m.Employees[e].Fixed[d].Morning.IsRest()
	}
	return c.IsRest() || c == ChoiceSpecialComp
}

// Coverage returns the decided headcount for a (day, period).
func (a *Assignment) Coverage(d int, p calendar.Period) int {
	if p == calendar.PeriodMorning {
		return a.covMorning[d]
	}
	return a.covAfternoon[d]
}

// QuotaUse returns the consumed counters for one employee.
func (a *Assignment) QuotaUse(e int) (totalRest, specialRest, qualityRest, dailyRest int) {
	return a.totalRestUsed[e], a.specialRestUsed[e], a.qualityUsed[e], a.dailyUsed[e]
}

// Clone copies the assignment, counters included.
func (a *Assignment) Clone() *Assignment {
	c := &Assignment{
		Choice:          make([][]DayChoice, len(a.Choice)),
		totalRestUsed:   append([]int(nil), a.totalRestUsed...),
		qualityUsed:     append([]int(nil), a.qualityUsed...),
		dailyUsed:       append([]int(nil), a.dailyUsed...),
		specialRestUsed: append([]int(nil), a.specialRestUsed...),
		specialWorked:   append([]int(nil), a.specialWorked...),
		compUsed:        append([]int(nil), a.compUsed...),
		workWeek:        make([][]int, len(a.workWeek)),
		covMorning:      append([]int(nil), a.covMorning...),
		covAfternoon:    append([]int(nil), a.covAfternoon...),
	}
	for i := range a.Choice {
		c.Choice[i] = append([]DayChoice(nil), a.Choice[i]...)
	}
	for i := range a.workWeek {
		c.workWeek[i] = append([]int(nil), a.workWeek[i]...)
	}
	return c
}

// covers reports whether choice c staffs period p.
func covers(c DayChoice, p calendar.Period) bool {
	switch c {
	case ChoiceWorkSplit:
		return true
	case ChoiceWorkMorning:
		return p == calendar.PeriodMorning
	case ChoiceWorkAfternoon:
		return p == calendar.PeriodAfternoon
	}
	return false
}

// canCover reports whether any choice in the domain staffs period p.
func canCover(dom []DayChoice, p calendar.Period) bool {
	for _, c := range dom {
		if covers(c, p) {
			return true
		}
	}
	return false
}
