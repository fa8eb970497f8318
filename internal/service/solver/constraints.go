package solver

import (
	"fmt"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/demand"
	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
)

// Constraint vetoes candidate choices during search and validates a
// finished assignment afterwards. Allows must be cheap; it is called on
// every node. Violations runs once per solve on the complete assignment.
type Constraint interface {
	Name() string
	Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool
	Violations(m *Model, a *Assignment) []string
}

// DefaultConstraints assembles the stage-one constraint set.
func DefaultConstraints(m *Model) []Constraint {
	return []Constraint{
		exclusivity{},
		weeklyWorkBounds{},
		workRun{},
		restRun{},
		restQuota{},
		specialCompOrder{},
		weeklyShiftConsistency{},
		weeklyRestGuarantee{},
		coverageBounds{},
		qualityWeekendPair{},
	}
}

// exclusivity guards the structural invariant: every open cell decided
// exactly once, with a choice from its domain.
type exclusivity struct{}

func (exclusivity) Name() string { return "exclusivity" }

func (exclusivity) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if a.Decided(e, d) {
		return false
	}
	for _, dc := range m.Employees[e].Domain[d] {
		if dc == c {
			return true
		}
	}
	return false
}

func (exclusivity) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		for d := range m.Days {
			if em.Open(d) {
				if !a.Decided(e, d) {
					out = append(out, fmt.Sprintf("cell %s/%s undecided", em.Emp.ID, m.Dates[d]))
				}
			} else if a.Choice[e][d] != ChoiceFixed {
				out = append(out, fmt.Sprintf("fixed cell %s/%s overwritten", em.Emp.ID, m.Dates[d]))
			}
		}
	}
	return out
}

// weeklyWorkBounds caps working days per week at the contract type and
// keeps enough open days to reach the week's minimum. Partial edge weeks
// scale both bounds by their length.
type weeklyWorkBounds struct{}

func (weeklyWorkBounds) Name() string { return "weekly_work_bounds" }

func weekCap(m *Model, e, w int) int {
	ct := m.Employees[e].Emp.ContractType.WorkingDaysPerWeek()
	n := len(m.Weeks[w])
	if n >= 7 {
		return ct
	}
	// ceil(ct * n / 7)
	return (ct*n + 6) / 7
}

func weekFloor(m *Model, e, w int) int {
	em := m.Employees[e]
	cap := weekCap(m, e, w)
	avail := 0
	for _, d := range m.Weeks[w] {
		if em.Open(d) && canWork(em.Domain[d]) {
			avail++
		} else if em.Fixed[d] != nil && (em.Fixed[d].Working(calendar.PeriodMorning) || em.Fixed[d].Working(calendar.PeriodAfternoon)) {
			avail++
		}
	}
	floor := cap - 1
	if floor > avail {
		floor = avail
	}
	if floor < 0 {
		floor = 0
	}
	return floor
}

func canWork(dom []DayChoice) bool {
	for _, c := range dom {
		if c.IsWork() {
			return true
		}
	}
	return false
}

func (weeklyWorkBounds) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	w := m.WeekOf[d]
	if c.IsWork() {
		return a.workWeek[e][w]+1 <= weekCap(m, e, w)
	}
	// Taking the day off must leave enough undecided workable days to
	// reach the floor.
	em := m.Employees[e]
	possible := a.workWeek[e][w]
	for _, od := range m.Weeks[w] {
		if od == d || !em.Open(od) || a.Decided(e, od) {
			continue
		}
		if canWork(em.Domain[od]) {
			possible++
		}
	}
	return possible >= weekFloor(m, e, w)
}

func (weeklyWorkBounds) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		for w := range m.Weeks {
			got := a.workWeek[e][w]
			if got > weekCap(m, e, w) {
				out = append(out, fmt.Sprintf("employee %s week %d works %d days, cap %d", em.Emp.ID, w, got, weekCap(m, e, w)))
			}
			if got < weekFloor(m, e, w) {
				out = append(out, fmt.Sprintf("employee %s week %d works %d days, floor %d", em.Emp.ID, w, got, weekFloor(m, e, w)))
			}
		}
	}
	return out
}

// workRun caps consecutive working days, with a stricter cap when the
// streak touches a special day.
type workRun struct{}

func (workRun) Name() string { return "work_run" }

func runAround(m *Model, a *Assignment, e, d int, works func(int) bool) (length int, special bool) {
	length = 1
	special = m.Special[d]
	for i := d - 1; i >= 0 && a.Decided(e, i) && works(i); i-- {
		length++
		special = special || m.Special[i]
	}
	for i := d + 1; i < len(m.Days) && a.Decided(e, i) && works(i); i++ {
		length++
		special = special || m.Special[i]
	}
	return length, special
}

func (workRun) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if !c.IsWork() {
		return true
	}
	length, special := runAround(m, a, e, d, func(i int) bool { return a.WorksDay(m, e, i) })
	limit := m.Limits.MaxWorkRun
	if special {
		limit = m.Limits.MaxWorkRunSpecial
	}
	return length <= limit
}

func (workRun) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		run, special := 0, false
		flush := func(end int) {
			limit := m.Limits.MaxWorkRun
			if special {
				limit = m.Limits.MaxWorkRunSpecial
			}
			if run > limit {
				out = append(out, fmt.Sprintf("employee %s works %d consecutive days ending %s", em.Emp.ID, run, m.Dates[end-1]))
			}
			run, special = 0, false
		}
		for d := range m.Days {
			if a.WorksDay(m, e, d) {
				run++
				special = special || m.Special[d]
			} else {
				flush(d)
			}
		}
		flush(len(m.Days))
	}
	return out
}

// restRun caps consecutive chosen rest days and enforces the working gap
// between two rest blocks. Vacation and closure days are neutral: they
// break a work streak without joining a rest block.
type restRun struct{}

func (restRun) Name() string { return "rest_run" }

func (restRun) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if !c.IsRest() && c != ChoiceSpecialComp {
		return true
	}
	length, _ := runAround(m, a, e, d, func(i int) bool { return a.ChosenRest(m, e, i) })
	if length > m.Limits.MaxRestRun {
		return false
	}
	// Spacing: walk left past the block being joined, then count decided
	// working days back to the previous rest block.
	i := d - 1
	for i >= 0 && a.Decided(e, i) && a.ChosenRest(m, e, i) {
		i--
	}
	gap := 0
	for i >= 0 && a.Decided(e, i) && !a.ChosenRest(m, e, i) {
		if a.WorksDay(m, e, i) {
			gap++
		}
		i--
	}
	if i >= 0 && a.Decided(e, i) && a.ChosenRest(m, e, i) && gap > 0 && gap < m.Limits.MinRestSpacing {
		return false
	}
	return true
}

func (restRun) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		run := 0
		for d := range m.Days {
			if a.ChosenRest(m, e, d) {
				run++
				if run > m.Limits.MaxRestRun {
					out = append(out, fmt.Sprintf("employee %s rests %d consecutive days ending %s", em.Emp.ID, run, m.Dates[d]))
				}
			} else {
				run = 0
			}
		}
	}
	return out
}

// restQuota charges every chosen rest day against the horizon quotas.
type restQuota struct{}

func (restQuota) Name() string { return "rest_quota" }

func (restQuota) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if !c.IsRest() {
		return true
	}
	q := m.Employees[e].Emp.Quotas
	if a.totalRestUsed[e]+1 > q.TotalRest {
		return false
	}
	if m.Special[d] && a.specialRestUsed[e]+1 > q.SpecialRest {
		return false
	}
	switch c {
	case ChoiceQualityRest:
		return a.qualityUsed[e]+1 <= q.QualityRest
	case ChoiceDailyRest:
		return a.dailyUsed[e]+1 <= q.DailyRest
	}
	return true
}

func (restQuota) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		q := em.Emp.Quotas
		total, special, quality, daily := a.QuotaUse(e)
		if total > q.TotalRest {
			out = append(out, fmt.Sprintf("employee %s uses %d/%d rest days", em.Emp.ID, total, q.TotalRest))
		}
		if special > q.SpecialRest {
			out = append(out, fmt.Sprintf("employee %s uses %d/%d special rest days", em.Emp.ID, special, q.SpecialRest))
		}
		if quality > q.QualityRest {
			out = append(out, fmt.Sprintf("employee %s uses %d/%d quality rest days", em.Emp.ID, quality, q.QualityRest))
		}
		if daily > q.DailyRest {
			out = append(out, fmt.Sprintf("employee %s uses %d/%d daily rest days", em.Emp.ID, daily, q.DailyRest))
		}
	}
	return out
}

// specialCompOrder allows a compensation day only after an unmatched
// worked special day; compensation never outruns the work it repays.
type specialCompOrder struct{}

func (specialCompOrder) Name() string { return "special_comp_order" }

func (specialCompOrder) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if c != ChoiceSpecialComp {
		return true
	}
	worked := 0
	for i := 0; i < d; i++ {
		if m.Special[i] && a.WorksDay(m, e, i) {
			worked++
		}
	}
	comped := 0
	for i := 0; i < d; i++ {
		if a.Choice[e][i] == ChoiceSpecialComp {
			comped++
		}
	}
	return comped < worked
}

func (specialCompOrder) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		worked, comped := 0, 0
		for d := range m.Days {
			if m.Special[d] && a.WorksDay(m, e, d) {
				worked++
			}
			if a.Choice[e][d] == ChoiceSpecialComp {
				comped++
				if comped > worked {
					out = append(out, fmt.Sprintf("employee %s compensation on %s precedes the special day it repays", em.Emp.ID, m.Dates[d]))
				}
			}
		}
	}
	return out
}

// weeklyShiftConsistency pins fixed-weekly employees to one shift per
// week: all working days of a week share the same period.
type weeklyShiftConsistency struct{}

func (weeklyShiftConsistency) Name() string { return "weekly_shift_consistency" }

func (weeklyShiftConsistency) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	em := m.Employees[e]
	if em.Emp.RotationClass != employee.RotationFixedWeekly || !c.IsWork() {
		return true
	}
	for _, od := range m.Weeks[m.WeekOf[d]] {
		if od == d {
			continue
		}
		oc := a.Choice[e][od]
		if oc.IsWork() && oc != c {
			return false
		}
	}
	return true
}

func (weeklyShiftConsistency) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		if em.Emp.RotationClass != employee.RotationFixedWeekly {
			continue
		}
		for w, days := range m.Weeks {
			seen := ChoiceNone
			for _, d := range days {
				c := a.Choice[e][d]
				if !c.IsWork() {
					continue
				}
				if seen == ChoiceNone {
					seen = c
				} else if seen != c {
					out = append(out, fmt.Sprintf("employee %s mixes shifts in week %d", em.Emp.ID, w))
					break
				}
			}
		}
	}
	return out
}

// weeklyRestGuarantee keeps at least one non-working day in every week.
// Vacation, absence and closure already satisfy it.
type weeklyRestGuarantee struct{}

func (weeklyRestGuarantee) Name() string { return "weekly_rest_guarantee" }

func (weeklyRestGuarantee) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if !c.IsWork() {
		return true
	}
	week := m.Weeks[m.WeekOf[d]]
	if len(week) < 7 {
		return true // edge weeks covered by the adjacent horizon
	}
	em := m.Employees[e]
	for _, od := range week {
		if od == d {
			continue
		}
		if a.RestsDay(m, e, od) {
			return true
		}
		if em.Open(od) && !a.Decided(e, od) {
			return true // still room for a rest day
		}
	}
	return false
}

func (weeklyRestGuarantee) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		for w, days := range m.Weeks {
			if len(days) < 7 {
				continue // edge weeks covered by the adjacent horizon
			}
			ok := false
			for _, d := range days {
				if a.RestsDay(m, e, d) {
					ok = true
					break
				}
			}
			if !ok {
				out = append(out, fmt.Sprintf("employee %s has no rest day in week %d", em.Emp.ID, w))
			}
		}
	}
	return out
}

// coverageBounds enforces the demand maximum as a hard cap and keeps
// the minimum reachable: turning an employee away from a period must
// leave enough undecided colleagues to staff it.
type coverageBounds struct{}

func (coverageBounds) Name() string { return "coverage_bounds" }

func (coverageBounds) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	for _, p := range calendar.Periods {
		dm, ok := m.Demands[demand.Key{Date: m.Dates[d], Period: p}]
		if !ok {
			continue
		}
		if covers(c, p) && dm.Maximum > 0 && a.Coverage(d, p)+1 > dm.Maximum {
			return false
		}
		if dm.Minimum <= 0 {
			continue
		}
		possible := a.Coverage(d, p)
		if covers(c, p) {
			possible++
		}
		for oe, oem := range m.Employees {
			if oe == e || !oem.Open(d) || a.Decided(oe, d) {
				continue
			}
			if canCover(oem.Domain[d], p) {
				possible++
			}
		}
		if possible < dm.Minimum {
			return false
		}
	}
	return true
}

func (coverageBounds) Violations(m *Model, a *Assignment) []string {
	var out []string
	for d := range m.Days {
		for _, p := range calendar.Periods {
			dm, ok := m.Demands[demand.Key{Date: m.Dates[d], Period: p}]
			if !ok {
				continue
			}
			cov := a.Coverage(d, p)
			if dm.Maximum > 0 && cov > dm.Maximum {
				out = append(out, fmt.Sprintf("%s %s staffed %d over maximum %d", m.Dates[d], p, cov, dm.Maximum))
			}
			if cov < dm.Minimum {
				out = append(out, fmt.Sprintf("%s %s staffed %d under minimum %d", m.Dates[d], p, cov, dm.Minimum))
			}
		}
	}
	return out
}

// qualityWeekendPair anchors quality rest to weekends: a quality day must
// fall on Saturday or Sunday and pair with a resting partner day, so the
// two weekend days form one block.
type qualityWeekendPair struct{}

func (qualityWeekendPair) Name() string { return "quality_weekend_pair" }

func weekendPartner(m *Model, d int) int {
	switch m.Days[d].Weekday() {
	case time.Saturday:
		if d+1 < len(m.Days) {
			return d + 1
		}
	case time.Sunday:
		if d > 0 {
			return d - 1
		}
	}
	return -1
}

func isWeekend(m *Model, d int) bool {
	wd := m.Days[d].Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (qualityWeekendPair) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if c == ChoiceQualityRest {
		if !isWeekend(m, d) {
			return false
		}
		partner := weekendPartner(m, d)
		if partner >= 0 && a.Decided(e, partner) && !a.RestsDay(m, e, partner) {
			return false
		}
		return true
	}
	if c.IsWork() && isWeekend(m, d) {
		partner := weekendPartner(m, d)
		if partner >= 0 && a.Choice[e][partner] == ChoiceQualityRest {
			return false
		}
	}
	return true
}

func (qualityWeekendPair) Violations(m *Model, a *Assignment) []string {
	var out []string
	for e, em := range m.Employees {
		for d := range m.Days {
			if a.Choice[e][d] != ChoiceQualityRest {
				continue
			}
			if !isWeekend(m, d) {
				out = append(out, fmt.Sprintf("employee %s quality rest on weekday %s", em.Emp.ID, m.Dates[d]))
				continue
			}
			partner := weekendPartner(m, d)
			if partner >= 0 && !a.RestsDay(m, e, partner) {
				out = append(out, fmt.Sprintf("employee %s quality rest on %s lacks a resting partner day", em.Emp.ID, m.Dates[d]))
			}
		}
	}
	return out
}

// qualityWeekendTriple is the second-stage tightening: every weekend
// block the first stage granted quality rest must extend to three days,
// pulling in the adjacent Friday or Monday.
type qualityWeekendTriple struct {
	// byCell maps (employee, extensionDay) to the [saturday, sunday]
	// block the extension day belongs to.
	byCell map[[2]int][2]int
}

// NewQualityWeekendTriple derives the blocks to extend from the first
// stage's assignment. A block with no workable extension day, because
// both neighbors are fixed non-rest priors or outside the horizon, is
// left out: no re-solve could ever widen it, and demanding the
// impossible would poison an otherwise valid second stage.
func NewQualityWeekendTriple(m *Model, ref *Assignment) Constraint {
	c := &qualityWeekendTriple{byCell: make(map[[2]int][2]int)}
	for e := range m.Employees {
		for d := range m.Days {
			if m.Days[d].Weekday() != time.Saturday || d+1 >= len(m.Days) {
				continue
			}
			sat, sun := d, d+1
			if !ref.RestsDay(m, e, sat) || !ref.RestsDay(m, e, sun) {
				continue
			}
			if ref.Choice[e][sat] != ChoiceQualityRest && ref.Choice[e][sun] != ChoiceQualityRest {
				continue
			}
			extendable := false
			for _, ext := range []int{sat - 1, sun + 1} {
				if ext < 0 || ext >= len(m.Days) {
					continue
				}
				if m.Employees[e].Open(ext) || ref.RestsDay(m, e, ext) {
					extendable = true
				}
			}
			if !extendable {
				continue
			}
			block := [2]int{sat, sun}
			if sat > 0 {
				c.byCell[[2]int{e, sat - 1}] = block
			}
			if sun+1 < len(m.Days) {
				c.byCell[[2]int{e, sun + 1}] = block
			}
		}
	}
	return c
}

func (*qualityWeekendTriple) Name() string { return "quality_weekend_triple" }

func (t *qualityWeekendTriple) extended(m *Model, a *Assignment, e int, block [2]int, skip int) bool {
	for _, ext := range []int{block[0] - 1, block[1] + 1} {
		if ext < 0 || ext >= len(m.Days) || ext == skip {
			continue
		}
		if a.RestsDay(m, e, ext) {
			return true
		}
		if m.Employees[e].Open(ext) && !a.Decided(e, ext) {
			return true
		}
	}
	return false
}

func (t *qualityWeekendTriple) Allows(m *Model, a *Assignment, e, d int, c DayChoice) bool {
	if !c.IsWork() {
		return true
	}
	block, ok := t.byCell[[2]int{e, d}]
	if !ok {
		return true
	}
	// Working the extension day is fine only while the opposite side can
	// still supply the third rest day.
	return t.extended(m, a, e, block, d)
}

func (t *qualityWeekendTriple) Violations(m *Model, a *Assignment) []string {
	var out []string
	seen := make(map[[3]int]bool)
	for cell, block := range t.byCell {
		e := cell[0]
		key := [3]int{e, block[0], block[1]}
		if seen[key] {
			continue
		}
		seen[key] = true
		if !a.RestsDay(m, e, block[0]) || !a.RestsDay(m, e, block[1]) {
			continue // block dissolved in the re-solve
		}
		if !t.extended(m, a, e, block, -1) {
			out = append(out, fmt.Sprintf("employee %s quality weekend %s lacks its third rest day", m.Employees[e].Emp.ID, m.Dates[block[0]]))
		}
	}
	return out
}
