package solver

import (
	"context"
	"sort"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/demand"
)

// objective scores coverage deviation: the summed absolute distance of
// every demanded (day, period) from its target headcount. Zero means the
// targets are met exactly.
func objective(m *Model, a *Assignment) float64 {
	total := 0.0
	for key, target := range m.Targets {
		di, ok := dayIndexOf(m, key.Date)
		if !ok {
			continue
		}
		dev := a.Coverage(di, key.Period) - target
		if dev < 0 {
			dev = -dev
		}
		total += float64(dev)
	}
	return total
}

func dayIndexOf(m *Model, date string) (int, bool) {
	i, ok := m.dateIdx[date]
	return i, ok
}

// budget bounds one search stage.
type budget struct {
	deadline time.Time
	nodes    int64
}

func (b *budget) exhausted(nodes int64) bool {
	if b.nodes > 0 && nodes >= b.nodes {
		return true
	}
	return !b.deadline.IsZero() && time.Now().After(b.deadline)
}

// searchStats accumulate per-stage diagnostics. Aborted records that the
// search stopped on the budget or the context, so an unfinished tree is
// never mistaken for a proven dead end.
type searchStats struct {
	Nodes     int64
	Conflicts int64
	Aborted   bool
}

type cell struct{ e, d int }

// search fills every open cell of the model by chronological depth-first
// search with greedy value ordering, honoring the constraint set and the
// budget. seed, when non-nil, is tried first at every cell so a re-solve
// stays close to its reference. Returns false when no complete assignment
// was found within the budget.
func search(ctx context.Context, m *Model, a *Assignment, cons []Constraint, seed *Assignment, b budget, stats *searchStats) bool {
	var cells []cell
	for d := range m.Days {
		for e, em := range m.Employees {
			if em.Open(d) && !a.Decided(e, d) {
				cells = append(cells, cell{e, d})
			}
		}
	}
	return dfs(ctx, m, a, cons, seed, b, stats, cells, 0)
}

func dfs(ctx context.Context, m *Model, a *Assignment, cons []Constraint, seed *Assignment, b budget, stats *searchStats, cells []cell, idx int) bool {
	if idx == len(cells) {
		return true
	}
	if stats.Nodes&0x3ff == 0 {
		if ctx.Err() != nil || b.exhausted(stats.Nodes) {
			stats.Aborted = true
			return false
		}
	}
	c := cells[idx]
	for _, choice := range orderedDomain(m, a, seed, c.e, c.d) {
		stats.Nodes++
		if !allowed(m, a, cons, c.e, c.d, choice) {
			stats.Conflicts++
			continue
		}
		a.Assign(m, c.e, c.d, choice)
		if dfs(ctx, m, a, cons, seed, b, stats, cells, idx+1) {
			return true
		}
		a.Unassign(m, c.e, c.d)
		if ctx.Err() != nil || b.exhausted(stats.Nodes) {
			stats.Aborted = true
			return false
		}
	}
	stats.Conflicts++
	return false
}

func allowed(m *Model, a *Assignment, cons []Constraint, e, d int, c DayChoice) bool {
	for _, cn := range cons {
		if !cn.Allows(m, a, e, d, c) {
			return false
		}
	}
	return true
}

// orderedDomain ranks the cell's choices greedily: cover under-target
// periods first, spend scarce quota late, place quality rest where the
// weekend invites it. A seed choice jumps the queue.
func orderedDomain(m *Model, a *Assignment, seed *Assignment, e, d int) []DayChoice {
	dom := m.Employees[e].Domain[d]
	scored := make([]struct {
		c     DayChoice
		score float64
	}, 0, len(dom))
	for _, c := range dom {
		scored = append(scored, struct {
			c     DayChoice
			score float64
		}{c, choiceScore(m, a, e, d, c)})
	}
	if seed != nil {
		want := seed.Choice[e][d]
		for i := range scored {
			if scored[i].c == want {
				scored[i].score += 1000
			}
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	out := make([]DayChoice, len(scored))
	for i, s := range scored {
		out[i] = s.c
	}
	return out
}

func choiceScore(m *Model, a *Assignment, e, d int, c DayChoice) float64 {
	score := 0.0
	if c.IsWork() {
		for _, p := range calendar.Periods {
			if !covers(c, p) {
				continue
			}
			key := demand.Key{Date: m.Dates[d], Period: p}
			if target, ok := m.Targets[key]; ok {
				deficit := target - a.Coverage(d, p)
				score += float64(deficit) * 10
			}
		}
		return score
	}
	q := m.Employees[e].Emp.Quotas
	total, _, quality, daily := a.QuotaUse(e)
	remaining := float64(q.TotalRest - total)
	score += remaining // rest when quota is plentiful
	switch c {
	case ChoiceQualityRest:
		if isWeekend(m, d) && quality < q.QualityRest {
			score += 5
		} else {
			score -= 20
		}
	case ChoiceDailyRest:
		score += float64(q.DailyRest-daily) * 0.5
	case ChoiceSpecialComp:
		score += 2
	}
	return score
}

// repair runs a bounded local improvement loop on a complete assignment:
// move one employee off an over-target period, or onto an under-target
// one, whenever all constraints still hold. Greedy, first-improvement.
func repair(ctx context.Context, m *Model, a *Assignment, cons []Constraint, iterations int, deadline time.Time) {
	for it := 0; it < iterations; it++ {
		if ctx.Err() != nil || (!deadline.IsZero() && time.Now().After(deadline)) {
			return
		}
		if !repairStep(m, a, cons) {
			return
		}
	}
}

func repairStep(m *Model, a *Assignment, cons []Constraint) bool {
	base := objective(m, a)
	if base == 0 {
		return false
	}
	for d := range m.Days {
		for e, em := range m.Employees {
			if !em.Open(d) {
				continue
			}
			current := a.Choice[e][d]
			for _, alt := range em.Domain[d] {
				if alt == current {
					continue
				}
				a.Unassign(m, e, d)
				if !allowed(m, a, cons, e, d, alt) {
					a.Assign(m, e, d, current)
					continue
				}
				a.Assign(m, e, d, alt)
				if objective(m, a) < base {
					return true
				}
				a.Unassign(m, e, d)
				a.Assign(m, e, d, current)
			}
		}
	}
	return false
}
