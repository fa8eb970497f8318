package quota

import (
	"fmt"
	"math"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
)

// Strategy computes annual entitlements for one contract agreement. One
// implementation exists per contract type; branch logic stays behind the
// interface instead of leaking flag checks into the solve.
type Strategy interface {
	ContractType() employee.ContractType
	Annual(emp employee.Employee) employee.QuotaSet
}

// Provider prorates annual entitlements onto a planning horizon.
type Provider struct {
	strategies map[employee.ContractType]Strategy
}

// NewProvider selects the default strategy set; custom strategies replace
// their contract type's default.
func NewProvider(custom ...Strategy) *Provider {
	p := &Provider{strategies: make(map[employee.ContractType]Strategy)}
	for ct := employee.ContractType2; ct <= employee.ContractType6; ct++ {
		p.strategies[ct] = annualFieldsStrategy{ct: ct}
	}
	for _, s := range custom {
		p.strategies[s.ContractType()] = s
	}
	return p
}

// Horizon prorates the employee's annual entitlements onto [from, to],
// then subtracts what carryover already consumed before the horizon.
// Negative results clamp to zero and set Clamped so the caller can
// report the employee.
func (p *Provider) Horizon(emp employee.Employee, from, to time.Time, consumed employee.QuotaSet) (employee.QuotaSet, error) {
	strategy, ok := p.strategies[emp.ContractType]
	if !ok {
		return employee.QuotaSet{}, fmt.Errorf("no quota strategy for contract type %d", emp.ContractType)
	}

	annual := strategy.Annual(emp)
	frac := activeFraction(emp, from, to)

	q := employee.QuotaSet{
		TotalRest:   prorate(annual.TotalRest, frac) - consumed.TotalRest,
		SpecialRest: prorate(annual.SpecialRest, frac) - consumed.SpecialRest,
		QualityRest: prorate(annual.QualityRest, frac) - consumed.QualityRest,
		DailyRest:   prorate(annual.DailyRest, frac) - consumed.DailyRest,
	}

	for _, v := range []*int{&q.TotalRest, &q.SpecialRest, &q.QualityRest, &q.DailyRest} {
		if *v < 0 {
			*v = 0
			q.Clamped = true
		}
	}

	// The weekly rest guarantee implies a floor on total rest days.
	if frac > 0 {
		weeks := int(to.Sub(from).Hours()/24+1) / 7
		floor := (7 - emp.ContractType.WorkingDaysPerWeek()) * weeks
		if q.TotalRest < floor {
			q.TotalRest = floor
		}
	}
	return q, nil
}

// prorate scales an annual entitlement by the active fraction, rounding
// half away from zero.
func prorate(annual int, frac float64) int {
	return int(math.Round(float64(annual) * frac))
}

// activeFraction is the share of the horizon the employee is employed:
// admission after the horizon start and termination before its end both
// shorten it.
func activeFraction(emp employee.Employee, from, to time.Time) float64 {
	start := from
	if emp.AdmissionDate.After(start) {
		start = emp.AdmissionDate
	}
	end := to
	if emp.TerminationDate != nil && emp.TerminationDate.Before(end) {
		end = *emp.TerminationDate
	}
	if end.Before(start) {
		return 0
	}
	total := to.Sub(from).Hours()/24 + 1
	active := end.Sub(start).Hours()/24 + 1
	return active / total
}

// annualFieldsStrategy reads the entitlements straight off the roster
// record. The collective-agreement arithmetic that fills those fields
// lives upstream; contract types only differ here through their weekly
// pattern, which the proration floor already accounts for.
type annualFieldsStrategy struct {
	ct employee.ContractType
}

func (s annualFieldsStrategy) ContractType() employee.ContractType { return s.ct }

func (s annualFieldsStrategy) Annual(emp employee.Employee) employee.QuotaSet {
	return employee.QuotaSet{
		TotalRest:   emp.AnnualRestDays,
		SpecialRest: emp.AnnualSpecialRestDays,
		QualityRest: emp.AnnualQualityRestDays,
		DailyRest:   emp.AnnualDailyRestDays,
	}
}
