package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
)

func quotaTestEmployee(ct employee.ContractType) employee.Employee {
	return employee.Employee{
		ID:                    "e1",
		ContractType:          ct,
		RotationClass:         employee.RotationFlexible,
		AdmissionDate:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		AnnualRestDays:        96,
		AnnualSpecialRestDays: 12,
		AnnualQualityRestDays: 24,
		AnnualDailyRestDays:   12,
	}
}

func TestHorizon_FullYear(t *testing.T) {
	t.Parallel()
	p := NewProvider()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	q, err := p.Horizon(quotaTestEmployee(employee.ContractType5), from, to, employee.QuotaSet{})
	require.NoError(t, err)
	assert.Equal(t, 104, q.TotalRest) // 52 weeks x 2 guaranteed rest days beats the annual 96
	assert.Equal(t, 12, q.SpecialRest)
	assert.Equal(t, 24, q.QualityRest)
	assert.Equal(t, 12, q.DailyRest)
	assert.False(t, q.Clamped)
}

func TestHorizon_MidYearAdmission(t *testing.T) {
	t.Parallel()
	p := NewProvider()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	emp := quotaTestEmployee(employee.ContractType5)
	emp.AdmissionDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	q, err := p.Horizon(emp, from, to, employee.QuotaSet{})
	require.NoError(t, err)

	// Roughly half the annual quality entitlement: 365-day year, active
	// from July 1 is 184 days, round(24 * 184/365) = 12.
	assert.Equal(t, 12, q.QualityRest)
	assert.Equal(t, 6, q.SpecialRest)
}

func TestHorizon_CarryoverConsumption(t *testing.T) {
	t.Parallel()
	p := NewProvider()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	consumed := employee.QuotaSet{QualityRest: 30} // more than the entitlement
	q, err := p.Horizon(quotaTestEmployee(employee.ContractType5), from, to, consumed)
	require.NoError(t, err)
	assert.Equal(t, 0, q.QualityRest)
	assert.True(t, q.Clamped)
}

func TestHorizon_TerminatedBeforeHorizon(t *testing.T) {
	t.Parallel()
	p := NewProvider()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	emp := quotaTestEmployee(employee.ContractType5)
	term := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	emp.TerminationDate = &term

	q, err := p.Horizon(emp, from, to, employee.QuotaSet{})
	require.NoError(t, err)
	assert.Equal(t, 0, q.QualityRest)
	assert.Equal(t, 0, q.SpecialRest)
}

func TestHorizon_WeeklyFloorScalesWithContractType(t *testing.T) {
	t.Parallel()
	p := NewProvider()
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC) // four weeks

	emp := quotaTestEmployee(employee.ContractType3)
	emp.AnnualRestDays = 0

	q, err := p.Horizon(emp, from, to, employee.QuotaSet{})
	require.NoError(t, err)
	assert.Equal(t, 16, q.TotalRest) // four weeks x four non-working days
}

func TestHorizon_UnknownContractType(t *testing.T) {
	t.Parallel()
	p := NewProvider()
	emp := quotaTestEmployee(employee.ContractType5)
	emp.ContractType = employee.ContractType(9)

	_, err := p.Horizon(emp, time.Now(), time.Now().AddDate(0, 0, 6), employee.QuotaSet{})
	require.Error(t, err)
}

type fixedStrategy struct{ q employee.QuotaSet }

func (fixedStrategy) ContractType() employee.ContractType        { return employee.ContractType6 }
func (s fixedStrategy) Annual(employee.Employee) employee.QuotaSet { return s.q }

func TestNewProvider_CustomStrategyWins(t *testing.T) {
	t.Parallel()
	p := NewProvider(fixedStrategy{q: employee.QuotaSet{QualityRest: 4}})
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	q, err := p.Horizon(quotaTestEmployee(employee.ContractType6), from, to, employee.QuotaSet{})
	require.NoError(t, err)
	assert.Equal(t, 4, q.QualityRest)
}
