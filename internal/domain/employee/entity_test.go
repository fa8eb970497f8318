package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEmployee() Employee {
	return Employee{
		ID:                    "e1",
		UnitID:                "u1",
		FullName:              "Jane Roe",
		Code:                  "1001",
		ContractType:          ContractType5,
		RotationClass:         RotationFlexible,
		AdmissionDate:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		AnnualRestDays:        96,
		AnnualSpecialRestDays: 12,
		AnnualQualityRestDays: 24,
		AnnualDailyRestDays:   12,
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()
	e := validEmployee()
	require.NoError(t, e.Validate())
}

func TestValidate_ContractChangeOnFullRotation(t *testing.T) {
	t.Parallel()
	e := validEmployee()
	e.RotationClass = RotationFull
	nct := ContractType6
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	e.NewContractType = &nct
	e.ContractChangeDate = &date

	require.ErrorIs(t, e.Validate(), ErrRotationContractConflict)

	// The same change on a flexible rotation passes intake.
	e.RotationClass = RotationFlexible
	assert.NoError(t, e.Validate())
}

func TestValidate_InvalidNewContractType(t *testing.T) {
	t.Parallel()
	e := validEmployee()
	nct := ContractType(9)
	e.NewContractType = &nct
	require.ErrorIs(t, e.Validate(), ErrInvalidContractType)
}

func TestValidate_AdmissionAfterTermination(t *testing.T) {
	t.Parallel()
	e := validEmployee()
	term := e.AdmissionDate.AddDate(-1, 0, 0)
	e.TerminationDate = &term
	require.ErrorIs(t, e.Validate(), ErrAdmissionAfterTermination)
}
