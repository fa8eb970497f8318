package employee

import (
	"time"
)

// ContractType encodes the weekly working-day count agreed in the
// employment contract. Rest quotas and weekly bounds derive from it.
type ContractType int

const (
	ContractType2 ContractType = 2
	ContractType3 ContractType = 3
	ContractType4 ContractType = 4
	ContractType5 ContractType = 5
	ContractType6 ContractType = 6
)

func (c ContractType) Valid() bool {
	return c >= ContractType2 && c <= ContractType6
}

// WorkingDaysPerWeek returns the contracted working days in a full week.
func (c ContractType) WorkingDaysPerWeek() int {
	return int(c)
}

type RotationClass string

const (
	// RotationFixedWeekly keeps the same shift all week; the week's shift
	// may change between weeks.
	RotationFixedWeekly RotationClass = "fixed_weekly"
	// RotationFlexible may take either shift on any working day.
	RotationFlexible RotationClass = "flexible"
	// RotationSplit works both shifts on each working day.
	RotationSplit RotationClass = "split"
	// RotationFull follows an externally defined 90-day pattern; the
	// pattern arrives as a calendar overlay layer, not a solver decision.
	RotationFull RotationClass = "full_rotation"
)

func (r RotationClass) Valid() bool {
	switch r {
	case RotationFixedWeekly, RotationFlexible, RotationSplit, RotationFull:
		return true
	}
	return false
}

// QuotaSet holds the entitlement counters consumed by the solver. All
// counters are per-horizon, already prorated for partial-year employment.
type QuotaSet struct {
	TotalRest   int
	SpecialRest int
	QualityRest int
	DailyRest   int

	// Clamped is set when proration produced a negative counter that was
	// clamped to zero; reported as a per-employee warning, never fatal.
	Clamped bool
}

type Employee struct {
	ID       string
	UnitID   string
	FullName string
	Code     string

	ContractType  ContractType
	RotationClass RotationClass

	// A contract-type change scheduled by the roster source. Full
	// rotation follows an externally built 90-day pattern, so a pending
	// change cannot be honored and fails intake.
	NewContractType    *ContractType
	ContractChangeDate *time.Time

	AdmissionDate   time.Time
	TerminationDate *time.Time

	// Raw full-year entitlements supplied by the roster source. The quota
	// provider prorates these into Quotas for the planning horizon.
	AnnualRestDays        int
	AnnualSpecialRestDays int
	AnnualQualityRestDays int
	AnnualDailyRestDays   int

	Quotas QuotaSet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the intake invariants. A failing employee is excluded
// from the run and reported; the run itself continues.
func (e *Employee) Validate() error {
	if e.ID == "" {
		return ErrMissingEmployeeID
	}
	if !e.ContractType.Valid() {
		return ErrInvalidContractType
	}
	if !e.RotationClass.Valid() {
		return ErrInvalidRotationClass
	}
	if e.NewContractType != nil {
		if !e.NewContractType.Valid() {
			return ErrInvalidContractType
		}
		if e.RotationClass == RotationFull {
			return ErrRotationContractConflict
		}
	}
	if e.TerminationDate != nil && e.AdmissionDate.After(*e.TerminationDate) {
		return ErrAdmissionAfterTermination
	}
	if e.AnnualRestDays < 0 || e.AnnualSpecialRestDays < 0 || e.AnnualQualityRestDays < 0 || e.AnnualDailyRestDays < 0 {
		return ErrNegativeEntitlement
	}
	return nil
}

// ActiveDuring reports whether the employment period overlaps [from, to].
func (e *Employee) ActiveDuring(from, to time.Time) bool {
	if e.AdmissionDate.After(to) {
		return false
	}
	return e.TerminationDate == nil || !e.TerminationDate.Before(from)
}

// ActiveOn reports whether the employee is employed on the given day.
func (e *Employee) ActiveOn(day time.Time) bool {
	if day.Before(e.AdmissionDate) {
		return false
	}
	if e.TerminationDate != nil && day.After(*e.TerminationDate) {
		return false
	}
	return true
}
