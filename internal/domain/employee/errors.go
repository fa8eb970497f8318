package employee

import "errors"

var (
	ErrEmployeeNotFound          = errors.New("employee not found")
	ErrMissingEmployeeID         = errors.New("employee id is required")
	ErrInvalidContractType       = errors.New("contract type must be between 2 and 6")
	ErrInvalidRotationClass      = errors.New("unknown rotation class")
	ErrAdmissionAfterTermination = errors.New("admission date is after termination date")
	ErrNegativeEntitlement       = errors.New("entitlement counters must be non-negative")
	ErrRotationContractConflict  = errors.New("contract type change conflicts with full-rotation schedule")
)
