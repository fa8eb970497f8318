package employee

import (
	"context"
)

// EmployeeRepository - interface for roster records
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	ListByUnit(ctx context.Context, unitID string) ([]Employee, error)
}
