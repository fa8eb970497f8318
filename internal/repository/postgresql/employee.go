package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, unit_id, full_name, code, contract_type, rotation_class,
	new_contract_type, contract_change_date,
	admission_date, termination_date,
	annual_rest_days, annual_special_rest_days, annual_quality_rest_days, annual_daily_rest_days,
	created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID,
		&e.UnitID,
		&e.FullName,
		&e.Code,
		&e.ContractType,
		&e.RotationClass,
		&e.NewContractType,
		&e.ContractChangeDate,
		&e.AdmissionDate,
		&e.TerminationDate,
		&e.AnnualRestDays,
		&e.AnnualSpecialRestDays,
		&e.AnnualQualityRestDays,
		&e.AnnualDailyRestDays,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return scanEmployee(q.QueryRow(ctx, query, id))
}

// ListByUnit implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByUnit(ctx context.Context, unitID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE unit_id = $1 ORDER BY code`
	rows, err := q.Query(ctx, query, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
