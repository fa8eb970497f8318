package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
)

type runRepositoryImpl struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) planning.RunRepository {
	return &runRepositoryImpl{db: db}
}

// Create implements planning.RunRepository.
func (r *runRepositoryImpl) Create(ctx context.Context, run planning.Run) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO planning_runs (id, unit_id, from_date, to_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, run.ID, run.UnitID, run.From, run.To, string(run.Status))
	return err
}

// Update implements planning.RunRepository.
func (r *runRepositoryImpl) Update(ctx context.Context, run planning.Run) error {
	q := GetQuerier(ctx, r.db)

	diagnostics, err := marshalDiagnostics(run.Diagnostics)
	if err != nil {
		return err
	}

	query := `
		UPDATE planning_runs
		SET status = $1, warnings = $2, diagnostics = $3, fail_reason = $4,
		    completed_at = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err = q.Exec(ctx, query, string(run.Status), run.Warnings, diagnostics, run.FailReason, run.CompletedAt, run.ID)
	return err
}

const runColumns = `
	id, unit_id, from_date, to_date, status, warnings, diagnostics, fail_reason,
	created_at, updated_at, completed_at
`

func scanRun(row pgx.Row) (planning.Run, error) {
	var (
		run         planning.Run
		status      string
		diagnostics []byte
	)
	err := row.Scan(
		&run.ID,
		&run.UnitID,
		&run.From,
		&run.To,
		&status,
		&run.Warnings,
		&diagnostics,
		&run.FailReason,
		&run.CreatedAt,
		&run.UpdatedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return planning.Run{}, err
	}
	run.Status = planning.RunStatus(status)
	if len(diagnostics) > 0 {
		run.Diagnostics = &planning.Diagnostics{}
		if err := json.Unmarshal(diagnostics, run.Diagnostics); err != nil {
			return planning.Run{}, fmt.Errorf("failed to decode run diagnostics: %w", err)
		}
	}
	return run, nil
}

// GetByID implements planning.RunRepository.
func (r *runRepositoryImpl) GetByID(ctx context.Context, id string) (planning.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM planning_runs WHERE id = $1`
	return scanRun(q.QueryRow(ctx, query, id))
}

// ListByUnit implements planning.RunRepository.
func (r *runRepositoryImpl) ListByUnit(ctx context.Context, unitID string, limit int) ([]planning.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + runColumns + ` FROM planning_runs WHERE unit_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := q.Query(ctx, query, unitID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []planning.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func marshalDiagnostics(d *planning.Diagnostics) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run diagnostics: %w", err)
	}
	return b, nil
}
