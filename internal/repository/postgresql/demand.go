package postgresql

import (
	"context"
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/demand"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
)

type demandRepositoryImpl struct {
	db *database.DB
}

func NewDemandRepository(db *database.DB) demand.DemandRepository {
	return &demandRepositoryImpl{db: db}
}

// ListByUnit implements demand.DemandRepository.
func (r *demandRepositoryImpl) ListByUnit(ctx context.Context, unitID string, from, to time.Time) ([]demand.Demand, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT unit_id, to_char(date, 'YYYY-MM-DD'), period, minimum, maximum, mean, stddev
		FROM staffing_demands
		WHERE unit_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, period
	`
	rows, err := q.Query(ctx, query, unitID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demands []demand.Demand
	for rows.Next() {
		var d demand.Demand
		if err := rows.Scan(&d.UnitID, &d.Date, &d.Period, &d.Minimum, &d.Maximum, &d.Mean, &d.StdDev); err != nil {
			return nil, err
		}
		demands = append(demands, d)
	}
	return demands, rows.Err()
}
