package demand

import (
	"context"
	"time"
)

// DemandRepository - interface for staffing demand records
type DemandRepository interface {
	ListByUnit(ctx context.Context, unitID string, from, to time.Time) ([]Demand, error)
}
