package calendar

import (
	"context"
	"time"
)

// SourceRepository loads the sparse calendar facts for one unit and
// horizon, already grouped by source kind.
type SourceRepository interface {
	ListClosedHolidays(ctx context.Context, unitID string, from, to time.Time) ([]Record, error)
	ListAbsences(ctx context.Context, unitID string, from, to time.Time) ([]Record, error)
	ListRotationSchedule(ctx context.Context, unitID string, from, to time.Time) ([]Record, error)
	ListCarryover(ctx context.Context, unitID string, from, to time.Time) ([]Record, error)
	ListFixedDayOffs(ctx context.Context, unitID string, from, to time.Time) ([]Record, error)
}
