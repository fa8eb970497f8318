package demand

import (
	"math"

	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
)

// Demand is the staffing target for one (date, period). Read-only solver
// input; nothing in the core mutates it.
type Demand struct {
	UnitID string
	Date   string // calendar.DateLayout
	Period calendar.Period

	Minimum int
	Maximum int
	Mean    float64
	StdDev  float64
}

// Target resolves the headcount target the objective aims for. Days whose
// historical volatility exceeds the threshold round up; the rest round to
// nearest. The result is clamped into [Minimum, Maximum].
func (d Demand) Target(volatilityThreshold float64) int {
	var target int
	if d.StdDev > volatilityThreshold {
		target = int(math.Ceil(d.Mean))
	} else {
		target = int(math.Round(d.Mean))
	}
	if target < d.Minimum {
		target = d.Minimum
	}
	if d.Maximum > 0 && target > d.Maximum {
		target = d.Maximum
	}
	return target
}

// Key addresses the demand record in solver lookups.
type Key struct {
	Date   string
	Period calendar.Period
}

func (d Demand) Key() Key {
	return Key{Date: d.Date, Period: d.Period}
}
