package calendar

// WriteRule declares how a layer's candidate states merge into the grid.
type WriteRule string

const (
	WriteOverrideAll             WriteRule = "override_all"
	WriteOverrideExceptProtected WriteRule = "override_except_protected"
	WriteFillEmptyOnly           WriteRule = "fill_empty_only"
)

// SourceKind identifies where a layer's records come from.
type SourceKind string

const (
	SourceBaseDefaults        SourceKind = "base_defaults"
	SourceClosedHolidays      SourceKind = "closed_holidays"
	SourceAbsenceVacation     SourceKind = "absence_vacation"
	SourceFullRotation        SourceKind = "full_rotation"
	SourceHistoricalCarryover SourceKind = "historical_carryover"
	SourceFixedDayOff         SourceKind = "fixed_day_off"
)

// Record is one sparse calendar fact from a source. An empty EmployeeID
// means unit-wide (closed holidays); a nil Period means whole day.
type Record struct {
	EmployeeID string
	Date       string // DateLayout
	Period     *Period
	State      SlotState
}

// Layer is one ordered overlay source with its write rule and data.
// Adding a calendar source is a data change: construct another Layer.
type Layer struct {
	Priority int
	Source   SourceKind
	Rule     WriteRule
	Records  []Record
}
