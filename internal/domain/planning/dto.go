package planning

import (
	"time"

	"github.com/shiftwise/roster-engine-go/internal/pkg/validator"
)

type CreateRunRequest struct {
	UnitIDs []string `json:"unit_ids"`
	From    string   `json:"from"` // YYYY-MM-DD
	To      string   `json:"to"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.UnitIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "unit_ids", Message: "at least one unit is required"})
	}
	for _, id := range r.UnitIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "unit_ids", Message: "unit id must not be empty"})
			break
		}
	}
	if !validator.IsValidDate(r.From) {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "must be a YYYY-MM-DD date"})
	}
	if !validator.IsValidDate(r.To) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "must be a YYYY-MM-DD date"})
	}
	if len(errs) == 0 && !validator.IsValidDateRange(r.From, r.To) {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "must not be after to"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StageDiagnosticsResponse struct {
	Status    string  `json:"status"`
	ElapsedMS int64   `json:"elapsed_ms"`
	Nodes     int64   `json:"nodes"`
	Conflicts int64   `json:"conflicts"`
	Objective float64 `json:"objective"`
}

type DiagnosticsResponse struct {
	Stage1   StageDiagnosticsResponse  `json:"stage1"`
	Stage2   *StageDiagnosticsResponse `json:"stage2,omitempty"`
	Degraded bool                      `json:"degraded"`
}

type RunResponse struct {
	ID          string               `json:"id"`
	UnitID      string               `json:"unit_id"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Status      string               `json:"status"`
	Warnings    []string             `json:"warnings,omitempty"`
	Diagnostics *DiagnosticsResponse `json:"diagnostics,omitempty"`
	FailReason  *string              `json:"fail_reason,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

type ScheduleCellResponse struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Period     string `json:"period"`
	State      string `json:"state"`
}

type ScheduleResponse struct {
	RunID string                 `json:"run_id"`
	Cells []ScheduleCellResponse `json:"cells"`
}
