package response

import (
	"errors"
	"net/http"

	"github.com/shiftwise/roster-engine-go/internal/domain/auth"
	"github.com/shiftwise/roster-engine-go/internal/domain/calendar"
	"github.com/shiftwise/roster-engine-go/internal/domain/employee"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
	"github.com/shiftwise/roster-engine-go/internal/domain/user"
	"github.com/shiftwise/roster-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrPlannerRoleRequired):
		Forbidden(w, "Planner role required")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")

	// Planning domain errors
	case errors.Is(err, planning.ErrRunNotFound):
		NotFound(w, "Planning run not found")
	case errors.Is(err, planning.ErrRunNotCompleted):
		Conflict(w, "Planning run has not completed")
	case errors.Is(err, planning.ErrNoSchedule):
		Conflict(w, "No feasible schedule exists for the unit")
	case errors.Is(err, planning.ErrNoEmployees):
		BadRequest(w, "No schedulable employees in unit", nil)
	case errors.Is(err, planning.ErrEmptyHorizon):
		BadRequest(w, "Planning horizon is empty", nil)

	// Calendar domain errors
	case errors.Is(err, calendar.ErrMalformedStateCode):
		BadRequest(w, "Malformed calendar state code", nil)
	case errors.Is(err, calendar.ErrKeyOutsideGrid):
		BadRequest(w, "Calendar record outside planning horizon", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
