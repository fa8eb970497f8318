package auth

import (
	"time"

	"github.com/shiftwise/roster-engine-go/internal/domain/user"
	"github.com/shiftwise/roster-engine-go/internal/pkg/validator"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RegisterRequest provisions a service account. There is no self-service
// signup; only an admin may call the endpoint.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters long"})
	}
	switch user.Role(r.Role) {
	case user.RoleAdmin, user.RolePlanner, user.RoleViewer:
	default:
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be one of admin, planner, viewer"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UserResponse is the provisioning result. The password hash never leaves
// the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"-"` // delivered as an HttpOnly cookie
	RefreshTokenExpiresIn int64  `json:"-"`
}
