package profile

import (
	"strings"

	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/models"
)

// minPasswordLength is the shortest password accepted on sign-up and
// password change
const minPasswordLength = 8

// validEmail is a structural check only; deliverability is not our
// problem
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t")
}

// SignUpRequest registers a new account
type SignUpRequest struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// RequestName identifies the request in logs and records
func (SignUpRequest) RequestName() string { return "profile.sign_up" }

// Validate checks the request's own fields
func (r SignUpRequest) Validate() error {
	var fields []errs.FieldError
	if r.Email == "" {
		fields = append(fields, errs.Field("email", "email is required"))
	} else if !validEmail(r.Email) {
		fields = append(fields, errs.Field("email", "email is malformed"))
	}
	if len(r.Password) < minPasswordLength {
		fields = append(fields, errs.Field("password", "password must be at least %d characters", minPasswordLength))
	}
	if len(r.FirstName) > models.MaxNameLength || len(r.LastName) > models.MaxNameLength {
		fields = append(fields, errs.Field("name", "name cannot exceed %d characters", models.MaxNameLength))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// SignInRequest exchanges credentials for tokens
type SignInRequest struct {
	Email    string
	Password string
}

func (SignInRequest) RequestName() string { return "profile.sign_in" }

func (r SignInRequest) Validate() error {
	var fields []errs.FieldError
	if r.Email == "" {
		fields = append(fields, errs.Field("email", "email is required"))
	}
	if r.Password == "" {
		fields = append(fields, errs.Field("password", "password is required"))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// RefreshRequest exchanges a refresh token for a new token pair
type RefreshRequest struct {
	UserID       string
	RefreshToken string
}

func (RefreshRequest) RequestName() string { return "profile.refresh" }

func (r RefreshRequest) Validate() error {
	var fields []errs.FieldError
	if r.UserID == "" {
		fields = append(fields, errs.Field("user_id", "user id is required"))
	}
	if r.RefreshToken == "" {
		fields = append(fields, errs.Field("refresh_token", "refresh token is required"))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// SignOutRequest invalidates the caller's refresh token
type SignOutRequest struct{}

func (SignOutRequest) RequestName() string { return "profile.sign_out" }

// GetRequest fetches the caller's own profile
type GetRequest struct{}

func (GetRequest) RequestName() string { return "profile.get" }

// UpdateRequest applies a partial profile update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Email     *string
	FirstName *string
	LastName  *string
}

func (UpdateRequest) RequestName() string { return "profile.update" }

func (r UpdateRequest) Validate() error {
	var fields []errs.FieldError
	if r.Email != nil && !validEmail(*r.Email) {
		fields = append(fields, errs.Field("email", "email is malformed"))
	}
	if r.FirstName != nil && len(*r.FirstName) > models.MaxNameLength {
		fields = append(fields, errs.Field("first_name", "name cannot exceed %d characters", models.MaxNameLength))
	}
	if r.LastName != nil && len(*r.LastName) > models.MaxNameLength {
		fields = append(fields, errs.Field("last_name", "name cannot exceed %d characters", models.MaxNameLength))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// ChangePasswordRequest rotates the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
}

func (ChangePasswordRequest) RequestName() string { return "profile.change_password" }

func (r ChangePasswordRequest) Validate() error {
	var fields []errs.FieldError
	if r.CurrentPassword == "" {
		fields = append(fields, errs.Field("current_password", "current password is required"))
	}
	if len(r.NewPassword) < minPasswordLength {
		fields = append(fields, errs.Field("new_password", "password must be at least %d characters", minPasswordLength))
	}
	if len(fields) > 0 {
		return errs.Validation(fields...)
	}
	return nil
}

// TokenPair is returned by sign-in and refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
