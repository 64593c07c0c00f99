package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
)

// Validator checks forms before they are sent so obviously incomplete input never costs a
// round trip. The backend stays the authority: it may still reject what passes here.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials validates login credentials
func (v *Validator) ValidateCredentials(creds Credentials) error {
	fields := map[string][]string{}
	if strings.TrimSpace(creds.Username) == "" {
		fields["username"] = append(fields["username"], "This field may not be blank.")
	}
	if creds.Password == "" {
		fields["password"] = append(fields["password"], "This field may not be blank.")
	}
	return validationError(fields)
}

// ValidateRegistration validates the sign-up form. Field names match the backend's so errors
// from either side render the same way.
func (v *Validator) ValidateRegistration(reg Registration) error {
	fields := map[string][]string{}
	if strings.TrimSpace(reg.Username) == "" {
		fields["username"] = append(fields["username"], "This field may not be blank.")
	}

	// Basic email format validation
	if email := strings.TrimSpace(reg.Email); email != "" {
		if at := strings.Index(email, "@"); at <= 0 || !strings.Contains(email[at:], ".") {
			fields["email"] = append(fields["email"], "Enter a valid email address.")
		}
	}

	if reg.Password == "" {
		fields["password"] = append(fields["password"], "This field may not be blank.")
	} else if reg.Password != reg.PasswordConfirm {
		fields["password"] = append(fields["password"], "Password fields didn't match.")
	}
	return validationError(fields)
}

func validationError(fields map[string][]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.NewAPIError(http.StatusBadRequest, "", fields, apperrors.ErrValidation)
}
