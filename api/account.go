package api

import (
	"context"
	"net/http"
)

const (
	changePasswordPath = "change-password/"
	minPasswordLength  = 8
)

type PasswordChange struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (p PasswordChange) validate() error {
	errs := fieldErrors{}
	if p.CurrentPassword == "" {
		errs.add("current_password", "This field is required.")
	}
	if len(p.NewPassword) < minPasswordLength {
		errs.add("new_password", "Ensure this field has at least 8 characters.")
	}
	if p.NewPassword != p.NewPasswordConfirm {
		errs.add("new_password_confirm", "The two password fields didn't match.")
	}
	return errs.err()
}

// ChangePassword changes the logged-in user's password. The session stays valid.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := change.validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, changePasswordPath, nil, change, nil)
}
