package auth

import (
	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
)

var (
	ErrLoginFailed        = apperrors.ErrLoginFailed
	ErrRegistrationFailed = apperrors.ErrRegistrationFailed
	ErrNoRefreshToken     = apperrors.ErrNoRefreshToken
	ErrSessionExpired     = apperrors.ErrSessionExpired
	ErrNotAuthenticated   = apperrors.ErrNotAuthenticated
)
