package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims are the access token claims the client cares about. The signature is not
// checked here: the backend is the only party that can verify its own tokens.
type tokenClaims struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

func parseClaims(rawToken string) (tokenClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return tokenClaims{}, fmt.Errorf("parse access token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return tokenClaims{}, errors.New("error extracting claims")
	}

	var tc tokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	tc.Username, _ = claims["username"].(string)
	switch id := claims["user_id"].(type) {
	case string:
		tc.UserID = id
	case float64:
		tc.UserID = fmt.Sprintf("%.0f", id)
	}
	return tc, nil
}
