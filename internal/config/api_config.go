package config

import "time"

// APIConfig describes the remote solar router backend. Paths are relative to the base URL
// because the backend has moved its auth endpoints between releases.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAuthScheme() string
	GetLoginPath() string
	GetRefreshPath() string
	GetRegisterPath() string
	GetHTTPTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000/api")
}

// GetAuthScheme is the Authorization header scheme: "Bearer" for SimpleJWT, "Token" for DRF tokens.
func (API) GetAuthScheme() string {
	return GetEnv("AUTH_SCHEME", "Bearer")
}

func (API) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "token/")
}

func (API) GetRefreshPath() string {
	return GetEnv("REFRESH_PATH", "token/refresh/")
}

func (API) GetRegisterPath() string {
	return GetEnv("REGISTER_PATH", "register/")
}

func (API) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("HTTP_TIMEOUT", 15*time.Second)
}
