package backendfake

import (
	"time"

	"github.com/jrsteele09/solar-dashboard/internal/config"
)

type apiConfig struct {
	baseURL string
	scheme  string
}

var _ config.APIConfig = apiConfig{}

// APIConfig points a client at this backend using the default endpoint paths.
func (b *Backend) APIConfig() config.APIConfig {
	return ConfigFor(b.BaseURL(), b.scheme)
}

// ConfigFor points a client at any API root.
func ConfigFor(baseURL, scheme string) config.APIConfig {
	return apiConfig{baseURL: baseURL, scheme: scheme}
}

func (c apiConfig) GetAPIBaseURL() string       { return c.baseURL }
func (c apiConfig) GetAuthScheme() string       { return c.scheme }
func (apiConfig) GetLoginPath() string          { return "token/" }
func (apiConfig) GetRefreshPath() string        { return "token/refresh/" }
func (apiConfig) GetRegisterPath() string       { return "register/" }
func (apiConfig) GetHTTPTimeout() time.Duration { return 5 * time.Second }
