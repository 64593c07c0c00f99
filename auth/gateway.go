package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/solar-dashboard/internal/config"
	"github.com/jrsteele09/solar-dashboard/internal/utils"
	"github.com/jrsteele09/solar-dashboard/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Gateway performs the login, registration, logout and refresh exchanges and is the only writer
// of the session. Every mutation writes the store first and publishes the new state second, under
// one lock, so a reader of the state never sees a session the store does not hold.
type Gateway struct {
	loginURL    string
	refreshURL  string
	registerURL string
	scheme      string

	httpClient *http.Client
	store      session.Store
	state      *session.State
	publish    session.Publisher
	navigator  Navigator
	validator  *Validator
	nowTime    func() time.Time

	mu sync.Mutex
	// generation changes on every login and logout. A refresh started in an older generation
	// must not write its result.
	generation uint64
}

var _ oauth2.TokenSource = (*Gateway)(nil)

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithHTTPClient sets the client used for the token endpoints. It must not route through the
// request authorizer.
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

// WithNavigator sets where Logout sends the user.
func WithNavigator(n Navigator) GatewayOption {
	return func(g *Gateway) {
		g.navigator = n
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

func NewGateway(cfg config.APIConfig, store session.Store, state *session.State, publish session.Publisher, options ...GatewayOption) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("[NewGateway] config is required")
	}
	if store == nil {
		return nil, errors.New("[NewGateway] store is required")
	}
	if state == nil || publish == nil {
		return nil, errors.New("[NewGateway] state and publisher are required")
	}

	base := cfg.GetAPIBaseURL()
	g := &Gateway{
		loginURL:    utils.JoinURL(base, cfg.GetLoginPath()),
		refreshURL:  utils.JoinURL(base, cfg.GetRefreshPath()),
		registerURL: utils.JoinURL(base, cfg.GetRegisterPath()),
		scheme:      cfg.GetAuthScheme(),
		httpClient:  &http.Client{Timeout: cfg.GetHTTPTimeout()},
		store:       store,
		state:       state,
		publish:     publish,
		navigator:   logNavigator{},
		validator:   NewValidator(),
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Login exchanges credentials for tokens. The backend's reason for a rejection is logged but
// the caller only ever sees ErrLoginFailed.
func (g *Gateway) Login(ctx context.Context, creds Credentials) error {
	if err := g.validator.ValidateCredentials(creds); err != nil {
		log.Debug().Err(err).Msg("Login rejected before exchange")
		return ErrLoginFailed
	}
	var resp tokenResponse
	if err := g.postJSON(ctx, g.loginURL, creds, &resp); err != nil {
		log.Err(err).Str("username", creds.Username).Msg("Login failed")
		return ErrLoginFailed
	}
	if resp.Access == "" {
		log.Error().Str("username", creds.Username).Msg("Login response has no access token")
		return ErrLoginFailed
	}

	username := utils.FirstNonEmpty(utils.Value(resp.Username), creds.Username)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.persist(ctx, resp, username); err != nil {
		// Leave nothing half written behind.
		if delErr := g.store.Delete(ctx, session.Keys...); delErr != nil {
			log.Err(delErr).Msg("Failed to clear partially written session")
		}
		// Whatever session was published before no longer exists in the store.
		g.generation++
		g.publish(session.Snapshot{})
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	g.generation++
	g.publish(session.Snapshot{Authenticated: true, Username: username})

	evt := log.Info().Str("username", username)
	if claims, err := parseClaims(resp.Access); err == nil && !claims.ExpiresAt.IsZero() {
		evt = evt.Dur("access_valid_for", claims.ExpiresAt.Sub(g.nowTime()).Round(time.Second))
	}
	evt.Msg("Logged in")
	return nil
}

func (g *Gateway) persist(ctx context.Context, resp tokenResponse, username string) error {
	if err := g.store.Set(ctx, session.AccessTokenKey, resp.Access); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if resp.Refresh != nil && *resp.Refresh != "" {
		if err := g.store.Set(ctx, session.RefreshTokenKey, *resp.Refresh); err != nil {
			return fmt.Errorf("persist refresh token: %w", err)
		}
	} else if err := g.store.Delete(ctx, session.RefreshTokenKey); err != nil {
		return fmt.Errorf("drop stale refresh token: %w", err)
	}
	if err := g.store.Set(ctx, session.UsernameKey, username); err != nil {
		return fmt.Errorf("persist username: %w", err)
	}
	return nil
}

// Register creates an account and returns the backend's representation untouched.
func (g *Gateway) Register(ctx context.Context, reg Registration) (json.RawMessage, error) {
	if err := g.validator.ValidateRegistration(reg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	var created json.RawMessage
	if err := g.postJSON(ctx, g.registerURL, reg, &created); err != nil {
		log.Err(err).Str("username", reg.Username).Msg("Registration failed")
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	log.Info().Str("username", reg.Username).Msg("Registered")
	return created, nil
}

// Logout clears the session and sends the user to the login view. Calling it without a
// session is harmless.
func (g *Gateway) Logout(ctx context.Context) error {
	g.mu.Lock()
	err := g.clear(ctx)
	g.mu.Unlock()

	g.navigator.Navigate(LoginRoute)
	return err
}

// clear must be called with g.mu held.
func (g *Gateway) clear(ctx context.Context) error {
	err := g.store.Delete(ctx, session.Keys...)
	g.generation++
	g.publish(session.Snapshot{})
	if err != nil {
		log.Err(err).Msg("Failed to clear persisted session")
		return fmt.Errorf("clear session: %w", err)
	}
	log.Info().Msg("Logged out")
	return nil
}

// RefreshToken exchanges the stored refresh token for a new access token and returns it.
// Any failure ends the session.
func (g *Gateway) RefreshToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	gen := g.generation
	refresh, ok, err := g.store.Get(ctx, session.RefreshTokenKey)
	g.mu.Unlock()

	if err != nil {
		g.endGeneration(ctx, gen)
		return "", fmt.Errorf("%w: read refresh token: %w", ErrSessionExpired, err)
	}
	if !ok || refresh == "" {
		g.endGeneration(ctx, gen)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, ErrNoRefreshToken)
	}

	var resp tokenResponse
	err = g.postJSON(ctx, g.refreshURL, refreshRequest{Refresh: refresh}, &resp)
	if err == nil && resp.Access == "" {
		err = errors.New("refresh response has no access token")
	}
	if err != nil {
		log.Err(err).Msg("Token refresh failed")
		g.endGeneration(ctx, gen)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.generation != gen {
		log.Warn().Msg("Discarding token refresh that finished after the session ended")
		return "", ErrSessionExpired
	}
	if err := g.store.Set(ctx, session.AccessTokenKey, resp.Access); err != nil {
		return "", fmt.Errorf("%w: persist access token: %w", ErrSessionExpired, err)
	}
	if resp.Refresh != nil && *resp.Refresh != "" {
		if err := g.store.Set(ctx, session.RefreshTokenKey, *resp.Refresh); err != nil {
			return "", fmt.Errorf("%w: persist refresh token: %w", ErrSessionExpired, err)
		}
	}
	log.Debug().Bool("rotated", resp.Refresh != nil).Msg("Access token refreshed")
	return resp.Access, nil
}

// endGeneration logs out unless a newer login or logout already replaced the session.
func (g *Gateway) endGeneration(ctx context.Context, gen uint64) {
	g.mu.Lock()
	if g.generation != gen {
		g.mu.Unlock()
		return
	}
	_ = g.clear(ctx)
	g.mu.Unlock()

	g.navigator.Navigate(LoginRoute)
}

func (g *Gateway) IsAuthenticated() bool {
	return g.state.IsAuthenticated()
}

func (g *Gateway) State() *session.State {
	return g.state
}

// Scheme is the Authorization header scheme the backend expects.
func (g *Gateway) Scheme() string {
	return g.scheme
}

// AccessToken reads the stored access token. A store failure reads as no token.
func (g *Gateway) AccessToken(ctx context.Context) (string, bool) {
	return g.read(ctx, session.AccessTokenKey)
}

// StoredRefreshToken reads the stored refresh token.
func (g *Gateway) StoredRefreshToken(ctx context.Context) (string, bool) {
	return g.read(ctx, session.RefreshTokenKey)
}

func (g *Gateway) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := g.store.Get(ctx, key)
	if err != nil {
		log.Err(err).Str("key", key).Msg("Failed to read session store")
		return "", false
	}
	return v, ok && v != ""
}

// Token implements oauth2.TokenSource over the current session. Expiry comes from the access
// token's exp claim when it is a JWT.
func (g *Gateway) Token() (*oauth2.Token, error) {
	ctx := context.Background()
	access, ok := g.AccessToken(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	refresh, _ := g.StoredRefreshToken(ctx)

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    g.scheme,
	}
	if claims, err := parseClaims(access); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}
