package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/solar-dashboard/auth"
	"github.com/jrsteele09/solar-dashboard/internal/backendfake"
	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"github.com/jrsteele09/solar-dashboard/session"
	"github.com/jrsteele09/solar-dashboard/session/storefake"
	"github.com/stretchr/testify/require"
)

// testFixture holds all test dependencies
type testFixture struct {
	backend  *backendfake.Backend
	store    *storefake.FakeStore
	state    *session.State
	gateway  *auth.Gateway
	navMutex sync.Mutex
	navs     []string
}

func newTestFixture(t *testing.T, options ...backendfake.Option) *testFixture {
	t.Helper()

	f := &testFixture{
		backend: backendfake.New(t, options...),
		store:   storefake.NewFakeStore(),
	}
	state, publish, err := session.NewState(context.Background(), f.store)
	require.NoError(t, err)
	f.state = state

	f.gateway, err = auth.NewGateway(f.backend.APIConfig(), f.store, state, publish,
		auth.WithNavigator(auth.NavigatorFunc(func(path string) {
			f.navMutex.Lock()
			defer f.navMutex.Unlock()
			f.navs = append(f.navs, path)
		})),
	)
	require.NoError(t, err)
	return f
}

func (f *testFixture) navigations() []string {
	f.navMutex.Lock()
	defer f.navMutex.Unlock()
	return append([]string(nil), f.navs...)
}

func (f *testFixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestNewGateway_Validation(t *testing.T) {
	store := storefake.NewFakeStore()
	state, publish, err := session.NewState(context.Background(), store)
	require.NoError(t, err)

	backend := backendfake.New(t)

	_, err = auth.NewGateway(nil, store, state, publish)
	require.Error(t, err)
	_, err = auth.NewGateway(backend.APIConfig(), nil, state, publish)
	require.Error(t, err)
	_, err = auth.NewGateway(backend.APIConfig(), store, nil, publish)
	require.Error(t, err)
}

func TestGateway_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists then publishes", func(t *testing.T) {
		f := newTestFixture(t)
		require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))

		require.True(t, f.gateway.IsAuthenticated())
		require.Equal(t, "alice", f.state.Username())

		access, ok := f.gateway.AccessToken(ctx)
		require.True(t, ok)
		require.Equal(t, "AT1", access)

		refresh, ok := f.gateway.StoredRefreshToken(ctx)
		require.True(t, ok)
		require.Equal(t, "RT1", refresh)

		username, ok := f.stored(t, session.UsernameKey)
		require.True(t, ok)
		require.Equal(t, "alice", username)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newTestFixture(t)
		err := f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "nope"})
		require.ErrorIs(t, err, auth.ErrLoginFailed)

		var apiErr *apperrors.APIError
		require.False(t, apperrors.As(err, &apiErr), "backend detail must not leak through login errors")
		require.False(t, f.gateway.IsAuthenticated())
		require.Zero(t, f.store.Len())
	})

	t.Run("blank credentials never reach the backend", func(t *testing.T) {
		f := newTestFixture(t)
		err := f.gateway.Login(ctx, auth.Credentials{Username: "alice"})
		require.ErrorIs(t, err, auth.ErrLoginFailed)
		require.Zero(t, f.backend.LoginCalls.Load())
	})

	t.Run("backend unreachable", func(t *testing.T) {
		f := newTestFixture(t)
		f.backend.Close()
		err := f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"})
		require.ErrorIs(t, err, auth.ErrLoginFailed)
		require.False(t, f.gateway.IsAuthenticated())
	})

	t.Run("store failure leaves state untouched", func(t *testing.T) {
		f := newTestFixture(t)
		f.store.Err = context.DeadlineExceeded
		err := f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"})
		require.ErrorIs(t, err, auth.ErrLoginFailed)
		require.False(t, f.gateway.IsAuthenticated())
	})

	t.Run("failed re-login drops the previous session", func(t *testing.T) {
		f := newTestFixture(t)
		require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))
		require.True(t, f.gateway.IsAuthenticated())

		f.store.SetErrs = map[string]error{session.UsernameKey: errors.New("disk full")}
		err := f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"})
		require.ErrorIs(t, err, auth.ErrLoginFailed)

		_, stored := f.gateway.AccessToken(ctx)
		require.False(t, stored)
		require.False(t, f.gateway.IsAuthenticated())
		require.Empty(t, f.state.Username())
		require.Zero(t, f.store.Len())
	})
}

func TestGateway_LoginWithoutRefreshToken(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendfake.WriteJSON(w, http.StatusOK, map[string]string{"access": "AT9", "username": "Alice A."})
	}))
	defer srv.Close()

	store := storefake.NewFakeStore()
	// A previous session's refresh token must not survive a login that did not issue one.
	require.NoError(t, store.Set(ctx, session.RefreshTokenKey, "RT-old"))

	state, publish, err := session.NewState(ctx, store)
	require.NoError(t, err)
	gateway, err := auth.NewGateway(backendfake.ConfigFor(srv.URL, "Bearer"), store, state, publish)
	require.NoError(t, err)

	require.NoError(t, gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))
	require.Equal(t, "Alice A.", state.Username())

	_, ok := gateway.StoredRefreshToken(ctx)
	require.False(t, ok)
}

func TestGateway_Register(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t)

	t.Run("created", func(t *testing.T) {
		raw, err := f.gateway.Register(ctx, auth.Registration{
			Username:        "bob",
			Email:           "bob@example.com",
			Password:        "password123",
			PasswordConfirm: "password123",
		})
		require.NoError(t, err)

		var created map[string]any
		require.NoError(t, json.Unmarshal(raw, &created))
		require.Equal(t, "bob", created["username"])
		require.False(t, f.gateway.IsAuthenticated(), "registration does not log in")
	})

	t.Run("local validation skips the backend", func(t *testing.T) {
		_, err := f.gateway.Register(ctx, auth.Registration{
			Username:        "carol",
			Password:        "password123",
			PasswordConfirm: "password124",
		})
		require.ErrorIs(t, err, auth.ErrRegistrationFailed)
		require.ErrorIs(t, err, apperrors.ErrValidation)

		var apiErr *apperrors.APIError
		require.True(t, apperrors.As(err, &apiErr))
		require.Contains(t, apiErr.Fields, "password")
		require.NotContains(t, apiErr.Fields, "username")
	})

	t.Run("backend field errors are surfaced", func(t *testing.T) {
		_, err := f.gateway.Register(ctx, auth.Registration{
			Username:        "bob",
			Password:        "password123",
			PasswordConfirm: "password123",
		})
		require.ErrorIs(t, err, auth.ErrRegistrationFailed)
		require.ErrorIs(t, err, apperrors.ErrValidation)

		var apiErr *apperrors.APIError
		require.True(t, apperrors.As(err, &apiErr))
		require.Contains(t, apiErr.Fields, "username")
	})
}

func TestGateway_Logout(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t)
	require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))

	require.NoError(t, f.gateway.Logout(ctx))
	require.False(t, f.gateway.IsAuthenticated())
	require.Empty(t, f.state.Username())
	require.Zero(t, f.store.Len())

	_, ok := f.gateway.AccessToken(ctx)
	require.False(t, ok)

	// Already logged out.
	require.NoError(t, f.gateway.Logout(ctx))
	require.Equal(t, []string{auth.LoginRoute, auth.LoginRoute}, f.navigations())
}

func TestGateway_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("success keeps refresh token", func(t *testing.T) {
		f := newTestFixture(t)
		require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))

		access, err := f.gateway.RefreshToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "AT2", access)

		stored, _ := f.gateway.AccessToken(ctx)
		require.Equal(t, "AT2", stored)
		refresh, _ := f.gateway.StoredRefreshToken(ctx)
		require.Equal(t, "RT1", refresh)
		require.True(t, f.gateway.IsAuthenticated())
	})

	t.Run("rotation replaces refresh token", func(t *testing.T) {
		f := newTestFixture(t, backendfake.WithRotation())
		require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))

		_, err := f.gateway.RefreshToken(ctx)
		require.NoError(t, err)
		refresh, _ := f.gateway.StoredRefreshToken(ctx)
		require.Equal(t, "RT2", refresh)
	})

	t.Run("no refresh token forces logout", func(t *testing.T) {
		f := newTestFixture(t)
		require.NoError(t, f.store.Set(ctx, session.AccessTokenKey, "AT-orphan"))

		_, err := f.gateway.RefreshToken(ctx)
		require.ErrorIs(t, err, auth.ErrNoRefreshToken)
		require.ErrorIs(t, err, auth.ErrSessionExpired)
		require.Zero(t, f.store.Len())
		require.Equal(t, []string{auth.LoginRoute}, f.navigations())
		require.Zero(t, f.backend.RefreshCalls.Load())
	})

	t.Run("rejected refresh forces logout", func(t *testing.T) {
		f := newTestFixture(t)
		require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))
		f.backend.FailRefresh(http.StatusInternalServerError)

		_, err := f.gateway.RefreshToken(ctx)
		require.ErrorIs(t, err, auth.ErrSessionExpired)
		require.False(t, f.gateway.IsAuthenticated())
		require.Zero(t, f.store.Len())
		require.Equal(t, []string{auth.LoginRoute}, f.navigations())
	})

	t.Run("refresh finishing after logout is discarded", func(t *testing.T) {
		f := newTestFixture(t)
		require.NoError(t, f.gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))
		f.backend.SlowRefresh(200 * time.Millisecond)

		done := make(chan error, 1)
		go func() {
			_, err := f.gateway.RefreshToken(ctx)
			done <- err
		}()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, f.gateway.Logout(ctx))

		require.ErrorIs(t, <-done, auth.ErrSessionExpired)
		require.False(t, f.gateway.IsAuthenticated())
		require.Zero(t, f.store.Len())
		require.Equal(t, []string{auth.LoginRoute}, f.navigations(), "a stale refresh must not log out twice")
	})
}

func TestGateway_Token(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t)

	_, err := f.gateway.Token()
	require.ErrorIs(t, err, auth.ErrNotAuthenticated)

	expiry := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     expiry.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, session.AccessTokenKey, signed))
	require.NoError(t, f.store.Set(ctx, session.RefreshTokenKey, "RT1"))

	tok, err := f.gateway.Token()
	require.NoError(t, err)
	require.Equal(t, signed, tok.AccessToken)
	require.Equal(t, "RT1", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.True(t, expiry.Equal(tok.Expiry))
	require.True(t, tok.Valid())
}
