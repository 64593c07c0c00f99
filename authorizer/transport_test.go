package authorizer_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/solar-dashboard/auth"
	"github.com/jrsteele09/solar-dashboard/authorizer"
	"github.com/jrsteele09/solar-dashboard/guard"
	"github.com/jrsteele09/solar-dashboard/internal/backendfake"
	"github.com/jrsteele09/solar-dashboard/session"
	"github.com/jrsteele09/solar-dashboard/session/storefake"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type testFixture struct {
	backend *backendfake.Backend
	store   *storefake.FakeStore
	gateway *auth.Gateway
	client  *http.Client
}

func newTestFixture(t *testing.T, options ...backendfake.Option) *testFixture {
	t.Helper()

	backend := backendfake.New(t, options...)
	backend.Handle("GET /ping/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(authorizer.RequestIDHeader) == "" {
			backendfake.WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing request id"})
			return
		}
		backendfake.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	backend.Handle("POST /echo/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})

	store := storefake.NewFakeStore()
	state, publish, err := session.NewState(context.Background(), store)
	require.NoError(t, err)

	gateway, err := auth.NewGateway(backend.APIConfig(), store, state, publish,
		auth.WithNavigator(auth.NavigatorFunc(func(string) {})))
	require.NoError(t, err)

	return &testFixture{
		backend: backend,
		store:   store,
		gateway: gateway,
		client:  authorizer.New(gateway).Client(5 * time.Second),
	}
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.gateway.Login(context.Background(), auth.Credentials{Username: "alice", Password: "secret"}))
}

func (f *testFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.Get(f.backend.BaseURL() + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func count(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}

func TestTransport_NoTokenNoHeader(t *testing.T) {
	f := newTestFixture(t)

	resp := f.get(t, "/ping/")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, []string{""}, f.backend.Authorizations())
	require.Zero(t, f.backend.RefreshCalls.Load(), "an anonymous 401 must not trigger a refresh")
}

func TestTransport_AttachesToken(t *testing.T) {
	f := newTestFixture(t)
	f.login(t)

	resp := f.get(t, "/ping/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"Bearer AT1"}, f.backend.Authorizations())
}

func TestTransport_TokenScheme(t *testing.T) {
	f := newTestFixture(t, backendfake.WithScheme("Token"))
	f.login(t)

	resp := f.get(t, "/ping/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"Token AT1"}, f.backend.Authorizations())
}

func TestTransport_ConcurrentExpiryRefreshesOnce(t *testing.T) {
	const requests = 5

	f := newTestFixture(t)
	f.login(t)
	f.backend.ExpireAccess()
	f.backend.SlowRefresh(100 * time.Millisecond)

	var g errgroup.Group
	statuses := make([]int, requests)
	for i := range requests {
		g.Go(func() error {
			resp, err := f.client.Get(f.backend.BaseURL() + "/ping/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, status := range statuses {
		require.Equal(t, http.StatusOK, status)
	}
	require.EqualValues(t, 1, f.backend.RefreshCalls.Load())
	require.Equal(t, requests, count(f.backend.Authorizations(), "Bearer AT2"), "each request succeeds exactly once with the new token")

	access, _ := f.gateway.AccessToken(context.Background())
	require.Equal(t, "AT2", access)
}

func TestTransport_LateRequestReusesCompletedRefresh(t *testing.T) {
	f := newTestFixture(t)
	f.login(t)
	f.backend.ExpireAccess()

	require.Equal(t, http.StatusOK, f.get(t, "/ping/").StatusCode)
	require.Equal(t, http.StatusOK, f.get(t, "/ping/").StatusCode)
	require.EqualValues(t, 1, f.backend.RefreshCalls.Load())
	require.Equal(t, []string{"Bearer AT1", "Bearer AT2", "Bearer AT2"}, f.backend.Authorizations())
}

func TestTransport_FailedRefreshEndsSession(t *testing.T) {
	f := newTestFixture(t)
	f.login(t)
	f.backend.ExpireAccess()
	f.backend.FailRefresh(http.StatusInternalServerError)

	resp := f.get(t, "/ping/")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "the original response is returned")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "token_not_valid")

	require.False(t, f.gateway.IsAuthenticated())
	require.Zero(t, f.store.Len())
	require.EqualValues(t, 1, f.backend.RefreshCalls.Load())

	d := guard.New(f.gateway, auth.LoginRoute).CanActivate("/dashboard")
	require.False(t, d.Allowed)
	require.Equal(t, auth.LoginRoute, d.Redirect)

	// With the session gone the next request goes out bare and nothing is refreshed.
	require.Equal(t, http.StatusUnauthorized, f.get(t, "/ping/").StatusCode)
	require.EqualValues(t, 1, f.backend.RefreshCalls.Load())
	require.Equal(t, []string{"Bearer AT1", ""}, f.backend.Authorizations())
}

func TestTransport_ReplaysBody(t *testing.T) {
	f := newTestFixture(t)
	f.login(t)
	f.backend.ExpireAccess()

	t.Run("body without GetBody", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, f.backend.BaseURL()+"/echo/", io.NopCloser(strings.NewReader(`{"nom":"garage"}`)))
		require.NoError(t, err)
		require.Nil(t, req.GetBody)

		resp, err := f.client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, `{"nom":"garage"}`, string(body))
	})

	t.Run("body with GetBody", func(t *testing.T) {
		f.backend.ExpireAccess()
		resp, err := f.client.Post(f.backend.BaseURL()+"/echo/", "application/json", strings.NewReader(`{"nom":"cave"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, `{"nom":"cave"}`, string(body))
	})
	require.EqualValues(t, 2, f.backend.RefreshCalls.Load())
}

func TestTransport_RefreshSurvivesCallerCancellation(t *testing.T) {
	f := newTestFixture(t)
	f.login(t)
	f.backend.ExpireAccess()
	f.backend.SlowRefresh(150 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.backend.BaseURL()+"/ping/", nil)
	require.NoError(t, err)

	// The refresh runs on a detached context, so the caller waits for it before seeing its own
	// deadline on the replay.
	resp, err := f.client.Do(req)
	if err == nil {
		resp.Body.Close()
	}

	require.Eventually(t, func() bool {
		access, _ := f.gateway.AccessToken(context.Background())
		return access == "AT2"
	}, time.Second, 10*time.Millisecond)
	require.True(t, f.gateway.IsAuthenticated())
}
