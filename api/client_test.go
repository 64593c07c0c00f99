package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/solar-dashboard/api"
	"github.com/jrsteele09/solar-dashboard/auth"
	"github.com/jrsteele09/solar-dashboard/authorizer"
	"github.com/jrsteele09/solar-dashboard/internal/backendfake"
	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"github.com/jrsteele09/solar-dashboard/session"
	"github.com/jrsteele09/solar-dashboard/session/storefake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIdentifier = "5f0c8a3e-2b7d-4c1e-9a65-3d2f1e0b7c44"

type testFixture struct {
	backend *backendfake.Backend
	gateway *auth.Gateway
	client  *api.Client
}

// setupTestFixture returns a client logged in as alice against a fresh backend.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()

	backend := backendfake.New(t)
	store := storefake.NewFakeStore()
	state, publish, err := session.NewState(ctx, store)
	require.NoError(t, err)

	gateway, err := auth.NewGateway(backend.APIConfig(), store, state, publish,
		auth.WithNavigator(auth.NavigatorFunc(func(string) {})))
	require.NoError(t, err)
	require.NoError(t, gateway.Login(ctx, auth.Credentials{Username: "alice", Password: "secret"}))

	client, err := api.NewClient(backend.BaseURL(), authorizer.New(gateway).Client(5*time.Second))
	require.NoError(t, err)

	return &testFixture{backend: backend, gateway: gateway, client: client}
}

func decode(t *testing.T, r *http.Request, v any) {
	t.Helper()
	assert.NoError(t, json.NewDecoder(r.Body).Decode(v))
}

func TestNewClient(t *testing.T) {
	_, err := api.NewClient("", http.DefaultClient)
	require.Error(t, err)
	_, err = api.NewClient("http://localhost:8000/api", nil)
	require.Error(t, err)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	f.backend.Handle("GET /routeurs/404/", func(w http.ResponseWriter, r *http.Request) {
		backendfake.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	f.backend.Handle("GET /routeurs/500/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.client.GetRouter(ctx, 404)
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("backend failure keeps the body", func(t *testing.T) {
		_, err := f.client.GetRouter(ctx, 500)
		require.ErrorIs(t, err, apperrors.ErrBackend)

		var apiErr *apperrors.APIError
		require.True(t, apperrors.As(err, &apiErr))
		require.Equal(t, http.StatusInternalServerError, apiErr.Status)
		require.Equal(t, "boom", apiErr.Detail)
	})

	t.Run("session expired after failed refresh", func(t *testing.T) {
		f.backend.ExpireAccess()
		f.backend.FailRefresh(http.StatusUnauthorized)

		_, err := f.client.ListRouters(ctx)
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
		require.False(t, f.gateway.IsAuthenticated())
	})

	t.Run("connectivity", func(t *testing.T) {
		f.backend.Close()
		_, err := f.client.ListRouters(ctx)
		require.ErrorIs(t, err, apperrors.ErrConnectivity)
	})
}

func TestClient_TransparentRefresh(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.backend.Handle("GET /router-types/", func(w http.ResponseWriter, r *http.Request) {
		backendfake.WriteJSON(w, http.StatusOK, []api.RouterType{{ID: 1, Name: "ESP32"}})
	})

	f.backend.ExpireAccess()
	types, err := f.client.RouterTypes(ctx)
	require.NoError(t, err)
	require.Equal(t, []api.RouterType{{ID: 1, Name: "ESP32"}}, types)
	require.EqualValues(t, 1, f.backend.RefreshCalls.Load())
}
