// Package backendfake runs an in-process stand-in for the solar router backend. It issues
// sequential tokens (AT1/RT1, AT2, ...) so tests can assert exactly which token a request carried.
package backendfake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const APIPrefix = "/api"

type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]string
	scheme   string
	access   map[string]string // token -> username
	refresh  map[string]string // token -> username
	accessN  int
	refreshN int
	rotate   bool

	refreshStatus int
	refreshDelay  time.Duration
	resources     *http.ServeMux
	seen          []string

	RefreshCalls atomic.Int32
	LoginCalls   atomic.Int32
}

// Option defines a function type to modify the Backend instance.
type Option func(*Backend)

// WithScheme sets the Authorization scheme the backend accepts.
func WithScheme(scheme string) Option {
	return func(b *Backend) {
		b.scheme = scheme
	}
}

// WithRotation makes every refresh also issue a new refresh token.
func WithRotation() Option {
	return func(b *Backend) {
		b.rotate = true
	}
}

// WithUser registers an account.
func WithUser(username, password string) Option {
	return func(b *Backend) {
		b.users[username] = password
	}
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB, options ...Option) *Backend {
	t.Helper()

	b := &Backend{
		users:     map[string]string{"alice": "secret"},
		scheme:    "Bearer",
		access:    make(map[string]string),
		refresh:   make(map[string]string),
		resources: http.NewServeMux(),
	}
	for _, opt := range options {
		opt(b)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+APIPrefix+"/token/", b.handleLogin)
	mux.HandleFunc("POST "+APIPrefix+"/token/refresh/", b.handleRefresh)
	mux.HandleFunc("POST "+APIPrefix+"/register/", b.handleRegister)
	mux.Handle(APIPrefix+"/", b.requireToken(b.resources))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

// BaseURL is the API root to configure clients with.
func (b *Backend) BaseURL() string {
	return b.URL + APIPrefix
}

// Handle registers a protected API resource. Patterns are relative to the API root, for
// example "GET /routeurs/{$}".
func (b *Backend) Handle(pattern string, h http.HandlerFunc) {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		path, method = method, ""
	}
	full := APIPrefix + path
	if method != "" {
		full = method + " " + full
	}
	b.resources.HandleFunc(full, h)
}

// Issue creates a session for username as if it had logged in.
func (b *Backend) Issue(username string) (access, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueAccess(username), b.issueRefresh(username)
}

// ExpireAccess invalidates every issued access token.
func (b *Backend) ExpireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]string)
}

// FailRefresh makes the refresh endpoint answer with status. Zero restores normal behaviour.
func (b *Backend) FailRefresh(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshStatus = status
}

// SlowRefresh delays every refresh response.
func (b *Backend) SlowRefresh(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshDelay = d
}

// Authorizations returns the Authorization header of every protected request in arrival order.
func (b *Backend) Authorizations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.seen...)
}

func (b *Backend) issueAccess(username string) string {
	b.accessN++
	tok := fmt.Sprintf("AT%d", b.accessN)
	b.access[tok] = username
	return tok
}

func (b *Backend) issueRefresh(username string) string {
	b.refreshN++
	tok := fmt.Sprintf("RT%d", b.refreshN)
	b.refresh[tok] = username
	return tok
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.LoginCalls.Add(1)

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if pw, ok := b.users[creds.Username]; !ok || pw != creds.Password {
		WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"access":  b.issueAccess(creds.Username),
		"refresh": b.issueRefresh(creds.Username),
	})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.RefreshCalls.Add(1)

	b.mu.Lock()
	delay, status := b.refreshDelay, b.refreshStatus
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		WriteJSON(w, status, map[string]string{"detail": "refresh unavailable"})
		return
	}

	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	username, ok := b.refresh[req.Refresh]
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	resp := map[string]string{"access": b.issueAccess(username)}
	if b.rotate {
		delete(b.refresh, req.Refresh)
		resp["refresh"] = b.issueRefresh(username)
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}

	fields := map[string][]string{}
	if reg.Username == "" {
		fields["username"] = []string{"This field may not be blank."}
	}
	if reg.Password != reg.Password2 {
		fields["password"] = []string{"Password fields didn't match."}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.users[reg.Username]; exists && reg.Username != "" {
		fields["username"] = []string{"A user with that username already exists."}
	}
	if len(fields) > 0 {
		WriteJSON(w, http.StatusBadRequest, fields)
		return
	}

	b.users[reg.Username] = reg.Password
	WriteJSON(w, http.StatusCreated, map[string]any{
		"id":       len(b.users),
		"username": reg.Username,
		"email":    reg.Email,
	})
}

func (b *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		b.mu.Lock()
		b.seen = append(b.seen, header)
		scheme, token, _ := strings.Cut(header, " ")
		_, valid := b.access[token]
		valid = valid && scheme == b.scheme
		b.mu.Unlock()

		if !valid {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
