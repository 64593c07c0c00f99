// Package authorizer attaches the session's access token to outgoing backend requests and
// recovers from an expired token with one coordinated refresh.
package authorizer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

const RequestIDHeader = "X-Request-ID"

// TokenSource is the part of the auth gateway the transport needs.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, error)
	Scheme() string
}

// Transport is an http.RoundTripper. Requests carry the stored access token; a 401 on a request
// that carried one triggers a refresh shared by every request that fails while it runs, after
// which each of them is replayed exactly once.
type Transport struct {
	base   http.RoundTripper
	tokens TokenSource

	mu       sync.Mutex
	inflight *refreshCall
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

func (c *refreshCall) wait(ctx context.Context) (string, error) {
	select {
	case <-c.done:
		return c.token, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Option defines a function type to modify the Transport instance.
type Option func(*Transport)

// WithBase sets the transport that performs the actual round trips.
func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = rt
	}
}

func New(tokens TokenSource, options ...Option) *Transport {
	t := &Transport{
		base:   http.DefaultTransport,
		tokens: tokens,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Client returns an http.Client that sends everything through t.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, ok := t.tokens.AccessToken(ctx)
	if !ok {
		return t.base.RoundTrip(t.prepare(req, ""))
	}

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	first := t.prepare(req, token)
	if getBody != nil {
		first.Body, _ = getBody()
	}
	resp, err := t.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	fresh, err := t.awaitRefresh(ctx, token)
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Str("url", req.URL.Redacted()).Msg("Session could not be refreshed")
		return resp, nil
	}

	replay := t.prepare(req, fresh)
	if getBody != nil {
		if replay.Body, err = getBody(); err != nil {
			return resp, nil
		}
	}
	drain(resp)

	log.Debug().Str("method", req.Method).Str("url", req.URL.Redacted()).Msg("Replaying request with refreshed token")
	return t.base.RoundTrip(replay)
}

// awaitRefresh returns the token to replay a request with after stale was rejected. If the
// stored token already differs from stale, a refresh has completed since the request was sent
// and its result is used as is.
func (t *Transport) awaitRefresh(ctx context.Context, stale string) (string, error) {
	t.mu.Lock()
	if call := t.inflight; call != nil {
		t.mu.Unlock()
		return call.wait(ctx)
	}

	current, ok := t.tokens.AccessToken(ctx)
	if !ok {
		t.mu.Unlock()
		return "", apperrors.ErrSessionExpired
	}
	if current != stale {
		t.mu.Unlock()
		return current, nil
	}

	call := &refreshCall{done: make(chan struct{})}
	t.inflight = call
	t.mu.Unlock()

	// Waiters depend on this call, so one caller's cancellation must not abort it.
	call.token, call.err = t.tokens.RefreshToken(context.WithoutCancel(ctx))

	t.mu.Lock()
	t.inflight = nil
	t.mu.Unlock()
	close(call.done)

	return call.token, call.err
}

func (t *Transport) prepare(req *http.Request, token string) *http.Request {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", t.tokens.Scheme()+" "+token)
	} else {
		out.Header.Del("Authorization")
	}
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return out
}

// replayableBody returns a function producing fresh copies of the request body, or nil when
// the request has none. A body without GetBody is read into memory once.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		first := true
		return func() (io.ReadCloser, error) {
			if first {
				first = false
				return req.Body, nil
			}
			return req.GetBody()
		}, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
