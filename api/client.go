// Package api is the client for the solar router backend's resources. Authentication is not
// handled here: the http.Client it is given is expected to carry the request authorizer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"github.com/jrsteele09/solar-dashboard/internal/utils"
	"github.com/rs/zerolog/log"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] base URL is required")
	}
	if httpClient == nil {
		return nil, errors.New("[NewClient] http client is required")
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// do sends a JSON request and decodes a JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := utils.JoinURL(c.baseURL, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.Wrapf(err, "failed to encode %s %s", method, path)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperrors.Wrapf(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("method", method).Str("path", path).Msg("Backend unreachable")
		return fmt.Errorf("%w: %w", apperrors.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", apperrors.ErrConnectivity, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apperrors.FromResponse(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized {
			// The authorizer already tried a refresh, so the session is over.
			return fmt.Errorf("%w: %w", apperrors.ErrSessionExpired, apiErr)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrapf(err, "failed to parse %s %s response", method, path)
	}
	return nil
}

// fieldErrors collects client-side validation failures in the backend's field error shape.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewAPIError(http.StatusBadRequest, "", f, apperrors.ErrValidation)
}
