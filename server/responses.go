package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description,omitempty"`
	Fields           map[string][]string `json:"fields,omitempty"`
	Redirect         string              `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, errorResponse{Error: errorCode, ErrorDescription: description})
}

// writeAppError maps an error from the auth gateway or the API client to a response.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{ErrorDescription: err.Error()}
	status := http.StatusInternalServerError

	var apiErr *apperrors.APIError
	if apperrors.As(err, &apiErr) {
		resp.ErrorDescription = apiErr.Detail
		resp.Fields = apiErr.Fields
	}

	switch {
	case apperrors.Is(err, apperrors.ErrSessionExpired), apperrors.Is(err, apperrors.ErrNotAuthenticated):
		status, resp.Error, resp.Redirect = http.StatusUnauthorized, "session_expired", RouteAuthLogin
		resp.ErrorDescription = "Your session has expired, please log in again"
	case apperrors.Is(err, apperrors.ErrLoginFailed):
		status, resp.Error = http.StatusUnauthorized, "login_failed"
		resp.ErrorDescription = "Invalid username or password"
	case apperrors.Is(err, apperrors.ErrValidation):
		status, resp.Error = http.StatusBadRequest, "validation_failed"
	case apperrors.Is(err, apperrors.ErrNotFound):
		status, resp.Error = http.StatusNotFound, "not_found"
	case apperrors.Is(err, apperrors.ErrForbidden):
		status, resp.Error = http.StatusForbidden, "forbidden"
	case apperrors.Is(err, apperrors.ErrConnectivity):
		status, resp.Error = http.StatusBadGateway, "backend_unreachable"
		resp.ErrorDescription = "The solar router backend could not be reached"
	case apperrors.Is(err, apperrors.ErrBackend):
		status, resp.Error = http.StatusBadGateway, "backend_error"
	default:
		resp.Error = "internal_error"
	}

	if status >= 500 {
		log.Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	writeJSON(w, status, resp)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperrors.NewAPIError(http.StatusBadRequest, "malformed JSON body: "+err.Error(), nil, apperrors.ErrValidation)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, apperrors.NewAPIError(http.StatusBadRequest, "invalid id "+strconv.Quote(r.PathValue("id")), nil, apperrors.ErrValidation)
	}
	return id, nil
}
