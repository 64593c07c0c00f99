package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// FromResponse decodes a DRF style error body. It understands {"detail": "..."}, field maps whose
// values are strings or string lists, and falls back to the raw body as the detail.
func FromResponse(status int, body []byte) *APIError {
	kind := kindForStatus(status)
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return NewAPIError(status, http.StatusText(status), nil, kind)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return NewAPIError(status, trimmed, nil, kind)
	}

	var detail string
	fields := make(map[string][]string)
	for k, v := range raw {
		if k == "detail" || k == "message" {
			detail = fmt.Sprint(v)
			continue
		}
		switch val := v.(type) {
		case []any:
			for _, item := range val {
				fields[k] = append(fields[k], fmt.Sprint(item))
			}
		default:
			fields[k] = append(fields[k], fmt.Sprint(val))
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return NewAPIError(status, detail, fields, kind)
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrNotAuthenticated
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return ErrBackend
}
