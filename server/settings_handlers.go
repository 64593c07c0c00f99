package server

import (
	"net/http"

	"github.com/jrsteele09/solar-dashboard/api"
)

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var change api.PasswordChange
		if err := decodeJSON(r, &change); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := s.api.ChangePassword(r.Context(), change); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
	}
}

// GeneralConfigurationHandler shows which backend the dashboard talks to.
func (s *Server) GeneralConfigurationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"appName":    s.config.GetAppName(),
			"apiBaseUrl": s.config.GetAPIBaseURL(),
			"authScheme": s.config.GetAuthScheme(),
			"username":   s.gateway.State().Username(),
			"env":        s.env,
		})
	}
}
