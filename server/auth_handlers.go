package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/solar-dashboard/auth"
	"github.com/rs/zerolog/log"
)

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	TokenType     string     `json:"tokenType,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Redirect      string     `json:"redirect,omitempty"`
}

func (s *Server) currentSession() sessionResponse {
	snap := s.gateway.State().Snapshot()
	resp := sessionResponse{Authenticated: snap.Authenticated, Username: snap.Username}
	if !snap.Authenticated {
		return resp
	}
	if tok, err := s.gateway.Token(); err == nil {
		resp.TokenType = tok.TokenType
		if !tok.Expiry.IsZero() {
			expiry := tok.Expiry
			resp.ExpiresAt = &expiry
		}
	}
	return resp
}

// RootHandler sends visitors to the welcome page.
func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteAccueil, http.StatusSeeOther)
	}
}

// AccueilHandler is the public welcome view.
func (s *Server) AccueilHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.gateway.State().Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"appName":       s.config.GetAppName(),
			"authenticated": snap.Authenticated,
			"username":      snap.Username,
		})
	}
}

type loginView struct {
	View          string `json:"view"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Error         string `json:"error,omitempty"`
	LoginAction   string `json:"loginAction"`
	RegisterRoute string `json:"registerRoute"`
}

// LoginViewHandler is where the guard sends anonymous visitors. A failed form login comes back
// here with its message in the error query parameter.
func (s *Server) LoginViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.gateway.State().Snapshot()
		writeJSON(w, http.StatusOK, loginView{
			View:          "login",
			Authenticated: snap.Authenticated,
			Username:      snap.Username,
			Error:         r.URL.Query().Get("error"),
			LoginAction:   RouteAuthLogin,
			RegisterRoute: RouteAuthRegister,
		})
	}
}

// LoginHandler accepts credentials as JSON or as an HTML form. Form posts are answered with
// redirects, JSON with the new session.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		form := isFormPost(r)
		if form {
			if err := r.ParseForm(); err != nil {
				redirectWithError(w, r, RouteAuthLogin, "Invalid form submission")
				return
			}
			creds.Username = r.PostFormValue("username")
			creds.Password = r.PostFormValue("password")
		} else if err := decodeJSON(r, &creds); err != nil {
			s.writeAppError(w, r, err)
			return
		}

		if creds.Username == "" || creds.Password == "" {
			if form {
				redirectWithError(w, r, RouteAuthLogin, "Username and password are required")
				return
			}
			writeJSONError(w, "invalid_request", "Username and password are required", http.StatusBadRequest)
			return
		}

		if err := s.gateway.Login(r.Context(), creds); err != nil {
			if form {
				redirectWithError(w, r, RouteAuthLogin, "Invalid username or password")
				return
			}
			s.writeAppError(w, r, err)
			return
		}

		if form {
			redirect(w, r, RouteDashboard)
			return
		}
		writeJSON(w, http.StatusOK, s.currentSession())
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg auth.Registration
		if err := decodeJSON(r, &reg); err != nil {
			s.writeAppError(w, r, err)
			return
		}

		created, err := s.gateway.Register(r.Context(), reg)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if len(created) == 0 {
			created = json.RawMessage("{}")
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// LogoutHandler ends the session. It succeeds even without one.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gateway.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Logout could not clear the stored session")
		}
		if isFormPost(r) || isHTMXRequest(r) {
			redirect(w, r, RouteAuthLogin)
			return
		}
		resp := s.currentSession()
		resp.Redirect = RouteAuthLogin
		writeJSON(w, http.StatusOK, resp)
	}
}

// SessionHandler reports the session without touching the backend.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.currentSession())
	}
}
