// Package server exposes the dashboard's views as a local HTTP surface. Public routes handle
// the session; everything else sits behind the route guard.
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/solar-dashboard/api"
	"github.com/jrsteele09/solar-dashboard/auth"
	"github.com/jrsteele09/solar-dashboard/dashboard"
	"github.com/jrsteele09/solar-dashboard/guard"
	"github.com/jrsteele09/solar-dashboard/internal/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	gateway   *auth.Gateway
	guard     *guard.Guard
	api       *api.Client
	dashboard *dashboard.Dashboard
}

func New(config config.Config, gateway *auth.Gateway, guard *guard.Guard, client *api.Client, dash *dashboard.Dashboard) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if gateway == nil || guard == nil {
		return nil, errors.New("[Server New] gateway and guard are required")
	}
	if client == nil || dash == nil {
		return nil, errors.New("[Server New] api client and dashboard are required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		gateway:   gateway,
		guard:     guard,
		api:       client,
		dashboard: dash,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists every registered pattern in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}
