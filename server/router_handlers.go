package server

import (
	"net/http"

	"github.com/jrsteele09/solar-dashboard/api"
)

func (s *Server) ListRoutersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routers, err := s.api.ListRouters(r.Context())
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if routers == nil {
			routers = []api.Router{}
		}
		writeJSON(w, http.StatusOK, routers)
	}
}

func (s *Server) GetRouterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		router, err := s.api.GetRouter(r.Context(), id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, router)
	}
}

func (s *Server) CreateRouterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var router api.Router
		if err := decodeJSON(r, &router); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		created, err := s.api.CreateRouter(r.Context(), router)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateRouterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		var router api.Router
		if err := decodeJSON(r, &router); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		updated, err := s.api.UpdateRouter(r.Context(), id, router)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteRouterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := s.api.DeleteRouter(r.Context(), id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) TestConnectionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		msg, err := s.api.TestConnection(r.Context(), id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

func (s *Server) RouterTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := s.api.RouterTypes(r.Context())
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if types == nil {
			types = []api.RouterType{}
		}
		writeJSON(w, http.StatusOK, types)
	}
}
