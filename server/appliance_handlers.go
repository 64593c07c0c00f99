package server

import (
	"net/http"

	"github.com/jrsteele09/solar-dashboard/api"
)

// applianceForm is the appliance editor: the appliance and its configuration saved together.
type applianceForm struct {
	Appliance     api.Appliance     `json:"appareil"`
	Configuration api.Configuration `json:"configuration"`
}

func (s *Server) ListAppliancesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routerID, err := pathID(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		appliances, err := s.api.ListAppliances(r.Context(), routerID)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if appliances == nil {
			appliances = []api.Appliance{}
		}
		writeJSON(w, http.StatusOK, appliances)
	}
}

// SaveApplianceHandler serves both POST /appareils and PUT /appareils/{id}.
func (s *Server) SaveApplianceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form applianceForm
		if err := decodeJSON(r, &form); err != nil {
			s.writeAppError(w, r, err)
			return
		}

		status := http.StatusCreated
		form.Appliance.ID = 0
		if r.PathValue("id") != "" {
			id, err := pathID(r)
			if err != nil {
				s.writeAppError(w, r, err)
				return
			}
			form.Appliance.ID = id
			status = http.StatusOK
		}
		if form.Appliance.Configuration != nil && form.Configuration.ID == 0 {
			form.Configuration.ID = form.Appliance.Configuration.ID
		}

		saved, err := s.api.SaveAppliance(r.Context(), form.Appliance, form.Configuration)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, status, saved)
	}
}

func (s *Server) DeleteApplianceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := s.api.DeleteAppliance(r.Context(), id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
