package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/solar-dashboard/api"
	"github.com/jrsteele09/solar-dashboard/dashboard"
	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
)

type dashboardResponse struct {
	Overview dashboard.Overview `json:"overview"`
	View     *dashboard.View    `json:"view,omitempty"`
}

// DashboardHandler loads the router list and the chart of the selected router. Query
// parameters: routeur (defaults to the first router), date (YYYY-MM-DD, defaults to today)
// and period (day, month or year).
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		period, err := dashboard.ParsePeriod(q.Get("period"))
		if err != nil {
			s.writeAppError(w, r, apperrors.NewAPIError(http.StatusBadRequest, err.Error(), nil, apperrors.ErrValidation))
			return
		}

		var date time.Time
		if raw := q.Get("date"); raw != "" {
			if date, err = time.ParseInLocation(api.DateLayout, raw, time.Local); err != nil {
				s.writeAppError(w, r, apperrors.NewAPIError(http.StatusBadRequest, "date must be YYYY-MM-DD", nil, apperrors.ErrValidation))
				return
			}
		}

		overview, err := s.dashboard.Overview(r.Context())
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		resp := dashboardResponse{Overview: overview}

		routerID := 0
		if overview.Selected != nil {
			routerID = overview.Selected.ID
		}
		if raw := q.Get("routeur"); raw != "" {
			if routerID, err = strconv.Atoi(raw); err != nil {
				s.writeAppError(w, r, apperrors.NewAPIError(http.StatusBadRequest, "routeur must be a number", nil, apperrors.ErrValidation))
				return
			}
		}

		if routerID > 0 {
			view, err := s.dashboard.View(r.Context(), routerID, date, period)
			if err != nil {
				s.writeAppError(w, r, err)
				return
			}
			resp.View = &view
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
