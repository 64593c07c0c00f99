// Package dashboard turns a router, a date and a period into the measurements and chart
// description shown on the dashboard.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/jrsteele09/solar-dashboard/api"
	apperrors "github.com/jrsteele09/solar-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API client the dashboard reads from.
type Backend interface {
	ListRouters(ctx context.Context) ([]api.Router, error)
	RouterTypes(ctx context.Context) ([]api.RouterType, error)
	ListMeasurements(ctx context.Context, routerID int, start, end time.Time) ([]api.Measurement, error)
	AggregatedMeasurements(ctx context.Context, routerID int, start, end time.Time, by api.Granularity) ([]api.AggregatedRow, error)
}

type Dashboard struct {
	backend Backend
	nowTime func() time.Time
}

// Option defines a function type to modify the Dashboard instance.
type Option func(*Dashboard)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(d *Dashboard) {
		d.nowTime = nowFunc
	}
}

func New(backend Backend, options ...Option) (*Dashboard, error) {
	if backend == nil {
		return nil, errors.New("[NewDashboard] backend is required")
	}
	d := &Dashboard{backend: backend, nowTime: time.Now}
	for _, opt := range options {
		opt(d)
	}
	return d, nil
}

// View is one rendered selection. Chart is nil when there is nothing to draw.
type View struct {
	RouterID int        `json:"routerId"`
	Period   Period     `json:"period"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Points   []Point    `json:"points"`
	Chart    *ChartSpec `json:"chart,omitempty"`
}

// Today is the default date of a view.
func (d *Dashboard) Today() time.Time {
	return d.nowTime()
}

// View loads the measurements of routerID for the period containing date. A zero date means
// today.
func (d *Dashboard) View(ctx context.Context, routerID int, date time.Time, p Period) (View, error) {
	if routerID <= 0 {
		return View{}, errors.New("a router must be selected")
	}
	if date.IsZero() {
		date = d.nowTime()
	}
	start, end := Range(date, p)

	var points []Point
	if by, aggregated := p.aggregation(); aggregated {
		rows, err := d.backend.AggregatedMeasurements(ctx, routerID, start, end, by)
		if err != nil {
			return View{}, apperrors.Wrapf(err, "load %s measurements of router %d", p, routerID)
		}
		points = fromAggregated(rows, date.Location())
	} else {
		ms, err := d.backend.ListMeasurements(ctx, routerID, start, end)
		if err != nil {
			return View{}, apperrors.Wrapf(err, "load measurements of router %d", routerID)
		}
		points = fromMeasurements(ms)
	}

	v := View{RouterID: routerID, Period: p, Start: start, End: end, Points: points}
	if len(points) > 0 {
		spec := newChartSpec(p, start, points)
		v.Chart = &spec
	}
	log.Debug().Int("router", routerID).Str("period", string(p)).Int("points", len(points)).Msg("Dashboard view loaded")
	return v, nil
}

// Overview is what the dashboard needs before any router is chosen. Selected is the first
// router, or nil when the user has none.
type Overview struct {
	Routers     []api.Router     `json:"routers"`
	RouterTypes []api.RouterType `json:"routerTypes"`
	Selected    *api.Router      `json:"selected,omitempty"`
	Date        time.Time        `json:"date"`
}

func (d *Dashboard) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		routers, err := d.backend.ListRouters(gctx)
		if err != nil {
			return apperrors.Wrapf(err, "load routers")
		}
		ov.Routers = routers
		return nil
	})
	g.Go(func() error {
		types, err := d.backend.RouterTypes(gctx)
		if err != nil {
			return apperrors.Wrapf(err, "load router types")
		}
		ov.RouterTypes = types
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	if len(ov.Routers) > 0 {
		ov.Selected = &ov.Routers[0]
	}
	ov.Date = d.nowTime()
	return ov, nil
}
