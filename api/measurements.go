package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	measurementsPath           = "mesures/"
	aggregatedMeasurementsPath = "mesures/agregees/"

	// DateLayout is how the backend expects range bounds.
	DateLayout = "2006-01-02"
)

// Granularity is the bucket size of aggregated measurements.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

// Measurement is one raw sample reported by a router.
type Measurement struct {
	ID           int       `json:"id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	SolarPower   *float64  `json:"puissance_solaire"`
	DrawnPower   *float64  `json:"puissance_soutiree,omitempty"`
	TriacOpening *float64  `json:"ouverture_triac,omitempty"`
	RouterID     int       `json:"routeur"`
}

// AggregatedRow is one bucket as returned by the backend. Its field names differ between
// backend versions, so rows are left undecoded here.
type AggregatedRow map[string]any

func measurementQuery(routerID int, start, end time.Time) url.Values {
	query := url.Values{"routeur_id": {strconv.Itoa(routerID)}}
	if !start.IsZero() {
		query.Set("start_date", start.Format(DateLayout))
	}
	if !end.IsZero() {
		query.Set("end_date", end.Format(DateLayout))
	}
	return query
}

// ListMeasurements returns raw samples of a router in [start, end). Zero bounds are left open.
func (c *Client) ListMeasurements(ctx context.Context, routerID int, start, end time.Time) ([]Measurement, error) {
	var measurements []Measurement
	if err := c.do(ctx, http.MethodGet, measurementsPath, measurementQuery(routerID, start, end), nil, &measurements); err != nil {
		return nil, err
	}
	return measurements, nil
}

func (c *Client) AggregatedMeasurements(ctx context.Context, routerID int, start, end time.Time, by Granularity) ([]AggregatedRow, error) {
	if by != ByDay && by != ByMonth {
		return nil, fmt.Errorf("unsupported aggregation %q", by)
	}
	query := measurementQuery(routerID, start, end)
	query.Set("period", string(by))

	var rows []AggregatedRow
	if err := c.do(ctx, http.MethodGet, aggregatedMeasurementsPath, query, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
