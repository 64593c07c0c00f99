package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/solar-dashboard/api"
	"github.com/rs/zerolog/log"
)

// Point is one sample on the chart, raw or aggregated. Missing values stay nil so gaps are
// not drawn as zero.
type Point struct {
	Timestamp    time.Time `json:"timestamp"`
	SolarPower   *float64  `json:"puissance_solaire"`
	DrawnPower   *float64  `json:"puissance_soutiree"`
	TriacOpening *float64  `json:"ouverture_triac"`
	RouterID     int       `json:"routeur"`
}

func fromMeasurements(ms []api.Measurement) []Point {
	points := make([]Point, 0, len(ms))
	for _, m := range ms {
		points = append(points, Point{
			Timestamp:    m.Timestamp,
			SolarPower:   m.SolarPower,
			DrawnPower:   m.DrawnPower,
			TriacOpening: m.TriacOpening,
			RouterID:     m.RouterID,
		})
	}
	return points
}

var (
	timestampKeys = []string{"timestamp", "date", "timestamp_interval_start"}
	routerKeys    = []string{"routeur", "routeur_id"}
	timeLayouts   = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02", "2006-01"}
)

// fromAggregated normalises backend buckets. Rows without a usable timestamp are dropped.
func fromAggregated(rows []api.AggregatedRow, loc *time.Location) []Point {
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		ts, err := rowTimestamp(row, loc)
		if err != nil {
			log.Warn().Err(err).Msg("Skipping aggregated measurement")
			continue
		}
		points = append(points, Point{
			Timestamp:    ts,
			SolarPower:   number(row["puissance_solaire_moyenne"]),
			DrawnPower:   number(row["puissance_soutiree_moyenne"]),
			TriacOpening: number(row["ouverture_triac_moyenne"]),
			RouterID:     rowRouter(row),
		})
	}
	return points
}

func rowTimestamp(row api.AggregatedRow, loc *time.Location) (time.Time, error) {
	for _, key := range timestampKeys {
		raw, ok := row[key].(string)
		if !ok || raw == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable %s %q", key, raw)
	}
	return time.Time{}, fmt.Errorf("row has none of %s", strings.Join(timestampKeys, ", "))
}

func rowRouter(row api.AggregatedRow) int {
	for _, key := range routerKeys {
		if v := number(row[key]); v != nil && *v != 0 {
			return int(*v)
		}
	}
	return 0
}

// number accepts JSON numbers and the decimal strings DRF emits for DecimalField.
func number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
