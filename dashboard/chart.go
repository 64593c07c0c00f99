package dashboard

import "time"

// ChartSpec is everything a time-series renderer needs to draw a view.
type ChartSpec struct {
	Unit           string            `json:"unit"`
	DisplayFormats map[string]string `json:"displayFormats"`
	TooltipFormat  string            `json:"tooltipFormat"`
	XAxisTitle     string            `json:"xAxisTitle"`
	YAxisTitle     string            `json:"yAxisTitle"`
	Min            *time.Time        `json:"min,omitempty"`
	Max            *time.Time        `json:"max,omitempty"`
	Labels         []time.Time       `json:"labels"`
	Datasets       []Dataset         `json:"datasets"`
}

type Dataset struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
	Fill  bool       `json:"fill"`
}

const (
	powerAxisTitle   = "Puissance (W)"
	solarSeriesLabel = "Puissance solaire (W)"
	drawnSeriesLabel = "Puissance soutirée (W)"
)

func newChartSpec(p Period, start time.Time, points []Point) ChartSpec {
	spec := ChartSpec{YAxisTitle: powerAxisTitle}

	switch p {
	case Month:
		spec.Unit = "day"
		spec.DisplayFormats = map[string]string{"day": "MMM dd"}
		spec.TooltipFormat = "MMM dd, yyyy"
		spec.XAxisTitle = "Jour du mois"
	case Year:
		spec.Unit = "month"
		spec.DisplayFormats = map[string]string{"month": "MMM yyyy"}
		spec.TooltipFormat = "MMM yyyy"
		spec.XAxisTitle = "Mois de l'année"
	default:
		spec.Unit = "hour"
		spec.DisplayFormats = map[string]string{"hour": "HH:mm", "minute": "HH:mm"}
		spec.TooltipFormat = "yyyy-MM-dd HH:mm:ss"
		spec.XAxisTitle = "Heure de la journée"

		lo := start
		hi := start.AddDate(0, 0, 1).Add(-time.Millisecond)
		spec.Min, spec.Max = &lo, &hi
	}

	solar := Dataset{Label: solarSeriesLabel, Fill: true}
	drawn := Dataset{Label: drawnSeriesLabel}
	spec.Labels = make([]time.Time, 0, len(points))
	for _, pt := range points {
		spec.Labels = append(spec.Labels, pt.Timestamp)
		solar.Data = append(solar.Data, pt.SolarPower)
		drawn.Data = append(drawn.Data, pt.DrawnPower)
	}
	spec.Datasets = []Dataset{solar, drawn}
	return spec
}
