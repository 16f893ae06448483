package dashboard

import (
	"sort"
	"strings"

	"gtdash/domain/incident"
	"gtdash/internal/explore"

	"gonum.org/v1/gonum/stat"
)

// Chart names
const (
	ChartTreemap  = "treemap"
	ChartParallel = "parallel"
	ChartBubble   = "bubble"
	ChartArea     = "area"
	ChartScatter  = "scatter"
	ChartHeatmap  = "heatmap"
	ChartDensity  = "density"
	ChartViolin   = "violin"
	ChartSunburst = "sunburst"
)

// Payload is the input shape of one chart. Only the fields the chart
// uses are set; a zero-row view yields a payload with Rows == 0 and
// empty collections.
type Payload struct {
	Chart   string                  `json:"chart"`
	Rows    int                     `json:"rows"`
	Dims    []incident.Dimension    `json:"dims"`
	Keys    []incident.GroupKey     `json:"keys,omitempty"`
	Groups  []explore.Group         `json:"groups,omitempty"`
	Series  map[string][]float64    `json:"series,omitempty"`
	Labels  []string                `json:"labels,omitempty"`
	Axes    []explore.CategoryCodes `json:"axes,omitempty"`
	Violins []Violin                `json:"violins,omitempty"`
}

// Empty reports whether the payload carries no data points
func (p *Payload) Empty() bool {
	return p.Rows == 0 && len(p.Groups) == 0 && len(p.Labels) == 0 && len(p.Violins) == 0
}

// Violin summarises the metric distribution of one region
type Violin struct {
	Region string  `json:"region"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// input is what every builder receives: the filtered view, its sample and
// the validated dimensions
type input struct {
	view   incident.View
	sample incident.View
	dims   []incident.Dimension
}

type builder func(in input) (*Payload, error)

var builders = map[string]builder{
	ChartTreemap:  grouped(sortByMetric, incident.KeyRegion, incident.KeyCountry),
	ChartBubble:   grouped(sortByMetric, incident.KeyAttackType, incident.KeyTargetType),
	ChartArea:     grouped(sortByKeys, incident.KeyYear, incident.KeyRegion),
	ChartHeatmap:  grouped(sortByRegionMonth, incident.KeyRegion, incident.KeyMonthName),
	ChartSunburst: grouped(sortByMetric, incident.KeyRegion, incident.KeyCountry, incident.KeyAttackType),
	ChartParallel: parallel,
	ChartScatter:  scatter,
	ChartDensity:  density,
	ChartViolin:   violin,
}

// ChartNames lists every chart the service can build, sorted
func ChartNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func grouped(order func([]explore.Group) []explore.Group, keys ...incident.GroupKey) builder {
	return func(in input) (*Payload, error) {
		groups, err := explore.Aggregate(in.view, in.dims, keys)
		if err != nil {
			return nil, err
		}
		return &Payload{Rows: in.view.Len(), Dims: in.dims, Keys: keys, Groups: order(groups)}, nil
	}
}

func sortByMetric(groups []explore.Group) []explore.Group {
	return explore.TopN(groups, -1)
}

func sortByKeys(groups []explore.Group) []explore.Group {
	sort.SliceStable(groups, func(i, j int) bool {
		return strings.Join(groups[i].Keys, "\x00") < strings.Join(groups[j].Keys, "\x00")
	})
	return groups
}

// sortByRegionMonth orders region/month-name groups by region, then by
// calendar month
func sortByRegionMonth(groups []explore.Group) []explore.Group {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Keys[0] != groups[j].Keys[0] {
			return groups[i].Keys[0] < groups[j].Keys[0]
		}
		return incident.MonthNumber(groups[i].Keys[1]) < incident.MonthNumber(groups[j].Keys[1])
	})
	return groups
}

func metricSeries(view incident.View, dims []incident.Dimension) []float64 {
	out := make([]float64, view.Len())
	for i := range out {
		out[i] = explore.Metric(view.At(i), dims)
	}
	return out
}

func parallel(in input) (*Payload, error) {
	s := in.sample
	all := in.view.Dataset().All()
	years := make([]float64, s.Len())
	months := make([]float64, s.Len())
	for i := 0; i < s.Len(); i++ {
		years[i] = float64(s.At(i).Year)
		months[i] = float64(s.At(i).Month)
	}

	series := map[string][]float64{
		incident.ColYear:  years,
		incident.ColMonth: months,
	}
	for _, d := range in.dims {
		series[string(d)] = metricSeries(s, []incident.Dimension{d})
	}

	return &Payload{
		Rows:   s.Len(),
		Dims:   in.dims,
		Series: series,
		Axes: []explore.CategoryCodes{
			explore.EncodeWithin(all, s, incident.KeyRegion),
			explore.EncodeWithin(all, s, incident.KeyAttackType),
			explore.EncodeWithin(all, s, incident.KeyTargetType),
			explore.EncodeWithin(all, s, incident.KeyWeaponType),
		},
	}, nil
}

func scatter(in input) (*Payload, error) {
	s := in.sample
	series := make(map[string][]float64, len(in.dims))
	for _, d := range in.dims {
		series[string(d)] = metricSeries(s, []incident.Dimension{d})
	}
	labels := make([]string, s.Len())
	for i := range labels {
		labels[i] = s.At(i).Region
	}
	return &Payload{Rows: s.Len(), Dims: in.dims, Series: series, Labels: labels}, nil
}

func density(in input) (*Payload, error) {
	s := in.sample
	return &Payload{
		Rows: s.Len(),
		Dims: in.dims,
		Series: map[string][]float64{
			incident.ColLatitude:  metricSeries(s, []incident.Dimension{incident.DimLatitude}),
			incident.ColLongitude: metricSeries(s, []incident.Dimension{incident.DimLongitude}),
			"metric":              metricSeries(s, in.dims),
		},
	}, nil
}

func violin(in input) (*Payload, error) {
	s := in.sample
	byRegion := make(map[string][]float64)
	for i := 0; i < s.Len(); i++ {
		r := s.At(i)
		byRegion[r.Region] = append(byRegion[r.Region], explore.Metric(r, in.dims))
	}

	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	violins := make([]Violin, 0, len(regions))
	for _, region := range regions {
		values := byRegion[region]
		sort.Float64s(values)
		violins = append(violins, Violin{
			Region: region,
			Count:  len(values),
			Min:    values[0],
			Q1:     stat.Quantile(0.25, stat.Empirical, values, nil),
			Median: stat.Quantile(0.5, stat.Empirical, values, nil),
			Q3:     stat.Quantile(0.75, stat.Empirical, values, nil),
			Max:    values[len(values)-1],
		})
	}
	return &Payload{Rows: s.Len(), Dims: in.dims, Violins: violins}, nil
}
