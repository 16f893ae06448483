package dashboard

import (
	"context"
	"errors"
	"testing"

	"gtdash/domain/core"
	"gtdash/domain/incident"
	"gtdash/internal"
	"gtdash/internal/cleaning"
	"gtdash/internal/explore"
	"gtdash/internal/snapshot"
	"gtdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticDataset(t *testing.T) *incident.Dataset {
	t.Helper()
	cleaner := cleaning.NewCleaner(cleaning.WithLogger(internal.NewNopLogger()))
	ds, _, err := cleaner.Clean(testkit.Synthetic(2000, 11))
	require.NoError(t, err)
	return ds
}

func newService(t *testing.T, ds *incident.Dataset, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithLogger(internal.NewNopLogger())}, opts...)
	svc, err := NewService(snapshot.Static(ds), 16, opts...)
	require.NoError(t, err)
	return svc
}

func TestBuildAllCharts(t *testing.T) {
	ds := syntheticDataset(t)
	svc := newService(t, ds, WithSampling(500, 5))

	payloads, err := svc.Build(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, payloads, len(ChartNames()))

	var total float64
	all := ds.All()
	for i := 0; i < all.Len(); i++ {
		total += explore.Metric(all.At(i), incident.DefaultDimensions)
	}

	for _, name := range []string{ChartTreemap, ChartBubble, ChartArea, ChartHeatmap, ChartSunburst} {
		p := payloads[name]
		require.NotNil(t, p, name)
		assert.Equal(t, name, p.Chart)
		assert.Equal(t, ds.Len(), p.Rows, name)

		var sum float64
		for _, g := range p.Groups {
			sum += g.Value
		}
		assert.InDelta(t, total, sum, 1e-6, name)
	}

	for _, name := range []string{ChartParallel, ChartScatter, ChartDensity, ChartViolin} {
		assert.Equal(t, 500, payloads[name].Rows, name)
	}

	par := payloads[ChartParallel]
	assert.Len(t, par.Axes, 4)
	assert.Len(t, par.Series[incident.ColYear], 500)
	assert.Len(t, par.Series[string(incident.DimCasualties)], 500)
	assert.Len(t, payloads[ChartScatter].Labels, 500)
	assert.Len(t, payloads[ChartDensity].Series["metric"], 500)
}

func TestTreemapSortedByMetric(t *testing.T) {
	svc := newService(t, syntheticDataset(t))

	p, err := svc.Chart(context.Background(), ChartTreemap, Request{})
	require.NoError(t, err)
	for i := 1; i < len(p.Groups); i++ {
		assert.GreaterOrEqual(t, p.Groups[i-1].Value, p.Groups[i].Value)
	}
}

func TestAreaSortedByYear(t *testing.T) {
	svc := newService(t, syntheticDataset(t))

	p, err := svc.Chart(context.Background(), ChartArea, Request{Dims: []incident.Dimension{incident.DimKills}})
	require.NoError(t, err)
	for i := 1; i < len(p.Groups); i++ {
		assert.LessOrEqual(t, p.Groups[i-1].Keys[0], p.Groups[i].Keys[0])
	}
}

func TestHeatmapMonthsInCalendarOrder(t *testing.T) {
	svc := newService(t, syntheticDataset(t))

	p, err := svc.Chart(context.Background(), ChartHeatmap, Request{})
	require.NoError(t, err)
	require.NotEmpty(t, p.Groups)
	for i := 1; i < len(p.Groups); i++ {
		prev, cur := p.Groups[i-1].Keys, p.Groups[i].Keys
		if prev[0] == cur[0] {
			assert.Less(t, incident.MonthNumber(prev[1]), incident.MonthNumber(cur[1]), "%v then %v", prev, cur)
		} else {
			assert.Less(t, prev[0], cur[0])
		}
	}
}

func TestParallelCodesSpanDataset(t *testing.T) {
	ds := syntheticDataset(t)
	svc := newService(t, ds, WithSampling(200, 3))

	regions := ds.All().Distinct(incident.KeyRegion)
	require.Greater(t, len(regions), 1)
	last := regions[len(regions)-1]

	filter := explore.DefaultFilter(ds)
	filter.Regions = []string{last}
	p, err := svc.Chart(context.Background(), ChartParallel, Request{Filter: &filter})
	require.NoError(t, err)
	require.Greater(t, p.Rows, 0)

	axis := p.Axes[0]
	assert.Equal(t, incident.KeyRegion, axis.Key)
	assert.Equal(t, regions, axis.Categories)
	for _, code := range axis.Codes {
		assert.Equal(t, len(regions)-1, code)
	}
}

func TestEmptyFilterYieldsEmptyPayloads(t *testing.T) {
	ds := syntheticDataset(t)
	svc := newService(t, ds)

	filter := explore.DefaultFilter(ds)
	filter.Countries = []string{}

	payloads, err := svc.Build(context.Background(), Request{Filter: &filter})
	require.NoError(t, err)
	for name, p := range payloads {
		assert.True(t, p.Empty(), name)
		assert.Empty(t, p.Groups, name)
	}
}

func TestChartErrors(t *testing.T) {
	svc := newService(t, syntheticDataset(t))
	ctx := context.Background()

	_, err := svc.Chart(ctx, "pie", Request{})
	assert.True(t, errors.Is(err, core.ErrUnknownChart))

	_, err = svc.Chart(ctx, ChartTreemap, Request{Dims: []incident.Dimension{}})
	assert.True(t, errors.Is(err, core.ErrInvalidDimension))

	_, err = svc.Build(ctx, Request{Dims: []incident.Dimension{"nvictims"}})
	assert.True(t, errors.Is(err, core.ErrInvalidDimension))
}

func TestChartIsCached(t *testing.T) {
	ds := syntheticDataset(t)
	svc := newService(t, ds)
	ctx := context.Background()

	filter := explore.DefaultFilter(ds)
	a, err := svc.Chart(ctx, ChartBubble, Request{Filter: &filter})
	require.NoError(t, err)

	// same selection in a different order hits the same entry
	reordered := filter
	reordered.Countries = append([]string(nil), filter.Countries...)
	for i, j := 0, len(reordered.Countries)-1; i < j; i, j = i+1, j-1 {
		reordered.Countries[i], reordered.Countries[j] = reordered.Countries[j], reordered.Countries[i]
	}
	b, err := svc.Chart(ctx, ChartBubble, Request{Filter: &reordered})
	require.NoError(t, err)
	assert.Same(t, a, b)

	narrowed := filter
	narrowed.Years = explore.YearRange{Lo: filter.Years.Lo, Hi: filter.Years.Lo + 5}
	c, err := svc.Chart(ctx, ChartBubble, Request{Filter: &narrowed})
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestSampleChartsAreDeterministic(t *testing.T) {
	ds := syntheticDataset(t)
	first := newService(t, ds, WithSampling(300, 9))
	second := newService(t, ds, WithSampling(300, 9))

	a, err := first.Chart(context.Background(), ChartScatter, Request{})
	require.NoError(t, err)
	b, err := second.Chart(context.Background(), ChartScatter, Request{})
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Series, b.Series)
}

func TestViolinQuantiles(t *testing.T) {
	records := []incident.Incident{}
	for _, kills := range []float64{1, 2, 3, 4, 5} {
		records = append(records, testkit.Incident(2001, 1, "Peru", "South America", "Armed Assault", kills, 0))
	}
	records = append(records, testkit.Incident(2001, 1, "Iraq", "Middle East & North Africa", "Armed Assault", 7, 0))
	svc := newService(t, testkit.Dataset(records...))

	p, err := svc.Chart(context.Background(), ChartViolin, Request{Dims: []incident.Dimension{incident.DimKills}})
	require.NoError(t, err)
	require.Len(t, p.Violins, 2)

	mena, peru := p.Violins[0], p.Violins[1]
	assert.Equal(t, "Middle East & North Africa", mena.Region)
	assert.Equal(t, 7.0, mena.Median)

	assert.Equal(t, "South America", peru.Region)
	assert.Equal(t, 5, peru.Count)
	assert.Equal(t, 1.0, peru.Min)
	assert.Equal(t, 3.0, peru.Median)
	assert.Equal(t, 5.0, peru.Max)
	assert.LessOrEqual(t, peru.Q1, peru.Median)
	assert.GreaterOrEqual(t, peru.Q3, peru.Median)
}

func TestBuildHonorsCancellation(t *testing.T) {
	svc := newService(t, syntheticDataset(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Build(ctx, Request{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSummary(t *testing.T) {
	ds := testkit.Dataset(
		testkit.Incident(2001, 1, "Peru", "South America", "Armed Assault", 2, 1),
		testkit.Incident(2002, 1, "Chile", "South America", "Bombing/Explosion", 3, 0),
	)
	svc := newService(t, ds)

	kpis, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, kpis.TotalIncidents)
	assert.Equal(t, 5.0, kpis.TotalKilled)

	filter := explore.DefaultFilter(ds)
	filter.Countries = []string{"Chile"}
	kpis, err = svc.Summary(context.Background(), &filter)
	require.NoError(t, err)
	assert.Equal(t, 1, kpis.TotalIncidents)
}
