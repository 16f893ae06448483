package cleaning

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strconv"
	"testing"

	"gtdash/domain/core"
	"gtdash/domain/incident"
	"gtdash/internal"
	"gtdash/internal/testkit"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCleaner() *Cleaner {
	return NewCleaner(WithLogger(internal.NewNopLogger()))
}

func row(year, month, kills, wounds string) testkit.Row {
	return testkit.Row{
		Year: year, Month: month, Kills: kills, Wounds: wounds,
		Latitude: "10", Longitude: "20",
		Country: "Iraq", Region: "Middle East & North Africa",
		Attack: "Bombing/Explosion", Target: "Military", Weapon: "Explosives",
	}
}

func TestCleanDropsInvalidMonthBeforeImputation(t *testing.T) {
	table := testkit.Table(
		row("2015", "1", "1", "0"),
		row("2015", "2", "2", "1"),
		row("2015", "13", "900", "900"),
		row("2016", "3", "", "2"),
		row("2016", "4", "4", "3"),
	)

	ds, report, err := newTestCleaner().Clean(table)
	require.NoError(t, err)

	assert.Equal(t, 5, report.RowsRead)
	assert.Equal(t, 1, report.DroppedInvalidMonth)
	assert.Equal(t, 0, report.DroppedOutliers)
	require.Equal(t, 4, ds.Len())

	// median of {1, 2, 4}; the month-13 row never contributes
	assert.Equal(t, 2.0, report.Medians[incident.ColKills])
	assert.Equal(t, 1, report.Imputed[incident.ColKills])
	assert.Equal(t, 2.0, ds.At(2).Kills)
	assert.Equal(t, 4.0, ds.At(2).Casualties)
}

func TestCleanRejectsMissingAndNonIntegralMonths(t *testing.T) {
	table := testkit.Table(
		row("2015", "", "1", "1"),
		row("2015", "0", "1", "1"),
		row("2015", "6.5", "1", "1"),
		row("2015", "x", "1", "1"),
		row("2015", "12", "1", "1"),
		row("2015", "1.0", "1", "1"),
	)

	ds, report, err := newTestCleaner().Clean(table)
	require.NoError(t, err)
	assert.Equal(t, 4, report.DroppedInvalidMonth)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "Dec", ds.At(0).MonthName)
	assert.Equal(t, "Jan", ds.At(1).MonthName)
}

func TestCleanDropsJointOutliers(t *testing.T) {
	var rows []testkit.Row
	for i := 0; i < 29; i++ {
		rows = append(rows, row("2010", strconv.Itoa(1+i%12), "0", "1"))
	}
	rows = append(rows, row("2010", "5", "100", "1"))

	ds, report, err := newTestCleaner().Clean(testkit.Table(rows...))
	require.NoError(t, err)

	assert.Equal(t, 1, report.DroppedOutliers)
	assert.Equal(t, 29, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		assert.Equal(t, 0.0, ds.At(i).Kills)
	}
	// constant latitude/longitude/wounds have zero variance and drop nothing
	assert.Equal(t, 0.0, report.StdDevs[incident.ColLatitude])
}

func TestCleanAllMissingColumnIsDataQualityError(t *testing.T) {
	r1 := row("2015", "1", "1", "1")
	r1.Latitude = ""
	r2 := row("2015", "2", "2", "2")
	r2.Latitude = "n/a"

	_, _, err := newTestCleaner().Clean(testkit.Table(r1, r2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataQuality))
	assert.Contains(t, err.Error(), incident.ColLatitude)
}

func TestCleanNoValidMonthIsDataQualityError(t *testing.T) {
	_, _, err := newTestCleaner().Clean(testkit.Table(row("2015", "13", "1", "1")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDataQuality))
}

func TestCleanMissingColumnsIsParseError(t *testing.T) {
	table := testkit.Table(row("2015", "1", "1", "1"))
	table.Headers[0] = "year"

	_, _, err := newTestCleaner().Clean(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParse))
	assert.Contains(t, err.Error(), incident.ColYear)
}

func TestCleanDropsRowsWithoutYear(t *testing.T) {
	ds, report, err := newTestCleaner().Clean(testkit.Table(
		row("", "1", "1", "1"),
		row("2001", "1", "1", "1"),
	))
	require.NoError(t, err)
	assert.Equal(t, 1, report.DroppedMissingYear)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, 2001, ds.At(0).Year)
}

func TestCleanInvariantsOnSyntheticData(t *testing.T) {
	config := testkit.DefaultIncidentConfig()
	config.Rows = 3000
	config.Seed = 7
	config.OutlierRate = 0.005
	table := testkit.NewIncidentGenerator(config).Generate()

	ds, report, err := newTestCleaner().Clean(table)
	require.NoError(t, err)
	require.Greater(t, ds.Len(), 2500)
	assert.Greater(t, report.DroppedInvalidMonth, 0)
	assert.Greater(t, report.DroppedOutliers, 0)

	columns := map[string][]float64{}
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		assert.GreaterOrEqual(t, r.Month, 1)
		assert.LessOrEqual(t, r.Month, 12)
		assert.Equal(t, r.Kills+r.Wounds, r.Casualties)
		assert.GreaterOrEqual(t, r.Casualties, 0.0)
		for _, v := range []float64{r.Kills, r.Wounds, r.Latitude, r.Longitude} {
			assert.False(t, math.IsNaN(v))
		}
		columns[incident.ColKills] = append(columns[incident.ColKills], r.Kills)
		columns[incident.ColWounds] = append(columns[incident.ColWounds], r.Wounds)
		columns[incident.ColLatitude] = append(columns[incident.ColLatitude], r.Latitude)
		columns[incident.ColLongitude] = append(columns[incident.ColLongitude], r.Longitude)
	}

	for name, values := range columns {
		mean, _ := stats.Mean(values)
		std, _ := stats.StandardDeviationPopulation(values)
		require.Greater(t, std, 0.0, name)
		for _, v := range values {
			assert.Less(t, math.Abs((v-mean)/std), DefaultZThreshold, name)
		}
	}
}

func TestCleanIsDeterministic(t *testing.T) {
	a, _, err := newTestCleaner().Clean(testkit.Synthetic(500, 3))
	require.NoError(t, err)
	b, _, err := newTestCleaner().Clean(testkit.Synthetic(500, 3))
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.At(i), b.At(i))
	}
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtd.csv")
	require.NoError(t, testkit.WriteCSVFile(path, testkit.Synthetic(200, 11)))

	ds, report, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 200, report.RowsRead)
	assert.Equal(t, report.Retained, ds.Len())
	assert.Equal(t, path, ds.Source())
}

func TestLoadFileMissingFile(t *testing.T) {
	_, _, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParse))
}
