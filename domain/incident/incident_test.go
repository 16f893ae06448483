package incident

import (
	"errors"
	"testing"

	"gtdash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Jan", MonthName(1))
	assert.Equal(t, "Sep", MonthName(9))
	assert.Equal(t, "Dec", MonthName(12))
	assert.Equal(t, "", MonthName(0))
	assert.Equal(t, "", MonthName(13))
	assert.Equal(t, 4, MonthNumber("Apr"))
	assert.Equal(t, 12, MonthNumber(MonthName(12)))
	assert.Equal(t, 0, MonthNumber("April"))
}

func TestParseDimensions(t *testing.T) {
	dims, err := ParseDimensions([]string{"nkill", "casualties"})
	require.NoError(t, err)
	assert.Equal(t, []Dimension{DimKills, DimCasualties}, dims)

	_, err = ParseDimensions(nil)
	assert.True(t, errors.Is(err, core.ErrInvalidDimension))

	_, err = ParseDimensions([]string{"nkill", "country_txt"})
	assert.True(t, errors.Is(err, core.ErrInvalidDimension))
	_, err = ParseDimensions([]string{"nkill", "nwound", "nkill"})
	assert.True(t, errors.Is(err, core.ErrInvalidDimension))
	assert.Contains(t, err.Error(), "more than once")
}

func TestParseGroupKeys(t *testing.T) {
	keys, err := ParseGroupKeys([]string{"region_txt", "country_txt", "attacktype1_txt"})
	require.NoError(t, err)
	assert.Equal(t, []GroupKey{KeyRegion, KeyCountry, KeyAttackType}, keys)

	for _, names := range [][]string{
		nil,
		{"region_txt", "country_txt", "attacktype1_txt", "iyear"},
		{"nkill"},
	} {
		_, err := ParseGroupKeys(names)
		assert.True(t, errors.Is(err, core.ErrInvalidGroupKey), "%v", names)
	}
}

func TestDimensionAndKeyValues(t *testing.T) {
	r := &Incident{Year: 2015, Month: 3, MonthName: "Mar", Kills: 2, Wounds: 5, Casualties: 7, Country: "Peru"}

	assert.Equal(t, 7.0, DimCasualties.Value(r))
	assert.Equal(t, 5.0, DimWounds.Value(r))
	assert.Equal(t, "2015", KeyYear.Value(r))
	assert.Equal(t, "3", KeyMonth.Value(r))
	assert.Equal(t, "Mar", KeyMonthName.Value(r))
	assert.Equal(t, "Peru", KeyCountry.Value(r))
}

func TestDatasetViews(t *testing.T) {
	ds := NewDataset("fixture", []Incident{
		{Year: 2001, Country: "Peru"},
		{Year: 2002, Country: "Chile"},
		{Year: 2003, Country: "Peru"},
	})

	require.NotEmpty(t, ds.ID().String())
	assert.Equal(t, "fixture", ds.Source())
	assert.Equal(t, 3, ds.All().Len())
	assert.Equal(t, []string{"Chile", "Peru"}, ds.All().Distinct(KeyCountry))

	idx := []int{2, 0}
	view := NewView(ds, idx)
	idx[0] = 1
	assert.Equal(t, []int{2, 0}, view.Positions(), "view owns its index")
	assert.Equal(t, 2003, view.At(0).Year)

	copied := ds.At(0)
	copied.Year = 1900
	assert.Equal(t, 2001, ds.At(0).Year)

	other := NewDataset("fixture", nil)
	assert.NotEqual(t, ds.ID(), other.ID())
}

func TestRawTable(t *testing.T) {
	table := &RawTable{
		Headers: []string{"iyear", "imonth"},
		Rows:    [][]string{{" 2015 ", "3"}, {"2016"}},
	}

	assert.Equal(t, 1, table.ColumnIndex("imonth"))
	assert.Equal(t, -1, table.ColumnIndex("nkill"))
	assert.Equal(t, []string{"nkill"}, table.MissingColumns([]string{"iyear", "nkill"}))
	assert.Equal(t, "2015", table.Cell(0, 0))
	assert.Equal(t, "", table.Cell(1, 1))
}
