// Package incident defines the cleaned incident record, the immutable dataset
// built from it, and the column identifiers callers use to address it.
package incident

import (
	"sort"
	"time"

	"gtdash/domain/core"
)

// Source column names. These double as the public identifiers for
// dimensions and group keys.
const (
	ColYear       = "iyear"
	ColMonth      = "imonth"
	ColKills      = "nkill"
	ColWounds     = "nwound"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
	ColCountry    = "country_txt"
	ColRegion     = "region_txt"
	ColAttackType = "attacktype1_txt"
	ColTargetType = "targtype1_txt"
	ColWeaponType = "weaptype1_txt"

	// Derived columns
	ColCasualties = "casualties"
	ColMonthName  = "month_name"
)

// RequiredColumns lists the headers every incident source must carry.
var RequiredColumns = []string{
	ColYear, ColMonth, ColKills, ColWounds, ColLatitude, ColLongitude,
	ColCountry, ColRegion, ColAttackType, ColTargetType, ColWeaponType,
}

// Incident is one cleaned row of the source dataset.
type Incident struct {
	Year       int     `json:"iyear"`
	Month      int     `json:"imonth"`
	MonthName  string  `json:"month_name"`
	Country    string  `json:"country_txt"`
	Region     string  `json:"region_txt"`
	AttackType string  `json:"attacktype1_txt"`
	TargetType string  `json:"targtype1_txt"`
	WeaponType string  `json:"weaptype1_txt"`
	Kills      float64 `json:"nkill"`
	Wounds     float64 `json:"nwound"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Casualties float64 `json:"casualties"`
}

// MonthName returns the three-letter English abbreviation for month 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()[:3]
}

// MonthNumber is the inverse of MonthName; unknown names map to 0
func MonthNumber(name string) int {
	for m := 1; m <= 12; m++ {
		if MonthName(m) == name {
			return m
		}
	}
	return 0
}

// Dataset is the cleaned, immutable incident table. It is built once per
// process and shared read-only by every request.
type Dataset struct {
	id        core.SnapshotID
	source    string
	loadedAt  time.Time
	incidents []Incident
}

// NewDataset takes ownership of incidents; callers must not modify the slice
// afterwards.
func NewDataset(source string, incidents []Incident) *Dataset {
	return &Dataset{
		id:        core.NewSnapshotID(),
		source:    source,
		loadedAt:  time.Now(),
		incidents: incidents,
	}
}

// ID returns the snapshot identifier of this build.
func (d *Dataset) ID() core.SnapshotID { return d.id }

// Source describes where the rows came from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt is the time the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Len returns the number of retained incidents.
func (d *Dataset) Len() int { return len(d.incidents) }

// At returns a copy of the i-th incident.
func (d *Dataset) At(i int) Incident { return d.incidents[i] }

// All returns a view over every incident.
func (d *Dataset) All() View {
	idx := make([]int, len(d.incidents))
	for i := range idx {
		idx[i] = i
	}
	return View{ds: d, idx: idx}
}

// View is an ephemeral read-only subset of a Dataset. A View never changes
// after construction; narrowing produces a new View.
type View struct {
	ds  *Dataset
	idx []int
}

// NewView builds a view from dataset row positions. The index slice is
// copied.
func NewView(ds *Dataset, idx []int) View {
	return View{ds: ds, idx: append([]int(nil), idx...)}
}

// Dataset returns the dataset backing the view.
func (v View) Dataset() *Dataset { return v.ds }

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.idx) }

// At returns a pointer to the i-th row of the view. The pointee belongs to
// the dataset and must be treated as read-only.
func (v View) At(i int) *Incident { return &v.ds.incidents[v.idx[i]] }

// Positions returns a copy of the dataset row positions in view order.
func (v View) Positions() []int { return append([]int(nil), v.idx...) }

// Distinct returns the sorted distinct values of a categorical key in the
// view.
func (v View) Distinct(key GroupKey) []string {
	seen := make(map[string]struct{})
	for i := range v.idx {
		seen[key.Value(v.At(i))] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
