package incident

import (
	"strconv"

	"gtdash/domain/core"
)

// Dimension is a numeric column that can contribute to the impact metric.
type Dimension string

const (
	DimKills      Dimension = ColKills
	DimWounds     Dimension = ColWounds
	DimCasualties Dimension = ColCasualties
	DimLatitude   Dimension = ColLatitude
	DimLongitude  Dimension = ColLongitude
)

// DefaultDimensions is the metric used when a caller selects nothing.
var DefaultDimensions = []Dimension{DimKills, DimWounds, DimCasualties}

var dimensionGetters = map[Dimension]func(*Incident) float64{
	DimKills:      func(r *Incident) float64 { return r.Kills },
	DimWounds:     func(r *Incident) float64 { return r.Wounds },
	DimCasualties: func(r *Incident) float64 { return r.Casualties },
	DimLatitude:   func(r *Incident) float64 { return r.Latitude },
	DimLongitude:  func(r *Incident) float64 { return r.Longitude },
}

// Valid reports whether d names a known numeric column.
func (d Dimension) Valid() bool {
	_, ok := dimensionGetters[d]
	return ok
}

// Value reads the dimension from r. d must be valid.
func (d Dimension) Value(r *Incident) float64 {
	return dimensionGetters[d](r)
}

// ParseDimensions validates a non-empty set of dimension names.
func ParseDimensions(names []string) ([]Dimension, error) {
	if len(names) == 0 {
		return nil, core.NewInvalidDimensionError("")
	}
	dims := make([]Dimension, 0, len(names))
	seen := make(map[Dimension]bool, len(names))
	for _, n := range names {
		d := Dimension(n)
		if !d.Valid() {
			return nil, core.NewInvalidDimensionError(n)
		}
		if seen[d] {
			return nil, core.NewDuplicateDimensionError(n)
		}
		seen[d] = true
		dims = append(dims, d)
	}
	return dims, nil
}

// GroupKey is a categorical (or temporal) column usable in a group-by.
type GroupKey string

const (
	KeyCountry    GroupKey = ColCountry
	KeyRegion     GroupKey = ColRegion
	KeyAttackType GroupKey = ColAttackType
	KeyTargetType GroupKey = ColTargetType
	KeyWeaponType GroupKey = ColWeaponType
	KeyYear       GroupKey = ColYear
	KeyMonth      GroupKey = ColMonth
	KeyMonthName  GroupKey = ColMonthName
)

var groupKeyGetters = map[GroupKey]func(*Incident) string{
	KeyCountry:    func(r *Incident) string { return r.Country },
	KeyRegion:     func(r *Incident) string { return r.Region },
	KeyAttackType: func(r *Incident) string { return r.AttackType },
	KeyTargetType: func(r *Incident) string { return r.TargetType },
	KeyWeaponType: func(r *Incident) string { return r.WeaponType },
	KeyYear:       func(r *Incident) string { return strconv.Itoa(r.Year) },
	KeyMonth:      func(r *Incident) string { return strconv.Itoa(r.Month) },
	KeyMonthName:  func(r *Incident) string { return r.MonthName },
}

// Valid reports whether k names a known grouping column.
func (k GroupKey) Valid() bool {
	_, ok := groupKeyGetters[k]
	return ok
}

// Value reads the key from r as a string. k must be valid.
func (k GroupKey) Value(r *Incident) string {
	return groupKeyGetters[k](r)
}

// ParseGroupKeys validates an ordered list of one to three group keys.
func ParseGroupKeys(names []string) ([]GroupKey, error) {
	if len(names) < 1 || len(names) > 3 {
		return nil, core.NewGroupKeyCountError(len(names))
	}
	keys := make([]GroupKey, 0, len(names))
	for _, n := range names {
		k := GroupKey(n)
		if !k.Valid() {
			return nil, core.NewInvalidGroupKeyError(n)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
