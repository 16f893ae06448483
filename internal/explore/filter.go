// Package explore holds the per-interaction operations over a cleaned
// dataset: filtering, aggregation, sampling, categorical encoding and the
// KPI summary. Every function is pure and returns fresh values.
package explore

import (
	"sort"

	"gtdash/domain/incident"
)

// YearRange is a closed interval of years
type YearRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Contains reports whether year lies in [Lo, Hi]
func (r YearRange) Contains(year int) bool {
	return year >= r.Lo && year <= r.Hi
}

// FilterSpec is a conjunction of four predicates. An empty set admits
// nothing; there is no "unset means everything" shortcut.
type FilterSpec struct {
	Years       YearRange `json:"years"`
	Countries   []string  `json:"countries"`
	Regions     []string  `json:"regions"`
	AttackTypes []string  `json:"attack_types"`
}

// Filter returns a new view holding the rows of view that satisfy spec
func Filter(view incident.View, spec FilterSpec) incident.View {
	countries := toSet(spec.Countries)
	regions := toSet(spec.Regions)
	attacks := toSet(spec.AttackTypes)

	var idx []int
	positions := view.Positions()
	for i := 0; i < view.Len(); i++ {
		r := view.At(i)
		if !spec.Years.Contains(r.Year) {
			continue
		}
		if _, ok := countries[r.Country]; !ok {
			continue
		}
		if _, ok := regions[r.Region]; !ok {
			continue
		}
		if _, ok := attacks[r.AttackType]; !ok {
			continue
		}
		idx = append(idx, positions[i])
	}
	return incident.NewView(view.Dataset(), idx)
}

// Intersect returns the spec admitting exactly the rows admitted by both
func (s FilterSpec) Intersect(other FilterSpec) FilterSpec {
	years := YearRange{Lo: s.Years.Lo, Hi: s.Years.Hi}
	if other.Years.Lo > years.Lo {
		years.Lo = other.Years.Lo
	}
	if other.Years.Hi < years.Hi {
		years.Hi = other.Years.Hi
	}
	return FilterSpec{
		Years:       years,
		Countries:   intersect(s.Countries, other.Countries),
		Regions:     intersect(s.Regions, other.Regions),
		AttackTypes: intersect(s.AttackTypes, other.AttackTypes),
	}
}

// DefaultFilter admits every row of ds: the full year span and every
// distinct country, region and attack type.
func DefaultFilter(ds *incident.Dataset) FilterSpec {
	opts := OptionsFor(ds)
	return FilterSpec{
		Years:       YearRange{Lo: opts.MinYear, Hi: opts.MaxYear},
		Countries:   opts.Countries,
		Regions:     opts.Regions,
		AttackTypes: opts.AttackTypes,
	}
}

// Options lists the values a filter widget can offer
type Options struct {
	Countries   []string `json:"countries"`
	Regions     []string `json:"regions"`
	AttackTypes []string `json:"attack_types"`
	MinYear     int      `json:"min_year"`
	MaxYear     int      `json:"max_year"`
}

// OptionsFor collects the sorted distinct filter values of ds
func OptionsFor(ds *incident.Dataset) Options {
	all := ds.All()
	opts := Options{
		Countries:   all.Distinct(incident.KeyCountry),
		Regions:     all.Distinct(incident.KeyRegion),
		AttackTypes: all.Distinct(incident.KeyAttackType),
	}
	for i := 0; i < all.Len(); i++ {
		year := all.At(i).Year
		if i == 0 || year < opts.MinYear {
			opts.MinYear = year
		}
		if i == 0 || year > opts.MaxYear {
			opts.MaxYear = year
		}
	}
	return opts
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func intersect(a, b []string) []string {
	bs := toSet(b)
	seen := make(map[string]struct{})
	out := []string{}
	for _, v := range a {
		if _, ok := bs[v]; !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
