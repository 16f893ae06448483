package explore

import (
	"sort"
	"strings"

	"gtdash/domain/core"
	"gtdash/domain/incident"
)

// Group is one output row of Aggregate
type Group struct {
	Keys  []string `json:"keys"`
	Value float64  `json:"metric_value"`
	Count int      `json:"count"`
}

// Metric is the impact metric of one record: the row-wise sum of dims
func Metric(r *incident.Incident, dims []incident.Dimension) float64 {
	var v float64
	for _, d := range dims {
		v += d.Value(r)
	}
	return v
}

// ValidateDimensions checks that dims is a non-empty set of known columns
func ValidateDimensions(dims []incident.Dimension) error {
	if len(dims) == 0 {
		return core.NewInvalidDimensionError("")
	}
	seen := make(map[incident.Dimension]bool, len(dims))
	for _, d := range dims {
		if !d.Valid() {
			return core.NewInvalidDimensionError(string(d))
		}
		if seen[d] {
			return core.NewDuplicateDimensionError(string(d))
		}
		seen[d] = true
	}
	return nil
}

// ValidateGroupKeys checks that keys holds one to three known keys
func ValidateGroupKeys(keys []incident.GroupKey) error {
	if len(keys) < 1 || len(keys) > 3 {
		return core.NewGroupKeyCountError(len(keys))
	}
	for _, k := range keys {
		if !k.Valid() {
			return core.NewInvalidGroupKeyError(string(k))
		}
	}
	return nil
}

// Aggregate sums the impact metric per group. Groups come back in order of
// first appearance in the view; callers sort for display. A zero-row view
// yields zero groups.
func Aggregate(view incident.View, dims []incident.Dimension, keys []incident.GroupKey) ([]Group, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}
	if err := ValidateGroupKeys(keys); err != nil {
		return nil, err
	}

	groups := []Group{}
	index := make(map[string]int)
	parts := make([]string, len(keys))

	for i := 0; i < view.Len(); i++ {
		r := view.At(i)
		for j, k := range keys {
			parts[j] = k.Value(r)
		}
		id := strings.Join(parts, "\x00")

		pos, ok := index[id]
		if !ok {
			pos = len(groups)
			index[id] = pos
			groups = append(groups, Group{Keys: append([]string(nil), parts...)})
		}
		groups[pos].Value += Metric(r, dims)
		groups[pos].Count++
	}
	return groups, nil
}

// TopN returns the n groups with the largest metric, descending. Ties keep
// key order. The input is not modified.
func TopN(groups []Group, n int) []Group {
	out := append([]Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return strings.Join(out[i].Keys, "\x00") < strings.Join(out[j].Keys, "\x00")
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
