package explore

import (
	"sort"

	"gtdash/domain/incident"
)

// CategoryCodes is the integer encoding of a categorical column. Codes[i]
// is the index of row i's value within Categories, which is sorted.
type CategoryCodes struct {
	Key        incident.GroupKey `json:"key"`
	Categories []string          `json:"categories"`
	Codes      []int             `json:"codes"`
}

// Encode assigns each distinct value of key its rank in sorted order
func Encode(view incident.View, key incident.GroupKey) CategoryCodes {
	return EncodeWithin(view, view, key)
}

// EncodeWithin ranks the distinct values of key across universe and codes
// the rows of view against them, so codes stay fixed for any subset of
// universe. Values of view missing from universe get code -1.
func EncodeWithin(universe, view incident.View, key incident.GroupKey) CategoryCodes {
	seen := make(map[string]struct{})
	for i := 0; i < universe.Len(); i++ {
		seen[key.Value(universe.At(i))] = struct{}{}
	}

	categories := make([]string, 0, len(seen))
	for v := range seen {
		categories = append(categories, v)
	}
	sort.Strings(categories)

	rank := make(map[string]int, len(categories))
	for i, c := range categories {
		rank[c] = i
	}
	codes := make([]int, view.Len())
	for i := range codes {
		code, ok := rank[key.Value(view.At(i))]
		if !ok {
			code = -1
		}
		codes[i] = code
	}
	return CategoryCodes{Key: key, Categories: categories, Codes: codes}
}
