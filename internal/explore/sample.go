package explore

import (
	"math/rand"

	"gtdash/domain/incident"
)

// Sample draws min(n, view.Len()) rows without replacement. The same seed
// over the same view always yields the same rows in the same order.
func Sample(view incident.View, n int, seed int64) incident.View {
	if n <= 0 || view.Len() == 0 {
		return incident.NewView(view.Dataset(), nil)
	}
	if n > view.Len() {
		n = view.Len()
	}

	rng := rand.New(rand.NewSource(seed))
	positions := view.Positions()
	perm := rng.Perm(len(positions))

	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = positions[perm[i]]
	}
	return incident.NewView(view.Dataset(), idx)
}
