package explore

import (
	"gtdash/domain/incident"

	"gonum.org/v1/gonum/floats"
)

// KPIs is the headline row shown above the charts
type KPIs struct {
	TotalIncidents int     `json:"total_incidents"`
	Countries      int     `json:"countries"`
	AttackTypes    int     `json:"attack_types"`
	TotalKilled    float64 `json:"total_killed"`
	TotalWounded   float64 `json:"total_wounded"`
}

// Summarize computes the KPIs of a view
func Summarize(view incident.View) KPIs {
	kills := make([]float64, view.Len())
	wounds := make([]float64, view.Len())
	countries := make(map[string]struct{})
	attacks := make(map[string]struct{})
	for i := 0; i < view.Len(); i++ {
		r := view.At(i)
		kills[i], wounds[i] = r.Kills, r.Wounds
		countries[r.Country] = struct{}{}
		attacks[r.AttackType] = struct{}{}
	}
	return KPIs{
		TotalIncidents: view.Len(),
		Countries:      len(countries),
		AttackTypes:    len(attacks),
		TotalKilled:    floats.Sum(kills),
		TotalWounded:   floats.Sum(wounds),
	}
}
