package testkit

import (
	"gtdash/domain/incident"
)

// Row is a raw fixture row; every field is written verbatim into its column
type Row struct {
	Year, Month                             string
	Kills, Wounds, Latitude, Longitude      string
	Country, Region, Attack, Target, Weapon string
}

// Table builds a raw table with the required headers from fixture rows
func Table(rows ...Row) *incident.RawTable {
	table := &incident.RawTable{
		Source:  "fixture",
		Headers: append([]string(nil), incident.RequiredColumns...),
	}
	for _, r := range rows {
		values := map[string]string{
			incident.ColYear:       r.Year,
			incident.ColMonth:      r.Month,
			incident.ColKills:      r.Kills,
			incident.ColWounds:     r.Wounds,
			incident.ColLatitude:   r.Latitude,
			incident.ColLongitude:  r.Longitude,
			incident.ColCountry:    r.Country,
			incident.ColRegion:     r.Region,
			incident.ColAttackType: r.Attack,
			incident.ColTargetType: r.Target,
			incident.ColWeaponType: r.Weapon,
		}
		row := make([]string, len(table.Headers))
		for i, h := range table.Headers {
			row[i] = values[h]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Incident builds a cleaned record with the derived columns filled in
func Incident(year, month int, country, region, attack string, kills, wounds float64) incident.Incident {
	return incident.Incident{
		Year:       year,
		Month:      month,
		MonthName:  incident.MonthName(month),
		Country:    country,
		Region:     region,
		AttackType: attack,
		TargetType: "Private Citizens & Property",
		WeaponType: "Explosives",
		Kills:      kills,
		Wounds:     wounds,
		Casualties: kills + wounds,
	}
}

// Dataset wraps records in a dataset without running the cleaner
func Dataset(records ...incident.Incident) *incident.Dataset {
	return incident.NewDataset("fixture", records)
}

// Synthetic returns a cleaned-ready raw table from the default generator
func Synthetic(rows int, seed int64) *incident.RawTable {
	config := DefaultIncidentConfig()
	config.Rows = rows
	config.Seed = seed
	return NewIncidentGenerator(config).Generate()
}
