package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	"gtdash/domain/incident"
)

// IncidentGeneratorConfig configures the synthetic incident generator
type IncidentGeneratorConfig struct {
	Rows             int     `json:"rows"`
	StartYear        int     `json:"start_year"`
	EndYear          int     `json:"end_year"`
	MissingRate      float64 `json:"missing_rate"`       // chance a numeric cell is blank
	InvalidMonthRate float64 `json:"invalid_month_rate"` // chance imonth is 0 or 13
	OutlierRate      float64 `json:"outlier_rate"`       // chance of an extreme kill count
	Seed             int64   `json:"seed"`
}

// DefaultIncidentConfig returns sensible defaults for synthetic data
func DefaultIncidentConfig() IncidentGeneratorConfig {
	return IncidentGeneratorConfig{
		Rows:             2000,
		StartYear:        1970,
		EndYear:          2017,
		MissingRate:      0.05,
		InvalidMonthRate: 0.01,
		OutlierRate:      0.002,
		Seed:             42,
	}
}

type place struct {
	country string
	region  string
	lat     float64
	lon     float64
}

var places = []place{
	{"Iraq", "Middle East & North Africa", 33.3, 44.4},
	{"Afghanistan", "South Asia", 34.5, 69.2},
	{"Pakistan", "South Asia", 33.7, 73.0},
	{"India", "South Asia", 28.6, 77.2},
	{"Colombia", "South America", 4.7, -74.1},
	{"Peru", "South America", -12.0, -77.0},
	{"Philippines", "Southeast Asia", 14.6, 121.0},
	{"Nigeria", "Sub-Saharan Africa", 9.1, 7.5},
	{"United Kingdom", "Western Europe", 54.6, -5.9},
	{"United States", "North America", 38.9, -77.0},
}

var (
	attackTypes = []string{"Bombing/Explosion", "Armed Assault", "Assassination", "Hostage Taking (Kidnapping)", "Facility/Infrastructure Attack"}
	targetTypes = []string{"Private Citizens & Property", "Military", "Police", "Government (General)", "Business"}
	weaponTypes = []string{"Explosives", "Firearms", "Incendiary", "Melee", "Unknown"}
)

// IncidentGenerator produces GTD-shaped raw tables
type IncidentGenerator struct {
	config IncidentGeneratorConfig
	rng    *rand.Rand
}

// NewIncidentGenerator creates a generator; identical configs yield identical tables
func NewIncidentGenerator(config IncidentGeneratorConfig) *IncidentGenerator {
	return &IncidentGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds a raw table with every required column
func (g *IncidentGenerator) Generate() *incident.RawTable {
	table := &incident.RawTable{
		Source:  fmt.Sprintf("synthetic(seed=%d)", g.config.Seed),
		Headers: append([]string(nil), incident.RequiredColumns...),
		Rows:    make([][]string, 0, g.config.Rows),
	}
	for i := 0; i < g.config.Rows; i++ {
		table.Rows = append(table.Rows, g.generateRow())
	}
	return table
}

func (g *IncidentGenerator) generateRow() []string {
	p := places[g.rng.Intn(len(places))]
	span := g.config.EndYear - g.config.StartYear + 1
	if span < 1 {
		span = 1
	}

	month := strconv.Itoa(1 + g.rng.Intn(12))
	if g.rng.Float64() < g.config.InvalidMonthRate {
		month = []string{"0", "13", ""}[g.rng.Intn(3)]
	}

	kills := float64(g.rng.Intn(4)) * float64(g.rng.Intn(3))
	if g.rng.Float64() < g.config.OutlierRate {
		kills = 500 + float64(g.rng.Intn(1000))
	}
	wounds := float64(g.rng.Intn(6))

	row := make([]string, len(incident.RequiredColumns))
	set := func(col, value string) {
		for i, h := range incident.RequiredColumns {
			if h == col {
				row[i] = value
				return
			}
		}
	}

	set(incident.ColYear, strconv.Itoa(g.config.StartYear+g.rng.Intn(span)))
	set(incident.ColMonth, month)
	set(incident.ColKills, g.maybeMissing(strconv.FormatFloat(kills, 'f', -1, 64)))
	set(incident.ColWounds, g.maybeMissing(strconv.FormatFloat(wounds, 'f', -1, 64)))
	set(incident.ColLatitude, g.maybeMissing(strconv.FormatFloat(p.lat+g.rng.NormFloat64(), 'f', 4, 64)))
	set(incident.ColLongitude, g.maybeMissing(strconv.FormatFloat(p.lon+g.rng.NormFloat64(), 'f', 4, 64)))
	set(incident.ColCountry, p.country)
	set(incident.ColRegion, p.region)
	set(incident.ColAttackType, attackTypes[g.rng.Intn(len(attackTypes))])
	set(incident.ColTargetType, targetTypes[g.rng.Intn(len(targetTypes))])
	set(incident.ColWeaponType, weaponTypes[g.rng.Intn(len(weaponTypes))])
	return row
}

func (g *IncidentGenerator) maybeMissing(value string) string {
	if g.rng.Float64() < g.config.MissingRate {
		return ""
	}
	return value
}

// WriteCSV writes a raw table as CSV with its header row
func WriteCSV(w io.Writer, table *incident.RawTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteCSVFile writes a raw table to path
func WriteCSVFile(path string, table *incident.RawTable) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(file, table); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
