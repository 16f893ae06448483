// Package cleaning turns a raw incident table into the immutable, cleaned
// dataset every chart and the question matcher read from.
//
// The pipeline is fixed and runs in this order:
//  1. coerce nkill, nwound, latitude, longitude and imonth to numbers
//  2. keep rows whose month is in [1,12]
//  3. impute missing monitored values with the column median
//  4. drop rows whose |z| reaches the threshold on any monitored column
//  5. derive casualties and month_name
package cleaning

import (
	"context"
	"fmt"
	"math"
	"time"

	"gtdash/adapters/datareadiness/coercer"
	"gtdash/adapters/excel"
	"gtdash/domain/core"
	"gtdash/domain/incident"
	"gtdash/internal"
	"gtdash/ports"

	"gonum.org/v1/gonum/stat"
)

// DefaultZThreshold is the absolute standard score at which a row is
// rejected as an outlier.
const DefaultZThreshold = 4.0

// monitored lists the columns that are imputed and outlier-checked, in the
// order used by the value arrays below.
var monitored = [...]string{
	incident.ColKills,
	incident.ColWounds,
	incident.ColLatitude,
	incident.ColLongitude,
}

const numMonitored = len(monitored)

// Cleaner runs the cleaning pipeline
type Cleaner struct {
	coercer    *coercer.TypeCoercer
	zThreshold float64
	logger     *internal.Logger
}

// Option configures a Cleaner
type Option func(*Cleaner)

// WithCoercion replaces the default numeric coercion rules
func WithCoercion(config coercer.CoercionConfig) Option {
	return func(c *Cleaner) { c.coercer = coercer.NewTypeCoercer(config) }
}

// WithLogger sets the logger used for the load report
func WithLogger(logger *internal.Logger) Option {
	return func(c *Cleaner) { c.logger = logger }
}

// NewCleaner creates a cleaner with the default coercion rules and threshold
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{
		coercer:    coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		zThreshold: DefaultZThreshold,
		logger:     internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CleanReport records what each pipeline step did
type CleanReport struct {
	Source              string             `json:"source"`
	RowsRead            int                `json:"rows_read"`
	DroppedInvalidMonth int                `json:"dropped_invalid_month"`
	DroppedOutliers     int                `json:"dropped_outliers"`
	DroppedMissingYear  int                `json:"dropped_missing_year"`
	Retained            int                `json:"retained"`
	Imputed             map[string]int     `json:"imputed"`
	Medians             map[string]float64 `json:"medians"`
	Means               map[string]float64 `json:"means"`
	StdDevs             map[string]float64 `json:"std_devs"`
	Duration            time.Duration      `json:"duration"`
}

// candidate is a row that survived the month filter
type candidate struct {
	row    int
	month  int
	values [numMonitored]float64
}

// Load reads the source and cleans it
func (c *Cleaner) Load(ctx context.Context, source ports.IncidentSourcePort) (*incident.Dataset, *CleanReport, error) {
	table, err := source.ReadTable(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return c.Clean(table)
}

// LoadFile is a convenience for cleaning a CSV or XLSX file with defaults
func LoadFile(ctx context.Context, path string) (*incident.Dataset, *CleanReport, error) {
	return NewCleaner().Load(ctx, excel.NewDataReader(path))
}

// Clean runs the pipeline over a raw table. It never modifies table.
func (c *Cleaner) Clean(table *incident.RawTable) (*incident.Dataset, *CleanReport, error) {
	start := time.Now()

	if missing := table.MissingColumns(incident.RequiredColumns); len(missing) > 0 {
		return nil, nil, core.NewMissingColumnsError(table.Source, missing)
	}

	report := &CleanReport{
		Source:   table.Source,
		RowsRead: len(table.Rows),
		Imputed:  make(map[string]int, numMonitored),
		Medians:  make(map[string]float64, numMonitored),
		Means:    make(map[string]float64, numMonitored),
		StdDevs:  make(map[string]float64, numMonitored),
	}

	monthCol := table.ColumnIndex(incident.ColMonth)
	var valueCols [numMonitored]int
	for j, name := range monitored {
		valueCols[j] = table.ColumnIndex(name)
	}

	// Steps 1 and 2: coerce and keep valid months. Missing months are
	// dropped here, before imputation, so they are never recovered.
	candidates := make([]candidate, 0, len(table.Rows))
	for r := range table.Rows {
		month, ok := c.coercer.CoerceInt(table.Cell(r, monthCol))
		if !ok || month < 1 || month > 12 {
			report.DroppedInvalidMonth++
			continue
		}
		cand := candidate{row: r, month: month}
		for j, col := range valueCols {
			cand.values[j] = c.coercer.CoerceNumeric(table.Cell(r, col))
		}
		candidates = append(candidates, cand)
	}

	// Step 3: median imputation, one median per column over the survivors.
	for j, name := range monitored {
		column := make([]float64, 0, len(candidates))
		for i := range candidates {
			if v := candidates[i].values[j]; !coercer.IsMissing(v) {
				column = append(column, v)
			}
		}
		median, err := columnMedian(name, column)
		if err != nil {
			return nil, nil, err
		}
		report.Medians[name] = median

		for i := range candidates {
			if coercer.IsMissing(candidates[i].values[j]) {
				candidates[i].values[j] = median
				report.Imputed[name]++
			}
		}
	}

	// Step 4: joint z-score filter using moments of the imputed data.
	var means, stds [numMonitored]float64
	for j, name := range monitored {
		column := make([]float64, len(candidates))
		for i := range candidates {
			column[i] = candidates[i].values[j]
		}
		mean, std, err := columnMoments(name, column)
		if err != nil {
			return nil, nil, err
		}
		means[j], stds[j] = mean, std
		report.Means[name], report.StdDevs[name] = mean, std
	}

	kept := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		if c.isOutlier(cand.values, means, stds) {
			report.DroppedOutliers++
			continue
		}
		kept = append(kept, cand)
	}

	// Step 5: derived columns. Rows without a usable year cannot take part
	// in year filtering, so they are dropped last; the statistics above are
	// unaffected by them.
	yearCol := table.ColumnIndex(incident.ColYear)
	countryCol := table.ColumnIndex(incident.ColCountry)
	regionCol := table.ColumnIndex(incident.ColRegion)
	attackCol := table.ColumnIndex(incident.ColAttackType)
	targetCol := table.ColumnIndex(incident.ColTargetType)
	weaponCol := table.ColumnIndex(incident.ColWeaponType)

	incidents := make([]incident.Incident, 0, len(kept))
	for _, cand := range kept {
		year, ok := c.coercer.CoerceInt(table.Cell(cand.row, yearCol))
		if !ok {
			report.DroppedMissingYear++
			continue
		}
		kills, wounds := cand.values[0], cand.values[1]
		incidents = append(incidents, incident.Incident{
			Year:       year,
			Month:      cand.month,
			MonthName:  incident.MonthName(cand.month),
			Country:    table.Cell(cand.row, countryCol),
			Region:     table.Cell(cand.row, regionCol),
			AttackType: table.Cell(cand.row, attackCol),
			TargetType: table.Cell(cand.row, targetCol),
			WeaponType: table.Cell(cand.row, weaponCol),
			Kills:      kills,
			Wounds:     wounds,
			Latitude:   cand.values[2],
			Longitude:  cand.values[3],
			Casualties: kills + wounds,
		})
	}

	report.Retained = len(incidents)
	report.Duration = time.Since(start)
	c.logReport(report)

	return incident.NewDataset(table.Source, incidents), report, nil
}

// isOutlier reports whether any monitored value has |z| >= threshold. A
// zero-variance column contributes z = 0.
func (c *Cleaner) isOutlier(values, means, stds [numMonitored]float64) bool {
	for j := range values {
		if stds[j] == 0 {
			continue
		}
		z := stat.StdScore(values[j], means[j], stds[j])
		if math.Abs(z) >= c.zThreshold {
			return true
		}
	}
	return false
}

func (c *Cleaner) logReport(r *CleanReport) {
	c.logger.Info("[Cleaner] %s: read=%d invalid_month=%d outliers=%d missing_year=%d retained=%d in %s",
		r.Source, r.RowsRead, r.DroppedInvalidMonth, r.DroppedOutliers, r.DroppedMissingYear, r.Retained, r.Duration)
	for _, name := range monitored {
		c.logger.Debug("[Cleaner] %s: median=%.4g imputed=%d mean=%.4g std=%.4g",
			name, r.Medians[name], r.Imputed[name], r.Means[name], r.StdDevs[name])
	}
}

// Summary renders the report on one line
func (r *CleanReport) Summary() string {
	return fmt.Sprintf("%d of %d rows retained (%d invalid month, %d outliers, %d missing year)",
		r.Retained, r.RowsRead, r.DroppedInvalidMonth, r.DroppedOutliers, r.DroppedMissingYear)
}
