package cleaning

import (
	"gtdash/domain/core"

	"github.com/montanaflynn/stats"
)

// columnMedian returns the median of the non-missing values of a column. An
// entirely missing column has no median and fails the load.
func columnMedian(name string, values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, core.NewDataQualityError(name, "no non-missing values among rows with a valid month")
	}
	median, err := stats.Median(values)
	if err != nil {
		return 0, core.NewDataQualityError(name, err.Error())
	}
	return median, nil
}

// columnMoments returns the mean and population standard deviation.
func columnMoments(name string, values []float64) (float64, float64, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, 0, core.NewDataQualityError(name, err.Error())
	}
	std, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return 0, 0, core.NewDataQualityError(name, err.Error())
	}
	return mean, std, nil
}
