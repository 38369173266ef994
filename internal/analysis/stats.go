// Package analysis derives the statistics the dashboard precomputes:
// descriptive summaries for the stats command, box quartiles and histogram
// bins for the distribution sections, and the yearly trend fit.
package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
)

// Summary holds descriptive statistics for one measure column
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Describe computes the summary statistics of a series
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, errors.InvalidInput("cannot describe an empty series")
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviation(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)

	return Summary{
		Count:  len(values),
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
	}, nil
}

// Box is the precomputed five-number summary a box trace renders. Fences are
// 1.5·IQR past the quartiles, clamped to the observed range, so the chart is
// fully determined before the page loads.
type Box struct {
	LowerFence float64 `json:"lower_fence"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	UpperFence float64 `json:"upper_fence"`
}

// BoxStats computes the box-plot summary of a series
func BoxStats(values []float64) (Box, error) {
	if len(values) == 0 {
		return Box{}, errors.InvalidInput("cannot compute box stats of an empty series")
	}

	q1, _ := stats.Percentile(values, 25)
	median, _ := stats.Median(values)
	q3, _ := stats.Percentile(values, 75)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	iqr := q3 - q1
	lower := math.Max(min, q1-1.5*iqr)
	upper := math.Min(max, q3+1.5*iqr)

	return Box{
		LowerFence: lower,
		Q1:         q1,
		Median:     median,
		Q3:         q3,
		UpperFence: upper,
	}, nil
}

// Histogram is an equal-width binning of a series. Edges has one more entry
// than Counts.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// HistogramBins distributes the series into n equal-width bins
func HistogramBins(values []float64, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, errors.InvalidInput("histogram needs at least one bin")
	}
	if len(values) == 0 {
		return Histogram{}, errors.InvalidInput("cannot bin an empty series")
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	if min == max {
		return Histogram{
			Edges:  []float64{min, min + 1},
			Counts: []float64{float64(len(values))},
		}, nil
	}

	edges := make([]float64, bins+1)
	width := (max - min) / float64(bins)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[bins] = max

	// gonum half-open intervals would drop the maximum itself, so count
	// against a copy whose last divider sits just past it.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(max, math.MaxFloat64)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	counts := stat.Histogram(nil, dividers, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}, nil
}

// Trend is a least-squares line fitted to a yearly series
type Trend struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	R2    float64 `json:"r2"`
}

// At evaluates the fitted line for a year
func (t Trend) At(year float64) float64 {
	return t.Alpha + t.Beta*year
}

// LinearTrend fits value = alpha + beta·year over a yearly series
func LinearTrend(years, values []float64) (Trend, error) {
	if len(years) != len(values) {
		return Trend{}, errors.InvalidInput("trend series lengths differ")
	}
	if len(years) < 2 {
		return Trend{}, errors.InvalidInput("trend needs at least two points")
	}

	alpha, beta := stat.LinearRegression(years, values, nil, false)
	r2 := stat.RSquared(years, values, nil, alpha, beta)
	return Trend{Alpha: alpha, Beta: beta, R2: r2}, nil
}
