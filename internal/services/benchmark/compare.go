// Package benchmark compares a weighted portfolio against a benchmark series, both rebased to 100.
package benchmark

import (
	"FinLevels/internal/domain/models"
	"FinLevels/pkg/util"
)

// Compare values the portfolio at every tick of benchmark and normalizes both curves.
//
// The benchmark defines the timeline; asset series are read by index and must already be
// aligned to it. A nil sample, a missing series or a series shorter than the benchmark adds
// nothing for that asset at that tick. A nil benchmark sample counts as 0.
// Dates are labelled per granularity (see util.FormatLabel).
func Compare(assets []models.Asset, assetSeries map[string][]models.TimeSeriesPoint, benchmark []models.TimeSeriesPoint, granularity string) models.BenchmarkComparison {
	n := len(benchmark)
	dates := make([]string, n)
	bench := make([]float64, n)
	for i, p := range benchmark {
		dates[i] = util.FormatLabel(p.Timestamp, granularity)
		bench[i] = valueOr0(p.Value)
	}
	return models.BenchmarkComparison{
		Dates:     dates,
		Portfolio: Normalize(PortfolioValues(assets, assetSeries, n)),
		Benchmark: Normalize(bench),
	}
}

// PortfolioValues returns the raw portfolio value at each of n ticks.
func PortfolioValues(assets []models.Asset, assetSeries map[string][]models.TimeSeriesPoint, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = fold(assets, 0.0, func(acc float64, a models.Asset) float64 {
			return acc + contribution(a, assetSeries[a.Symbol], i)
		})
	}
	return out
}

// Normalize rebases raw so the first positive value reads 100. Without a positive value the base is 1.
func Normalize(raw []float64) []float64 {
	base := 1.0
	for _, v := range raw {
		if v > 0 {
			base = v
			break
		}
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = util.Round2(v / base * 100)
	}
	return out
}

func contribution(a models.Asset, series []models.TimeSeriesPoint, i int) float64 {
	if i >= len(series) {
		return 0
	}
	return valueOr0(series[i].Value) * a.Quantity
}

func valueOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func fold[T, A any](xs []T, init A, f func(A, T) A) A {
	acc := init
	for _, x := range xs {
		acc = f(acc, x)
	}
	return acc
}
