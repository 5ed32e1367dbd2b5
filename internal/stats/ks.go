// Package stats implements the statistical tests used to compare dataset partitions.
package stats

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptySample = errors.New("sample has no values")

// KSResult is the outcome of a two-sample Kolmogorov-Smirnov test.
type KSResult struct {
	Statistic float64
	PValue    float64
}

// Drift reports whether the samples are significantly different at the given level.
func (r KSResult) Drift(threshold float64) bool {
	return r.PValue < threshold
}

// KSTwoSample tests whether x and y are drawn from the same continuous distribution. Missing
// values are ignored. The p-value uses the asymptotic Kolmogorov distribution with Stephens'
// small-sample correction.
func KSTwoSample(x, y []float64) (KSResult, error) {
	xs := sortedValues(x)
	ys := sortedValues(y)
	if len(xs) == 0 || len(ys) == 0 {
		return KSResult{}, ErrEmptySample
	}

	d := stat.KolmogorovSmirnov(xs, nil, ys, nil)
	n, m := float64(len(xs)), float64(len(ys))
	en := math.Sqrt(n * m / (n + m))

	return KSResult{
		Statistic: d,
		PValue:    kolmogorovQ((en + 0.12 + 0.11/en) * d),
	}, nil
}

func sortedValues(v []float64) []float64 {
	out := make([]float64, 0, len(v))
	for _, f := range v {
		if !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	sort.Float64s(out)

	return out
}

// kolmogorovQ is the complementary Kolmogorov distribution function
// Q(l) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 l^2).
func kolmogorovQ(lambda float64) float64 {
	const (
		maxTerms = 100
		eps1     = 1e-3
		eps2     = 1e-8
	)

	a2 := -2 * lambda * lambda
	sign := 2.0
	sum, prev := 0.0, 0.0
	for j := 1; j <= maxTerms; j++ {
		term := sign * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= eps1*prev || math.Abs(term) <= eps2*sum {
			return math.Max(0, math.Min(1, sum))
		}
		sign = -sign
		prev = math.Abs(term)
	}

	// no convergence happens only for tiny lambda where Q is 1
	return 1
}
