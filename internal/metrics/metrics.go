// Package metrics provides pure rank-comparison metrics used to score prompt
// candidates against the labeled dataset.
package metrics

import (
	"fmt"
	"math"
	"sort"
)

// validate checks the input sequences share a usable shape.
func validate(actual, predicted []float64) error {
	if len(actual) == 0 {
		return fmt.Errorf("metric input is empty")
	}
	if len(actual) != len(predicted) {
		return fmt.Errorf("metric input length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}
	return nil
}

// MAE returns the mean absolute error between the two sequences.
func MAE(actual, predicted []float64) (float64, error) {
	if err := validate(actual, predicted); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(predicted[i] - actual[i])
	}
	return sum / float64(len(actual)), nil
}

// RMSE returns the root mean square error between the two sequences.
func RMSE(actual, predicted []float64) (float64, error) {
	if err := validate(actual, predicted); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		d := predicted[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual))), nil
}

// Spearman returns the Spearman rank correlation of the two sequences.
// Ties receive the average of the ranks they span. Returns 0 if either
// sequence has zero rank variance.
func Spearman(actual, predicted []float64) (float64, error) {
	if err := validate(actual, predicted); err != nil {
		return 0, err
	}
	ra := fractionalRanks(actual)
	rp := fractionalRanks(predicted)
	return pearson(ra, rp), nil
}

// KendallTau returns Kendall's tau-b between the two sequences:
// (concordant - discordant) / sqrt(n1 * n2), where n1 and n2 adjust the pair
// count for ties in each sequence. Returns 0 if either adjusted denominator
// is 0.
func KendallTau(actual, predicted []float64) (float64, error) {
	if err := validate(actual, predicted); err != nil {
		return 0, err
	}

	n := len(actual)
	concordant := 0
	discordant := 0
	tiedX := 0 // pairs tied only in actual
	tiedY := 0 // pairs tied only in predicted

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := actual[j] - actual[i]
			dy := predicted[j] - predicted[i]
			switch {
			case dx == 0 && dy == 0:
				// tied in both, counted in neither adjustment
			case dx == 0:
				tiedX++
			case dy == 0:
				tiedY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}

	n0 := n * (n - 1) / 2
	n1 := n0 - tiedX
	n2 := n0 - tiedY
	if n1 == 0 || n2 == 0 {
		return 0, nil
	}
	return float64(concordant-discordant) / math.Sqrt(float64(n1)*float64(n2)), nil
}

// Compute returns all four metrics for the aligned sequences in one pass.
func Compute(actual, predicted []float64) (mae, rmse, spearman, kendall float64, err error) {
	if mae, err = MAE(actual, predicted); err != nil {
		return 0, 0, 0, 0, err
	}
	if rmse, err = RMSE(actual, predicted); err != nil {
		return 0, 0, 0, 0, err
	}
	if spearman, err = Spearman(actual, predicted); err != nil {
		return 0, 0, 0, 0, err
	}
	if kendall, err = KendallTau(actual, predicted); err != nil {
		return 0, 0, 0, 0, err
	}
	return mae, rmse, spearman, kendall, nil
}

// fractionalRanks assigns 1-based ranks to values, averaging ranks across
// ties.
func fractionalRanks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// average rank for the tie run [i, j]
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// pearson computes the Pearson correlation of two equal-length sequences.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
