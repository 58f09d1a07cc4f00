package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMAE_PerfectPrediction(t *testing.T) {
	mae, err := MAE([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, mae)
}

func TestMAE_KnownValue(t *testing.T) {
	mae, err := MAE([]float64{1, 2, 3}, []float64{2, 2, 5})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mae, 1e-9)
}

func TestRMSE_KnownValue(t *testing.T) {
	rmse, err := RMSE([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rmse)

	rmse, err = RMSE([]float64{0, 0}, []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 3.5355339059, rmse, 1e-6)
}

func TestSpearman_PerfectAgreement(t *testing.T) {
	s, err := Spearman([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)
}

func TestSpearman_PerfectDisagreement(t *testing.T) {
	s, err := Spearman([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, s, 1e-9)
}

func TestSpearman_TiesAveraged(t *testing.T) {
	// Monotone relationship with a tie in predicted: correlation stays
	// positive but below 1.
	s, err := Spearman([]float64{1, 2, 3, 4}, []float64{1, 2, 2, 4})
	require.NoError(t, err)
	assert.Greater(t, s, 0.9)
	assert.Less(t, s, 1.0)
}

func TestSpearman_ConstantSequence(t *testing.T) {
	s, err := Spearman([]float64{1, 2, 3}, []float64{5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s)
}

func TestKendallTau_PerfectAgreement(t *testing.T) {
	k, err := KendallTau([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, k, 1e-9)
}

func TestKendallTau_PerfectDisagreement(t *testing.T) {
	k, err := KendallTau([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, k, 1e-9)
}

func TestKendallTau_TiesAdjustDenominator(t *testing.T) {
	// One tied pair in predicted: n0=6, n1=6, n2=5, 5 concordant pairs.
	k, err := KendallTau([]float64{1, 2, 3, 4}, []float64{1, 2, 2, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0/5.477225575, k, 1e-6)
}

func TestKendallTau_AllTiedReturnsZero(t *testing.T) {
	k, err := KendallTau([]float64{1, 2, 3}, []float64{7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, 0.0, k)
}

func TestValidate_EmptyInput(t *testing.T) {
	_, err := MAE(nil, nil)
	assert.Error(t, err)

	_, err = KendallTau([]float64{}, []float64{})
	assert.Error(t, err)
}

func TestValidate_LengthMismatch(t *testing.T) {
	_, err := RMSE([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")

	_, err = Spearman([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}

func TestCompute_AllMetrics(t *testing.T) {
	mae, rmse, spearman, kendall, err := Compute([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, mae)
	assert.Equal(t, 0.0, rmse)
	assert.InDelta(t, 1.0, spearman, 1e-9)
	assert.InDelta(t, 1.0, kendall, 1e-9)
}

func TestCompute_PropagatesError(t *testing.T) {
	_, _, _, _, err := Compute([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}
