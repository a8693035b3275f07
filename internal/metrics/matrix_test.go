package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLabels = []string{"bird", "possum", "rat", "hedgehog", "none"}

func TestNewConfusionMatrixCounts(t *testing.T) {
	truth := []string{"bird", "bird", "bird", "possum", "none"}
	predicted := []string{"bird", "bird", "none", "possum", "none"}

	cm, err := NewConfusionMatrix(truth, predicted, testLabels)
	require.NoError(t, err)

	assert.Equal(t, 2.0, cm.Counts.At(0, 0), "bird->bird")
	assert.Equal(t, 1.0, cm.Counts.At(0, 4), "bird->none")
	assert.Equal(t, 1.0, cm.Counts.At(1, 1), "possum->possum")
	assert.Equal(t, 1.0, cm.Counts.At(4, 4), "none->none")

	// Row sums equal the ground-truth instance counts.
	assert.Equal(t, []float64{3, 1, 0, 0, 1}, cm.RowSums())
}

func TestNewConfusionMatrixSkipsUnknownLabels(t *testing.T) {
	truth := []string{"bird", "cat"}
	predicted := []string{"bird", "bird"}

	cm, err := NewConfusionMatrix(truth, predicted, testLabels)
	require.NoError(t, err)

	// The cat pair gets no cell anywhere.
	assert.Equal(t, []float64{1, 0, 0, 0, 0}, cm.RowSums())
}

func TestNewConfusionMatrixEmpty(t *testing.T) {
	_, err := NewConfusionMatrix(nil, nil, testLabels)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestNewConfusionMatrixLengthMismatch(t *testing.T) {
	_, err := NewConfusionMatrix([]string{"bird"}, []string{"bird", "rat"}, testLabels)
	require.Error(t, err)
}

func TestNormalized(t *testing.T) {
	truth := []string{"bird", "bird", "bird", "bird"}
	predicted := []string{"bird", "bird", "bird", "none"}

	cm, err := NewConfusionMatrix(truth, predicted, testLabels)
	require.NoError(t, err)

	normalized := cm.Normalized()
	assert.InDelta(t, 0.75, normalized.At(0, 0), 1e-12)
	assert.InDelta(t, 0.25, normalized.At(0, 4), 1e-12)

	// Rows with no ground-truth instances normalise to NaN.
	assert.True(t, math.IsNaN(normalized.At(2, 2)), "zero row should normalise to NaN")
}

func TestPerClassF1(t *testing.T) {
	// bird: tp=2, fn=1 (bird->none), fp=1 (rat->bird).
	truth := []string{"bird", "bird", "bird", "rat", "none"}
	predicted := []string{"bird", "bird", "none", "bird", "none"}

	cm, err := NewConfusionMatrix(truth, predicted, testLabels)
	require.NoError(t, err)

	f1 := cm.PerClassF1()

	precision := 2.0 / 3.0
	recall := 2.0 / 3.0
	assert.InDelta(t, 2*precision*recall/(precision+recall), f1[0], 1e-12, "bird F1")

	// rat has a true instance but no correct prediction: F1 = 0.
	assert.Equal(t, 0.0, f1[2], "rat F1")
	// possum has no instances at all: F1 defined as 0.
	assert.Equal(t, 0.0, f1[1], "possum F1")
	// none: tp=2, fp=1 (bird->none), fn=0 -> precision 2/3, recall 1.
	noneF1 := 2 * (2.0 / 3.0) * 1.0 / (2.0/3.0 + 1.0)
	assert.InDelta(t, noneF1, f1[4], 1e-12, "none F1")
}

func TestOverallAccuracy(t *testing.T) {
	truth := []string{"bird", "bird", "rat", "none"}
	predicted := []string{"bird", "none", "rat", "none"}

	accuracy, err := OverallAccuracy(truth, predicted)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, accuracy, 1e-12)

	_, err = OverallAccuracy(nil, nil)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestFinalScoreIsUnweightedMean(t *testing.T) {
	// Rare classes count as much as common ones.
	f1 := []float64{1.0, 0.0, 0.5, 0.5, 1.0}
	assert.InDelta(t, 0.6, FinalScore(f1), 1e-12)
	assert.Equal(t, 0.0, FinalScore(nil))
}
