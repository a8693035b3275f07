// Package metrics computes accuracy statistics for classifier evaluation:
// confusion matrices, per-class F1 scores, and overall accuracy, at track,
// clip, and visit granularity.
package metrics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData reports an attempt to derive statistics from an empty input
// collection. At the whole-run level (no visits at all) this is fatal:
// there is nothing to report.
var ErrNoData = errors.New("no records to evaluate")

// ConfusionMatrix is a |labels| x |labels| count matrix with an ordered
// label axis. Rows are ground truth, columns are predictions.
type ConfusionMatrix struct {
	Labels []string
	Counts *mat.Dense
}

// NewConfusionMatrix counts (truth, predicted) pairs into a matrix. Pairs
// whose truth or prediction falls outside the label set do not get a cell;
// callers warn about stray labels before reaching here. An empty pair list
// yields ErrNoData.
func NewConfusionMatrix(truth, predicted, labels []string) (*ConfusionMatrix, error) {
	if len(truth) != len(predicted) {
		return nil, fmt.Errorf("length mismatch: %d truth labels, %d predictions", len(truth), len(predicted))
	}
	if len(truth) == 0 {
		return nil, ErrNoData
	}

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	counts := mat.NewDense(len(labels), len(labels), nil)
	for i := range truth {
		row, haveRow := index[truth[i]]
		col, haveCol := index[predicted[i]]
		if !haveRow || !haveCol {
			continue
		}
		counts.Set(row, col, counts.At(row, col)+1)
	}

	return &ConfusionMatrix{Labels: append([]string(nil), labels...), Counts: counts}, nil
}

// RowSums returns the per-row totals: the count of ground-truth instances
// of each label.
func (cm *ConfusionMatrix) RowSums() []float64 {
	n := len(cm.Labels)
	sums := make([]float64, n)
	for i := 0; i < n; i++ {
		sums[i] = floats.Sum(cm.Counts.RawRowView(i))
	}
	return sums
}

// colSums returns the per-column totals: the count of predictions of each
// label.
func (cm *ConfusionMatrix) colSums() []float64 {
	n := len(cm.Labels)
	sums := make([]float64, n)
	for j := 0; j < n; j++ {
		sums[j] = floats.Sum(mat.Col(nil, j, cm.Counts))
	}
	return sums
}

// Normalized returns a copy of the matrix with each row divided by its row
// sum. A row with no ground-truth instances divides zero by zero and comes
// out as NaN; that is the documented boundary behaviour, not an error.
func (cm *ConfusionMatrix) Normalized() *mat.Dense {
	n := len(cm.Labels)
	out := mat.NewDense(n, n, nil)
	sums := cm.RowSums()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, cm.Counts.At(i, j)/sums[i])
		}
	}
	return out
}

// PerClassF1 computes the per-class F1 score, aligned with cm.Labels.
// Classes with no true and no predicted instances have undefined precision
// and recall; their F1 is defined as 0 rather than NaN.
func (cm *ConfusionMatrix) PerClassF1() []float64 {
	rowSums := cm.RowSums()
	colSums := cm.colSums()

	f1 := make([]float64, len(cm.Labels))
	for i := range cm.Labels {
		tp := cm.Counts.At(i, i)
		if tp == 0 {
			continue // precision or recall is 0 (or undefined): F1 stays 0
		}
		precision := tp / colSums[i]
		recall := tp / rowSums[i]
		f1[i] = 2 * precision * recall / (precision + recall)
	}
	return f1
}

// OverallAccuracy is the fraction of exact label matches.
func OverallAccuracy(truth, predicted []string) (float64, error) {
	if len(truth) != len(predicted) {
		return 0, fmt.Errorf("length mismatch: %d truth labels, %d predictions", len(truth), len(predicted))
	}
	if len(truth) == 0 {
		return 0, ErrNoData
	}

	correct := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth)), nil
}

// FinalScore is the unweighted mean of per-class F1 scores. Every class
// counts equally regardless of how common it is, so a classifier cannot
// score well by neglecting minority classes.
func FinalScore(perClassF1 []float64) float64 {
	if len(perClassF1) == 0 {
		return 0
	}
	return stat.Mean(perClassF1, nil)
}
