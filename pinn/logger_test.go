package pinn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryWeightedEpochMean(t *testing.T) {
	h := NewHistory()

	// Two batches of different sizes: the epoch mean is weighted by size.
	h.Log("train_loss", 1.0, LogOptions{OnEpoch: true, BatchSize: 3})
	h.Log("train_loss", 5.0, LogOptions{OnEpoch: true, BatchSize: 1})
	h.EpochEnd()

	series := h.EpochSeries("train_loss")
	require.Len(t, series, 1)
	assert.InDelta(t, 2.0, series[0], 1e-9) // (1*3 + 5*1) / 4
}

func TestHistoryMissingBatchSizeWeighsOne(t *testing.T) {
	h := NewHistory()
	h.Log("loss", 2.0, LogOptions{OnEpoch: true})
	h.Log("loss", 4.0, LogOptions{OnEpoch: true})
	h.EpochEnd()

	series := h.EpochSeries("loss")
	require.Len(t, series, 1)
	assert.InDelta(t, 3.0, series[0], 1e-9)
}

func TestHistoryStepOnlyMetricsSkipEpochSeries(t *testing.T) {
	h := NewHistory()
	h.Log("raw", 1.0, LogOptions{OnStep: true})
	h.EpochEnd()
	assert.Empty(t, h.EpochSeries("raw"))
}

func TestHistoryWindowsResetBetweenEpochs(t *testing.T) {
	h := NewHistory()
	h.Log("loss", 10.0, LogOptions{OnEpoch: true})
	h.EpochEnd()
	h.Log("loss", 2.0, LogOptions{OnEpoch: true})
	h.EpochEnd()

	series := h.EpochSeries("loss")
	require.Len(t, series, 2)
	assert.InDelta(t, 10.0, series[0], 1e-9)
	assert.InDelta(t, 2.0, series[1], 1e-9)
}

func TestHistoryLast(t *testing.T) {
	h := NewHistory()
	_, ok := h.Last("loss")
	assert.False(t, ok)

	h.Log("loss", 1.0, LogOptions{OnEpoch: true})
	h.Log("loss", 7.0, LogOptions{OnEpoch: true})
	last, ok := h.Last("loss")
	require.True(t, ok)
	assert.Equal(t, 7.0, last)
}

func TestHistoryKeysSorted(t *testing.T) {
	h := NewHistory()
	h.Log("val_loss", 1.0, LogOptions{OnEpoch: true})
	h.Log("train_loss", 1.0, LogOptions{OnEpoch: true})
	h.EpochEnd()
	h.Log("boundary_loss", 1.0, LogOptions{OnEpoch: true})

	assert.Equal(t, []string{"boundary_loss", "train_loss", "val_loss"}, h.Keys())
}

func TestHistorySummary(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, "", h.Summary())

	h.Log("train_loss", 0.5, LogOptions{OnEpoch: true})
	h.EpochEnd()
	assert.Equal(t, "train_loss=0.500000", h.Summary())
}
