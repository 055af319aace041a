package pinn

import (
	"fmt"
	"sort"
)

// LogOptions controls how a logged value is displayed and aggregated.
type LogOptions struct {
	ProgBar   bool // Show on the progress display
	OnEpoch   bool // Aggregate into a per-epoch mean
	OnStep    bool // Keep the raw per-step value
	BatchSize int  // Weight for batch-size-aware epoch aggregation
	SyncDist  bool // Synchronize across distributed workers (no-op here)
}

// Logger is the metric sink the solver reports into.
type Logger interface {
	Log(key string, value float64, opts LogOptions)
}

// NopLogger discards every metric.
type NopLogger struct{}

func (NopLogger) Log(key string, value float64, opts LogOptions) {}

type metricWindow struct {
	weightedSum float64
	weight      float64
	last        float64
	steps       int
}

// History accumulates logged metrics and aggregates per-epoch means weighted
// by batch size, so uneven batches contribute proportionally.
type History struct {
	windows map[string]*metricWindow
	epochs  map[string][]float64
}

// NewHistory creates an empty metric history.
func NewHistory() *History {
	return &History{
		windows: make(map[string]*metricWindow),
		epochs:  make(map[string][]float64),
	}
}

// Log records one metric value. A missing batch size counts as weight 1.
func (h *History) Log(key string, value float64, opts LogOptions) {
	w, ok := h.windows[key]
	if !ok {
		w = &metricWindow{}
		h.windows[key] = w
	}

	weight := float64(opts.BatchSize)
	if weight <= 0 {
		weight = 1
	}
	if opts.OnEpoch {
		w.weightedSum += value * weight
		w.weight += weight
	}
	w.last = value
	w.steps++
}

// EpochEnd closes the current epoch: every metric's weighted mean is appended
// to its epoch series and the accumulation windows reset.
func (h *History) EpochEnd() {
	for key, w := range h.windows {
		if w.weight > 0 {
			h.epochs[key] = append(h.epochs[key], w.weightedSum/w.weight)
		}
		delete(h.windows, key)
	}
}

// Last returns the most recent raw value logged under key.
func (h *History) Last(key string) (float64, bool) {
	w, ok := h.windows[key]
	if !ok {
		return 0, false
	}
	return w.last, true
}

// EpochSeries returns the per-epoch aggregated values of a metric.
func (h *History) EpochSeries(key string) []float64 {
	series := h.epochs[key]
	out := make([]float64, len(series))
	copy(out, series)
	return out
}

// Keys returns every metric name seen so far, sorted.
func (h *History) Keys() []string {
	seen := make(map[string]struct{}, len(h.windows)+len(h.epochs))
	for k := range h.windows {
		seen[k] = struct{}{}
	}
	for k := range h.epochs {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary renders the latest epoch aggregates, for progress printing.
func (h *History) Summary() string {
	out := ""
	for _, key := range h.Keys() {
		series := h.epochs[key]
		if len(series) == 0 {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%s=%.6f", key, series[len(series)-1])
	}
	return out
}
