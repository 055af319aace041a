// Package optimizer provides CPU optimizers over tensor parameters. Gradients
// are read from each parameter's stored gradient; updates mutate the
// parameter data in place.
package optimizer

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// Optimizer defines the common interface for all optimizers. State save and
// restore enables checkpoint functionality.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	Step(params []*tensor.Tensor) error

	// ZeroGrad clears the gradients of the parameters.
	ZeroGrad(params []*tensor.Tensor)

	// GetStepCount returns the current optimization step number.
	GetStepCount() uint64

	// UpdateLearningRate updates the learning rate.
	UpdateLearningRate(lr float64)

	// GetLearningRate returns the current learning rate.
	GetLearningRate() float64

	// GetState extracts optimizer state for checkpointing.
	GetState() (*State, error)

	// LoadState restores optimizer state from a checkpoint.
	LoadState(state *State) error
}

// State represents the complete serializable state of an optimizer.
type State struct {
	Type       string                 `json:"type"` // "SGD", "Adam"
	StepCount  uint64                 `json:"step_count"`
	Parameters map[string]float64     `json:"parameters"` // Hyperparameters
	Buffers    map[string][][]float32 `json:"buffers"`    // Per-parameter state tensors
}

func gradData(param *tensor.Tensor) ([]float32, []float32, error) {
	grad := param.Grad()
	if grad == nil {
		return nil, nil, nil
	}
	if param.DType != tensor.Float32 || grad.DType != tensor.Float32 {
		return nil, nil, fmt.Errorf("optimizers require Float32 parameters, got %s", param.DType)
	}
	if grad.NumElems != param.NumElems {
		return nil, nil, fmt.Errorf("gradient has %d elements for parameter with %d",
			grad.NumElems, param.NumElems)
	}
	return param.Data.([]float32), grad.Data.([]float32), nil
}

func zeroGrad(params []*tensor.Tensor) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

func copyBuffers(buffers [][]float32) [][]float32 {
	out := make([][]float32, len(buffers))
	for i, b := range buffers {
		c := make([]float32, len(b))
		copy(c, b)
		out[i] = c
	}
	return out
}
