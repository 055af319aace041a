package optimizer

import (
	"fmt"
	"math"

	"github.com/tsawler/go-pinn/tensor"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam struct {
	lr        float64
	beta1     float64
	beta2     float64
	epsilon   float64
	m         [][]float32 // First moment estimates
	v         [][]float32 // Second moment estimates
	stepCount uint64
}

// NewAdam creates an Adam optimizer. Zero hyperparameters fall back to the
// standard defaults (beta1=0.9, beta2=0.999, epsilon=1e-8).
func NewAdam(lr, beta1, beta2, epsilon float64) (*Adam, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", lr)
	}
	if beta1 == 0 {
		beta1 = 0.9
	}
	if beta2 == 0 {
		beta2 = 0.999
	}
	if epsilon == 0 {
		epsilon = 1e-8
	}
	if beta1 < 0 || beta1 >= 1 || beta2 < 0 || beta2 >= 1 {
		return nil, fmt.Errorf("betas must be in [0, 1), got %g and %g", beta1, beta2)
	}
	return &Adam{lr: lr, beta1: beta1, beta2: beta2, epsilon: epsilon}, nil
}

func (a *Adam) Step(params []*tensor.Tensor) error {
	if a.m == nil {
		a.m = make([][]float32, len(params))
		a.v = make([][]float32, len(params))
		for i, p := range params {
			a.m[i] = make([]float32, p.NumElems)
			a.v[i] = make([]float32, p.NumElems)
		}
	}
	if len(a.m) != len(params) {
		return fmt.Errorf("optimizer state tracks %d parameters, got %d", len(a.m), len(params))
	}

	a.stepCount++
	correction1 := 1 - math.Pow(a.beta1, float64(a.stepCount))
	correction2 := 1 - math.Pow(a.beta2, float64(a.stepCount))

	for i, p := range params {
		data, grad, err := gradData(p)
		if err != nil {
			return fmt.Errorf("parameter %d: %v", i, err)
		}
		if grad == nil {
			continue
		}

		m, v := a.m[i], a.v[i]
		for j := range data {
			g := float64(grad[j])
			mj := a.beta1*float64(m[j]) + (1-a.beta1)*g
			vj := a.beta2*float64(v[j]) + (1-a.beta2)*g*g
			m[j] = float32(mj)
			v[j] = float32(vj)

			mHat := mj / correction1
			vHat := vj / correction2
			data[j] -= float32(a.lr * mHat / (math.Sqrt(vHat) + a.epsilon))
		}
	}
	return nil
}

func (a *Adam) ZeroGrad(params []*tensor.Tensor) { zeroGrad(params) }

func (a *Adam) GetStepCount() uint64 { return a.stepCount }

func (a *Adam) UpdateLearningRate(lr float64) { a.lr = lr }

func (a *Adam) GetLearningRate() float64 { return a.lr }

func (a *Adam) GetState() (*State, error) {
	state := &State{
		Type:      "Adam",
		StepCount: a.stepCount,
		Parameters: map[string]float64{
			"lr":      a.lr,
			"beta1":   a.beta1,
			"beta2":   a.beta2,
			"epsilon": a.epsilon,
		},
		Buffers: map[string][][]float32{},
	}
	if a.m != nil {
		state.Buffers["m"] = copyBuffers(a.m)
		state.Buffers["v"] = copyBuffers(a.v)
	}
	return state, nil
}

func (a *Adam) LoadState(state *State) error {
	if state.Type != "Adam" {
		return fmt.Errorf("cannot load %s state into Adam", state.Type)
	}
	a.stepCount = state.StepCount
	for name, value := range state.Parameters {
		switch name {
		case "lr":
			a.lr = value
		case "beta1":
			a.beta1 = value
		case "beta2":
			a.beta2 = value
		case "epsilon":
			a.epsilon = value
		}
	}
	if m, ok := state.Buffers["m"]; ok {
		a.m = copyBuffers(m)
	}
	if v, ok := state.Buffers["v"]; ok {
		a.v = copyBuffers(v)
	}
	return nil
}
