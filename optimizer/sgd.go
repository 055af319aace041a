package optimizer

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
type SGD struct {
	lr        float64
	momentum  float64
	velocity  [][]float32
	stepCount uint64
}

// NewSGD creates an SGD optimizer. Momentum 0 disables the velocity buffers.
func NewSGD(lr, momentum float64) (*SGD, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", lr)
	}
	if momentum < 0 || momentum >= 1 {
		return nil, fmt.Errorf("momentum must be in [0, 1), got %g", momentum)
	}
	return &SGD{lr: lr, momentum: momentum}, nil
}

func (s *SGD) Step(params []*tensor.Tensor) error {
	if s.momentum > 0 && s.velocity == nil {
		s.velocity = make([][]float32, len(params))
		for i, p := range params {
			s.velocity[i] = make([]float32, p.NumElems)
		}
	}
	if s.velocity != nil && len(s.velocity) != len(params) {
		return fmt.Errorf("optimizer state tracks %d parameters, got %d", len(s.velocity), len(params))
	}

	for i, p := range params {
		data, grad, err := gradData(p)
		if err != nil {
			return fmt.Errorf("parameter %d: %v", i, err)
		}
		if grad == nil {
			continue
		}

		if s.momentum > 0 {
			v := s.velocity[i]
			for j := range data {
				v[j] = float32(s.momentum)*v[j] + grad[j]
				data[j] -= float32(s.lr) * v[j]
			}
		} else {
			for j := range data {
				data[j] -= float32(s.lr) * grad[j]
			}
		}
	}
	s.stepCount++
	return nil
}

func (s *SGD) ZeroGrad(params []*tensor.Tensor) { zeroGrad(params) }

func (s *SGD) GetStepCount() uint64 { return s.stepCount }

func (s *SGD) UpdateLearningRate(lr float64) { s.lr = lr }

func (s *SGD) GetLearningRate() float64 { return s.lr }

func (s *SGD) GetState() (*State, error) {
	state := &State{
		Type:      "SGD",
		StepCount: s.stepCount,
		Parameters: map[string]float64{
			"lr":       s.lr,
			"momentum": s.momentum,
		},
		Buffers: map[string][][]float32{},
	}
	if s.velocity != nil {
		state.Buffers["velocity"] = copyBuffers(s.velocity)
	}
	return state, nil
}

func (s *SGD) LoadState(state *State) error {
	if state.Type != "SGD" {
		return fmt.Errorf("cannot load %s state into SGD", state.Type)
	}
	s.stepCount = state.StepCount
	if lr, ok := state.Parameters["lr"]; ok {
		s.lr = lr
	}
	if momentum, ok := state.Parameters["momentum"]; ok {
		s.momentum = momentum
	}
	if velocity, ok := state.Buffers["velocity"]; ok {
		s.velocity = copyBuffers(velocity)
	} else {
		s.velocity = nil
	}
	return nil
}
