// Package problem defines the data model a physics-informed solver consumes:
// sampling domains, governing equations, named conditions and (optionally)
// learnable unknown parameters with admissible ranges.
package problem

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// SampleMode selects the point-sampling strategy of a domain.
type SampleMode int

const (
	SampleRandom SampleMode = iota
	SampleGrid
)

func (m SampleMode) String() string {
	switch m {
	case SampleRandom:
		return "Random"
	case SampleGrid:
		return "Grid"
	default:
		return "Unknown"
	}
}

// Domain samples points from a geometric region. The result is one row per
// point with one column per requested variable.
type Domain interface {
	Sample(n int, mode SampleMode, variables []string) (*tensor.Tensor, error)
}

// Equation evaluates the residual of a governing equation at sample points
// given the model output there. A zero residual means the physics is
// satisfied.
type Equation interface {
	Residual(samples, modelOutput *tensor.Tensor) (*tensor.Tensor, error)
}

// ParametricEquation is an equation whose residual additionally depends on
// learnable physical parameters. Inverse-problem solvers call
// ResidualWithParams; everything else uses the plain Residual form.
type ParametricEquation interface {
	Equation
	ResidualWithParams(samples, modelOutput *tensor.Tensor, params map[string]*tensor.Tensor) (*tensor.Tensor, error)
}

// EquationFunc adapts a function to the Equation interface.
type EquationFunc func(samples, modelOutput *tensor.Tensor) (*tensor.Tensor, error)

func (f EquationFunc) Residual(samples, modelOutput *tensor.Tensor) (*tensor.Tensor, error) {
	return f(samples, modelOutput)
}

// ParametricEquationFunc adapts a function to the ParametricEquation
// interface. The plain Residual form evaluates it with nil parameters.
type ParametricEquationFunc func(samples, modelOutput *tensor.Tensor, params map[string]*tensor.Tensor) (*tensor.Tensor, error)

func (f ParametricEquationFunc) Residual(samples, modelOutput *tensor.Tensor) (*tensor.Tensor, error) {
	return f(samples, modelOutput, nil)
}

func (f ParametricEquationFunc) ResidualWithParams(samples, modelOutput *tensor.Tensor, params map[string]*tensor.Tensor) (*tensor.Tensor, error) {
	return f(samples, modelOutput, params)
}

// Condition associates a named region of the problem with either a governing
// equation (physics condition) or supervised target values (data condition).
type Condition struct {
	Name     string
	Domain   Domain
	Equation Equation

	// Supervised data, set for data conditions.
	InputPoints  *tensor.Tensor
	OutputPoints *tensor.Tensor
}

// Problem is the minimal surface a solver needs: the named conditions.
type Problem interface {
	Conditions() map[string]*Condition
}

// InverseProblem extends Problem with learnable physical parameters clamped to
// admissible ranges during training.
type InverseProblem interface {
	Problem

	// UnknownParameters returns the learnable parameter tensors, mutated in
	// place by optimizers and by range clamping.
	UnknownParameters() map[string]*tensor.Tensor

	// ParameterRange returns the admissible [low, high] range of a parameter.
	ParameterRange(name string) (low, high float64, err error)
}

// Definition is a concrete forward problem: a plain bag of named conditions.
type Definition struct {
	conditions map[string]*Condition
}

// NewDefinition builds a forward problem from its conditions.
func NewDefinition(conditions []*Condition) (*Definition, error) {
	byName := make(map[string]*Condition, len(conditions))
	for _, c := range conditions {
		if c.Name == "" {
			return nil, fmt.Errorf("condition with empty name")
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate condition %q", c.Name)
		}
		byName[c.Name] = c
	}
	return &Definition{conditions: byName}, nil
}

func (d *Definition) Conditions() map[string]*Condition {
	return d.conditions
}
