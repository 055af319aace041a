package problem

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// InverseDefinition is a concrete inverse problem: named conditions plus
// learnable physical parameters constrained to a parameter domain.
type InverseDefinition struct {
	*Definition
	parameters  map[string]*tensor.Tensor
	paramDomain *CartesianDomain
}

// NewInverseDefinition builds an inverse problem. Every parameter must have a
// range in paramDomain; each parameter tensor is marked as requiring
// gradients so optimizers treat it as learnable.
func NewInverseDefinition(conditions []*Condition, parameters map[string]*tensor.Tensor,
	paramDomain *CartesianDomain) (*InverseDefinition, error) {

	base, err := NewDefinition(conditions)
	if err != nil {
		return nil, err
	}
	if len(parameters) == 0 {
		return nil, fmt.Errorf("inverse problem requires at least one unknown parameter")
	}
	if paramDomain == nil {
		return nil, fmt.Errorf("inverse problem requires a parameter domain")
	}
	for name, p := range parameters {
		if _, _, err := paramDomain.Range(name); err != nil {
			return nil, fmt.Errorf("parameter %q has no declared range: %v", name, err)
		}
		p.SetRequiresGrad(true)
	}

	return &InverseDefinition{
		Definition:  base,
		parameters:  parameters,
		paramDomain: paramDomain,
	}, nil
}

func (d *InverseDefinition) UnknownParameters() map[string]*tensor.Tensor {
	return d.parameters
}

func (d *InverseDefinition) ParameterRange(name string) (low, high float64, err error) {
	return d.paramDomain.Range(name)
}
