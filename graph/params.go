package graph

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

type paramKind int

const (
	paramNone paramKind = iota
	paramTensor
	paramList
)

// Param is a tagged additional-parameter value: either one tensor (broadcast
// across graphs according to its rank) or an explicit per-graph list.
type Param struct {
	kind   paramKind
	single *tensor.Tensor
	list   []*tensor.Tensor
}

// ParamTensor wraps a tensor-valued additional parameter. How it is expanded
// depends on its rank: 3-D splits into one slice per graph, 2-D is shared by
// every graph, 1-D becomes per-graph scalars when its length equals the graph
// count and a shared vector otherwise.
func ParamTensor(t *tensor.Tensor) Param {
	return Param{kind: paramTensor, single: t}
}

// ParamList wraps an explicit per-graph list of tensors.
func ParamList(ts []*tensor.Tensor) Param {
	list := make([]*tensor.Tensor, len(ts))
	copy(list, ts)
	return Param{kind: paramList, list: list}
}

// count reports how many per-graph entries the parameter naturally carries:
// the list length for lists, the element count for 1-D tensors, 1 otherwise.
func (p Param) count() int {
	switch p.kind {
	case paramList:
		return len(p.list)
	case paramTensor:
		if p.single != nil && p.single.Dims() == 1 {
			return p.single.NumElems
		}
		return 1
	default:
		return 0
	}
}

// expandParams normalizes every additional parameter to a list with exactly
// one tensor per graph.
func expandParams(params map[string]Param, dataLen int) (map[string][]*tensor.Tensor, error) {
	expanded := make(map[string][]*tensor.Tensor, len(params))
	for name, p := range params {
		values, err := p.expand(dataLen)
		if err != nil {
			return nil, fmt.Errorf("additional parameter %q: %w", name, err)
		}
		expanded[name] = values
	}
	return expanded, nil
}

func (p Param) expand(dataLen int) ([]*tensor.Tensor, error) {
	switch p.kind {
	case paramList:
		if len(p.list) != dataLen {
			return nil, fmt.Errorf("%w: got %d entries, expected %d", ErrShapeMismatch, len(p.list), dataLen)
		}
		return p.list, nil

	case paramTensor:
		if p.single == nil {
			return nil, fmt.Errorf("%w: nil parameter tensor", ErrInvalidInput)
		}
		switch p.single.Dims() {
		case 3:
			slices, err := tensor.SplitLeading(p.single)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			if len(slices) != dataLen {
				return nil, fmt.Errorf("%w: stacked parameter has %d slices, expected %d",
					ErrShapeMismatch, len(slices), dataLen)
			}
			return slices, nil
		case 2:
			// Shared across all graphs.
			return replicate(p.single, dataLen), nil
		case 1:
			if p.single.NumElems == dataLen {
				return splitScalars(p.single)
			}
			// Shared per-graph vector.
			return replicate(p.single, dataLen), nil
		default:
			return nil, fmt.Errorf("%w: parameter tensors must be 1-D, 2-D or 3-D, got %d dims",
				ErrInvalidInput, p.single.Dims())
		}

	default:
		return nil, fmt.Errorf("%w: parameter value not provided", ErrInvalidInput)
	}
}

func replicate(t *tensor.Tensor, n int) []*tensor.Tensor {
	out := make([]*tensor.Tensor, n)
	for i := range out {
		out[i] = t
	}
	return out
}

// splitScalars turns a 1-D tensor with one element per graph into one
// 1-element tensor per graph.
func splitScalars(t *tensor.Tensor) ([]*tensor.Tensor, error) {
	out := make([]*tensor.Tensor, t.NumElems)
	for i := 0; i < t.NumElems; i++ {
		var (
			scalar *tensor.Tensor
			err    error
		)
		switch t.DType {
		case tensor.Float32:
			v := t.Data.([]float32)[i]
			scalar, err = tensor.NewTensor([]int{1}, tensor.Float32, t.Device, []float32{v})
		case tensor.Int32:
			v := t.Data.([]int32)[i]
			scalar, err = tensor.NewTensor([]int{1}, tensor.Int32, t.Device, []int32{v})
		default:
			err = fmt.Errorf("unsupported dtype %s", t.DType)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		out[i] = scalar
	}
	return out, nil
}
