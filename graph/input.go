package graph

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

type inputKind int

const (
	kindNone inputKind = iota
	kindSingle
	kindList
)

// Input is a tagged node-data container: either a single tensor shared by all
// graphs or one tensor per graph. A 3-D tensor passed to Single is treated as a
// stack of per-graph 2-D tensors and resolves to a list. The zero value means
// "not provided".
type Input struct {
	kind   inputKind
	single tensor.Value
	list   []tensor.Value
}

// Single wraps one tensor (or labeled tensor) shared by all graphs.
func Single(v tensor.Value) Input {
	return Input{kind: kindSingle, single: v}
}

// FromValues wraps one tensor (or labeled tensor) per graph.
func FromValues(vs []tensor.Value) Input {
	list := make([]tensor.Value, len(vs))
	copy(list, vs)
	return Input{kind: kindList, list: list}
}

// FromTensors wraps one plain tensor per graph.
func FromTensors(ts []*tensor.Tensor) Input {
	list := make([]tensor.Value, len(ts))
	for i, t := range ts {
		list[i] = t
	}
	return Input{kind: kindList, list: list}
}

// IsNone reports whether the input was not provided.
func (in Input) IsNone() bool {
	return in.kind == kindNone
}

// resolve classifies the input into its final tag. A single 3-D tensor is
// split along its leading axis into a per-graph list; everything else keeps
// its declared kind.
func (in Input) resolve() (Input, error) {
	if in.kind != kindSingle {
		return in, nil
	}
	if in.single == nil {
		return Input{}, fmt.Errorf("%w: nil tensor", ErrInvalidInput)
	}
	plain := in.single.Plain()
	if plain.Dims() != 3 {
		return in, nil
	}
	slices, err := tensor.SplitLeading(plain)
	if err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return FromTensors(slices), nil
}

func (in Input) isList() bool {
	return in.kind == kindList
}

func (in Input) listLen() int {
	return len(in.list)
}

// entries returns the input as a list of exactly n values, applying the
// broadcast rules: a single tensor is replicated n times, a list is used as
// given and must already have length n.
func (in Input) entries(n int) ([]tensor.Value, error) {
	switch in.kind {
	case kindSingle:
		out := make([]tensor.Value, n)
		for i := range out {
			out[i] = in.single
		}
		return out, nil
	case kindList:
		if len(in.list) != n {
			return nil, fmt.Errorf("%w: got %d entries, expected %d", ErrShapeMismatch, len(in.list), n)
		}
		return in.list, nil
	default:
		return nil, fmt.Errorf("%w: input not provided", ErrInvalidInput)
	}
}

// normalizeInputs resolves node features, positions and edge index to their
// final tags, derives the graph count, then broadcasts every input to one
// entry per graph.
//
// The graph count is the common list length when both x and pos are lists
// (lengths must agree), the list length when exactly one of them is, and 1
// when both are single tensors.
func normalizeInputs(x, pos, edgeIndex Input) (xs, poss []tensor.Value, eis []*tensor.Tensor, dataLen int, err error) {
	if x, err = x.resolve(); err != nil {
		return nil, nil, nil, 0, err
	}
	if pos, err = pos.resolve(); err != nil {
		return nil, nil, nil, 0, err
	}
	if edgeIndex, err = edgeIndex.resolve(); err != nil {
		return nil, nil, nil, 0, err
	}

	if x.IsNone() || pos.IsNone() {
		return nil, nil, nil, 0, fmt.Errorf("%w: x and pos are required", ErrInvalidInput)
	}
	if edgeIndex.IsNone() {
		return nil, nil, nil, 0, fmt.Errorf("%w: edge index is required", ErrInvalidInput)
	}

	switch {
	case x.isList() && pos.isList():
		if x.listLen() != pos.listLen() {
			return nil, nil, nil, 0, fmt.Errorf("%w: x has %d graphs, pos has %d",
				ErrShapeMismatch, x.listLen(), pos.listLen())
		}
		dataLen = x.listLen()
	case x.isList():
		dataLen = x.listLen()
	case pos.isList():
		dataLen = pos.listLen()
	default:
		dataLen = 1
	}

	if xs, err = x.entries(dataLen); err != nil {
		return nil, nil, nil, 0, err
	}
	if poss, err = pos.entries(dataLen); err != nil {
		return nil, nil, nil, 0, err
	}
	rawEdges, err := edgeIndex.entries(dataLen)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	eis = make([]*tensor.Tensor, dataLen)
	for i, e := range rawEdges {
		plain, err := validateEdgeIndex(e)
		if err != nil {
			return nil, nil, nil, 0, err
		}
		eis[i] = plain
	}
	return xs, poss, eis, dataLen, nil
}

// validateEdgeIndex checks the 2xE Int32 contract.
func validateEdgeIndex(v tensor.Value) (*tensor.Tensor, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil edge index", ErrInvalidInput)
	}
	plain := v.Plain()
	if plain.DType != tensor.Int32 {
		return nil, fmt.Errorf("%w: edge index must be Int32, got %s", ErrInvalidInput, plain.DType)
	}
	if plain.Dims() != 2 || plain.Shape[0] != 2 {
		return nil, fmt.Errorf("%w: edge index must have shape [2 E], got %v", ErrInvalidInput, plain.Shape)
	}
	return plain, nil
}
