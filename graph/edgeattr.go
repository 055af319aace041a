package graph

import (
	"fmt"
	"log"

	"github.com/tsawler/go-pinn/tensor"
)

// EdgeAttrFunc builds the edge-attribute tensor for one graph from its node
// features, node positions and edge index. The result must have one row per
// edge.
type EdgeAttrFunc func(x, pos, edgeIndex *tensor.Tensor) (*tensor.Tensor, error)

// BuildDistanceEdgeAttr is the default edge-attribute builder: the elementwise
// absolute difference between the positions of each edge's source and
// destination nodes.
func BuildDistanceEdgeAttr(x, pos, edgeIndex *tensor.Tensor) (*tensor.Tensor, error) {
	src, err := tensor.Row(edgeIndex, 0)
	if err != nil {
		return nil, err
	}
	dst, err := tensor.Row(edgeIndex, 1)
	if err != nil {
		return nil, err
	}

	srcPos, err := tensor.IndexRows(pos, src)
	if err != nil {
		return nil, err
	}
	dstPos, err := tensor.IndexRows(pos, dst)
	if err != nil {
		return nil, err
	}

	diff, err := tensor.Sub(srcPos, dstPos)
	if err != nil {
		return nil, err
	}
	return tensor.Abs(diff)
}

// resolveEdgeAttr resolves the per-graph edge-attribute list. Provided
// attributes win over the build flag; building uses the custom function when
// one was given and the distance default otherwise. When neither is requested
// the result is nil and records are assembled without edge attributes.
func resolveEdgeAttr(provided Input, build bool, custom EdgeAttrFunc, dataLen int,
	xs, poss []tensor.Value, eis []*tensor.Tensor) ([]*tensor.Tensor, error) {

	if !provided.IsNone() {
		if build {
			log.Printf("graph: edge_attr provided, build flag ignored")
		}
		resolved, err := provided.resolve()
		if err != nil {
			return nil, err
		}
		if resolved.isList() && resolved.listLen() != dataLen {
			return nil, fmt.Errorf("%w: got %d edge attribute entries for %d graphs",
				ErrEdgeAttrLength, resolved.listLen(), dataLen)
		}
		entries, err := resolved.entries(dataLen)
		if err != nil {
			return nil, err
		}
		out := make([]*tensor.Tensor, dataLen)
		for i, e := range entries {
			if e == nil {
				return nil, fmt.Errorf("%w: nil edge attribute", ErrInvalidInput)
			}
			out[i] = e.Plain()
		}
		return out, nil
	}

	if !build {
		return nil, nil
	}

	builder := custom
	if builder == nil {
		builder = BuildDistanceEdgeAttr
	}

	out := make([]*tensor.Tensor, dataLen)
	for i := 0; i < dataLen; i++ {
		attr, err := builder(xs[i].Plain(), poss[i].Plain(), eis[i])
		if err != nil {
			return nil, fmt.Errorf("building edge attributes for graph %d: %v", i, err)
		}
		out[i] = attr
	}
	return out, nil
}
