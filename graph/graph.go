// Package graph turns heterogeneous batches of node features, positions and
// connectivity into normalized per-graph records for consumption by graph
// neural networks. Inputs may be shared across graphs or given per graph; the
// constructors resolve every combination to one record per graph or fail.
package graph

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// Record is one graph instance: node features X (NxF), node positions Pos
// (NxD), edge index (2xE, Int32) and optional per-edge attributes (ExA).
// EdgeAttr is nil when no edge attributes were provided or built; consumers
// must treat nil and empty identically. Extras holds the per-graph slices of
// the additional parameters.
type Record struct {
	X         *tensor.Tensor
	Pos       *tensor.Tensor
	EdgeIndex *tensor.Tensor
	EdgeAttr  *tensor.Tensor
	Extras    map[string]*tensor.Tensor
}

// NumNodes returns the node count of the record.
func (r *Record) NumNodes() int {
	return r.X.Rows()
}

// NumEdges returns the edge count of the record.
func (r *Record) NumEdges() int {
	return r.EdgeIndex.Shape[1]
}

// Batch is an ordered sequence of graph records sharing the same additional
// parameter keys. It is assembled once at construction and not mutated after.
type Batch struct {
	records []*Record
}

// Records returns the graph records in construction order.
func (b *Batch) Records() []*Record {
	out := make([]*Record, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of graphs in the batch.
func (b *Batch) Len() int {
	return len(b.records)
}

type config struct {
	edgeIndex        Input
	edgeAttr         Input
	buildEdgeAttr    bool
	undirected       bool
	customEdgeAttr   EdgeAttrFunc
	additionalParams map[string]Param
	radius           float64
	hasRadius        bool
}

// Option configures graph construction.
type Option func(*config)

// WithEdgeAttr supplies explicit edge attributes, either one tensor shared by
// all graphs or one per graph. Takes precedence over WithBuildEdgeAttr.
func WithEdgeAttr(attr Input) Option {
	return func(c *config) { c.edgeAttr = attr }
}

// WithBuildEdgeAttr requests computing edge attributes with the distance
// default (or the custom builder, when set).
func WithBuildEdgeAttr() Option {
	return func(c *config) { c.buildEdgeAttr = true }
}

// WithUndirected symmetrizes every edge index before assembly.
func WithUndirected() Option {
	return func(c *config) { c.undirected = true }
}

// WithCustomEdgeAttr overrides the default distance-based edge-attribute
// builder.
func WithCustomEdgeAttr(fn EdgeAttrFunc) Option {
	return func(c *config) { c.customEdgeAttr = fn }
}

// WithAdditionalParams attaches named per-graph attributes, expanded to the
// graph count according to their rank.
func WithAdditionalParams(params map[string]Param) Option {
	return func(c *config) { c.additionalParams = params }
}

// WithEdgeIndex supplies explicit connectivity to constructors that otherwise
// derive it (NewTemporalGraph).
func WithEdgeIndex(edgeIndex Input) Option {
	return func(c *config) { c.edgeIndex = edgeIndex }
}

// WithRadius sets the connectivity radius used when a temporal graph has to
// derive its own edge index.
func WithRadius(r float64) Option {
	return func(c *config) {
		c.radius = r
		c.hasRadius = true
	}
}

// NewGraph normalizes the inputs and assembles one record per graph.
//
// x, pos and edgeIndex may each be a single tensor (shared across graphs, or a
// 3-D stack split into one slice per graph) or a per-graph list. The graph
// count is derived from the list-valued inputs; single tensors are broadcast
// to it. Construction is all-or-nothing: any inconsistency fails before a
// batch is produced.
func NewGraph(x, pos, edgeIndex Input, opts ...Option) (*Batch, error) {
	cfg := config{edgeIndex: edgeIndex}
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(x, pos, cfg)
}

// NewRadiusGraph derives connectivity by linking every ordered pair of points
// within Euclidean distance r (self-loops included), then assembles the batch
// through the same normalization as NewGraph.
func NewRadiusGraph(x, pos Input, r float64, opts ...Option) (*Batch, error) {
	edgeIndex, err := buildPerGraphEdges(pos, func(points *tensor.Tensor) (*tensor.Tensor, error) {
		return radiusEdges(points, r)
	})
	if err != nil {
		return nil, err
	}
	return NewGraph(x, pos, edgeIndex, opts...)
}

// NewKNNGraph derives connectivity by linking every point to its k nearest
// neighbours (self excluded), then assembles the batch through the same
// normalization as NewGraph. Fails with ErrKTooLarge unless 0 < k < N.
func NewKNNGraph(x, pos Input, k int, opts ...Option) (*Batch, error) {
	edgeIndex, err := buildPerGraphEdges(pos, func(points *tensor.Tensor) (*tensor.Tensor, error) {
		return knnEdges(points, k)
	})
	if err != nil {
		return nil, err
	}
	return NewGraph(x, pos, edgeIndex, opts...)
}

func build(x, pos Input, cfg config) (*Batch, error) {
	xs, poss, eis, dataLen, err := normalizeInputs(x, pos, cfg.edgeIndex)
	if err != nil {
		return nil, err
	}

	params, err := expandParams(cfg.additionalParams, dataLen)
	if err != nil {
		return nil, err
	}

	if cfg.undirected {
		undirectedEdges := make([]*tensor.Tensor, dataLen)
		for i, ei := range eis {
			undirectedEdges[i], err = toUndirected(ei)
			if err != nil {
				return nil, err
			}
		}
		eis = undirectedEdges
	}

	edgeAttrs, err := resolveEdgeAttr(cfg.edgeAttr, cfg.buildEdgeAttr, cfg.customEdgeAttr,
		dataLen, xs, poss, eis)
	if err != nil {
		return nil, err
	}

	return assemble(xs, poss, eis, edgeAttrs, params)
}

// assemble zips the normalized per-graph lists into records, validating the
// record invariants along the way. Labeled feature tensors are unwrapped to
// their plain views; labels are not preserved in records.
func assemble(xs, poss []tensor.Value, eis []*tensor.Tensor, edgeAttrs []*tensor.Tensor,
	params map[string][]*tensor.Tensor) (*Batch, error) {

	records := make([]*Record, len(xs))
	for i := range xs {
		x := xs[i].Plain()
		pos := poss[i].Plain()
		ei := eis[i]

		if x.Dims() != 2 || pos.Dims() != 2 {
			return nil, fmt.Errorf("%w: graph %d: x and pos must be 2-D, got %v and %v",
				ErrInvalidInput, i, x.Shape, pos.Shape)
		}
		if x.Rows() != pos.Rows() {
			return nil, fmt.Errorf("%w: graph %d: %d feature rows vs %d position rows",
				ErrShapeMismatch, i, x.Rows(), pos.Rows())
		}
		if err := checkEndpoints(ei, x.Rows()); err != nil {
			return nil, fmt.Errorf("graph %d: %w", i, err)
		}

		record := &Record{
			X:         x,
			Pos:       pos,
			EdgeIndex: ei,
			Extras:    make(map[string]*tensor.Tensor, len(params)),
		}

		if edgeAttrs != nil {
			attr := edgeAttrs[i]
			if attr.Rows() != ei.Shape[1] {
				return nil, fmt.Errorf("%w: graph %d: %d attribute rows for %d edges",
					ErrEdgeAttrLength, i, attr.Rows(), ei.Shape[1])
			}
			record.EdgeAttr = attr
		}

		for name, values := range params {
			record.Extras[name] = values[i]
		}
		records[i] = record
	}
	return &Batch{records: records}, nil
}

func checkEndpoints(edgeIndex *tensor.Tensor, numNodes int) error {
	data := edgeIndex.Data.([]int32)
	for _, v := range data {
		if v < 0 || int(v) >= numNodes {
			return fmt.Errorf("%w: endpoint %d with %d nodes", ErrEdgeIndexRange, v, numNodes)
		}
	}
	return nil
}
