package graph

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// NewTemporalGraph assembles a batch whose records carry a per-graph time
// attribute under the extra key "t". Connectivity comes from WithEdgeIndex
// when given; otherwise it is derived with the radius rule, which requires
// WithRadius. The number of time entries must match the number of position
// entries.
func NewTemporalGraph(x, pos Input, t Param, opts ...Option) (*Batch, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	resolvedPos, err := pos.resolve()
	if err != nil {
		return nil, err
	}
	if err := checkTimeConsistency(resolvedPos, t); err != nil {
		return nil, err
	}

	if cfg.edgeIndex.IsNone() {
		if !cfg.hasRadius {
			return nil, ErrMissingRadius
		}
		cfg.edgeIndex, err = buildPerGraphEdges(resolvedPos, func(points *tensor.Tensor) (*tensor.Tensor, error) {
			return radiusEdges(points, cfg.radius)
		})
		if err != nil {
			return nil, err
		}
	}

	params := make(map[string]Param, len(cfg.additionalParams)+1)
	for name, p := range cfg.additionalParams {
		params[name] = p
	}
	params["t"] = t
	cfg.additionalParams = params

	return build(x, resolvedPos, cfg)
}

// checkTimeConsistency validates that the times describe as many graphs as
// the positions do.
func checkTimeConsistency(pos Input, t Param) error {
	posLen := 1
	if pos.isList() {
		posLen = pos.listLen()
	}

	tLen := t.count()
	if tLen == 0 {
		return fmt.Errorf("%w: time parameter is required", ErrInvalidInput)
	}
	if tLen != posLen {
		return fmt.Errorf("%w: %d positions vs %d times", ErrShapeMismatch, posLen, tLen)
	}
	return nil
}
