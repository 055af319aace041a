package graph

import "errors"

var (
	// ErrShapeMismatch indicates per-graph inputs disagree about the number of
	// graphs (x vs pos lists, positions vs times, additional parameters).
	ErrShapeMismatch = errors.New("graph: inputs must describe the same number of graphs")

	// ErrInvalidInput indicates an input of an unsupported kind or shape
	// (missing node features or positions, malformed edge index).
	ErrInvalidInput = errors.New("graph: unsupported input")

	// ErrEdgeAttrLength indicates edge attributes inconsistent with the graph
	// count or the edge count.
	ErrEdgeAttrLength = errors.New("graph: edge attributes inconsistent with edges")

	// ErrEdgeIndexRange indicates an edge endpoint referencing a node index
	// outside the node set.
	ErrEdgeIndexRange = errors.New("graph: edge index endpoint out of range")

	// ErrKTooLarge indicates a k-nearest-neighbour request with k not smaller
	// than the number of points.
	ErrKTooLarge = errors.New("graph: k must be positive and smaller than the number of points")

	// ErrMissingRadius indicates a temporal graph built without an edge index
	// and without a connectivity radius.
	ErrMissingRadius = errors.New("graph: radius required when no edge index is given")
)
