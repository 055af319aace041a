package graph

import (
	"fmt"
	"sort"

	"github.com/tsawler/go-pinn/tensor"
)

// radiusEdges returns every ordered pair of points whose Euclidean distance is
// at most r, as a 2xE Int32 edge index. Self-pairs are included: the distance
// from a point to itself is 0, which is within any non-negative radius.
func radiusEdges(points *tensor.Tensor, r float64) (*tensor.Tensor, error) {
	if r < 0 {
		return nil, fmt.Errorf("%w: radius must be non-negative, got %g", ErrInvalidInput, r)
	}
	dist, err := tensor.Cdist(points, points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	n := points.Rows()
	var src, dst []int32
	data := dist.Data.([]float32)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if float64(data[i*n+j]) <= r {
				src = append(src, int32(i))
				dst = append(dst, int32(j))
			}
		}
	}
	return edgeIndexFromPairs(src, dst, points.Device)
}

// knnEdges returns the k-nearest-neighbour edge index of the points: for every
// point, edges to its k nearest neighbours excluding the point itself. The
// result is 2x(N*k) with sources repeated-interleaved per point. k must be
// positive and smaller than the number of points.
func knnEdges(points *tensor.Tensor, k int) (*tensor.Tensor, error) {
	n := points.Rows()
	if k <= 0 || k >= n {
		return nil, fmt.Errorf("%w: k=%d with %d points", ErrKTooLarge, k, n)
	}

	dist, err := tensor.Cdist(points, points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	data := dist.Data.([]float32)

	src := make([]int32, 0, n*k)
	dst := make([]int32, 0, n*k)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range order {
			order[j] = j
		}
		row := data[i*n : (i+1)*n]
		sort.SliceStable(order, func(a, b int) bool {
			return row[order[a]] < row[order[b]]
		})
		// The nearest match is the zero-distance self pair; keep the k after it.
		for _, j := range order[1 : k+1] {
			src = append(src, int32(i))
			dst = append(dst, int32(j))
		}
	}
	return edgeIndexFromPairs(src, dst, points.Device)
}

// toUndirected symmetrizes an edge index: every edge gains its reverse, and
// duplicate pairs are coalesced. Edges come out sorted by source then
// destination.
func toUndirected(edgeIndex *tensor.Tensor) (*tensor.Tensor, error) {
	cols := edgeIndex.Shape[1]
	data := edgeIndex.Data.([]int32)

	type pair struct{ s, d int32 }
	seen := make(map[pair]struct{}, 2*cols)
	pairs := make([]pair, 0, 2*cols)
	add := func(s, d int32) {
		p := pair{s, d}
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}
	for e := 0; e < cols; e++ {
		s, d := data[e], data[cols+e]
		add(s, d)
		add(d, s)
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].s != pairs[b].s {
			return pairs[a].s < pairs[b].s
		}
		return pairs[a].d < pairs[b].d
	})

	src := make([]int32, len(pairs))
	dst := make([]int32, len(pairs))
	for i, p := range pairs {
		src[i] = p.s
		dst[i] = p.d
	}
	return edgeIndexFromPairs(src, dst, edgeIndex.Device)
}

func edgeIndexFromPairs(src, dst []int32, device tensor.DeviceType) (*tensor.Tensor, error) {
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: no edges produced", ErrInvalidInput)
	}
	data := make([]int32, 0, 2*len(src))
	data = append(data, src...)
	data = append(data, dst...)
	return tensor.NewTensor([]int{2, len(src)}, tensor.Int32, device, data)
}

// buildPerGraphEdges runs an edge builder over resolved positions, producing a
// single edge index when positions are shared and a per-graph list otherwise.
func buildPerGraphEdges(pos Input, build func(points *tensor.Tensor) (*tensor.Tensor, error)) (Input, error) {
	resolved, err := pos.resolve()
	if err != nil {
		return Input{}, err
	}

	if !resolved.isList() {
		if resolved.single == nil {
			return Input{}, fmt.Errorf("%w: pos is required", ErrInvalidInput)
		}
		ei, err := build(resolved.single.Plain())
		if err != nil {
			return Input{}, err
		}
		return Single(ei), nil
	}

	edges := make([]*tensor.Tensor, resolved.listLen())
	for i, p := range resolved.list {
		ei, err := build(p.Plain())
		if err != nil {
			return Input{}, fmt.Errorf("graph %d: %w", i, err)
		}
		edges[i] = ei
	}
	return FromTensors(edges), nil
}
