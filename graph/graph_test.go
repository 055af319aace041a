package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-pinn/tensor"
)

func floatTensor(t *testing.T, shape []int, data []float32) *tensor.Tensor {
	t.Helper()
	out, err := tensor.NewTensor(shape, tensor.Float32, tensor.CPU, data)
	require.NoError(t, err)
	return out
}

func intTensor(t *testing.T, shape []int, data []int32) *tensor.Tensor {
	t.Helper()
	out, err := tensor.NewTensor(shape, tensor.Int32, tensor.CPU, data)
	require.NoError(t, err)
	return out
}

// selfLoop builds the minimal valid edge index for an n-node graph.
func selfLoops(t *testing.T, n int) *tensor.Tensor {
	t.Helper()
	data := make([]int32, 2*n)
	for i := 0; i < n; i++ {
		data[i] = int32(i)
		data[n+i] = int32(i)
	}
	return intTensor(t, []int{2, n}, data)
}

func TestNewGraphBothLists(t *testing.T) {
	xs := []*tensor.Tensor{
		floatTensor(t, []int{2, 1}, []float32{1, 2}),
		floatTensor(t, []int{2, 1}, []float32{3, 4}),
		floatTensor(t, []int{2, 1}, []float32{5, 6}),
	}
	poss := []*tensor.Tensor{
		floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0}),
		floatTensor(t, []int{2, 2}, []float32{0, 1, 1, 1}),
		floatTensor(t, []int{2, 2}, []float32{0, 2, 1, 2}),
	}

	batch, err := NewGraph(FromTensors(xs), FromTensors(poss), Single(selfLoops(t, 2)))
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Len())

	for i, record := range batch.Records() {
		assert.Same(t, xs[i], record.X)
		assert.Same(t, poss[i], record.Pos)
		assert.Nil(t, record.EdgeAttr)
		assert.Empty(t, record.Extras)
	}
}

func TestNewGraphListLengthMismatch(t *testing.T) {
	xs := []*tensor.Tensor{floatTensor(t, []int{2, 1}, []float32{1, 2})}
	poss := []*tensor.Tensor{
		floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0}),
		floatTensor(t, []int{2, 2}, []float32{0, 1, 1, 1}),
	}

	_, err := NewGraph(FromTensors(xs), FromTensors(poss), Single(selfLoops(t, 2)))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewGraphSingleXListPos(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{7, 8})
	poss := []*tensor.Tensor{
		floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0}),
		floatTensor(t, []int{2, 2}, []float32{0, 1, 1, 1}),
		floatTensor(t, []int{2, 2}, []float32{0, 2, 1, 2}),
		floatTensor(t, []int{2, 2}, []float32{0, 3, 1, 3}),
	}

	batch, err := NewGraph(Single(x), FromTensors(poss), Single(selfLoops(t, 2)))
	require.NoError(t, err)
	require.Equal(t, 4, batch.Len())

	for _, record := range batch.Records() {
		assert.Same(t, x, record.X, "every record shares the same node features")
	}
}

func TestNewGraphListXSinglePos(t *testing.T) {
	xs := []*tensor.Tensor{
		floatTensor(t, []int{2, 1}, []float32{1, 2}),
		floatTensor(t, []int{2, 1}, []float32{3, 4}),
	}
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	edges := selfLoops(t, 2)

	batch, err := NewGraph(FromTensors(xs), Single(pos), Single(edges))
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	for _, record := range batch.Records() {
		assert.Same(t, pos, record.Pos)
		assert.Same(t, edges, record.EdgeIndex)
	}
}

func TestNewGraphBothSingle(t *testing.T) {
	x := floatTensor(t, []int{3, 2}, []float32{1, 2, 3, 4, 5, 6})
	pos := floatTensor(t, []int{3, 2}, []float32{0, 0, 1, 0, 0, 1})

	batch, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 3)))
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Len())
}

func TestNewGraphMissingInputs(t *testing.T) {
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	_, err := NewGraph(Input{}, Single(pos), Single(selfLoops(t, 2)))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewGraph(Single(pos), Single(pos), Input{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewGraphStackedInputsSplit(t *testing.T) {
	// 3-D stacks split along the leading axis into one graph each.
	x, err := tensor.NewTensor([]int{2, 2, 1}, tensor.Float32, tensor.CPU, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	pos, err := tensor.NewTensor([]int{2, 2, 2}, tensor.Float32, tensor.CPU, []float32{
		0, 0, 1, 0,
		0, 1, 1, 1,
	})
	require.NoError(t, err)

	batch, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)))
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	first := batch.Records()[0]
	v, err := first.X.At(1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-6)
}

func TestNewGraphNodeCountMismatch(t *testing.T) {
	x := floatTensor(t, []int{3, 1}, []float32{1, 2, 3})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	_, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewGraphEdgeEndpointOutOfRange(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	edges := intTensor(t, []int{2, 1}, []int32{0, 5})

	_, err := NewGraph(Single(x), Single(pos), Single(edges))
	assert.ErrorIs(t, err, ErrEdgeIndexRange)
}

func TestNewGraphRejectsBadEdgeIndex(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	// Wrong dtype
	badType := floatTensor(t, []int{2, 1}, []float32{0, 1})
	_, err := NewGraph(Single(x), Single(pos), Single(badType))
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Wrong leading dimension
	badShape := intTensor(t, []int{3, 1}, []int32{0, 1, 0})
	_, err = NewGraph(Single(x), Single(pos), Single(badShape))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewGraphUnwrapsLabeledFeatures(t *testing.T) {
	plain := floatTensor(t, []int{2, 2}, []float32{1, 2, 3, 4})
	labeled, err := tensor.NewLabelTensor(plain, []string{"u", "v"})
	require.NoError(t, err)
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	batch, err := NewGraph(Single(labeled), Single(pos), Single(selfLoops(t, 2)))
	require.NoError(t, err)

	record := batch.Records()[0]
	assert.Same(t, plain, record.X, "labels are unwrapped, not preserved")
}

func TestNewGraphUndirected(t *testing.T) {
	x := floatTensor(t, []int{3, 1}, []float32{1, 2, 3})
	pos := floatTensor(t, []int{3, 2}, []float32{0, 0, 1, 0, 0, 1})
	edges := intTensor(t, []int{2, 2}, []int32{0, 1, 1, 2}) // 0->1, 1->2

	batch, err := NewGraph(Single(x), Single(pos), Single(edges), WithUndirected())
	require.NoError(t, err)

	record := batch.Records()[0]
	require.Equal(t, 4, record.NumEdges())

	got := make(map[[2]int32]bool)
	data := record.EdgeIndex.Data.([]int32)
	for e := 0; e < 4; e++ {
		got[[2]int32{data[e], data[4+e]}] = true
	}
	for _, want := range [][2]int32{{0, 1}, {1, 0}, {1, 2}, {2, 1}} {
		assert.True(t, got[want], "missing edge %v", want)
	}
}

func TestBatchRecordsCopy(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	batch, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)))
	require.NoError(t, err)

	records := batch.Records()
	records[0] = nil
	assert.NotNil(t, batch.Records()[0], "mutating the returned slice must not affect the batch")
}
