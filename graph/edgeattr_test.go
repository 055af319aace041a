package graph

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-pinn/tensor"
)

func TestBuildDistanceEdgeAttr(t *testing.T) {
	x := floatTensor(t, []int{3, 1}, []float32{1, 2, 3})
	pos := floatTensor(t, []int{3, 2}, []float32{
		0, 0,
		3, 4,
		1, -1,
	})
	edges := intTensor(t, []int{2, 2}, []int32{0, 1, 1, 2}) // 0->1, 1->2

	batch, err := NewGraph(Single(x), Single(pos), Single(edges), WithBuildEdgeAttr())
	require.NoError(t, err)

	attr := batch.Records()[0].EdgeAttr
	require.NotNil(t, attr)
	require.Equal(t, []int{2, 2}, attr.Shape)

	// |pos[0]-pos[1]| = (3,4), |pos[1]-pos[2]| = (2,5)
	expected := [][]float32{{3, 4}, {2, 5}}
	for e, row := range expected {
		for d, want := range row {
			got, err := attr.At(e, d)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-6, "edge %d dim %d", e, d)
		}
	}
}

func TestProvidedEdgeAttrWinsOverBuildFlag(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	provided := floatTensor(t, []int{2, 1}, []float32{7, 9})

	batch, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)),
		WithEdgeAttr(Single(provided)), WithBuildEdgeAttr())
	require.NoError(t, err)

	assert.Same(t, provided, batch.Records()[0].EdgeAttr, "provided edge_attr takes precedence")
}

func TestProvidedEdgeAttrWarnsWhenBuildRequested(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	provided := floatTensor(t, []int{2, 1}, []float32{7, 9})

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	_, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)),
		WithEdgeAttr(Single(provided)), WithBuildEdgeAttr())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "build flag ignored")

	buf.Reset()
	_, err = NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)),
		WithEdgeAttr(Single(provided)))
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "no warning without the build flag")
}

func TestProvidedEdgeAttrListLengthChecked(t *testing.T) {
	xs := []*tensor.Tensor{
		floatTensor(t, []int{2, 1}, []float32{1, 2}),
		floatTensor(t, []int{2, 1}, []float32{3, 4}),
	}
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	attrs := []*tensor.Tensor{floatTensor(t, []int{2, 1}, []float32{7, 9})}

	_, err := NewGraph(FromTensors(xs), Single(pos), Single(selfLoops(t, 2)),
		WithEdgeAttr(FromTensors(attrs)))
	assert.ErrorIs(t, err, ErrEdgeAttrLength)
}

func TestProvidedEdgeAttrReplicatedAcrossGraphs(t *testing.T) {
	xs := []*tensor.Tensor{
		floatTensor(t, []int{2, 1}, []float32{1, 2}),
		floatTensor(t, []int{2, 1}, []float32{3, 4}),
	}
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	provided := floatTensor(t, []int{2, 1}, []float32{7, 9})

	batch, err := NewGraph(FromTensors(xs), Single(pos), Single(selfLoops(t, 2)),
		WithEdgeAttr(Single(provided)))
	require.NoError(t, err)

	for _, record := range batch.Records() {
		assert.Same(t, provided, record.EdgeAttr)
	}
}

func TestEdgeAttrRowCountValidated(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})
	wrong := floatTensor(t, []int{5, 1}, []float32{1, 2, 3, 4, 5})

	_, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)),
		WithEdgeAttr(Single(wrong)))
	assert.ErrorIs(t, err, ErrEdgeAttrLength)
}

func TestCustomEdgeAttrBuilder(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	constant := func(x, pos, edgeIndex *tensor.Tensor) (*tensor.Tensor, error) {
		return tensor.Ones([]int{edgeIndex.Shape[1], 1}, tensor.Float32, tensor.CPU)
	}

	batch, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)),
		WithBuildEdgeAttr(), WithCustomEdgeAttr(constant))
	require.NoError(t, err)

	attr := batch.Records()[0].EdgeAttr
	require.NotNil(t, attr)
	v, err := attr.At(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-6)
}

func TestNoEdgeAttrWhenNotRequested(t *testing.T) {
	x := floatTensor(t, []int{2, 1}, []float32{1, 2})
	pos := floatTensor(t, []int{2, 2}, []float32{0, 0, 1, 0})

	batch, err := NewGraph(Single(x), Single(pos), Single(selfLoops(t, 2)))
	require.NoError(t, err)
	assert.Nil(t, batch.Records()[0].EdgeAttr)
}
