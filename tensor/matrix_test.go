package tensor

import (
	"math"
	"testing"
)

func TestMatMul(t *testing.T) {
	a := mustTensor(t, []int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := mustTensor(t, []int{3, 2}, []float32{7, 8, 9, 10, 11, 12})

	result, err := MatMul(a, b)
	if err != nil {
		t.Fatalf("MatMul failed: %v", err)
	}

	expected := []float32{58, 64, 139, 154}
	for i, v := range result.Data.([]float32) {
		if v != expected[i] {
			t.Errorf("MatMul result[%d] = %v, expected %v", i, v, expected[i])
		}
	}
}

func TestMatMulDimensionMismatch(t *testing.T) {
	a := mustTensor(t, []int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	b := mustTensor(t, []int{2, 2}, []float32{1, 2, 3, 4})

	if _, err := MatMul(a, b); err == nil {
		t.Error("expected inner dimension mismatch error")
	}
}

func TestTranspose(t *testing.T) {
	a := mustTensor(t, []int{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	result, err := Transpose(a)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}

	if result.Shape[0] != 3 || result.Shape[1] != 2 {
		t.Fatalf("transposed shape = %v, want [3 2]", result.Shape)
	}
	expected := []float32{1, 4, 2, 5, 3, 6}
	for i, v := range result.Data.([]float32) {
		if v != expected[i] {
			t.Errorf("Transpose result[%d] = %v, expected %v", i, v, expected[i])
		}
	}
}

func TestTransposeRequires2D(t *testing.T) {
	a := mustTensor(t, []int{4}, []float32{1, 2, 3, 4})
	if _, err := Transpose(a); err == nil {
		t.Error("expected error for 1-D tensor")
	}
}

func TestCdist(t *testing.T) {
	points := mustTensor(t, []int{3, 2}, []float32{
		0, 0,
		3, 4,
		0, 1,
	})

	dist, err := Cdist(points, points)
	if err != nil {
		t.Fatalf("Cdist failed: %v", err)
	}

	tests := []struct {
		row, col int
		expected float64
	}{
		{0, 0, 0},
		{0, 1, 5},
		{1, 0, 5},
		{0, 2, 1},
		{1, 2, math.Sqrt(9 + 9)},
	}

	for _, test := range tests {
		v, err := dist.At(test.row, test.col)
		if err != nil {
			t.Fatalf("At(%d,%d) failed: %v", test.row, test.col, err)
		}
		if math.Abs(float64(v)-test.expected) > 1e-5 {
			t.Errorf("dist[%d][%d] = %v, expected %v", test.row, test.col, v, test.expected)
		}
	}
}

func TestIndexRows(t *testing.T) {
	src := mustTensor(t, []int{3, 2}, []float32{1, 2, 3, 4, 5, 6})
	idx, _ := NewTensor([]int{3}, Int32, CPU, []int32{2, 0, 2})

	result, err := IndexRows(src, idx)
	if err != nil {
		t.Fatalf("IndexRows failed: %v", err)
	}

	expected := []float32{5, 6, 1, 2, 5, 6}
	for i, v := range result.Data.([]float32) {
		if v != expected[i] {
			t.Errorf("IndexRows result[%d] = %v, expected %v", i, v, expected[i])
		}
	}
}

func TestIndexRowsOutOfBounds(t *testing.T) {
	src := mustTensor(t, []int{2, 2}, []float32{1, 2, 3, 4})
	idx, _ := NewTensor([]int{1}, Int32, CPU, []int32{5})

	if _, err := IndexRows(src, idx); err == nil {
		t.Error("expected out-of-bounds error")
	}
}

func TestSplitLeading(t *testing.T) {
	stacked, err := NewTensor([]int{2, 2, 3}, Float32, CPU, []float32{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	})
	if err != nil {
		t.Fatalf("NewTensor failed: %v", err)
	}

	slices, err := SplitLeading(stacked)
	if err != nil {
		t.Fatalf("SplitLeading failed: %v", err)
	}

	if len(slices) != 2 {
		t.Fatalf("got %d slices, expected 2", len(slices))
	}
	for _, s := range slices {
		if s.Shape[0] != 2 || s.Shape[1] != 3 {
			t.Errorf("slice shape = %v, expected [2 3]", s.Shape)
		}
	}

	v, _ := slices[1].At(1, 2)
	if v != 12 {
		t.Errorf("slices[1][1][2] = %v, expected 12", v)
	}

	// Slices own their data
	slices[0].Data.([]float32)[0] = 99
	if stacked.Data.([]float32)[0] != 1 {
		t.Error("mutating a slice changed the stacked tensor")
	}
}

func TestSplitLeadingRequires3D(t *testing.T) {
	flat := mustTensor(t, []int{2, 2}, []float32{1, 2, 3, 4})
	if _, err := SplitLeading(flat); err == nil {
		t.Error("expected error for 2-D input")
	}
}

func TestRow(t *testing.T) {
	src := mustTensor(t, []int{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	row, err := Row(src, 1)
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	expected := []float32{4, 5, 6}
	for i, v := range row.Data.([]float32) {
		if v != expected[i] {
			t.Errorf("Row result[%d] = %v, expected %v", i, v, expected[i])
		}
	}
}
