package tensor

import (
	"fmt"
	"math"
)

// MatMul computes the matrix product of two 2-D Float32 tensors.
func MatMul(t1, t2 *Tensor) (*Tensor, error) {
	if err := checkCompatibility(t1, t2); err != nil {
		return nil, err
	}
	if t1.DType != Float32 {
		return nil, fmt.Errorf("unsupported dtype for MatMul: %s", t1.DType)
	}
	if len(t1.Shape) != 2 || len(t2.Shape) != 2 {
		return nil, fmt.Errorf("MatMul requires 2-D tensors, got %v and %v", t1.Shape, t2.Shape)
	}
	if t1.Shape[1] != t2.Shape[0] {
		return nil, fmt.Errorf("inner dimensions must match: %v vs %v", t1.Shape, t2.Shape)
	}

	m, k, n := t1.Shape[0], t1.Shape[1], t2.Shape[1]
	result, err := Zeros([]int{m, n}, Float32, t1.Device)
	if err != nil {
		return nil, err
	}

	a := t1.Data.([]float32)
	b := t2.Data.([]float32)
	out := result.Data.([]float32)

	for i := 0; i < m; i++ {
		for l := 0; l < k; l++ {
			ail := a[i*k+l]
			if ail == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out[i*n+j] += ail * b[l*n+j]
			}
		}
	}
	return result, nil
}

// Cdist computes the pairwise Euclidean distance matrix between the rows of
// two 2-D Float32 tensors. The result has shape [rows(t1), rows(t2)].
func Cdist(t1, t2 *Tensor) (*Tensor, error) {
	if err := checkCompatibility(t1, t2); err != nil {
		return nil, err
	}
	if t1.DType != Float32 {
		return nil, fmt.Errorf("unsupported dtype for Cdist: %s", t1.DType)
	}
	if len(t1.Shape) != 2 || len(t2.Shape) != 2 {
		return nil, fmt.Errorf("Cdist requires 2-D tensors, got %v and %v", t1.Shape, t2.Shape)
	}
	if t1.Shape[1] != t2.Shape[1] {
		return nil, fmt.Errorf("point dimensions must match: %v vs %v", t1.Shape, t2.Shape)
	}

	n1, n2, dims := t1.Shape[0], t2.Shape[0], t1.Shape[1]
	result, err := Zeros([]int{n1, n2}, Float32, t1.Device)
	if err != nil {
		return nil, err
	}

	a := t1.Data.([]float32)
	b := t2.Data.([]float32)
	out := result.Data.([]float32)

	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			sum := float64(0)
			for d := 0; d < dims; d++ {
				diff := float64(a[i*dims+d] - b[j*dims+d])
				sum += diff * diff
			}
			out[i*n2+j] = float32(math.Sqrt(sum))
		}
	}
	return result, nil
}

// IndexRows gathers rows of a 2-D tensor by the values of a 1-D Int32 index
// tensor. The result has one row per index, in index order.
func IndexRows(t *Tensor, indices *Tensor) (*Tensor, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("IndexRows requires a 2-D tensor, got %v", t.Shape)
	}
	if indices.DType != Int32 || len(indices.Shape) != 1 {
		return nil, fmt.Errorf("IndexRows requires a 1-D Int32 index tensor, got %s %v",
			indices.DType, indices.Shape)
	}

	rows, cols := t.Shape[0], t.Shape[1]
	idx := indices.Data.([]int32)

	result, err := Zeros([]int{len(idx), cols}, t.DType, t.Device)
	if err != nil {
		return nil, err
	}

	switch t.DType {
	case Float32:
		src := t.Data.([]float32)
		dst := result.Data.([]float32)
		for i, r := range idx {
			if r < 0 || int(r) >= rows {
				return nil, fmt.Errorf("row index %d out of bounds for %d rows", r, rows)
			}
			copy(dst[i*cols:(i+1)*cols], src[int(r)*cols:(int(r)+1)*cols])
		}
	case Int32:
		src := t.Data.([]int32)
		dst := result.Data.([]int32)
		for i, r := range idx {
			if r < 0 || int(r) >= rows {
				return nil, fmt.Errorf("row index %d out of bounds for %d rows", r, rows)
			}
			copy(dst[i*cols:(i+1)*cols], src[int(r)*cols:(int(r)+1)*cols])
		}
	default:
		return nil, fmt.Errorf("unsupported dtype for IndexRows: %s", t.DType)
	}
	return result, nil
}

// Row returns the i-th row of a 2-D tensor as a 1-D tensor.
func Row(t *Tensor, i int) (*Tensor, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("Row requires a 2-D tensor, got %v", t.Shape)
	}
	if i < 0 || i >= t.Shape[0] {
		return nil, fmt.Errorf("row %d out of bounds for %d rows", i, t.Shape[0])
	}
	cols := t.Shape[1]

	switch t.DType {
	case Float32:
		src := t.Data.([]float32)
		data := make([]float32, cols)
		copy(data, src[i*cols:(i+1)*cols])
		return NewTensor([]int{cols}, Float32, t.Device, data)
	case Int32:
		src := t.Data.([]int32)
		data := make([]int32, cols)
		copy(data, src[i*cols:(i+1)*cols])
		return NewTensor([]int{cols}, Int32, t.Device, data)
	default:
		return nil, fmt.Errorf("unsupported dtype for Row: %s", t.DType)
	}
}

// Transpose returns the transpose of a 2-D tensor as a new tensor.
func Transpose(t *Tensor) (*Tensor, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("Transpose requires a 2-D tensor, got %v", t.Shape)
	}
	rows, cols := t.Shape[0], t.Shape[1]

	switch t.DType {
	case Float32:
		src := t.Data.([]float32)
		data := make([]float32, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data[j*rows+i] = src[i*cols+j]
			}
		}
		return NewTensor([]int{cols, rows}, Float32, t.Device, data)
	case Int32:
		src := t.Data.([]int32)
		data := make([]int32, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				data[j*rows+i] = src[i*cols+j]
			}
		}
		return NewTensor([]int{cols, rows}, Int32, t.Device, data)
	default:
		return nil, fmt.Errorf("unsupported dtype for Transpose: %s", t.DType)
	}
}

// SplitLeading slices a 3-D tensor along its leading axis into a list of 2-D
// tensors, one per slice. Each slice owns a copy of its data.
func SplitLeading(t *Tensor) ([]*Tensor, error) {
	if len(t.Shape) != 3 {
		return nil, fmt.Errorf("SplitLeading requires a 3-D tensor, got %v", t.Shape)
	}

	count, rows, cols := t.Shape[0], t.Shape[1], t.Shape[2]
	sliceElems := rows * cols
	out := make([]*Tensor, count)

	for i := 0; i < count; i++ {
		var data interface{}
		switch t.DType {
		case Float32:
			src := t.Data.([]float32)
			dst := make([]float32, sliceElems)
			copy(dst, src[i*sliceElems:(i+1)*sliceElems])
			data = dst
		case Int32:
			src := t.Data.([]int32)
			dst := make([]int32, sliceElems)
			copy(dst, src[i*sliceElems:(i+1)*sliceElems])
			data = dst
		default:
			return nil, fmt.Errorf("unsupported dtype for SplitLeading: %s", t.DType)
		}
		slice, err := NewTensor([]int{rows, cols}, t.DType, t.Device, data)
		if err != nil {
			return nil, err
		}
		out[i] = slice
	}
	return out, nil
}
