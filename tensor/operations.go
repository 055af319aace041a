package tensor

import (
	"fmt"
	"math"
)

func checkCompatibility(t1, t2 *Tensor) error {
	if t1.DType != t2.DType {
		return fmt.Errorf("tensors must have same dtype: %s vs %s", t1.DType, t2.DType)
	}
	if t1.Device != t2.Device {
		return fmt.Errorf("tensors must be on same device: %s vs %s", t1.Device, t2.Device)
	}
	return nil
}

func checkShapesCompatible(shape1, shape2 []int) ([]int, error) {
	if len(shape1) == 0 || len(shape2) == 0 {
		return nil, fmt.Errorf("cannot operate on empty tensors")
	}

	if len(shape1) != len(shape2) {
		return nil, fmt.Errorf("tensor shapes must have same number of dimensions: %v vs %v", shape1, shape2)
	}

	for i := range shape1 {
		if shape1[i] != shape2[i] {
			return nil, fmt.Errorf("tensor shapes must match: %v vs %v", shape1, shape2)
		}
	}

	return shape1, nil
}

type binaryOp func(a, b float32) float32

func elementwise(t1, t2 *Tensor, name string, op binaryOp) (*Tensor, error) {
	if err := checkCompatibility(t1, t2); err != nil {
		return nil, err
	}

	outputShape, err := checkShapesCompatible(t1.Shape, t2.Shape)
	if err != nil {
		return nil, err
	}

	result, err := Zeros(outputShape, t1.DType, t1.Device)
	if err != nil {
		return nil, err
	}

	switch t1.DType {
	case Float32:
		data1 := t1.Data.([]float32)
		data2 := t2.Data.([]float32)
		resultData := result.Data.([]float32)

		for i := 0; i < t1.NumElems; i++ {
			resultData[i] = op(data1[i], data2[i])
		}
	case Int32:
		data1 := t1.Data.([]int32)
		data2 := t2.Data.([]int32)
		resultData := result.Data.([]int32)

		for i := 0; i < t1.NumElems; i++ {
			resultData[i] = int32(op(float32(data1[i]), float32(data2[i])))
		}
	default:
		return nil, fmt.Errorf("unsupported dtype for %s: %s", name, t1.DType)
	}

	return result, nil
}

func Add(t1, t2 *Tensor) (*Tensor, error) {
	return elementwise(t1, t2, "Add", func(a, b float32) float32 { return a + b })
}

func Sub(t1, t2 *Tensor) (*Tensor, error) {
	return elementwise(t1, t2, "Sub", func(a, b float32) float32 { return a - b })
}

func Mul(t1, t2 *Tensor) (*Tensor, error) {
	return elementwise(t1, t2, "Mul", func(a, b float32) float32 { return a * b })
}

// Abs returns the elementwise absolute value of a Float32 tensor.
func Abs(t *Tensor) (*Tensor, error) {
	if t.DType != Float32 {
		return nil, fmt.Errorf("unsupported dtype for Abs: %s", t.DType)
	}

	result, err := Zeros(t.Shape, t.DType, t.Device)
	if err != nil {
		return nil, err
	}

	data := t.Data.([]float32)
	resultData := result.Data.([]float32)
	for i := 0; i < t.NumElems; i++ {
		resultData[i] = float32(math.Abs(float64(data[i])))
	}
	return result, nil
}

// Scale multiplies every element of a Float32 tensor by a scalar.
func Scale(t *Tensor, factor float64) (*Tensor, error) {
	if t.DType != Float32 {
		return nil, fmt.Errorf("unsupported dtype for Scale: %s", t.DType)
	}

	result, err := Zeros(t.Shape, t.DType, t.Device)
	if err != nil {
		return nil, err
	}

	data := t.Data.([]float32)
	resultData := result.Data.([]float32)
	for i := 0; i < t.NumElems; i++ {
		resultData[i] = data[i] * float32(factor)
	}
	return result, nil
}

// SumAll sums every element of a Float32 tensor into a 1-element tensor.
func SumAll(t *Tensor) (*Tensor, error) {
	if t.DType != Float32 {
		return nil, fmt.Errorf("unsupported dtype for SumAll: %s", t.DType)
	}

	data := t.Data.([]float32)
	sum := float32(0)
	for _, val := range data {
		sum += val
	}
	return NewTensor([]int{1}, Float32, t.Device, []float32{sum})
}

// Mean averages every element of a Float32 tensor into a 1-element tensor.
func Mean(t *Tensor) (*Tensor, error) {
	sum, err := SumAll(t)
	if err != nil {
		return nil, err
	}
	if t.NumElems == 0 {
		return nil, fmt.Errorf("cannot take mean of empty tensor")
	}
	return Scale(sum, 1.0/float64(t.NumElems))
}

// Item extracts the single value of a 1-element Float32 tensor.
func (t *Tensor) Item() (float32, error) {
	if t.DType != Float32 {
		return 0, fmt.Errorf("Item requires Float32 tensor, got %s", t.DType)
	}
	if t.NumElems != 1 {
		return 0, fmt.Errorf("Item requires 1-element tensor, got %d elements", t.NumElems)
	}
	return t.Data.([]float32)[0], nil
}

// ClampInPlace limits every element of a Float32 tensor to [low, high],
// mutating the tensor. Used for inverse-problem parameter clamping.
func (t *Tensor) ClampInPlace(low, high float64) error {
	if t.DType != Float32 {
		return fmt.Errorf("unsupported dtype for ClampInPlace: %s", t.DType)
	}
	if low > high {
		return fmt.Errorf("invalid clamp range [%g, %g]", low, high)
	}

	data := t.Data.([]float32)
	lo, hi := float32(low), float32(high)
	for i := range data {
		if data[i] < lo {
			data[i] = lo
		} else if data[i] > hi {
			data[i] = hi
		}
	}
	return nil
}
