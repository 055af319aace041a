package tensor

import (
	"fmt"
)

type DType int

const (
	Float32 DType = iota
	Int32
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "Float32"
	case Int32:
		return "Int32"
	default:
		return "Unknown"
	}
}

type DeviceType int

const (
	CPU DeviceType = iota
	GPU
)

func (d DeviceType) String() string {
	switch d {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	default:
		return "Unknown"
	}
}

// Tensor is a dense n-dimensional array. All operations in this package run on
// the CPU; the Device field records placement intent for an external execution
// engine and is never acted on here.
type Tensor struct {
	Shape        []int
	Strides      []int
	DType        DType
	Device       DeviceType
	Data         interface{}
	NumElems     int
	requiresGrad bool
	grad         *Tensor
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, dtype=%s, device=%s, elements=%d)",
		t.Shape, t.DType, t.Device, t.NumElems)
}

// RequiresGrad reports whether this tensor is tracked for gradient computation
// by the external autograd engine.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

func (t *Tensor) SetRequiresGrad(requires bool) {
	t.requiresGrad = requires
}

// Grad returns the gradient accumulated for this tensor, or nil.
func (t *Tensor) Grad() *Tensor {
	return t.grad
}

// SetGrad stores grad as this tensor's gradient. Gradients are produced by an
// external engine; this package only holds them for the optimizers.
func (t *Tensor) SetGrad(grad *Tensor) {
	t.grad = grad
}

// ZeroGrad drops the stored gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

// Dims returns the number of dimensions.
func (t *Tensor) Dims() int {
	return len(t.Shape)
}

// Rows returns the size of the leading dimension.
func (t *Tensor) Rows() int {
	if len(t.Shape) == 0 {
		return 0
	}
	return t.Shape[0]
}

// Cols returns the size of the second dimension of a 2-D tensor, or 1 for a
// 1-D tensor.
func (t *Tensor) Cols() int {
	if len(t.Shape) < 2 {
		return 1
	}
	return t.Shape[1]
}

// At returns the value at the given row and column of a 1-D or 2-D Float32
// tensor.
func (t *Tensor) At(row, col int) (float32, error) {
	if t.DType != Float32 {
		return 0, fmt.Errorf("At requires Float32 tensor, got %s", t.DType)
	}
	idx, err := t.flatIndex(row, col)
	if err != nil {
		return 0, err
	}
	return t.Data.([]float32)[idx], nil
}

// Set writes the value at the given row and column of a 1-D or 2-D Float32
// tensor.
func (t *Tensor) Set(row, col int, value float32) error {
	if t.DType != Float32 {
		return fmt.Errorf("Set requires Float32 tensor, got %s", t.DType)
	}
	idx, err := t.flatIndex(row, col)
	if err != nil {
		return err
	}
	t.Data.([]float32)[idx] = value
	return nil
}

// IntAt returns the value at the given row and column of a 1-D or 2-D Int32
// tensor.
func (t *Tensor) IntAt(row, col int) (int32, error) {
	if t.DType != Int32 {
		return 0, fmt.Errorf("IntAt requires Int32 tensor, got %s", t.DType)
	}
	idx, err := t.flatIndex(row, col)
	if err != nil {
		return 0, err
	}
	return t.Data.([]int32)[idx], nil
}

func (t *Tensor) flatIndex(row, col int) (int, error) {
	switch len(t.Shape) {
	case 1:
		if col != 0 {
			return 0, fmt.Errorf("column %d out of bounds for 1-D tensor", col)
		}
		if row < 0 || row >= t.Shape[0] {
			return 0, fmt.Errorf("row %d out of bounds for tensor with %d elements", row, t.Shape[0])
		}
		return row, nil
	case 2:
		if row < 0 || row >= t.Shape[0] || col < 0 || col >= t.Shape[1] {
			return 0, fmt.Errorf("index (%d, %d) out of bounds for shape %v", row, col, t.Shape)
		}
		return row*t.Strides[0] + col*t.Strides[1], nil
	default:
		return 0, fmt.Errorf("element access requires 1-D or 2-D tensor, got %d dims", len(t.Shape))
	}
}

// Clone returns a deep copy of the tensor. Gradient state is not copied.
func (t *Tensor) Clone() (*Tensor, error) {
	var data interface{}
	switch t.DType {
	case Float32:
		src := t.Data.([]float32)
		dst := make([]float32, len(src))
		copy(dst, src)
		data = dst
	case Int32:
		src := t.Data.([]int32)
		dst := make([]int32, len(src))
		copy(dst, src)
		data = dst
	default:
		return nil, fmt.Errorf("unsupported dtype for Clone: %s", t.DType)
	}
	shape := make([]int, len(t.Shape))
	copy(shape, t.Shape)
	return NewTensor(shape, t.DType, t.Device, data)
}

// Detach returns a copy of the tensor that is not tracked for gradients.
func (t *Tensor) Detach() (*Tensor, error) {
	out, err := t.Clone()
	if err != nil {
		return nil, err
	}
	out.requiresGrad = false
	return out, nil
}

func calculateStrides(shape []int) []int {
	if len(shape) == 0 {
		return []int{}
	}

	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

func calculateNumElements(shape []int) int {
	if len(shape) == 0 {
		return 0
	}

	elements := 1
	for _, dim := range shape {
		elements *= dim
	}
	return elements
}

func validateShape(shape []int) error {
	for i, dim := range shape {
		if dim <= 0 {
			return fmt.Errorf("invalid shape: dimension %d has size %d, must be positive", i, dim)
		}
	}
	return nil
}
