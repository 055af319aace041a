package pinn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tsawler/go-pinn/tensor"
)

// Global random source for deterministic weight initialization
var globalRng *rand.Rand = rand.New(rand.NewSource(1))

// SetRandomSeed sets the global random seed for deterministic weight
// initialization.
func SetRandomSeed(seed int64) {
	globalRng = rand.New(rand.NewSource(seed))
}

// Module interface defines methods that all neural network models must
// implement.
type Module interface {
	Forward(input *tensor.Tensor) (*tensor.Tensor, error)
	Parameters() []*tensor.Tensor // Returns trainable parameters
	Train()                       // Sets module to training mode
	Eval()                        // Sets module to evaluation mode
	IsTraining() bool             // Returns true if in training mode
}

// BackpropModule is a Module that can push a loss gradient back through
// itself. Backward takes the gradient of the loss with respect to the
// module's output, accumulates parameter gradients in place, and returns the
// gradient with respect to the module's input. Forward must run first; it
// caches the activations Backward consumes.
type BackpropModule interface {
	Module
	Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error)
}

// Linear implements a fully connected layer: y = xW + b
type Linear struct {
	weight    *tensor.Tensor
	bias      *tensor.Tensor
	lastInput *tensor.Tensor
	training  bool
}

// NewLinear creates a new Linear layer with Xavier/Glorot uniform
// initialization.
func NewLinear(inputSize, outputSize int, bias bool) (*Linear, error) {
	if inputSize <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("layer sizes must be positive, got %d and %d", inputSize, outputSize)
	}

	// W ~ U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
	bound := math.Sqrt(6.0 / float64(inputSize+outputSize))

	weightData := make([]float32, inputSize*outputSize)
	for i := range weightData {
		weightData[i] = float32((globalRng.Float64()*2.0 - 1.0) * bound)
	}

	weight, err := tensor.NewTensor([]int{inputSize, outputSize}, tensor.Float32, tensor.CPU, weightData)
	if err != nil {
		return nil, fmt.Errorf("failed to create weight tensor: %v", err)
	}
	weight.SetRequiresGrad(true)

	layer := &Linear{weight: weight, training: true}

	if bias {
		b, err := tensor.Zeros([]int{outputSize}, tensor.Float32, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("failed to create bias tensor: %v", err)
		}
		b.SetRequiresGrad(true)
		layer.bias = b
	}
	return layer, nil
}

// Forward computes xW + b for a 2-D input with one row per point.
func (l *Linear) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := tensor.MatMul(input, l.weight)
	if err != nil {
		return nil, fmt.Errorf("linear forward failed: %v", err)
	}
	l.lastInput = input
	if l.bias == nil {
		return out, nil
	}

	rows, cols := out.Shape[0], out.Shape[1]
	data := out.Data.([]float32)
	bias := l.bias.Data.([]float32)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] += bias[j]
		}
	}
	return out, nil
}

// Backward accumulates dL/dW = xT g and dL/db = colsum(g) from the output
// gradient g, and returns dL/dx = g WT.
func (l *Linear) Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error) {
	if l.lastInput == nil {
		return nil, fmt.Errorf("backward called before forward")
	}

	inputT, err := tensor.Transpose(l.lastInput)
	if err != nil {
		return nil, fmt.Errorf("linear backward failed: %v", err)
	}
	weightGrad, err := tensor.MatMul(inputT, gradOutput)
	if err != nil {
		return nil, fmt.Errorf("linear backward failed: %v", err)
	}
	if err := accumulateGrad(l.weight, weightGrad); err != nil {
		return nil, err
	}

	if l.bias != nil {
		biasGrad, err := columnSums(gradOutput)
		if err != nil {
			return nil, fmt.Errorf("linear backward failed: %v", err)
		}
		if err := accumulateGrad(l.bias, biasGrad); err != nil {
			return nil, err
		}
	}

	weightT, err := tensor.Transpose(l.weight)
	if err != nil {
		return nil, fmt.Errorf("linear backward failed: %v", err)
	}
	return tensor.MatMul(gradOutput, weightT)
}

func (l *Linear) Parameters() []*tensor.Tensor {
	if l.bias == nil {
		return []*tensor.Tensor{l.weight}
	}
	return []*tensor.Tensor{l.weight, l.bias}
}

func (l *Linear) Train() { l.training = true }

func (l *Linear) Eval() { l.training = false }

func (l *Linear) IsTraining() bool { return l.training }

// MLP chains Linear layers with tanh activations between them (none after the
// last layer).
type MLP struct {
	layers   []*Linear
	training bool
}

// NewMLP creates a multilayer perceptron with the given layer sizes, e.g.
// [2, 16, 16, 1] for a two-input one-output network with two hidden layers.
func NewMLP(sizes []int) (*MLP, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("MLP requires at least input and output sizes, got %v", sizes)
	}
	layers := make([]*Linear, len(sizes)-1)
	for i := 0; i < len(sizes)-1; i++ {
		layer, err := NewLinear(sizes[i], sizes[i+1], true)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %v", i, err)
		}
		layers[i] = layer
	}
	return &MLP{layers: layers, training: true}, nil
}

func (m *MLP) Forward(input *tensor.Tensor) (*tensor.Tensor, error) {
	out := input
	var err error
	for i, layer := range m.layers {
		out, err = layer.Forward(out)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %v", i, err)
		}
		if i < len(m.layers)-1 {
			applyTanh(out)
		}
	}
	return out, nil
}

func applyTanh(t *tensor.Tensor) {
	data := t.Data.([]float32)
	for i := range data {
		data[i] = float32(math.Tanh(float64(data[i])))
	}
}

// Backward pushes the output gradient back through the layer stack. Hidden
// layer inputs were cached post-activation, so tanh'(z) = 1 - a*a uses the
// cached values directly.
func (m *MLP) Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error) {
	grad := gradOutput
	for i := len(m.layers) - 1; i >= 0; i-- {
		activated := m.layers[i].lastInput
		g, err := m.layers[i].Backward(grad)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %v", i, err)
		}
		if i > 0 {
			if err := applyTanhGrad(g, activated); err != nil {
				return nil, fmt.Errorf("layer %d: %v", i, err)
			}
		}
		grad = g
	}
	return grad, nil
}

// applyTanhGrad multiplies grad in place by 1 - a*a, where a holds tanh
// outputs.
func applyTanhGrad(grad, activated *tensor.Tensor) error {
	g := grad.Data.([]float32)
	a := activated.Data.([]float32)
	if len(g) != len(a) {
		return fmt.Errorf("gradient has %d elements, activations have %d", len(g), len(a))
	}
	for i := range g {
		g[i] *= 1 - a[i]*a[i]
	}
	return nil
}

// accumulateGrad adds g into the parameter's stored gradient, starting a new
// one when none is stored yet.
func accumulateGrad(p, g *tensor.Tensor) error {
	existing := p.Grad()
	if existing == nil {
		p.SetGrad(g)
		return nil
	}
	sum, err := tensor.Add(existing, g)
	if err != nil {
		return fmt.Errorf("gradient accumulation failed: %v", err)
	}
	p.SetGrad(sum)
	return nil
}

// columnSums reduces a 2-D Float32 tensor to a 1-D tensor of per-column sums.
func columnSums(t *tensor.Tensor) (*tensor.Tensor, error) {
	if t.Dims() != 2 || t.DType != tensor.Float32 {
		return nil, fmt.Errorf("column sums require a 2-D Float32 tensor, got %s %v", t.DType, t.Shape)
	}
	rows, cols := t.Shape[0], t.Shape[1]
	data := t.Data.([]float32)
	out := make([]float32, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j] += data[i*cols+j]
		}
	}
	return tensor.NewTensor([]int{cols}, tensor.Float32, t.Device, out)
}

func (m *MLP) Parameters() []*tensor.Tensor {
	var params []*tensor.Tensor
	for _, layer := range m.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

func (m *MLP) Train() {
	m.training = true
	for _, layer := range m.layers {
		layer.Train()
	}
}

func (m *MLP) Eval() {
	m.training = false
	for _, layer := range m.layers {
		layer.Eval()
	}
}

func (m *MLP) IsTraining() bool { return m.training }
