package tensor

import (
	"fmt"
)

// Value is anything that can expose a plain tensor view of itself. Both Tensor
// and LabelTensor satisfy it, so APIs that do not care about label metadata can
// accept either.
type Value interface {
	Plain() *Tensor
}

// Plain returns the tensor itself.
func (t *Tensor) Plain() *Tensor {
	return t
}

// LabelTensor pairs a 2-D tensor with per-column variable labels. The labels
// describe what each column means (coordinates, field values); the underlying
// tensor is reachable through Plain for consumers that only need numbers.
type LabelTensor struct {
	tensor *Tensor
	labels []string
}

// NewLabelTensor wraps a 2-D tensor with one label per column.
func NewLabelTensor(t *Tensor, labels []string) (*LabelTensor, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("LabelTensor requires a 2-D tensor, got %v", t.Shape)
	}
	if len(labels) != t.Shape[1] {
		return nil, fmt.Errorf("got %d labels for %d columns", len(labels), t.Shape[1])
	}
	ls := make([]string, len(labels))
	copy(ls, labels)
	return &LabelTensor{tensor: t, labels: ls}, nil
}

// Plain returns the underlying tensor, dropping label metadata.
func (lt *LabelTensor) Plain() *Tensor {
	return lt.tensor
}

// Labels returns the column labels.
func (lt *LabelTensor) Labels() []string {
	ls := make([]string, len(lt.labels))
	copy(ls, lt.labels)
	return ls
}

// Extract returns the columns named by the given labels, in the given order,
// as a new LabelTensor.
func (lt *LabelTensor) Extract(labels []string) (*LabelTensor, error) {
	cols := make([]int, len(labels))
	for i, want := range labels {
		found := -1
		for j, have := range lt.labels {
			if have == want {
				found = j
				break
			}
		}
		if found == -1 {
			return nil, fmt.Errorf("label %q not present in %v", want, lt.labels)
		}
		cols[i] = found
	}

	rows := lt.tensor.Shape[0]
	src := lt.tensor.Data.([]float32)
	width := lt.tensor.Shape[1]
	data := make([]float32, rows*len(cols))
	for r := 0; r < rows; r++ {
		for i, c := range cols {
			data[r*len(cols)+i] = src[r*width+c]
		}
	}

	out, err := NewTensor([]int{rows, len(cols)}, Float32, lt.tensor.Device, data)
	if err != nil {
		return nil, err
	}
	return NewLabelTensor(out, labels)
}
