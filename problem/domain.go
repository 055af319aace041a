package problem

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/tsawler/go-pinn/tensor"
)

// VariableRange is the closed interval a variable spans inside a Cartesian
// domain.
type VariableRange struct {
	Low  float64
	High float64
}

// CartesianDomain is an axis-aligned box: one range per named variable.
type CartesianDomain struct {
	ranges map[string]VariableRange
	order  []string
	rng    *rand.Rand
}

// NewCartesianDomain builds a domain from named variable ranges. The variable
// order fixes the column order of sampled points when no explicit selection is
// given.
func NewCartesianDomain(ranges map[string]VariableRange, seed int64) (*CartesianDomain, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("domain requires at least one variable")
	}
	order := make([]string, 0, len(ranges))
	for name, r := range ranges {
		if r.Low > r.High {
			return nil, fmt.Errorf("variable %q has inverted range [%g, %g]", name, r.Low, r.High)
		}
		order = append(order, name)
	}
	sort.Strings(order)
	return &CartesianDomain{
		ranges: ranges,
		order:  order,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Variables returns the domain's variable names in column order.
func (d *CartesianDomain) Variables() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Range returns the interval of one variable.
func (d *CartesianDomain) Range(name string) (low, high float64, err error) {
	r, ok := d.ranges[name]
	if !ok {
		return 0, 0, fmt.Errorf("unknown variable %q", name)
	}
	return r.Low, r.High, nil
}

// Sample draws n points from the domain. Random mode draws uniformly per
// variable; grid mode lays points on a per-variable lattice with
// ceil(n^(1/dims)) steps per axis, returning at least n points. Passing nil
// variables selects every variable in column order.
func (d *CartesianDomain) Sample(n int, mode SampleMode, variables []string) (*tensor.Tensor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	if variables == nil {
		variables = d.order
	}
	selected := make([]VariableRange, len(variables))
	for i, name := range variables {
		r, ok := d.ranges[name]
		if !ok {
			return nil, fmt.Errorf("unknown variable %q", name)
		}
		selected[i] = r
	}

	switch mode {
	case SampleRandom:
		return d.sampleRandom(n, selected)
	case SampleGrid:
		return d.sampleGrid(n, selected)
	default:
		return nil, fmt.Errorf("unsupported sample mode %s", mode)
	}
}

func (d *CartesianDomain) sampleRandom(n int, ranges []VariableRange) (*tensor.Tensor, error) {
	cols := len(ranges)
	data := make([]float32, n*cols)
	for i := 0; i < n; i++ {
		for j, r := range ranges {
			data[i*cols+j] = float32(r.Low + d.rng.Float64()*(r.High-r.Low))
		}
	}
	return tensor.NewTensor([]int{n, cols}, tensor.Float32, tensor.CPU, data)
}

func (d *CartesianDomain) sampleGrid(n int, ranges []VariableRange) (*tensor.Tensor, error) {
	dims := len(ranges)
	steps := int(math.Ceil(math.Pow(float64(n), 1.0/float64(dims))))
	if steps < 2 {
		steps = 2
	}
	total := 1
	for i := 0; i < dims; i++ {
		total *= steps
	}

	data := make([]float32, total*dims)
	for p := 0; p < total; p++ {
		rest := p
		for j := dims - 1; j >= 0; j-- {
			idx := rest % steps
			rest /= steps
			r := ranges[j]
			data[p*dims+j] = float32(r.Low + float64(idx)/float64(steps-1)*(r.High-r.Low))
		}
	}
	return tensor.NewTensor([]int{total, dims}, tensor.Float32, tensor.CPU, data)
}
