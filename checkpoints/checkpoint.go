// Package checkpoints saves and restores solver state: model weights, unknown
// physical parameters of inverse problems, training progress, and optimizer
// state. Two on-disk formats are supported: pretty-printed JSON and binary
// protobuf.
package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/tsawler/go-pinn/optimizer"
	"github.com/tsawler/go-pinn/tensor"
)

// CheckpointFormat defines the serialization format
type CheckpointFormat int

const (
	FormatJSON CheckpointFormat = iota
	FormatProto
)

func (cf CheckpointFormat) String() string {
	switch cf {
	case FormatJSON:
		return "JSON"
	case FormatProto:
		return "Proto"
	default:
		return "Unknown"
	}
}

// Checkpoint represents a complete solver state including model weights,
// inverse-problem parameters, optimizer state, and training metadata
type Checkpoint struct {
	// Model weights in parameter order
	Weights []WeightTensor `json:"weights"`

	// Learnable physical parameters of inverse problems
	UnknownParameters []WeightTensor `json:"unknown_parameters,omitempty"`

	// Training state
	TrainingState TrainingState `json:"training_state"`

	// Optimizer state (if available)
	OptimizerState *optimizer.State `json:"optimizer_state,omitempty"`

	// Metadata
	Metadata CheckpointMetadata `json:"metadata"`
}

// WeightTensor represents a parameter tensor with its data
type WeightTensor struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// TrainingState captures the current training progress
type TrainingState struct {
	Epoch        int     `json:"epoch"`
	Step         int     `json:"step"`
	LearningRate float64 `json:"learning_rate"`
	BestLoss     float64 `json:"best_loss"`
	TotalEpochs  int     `json:"total_epochs"`
}

// CheckpointMetadata contains checkpoint metadata
type CheckpointMetadata struct {
	Version     string    `json:"version"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// CheckpointSaver handles saving checkpoints in various formats
type CheckpointSaver struct {
	format CheckpointFormat
}

// NewCheckpointSaver creates a new checkpoint saver for the specified format
func NewCheckpointSaver(format CheckpointFormat) *CheckpointSaver {
	return &CheckpointSaver{
		format: format,
	}
}

// SaveCheckpoint saves a complete checkpoint
func (cs *CheckpointSaver) SaveCheckpoint(checkpoint *Checkpoint, path string) error {
	if checkpoint.Metadata.Framework == "" {
		checkpoint.Metadata.Framework = "go-pinn"
		checkpoint.Metadata.Version = "1.0.0"
		checkpoint.Metadata.CreatedAt = time.Now()
	}

	switch cs.format {
	case FormatJSON:
		return cs.saveJSON(checkpoint, path)
	case FormatProto:
		return cs.saveProto(checkpoint, path)
	default:
		return fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}

// LoadCheckpoint loads a checkpoint
func (cs *CheckpointSaver) LoadCheckpoint(path string) (*Checkpoint, error) {
	switch cs.format {
	case FormatJSON:
		return cs.loadJSON(path)
	case FormatProto:
		return cs.loadProto(path)
	default:
		return nil, fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}

// saveJSON saves checkpoint in JSON format
func (cs *CheckpointSaver) saveJSON(checkpoint *Checkpoint, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ") // Pretty print JSON

	if err := encoder.Encode(checkpoint); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	return nil
}

// loadJSON loads checkpoint from JSON format
func (cs *CheckpointSaver) loadJSON(path string) (*Checkpoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %v", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	decoder := json.NewDecoder(file)

	if err := decoder.Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}

// ExtractWeights snapshots parameter tensors into checkpoint weight records.
// Names follow the parameter order so LoadWeights can restore positionally.
func ExtractWeights(params []*tensor.Tensor) ([]WeightTensor, error) {
	weights := make([]WeightTensor, 0, len(params))
	for i, p := range params {
		if p.DType != tensor.Float32 {
			return nil, fmt.Errorf("parameter %d: checkpoints require Float32 tensors, got %s", i, p.DType)
		}
		src := p.Data.([]float32)
		data := make([]float32, len(src))
		copy(data, src)

		shape := make([]int, len(p.Shape))
		copy(shape, p.Shape)

		weights = append(weights, WeightTensor{
			Name:  fmt.Sprintf("param.%d", i),
			Shape: shape,
			Data:  data,
		})
	}
	return weights, nil
}

// ExtractUnknownParameters snapshots the named unknown parameters of an
// inverse problem, sorted by name for a stable on-disk order.
func ExtractUnknownParameters(params map[string]*tensor.Tensor) ([]WeightTensor, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	weights := make([]WeightTensor, 0, len(names))
	for _, name := range names {
		p := params[name]
		if p.DType != tensor.Float32 {
			return nil, fmt.Errorf("parameter %q: checkpoints require Float32 tensors, got %s", name, p.DType)
		}
		src := p.Data.([]float32)
		data := make([]float32, len(src))
		copy(data, src)

		shape := make([]int, len(p.Shape))
		copy(shape, p.Shape)

		weights = append(weights, WeightTensor{Name: name, Shape: shape, Data: data})
	}
	return weights, nil
}

// LoadWeights copies checkpoint weight data back into parameter tensors in
// positional order, validating shapes.
func LoadWeights(weights []WeightTensor, params []*tensor.Tensor) error {
	if len(weights) != len(params) {
		return fmt.Errorf("weight count mismatch: %d weights, %d parameters", len(weights), len(params))
	}

	for i, p := range params {
		weight := weights[i]
		if len(p.Shape) != len(weight.Shape) {
			return fmt.Errorf("shape mismatch for %s: tensor %v vs weight %v",
				weight.Name, p.Shape, weight.Shape)
		}
		for j, dim := range p.Shape {
			if dim != weight.Shape[j] {
				return fmt.Errorf("dimension mismatch for %s at index %d: tensor %d vs weight %d",
					weight.Name, j, dim, weight.Shape[j])
			}
		}
		if p.DType != tensor.Float32 {
			return fmt.Errorf("parameter %s: checkpoints require Float32 tensors, got %s", weight.Name, p.DType)
		}
		if len(weight.Data) != p.NumElems {
			return fmt.Errorf("data length mismatch for %s: %d values for %d elements",
				weight.Name, len(weight.Data), p.NumElems)
		}
		copy(p.Data.([]float32), weight.Data)
	}
	return nil
}

// LoadUnknownParameters copies checkpoint records back into the named unknown
// parameters of an inverse problem.
func LoadUnknownParameters(weights []WeightTensor, params map[string]*tensor.Tensor) error {
	for _, weight := range weights {
		p, ok := params[weight.Name]
		if !ok {
			return fmt.Errorf("checkpoint has unknown parameter %q not present in the problem", weight.Name)
		}
		if err := LoadWeights([]WeightTensor{weight}, []*tensor.Tensor{p}); err != nil {
			return err
		}
	}
	return nil
}
