package checkpoints

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tsawler/go-pinn/optimizer"
	"github.com/tsawler/go-pinn/tensor"
)

func testCheckpoint() *Checkpoint {
	return &Checkpoint{
		Weights: []WeightTensor{
			{Name: "param.0", Shape: []int{2, 2}, Data: []float32{1, 2, 3, 4}},
			{Name: "param.1", Shape: []int{2}, Data: []float32{0.5, -0.5}},
		},
		UnknownParameters: []WeightTensor{
			{Name: "mu", Shape: []int{1}, Data: []float32{0.7}},
		},
		TrainingState: TrainingState{
			Epoch:        42,
			Step:         420,
			LearningRate: 0.001,
			BestLoss:     0.125,
			TotalEpochs:  100,
		},
		OptimizerState: &optimizer.State{
			Type:      "SGD",
			StepCount: 420,
			Parameters: map[string]float64{
				"lr":       0.001,
				"momentum": 0.9,
			},
			Buffers: map[string][][]float32{
				"velocity": {{0.1, 0.2, 0.3, 0.4}, {0.01, -0.01}},
			},
		},
		Metadata: CheckpointMetadata{
			Version:     "1.0.0",
			Framework:   "go-pinn",
			CreatedAt:   time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			Description: "unit test checkpoint",
		},
	}
}

func assertCheckpointsEqual(t *testing.T, want, got *Checkpoint) {
	t.Helper()

	if len(got.Weights) != len(want.Weights) {
		t.Fatalf("weight count = %d, want %d", len(got.Weights), len(want.Weights))
	}
	for i, w := range want.Weights {
		g := got.Weights[i]
		if g.Name != w.Name {
			t.Errorf("weight %d name = %q, want %q", i, g.Name, w.Name)
		}
		if len(g.Data) != len(w.Data) {
			t.Fatalf("weight %d data length = %d, want %d", i, len(g.Data), len(w.Data))
		}
		for j := range w.Data {
			if g.Data[j] != w.Data[j] {
				t.Errorf("weight %d data[%d] = %f, want %f", i, j, g.Data[j], w.Data[j])
			}
		}
	}

	if len(got.UnknownParameters) != 1 || got.UnknownParameters[0].Name != "mu" {
		t.Errorf("unknown parameters not preserved: %+v", got.UnknownParameters)
	}

	if got.TrainingState != want.TrainingState {
		t.Errorf("training state = %+v, want %+v", got.TrainingState, want.TrainingState)
	}

	if got.OptimizerState == nil {
		t.Fatal("optimizer state missing")
	}
	if got.OptimizerState.Type != "SGD" || got.OptimizerState.StepCount != 420 {
		t.Errorf("optimizer state = %+v", got.OptimizerState)
	}
	velocity, ok := got.OptimizerState.Buffers["velocity"]
	if !ok || len(velocity) != 2 || velocity[0][3] != 0.4 {
		t.Errorf("optimizer buffers not preserved: %+v", got.OptimizerState.Buffers)
	}

	if got.Metadata.Framework != "go-pinn" {
		t.Errorf("framework = %q, want go-pinn", got.Metadata.Framework)
	}
}

func TestJSONCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	saver := NewCheckpointSaver(FormatJSON)

	want := testCheckpoint()
	if err := saver.SaveCheckpoint(want, path); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	got, err := saver.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	assertCheckpointsEqual(t, want, got)
}

func TestProtoCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pb")
	saver := NewCheckpointSaver(FormatProto)

	want := testCheckpoint()
	if err := saver.SaveCheckpoint(want, path); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	got, err := saver.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	assertCheckpointsEqual(t, want, got)
}

func TestSaveFillsMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	saver := NewCheckpointSaver(FormatJSON)

	checkpoint := &Checkpoint{Weights: []WeightTensor{{Name: "param.0", Shape: []int{1}, Data: []float32{1}}}}
	if err := saver.SaveCheckpoint(checkpoint, path); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	got, err := saver.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if got.Metadata.Framework != "go-pinn" || got.Metadata.Version == "" {
		t.Errorf("default metadata not filled: %+v", got.Metadata)
	}
	if got.Metadata.CreatedAt.IsZero() {
		t.Error("created-at timestamp not set")
	}
}

func TestLoadMissingFile(t *testing.T) {
	saver := NewCheckpointSaver(FormatJSON)
	if _, err := saver.LoadCheckpoint(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing checkpoint file")
	}
}

func TestExtractAndLoadWeights(t *testing.T) {
	a, err := tensor.NewTensor([]int{2, 2}, tensor.Float32, tensor.CPU, []float32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}
	b, err := tensor.NewTensor([]int{2}, tensor.Float32, tensor.CPU, []float32{5, 6})
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}

	weights, err := ExtractWeights([]*tensor.Tensor{a, b})
	if err != nil {
		t.Fatalf("ExtractWeights failed: %v", err)
	}
	if len(weights) != 2 {
		t.Fatalf("weight count = %d, want 2", len(weights))
	}
	if weights[0].Name != "param.0" || weights[1].Name != "param.1" {
		t.Errorf("unexpected weight names: %q, %q", weights[0].Name, weights[1].Name)
	}

	// The snapshot is a copy: mutating the tensor leaves it untouched.
	a.Data.([]float32)[0] = 99
	if weights[0].Data[0] != 1 {
		t.Error("extracted weights alias the tensor data")
	}

	// Restore into fresh tensors of the same shapes.
	a2, err := tensor.Zeros([]int{2, 2}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}
	b2, err := tensor.Zeros([]int{2}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}
	if err := LoadWeights(weights, []*tensor.Tensor{a2, b2}); err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}
	if a2.Data.([]float32)[3] != 4 || b2.Data.([]float32)[1] != 6 {
		t.Error("weights not restored correctly")
	}
}

func TestLoadWeightsShapeMismatch(t *testing.T) {
	p, err := tensor.Zeros([]int{3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}

	weights := []WeightTensor{{Name: "param.0", Shape: []int{2}, Data: []float32{1, 2}}}
	if err := LoadWeights(weights, []*tensor.Tensor{p}); err == nil {
		t.Error("expected error for shape mismatch")
	}

	if err := LoadWeights(weights, nil); err == nil {
		t.Error("expected error for count mismatch")
	}
}

func TestUnknownParameterRoundTrip(t *testing.T) {
	mu, err := tensor.NewTensor([]int{1}, tensor.Float32, tensor.CPU, []float32{0.7})
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}
	alpha, err := tensor.NewTensor([]int{1}, tensor.Float32, tensor.CPU, []float32{1.3})
	if err != nil {
		t.Fatalf("failed to create tensor: %v", err)
	}
	params := map[string]*tensor.Tensor{"mu": mu, "alpha": alpha}

	weights, err := ExtractUnknownParameters(params)
	if err != nil {
		t.Fatalf("ExtractUnknownParameters failed: %v", err)
	}
	// Sorted by name.
	if weights[0].Name != "alpha" || weights[1].Name != "mu" {
		t.Errorf("unexpected order: %q, %q", weights[0].Name, weights[1].Name)
	}

	mu.Data.([]float32)[0] = 0
	alpha.Data.([]float32)[0] = 0
	if err := LoadUnknownParameters(weights, params); err != nil {
		t.Fatalf("LoadUnknownParameters failed: %v", err)
	}
	if mu.Data.([]float32)[0] != 0.7 || alpha.Data.([]float32)[0] != 1.3 {
		t.Error("unknown parameters not restored")
	}

	weights[0].Name = "beta"
	if err := LoadUnknownParameters(weights, params); err == nil {
		t.Error("expected error for parameter missing from the problem")
	}
}
