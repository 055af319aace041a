package pinn

import (
	"fmt"
	"time"

	"github.com/tsawler/go-pinn/optimizer"
)

// BackwardFunc computes parameter gradients for the batch after the step loss
// has been evaluated, before the optimizer applies them. It is the seam for an
// external gradient engine; the default, DataLossBackward, backpropagates the
// supervised data loss through models that support it.
type BackwardFunc func(solver *Solver, batch []BatchItem) error

// TrainerConfig holds configuration for the training loop.
type TrainerConfig struct {
	Epochs        int
	ValidateEvery int          // Run validation every N epochs (0 = no validation)
	EarlyStopping bool         // Enable early stopping based on validation loss
	Patience      int          // Epochs to wait for improvement before stopping
	Verbose       bool         // Print an epoch summary line
	Backward      BackwardFunc // Gradient computation, DataLossBackward when nil
}

// DataLossBackward backpropagates the supervised data loss of every data
// condition through the solver's model, accumulating parameter gradients.
// Models that do not implement BackpropModule and physics conditions are
// skipped; their gradients must come from a custom BackwardFunc.
func DataLossBackward(solver *Solver, batch []BatchItem) error {
	model, ok := solver.Model().(BackpropModule)
	if !ok {
		return nil
	}
	for _, item := range batch {
		if item.Points.OutputPoints == nil {
			continue
		}
		predicted, err := model.Forward(item.Points.InputPoints)
		if err != nil {
			return fmt.Errorf("condition %q: %v", item.ConditionName, err)
		}
		grad, err := solver.Loss().Backward(predicted, item.Points.OutputPoints)
		if err != nil {
			return fmt.Errorf("condition %q: %v", item.ConditionName, err)
		}
		if _, err := model.Backward(grad); err != nil {
			return fmt.Errorf("condition %q: %v", item.ConditionName, err)
		}
	}
	return nil
}

// EpochMetrics holds the metrics of a single epoch.
type EpochMetrics struct {
	Epoch         int
	TrainLoss     float64
	ValidLoss     float64
	Validated     bool
	LearningRate  float64
	EpochDuration time.Duration
}

// Trainer drives a Solver through the training loop: per-epoch optimization
// over the solver's trainable parameters, learning rate scheduling, periodic
// validation, and epoch-end metric aggregation.
type Trainer struct {
	solver    *Solver
	optimizer optimizer.Optimizer
	scheduler LRScheduler
	config    TrainerConfig
	history   *History
	metrics   []EpochMetrics
	baseLR    float64
}

// NewTrainer creates a trainer for the given solver and optimizer. A nil
// scheduler keeps the learning rate constant.
func NewTrainer(solver *Solver, opt optimizer.Optimizer, scheduler LRScheduler, config TrainerConfig) (*Trainer, error) {
	if solver == nil {
		return nil, fmt.Errorf("trainer requires a solver")
	}
	if opt == nil {
		return nil, fmt.Errorf("trainer requires an optimizer")
	}
	if config.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive, got %d", config.Epochs)
	}
	if scheduler == nil {
		scheduler = &ConstantLRScheduler{}
	}
	if config.Backward == nil {
		config.Backward = DataLossBackward
	}

	t := &Trainer{
		solver:    solver,
		optimizer: opt,
		scheduler: scheduler,
		config:    config,
		history:   NewHistory(),
		baseLR:    opt.GetLearningRate(),
	}
	// Route solver metrics into the trainer's history unless the caller
	// already supplied a logger.
	if _, ok := solver.logger.(NopLogger); ok {
		solver.logger = t.history
	}
	return t, nil
}

// History returns the metric history populated during training.
func (t *Trainer) History() *History {
	return t.history
}

// Metrics returns the per-epoch metrics recorded so far.
func (t *Trainer) Metrics() []EpochMetrics {
	out := make([]EpochMetrics, len(t.metrics))
	copy(out, t.metrics)
	return out
}

// Fit runs the complete training loop. The train batch is required; a nil
// validation batch disables validation regardless of ValidateEvery.
func (t *Trainer) Fit(trainBatch, validBatch []BatchItem) error {
	if len(trainBatch) == 0 {
		return fmt.Errorf("empty training batch")
	}

	params := t.solver.TrainableParameters()
	bestValidLoss := float64(1e10)
	patienceCounter := 0

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		epochStart := time.Now()

		lr := t.scheduler.GetLR(epoch, int(t.optimizer.GetStepCount()), t.baseLR)
		t.optimizer.UpdateLearningRate(lr)

		// Training phase
		t.solver.Model().Train()
		t.optimizer.ZeroGrad(params)

		loss, err := t.solver.TrainingStep(trainBatch)
		if err != nil {
			return fmt.Errorf("training epoch %d failed: %v", epoch, err)
		}
		trainLoss, err := loss.Item()
		if err != nil {
			return fmt.Errorf("training epoch %d failed: %v", epoch, err)
		}

		if err := t.config.Backward(t.solver, trainBatch); err != nil {
			return fmt.Errorf("backward pass failed at epoch %d: %v", epoch, err)
		}
		if err := t.optimizer.Step(params); err != nil {
			return fmt.Errorf("optimizer step failed at epoch %d: %v", epoch, err)
		}

		metrics := EpochMetrics{
			Epoch:        epoch,
			TrainLoss:    float64(trainLoss),
			LearningRate: lr,
		}

		// Validation phase
		if validBatch != nil && t.config.ValidateEvery > 0 && (epoch+1)%t.config.ValidateEvery == 0 {
			t.solver.Model().Eval()
			validLoss, err := t.solver.ValidationStep(validBatch)
			if err != nil {
				return fmt.Errorf("validation epoch %d failed: %v", epoch, err)
			}
			value, err := validLoss.Item()
			if err != nil {
				return fmt.Errorf("validation epoch %d failed: %v", epoch, err)
			}
			metrics.ValidLoss = float64(value)
			metrics.Validated = true

			if t.config.EarlyStopping {
				if metrics.ValidLoss < bestValidLoss {
					bestValidLoss = metrics.ValidLoss
					patienceCounter = 0
				} else {
					patienceCounter++
				}
			}
		}

		t.solver.SaveLogsAndRelease()
		t.history.EpochEnd()

		metrics.EpochDuration = time.Since(epochStart)
		t.metrics = append(t.metrics, metrics)

		if t.config.Verbose {
			t.printEpochSummary(metrics)
		}

		if t.config.EarlyStopping && patienceCounter >= t.config.Patience && t.config.Patience > 0 {
			if t.config.Verbose {
				fmt.Printf("Early stopping triggered after %d epochs\n", epoch+1)
			}
			break
		}
	}
	return nil
}

func (t *Trainer) printEpochSummary(m EpochMetrics) {
	if m.Validated {
		fmt.Printf("Epoch %d: train_loss=%.6f valid_loss=%.6f lr=%.2e (%v)\n",
			m.Epoch, m.TrainLoss, m.ValidLoss, m.LearningRate, m.EpochDuration.Round(time.Millisecond))
		return
	}
	fmt.Printf("Epoch %d: train_loss=%.6f lr=%.2e (%v)\n",
		m.Epoch, m.TrainLoss, m.LearningRate, m.EpochDuration.Round(time.Millisecond))
}
