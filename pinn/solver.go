// Package pinn implements physics-informed training-step orchestration: per
// condition loss dispatch between supervised data and governing-equation
// residuals, inverse-problem parameter clamping, and epoch-level residual
// logging.
package pinn

import (
	"fmt"
	"sort"

	"github.com/tsawler/go-pinn/problem"
	"github.com/tsawler/go-pinn/tensor"
)

// ConditionPoints carries the sampled points of one condition within a batch.
// OutputPoints is nil for physics conditions.
type ConditionPoints struct {
	InputPoints  *tensor.Tensor
	OutputPoints *tensor.Tensor
}

// BatchItem pairs a condition name with its points. Batches are ordered; the
// order fixes the floating-point accumulation order of the step loss.
type BatchItem struct {
	ConditionName string
	Points        ConditionPoints
}

// PhysicsLossFunc computes the physics loss of one condition from its samples
// and governing equation. Concrete solver variants plug in here; the default
// is the mean squared residual.
type PhysicsLossFunc func(s *Solver, samples *tensor.Tensor, eq problem.Equation) (*tensor.Tensor, error)

// Solver orchestrates physics-informed training and validation steps over a
// problem definition. It owns no concurrency: the external training loop
// drives it one synchronous step at a time.
type Solver struct {
	model   Module
	prob    problem.Problem
	loss    Loss
	logger  Logger
	physics PhysicsLossFunc

	// Set when the problem is an inverse problem; nil otherwise.
	inverse problem.InverseProblem

	// Residual losses stored during the epoch, released at epoch end.
	loggedResLosses  []float64
	currentCondition string
	lastBatchSize    int
}

// SolverOption configures a Solver.
type SolverOption func(*Solver)

// WithLoss overrides the default mean squared error loss.
func WithLoss(loss Loss) SolverOption {
	return func(s *Solver) { s.loss = loss }
}

// WithLogger sets the metric sink. Defaults to NopLogger.
func WithLogger(logger Logger) SolverOption {
	return func(s *Solver) { s.logger = logger }
}

// WithPhysicsLoss overrides the default mean-squared-residual physics loss.
func WithPhysicsLoss(fn PhysicsLossFunc) SolverOption {
	return func(s *Solver) { s.physics = fn }
}

// NewSolver creates a physics-informed solver for the given model and
// problem. Inverse problems are detected once here; the training step then
// branches explicitly instead of probing capabilities per call.
func NewSolver(model Module, prob problem.Problem, opts ...SolverOption) (*Solver, error) {
	if model == nil {
		return nil, fmt.Errorf("solver requires a model")
	}
	if prob == nil {
		return nil, fmt.Errorf("solver requires a problem")
	}

	s := &Solver{
		model:   model,
		prob:    prob,
		loss:    NewMSELoss("mean"),
		logger:  NopLogger{},
		physics: defaultPhysicsLoss,
	}
	if inv, ok := prob.(problem.InverseProblem); ok {
		s.inverse = inv
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Model returns the solver's neural network.
func (s *Solver) Model() Module {
	return s.model
}

// Problem returns the solver's problem definition.
func (s *Solver) Problem() problem.Problem {
	return s.prob
}

// Loss returns the loss used for data conditions.
func (s *Solver) Loss() Loss {
	return s.loss
}

// IsInverse reports whether the solver trains an inverse problem.
func (s *Solver) IsInverse() bool {
	return s.inverse != nil
}

// CurrentConditionName returns the condition being processed, usable inside a
// PhysicsLossFunc to tell conditions apart.
func (s *Solver) CurrentConditionName() string {
	return s.currentCondition
}

// TrainableParameters returns the model parameters plus, for inverse problems,
// the unknown problem parameters in name order, so a single optimizer updates
// both with stable buffer indices.
func (s *Solver) TrainableParameters() []*tensor.Tensor {
	params := s.model.Parameters()
	if s.inverse == nil {
		return params
	}
	unknowns := s.inverse.UnknownParameters()
	names := make([]string, 0, len(unknowns))
	for name := range unknowns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		params = append(params, unknowns[name])
	}
	return params
}

// TrainingStep runs one physics-informed training step: per-condition loss
// dispatch, inverse-parameter clamping, and step-loss logging. It returns the
// sum of the per-condition losses.
func (s *Solver) TrainingStep(batch []BatchItem) (*tensor.Tensor, error) {
	total, err := s.step(batch)
	if err != nil {
		return nil, err
	}

	// Clamp unknown parameters of inverse problems after every step.
	if err := s.clampParams(); err != nil {
		return nil, err
	}

	value, err := total.Item()
	if err != nil {
		return nil, err
	}
	s.logger.Log("train_loss", float64(value), LogOptions{
		ProgBar:   true,
		OnEpoch:   true,
		BatchSize: batchSize(batch),
		SyncDist:  true,
	})
	return total, nil
}

// ValidationStep runs one validation step: the same per-condition dispatch as
// TrainingStep, without parameter clamping.
func (s *Solver) ValidationStep(batch []BatchItem) (*tensor.Tensor, error) {
	total, err := s.step(batch)
	if err != nil {
		return nil, err
	}

	value, err := total.Item()
	if err != nil {
		return nil, err
	}
	s.logger.Log("val_loss", float64(value), LogOptions{
		ProgBar:   true,
		OnEpoch:   true,
		BatchSize: batchSize(batch),
		SyncDist:  true,
	})
	return total, nil
}

func (s *Solver) step(batch []BatchItem) (*tensor.Tensor, error) {
	s.lastBatchSize = batchSize(batch)

	conditionLosses := make([]*tensor.Tensor, 0, len(batch))
	for _, item := range batch {
		if item.Points.InputPoints == nil {
			return nil, fmt.Errorf("condition %q: missing input points", item.ConditionName)
		}
		s.currentCondition = item.ConditionName

		var (
			loss *tensor.Tensor
			err  error
		)
		if item.Points.OutputPoints != nil {
			loss, err = s.LossData(item.Points.InputPoints, item.Points.OutputPoints)
		} else {
			condition, ok := s.prob.Conditions()[item.ConditionName]
			if !ok {
				return nil, fmt.Errorf("unknown condition %q", item.ConditionName)
			}
			if condition.Equation == nil {
				return nil, fmt.Errorf("condition %q has neither output points nor an equation", item.ConditionName)
			}
			item.Points.InputPoints.SetRequiresGrad(true)
			loss, err = s.physics(s, item.Points.InputPoints, condition.Equation)
		}
		if err != nil {
			return nil, fmt.Errorf("condition %q: %v", item.ConditionName, err)
		}
		conditionLosses = append(conditionLosses, loss)
	}
	s.currentCondition = ""

	return sumLosses(conditionLosses)
}

// LossData computes the supervised data loss: model output on the inputs
// compared against the known outputs.
func (s *Solver) LossData(inputPoints, outputPoints *tensor.Tensor) (*tensor.Tensor, error) {
	predicted, err := s.model.Forward(inputPoints)
	if err != nil {
		return nil, err
	}
	return s.loss.Forward(predicted, outputPoints)
}

// ComputeResidual evaluates the governing equation's residual at the samples.
// For inverse problems with a parametric equation, the learnable parameters
// are passed explicitly; every other case uses the two-argument form.
func (s *Solver) ComputeResidual(samples *tensor.Tensor, eq problem.Equation) (*tensor.Tensor, error) {
	output, err := s.model.Forward(samples)
	if err != nil {
		return nil, err
	}

	if s.inverse != nil {
		if peq, ok := eq.(problem.ParametricEquation); ok {
			return peq.ResidualWithParams(samples, output, s.inverse.UnknownParameters())
		}
	}
	return eq.Residual(samples, output)
}

// defaultPhysicsLoss is the vanilla PINN physics loss: the mean squared
// residual, stored in the epoch residual log under the current condition.
func defaultPhysicsLoss(s *Solver, samples *tensor.Tensor, eq problem.Equation) (*tensor.Tensor, error) {
	residual, err := s.ComputeResidual(samples, eq)
	if err != nil {
		return nil, err
	}

	zeros, err := tensor.Zeros(residual.Shape, residual.DType, residual.Device)
	if err != nil {
		return nil, err
	}
	loss, err := s.loss.Forward(residual, zeros)
	if err != nil {
		return nil, err
	}

	value, err := loss.Item()
	if err != nil {
		return nil, err
	}
	s.StoreLog(float64(value))
	return loss, nil
}

// StoreLog records a residual loss for the condition currently being
// processed and keeps it for the epoch-end mean.
func (s *Solver) StoreLog(lossValue float64) {
	size := s.lastBatchSize
	if size <= 0 {
		size = 1
	}
	s.logger.Log(s.currentCondition+"_loss", lossValue, LogOptions{
		ProgBar:   true,
		OnEpoch:   true,
		OnStep:    true,
		BatchSize: size,
	})
	s.loggedResLosses = append(s.loggedResLosses, lossValue)
}

// SaveLogsAndRelease logs the mean of the residual losses stored during the
// epoch under the synthetic condition name "mean", then clears the
// accumulator. Call at every epoch end.
func (s *Solver) SaveLogsAndRelease() {
	if len(s.loggedResLosses) == 0 {
		return
	}
	sum := 0.0
	for _, v := range s.loggedResLosses {
		sum += v
	}
	s.currentCondition = "mean"
	s.StoreLog(sum / float64(len(s.loggedResLosses)))
	s.currentCondition = ""
	s.loggedResLosses = s.loggedResLosses[:0]
}

// clampParams pulls every unknown parameter of an inverse problem into its
// declared range, in place. Forward problems are a no-op.
func (s *Solver) clampParams() error {
	if s.inverse == nil {
		return nil
	}
	for name, param := range s.inverse.UnknownParameters() {
		low, high, err := s.inverse.ParameterRange(name)
		if err != nil {
			return fmt.Errorf("clamping %q: %v", name, err)
		}
		if err := param.ClampInPlace(low, high); err != nil {
			return fmt.Errorf("clamping %q: %v", name, err)
		}
	}
	return nil
}

// batchSize counts the input points across every condition in the batch.
func batchSize(batch []BatchItem) int {
	total := 0
	for _, item := range batch {
		if item.Points.InputPoints != nil {
			total += item.Points.InputPoints.Rows()
		}
	}
	return total
}

func sumLosses(losses []*tensor.Tensor) (*tensor.Tensor, error) {
	if len(losses) == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	total, err := losses[0].Clone()
	if err != nil {
		return nil, err
	}
	for _, loss := range losses[1:] {
		total, err = tensor.Add(total, loss)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}
