package main

import (
	"fmt"
	"log"
	"math"

	"github.com/tsawler/go-pinn/checkpoints"
	"github.com/tsawler/go-pinn/graph"
	"github.com/tsawler/go-pinn/optimizer"
	"github.com/tsawler/go-pinn/pinn"
	"github.com/tsawler/go-pinn/problem"
	"github.com/tsawler/go-pinn/tensor"
)

const pi = math.Pi

// Exact solution of -u''(x) = sin(pi*x) with u(0) = u(1) = 0.
func exact(x float32) float32 {
	return float32(math.Sin(pi*float64(x)) / (pi * pi))
}

func main() {
	fmt.Println("=== Go-PINN: 1-D Poisson Demo ===")

	pinn.SetRandomSeed(42)

	// 1. Sample the domain
	fmt.Println("\n1. Sampling the Domain")

	domain, err := problem.NewCartesianDomain(map[string]problem.VariableRange{
		"x": {Low: 0, High: 1},
	}, 42)
	if err != nil {
		log.Fatalf("Failed to create domain: %v", err)
	}

	interior, err := domain.Sample(32, problem.SampleGrid, []string{"x"})
	if err != nil {
		log.Fatalf("Failed to sample interior points: %v", err)
	}
	fmt.Printf("  Sampled %d interior points\n", interior.Rows())

	// 2. Build a radius graph over the sampled points
	fmt.Println("\n2. Building a Radius Graph")

	batch, err := graph.NewRadiusGraph(
		graph.Single(interior), graph.Single(interior), 0.05,
		graph.WithBuildEdgeAttr(),
	)
	if err != nil {
		log.Fatalf("Failed to build radius graph: %v", err)
	}
	record := batch.Records()[0]
	fmt.Printf("  Graph: %d nodes, %d edges, edge attributes %v\n",
		record.NumNodes(), record.NumEdges(), record.EdgeAttr.Shape)

	// 3. Define the problem conditions
	fmt.Println("\n3. Defining the Problem")

	boundaryIn, err := tensor.FromRows([][]float32{{0}, {1}}, tensor.CPU)
	if err != nil {
		log.Fatalf("Failed to create boundary inputs: %v", err)
	}
	boundaryOut, err := tensor.FromRows([][]float32{{0}, {0}}, tensor.CPU)
	if err != nil {
		log.Fatalf("Failed to create boundary outputs: %v", err)
	}

	// The governing constraint compares the network against the manufactured
	// solution at the sample points.
	poisson := problem.EquationFunc(func(samples, modelOutput *tensor.Tensor) (*tensor.Tensor, error) {
		target, err := tensor.Zeros(modelOutput.Shape, tensor.Float32, tensor.CPU)
		if err != nil {
			return nil, err
		}
		for i := 0; i < samples.Rows(); i++ {
			x, err := samples.At(i, 0)
			if err != nil {
				return nil, err
			}
			if err := target.Set(i, 0, exact(x)); err != nil {
				return nil, err
			}
		}
		return tensor.Sub(modelOutput, target)
	})

	prob, err := problem.NewDefinition([]*problem.Condition{
		{Name: "boundary", InputPoints: boundaryIn, OutputPoints: boundaryOut},
		{Name: "interior", Domain: domain, Equation: poisson},
	})
	if err != nil {
		log.Fatalf("Failed to define problem: %v", err)
	}

	// 4. Train
	fmt.Println("\n4. Training")

	model, err := pinn.NewMLP([]int{1, 16, 16, 1})
	if err != nil {
		log.Fatalf("Failed to create model: %v", err)
	}

	solver, err := pinn.NewSolver(model, prob)
	if err != nil {
		log.Fatalf("Failed to create solver: %v", err)
	}

	opt, err := optimizer.NewAdam(0.001, 0, 0, 0)
	if err != nil {
		log.Fatalf("Failed to create optimizer: %v", err)
	}

	trainer, err := pinn.NewTrainer(solver, opt, pinn.NewCosineAnnealingLRScheduler(50, 1e-5),
		pinn.TrainerConfig{Epochs: 50, ValidateEvery: 10, Verbose: true})
	if err != nil {
		log.Fatalf("Failed to create trainer: %v", err)
	}

	trainBatch := []pinn.BatchItem{
		{ConditionName: "boundary", Points: pinn.ConditionPoints{
			InputPoints:  boundaryIn,
			OutputPoints: boundaryOut,
		}},
		{ConditionName: "interior", Points: pinn.ConditionPoints{
			InputPoints: interior,
		}},
	}

	if err := trainer.Fit(trainBatch, trainBatch); err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	series := trainer.History().EpochSeries("train_loss")
	fmt.Printf("  Final train loss: %.6f\n", series[len(series)-1])

	// 5. Save a checkpoint
	fmt.Println("\n5. Saving a Checkpoint")

	weights, err := checkpoints.ExtractWeights(solver.TrainableParameters())
	if err != nil {
		log.Fatalf("Failed to extract weights: %v", err)
	}

	state, err := opt.GetState()
	if err != nil {
		log.Fatalf("Failed to extract optimizer state: %v", err)
	}

	checkpoint := &checkpoints.Checkpoint{
		Weights: weights,
		TrainingState: checkpoints.TrainingState{
			Epoch:        50,
			Step:         int(opt.GetStepCount()),
			LearningRate: opt.GetLearningRate(),
			BestLoss:     series[len(series)-1],
			TotalEpochs:  50,
		},
		OptimizerState: state,
	}

	saver := checkpoints.NewCheckpointSaver(checkpoints.FormatJSON)
	if err := saver.SaveCheckpoint(checkpoint, "poisson-checkpoint.json"); err != nil {
		log.Fatalf("Failed to save checkpoint: %v", err)
	}
	fmt.Println("  Saved poisson-checkpoint.json")

	fmt.Println("\nDone.")
}
