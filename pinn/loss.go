package pinn

import (
	"fmt"

	"github.com/tsawler/go-pinn/tensor"
)

// Loss interface defines methods that all loss functions must implement.
type Loss interface {
	Forward(predicted, target *tensor.Tensor) (*tensor.Tensor, error)
	Backward(predicted, target *tensor.Tensor) (*tensor.Tensor, error)
}

// MSELoss implements Mean Squared Error loss.
type MSELoss struct {
	reduction string // "mean" or "sum"
}

// NewMSELoss creates a new Mean Squared Error loss function.
func NewMSELoss(reduction string) *MSELoss {
	if reduction == "" {
		reduction = "mean"
	}
	return &MSELoss{reduction: reduction}
}

// Forward computes the MSE loss: L = (1/N) * sum((y_pred - y_true)^2)
func (mse *MSELoss) Forward(predicted, target *tensor.Tensor) (*tensor.Tensor, error) {
	diff, err := tensor.Sub(predicted, target)
	if err != nil {
		return nil, fmt.Errorf("subtraction failed: %v", err)
	}

	squared, err := tensor.Mul(diff, diff)
	if err != nil {
		return nil, fmt.Errorf("multiplication failed: %v", err)
	}

	loss, err := tensor.SumAll(squared)
	if err != nil {
		return nil, fmt.Errorf("sum computation failed: %v", err)
	}

	if mse.reduction == "mean" {
		loss, err = tensor.Scale(loss, 1.0/float64(predicted.NumElems))
		if err != nil {
			return nil, fmt.Errorf("mean computation failed: %v", err)
		}
	}
	return loss, nil
}

// Backward computes the gradient of MSE loss with respect to the prediction:
// d/d(pred) = 2 * (predicted - target) / N
func (mse *MSELoss) Backward(predicted, target *tensor.Tensor) (*tensor.Tensor, error) {
	diff, err := tensor.Sub(predicted, target)
	if err != nil {
		return nil, fmt.Errorf("gradient subtraction failed: %v", err)
	}

	grad, err := tensor.Scale(diff, 2.0)
	if err != nil {
		return nil, fmt.Errorf("gradient scaling failed: %v", err)
	}

	if mse.reduction == "mean" {
		grad, err = tensor.Scale(grad, 1.0/float64(predicted.NumElems))
		if err != nil {
			return nil, fmt.Errorf("gradient mean scaling failed: %v", err)
		}
	}
	return grad, nil
}
