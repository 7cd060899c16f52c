package service

import (
	"context"

	"LoadCast/internal/domain/models"
)

// Model is a loaded, read-only sequence regression model.
type Model interface {
	// Name identifies the loaded artifact; it changes whenever the weights do.
	Name() string
	// Infer returns one prediction per sample of a (batch, steps, 1) tensor.
	Infer(ctx context.Context, batch models.Batch) ([]float64, error)
}

// ModelProvider hands out the process-wide model, loading it on first use.
type ModelProvider interface {
	Model(ctx context.Context) (Model, error)
}
