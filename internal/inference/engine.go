package inference

import (
	"context"

	"github.com/xavjones8/On-Device-Models-Playground/internal/classifier"
)

// Engine defines the interface to the platform inference runtime that
// executes the classifier model (Core ML, ONNX Runtime, etc.)
// This allows multiple implementations (platform bindings, remote inference, mock)
type Engine interface {
	// Infer runs one forward pass over a fixed-length token ID sequence and
	// its attention mask, returning raw logits for every model head
	Infer(ctx context.Context, ids, mask []int64) (classifier.Logits, error)
}
