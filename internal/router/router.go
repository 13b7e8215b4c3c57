package router

import (
	"context"
	"fmt"

	"github.com/xavjones8/On-Device-Models-Playground/internal/classifier"
	"github.com/xavjones8/On-Device-Models-Playground/internal/inference"
	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/tokenizer"
)

// Target names the processing path a prompt is dispatched to.
type Target string

const (
	// TargetLocal is the lightweight on-device model.
	TargetLocal Target = "LOCAL"
	// TargetRemote is the heavyweight hosted model.
	TargetRemote Target = "REMOTE"
)

// DefaultThreshold splits local from remote on the aggregate complexity score.
const DefaultThreshold = 0.5

// Decision is the outcome of routing one prompt.
type Decision struct {
	Target    Target                      `json:"target"`
	Threshold float64                     `json:"threshold"`
	Scores    classifier.ComplexityScores `json:"scores"`
}

// Router runs the classification pipeline (encode, infer, postprocess) and
// picks a processing path by comparing the aggregate complexity score
// against its threshold.
type Router struct {
	tok       *tokenizer.Tokenizer
	engine    inference.Engine
	threshold float64
}

func New(tok *tokenizer.Tokenizer, engine inference.Engine, threshold float64) *Router {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Router{tok: tok, engine: engine, threshold: threshold}
}

func (r *Router) Threshold() float64 { return r.threshold }

// Classify runs the full pipeline without making a routing decision.
func (r *Router) Classify(ctx context.Context, prompt string) (classifier.ComplexityScores, error) {
	timer := logger.StartOperation(ctx, "classify_prompt", "prompt_len", len(prompt))
	ctx = timer.GetContext()

	enc := r.tok.EncodePadded(prompt)
	logits, err := r.engine.Infer(ctx, enc.IDs, enc.Mask)
	if err != nil {
		timer.EndWithError(err)
		return classifier.ComplexityScores{}, fmt.Errorf("inference failed: %w", err)
	}

	scores := classifier.Predict(logits)
	logger.Classification(ctx, scores.TaskType.Primary, scores.Aggregate,
		"task_type_prob", scores.TaskType.Probability,
		"reasoning", scores.Reasoning,
		"creativity", scores.CreativityScope)
	timer.End("task_type", scores.TaskType.Primary, "aggregate", scores.Aggregate)
	return scores, nil
}

// Route classifies the prompt and dispatches on the aggregate score: below
// the threshold stays local, at or above goes remote.
func (r *Router) Route(ctx context.Context, prompt string) (Decision, error) {
	scores, err := r.Classify(ctx, prompt)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Target: TargetLocal, Threshold: r.threshold, Scores: scores}
	if scores.Aggregate >= r.threshold {
		d.Target = TargetRemote
	}
	logger.Route(ctx, string(d.Target), scores.TaskType.Primary, scores.Aggregate,
		"threshold", r.threshold)
	return d, nil
}
