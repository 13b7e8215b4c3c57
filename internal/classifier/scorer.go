package classifier

import (
	"math"
)

// Logits carries the raw output vectors of the classifier model, one per
// exported head, in the model's output order. NoLabelReason is produced by
// the model but never scored.
type Logits struct {
	TaskType            []float64
	CreativityScope     []float64
	Reasoning           []float64
	ContextualKnowledge []float64
	FewShots            []float64
	DomainKnowledge     []float64
	NoLabelReason       []float64
	ConstraintCount     []float64
}

// TaskTypePrediction is the argmax view of the task-type head. Secondary is
// empty when the runner-up probability falls below the suppression floor.
type TaskTypePrediction struct {
	Primary       string             `json:"task_type_1"`
	Secondary     string             `json:"task_type_2,omitempty"`
	Probability   float64            `json:"task_type_prob"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// ComplexityScores is the classifier's final output: one calibrated score
// per weighted head plus the aggregate used for routing. The aggregate is
// deliberately not clamped.
type ComplexityScores struct {
	TaskType            TaskTypePrediction `json:"task_type"`
	CreativityScope     float64            `json:"creativity_scope"`
	Reasoning           float64            `json:"reasoning"`
	ContextualKnowledge float64            `json:"contextual_knowledge"`
	FewShots            float64            `json:"number_of_few_shots"`
	DomainKnowledge     float64            `json:"domain_knowledge"`
	ConstraintCount     float64            `json:"constraint_ct"`
	Aggregate           float64            `json:"prompt_complexity_score"`
}

// Softmax converts logits to probabilities. The max logit is subtracted
// before exponentiating so large inputs cannot overflow. Empty input yields
// nil.
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// ScoreHead reduces one head's logits to a scalar: softmax, weighted sum
// over the head's class weights, divided by the head's divisor. A head with
// no table entry scores 0. The few-shots head floors to exactly 0 below
// fewShotFloor.
func ScoreHead(logits []float64, head Head) float64 {
	table, ok := headTables[head]
	if !ok {
		return 0
	}
	probs := Softmax(logits)
	n := len(probs)
	if len(table.weights) < n {
		n = len(table.weights)
	}
	var weighted float64
	for i := 0; i < n; i++ {
		weighted += probs[i] * table.weights[i]
	}
	score := weighted / table.divisor
	if head == HeadFewShots && score < fewShotFloor {
		return 0
	}
	return score
}

// PredictTaskType ranks the 12 task-type classes by probability. Ties break
// toward the lower index so the result is deterministic. Empty logits yield
// the zero prediction.
func PredictTaskType(logits []float64) TaskTypePrediction {
	probs := Softmax(logits)
	n := len(probs)
	if len(TaskTypes) < n {
		n = len(TaskTypes)
	}
	if n == 0 {
		return TaskTypePrediction{}
	}

	pred := TaskTypePrediction{Probabilities: make(map[string]float64, n)}
	for i := 0; i < n; i++ {
		pred.Probabilities[TaskTypes[i]] = probs[i]
	}

	best := 0
	for i := 1; i < n; i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	pred.Primary = TaskTypes[best]
	pred.Probability = probs[best]

	second := -1
	for i := 0; i < n; i++ {
		if i == best {
			continue
		}
		if second == -1 || probs[i] > probs[second] {
			second = i
		}
	}
	if second >= 0 && probs[second] >= secondaryTaskTypeFloor {
		pred.Secondary = TaskTypes[second]
	}
	return pred
}

// Predict converts a full set of head logits into ComplexityScores.
func Predict(l Logits) ComplexityScores {
	s := ComplexityScores{
		TaskType:            PredictTaskType(l.TaskType),
		CreativityScope:     ScoreHead(l.CreativityScope, HeadCreativityScope),
		Reasoning:           ScoreHead(l.Reasoning, HeadReasoning),
		ContextualKnowledge: ScoreHead(l.ContextualKnowledge, HeadContextualKnowledge),
		FewShots:            ScoreHead(l.FewShots, HeadFewShots),
		DomainKnowledge:     ScoreHead(l.DomainKnowledge, HeadDomainKnowledge),
		ConstraintCount:     ScoreHead(l.ConstraintCount, HeadConstraintCount),
	}
	s.Aggregate = aggCreativity*s.CreativityScope +
		aggReasoning*s.Reasoning +
		aggConstraint*s.ConstraintCount +
		aggDomainKnowledge*s.DomainKnowledge +
		aggContextualKnowledge*s.ContextualKnowledge +
		aggFewShots*s.FewShots
	return s
}
