package classifier

// Head identifies one weighted output head of the complexity classifier.
type Head int

const (
	HeadCreativityScope Head = iota
	HeadReasoning
	HeadContextualKnowledge
	HeadFewShots
	HeadDomainKnowledge
	HeadConstraintCount
)

func (h Head) String() string {
	switch h {
	case HeadCreativityScope:
		return "creativity_scope"
	case HeadReasoning:
		return "reasoning"
	case HeadContextualKnowledge:
		return "contextual_knowledge"
	case HeadFewShots:
		return "number_of_few_shots"
	case HeadDomainKnowledge:
		return "domain_knowledge"
	case HeadConstraintCount:
		return "constraint_ct"
	default:
		return "unknown"
	}
}

// headTable holds the per-class weights and normalizing divisor for one head.
// These values come from the model's exported metadata and must match the
// checkpoint exactly.
type headTable struct {
	weights []float64
	divisor float64
}

var headTables = map[Head]headTable{
	HeadCreativityScope:     {weights: []float64{2, 1, 0}, divisor: 2},
	HeadReasoning:           {weights: []float64{0, 1}, divisor: 1},
	HeadContextualKnowledge: {weights: []float64{0, 1}, divisor: 1},
	HeadFewShots:            {weights: []float64{0, 1, 2, 3, 4, 5}, divisor: 1},
	HeadDomainKnowledge:     {weights: []float64{3, 1, 2, 0}, divisor: 3},
	HeadConstraintCount:     {weights: []float64{1, 0}, divisor: 1},
}

// The few-shots head predicts an expected shot count; values this small read
// as zero shots.
const fewShotFloor = 0.05

// TaskTypes lists the classifier's task labels in model index order.
var TaskTypes = []string{
	"Brainstorming",
	"Chatbot",
	"Classification",
	"Closed QA",
	"Code Generation",
	"Extraction",
	"Open QA",
	"Other",
	"Rewrite",
	"Summarization",
	"Text Generation",
	"Unknown",
}

// Runner-up task labels below this probability are suppressed.
const secondaryTaskTypeFloor = 0.10

// Aggregate mixing weights over the six head scores, fixed by the exported
// model metadata.
const (
	aggCreativity          = 0.35
	aggReasoning           = 0.25
	aggConstraint          = 0.15
	aggDomainKnowledge     = 0.15
	aggContextualKnowledge = 0.05
	aggFewShots            = 0.05
)
