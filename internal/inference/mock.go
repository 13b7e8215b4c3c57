package inference

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"github.com/xavjones8/On-Device-Models-Playground/internal/classifier"
)

// MockEngine provides deterministic pseudo-logits for testing and development.
// Logits are seeded from the unpadded input IDs, so the same prompt always
// classifies the same way and padding width does not matter.
type MockEngine struct {
	// Bias shifts every logit, handy for steering mock scores in tests.
	Bias float64
}

// NewMockEngine creates a new mock engine
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// Infer generates one plausible logit vector per model head
func (m *MockEngine) Infer(_ context.Context, ids, mask []int64) (classifier.Logits, error) {
	r := rand.New(rand.NewSource(seedFrom(ids, mask)))
	gen := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = r.Float64()*4 - 2 + m.Bias
		}
		return v
	}
	return classifier.Logits{
		TaskType:            gen(12),
		CreativityScope:     gen(3),
		Reasoning:           gen(2),
		ContextualKnowledge: gen(2),
		FewShots:            gen(6),
		DomainKnowledge:     gen(4),
		NoLabelReason:       gen(1),
		ConstraintCount:     gen(2),
	}, nil
}

// seedFrom hashes the masked prefix of the input, stopping at the first
// padding position.
func seedFrom(ids, mask []int64) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for i, id := range ids {
		if i < len(mask) && mask[i] == 0 {
			break
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
	}
	return int64(h.Sum64())
}
