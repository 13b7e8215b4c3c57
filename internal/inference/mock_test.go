package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEngineDeterministic(t *testing.T) {
	m := NewMockEngine()
	ids := []int64{1, 4, 5, 2}
	mask := []int64{1, 1, 1, 1}

	a, err := m.Infer(context.Background(), ids, mask)
	require.NoError(t, err)
	b, err := m.Infer(context.Background(), ids, mask)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMockEngineHeadSizes(t *testing.T) {
	m := NewMockEngine()
	l, err := m.Infer(context.Background(), []int64{1, 2}, []int64{1, 1})
	require.NoError(t, err)

	assert.Len(t, l.TaskType, 12)
	assert.Len(t, l.CreativityScope, 3)
	assert.Len(t, l.Reasoning, 2)
	assert.Len(t, l.ContextualKnowledge, 2)
	assert.Len(t, l.FewShots, 6)
	assert.Len(t, l.DomainKnowledge, 4)
	assert.Len(t, l.NoLabelReason, 1)
	assert.Len(t, l.ConstraintCount, 2)
}

func TestMockEnginePaddingInvariant(t *testing.T) {
	m := NewMockEngine()

	short := make([]int64, 8)
	shortMask := make([]int64, 8)
	long := make([]int64, 128)
	longMask := make([]int64, 128)
	for i, id := range []int64{1, 4, 5, 2} {
		short[i], shortMask[i] = id, 1
		long[i], longMask[i] = id, 1
	}

	a, err := m.Infer(context.Background(), short, shortMask)
	require.NoError(t, err)
	b, err := m.Infer(context.Background(), long, longMask)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMockEngineVariesByInput(t *testing.T) {
	m := NewMockEngine()

	a, err := m.Infer(context.Background(), []int64{1, 4, 2}, []int64{1, 1, 1})
	require.NoError(t, err)
	b, err := m.Infer(context.Background(), []int64{1, 5, 2}, []int64{1, 1, 1})
	require.NoError(t, err)
	assert.NotEqual(t, a.TaskType, b.TaskType)
}
