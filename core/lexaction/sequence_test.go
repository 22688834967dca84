package lexaction_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/opal-lang/lexaction/core/lexaction"
)

func TestSequenceAppendIsPersistent(t *testing.T) {
	base := lexaction.NewSequence(lexaction.Type(3))
	longer := base.Append(lexaction.PushMode(1))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, longer.Len())
	assert.Equal(t, "type(3), pushMode(1)", longer.String())

	var empty *lexaction.Sequence
	assert.Equal(t, "skip", empty.Append(lexaction.Skip()).String())
}

func TestSequenceEquality(t *testing.T) {
	a := lexaction.NewSequence(lexaction.Skip(), lexaction.PushMode(2))
	b := lexaction.NewSequence().Append(lexaction.Skip()).Append(lexaction.PushMode(2))
	reordered := lexaction.NewSequence(lexaction.PushMode(2), lexaction.Skip())

	assert.True(t, a.Equals(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equals(reordered), "order must matter")
	assert.NotEqual(t, a.Hash(), reordered.Hash())

	var nilSeq *lexaction.Sequence
	assert.True(t, nilSeq.Equals(lexaction.NewSequence()))
	assert.Equal(t, nilSeq.Hash(), lexaction.NewSequence().Hash())
}

func TestSequenceBindOffsets(t *testing.T) {
	seq := lexaction.NewSequence(lexaction.Type(1), lexaction.Custom(2, 0))
	assert.True(t, seq.IsPositionDependent())

	bound := seq.BindOffsets(4)
	want := []lexaction.Entry{
		{Action: lexaction.Type(1)},
		{Action: lexaction.Custom(2, 0), Offset: 4, Bound: true},
	}
	if diff := cmp.Diff(want, bound.Entries(), cmp.Comparer(func(a, b lexaction.Action) bool { return a.Equals(b) })); diff != "" {
		t.Errorf("bound entries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "type(1), custom(2,0)@4", bound.String())

	// The original is untouched and differs structurally from the bound copy
	assert.False(t, seq.At(1).Bound)
	assert.False(t, seq.Equals(bound))
	assert.NotEqual(t, seq.Hash(), bound.Hash())

	// Already bound entries keep their first offset
	rebound := bound.BindOffsets(9)
	assert.Same(t, bound, rebound)
	assert.Equal(t, 4, rebound.At(1).Offset)

	// Nothing position dependent: no copy
	plain := lexaction.NewSequence(lexaction.Skip())
	assert.Same(t, plain, plain.BindOffsets(3))
}

func TestSequenceBoundOffsetsDistinguishHashes(t *testing.T) {
	seq := lexaction.NewSequence(lexaction.Custom(1, 1))
	assert.NotEqual(t, seq.BindOffsets(1).Hash(), seq.BindOffsets(2).Hash())
	assert.True(t, seq.BindOffsets(2).Equals(seq.BindOffsets(2)))
}

func TestSequenceActions(t *testing.T) {
	seq := lexaction.NewSequence(lexaction.Mode(1), lexaction.Custom(0, 0)).BindOffsets(2)
	assert.Equal(t, []lexaction.Action{lexaction.Mode(1), lexaction.Custom(0, 0)}, seq.Actions())
	assert.False(t, lexaction.NewSequence(lexaction.Mode(1)).IsPositionDependent())
}

func TestSequenceFromEntries(t *testing.T) {
	bound := lexaction.NewSequence(lexaction.Type(1), lexaction.Custom(2, 0)).BindOffsets(4)
	rebuilt := lexaction.FromEntries(bound.Entries()...)
	assert.True(t, bound.Equals(rebuilt))
	assert.Equal(t, bound.Hash(), rebuilt.Hash())

	// Stray offsets on unbound entries are cleared
	loose := lexaction.FromEntries(lexaction.Entry{Action: lexaction.Skip(), Offset: 9})
	assert.True(t, loose.Equals(lexaction.NewSequence(lexaction.Skip())))

	assert.Panics(t, func() {
		lexaction.FromEntries(lexaction.Entry{Action: lexaction.More(), Offset: 1, Bound: true})
	})
}
