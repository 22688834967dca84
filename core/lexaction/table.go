package lexaction

import (
	"fmt"

	"github.com/opal-lang/lexaction/core/invariant"
)

// Builder interns actions and sequences while grammar tables load.
//
// Equal values always receive the same index, so memory is bounded by the number of
// distinct commands rather than by how often they occur on transitions. A Builder is
// not safe for concurrent use; call Build to obtain a shareable Table.
type Builder struct {
	actions     []Action
	actionIndex map[Action]int

	sequences []*Sequence
	buckets   map[uint32][]int // sequence hash -> candidate indices

	actionRequests   int
	sequenceRequests int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		actionIndex: make(map[Action]int),
		buckets:     make(map[uint32][]int),
	}
}

// InternAction returns the canonical index for a, adding it if unseen.
func (b *Builder) InternAction(a Action) int {
	b.actionRequests++
	return b.intern(a)
}

func (b *Builder) intern(a Action) int {
	invariant.Precondition(a.Kind().Valid(), "cannot intern action of kind %s", a.Kind())
	if i, ok := b.actionIndex[a]; ok {
		return i
	}
	i := len(b.actions)
	b.actions = append(b.actions, a)
	b.actionIndex[a] = i
	return i
}

// InternSequence returns the canonical index for seq, adding it if unseen.
// The actions of seq are interned as well.
func (b *Builder) InternSequence(seq *Sequence) int {
	invariant.NotNil(seq, "seq")
	b.sequenceRequests++

	h := seq.Hash()
	for _, i := range b.buckets[h] {
		if b.sequences[i].Equals(seq) {
			return i
		}
	}

	// Every member also lands in the action table so sequences can be stored as indices
	for _, e := range seq.entries {
		b.intern(e.Action)
	}

	i := len(b.sequences)
	b.sequences = append(b.sequences, seq)
	b.buckets[h] = append(b.buckets[h], i)
	return i
}

// InternActions interns actions as one sequence and returns its index.
func (b *Builder) InternActions(actions ...Action) int {
	return b.InternSequence(NewSequence(actions...))
}

// Build returns an immutable snapshot of everything interned so far.
func (b *Builder) Build() *Table {
	t := &Table{
		actions:   make([]Action, len(b.actions)),
		index:     make(map[Action]int, len(b.actions)),
		sequences: make([]*Sequence, len(b.sequences)),
		stats: Stats{
			Actions:          len(b.actions),
			Sequences:        len(b.sequences),
			ActionRequests:   b.actionRequests,
			SequenceRequests: b.sequenceRequests,
		},
	}
	copy(t.actions, b.actions)
	copy(t.sequences, b.sequences)
	for a, i := range b.actionIndex {
		t.index[a] = i
	}
	return t
}

// Stats summarizes how much interning saved.
type Stats struct {
	Actions          int // distinct actions
	Sequences        int // distinct sequences
	ActionRequests   int // InternAction calls made by the loader
	SequenceRequests int // InternSequence calls made by the loader
}

func (s Stats) String() string {
	return fmt.Sprintf("%d actions (%d requests), %d sequences (%d requests)",
		s.Actions, s.ActionRequests, s.Sequences, s.SequenceRequests)
}

// Table is the compiled, read-only action table of one grammar. It is built once
// when the grammar loads and shared by reference with every tokenizer for that
// grammar; concurrent reads need no synchronization.
type Table struct {
	actions   []Action
	index     map[Action]int
	sequences []*Sequence
	stats     Stats
}

// NumActions returns the number of distinct actions.
func (t *Table) NumActions() int { return len(t.actions) }

// NumSequences returns the number of distinct sequences.
func (t *Table) NumSequences() int { return len(t.sequences) }

// Action returns the action with index i.
func (t *Table) Action(i int) Action {
	invariant.Precondition(i >= 0 && i < len(t.actions), "action index %d out of range [0, %d)", i, len(t.actions))
	return t.actions[i]
}

// Sequence returns the sequence with index i.
func (t *Table) Sequence(i int) *Sequence {
	invariant.Precondition(i >= 0 && i < len(t.sequences), "sequence index %d out of range [0, %d)", i, len(t.sequences))
	return t.sequences[i]
}

// ActionIndex returns the index of a, or -1 if the table does not hold it.
func (t *Table) ActionIndex(a Action) int {
	if i, ok := t.index[a]; ok {
		return i
	}
	return -1
}

// Stats returns the interning statistics recorded when the table was built.
func (t *Table) Stats() Stats { return t.stats }
