package lexaction

import (
	"strconv"
	"strings"

	"github.com/opal-lang/lexaction/core/invariant"
	"github.com/opal-lang/lexaction/core/murmur"
)

// Entry is one action in a Sequence.
//
// A bound entry records where, relative to the start of the token, a
// position-dependent action was reached during matching. The executor moves the input
// to that position before running it, so the action observes the same offset it would
// have seen had it run at that point of the match.
type Entry struct {
	Action Action
	Offset int
	Bound  bool
}

// Hash returns the entry hash. Unbound entries hash like their action.
func (e Entry) Hash() uint32 {
	if !e.Bound {
		return e.Action.Hash()
	}
	h := murmur.Initialize(murmur.DefaultSeed)
	h = murmur.Update(h, e.Offset)
	h = murmur.UpdateHash(h, e.Action.Hash())
	return murmur.Finish(h, 2)
}

// Sequence is the ordered list of actions attached along one recognition path.
// Sequences are immutable; Append and BindOffsets return new values.
type Sequence struct {
	entries []Entry
	hash    uint32
}

// NewSequence builds an unbound sequence from actions in attachment order.
func NewSequence(actions ...Action) *Sequence {
	entries := make([]Entry, len(actions))
	for i, a := range actions {
		entries[i] = Entry{Action: a}
	}
	return newSequence(entries)
}

// FromEntries builds a sequence from explicit entries, as read back from a stored
// table. Only position-dependent entries may be bound; unbound offsets are cleared.
func FromEntries(entries ...Entry) *Sequence {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		invariant.Precondition(!e.Bound || e.Action.IsPositionDependent(),
			"entry %d: %s cannot be bound to an offset", i, e.Action)
		if !e.Bound {
			e.Offset = 0
		}
		out[i] = e
	}
	return newSequence(out)
}

func newSequence(entries []Entry) *Sequence {
	h := murmur.Initialize(murmur.DefaultSeed)
	for _, e := range entries {
		h = murmur.UpdateHash(h, e.Hash())
	}
	return &Sequence{
		entries: entries,
		hash:    murmur.Finish(h, len(entries)),
	}
}

// Append returns a sequence with a added at the end. A nil receiver is treated as
// the empty sequence.
func (s *Sequence) Append(a Action) *Sequence {
	if s == nil {
		return NewSequence(a)
	}
	entries := make([]Entry, len(s.entries), len(s.entries)+1)
	copy(entries, s.entries)
	return newSequence(append(entries, Entry{Action: a}))
}

// BindOffsets binds every unbound position-dependent entry to offset, the distance
// from the token start to the input position where the entries were reached.
// Entries that are already bound keep their offset. If nothing needs binding the
// receiver is returned unchanged.
func (s *Sequence) BindOffsets(offset int) *Sequence {
	if s == nil {
		return nil
	}

	var entries []Entry
	for i, e := range s.entries {
		if e.Bound || !e.Action.IsPositionDependent() {
			continue
		}
		if entries == nil {
			entries = make([]Entry, len(s.entries))
			copy(entries, s.entries)
		}
		entries[i] = Entry{Action: e.Action, Offset: offset, Bound: true}
	}
	if entries == nil {
		return s
	}
	return newSequence(entries)
}

// Len returns the number of entries.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// At returns the entry at index i.
func (s *Sequence) At(i int) Entry {
	return s.entries[i]
}

// Entries returns a copy of the entries.
func (s *Sequence) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Actions returns the actions in order, dropping offsets.
func (s *Sequence) Actions() []Action {
	if s == nil {
		return nil
	}
	out := make([]Action, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Action
	}
	return out
}

// IsPositionDependent reports whether any entry needs the input position.
func (s *Sequence) IsPositionDependent() bool {
	if s == nil {
		return false
	}
	for _, e := range s.entries {
		if e.Action.IsPositionDependent() {
			return true
		}
	}
	return false
}

// Hash returns the structural hash of the sequence.
func (s *Sequence) Hash() uint32 {
	if s == nil {
		return murmur.Finish(murmur.Initialize(murmur.DefaultSeed), 0)
	}
	return s.hash
}

// Equals reports whether both sequences hold equal entries in the same order.
func (s *Sequence) Equals(other *Sequence) bool {
	if s == other {
		return true
	}
	if s.Len() != other.Len() || s.Hash() != other.Hash() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// String renders the sequence as a grammar command list, e.g. "skip, pushMode(2)".
// Bound entries carry their offset: "custom(1,0)@3".
func (s *Sequence) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, len(s.entries))
	for i, e := range s.entries {
		parts[i] = e.Action.String()
		if e.Bound {
			parts[i] += "@" + strconv.Itoa(e.Offset)
		}
	}
	return strings.Join(parts, ", ")
}
