package lexer

import (
	"github.com/antlr4-go/antlr/v4"

	"github.com/opal-lang/lexaction/core/invariant"
)

// DefaultMode is the mode every tokenizer starts in.
const DefaultMode = antlr.LexerDefaultMode

// ModeStack is the per-tokenizer stack of lexical modes. The current mode is the top
// entry. The stack always holds at least one entry; popping the last one is a no-op.
//
// Push is unbounded: a grammar that pushes without ever popping grows the stack for as
// long as input keeps matching.
type ModeStack struct {
	modes      []int
	underflows int
}

// NewModeStack returns a stack holding only DefaultMode.
func NewModeStack() *ModeStack {
	modes := make([]int, 1, 8)
	modes[0] = DefaultMode
	return &ModeStack{modes: modes}
}

// Current returns the top of the stack.
func (s *ModeStack) Current() int {
	return s.modes[len(s.modes)-1]
}

// Depth returns the number of entries, always at least 1.
func (s *ModeStack) Depth() int {
	return len(s.modes)
}

// Push makes mode current, keeping the previous mode beneath it.
func (s *ModeStack) Push(mode int) {
	s.modes = append(s.modes, mode)
}

// Pop removes the current mode and reports whether it did. At depth 1 nothing is
// removed and the underflow counter is incremented.
func (s *ModeStack) Pop() bool {
	if len(s.modes) == 1 {
		s.underflows++
		return false
	}
	s.modes = s.modes[:len(s.modes)-1]
	invariant.Postcondition(len(s.modes) > 0, "mode stack must never be empty")
	return true
}

// Set replaces the current mode. Entries below the top are unchanged; at depth 1 the
// bottom entry itself is replaced.
func (s *ModeStack) Set(mode int) {
	s.modes[len(s.modes)-1] = mode
}

// Snapshot returns the entries bottom first.
func (s *ModeStack) Snapshot() []int {
	out := make([]int, len(s.modes))
	copy(out, s.modes)
	return out
}

// Restore rewinds the stack to entries taken with Snapshot and sets the underflow
// counter back to underflows.
func (s *ModeStack) Restore(entries []int, underflows int) {
	invariant.Precondition(len(entries) > 0, "mode stack snapshot must not be empty")
	s.modes = append(s.modes[:0], entries...)
	s.underflows = underflows
}

// Underflows returns how many pops were ignored because only one mode was left.
// A non-zero count usually means the grammar pops more often than it pushes.
func (s *ModeStack) Underflows() int {
	return s.underflows
}

// Reset returns the stack to [DefaultMode] and clears the underflow counter.
func (s *ModeStack) Reset() {
	s.modes = s.modes[:1]
	s.modes[0] = DefaultMode
	s.underflows = 0
}
