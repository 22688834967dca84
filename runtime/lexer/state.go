package lexer

import "github.com/antlr4-go/antlr/v4"

const (
	// InvalidType marks a token type that no action has overridden.
	InvalidType = antlr.TokenInvalidType

	// DefaultChannel is the channel tokens are emitted on unless overridden.
	DefaultChannel = antlr.TokenDefaultChannel

	// HiddenChannel is the conventional channel for whitespace and comments.
	HiddenChannel = antlr.TokenHiddenChannel
)

// State holds the per-token overrides set by actions. The engine reads it after the
// winning sequence has run and resets it before the next token.
type State struct {
	Type    int  // pending type override, InvalidType if none
	Channel int  // channel for the emitted token
	Skip    bool // discard the token
	More    bool // keep matching; fold the text into the next token
}

// NewState returns the per-token defaults.
func NewState() State {
	return State{Type: InvalidType, Channel: DefaultChannel}
}

// Reset restores the per-token defaults.
func (s *State) Reset() {
	*s = NewState()
}

// HasType reports whether a type action has overridden the token type.
func (s State) HasType() bool {
	return s.Type != InvalidType
}
