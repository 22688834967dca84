package lexer

import (
	"github.com/opal-lang/lexaction/core/invariant"
	"github.com/opal-lang/lexaction/core/lexaction"
)

// Input is the live view of the character stream that the recognition engine
// exposes while a token is being committed. Only custom actions observe it.
type Input interface {
	// Index returns the current position in the stream.
	Index() int
	// Seek moves the stream to index.
	Seek(index int)
	// Text returns the characters in [start, stop], both inclusive.
	Text(start, stop int) string
}

// Tokenizer is the mutable runtime state of one tokenizer instance: its mode stack,
// the per-token State, the custom action bridge and the input view.
//
// A Tokenizer is owned by a single goroutine. The action table it references is
// shared read-only with every other tokenizer for the same grammar.
type Tokenizer struct {
	table      *lexaction.Table
	modes      *ModeStack
	state      State
	bridge     Bridge
	input      Input
	tokenStart int
}

var _ lexaction.Target = (*Tokenizer)(nil)

// TokenizerOpt configures a Tokenizer.
type TokenizerOpt func(*Tokenizer)

// WithBridge sets the bridge that custom actions are forwarded to.
func WithBridge(b Bridge) TokenizerOpt {
	return func(tz *Tokenizer) {
		tz.bridge = b
	}
}

// WithInput sets the input view exposed to custom actions.
func WithInput(in Input) TokenizerOpt {
	return func(tz *Tokenizer) {
		tz.input = in
	}
}

// NewTokenizer creates a tokenizer over the compiled action table of a grammar.
func NewTokenizer(table *lexaction.Table, opts ...TokenizerOpt) *Tokenizer {
	invariant.NotNil(table, "table")

	tz := &Tokenizer{
		table: table,
		modes: NewModeStack(),
		state: NewState(),
	}
	for _, opt := range opts {
		opt(tz)
	}
	return tz
}

// Table returns the shared action table.
func (tz *Tokenizer) Table() *lexaction.Table { return tz.table }

// Modes returns the mode stack.
func (tz *Tokenizer) Modes() *ModeStack { return tz.modes }

// State returns a copy of the per-token state.
func (tz *Tokenizer) State() State { return tz.state }

// Mode returns the current mode.
func (tz *Tokenizer) Mode() int { return tz.modes.Current() }

// BeginToken records where the next token starts and resets the per-token state.
// The mode stack carries over from token to token.
func (tz *Tokenizer) BeginToken(start int) {
	tz.tokenStart = start
	tz.state.Reset()
}

// TokenStart returns the input index where the current token began.
func (tz *Tokenizer) TokenStart() int { return tz.tokenStart }

// Offset returns the current input index, or -1 when no input is attached.
func (tz *Tokenizer) Offset() int {
	if tz.input == nil {
		return -1
	}
	return tz.input.Index()
}

// Text returns the text matched so far for the current token.
func (tz *Tokenizer) Text() string {
	if tz.input == nil {
		return ""
	}
	return tz.input.Text(tz.tokenStart, tz.input.Index()-1)
}

// Reset returns the tokenizer to its initial state.
func (tz *Tokenizer) Reset() {
	tz.modes.Reset()
	tz.state.Reset()
	tz.tokenStart = 0
}

// Skip marks the current token to be discarded.
func (tz *Tokenizer) Skip() { tz.state.Skip = true }

// More marks the current token to be continued.
func (tz *Tokenizer) More() { tz.state.More = true }

// SetType overrides the type of the emitted token.
func (tz *Tokenizer) SetType(tokenType int) { tz.state.Type = tokenType }

// SetChannel overrides the channel of the emitted token.
func (tz *Tokenizer) SetChannel(channel int) { tz.state.Channel = channel }

// SetMode replaces the current mode.
func (tz *Tokenizer) SetMode(mode int) { tz.modes.Set(mode) }

// PushMode pushes mode.
func (tz *Tokenizer) PushMode(mode int) { tz.modes.Push(mode) }

// PopMode pops the current mode; at depth 1 it does nothing.
func (tz *Tokenizer) PopMode() { tz.modes.Pop() }

// Action forwards a custom action to the bridge. Without a bridge, custom actions do
// nothing, like an unimplemented action hook in a generated lexer.
func (tz *Tokenizer) Action(ruleIndex, actionIndex int) error {
	if tz.bridge == nil {
		return nil
	}
	return tz.bridge.Invoke(ruleIndex, actionIndex, tz)
}
