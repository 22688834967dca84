// Package lexaction defines the lexer action commands a recognition engine attaches
// to token rules: skip, more, type, channel, mode, pushMode, popMode and custom.
//
// An Action is an immutable value. Equality and hashing depend only on the kind and
// payload, never on where the value was built, so one canonical instance can be shared
// by every grammar position that carries the same command (see Builder and Table).
// Actions, Sequences and Tables are safe for concurrent reads; executing an action
// mutates only the Target it is given.
package lexaction

import (
	"strconv"
	"strings"

	"github.com/opal-lang/lexaction/core/murmur"
)

// Action is one lexer command with its kind-specific payload.
//
// Unused payload fields are always zero, so two Actions compare equal with == exactly
// when they have the same kind and payload. The zero value is Skip().
type Action struct {
	kind Kind
	a    int // type, channel, mode or rule index
	b    int // action index (custom only)
}

// Skip discards the current token.
func Skip() Action { return Action{kind: KindSkip} }

// More restarts recognition without emitting a token; the matched text carries over.
func More() Action { return Action{kind: KindMore} }

// Type overrides the type of the emitted token.
func Type(tokenType int) Action { return Action{kind: KindType, a: tokenType} }

// Channel overrides the channel of the emitted token.
func Channel(channel int) Action { return Action{kind: KindChannel, a: channel} }

// Mode replaces the current mode (the top of the mode stack).
func Mode(mode int) Action { return Action{kind: KindMode, a: mode} }

// PushMode pushes mode onto the mode stack.
func PushMode(mode int) Action { return Action{kind: KindPushMode, a: mode} }

// PopMode pops the mode stack. Popping the last mode is a no-op.
func PopMode() Action { return Action{kind: KindPopMode} }

// Custom forwards to host code identified by rule and action index.
func Custom(ruleIndex, actionIndex int) Action {
	return Action{kind: KindCustom, a: ruleIndex, b: actionIndex}
}

// Kind returns the command kind.
func (a Action) Kind() Kind { return a.kind }

// TokenType returns the payload of a type action, 0 otherwise.
func (a Action) TokenType() int { return a.payload(KindType) }

// ChannelValue returns the payload of a channel action, 0 otherwise.
func (a Action) ChannelValue() int { return a.payload(KindChannel) }

// ModeValue returns the payload of a mode or pushMode action, 0 otherwise.
func (a Action) ModeValue() int {
	if a.kind == KindMode || a.kind == KindPushMode {
		return a.a
	}
	return 0
}

// RuleIndex returns the rule index of a custom action, 0 otherwise.
func (a Action) RuleIndex() int { return a.payload(KindCustom) }

// ActionIndex returns the action index of a custom action, 0 otherwise.
func (a Action) ActionIndex() int {
	if a.kind == KindCustom {
		return a.b
	}
	return 0
}

func (a Action) payload(k Kind) int {
	if a.kind == k {
		return a.a
	}
	return 0
}

// Fields returns the payload in declared order. The slice length equals Kind().Arity().
func (a Action) Fields() []int {
	switch a.kind.Arity() {
	case 1:
		return []int{a.a}
	case 2:
		return []int{a.a, a.b}
	default:
		return nil
	}
}

// IsPositionDependent reports whether the action may observe the matched text or the
// input offset. Only custom actions do; every built-in command is fully determined by
// its payload and may be evaluated ahead of the token commit.
func (a Action) IsPositionDependent() bool {
	return a.kind.IsPositionDependent()
}

// Equals reports whether a and other are the same command with the same payload.
func (a Action) Equals(other Action) bool {
	return a == other
}

// Hash returns the structural hash: the kind tag, then each payload field in declared
// order, finished with the number of words mixed in.
func (a Action) Hash() uint32 {
	h := murmur.Initialize(murmur.DefaultSeed)
	h = murmur.Update(h, int(a.kind))
	words := 1
	switch a.kind.Arity() {
	case 2:
		h = murmur.Update(h, a.a)
		h = murmur.Update(h, a.b)
		words += 2
	case 1:
		h = murmur.Update(h, a.a)
		words++
	}
	return murmur.Finish(h, words)
}

// String renders the action the way it is written after -> in a grammar,
// for example "skip", "pushMode(2)" or "custom(3,7)".
func (a Action) String() string {
	fields := a.Fields()
	if len(fields) == 0 {
		return a.kind.String()
	}

	var b strings.Builder
	b.WriteString(a.kind.String())
	b.WriteByte('(')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(f))
	}
	b.WriteByte(')')
	return b.String()
}
