package lexaction

import "fmt"

// Kind identifies one of the eight lexer commands.
type Kind uint8

const (
	KindSkip     Kind = iota // discard the current token
	KindMore                 // keep matching, fold text into the next token
	KindType                 // override the emitted token type
	KindChannel              // override the emitted token channel
	KindMode                 // replace the top of the mode stack
	KindPushMode             // push a mode
	KindPopMode              // pop a mode
	KindCustom               // forward to host code by (rule, action) index

	numKinds = iota
)

var kindNames = [numKinds]string{
	KindSkip:     "skip",
	KindMore:     "more",
	KindType:     "type",
	KindChannel:  "channel",
	KindMode:     "mode",
	KindPushMode: "pushMode",
	KindPopMode:  "popMode",
	KindCustom:   "custom",
}

var kindArity = [numKinds]int{
	KindType:     1,
	KindChannel:  1,
	KindMode:     1,
	KindPushMode: 1,
	KindCustom:   2,
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// String returns the grammar command name for the kind.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the eight declared kinds.
func (k Kind) Valid() bool {
	return k < numKinds
}

// Arity returns the number of payload fields carried by actions of this kind.
func (k Kind) Arity() int {
	if !k.Valid() {
		return 0
	}
	return kindArity[k]
}

// IsPositionDependent reports whether actions of this kind may observe the input
// position and therefore must run exactly when the token is committed.
func (k Kind) IsPositionDependent() bool {
	return k == KindCustom
}
