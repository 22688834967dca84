package lexaction

import "github.com/opal-lang/lexaction/core/invariant"

// Target is the tokenizer surface that actions mutate.
//
// Implementations own their state exclusively; Execute calls Target methods
// synchronously and never retains the Target.
type Target interface {
	Skip()
	More()
	SetType(tokenType int)
	SetChannel(channel int)
	SetMode(mode int)
	PushMode(mode int)
	PopMode()

	// Action forwards a custom action to host code. Errors are returned to the
	// caller of Execute unchanged.
	Action(ruleIndex, actionIndex int) error
}

// Execute applies the action to t. Built-in commands never fail; a custom action
// returns whatever the host returned, unwrapped.
func (a Action) Execute(t Target) error {
	switch a.kind {
	case KindSkip:
		t.Skip()
	case KindMore:
		t.More()
	case KindType:
		t.SetType(a.a)
	case KindChannel:
		t.SetChannel(a.a)
	case KindMode:
		t.SetMode(a.a)
	case KindPushMode:
		t.PushMode(a.a)
	case KindPopMode:
		t.PopMode()
	case KindCustom:
		return t.Action(a.a, a.b)
	default:
		invariant.Unreachable("action kind %s", a.kind)
	}
	return nil
}
