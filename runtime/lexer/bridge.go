package lexer

// Bridge forwards custom actions to host code.
//
// The runtime stores only the rule and action index of a custom action; what the pair
// means is entirely up to the host. Errors returned by Invoke reach the caller of the
// executor unchanged.
type Bridge interface {
	Invoke(ruleIndex, actionIndex int, tz *Tokenizer) error
}

// BridgeFunc adapts a function to Bridge.
type BridgeFunc func(ruleIndex, actionIndex int, tz *Tokenizer) error

// Invoke calls f.
func (f BridgeFunc) Invoke(ruleIndex, actionIndex int, tz *Tokenizer) error {
	return f(ruleIndex, actionIndex, tz)
}

// ActionFunc is the body of one embedded grammar action.
type ActionFunc func(tz *Tokenizer) error

// Dispatch is a Bridge that looks actions up by (rule, action) index, the way a
// generated lexer switches on them. Pairs with no registered function are ignored.
type Dispatch struct {
	actions map[[2]int]ActionFunc
}

// NewDispatch creates an empty dispatch table.
func NewDispatch() *Dispatch {
	return &Dispatch{actions: make(map[[2]int]ActionFunc)}
}

// Register sets the function for a rule and action index, replacing any previous one.
func (d *Dispatch) Register(ruleIndex, actionIndex int, fn ActionFunc) *Dispatch {
	d.actions[[2]int{ruleIndex, actionIndex}] = fn
	return d
}

// Invoke runs the registered function, if any.
func (d *Dispatch) Invoke(ruleIndex, actionIndex int, tz *Tokenizer) error {
	fn, ok := d.actions[[2]int{ruleIndex, actionIndex}]
	if !ok {
		return nil
	}
	return fn(tz)
}
