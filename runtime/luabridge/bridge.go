// Package luabridge runs custom lexer actions as Lua functions.
//
// A script defines one global entry function, by default
//
//	function action(rule, index, lexer) ... end
//
// which receives the rule and action index of every custom action the executor
// reaches. The lexer argument exposes the tokenizer:
//
//	lexer.text()        matched text of the current token
//	lexer.offset()      current input index
//	lexer.mode()        current mode
//	lexer.skip()        lexer.more()
//	lexer.type(n)       lexer.channel(n)
//	lexer.setMode(n)    lexer.pushMode(n)    lexer.popMode()
//
// Both lexer.f(n) and lexer:f(n) call forms work. Scripts run with only the base,
// table, string and math libraries.
package luabridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/opal-lang/lexaction/runtime/lexer"
)

// DefaultEntry is the global function the bridge calls.
const DefaultEntry = "action"

// ErrClosed is returned when invoking a closed bridge.
var ErrClosed = errors.New("lua bridge is closed")

// Bridge is a lexer.Bridge backed by a Lua state.
//
// gopher-lua states are single-threaded, so calls are serialized. Tokenizers that run
// in parallel should each get their own Bridge.
type Bridge struct {
	mu sync.Mutex
	L  *lua.LState

	entry   string
	timeout time.Duration

	lexerTable *lua.LTable
	current    *lexer.Tokenizer
	closed     bool
}

var _ lexer.Bridge = (*Bridge)(nil)

// Option configures a Bridge.
type Option func(*Bridge)

// WithEntry sets the name of the global function to call.
func WithEntry(name string) Option {
	return func(b *Bridge) {
		b.entry = name
	}
}

// WithTimeout bounds each action call. By default calls run to completion.
//
// A call cut short by the limit fails like any other Lua error, and the executor
// rolls back whatever the script changed before it was stopped.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.timeout = d
	}
}

// New loads script and returns a bridge that calls its entry function.
func New(script string, opts ...Option) (*Bridge, error) {
	return load(func(L *lua.LState) error { return L.DoString(script) }, opts)
}

// NewFromFile loads the script at path.
func NewFromFile(path string, opts ...Option) (*Bridge, error) {
	return load(func(L *lua.LState) error { return L.DoFile(path) }, opts)
}

func load(run func(*lua.LState) error, opts []Option) (*Bridge, error) {
	b := &Bridge{entry: DefaultEntry}
	for _, opt := range opts {
		opt(b)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	b.L = L

	if err := run(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}

	fn := L.GetGlobal(b.entry)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script does not define function %q (got %s)", b.entry, fn.Type())
	}

	b.lexerTable = b.newLexerTable()
	return b, nil
}

// openSafeLibraries opens the libraries scripts may use. io, os, debug and package
// stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Invoke calls the entry function with the rule index, action index and lexer table.
// A Lua error comes back as the *lua.ApiError gopher-lua raised.
func (b *Bridge) Invoke(ruleIndex, actionIndex int, tz *lexer.Tokenizer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	if b.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		b.L.SetContext(ctx)
		defer b.L.RemoveContext()
	}

	b.current = tz
	defer func() { b.current = nil }()

	return b.L.CallByParam(lua.P{
		Fn:      b.L.GetGlobal(b.entry),
		NRet:    0,
		Protect: true,
	}, lua.LNumber(ruleIndex), lua.LNumber(actionIndex), b.lexerTable)
}

// Close releases the Lua state.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.L.Close()
}

// newLexerTable builds the table passed to the entry function. Its functions act on
// whichever tokenizer the current Invoke received.
func (b *Bridge) newLexerTable() *lua.LTable {
	L := b.L
	t := L.NewTable()

	set := func(name string, fn lua.LGFunction) {
		L.SetField(t, name, L.NewFunction(fn))
	}

	set("text", func(L *lua.LState) int {
		L.Push(lua.LString(b.tokenizer(L).Text()))
		return 1
	})
	set("offset", func(L *lua.LState) int {
		L.Push(lua.LNumber(b.tokenizer(L).Offset()))
		return 1
	})
	set("mode", func(L *lua.LState) int {
		L.Push(lua.LNumber(b.tokenizer(L).Mode()))
		return 1
	})
	set("skip", func(L *lua.LState) int {
		b.tokenizer(L).Skip()
		return 0
	})
	set("more", func(L *lua.LState) int {
		b.tokenizer(L).More()
		return 0
	})
	set("type", func(L *lua.LState) int {
		b.tokenizer(L).SetType(b.intArg(L))
		return 0
	})
	set("channel", func(L *lua.LState) int {
		b.tokenizer(L).SetChannel(b.intArg(L))
		return 0
	})
	set("setMode", func(L *lua.LState) int {
		b.tokenizer(L).SetMode(b.intArg(L))
		return 0
	})
	set("pushMode", func(L *lua.LState) int {
		b.tokenizer(L).PushMode(b.intArg(L))
		return 0
	})
	set("popMode", func(L *lua.LState) int {
		b.tokenizer(L).PopMode()
		return 0
	})

	return t
}

func (b *Bridge) tokenizer(L *lua.LState) *lexer.Tokenizer {
	if b.current == nil {
		L.RaiseError("lexer used outside of an action call")
	}
	return b.current
}

// intArg reads the single integer argument of a lexer function. Method calls pass
// the lexer table first; it is skipped.
func (b *Bridge) intArg(L *lua.LState) int {
	first := 1
	if L.GetTop() >= 1 && L.Get(1) == lua.LValue(b.lexerTable) {
		first = 2
	}
	if n := L.GetTop() - first + 1; n != 1 {
		L.RaiseError("expected 1 argument, got %d", n)
	}
	return L.CheckInt(first)
}
