package lexer

import (
	"log/slog"

	"github.com/opal-lang/lexaction/core/invariant"
	"github.com/opal-lang/lexaction/core/lexaction"
)

// Telemetry holds executor counters (TelemetryBasic only).
type Telemetry struct {
	Executions map[lexaction.Kind]int // actions run, by kind
	Sequences  int                    // sequences run
	Underflows int                    // popMode at depth 1
	Faults     int                    // errors returned by the bridge
}

// Executor runs action sequences against tokenizers when the recognition engine
// commits a token.
//
// Execution is synchronous and never blocks. Actions run one at a time, in the order
// they were attached along the winning path. An Executor may be shared by tokenizers
// that run on the same goroutine; it is not safe for concurrent use when telemetry is
// enabled.
type Executor struct {
	config    Config
	logger    *slog.Logger
	telemetry *Telemetry // nil when TelemetryOff
}

// NewExecutor creates an executor with optional configuration.
func NewExecutor(opts ...ExecutorOpt) *Executor {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	e := &Executor{
		config: config,
		logger: config.Logger,
	}
	if config.Telemetry == TelemetryBasic {
		e.telemetry = &Telemetry{Executions: make(map[lexaction.Kind]int)}
	}
	return e
}

// Apply runs a single action against tz. Errors come only from the bridge and are
// returned unchanged; when one is returned, the mode stack, per-token state and token
// start are rolled back to what they were before the call.
func (e *Executor) Apply(a lexaction.Action, tz *Tokenizer) error {
	invariant.NotNil(tz, "tokenizer")
	return e.apply(a, tz)
}

// Execute runs seq against tz for the token that began at tz.TokenStart().
//
// Bound entries run with the input moved to TokenStart()+Offset; the input is moved
// back to where it was when Execute was called before it returns, including when an
// action fails. The first error stops the sequence: actions before it stay applied.
func (e *Executor) Execute(seq *lexaction.Sequence, tz *Tokenizer) error {
	invariant.NotNil(tz, "tokenizer")
	if seq.Len() == 0 {
		return nil
	}
	if e.telemetry != nil {
		e.telemetry.Sequences++
	}

	in := tz.input
	stop := 0
	requiresSeek := false
	if in != nil {
		stop = in.Index()
		defer func() {
			if requiresSeek {
				in.Seek(stop)
			}
		}()
	}

	for i := 0; i < seq.Len(); i++ {
		entry := seq.At(i)
		if in != nil {
			switch {
			case entry.Bound:
				target := tz.tokenStart + entry.Offset
				in.Seek(target)
				requiresSeek = target != stop
			case entry.Action.IsPositionDependent():
				in.Seek(stop)
				requiresSeek = false
			}
		}

		if err := e.apply(entry.Action, tz); err != nil {
			return err
		}
	}
	return nil
}

// ExecuteIndex runs the sequence with the given index in the tokenizer's table.
func (e *Executor) ExecuteIndex(index int, tz *Tokenizer) error {
	invariant.NotNil(tz, "tokenizer")
	return e.Execute(tz.table.Sequence(index), tz)
}

func (e *Executor) apply(a lexaction.Action, tz *Tokenizer) error {
	underflows := tz.modes.Underflows()

	// A faulting custom action must leave the tokenizer as it found it
	var rollback func()
	if a.Kind() == lexaction.KindCustom {
		modes, state, tokenStart := tz.modes.Snapshot(), tz.state, tz.tokenStart
		rollback = func() {
			tz.modes.Restore(modes, underflows)
			tz.state = state
			tz.tokenStart = tokenStart
		}
	}

	err := a.Execute(tz)
	if err != nil && rollback != nil {
		rollback()
	}

	if e.config.Debug >= DebugActions {
		e.logger.Debug("lexer action",
			"action", a.String(),
			"mode", tz.modes.Current(),
			"depth", tz.modes.Depth())
	}

	if tz.modes.Underflows() != underflows {
		// Unbalanced popMode: tolerated, but worth surfacing while debugging grammars
		e.logger.Debug("popMode on single-entry mode stack ignored",
			"mode", tz.modes.Current(),
			"token_start", tz.tokenStart)
		if e.telemetry != nil {
			e.telemetry.Underflows++
		}
	}

	if e.telemetry != nil {
		e.telemetry.Executions[a.Kind()]++
		if err != nil {
			e.telemetry.Faults++
		}
	}

	if err != nil {
		e.logger.Debug("custom action failed",
			"rule", a.RuleIndex(),
			"action", a.ActionIndex(),
			"error", err)
	}
	return err
}

// Telemetry returns a copy of the counters, or nil when telemetry is off.
func (e *Executor) Telemetry() *Telemetry {
	if e.telemetry == nil {
		return nil
	}
	out := *e.telemetry
	out.Executions = make(map[lexaction.Kind]int, len(e.telemetry.Executions))
	for k, n := range e.telemetry.Executions {
		out.Executions[k] = n
	}
	return &out
}
