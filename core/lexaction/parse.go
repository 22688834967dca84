package lexaction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ParseError describes a command that could not be parsed.
type ParseError struct {
	Input      string
	Message    string
	Suggestion string // closest known command name, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid lexer command %q: %s", e.Input, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Parse reads a single command in the form produced by Action.String,
// for example "skip", "type(5)" or "custom(3, 7)". Whitespace around names
// and arguments is ignored.
func Parse(s string) (Action, error) {
	input := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Action{}, &ParseError{Input: input, Message: "empty command"}
	}

	name, args, err := splitCall(s)
	if err != nil {
		return Action{}, &ParseError{Input: input, Message: err.Error()}
	}

	kind, ok := kindByName(name)
	if !ok {
		return Action{}, &ParseError{
			Input:      input,
			Message:    fmt.Sprintf("unknown command %q", name),
			Suggestion: closestKindName(name),
		}
	}

	if len(args) != kind.Arity() {
		return Action{}, &ParseError{
			Input:   input,
			Message: fmt.Sprintf("%s takes %d argument(s), got %d", kind, kind.Arity(), len(args)),
		}
	}

	values := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return Action{}, &ParseError{
				Input:   input,
				Message: fmt.Sprintf("argument %d of %s is not an integer: %q", i+1, kind, arg),
			}
		}
		values[i] = v
	}

	switch kind {
	case KindSkip:
		return Skip(), nil
	case KindMore:
		return More(), nil
	case KindType:
		return Type(values[0]), nil
	case KindChannel:
		return Channel(values[0]), nil
	case KindMode:
		return Mode(values[0]), nil
	case KindPushMode:
		return PushMode(values[0]), nil
	case KindPopMode:
		return PopMode(), nil
	default:
		return Custom(values[0], values[1]), nil
	}
}

// ParseList reads a comma separated command list such as "skip, pushMode(2)".
// Commas inside parentheses separate arguments, not commands.
func ParseList(s string) ([]Action, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var actions []Action
	depth, start := 0, 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) {
			switch s[i] {
			case '(':
				depth++
				continue
			case ')':
				depth--
				continue
			case ',':
				if depth > 0 {
					continue
				}
			default:
				continue
			}
		}
		a, err := Parse(s[start:i])
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
		start = i + 1
	}
	return actions, nil
}

// splitCall splits "name(arg, arg)" into its parts.
func splitCall(s string) (name string, args []string, err error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsAny(s, "),") {
			return "", nil, fmt.Errorf("unbalanced parentheses")
		}
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") || strings.Count(s, "(") != 1 || strings.Count(s, ")") != 1 {
		return "", nil, fmt.Errorf("unbalanced parentheses")
	}

	name = strings.TrimSpace(s[:open])
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return name, nil, nil
	}
	for _, part := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(part))
	}
	return name, args, nil
}

func kindByName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// closestKindName finds the command name nearest to name.
func closestKindName(name string) string {
	candidates := kindNames[:]
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		best := ranks[0]
		for _, r := range ranks[1:] {
			if r.Distance < best.Distance {
				best = r
			}
		}
		return best.Target
	}

	// The input may instead contain a command name, as in "pushModes"; prefer the longest.
	best := ""
	for _, n := range candidates {
		if fuzzy.MatchFold(n, name) && len(n) > len(best) {
			best = n
		}
	}
	return best
}
