package lexer

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// EOF is returned by Peek past the end of the input.
const EOF rune = -1

// RuneInput is an Input over an in-memory string, indexed by code point.
type RuneInput struct {
	runes []rune
	pos   int
}

var _ Input = (*RuneInput)(nil)

// NewStringInput decodes s. Bytes that are not valid UTF-8 become one code point each.
func NewStringInput(s string) *RuneInput {
	runes := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		ch, size := utf8.DecodeRuneInString(s[i:])
		if ch == utf8.RuneError && size == 1 {
			ch = rune(s[i])
		}
		runes = append(runes, ch)
		i += size
	}
	return &RuneInput{runes: runes}
}

// NewInput reads all of r into a RuneInput.
func NewInput(r io.Reader) (*RuneInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return NewStringInput(string(data)), nil
}

// Index returns the current position.
func (in *RuneInput) Index() int { return in.pos }

// Size returns the number of code points.
func (in *RuneInput) Size() int { return len(in.runes) }

// Seek moves to index, clamped to [0, Size].
func (in *RuneInput) Seek(index int) {
	in.pos = max(0, min(index, len(in.runes)))
}

// Peek returns the code point at the current position, or EOF.
func (in *RuneInput) Peek() rune {
	if in.pos >= len(in.runes) {
		return EOF
	}
	return in.runes[in.pos]
}

// Consume advances one code point. It reports false at the end of the input.
func (in *RuneInput) Consume() bool {
	if in.pos >= len(in.runes) {
		return false
	}
	in.pos++
	return true
}

// Text returns the code points in [start, stop], both inclusive, clipped to the input.
func (in *RuneInput) Text(start, stop int) string {
	start = max(start, 0)
	stop = min(stop, len(in.runes)-1)
	if stop < start {
		return ""
	}
	return string(in.runes[start : stop+1])
}
