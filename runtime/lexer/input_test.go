package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuneInputIndexesCodePoints(t *testing.T) {
	in := NewStringInput("aé→b")
	assert.Equal(t, 4, in.Size())
	assert.Equal(t, "é→", in.Text(1, 2))

	var got []rune
	for in.Peek() != EOF {
		got = append(got, in.Peek())
		in.Consume()
	}
	assert.Equal(t, []rune{'a', 'é', '→', 'b'}, got)
	assert.False(t, in.Consume())
	assert.Equal(t, 4, in.Index())
}

func TestRuneInputInvalidUTF8(t *testing.T) {
	in := NewStringInput("a\xffb")
	assert.Equal(t, 3, in.Size())
	in.Seek(1)
	assert.Equal(t, rune(0xff), in.Peek())
}

func TestRuneInputSeekClamps(t *testing.T) {
	in := NewStringInput("abc")
	in.Seek(10)
	assert.Equal(t, 3, in.Index())
	in.Seek(-2)
	assert.Equal(t, 0, in.Index())
}

func TestRuneInputText(t *testing.T) {
	in := NewStringInput("hello")
	tests := []struct {
		start, stop int
		want        string
	}{
		{0, 4, "hello"},
		{1, 1, "e"},
		{2, 1, ""},
		{-3, 1, "he"},
		{3, 99, "lo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, in.Text(tt.start, tt.stop), "Text(%d, %d)", tt.start, tt.stop)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestNewInput(t *testing.T) {
	in, err := NewInput(strings.NewReader("x = 1"))
	require.NoError(t, err)
	assert.Equal(t, 5, in.Size())

	_, err = NewInput(failingReader{})
	assert.EqualError(t, err, "read input: disk gone")
}

func TestTokenizerOverRuneInput(t *testing.T) {
	in := NewStringInput("«name» rest")
	tz := newTestTokenizer(WithInput(in))
	tz.BeginToken(0)
	in.Seek(6)
	assert.Equal(t, "«name»", tz.Text())
	assert.Equal(t, 6, tz.Offset())
}
