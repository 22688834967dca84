package actfmt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opal-lang/lexaction/core/actfmt"
	"github.com/opal-lang/lexaction/core/lexaction"
)

const calcManifest = `{
  "format": "v1.2.0",
  "grammar": "Calc",
  "actions": ["skip", "pushMode(1)", "type(7)", "popMode", "skip"],
  "sequences": [[0], [2, 1], [3], [4]]
}`

func TestLoadManifest(t *testing.T) {
	m, err := actfmt.LoadManifest(strings.NewReader(calcManifest))
	require.NoError(t, err)
	assert.Equal(t, "Calc", m.Grammar)
	assert.Len(t, m.Actions, 5)
	assert.Equal(t, [][]int{{0}, {2, 1}, {3}, {4}}, m.Sequences)
}

func TestManifestCompile(t *testing.T) {
	m, err := actfmt.ParseManifest([]byte(calcManifest))
	require.NoError(t, err)

	c, err := m.Compile()
	require.NoError(t, err)
	assert.Equal(t, "Calc", c.Grammar)

	// The duplicate skip collapses, and so does its one-element sequence
	tbl := c.Table
	assert.Equal(t, 4, tbl.NumActions())
	assert.Equal(t, 3, tbl.NumSequences())
	assert.Equal(t, "type(7), pushMode(1)", tbl.Sequence(1).String())
	assert.Equal(t, lexaction.Stats{Actions: 4, Sequences: 3, ActionRequests: 5, SequenceRequests: 4}, tbl.Stats())
}

func TestManifestFormatWithoutPrefix(t *testing.T) {
	_, err := actfmt.ParseManifest([]byte(`{"format":"1.0.0","grammar":"G","actions":[]}`))
	assert.NoError(t, err)
}

func TestManifestRejected(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"not json", `{`, "decode manifest"},
		{"missing grammar", `{"format":"v1.0.0","actions":[]}`, "invalid manifest"},
		{"unknown field", `{"format":"v1.0.0","grammar":"G","actions":[],"extra":1}`, "invalid manifest"},
		{"bad version", `{"format":"one","grammar":"G","actions":[]}`, "invalid manifest"},
		{"negative index", `{"format":"v1.0.0","grammar":"G","actions":["skip"],"sequences":[[-1]]}`, "invalid manifest"},
		{"major 2", `{"format":"v2.0.0","grammar":"G","actions":[]}`, "unsupported manifest format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := actfmt.ParseManifest([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestManifestMajorSentinel(t *testing.T) {
	_, err := actfmt.ParseManifest([]byte(`{"format":"v2.0.0","grammar":"G","actions":[]}`))
	assert.ErrorIs(t, err, actfmt.ErrUnsupportedFormat)
}

func TestManifestCompileErrors(t *testing.T) {
	t.Run("bad command", func(t *testing.T) {
		m := &actfmt.Manifest{Format: "v1.0.0", Grammar: "G", Actions: []string{"skip", "pushmod(1)"}}
		_, err := m.Compile()
		require.Error(t, err)

		var perr *lexaction.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "pushMode", perr.Suggestion)
		assert.Contains(t, err.Error(), "action 1")
	})

	t.Run("index out of range", func(t *testing.T) {
		m := &actfmt.Manifest{Format: "v1.0.0", Grammar: "G", Actions: []string{"skip"}, Sequences: [][]int{{0, 3}}}
		_, err := m.Compile()
		assert.EqualError(t, err, "sequence 0 entry 1: action index 3 out of range [0, 1)")
	})
}

func TestManifestOf(t *testing.T) {
	m, err := actfmt.ParseManifest([]byte(calcManifest))
	require.NoError(t, err)
	c, err := m.Compile()
	require.NoError(t, err)

	out := actfmt.ManifestOf(c)
	assert.Equal(t, "v1.0.0", out.Format)
	assert.Equal(t, []string{"skip", "pushMode(1)", "type(7)", "popMode"}, out.Actions)
	assert.Equal(t, [][]int{{0}, {2, 1}, {3}}, out.Sequences)

	recompiled, err := out.Compile()
	require.NoError(t, err)
	d1, err := actfmt.Digest(c)
	require.NoError(t, err)
	d2, err := actfmt.Digest(recompiled)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestManifestOfKeepsBoundOffsets(t *testing.T) {
	b := lexaction.NewBuilder()
	b.InternSequence(lexaction.NewSequence(lexaction.Custom(1, 0)).BindOffsets(3))
	b.InternActions(lexaction.Custom(1, 0), lexaction.Skip())
	b.InternSequence(lexaction.NewSequence(lexaction.Type(2), lexaction.Custom(1, 0)).BindOffsets(3))
	c := &actfmt.Compiled{Grammar: "G", Table: b.Build()}

	out := actfmt.ManifestOf(c)
	assert.Equal(t, []string{"custom(1,0)", "skip", "type(2)", "custom(1,0)@3"}, out.Actions)
	assert.Equal(t, [][]int{{3}, {0, 1}, {2, 3}}, out.Sequences)

	recompiled, err := out.Compile()
	require.NoError(t, err)
	assert.Equal(t, "custom(1,0)@3", recompiled.Table.Sequence(0).String())
	assert.Equal(t, "custom(1,0), skip", recompiled.Table.Sequence(1).String())

	d1, err := actfmt.Digest(c)
	require.NoError(t, err)
	d2, err := actfmt.Digest(recompiled)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestManifestBoundEntries(t *testing.T) {
	m, err := actfmt.ParseManifest([]byte(`{
  "format": "v1.0.0",
  "grammar": "G",
  "actions": ["custom(0,1)@2", "more"],
  "sequences": [[1, 0]]
}`))
	require.NoError(t, err)

	c, err := m.Compile()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Table.NumActions())

	e := c.Table.Sequence(0).At(1)
	assert.True(t, e.Bound)
	assert.Equal(t, 2, e.Offset)
	assert.Equal(t, lexaction.Custom(0, 1), e.Action)

	tests := []struct {
		action  string
		wantErr string
	}{
		{"skip@2", "action 0: skip cannot be bound to an offset"},
		{"custom(0,1)@x", `action 0: invalid offset "x" in "custom(0,1)@x"`},
		{"custom(0,1)@-1", `action 0: invalid offset "-1" in "custom(0,1)@-1"`},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			m := &actfmt.Manifest{Format: "v1.0.0", Grammar: "G", Actions: []string{tt.action}}
			_, err := m.Compile()
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
