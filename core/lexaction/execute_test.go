package lexaction_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/opal-lang/lexaction/core/lexaction"
)

// recorder is a Target that logs every call it receives.
type recorder struct {
	calls []string
	err   error
}

func (r *recorder) Skip() { r.calls = append(r.calls, "skip") }
func (r *recorder) More() { r.calls = append(r.calls, "more") }
func (r *recorder) SetType(t int) { r.calls = append(r.calls, fmt.Sprintf("type %d", t)) }
func (r *recorder) SetChannel(c int) { r.calls = append(r.calls, fmt.Sprintf("channel %d", c)) }
func (r *recorder) SetMode(m int) { r.calls = append(r.calls, fmt.Sprintf("mode %d", m)) }
func (r *recorder) PushMode(m int) { r.calls = append(r.calls, fmt.Sprintf("push %d", m)) }
func (r *recorder) PopMode() { r.calls = append(r.calls, "pop") }
func (r *recorder) Action(rule, action int) error {
	r.calls = append(r.calls, fmt.Sprintf("action %d %d", rule, action))
	return r.err
}

func TestExecuteDispatch(t *testing.T) {
	tests := []struct {
		action lexaction.Action
		want   string
	}{
		{lexaction.Skip(), "skip"},
		{lexaction.More(), "more"},
		{lexaction.Type(3), "type 3"},
		{lexaction.Channel(1), "channel 1"},
		{lexaction.Mode(4), "mode 4"},
		{lexaction.PushMode(2), "push 2"},
		{lexaction.PopMode(), "pop"},
		{lexaction.Custom(3, 7), "action 3 7"},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			r := &recorder{}
			err := tt.action.Execute(r)
			assert.NoError(t, err)
			if diff := cmp.Diff([]string{tt.want}, r.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestExecuteCustomErrorUnwrapped checks the host error is returned as-is
func TestExecuteCustomErrorUnwrapped(t *testing.T) {
	hostErr := errors.New("host refused")
	r := &recorder{err: hostErr}

	err := lexaction.Custom(1, 0).Execute(r)
	assert.Same(t, hostErr, err)
}
