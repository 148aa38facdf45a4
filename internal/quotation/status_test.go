package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

func TestTransitionHappyPath(t *testing.T) {
	next, err := Transition(StatusDraft, ActionSubmitForReview)
	require.NoError(t, err)
	assert.Equal(t, StatusReview, next)

	next, err = Transition(StatusReview, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, next)

	next, err = Transition(StatusReview, ActionReject)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, next)

	next, err = Transition(StatusApproved, ActionConvert)
	require.NoError(t, err)
	assert.Equal(t, StatusConverted, next)
}

func TestTransitionRejectsInvalidSteps(t *testing.T) {
	cases := []struct {
		current Status
		action  Action
	}{
		{StatusReview, ActionSubmitForReview}, // double submit
		{StatusDraft, ActionApprove},
		{StatusDraft, ActionConvert},
		{StatusApproved, ActionApprove},
		{StatusRejected, ActionSubmitForReview},
		{StatusConverted, ActionConvert}, // second convert
		{StatusConverted, ActionApprove},
	}
	for _, tc := range cases {
		_, err := Transition(tc.current, tc.action)
		require.Error(t, err, "%s from %s should fail", tc.action, tc.current)
		assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
		ectx := shared.ContextOf(err)
		assert.Equal(t, string(tc.current), ectx["current_status"])
		assert.Equal(t, string(tc.action), ectx["attempted_action"])
	}
}

func TestEnsureMutable(t *testing.T) {
	for _, status := range []Status{StatusDraft, StatusReview, StatusApproved} {
		require.NoError(t, EnsureMutable(status, ActionAddFeature))
		require.NoError(t, EnsureMutable(status, ActionAddDiscount))
		require.NoError(t, EnsureMutable(status, ActionCreateVersion))
		require.NoError(t, EnsureMutable(status, ActionOverride))
	}
	for _, status := range []Status{StatusRejected, StatusConverted} {
		err := EnsureMutable(status, ActionAddFeature)
		require.Error(t, err)
		assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
	}
}

func TestEnsureMutableRefusesTransitions(t *testing.T) {
	// Life-cycle steps are not mutations and must go through Transition.
	err := EnsureMutable(StatusDraft, ActionSubmitForReview)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusReview.Terminal())
	assert.False(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusConverted.Terminal())
}
