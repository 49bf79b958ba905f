package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Run("happy path through the lifecycle", func(t *testing.T) {
		assert.True(t, CanTransition(StatusNew, StatusAnalyzed))
		assert.True(t, CanTransition(StatusAnalyzed, StatusContacted))
		assert.True(t, CanTransition(StatusContacted, StatusFollowedUp))
		assert.True(t, CanTransition(StatusFollowedUp, StatusReplied))
	})

	t.Run("send failures can retry", func(t *testing.T) {
		assert.True(t, CanTransition(StatusAnalyzed, StatusSendFailed))
		assert.True(t, CanTransition(StatusSendFailed, StatusContacted))
		assert.True(t, CanTransition(StatusSendFailed, StatusSendFailed))
	})

	t.Run("illegal jumps are rejected", func(t *testing.T) {
		assert.False(t, CanTransition(StatusNew, StatusContacted))
		assert.False(t, CanTransition(StatusDeadEnd, StatusAnalyzed))
		assert.False(t, CanTransition(StatusReplied, StatusFollowedUp))
		assert.False(t, CanTransition(StatusContacted, StatusNew))
		assert.False(t, CanTransition(StatusFollowedUp, StatusFollowedUp))
	})
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"new":         StatusNew,
		"Unscanned":   StatusNew,
		"analyzed":    StatusAnalyzed,
		"Requires DM": StatusNeedsDM,
		"Use Form":    StatusUseForm,
		"Dead End":    StatusDeadEnd,
		"Sent":        StatusContacted,
		"contacted":   StatusContacted,
		"Send Failed": StatusSendFailed,
		"replied":     StatusReplied,
		"Followed Up": StatusFollowedUp,
		" followed_up ": StatusFollowedUp,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseStatus("banana")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDeadEnd.Terminal())
	assert.True(t, StatusReplied.Terminal())
	assert.False(t, StatusContacted.Terminal())
	assert.False(t, StatusNew.Terminal())
}
