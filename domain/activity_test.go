package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTypeValues(t *testing.T) {
	expected := []string{
		"POST_CREATED", "REPOST_CREATED", "POST_DELETED", "POST_RESTORED",
		"COMMENT_CREATED", "COMMENT_DELETED", "REACTION_ADDED", "REACTION_REMOVED",
		"USER_FOLLOWED", "USER_UNFOLLOWED",
	}

	assert.Len(t, EventTypes, len(expected))
	for i, e := range EventTypes {
		assert.Equal(t, expected[i], e.String())
	}
}

func TestEventTypeKnown(t *testing.T) {
	for _, e := range EventTypes {
		assert.True(t, e.Known(), "%s should be known", e)
	}
	assert.False(t, EventType("SOMETHING_ELSE").Known())
	assert.False(t, EventType("").Known())
}
