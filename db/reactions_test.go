package db

import (
	"testing"

	"github.com/deemkeen/tusk/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeTwiceIsIdentity(t *testing.T) {
	db, _ := setupTestDB(t)
	p := mustCreatePost(t, db, "u1", "like me")

	liked, count, err := db.ToggleLike(p, "u2")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = db.ToggleLike(p, "u2")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	isLiked, err := db.IsLikedByUser(p, "u2")
	require.NoError(t, err)
	assert.False(t, isLiked)

	entries, err := db.ReadActivityByActor("u2", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EventReactionRemoved, entries[0].EventType)
	assert.Equal(t, domain.EventReactionAdded, entries[1].EventType)
}

func TestCountLikesMatchesLikedUsers(t *testing.T) {
	db, _ := setupTestDB(t)
	p := mustCreatePost(t, db, "u1", "popular")
	other := mustCreatePost(t, db, "u1", "quiet")

	users := []string{"u1", "u2", "u3"}
	for _, u := range users {
		_, _, err := db.ToggleLike(p, u)
		require.NoError(t, err)
	}
	_, _, err := db.ToggleLike(p, "u2")
	require.NoError(t, err)
	_, _, err = db.ToggleLike(other, "u3")
	require.NoError(t, err)

	likedBy := 0
	for _, u := range users {
		liked, err := db.IsLikedByUser(p, u)
		require.NoError(t, err)
		if liked {
			likedBy++
		}
	}
	count, err := db.CountLikes(p)
	require.NoError(t, err)
	assert.Equal(t, likedBy, count)
	assert.Equal(t, 2, count)

	counts, err := db.CountLikesByPost()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{p: 2, other: 1}, counts)

	likedIds, err := db.ReadLikedPostIds("u3")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{p: true, other: true}, likedIds)
}
