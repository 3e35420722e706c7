package db

import (
	"strings"
	"testing"

	"github.com/deemkeen/tusk/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostIndexesHashtagsAndShowsInFeed(t *testing.T) {
	db, _ := setupTestDB(t)

	a := mustCreatePost(t, db, "u1", "hello #world")

	ids, err := db.ReadPostIdsByHashtag("world")
	require.NoError(t, err)
	assert.Equal(t, []string{a}, ids)

	feed, err := db.ReadFeed(10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, a, feed[0].Id)
	assert.Equal(t, "hello #world", feed[0].Content)
}

func TestCreatePostValidation(t *testing.T) {
	db, _ := setupTestDB(t)
	original := mustCreatePost(t, db, "u1", "original")

	tests := []struct {
		name     string
		content  string
		original string
	}{
		{"empty content", "", ""},
		{"whitespace content", " \n\t ", ""},
		{"too long", strings.Repeat("가", domain.MaxPostLength+1), ""},
		{"unknown original", "", "p_9999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreatePost("u1", tt.content, tt.original)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	id, err := db.CreatePost("u1", strings.Repeat("가", domain.MaxPostLength), "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	all, err := db.ReadAllPosts()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, original, all[1].Id)
}

func TestCreatePostTrimsContent(t *testing.T) {
	db, _ := setupTestDB(t)
	id := mustCreatePost(t, db, "u1", "  padded\r\n ")

	p, err := db.ReadPostById(id)
	require.NoError(t, err)
	assert.Equal(t, "padded", p.Content)
}

func TestCreateRepostAllowsEmptyContent(t *testing.T) {
	db, _ := setupTestDB(t)
	a := mustCreatePost(t, db, "u1", "original #go")

	b, err := db.CreatePost("u2", "", a)
	require.NoError(t, err)
	assert.Equal(t, "p_0002", b)

	p, err := db.ReadPostById(b)
	require.NoError(t, err)
	assert.True(t, p.IsRepost())
	assert.Equal(t, a, p.OriginalPostId)
	assert.Equal(t, "", p.Content)

	tags, err := db.ReadHashtagsByPostId(b)
	require.NoError(t, err)
	assert.Empty(t, tags)

	entries, err := db.ReadRecentActivity(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EventRepostCreated, entries[0].EventType)
	assert.Equal(t, a, entries[0].Metadata["original_post_id"])
}

func TestRepostCommentaryIsIndexedUnderRepost(t *testing.T) {
	db, _ := setupTestDB(t)
	a := mustCreatePost(t, db, "u1", "original")

	b, err := db.CreatePost("u2", "so true #agree", a)
	require.NoError(t, err)

	ids, err := db.ReadPostIdsByHashtag("agree")
	require.NoError(t, err)
	assert.Equal(t, []string{b}, ids)
}

func TestPostCreatedActivityCarriesPreview(t *testing.T) {
	db, _ := setupTestDB(t)
	content := strings.Repeat("ab", 30)
	id := mustCreatePost(t, db, "u1", content)

	entries, err := db.ReadRecentActivity(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EventPostCreated, entries[0].EventType)
	assert.Equal(t, domain.TargetPost, entries[0].TargetType)
	assert.Equal(t, id, entries[0].TargetId)
	assert.Equal(t, content[:40], entries[0].Metadata["preview"])
}

func TestReadFeedOrderAndLimit(t *testing.T) {
	db, _ := setupTestDB(t)
	first := mustCreatePost(t, db, "u1", "first")
	second := mustCreatePost(t, db, "u1", "second")
	third := mustCreatePost(t, db, "u2", "third")
	require.NoError(t, db.SoftDeletePost(second, "u1"))

	feed, err := db.ReadFeed(10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, third, feed[0].Id)
	assert.Equal(t, first, feed[1].Id)

	feed, err = db.ReadFeed(1)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, third, feed[0].Id)

	mine, err := db.ReadPostsByAuthor("u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second, mine[0].Id)
	assert.True(t, mine[0].IsDeleted)
}

func TestReadPostByIdAbsent(t *testing.T) {
	db, _ := setupTestDB(t)
	p, err := db.ReadPostById("p_0404")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSoftDeleteThenRestoreKeepsPost(t *testing.T) {
	db, _ := setupTestDB(t)
	id := mustCreatePost(t, db, "u1", "keep me")
	before, err := db.ReadPostById(id)
	require.NoError(t, err)

	require.NoError(t, db.SoftDeletePost(id, "u1"))
	deleted, err := db.ReadPostById(id)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	require.NoError(t, db.RestorePost(id, "u1"))
	after, err := db.ReadPostById(id)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
	assert.False(t, after.IsDeleted)
}

func TestSoftDeleteAndRestorePermissions(t *testing.T) {
	db, _ := setupTestDB(t)
	id := mustCreatePost(t, db, "u1", "mine")

	assert.ErrorIs(t, db.SoftDeletePost(id, "u2"), domain.ErrPermission)
	require.NoError(t, db.SoftDeletePost(id, "u1"))
	assert.ErrorIs(t, db.RestorePost(id, "u2"), domain.ErrPermission)

	p, err := db.ReadPostById(id)
	require.NoError(t, err)
	assert.True(t, p.IsDeleted)

	assert.ErrorIs(t, db.SoftDeletePost("p_0404", "u1"), domain.ErrValidation)
	assert.ErrorIs(t, db.RestorePost("p_0404", "u1"), domain.ErrValidation)
}

func TestSoftDeleteAndRestoreAreIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	id := mustCreatePost(t, db, "u1", "twice")

	require.NoError(t, db.SoftDeletePost(id, "u1"))
	require.NoError(t, db.SoftDeletePost(id, "u1"))
	require.NoError(t, db.RestorePost(id, "u1"))
	require.NoError(t, db.RestorePost(id, "u1"))

	entries, err := db.ReadActivityByActor("u1", 0)
	require.NoError(t, err)
	var events []domain.EventType
	for _, e := range entries {
		events = append(events, e.EventType)
	}
	assert.Equal(t, []domain.EventType{domain.EventPostRestored, domain.EventPostDeleted, domain.EventPostCreated}, events)
}
