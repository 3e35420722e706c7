package db

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
)

// CreatePost stores a post, or a repost when originalPostId is set, and
// returns its id. Reposts may have empty content. Non-empty content is
// indexed for hashtags.
func (db *DB) CreatePost(authorId, content, originalPostId string) (string, error) {
	content = util.NormalizeInput(content)
	originalPostId = strings.TrimSpace(originalPostId)

	if authorId == "" {
		return "", fmt.Errorf("%w: author is required", domain.ErrValidation)
	}
	if originalPostId == "" && content == "" {
		return "", fmt.Errorf("%w: content is required for original posts", domain.ErrValidation)
	}
	if utf8.RuneCountInString(content) > domain.MaxPostLength {
		return "", fmt.Errorf("%w: content is longer than %d characters", domain.ErrValidation, domain.MaxPostLength)
	}

	var id string
	err := db.wrapTransaction(func() error {
		if originalPostId != "" {
			original, err := db.ReadPostById(originalPostId)
			if err != nil {
				return err
			}
			if original == nil {
				return fmt.Errorf("%w: original post %s not found", domain.ErrValidation, originalPostId)
			}
		}

		var err error
		id, err = db.counters.Next(KindPost)
		if err != nil {
			return err
		}
		err = db.store.Append(postsTable, Row{
			"post_id":          id,
			"author_id":        authorId,
			"content":          content,
			"created_at":       db.timestamp(),
			"original_post_id": originalPostId,
			"is_deleted":       formatFlag(false),
		})
		if err != nil {
			return err
		}

		if originalPostId != "" {
			_, err = db.recordActivity(domain.EventRepostCreated, authorId, domain.TargetPost, id,
				map[string]any{"original_post_id": originalPostId})
		} else {
			_, err = db.recordActivity(domain.EventPostCreated, authorId, domain.TargetPost, id,
				map[string]any{"preview": util.Preview(content, previewLength)})
		}
		if err != nil {
			return err
		}

		if content != "" {
			return db.indexHashtags(id, util.ExtractHashtags(content))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ReadFeed returns non-deleted posts, newest first. A limit of zero or less
// returns all of them.
func (db *DB) ReadFeed(limit int) ([]domain.Post, error) {
	return db.readPosts(func(r Row) bool { return !parseFlag(r["is_deleted"]) }, limit)
}

// ReadAllPosts returns every post including deleted ones, newest first.
func (db *DB) ReadAllPosts() ([]domain.Post, error) {
	return db.readPosts(func(Row) bool { return true }, 0)
}

// ReadPostsByAuthor returns the author's posts including deleted ones,
// newest first.
func (db *DB) ReadPostsByAuthor(authorId string) ([]domain.Post, error) {
	return db.readPosts(func(r Row) bool { return r["author_id"] == authorId }, 0)
}

func (db *DB) ReadPostById(id string) (*domain.Post, error) {
	rows, err := db.store.Read(postsTable)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r["post_id"] == id {
			p := rowToPost(r)
			return &p, nil
		}
	}
	return nil, nil
}

func (db *DB) SoftDeletePost(postId, actorId string) error {
	return db.setPostDeleted(postId, actorId, true)
}

func (db *DB) RestorePost(postId, actorId string) error {
	return db.setPostDeleted(postId, actorId, false)
}

func (db *DB) setPostDeleted(postId, actorId string, deleted bool) error {
	verb, event := "delete", domain.EventPostDeleted
	if !deleted {
		verb, event = "restore", domain.EventPostRestored
	}

	return db.wrapTransaction(func() error {
		err := db.store.Update(postsTable, func(rows []Row) ([]Row, error) {
			for _, r := range rows {
				if r["post_id"] != postId {
					continue
				}
				if r["author_id"] != actorId {
					return nil, fmt.Errorf("%w: you can %s only your own posts", domain.ErrPermission, verb)
				}
				if parseFlag(r["is_deleted"]) == deleted {
					return nil, errNoChange
				}
				r["is_deleted"] = formatFlag(deleted)
				return rows, nil
			}
			return nil, fmt.Errorf("%w: post %s not found", domain.ErrValidation, postId)
		})
		if errors.Is(err, errNoChange) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = db.recordActivity(event, actorId, domain.TargetPost, postId, nil)
		return err
	})
}

func (db *DB) readPosts(keep func(Row) bool, limit int) ([]domain.Post, error) {
	rows, err := db.store.Read(postsTable)
	if err != nil {
		return nil, err
	}
	var selected []Row
	for _, r := range rows {
		if keep(r) {
			selected = append(selected, r)
		}
	}
	newestFirst(selected)
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	posts := make([]domain.Post, 0, len(selected))
	for _, r := range selected {
		posts = append(posts, rowToPost(r))
	}
	return posts, nil
}

// newestFirst orders rows by created_at descending. Rows sharing a timestamp
// keep the later appended one first.
func newestFirst(rows []Row) {
	slices.Reverse(rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		return strings.Compare(b["created_at"], a["created_at"])
	})
}

func rowToPost(r Row) domain.Post {
	return domain.Post{
		Id:             r["post_id"],
		AuthorId:       r["author_id"],
		Content:        r["content"],
		CreatedAt:      util.ParseTimestamp(r["created_at"]),
		OriginalPostId: r["original_post_id"],
		IsDeleted:      parseFlag(r["is_deleted"]),
	}
}
