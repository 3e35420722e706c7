package db

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
)

// CreateComment adds a comment to a post and returns its id. Replies may only
// answer root comments of the same post.
func (db *DB) CreateComment(postId, authorId, content, parentCommentId string) (string, error) {
	content = util.NormalizeInput(content)
	parentCommentId = strings.TrimSpace(parentCommentId)
	if content == "" {
		return "", fmt.Errorf("%w: comment content is required", domain.ErrValidation)
	}
	if authorId == "" {
		return "", fmt.Errorf("%w: author is required", domain.ErrValidation)
	}

	var id string
	err := db.wrapTransaction(func() error {
		post, err := db.ReadPostById(postId)
		if err != nil {
			return err
		}
		if post == nil {
			return fmt.Errorf("%w: post %s not found", domain.ErrValidation, postId)
		}

		if parentCommentId != "" {
			rows, err := db.store.Read(commentsTable)
			if err != nil {
				return err
			}
			i := slices.IndexFunc(rows, func(r Row) bool { return r["comment_id"] == parentCommentId })
			if i < 0 {
				return fmt.Errorf("%w: parent comment %s not found", domain.ErrValidation, parentCommentId)
			}
			parent := rows[i]
			if parent["parent_comment_id"] != "" {
				return fmt.Errorf("%w: only one level of replies is allowed", domain.ErrValidation)
			}
			if parent["post_id"] != postId {
				return fmt.Errorf("%w: parent comment belongs to another post", domain.ErrValidation)
			}
		}

		id, err = db.counters.Next(KindComment)
		if err != nil {
			return err
		}
		err = db.store.Append(commentsTable, Row{
			"comment_id":        id,
			"post_id":           postId,
			"author_id":         authorId,
			"content":           content,
			"created_at":        db.timestamp(),
			"parent_comment_id": parentCommentId,
			"is_deleted":        formatFlag(false),
		})
		if err != nil {
			return err
		}
		_, err = db.recordActivity(domain.EventCommentCreated, authorId, domain.TargetComment, id,
			map[string]any{"post_id": postId, "preview": util.Preview(content, previewLength)})
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ReadCommentsByPostId returns the live comments of a post, oldest first.
func (db *DB) ReadCommentsByPostId(postId string) ([]domain.Comment, error) {
	rows, err := db.store.Read(commentsTable)
	if err != nil {
		return nil, err
	}
	comments := []domain.Comment{}
	for _, r := range rows {
		if r["post_id"] == postId && !parseFlag(r["is_deleted"]) {
			comments = append(comments, rowToComment(r))
		}
	}
	slices.SortStableFunc(comments, func(a, b domain.Comment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return comments, nil
}

// DeleteComment soft deletes a comment owned by actorId. Deleting an already
// deleted comment does nothing.
func (db *DB) DeleteComment(commentId, actorId string) error {
	return db.wrapTransaction(func() error {
		err := db.store.Update(commentsTable, func(rows []Row) ([]Row, error) {
			for _, r := range rows {
				if r["comment_id"] != commentId {
					continue
				}
				if r["author_id"] != actorId {
					return nil, fmt.Errorf("%w: you can delete only your own comments", domain.ErrPermission)
				}
				if parseFlag(r["is_deleted"]) {
					return nil, errNoChange
				}
				r["is_deleted"] = formatFlag(true)
				return rows, nil
			}
			return nil, fmt.Errorf("%w: comment %s not found", domain.ErrValidation, commentId)
		})
		if errors.Is(err, errNoChange) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = db.recordActivity(domain.EventCommentDeleted, actorId, domain.TargetComment, commentId, nil)
		return err
	})
}

func (db *DB) CountComments(postId string) (int, error) {
	comments, err := db.ReadCommentsByPostId(postId)
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

// CountCommentsByPost maps post ids to their live comment counts.
func (db *DB) CountCommentsByPost() (map[string]int, error) {
	rows, err := db.store.Read(commentsTable)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, r := range rows {
		if !parseFlag(r["is_deleted"]) {
			counts[r["post_id"]]++
		}
	}
	return counts, nil
}

func rowToComment(r Row) domain.Comment {
	return domain.Comment{
		Id:              r["comment_id"],
		PostId:          r["post_id"],
		AuthorId:        r["author_id"],
		Content:         r["content"],
		CreatedAt:       util.ParseTimestamp(r["created_at"]),
		ParentCommentId: r["parent_comment_id"],
		IsDeleted:       parseFlag(r["is_deleted"]),
	}
}
