package domain

import "time"

// Reaction is a like. Its existence is the whole state.
type Reaction struct {
	PostId    string
	UserId    string
	CreatedAt time.Time
}

type Comment struct {
	Id              string
	PostId          string
	AuthorId        string
	Content         string
	CreatedAt       time.Time
	ParentCommentId string // empty for root comments
	IsDeleted       bool
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentCommentId != ""
}

// Follow represents a directed follow edge
type Follow struct {
	FollowerId string
	FolloweeId string
	CreatedAt  time.Time
}
