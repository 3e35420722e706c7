package domain

import (
	"fmt"
	"time"
)

const MaxPostLength = 280

type Post struct {
	Id             string
	AuthorId       string
	Content        string
	CreatedAt      time.Time
	OriginalPostId string // non-empty for reposts
	IsDeleted      bool
}

// IsRepost reports whether the post points at an original post.
func (p *Post) IsRepost() bool {
	return p.OriginalPostId != ""
}

func (p *Post) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tAuthorId: %s \n\tContent: %s \n\tCreatedAt: %s \n\tOriginal: %s \n\tDeleted: %t)",
		p.Id, p.AuthorId, p.Content, p.CreatedAt, p.OriginalPostId, p.IsDeleted)
}

type Hashtag struct {
	Tag         string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

type PostHashtag struct {
	PostId  string
	Hashtag string
}
