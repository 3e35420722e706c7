package domain

import "time"

// EventType names an entry in the activity log.
type EventType string

const (
	EventPostCreated     EventType = "POST_CREATED"
	EventRepostCreated   EventType = "REPOST_CREATED"
	EventPostDeleted     EventType = "POST_DELETED"
	EventPostRestored    EventType = "POST_RESTORED"
	EventCommentCreated  EventType = "COMMENT_CREATED"
	EventCommentDeleted  EventType = "COMMENT_DELETED"
	EventReactionAdded   EventType = "REACTION_ADDED"
	EventReactionRemoved EventType = "REACTION_REMOVED"
	EventUserFollowed    EventType = "USER_FOLLOWED"
	EventUserUnfollowed  EventType = "USER_UNFOLLOWED"
)

// EventTypes lists the documented vocabulary in a stable order.
var EventTypes = []EventType{
	EventPostCreated,
	EventRepostCreated,
	EventPostDeleted,
	EventPostRestored,
	EventCommentCreated,
	EventCommentDeleted,
	EventReactionAdded,
	EventReactionRemoved,
	EventUserFollowed,
	EventUserUnfollowed,
}

// Known reports whether the event type is part of the documented vocabulary.
// The log itself stores unknown types unchanged.
func (e EventType) Known() bool {
	for _, t := range EventTypes {
		if t == e {
			return true
		}
	}
	return false
}

func (e EventType) String() string {
	return string(e)
}

// Target types used in activity entries.
const (
	TargetPost    = "Post"
	TargetComment = "Comment"
	TargetUser    = "User"
)

type ActivityLogEntry struct {
	Id         string
	EventType  EventType
	ActorId    string
	TargetType string
	TargetId   string
	Metadata   map[string]any
	CreatedAt  time.Time
}
