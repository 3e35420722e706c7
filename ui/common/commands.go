package common

import (
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/feed"
)

type SessionState uint

const (
	WritePostView SessionState = iota
	TimelineView
	MyPostsView
	FollowingView
	UsersView
	ActivityLogView
	// RefreshViews asks every view to reload from storage.
	RefreshViews
)

// Session carries the handles shared by all views of one SSH session.
type Session struct {
	DB     *db.DB
	Feed   *feed.Assembler
	UserId string
}

// Viewer returns a feed viewer for the session user.
func (s Session) Viewer() feed.Viewer {
	return feed.NewViewer(s.UserId)
}

// StatusMsg reports the outcome of an action to the view that started it.
type StatusMsg struct {
	Text string
	Err  error
}
