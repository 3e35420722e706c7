package web

import (
	"fmt"
	"time"

	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/util"
	"github.com/gorilla/feeds"
)

func (s *Server) baseURL() string {
	return fmt.Sprintf("http://%s:%d", s.conf.Conf.Host, s.conf.Conf.HttpPort)
}

// GetFeedRSS renders the public feed, newest first. Placeholders for deleted
// originals are left out.
func (s *Server) GetFeedRSS(viewer feed.Viewer) (string, error) {
	items, err := s.assembly.Feed(viewer, feed.Query{})
	if err != nil {
		return "", err
	}

	base := s.baseURL()
	rss := &feeds.Feed{
		Title:       fmt.Sprintf("All %s posts", util.Name),
		Link:        &feeds.Link{Href: base + "/"},
		Description: fmt.Sprintf("Public feed of %s", util.GetNameAndVersion()),
		Author:      &feeds.Author{Name: "everyone"},
		Created:     time.Now(),
	}

	for _, item := range items {
		if item.IsPlaceholder() {
			continue
		}
		title := item.Post.CreatedAt.Format(util.DateTimeFormat())
		if item.Post.IsRepost() {
			title = fmt.Sprintf("%s reposted %s", item.ReposterName, item.AuthorName)
		}
		rss.Items = append(rss.Items, &feeds.Item{
			Id:          item.Post.Id,
			Title:       title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/?q=%s", base, item.Post.Id)},
			Content:     item.Content,
			Description: util.Truncate(item.Content, 80),
			Author:      &feeds.Author{Name: item.AuthorName},
			Created:     item.Post.CreatedAt,
		})
	}
	return rss.ToRss()
}

// GetActivityRSS renders the most recent activity log entries.
func (s *Server) GetActivityRSS() (string, error) {
	entries, err := s.db.ReadRecentActivity(s.conf.Conf.ActivityLimit)
	if err != nil {
		return "", err
	}

	base := s.baseURL()
	rss := &feeds.Feed{
		Title:       fmt.Sprintf("%s activity", util.Name),
		Link:        &feeds.Link{Href: base + "/activity"},
		Description: "Recent activity log entries",
		Created:     time.Now(),
	}
	for _, e := range entries {
		rss.Items = append(rss.Items, &feeds.Item{
			Id:          e.Id,
			Title:       fmt.Sprintf("%s %s %s/%s", e.ActorId, e.EventType, e.TargetType, e.TargetId),
			Link:        &feeds.Link{Href: base + "/activity"},
			Description: util.FormatMetadata(e.Metadata),
			Author:      &feeds.Author{Name: e.ActorId},
			Created:     e.CreatedAt,
		})
	}
	return rss.ToRss()
}
