package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/util"
	"github.com/gin-gonic/gin"
)

var errInteractionsDisabled = errors.New("interactions are disabled for this post")

type IndexPageData struct {
	Title    string
	Host     string
	SSHPort  int
	Viewer   *domain.User
	Query    QueryView
	Posts    []PostView
	Trending []domain.Hashtag
	Closed   bool
}

type ProfilePageData struct {
	Title       string
	Host        string
	SSHPort     int
	Viewer      *domain.User
	User        UserView
	Posts       []PostView
	TotalPosts  int
	IsOwn       bool
	IsFollowing bool
}

type ActivityPageData struct {
	Title   string
	Viewer  *domain.User
	Entries []ActivityView
}

// QueryView echoes the feed filters back into the page.
type QueryView struct {
	Scope  string
	Tag    string
	Text   string
	Period string
	Sort   string
}

type UserView struct {
	Id          string
	Username    string
	DisplayName string
	Bio         string
	AvatarPath  string
	JoinedAgo   string
	Followers   int
	Following   int
}

type PostView struct {
	Id                  string
	AuthorId            string
	AuthorName          string
	ReposterName        string
	IsRepost            bool
	Placeholder         bool
	OriginalMeta        string
	Content             string
	Tags                []string
	Likes               int
	Liked               bool
	CommentCount        int
	Owned               bool
	InteractionsEnabled bool
	TimeAgo             string
	Threads             []ThreadView
}

type CommentView struct {
	Id         string
	AuthorName string
	Content    string
	TimeAgo    string
	Owned      bool
}

type ThreadView struct {
	CommentView
	Replies []CommentView
}

type ActivityView struct {
	Time       string
	EventType  string
	ActorId    string
	TargetType string
	TargetId   string
	Metadata   string
}

func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else if duration < 30*24*time.Hour {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	} else {
		return t.Format("Jan 2, 2006")
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInteractionsDisabled):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "request", viewerFrom(c).RequestId, "err", err)
	}
	c.HTML(status, "error.html", gin.H{"Title": http.StatusText(status), "Error": err.Error(), "Viewer": userFrom(c)})
}

// back redirects to the page the form was posted from.
func back(c *gin.Context) {
	target := "/"
	if ref, err := url.Parse(c.Request.Referer()); err == nil && strings.HasPrefix(ref.Path, "/") {
		target = ref.Path
		if ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
	}
	c.Redirect(http.StatusSeeOther, target)
}

func queryFrom(c *gin.Context) (feed.Query, QueryView) {
	q := feed.Query{
		Scope:  feed.ParseScope(c.Query("scope")),
		Tag:    strings.TrimSpace(c.Query("tag")),
		Text:   strings.TrimSpace(c.Query("q")),
		Window: feed.ParseWindow(c.Query("period")),
		Sort:   feed.ParseSort(c.Query("sort")),
	}
	return q, QueryView{
		Scope:  string(q.Scope),
		Tag:    q.Tag,
		Text:   q.Text,
		Period: string(q.Window),
		Sort:   string(q.Sort),
	}
}

func (s *Server) HandleIndex(c *gin.Context) {
	viewer := viewerFrom(c)
	q, qv := queryFrom(c)

	items, err := s.assembly.Feed(viewer, q)
	if err != nil {
		s.fail(c, err)
		return
	}
	posts, err := s.postViews(viewer, items)
	if err != nil {
		s.fail(c, err)
		return
	}
	trending, err := s.db.ReadTrendingHashtags(10)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", IndexPageData{
		Title:    "Home",
		Host:     s.conf.Conf.Host,
		SSHPort:  s.conf.Conf.SshPort,
		Viewer:   userFrom(c),
		Query:    qv,
		Posts:    posts,
		Trending: trending,
		Closed:   s.conf.Conf.Closed,
	})
}

// HandleProfile shows a user by username, or by id as a fallback.
func (s *Server) HandleProfile(c *gin.Context) {
	username := c.Param("username")
	viewer := viewerFrom(c)

	user, err := s.db.ReadUserByUsername(username)
	if err == nil && user == nil {
		user, err = s.db.ReadUserById(username)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if user == nil {
		s.fail(c, fmt.Errorf("%w: user %s", domain.ErrNotFound, username))
		return
	}

	items, err := s.assembly.Feed(viewer, feed.Query{})
	if err != nil {
		s.fail(c, err)
		return
	}
	var own []feed.Item
	for _, item := range items {
		if item.Post.AuthorId == user.Id {
			own = append(own, item)
		}
	}
	posts, err := s.postViews(viewer, own)
	if err != nil {
		s.fail(c, err)
		return
	}

	followers, following, err := s.db.ReadFollowCounts(user.Id)
	if err != nil {
		s.fail(c, err)
		return
	}
	isFollowing := false
	if viewer.UserId != "" {
		if isFollowing, err = s.db.IsFollowing(viewer.UserId, user.Id); err != nil {
			s.fail(c, err)
			return
		}
	}

	c.HTML(http.StatusOK, "profile.html", ProfilePageData{
		Title:   fmt.Sprintf("@%s", user.Username),
		Host:    s.conf.Conf.Host,
		SSHPort: s.conf.Conf.SshPort,
		Viewer:  userFrom(c),
		User: UserView{
			Id:          user.Id,
			Username:    user.Username,
			DisplayName: user.Name(),
			Bio:         user.Bio,
			AvatarPath:  user.AvatarPath,
			JoinedAgo:   formatTimeAgo(user.CreatedAt),
			Followers:   followers,
			Following:   following,
		},
		Posts:       posts,
		TotalPosts:  len(posts),
		IsOwn:       viewer.UserId == user.Id,
		IsFollowing: isFollowing,
	})
}

func (s *Server) HandleActivity(c *gin.Context) {
	entries, err := s.db.ReadRecentActivity(s.conf.Conf.ActivityLimit)
	if err != nil {
		s.fail(c, err)
		return
	}
	views := make([]ActivityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, activityView(e))
	}
	c.HTML(http.StatusOK, "activity.html", ActivityPageData{
		Title:   "Activity",
		Viewer:  userFrom(c),
		Entries: views,
	})
}

// HandleLogin challenges for credentials until the browser sends valid ones.
func (s *Server) HandleLogin(c *gin.Context) {
	if viewerFrom(c).UserId == "" {
		c.Header("WWW-Authenticate", authRealm)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

type signupForm struct {
	Username    string `form:"username" binding:"required"`
	Password    string `form:"password" binding:"required"`
	DisplayName string `form:"display_name"`
}

func (s *Server) HandleSignup(c *gin.Context) {
	if s.conf.Conf.Closed {
		s.fail(c, fmt.Errorf("%w: registration is closed", domain.ErrPermission))
		return
	}
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	id, err := s.db.CreateUser(form.Username, form.Password, form.DisplayName)
	if err != nil {
		s.fail(c, err)
		return
	}
	log.Info("user signed up", "id", id, "username", form.Username)
	c.Redirect(http.StatusSeeOther, "/login")
}

type postForm struct {
	Content string `form:"content"`
	Tags    string `form:"tags"`
}

func (s *Server) HandleCreatePost(c *gin.Context) {
	viewer := viewerFrom(c)
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	id, err := s.db.CreatePost(viewer.UserId, form.Content, "")
	if err != nil {
		s.fail(c, err)
		return
	}
	if tags := splitTags(form.Tags); len(tags) > 0 {
		if _, err := s.db.IndexManualHashtags(id, tags); err != nil {
			s.fail(c, err)
			return
		}
	}
	back(c)
}

// interactive loads the post and rejects it when interactions are disabled.
func (s *Server) interactive(viewer feed.Viewer, postId string) (*feed.Item, error) {
	item, err := s.assembly.Item(viewer, postId)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: post %s", domain.ErrNotFound, postId)
	}
	if !item.InteractionsEnabled {
		return nil, errInteractionsDisabled
	}
	return item, nil
}

func (s *Server) HandleRepost(c *gin.Context) {
	viewer := viewerFrom(c)
	postId := c.Param("id")
	if _, err := s.interactive(viewer, postId); err != nil {
		s.fail(c, err)
		return
	}
	if _, err := s.db.CreatePost(viewer.UserId, c.PostForm("content"), postId); err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func (s *Server) HandleLike(c *gin.Context) {
	viewer := viewerFrom(c)
	postId := c.Param("id")
	if _, err := s.interactive(viewer, postId); err != nil {
		s.fail(c, err)
		return
	}
	if _, _, err := s.db.ToggleLike(postId, viewer.UserId); err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func (s *Server) HandleDeletePost(c *gin.Context) {
	if err := s.db.SoftDeletePost(c.Param("id"), viewerFrom(c).UserId); err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func (s *Server) HandleRestorePost(c *gin.Context) {
	if err := s.db.RestorePost(c.Param("id"), viewerFrom(c).UserId); err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func (s *Server) HandleCreateComment(c *gin.Context) {
	viewer := viewerFrom(c)
	postId := c.Param("id")
	if _, err := s.interactive(viewer, postId); err != nil {
		s.fail(c, err)
		return
	}
	_, err := s.db.CreateComment(postId, viewer.UserId, c.PostForm("content"), c.PostForm("parent_id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func (s *Server) HandleDeleteComment(c *gin.Context) {
	if err := s.db.DeleteComment(c.Param("id"), viewerFrom(c).UserId); err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func (s *Server) HandleFollow(c *gin.Context) {
	s.handleFollowEdge(c, true)
}

func (s *Server) HandleUnfollow(c *gin.Context) {
	s.handleFollowEdge(c, false)
}

func (s *Server) handleFollowEdge(c *gin.Context, follow bool) {
	viewer := viewerFrom(c)
	target, err := s.db.ReadUserById(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if target == nil {
		s.fail(c, fmt.Errorf("%w: user %s", domain.ErrNotFound, c.Param("id")))
		return
	}
	if follow {
		_, err = s.db.Follow(viewer.UserId, target.Id)
	} else {
		_, err = s.db.Unfollow(viewer.UserId, target.Id)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

type profileForm struct {
	DisplayName *string `form:"display_name"`
	Bio         *string `form:"bio"`
	AvatarPath  *string `form:"avatar_path"`
}

func (s *Server) HandleUpdateProfile(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	update := domain.ProfileUpdate{
		DisplayName: form.DisplayName,
		Bio:         form.Bio,
		AvatarPath:  form.AvatarPath,
	}
	if err := s.db.UpdateProfile(viewerFrom(c).UserId, update); err != nil {
		s.fail(c, err)
		return
	}
	back(c)
}

func splitTags(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
}

func (s *Server) postViews(viewer feed.Viewer, items []feed.Item) ([]PostView, error) {
	users, err := s.db.ReadAllUsers()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Id] = u.Name()
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	views := make([]PostView, 0, len(items))
	for _, item := range items {
		v := PostView{
			Id:                  item.Post.Id,
			AuthorId:            item.AuthorId,
			AuthorName:          item.AuthorName,
			ReposterName:        item.ReposterName,
			IsRepost:            item.Post.IsRepost(),
			Placeholder:         item.IsPlaceholder(),
			Content:             item.Content,
			Tags:                item.Tags,
			Likes:               item.Likes,
			Liked:               item.LikedByViewer,
			CommentCount:        item.CommentCount,
			Owned:               item.Owned,
			InteractionsEnabled: item.InteractionsEnabled,
			TimeAgo:             formatTimeAgo(item.Post.CreatedAt),
		}
		if item.Original != nil {
			v.OriginalMeta = fmt.Sprintf("%s · %s", name(item.Original.AuthorId), util.FormatTimestamp(item.Original.CreatedAt))
		}

		comments, err := s.db.ReadCommentsByPostId(item.Post.Id)
		if err != nil {
			return nil, err
		}
		for _, thread := range feed.Thread(comments) {
			tv := ThreadView{CommentView: commentView(viewer, thread.Root, name)}
			for _, reply := range thread.Replies {
				tv.Replies = append(tv.Replies, commentView(viewer, reply, name))
			}
			v.Threads = append(v.Threads, tv)
		}
		views = append(views, v)
	}
	return views, nil
}

func commentView(viewer feed.Viewer, c domain.Comment, name func(string) string) CommentView {
	return CommentView{
		Id:         c.Id,
		AuthorName: name(c.AuthorId),
		Content:    c.Content,
		TimeAgo:    formatTimeAgo(c.CreatedAt),
		Owned:      viewer.UserId != "" && viewer.UserId == c.AuthorId,
	}
}

func activityView(e domain.ActivityLogEntry) ActivityView {
	return ActivityView{
		Time:       util.FormatTimestamp(e.CreatedAt),
		EventType:  e.EventType.String(),
		ActorId:    e.ActorId,
		TargetType: e.TargetType,
		TargetId:   e.TargetId,
		Metadata:   util.FormatMetadata(e.Metadata),
	}
}
