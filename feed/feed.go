package feed

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
	"github.com/google/uuid"
)

// DefaultBaseLimit is how many feed rows are read before any filtering when
// no other limit is configured.
const DefaultBaseLimit = 500

// Source is the read side of the database the assembler composes.
type Source interface {
	ReadFeed(limit int) ([]domain.Post, error)
	ReadAllPosts() ([]domain.Post, error)
	ReadPostIdsByHashtag(tag string) ([]string, error)
	ReadFollowing(userId string) ([]string, error)
	ReadPostHashtags() (map[string][]string, error)
	CountLikesByPost() (map[string]int, error)
	ReadLikedPostIds(userId string) (map[string]bool, error)
	CountCommentsByPost() (map[string]int, error)
	ReadAllUsers() ([]domain.User, error)
}

type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeFollowing Scope = "following"
)

func ParseScope(s string) Scope {
	if Scope(strings.ToLower(strings.TrimSpace(s))) == ScopeFollowing {
		return ScopeFollowing
	}
	return ScopeAll
}

type Window string

const (
	WindowNone  Window = "none"
	WindowDay   Window = "1d"
	WindowWeek  Window = "7d"
	WindowMonth Window = "30d"
)

func ParseWindow(s string) Window {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowDay, WindowWeek, WindowMonth:
		return w
	}
	return WindowNone
}

// Duration returns the window length, zero for WindowNone.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

type Sort string

const (
	SortRecency  Sort = "recency"
	SortLikes    Sort = "likes"
	SortComments Sort = "comments"
)

func ParseSort(s string) Sort {
	switch o := Sort(strings.ToLower(strings.TrimSpace(s))); o {
	case SortLikes, SortComments:
		return o
	}
	return SortRecency
}

// Query selects and orders feed items. The zero value lists everything by
// recency.
type Query struct {
	Scope  Scope
	Tag    string
	Text   string
	Window Window
	Sort   Sort
	Limit  int
}

// Viewer identifies who a feed is assembled for. An empty UserId is an
// anonymous visitor.
type Viewer struct {
	UserId    string
	RequestId string
}

func NewViewer(userId string) Viewer {
	return Viewer{UserId: userId, RequestId: uuid.NewString()}
}

// Item is a post prepared for display.
type Item struct {
	Post domain.Post
	// Original is the reposted post when its row exists, deleted or not.
	Original        *domain.Post
	OriginalMissing bool
	OriginalDeleted bool
	// InteractionsEnabled is false for a repost whose original is gone.
	InteractionsEnabled bool

	// Content and AuthorId are what to show: the original's for a live repost.
	Content    string
	AuthorId   string
	AuthorName string
	// ReposterName is set for reposts.
	ReposterName string

	Tags          []string
	Likes         int
	LikedByViewer bool
	CommentCount  int
	// Owned reports whether the viewer wrote the post row itself.
	Owned bool
}

// IsPlaceholder reports whether the item stands in for a deleted original.
func (i *Item) IsPlaceholder() bool {
	return i.Post.IsRepost() && !i.InteractionsEnabled
}

type Assembler struct {
	source    Source
	baseLimit int
	now       func() time.Time
}

// NewAssembler reads at most baseLimit feed rows per pass. A baseLimit of
// zero or less uses DefaultBaseLimit.
func NewAssembler(source Source, baseLimit int) *Assembler {
	if baseLimit <= 0 {
		baseLimit = DefaultBaseLimit
	}
	return &Assembler{source: source, baseLimit: baseLimit, now: util.Now}
}

// SetClock replaces the time source used by recency windows.
func (a *Assembler) SetClock(now func() time.Time) {
	a.now = now
}

// Feed runs the filter pipeline for q and returns assembled items. The steps
// run in a fixed order: tag, scope, text, window, sort.
func (a *Assembler) Feed(viewer Viewer, q Query) ([]Item, error) {
	posts, err := a.source.ReadFeed(a.baseLimit)
	if err != nil {
		return nil, err
	}

	if tag := strings.TrimSpace(q.Tag); tag != "" {
		ids, err := a.source.ReadPostIdsByHashtag(tag)
		if err != nil {
			return nil, err
		}
		posts = keepIds(posts, ids)
	}

	if q.Scope == ScopeFollowing {
		following, err := a.source.ReadFollowing(viewer.UserId)
		if err != nil {
			return nil, err
		}
		posts = keepAuthors(posts, append(following, viewer.UserId))
	}

	all, err := a.postsById()
	if err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(q.Text); text != "" {
		posts = slices.DeleteFunc(posts, func(p domain.Post) bool {
			return !MatchesQuery(p, text, all)
		})
	}

	if d := q.Window.Duration(); d > 0 {
		cutoff := a.now().Add(-d)
		posts = slices.DeleteFunc(posts, func(p domain.Post) bool {
			return p.CreatedAt.Before(cutoff)
		})
	}

	b, err := a.load(viewer, all)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, b.item(viewer, p))
	}

	sortItems(items, q.Sort)
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

// Item assembles a single post, or returns nil when no such post exists.
func (a *Assembler) Item(viewer Viewer, postId string) (*Item, error) {
	all, err := a.postsById()
	if err != nil {
		return nil, err
	}
	p, ok := all[postId]
	if !ok {
		return nil, nil
	}
	b, err := a.load(viewer, all)
	if err != nil {
		return nil, err
	}
	item := b.item(viewer, p)
	return &item, nil
}

func (a *Assembler) postsById() (map[string]domain.Post, error) {
	posts, err := a.source.ReadAllPosts()
	if err != nil {
		return nil, err
	}
	byId := make(map[string]domain.Post, len(posts))
	for _, p := range posts {
		byId[p.Id] = p
	}
	return byId, nil
}

// bundle holds the bulk lookups one assembly pass needs.
type bundle struct {
	posts    map[string]domain.Post
	tags     map[string][]string
	likes    map[string]int
	liked    map[string]bool
	comments map[string]int
	names    map[string]string
}

func (a *Assembler) load(viewer Viewer, posts map[string]domain.Post) (*bundle, error) {
	b := &bundle{posts: posts, names: make(map[string]string)}
	var err error
	if b.tags, err = a.source.ReadPostHashtags(); err != nil {
		return nil, err
	}
	if b.likes, err = a.source.CountLikesByPost(); err != nil {
		return nil, err
	}
	if b.liked, err = a.source.ReadLikedPostIds(viewer.UserId); err != nil {
		return nil, err
	}
	if b.comments, err = a.source.CountCommentsByPost(); err != nil {
		return nil, err
	}
	users, err := a.source.ReadAllUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		b.names[u.Id] = u.Name()
	}
	return b, nil
}

func (b *bundle) name(userId string) string {
	if n, ok := b.names[userId]; ok {
		return n
	}
	return userId
}

func (b *bundle) item(viewer Viewer, p domain.Post) Item {
	item := Item{
		Post:                p,
		InteractionsEnabled: true,
		Content:             p.Content,
		AuthorId:            p.AuthorId,
		AuthorName:          b.name(p.AuthorId),
		Tags:                b.tags[p.Id],
		Likes:               b.likes[p.Id],
		LikedByViewer:       b.liked[p.Id],
		CommentCount:        b.comments[p.Id],
		Owned:               viewer.UserId != "" && viewer.UserId == p.AuthorId,
	}

	if p.IsRepost() {
		item.ReposterName = b.name(p.AuthorId)
		original, ok := b.posts[p.OriginalPostId]
		switch {
		case !ok:
			item.OriginalMissing = true
		case original.IsDeleted:
			item.Original = &original
			item.OriginalDeleted = true
		default:
			item.Original = &original
			item.Content = original.Content
			item.AuthorId = original.AuthorId
			item.AuthorName = b.name(original.AuthorId)
			item.Tags = b.tags[original.Id]
		}
		if item.OriginalMissing || item.OriginalDeleted {
			item.InteractionsEnabled = false
			item.Content = ""
			item.Tags = nil
		}
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}

// MatchesQuery reports whether the trimmed, lower-cased query is a substring
// of the post's content or author id. A repost is matched against its
// original when the original row exists.
func MatchesQuery(p domain.Post, query string, posts map[string]domain.Post) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	row := p
	if p.IsRepost() {
		if original, ok := posts[p.OriginalPostId]; ok {
			row = original
		}
	}
	return strings.Contains(strings.ToLower(row.Content), q) ||
		strings.Contains(strings.ToLower(row.AuthorId), q)
}

func sortItems(items []Item, by Sort) {
	key := func(Item) int { return 0 }
	switch by {
	case SortLikes:
		key = func(i Item) int { return i.Likes }
	case SortComments:
		key = func(i Item) int { return i.CommentCount }
	}
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(key(b), key(a)); c != 0 {
			return c
		}
		return b.Post.CreatedAt.Compare(a.Post.CreatedAt)
	})
}

func keepIds(posts []domain.Post, ids []string) []domain.Post {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return slices.DeleteFunc(posts, func(p domain.Post) bool {
		_, ok := set[p.Id]
		return !ok
	})
}

func keepAuthors(posts []domain.Post, authors []string) []domain.Post {
	return slices.DeleteFunc(posts, func(p domain.Post) bool {
		return !slices.Contains(authors, p.AuthorId)
	})
}

// CommentThread is a root comment with its replies, oldest first.
type CommentThread struct {
	Root    domain.Comment
	Replies []domain.Comment
}

// Thread groups comments under their roots in input order. Replies whose
// root is not among comments are dropped.
func Thread(comments []domain.Comment) []CommentThread {
	var threads []CommentThread
	index := make(map[string]int)
	for _, c := range comments {
		if !c.IsReply() {
			index[c.Id] = len(threads)
			threads = append(threads, CommentThread{Root: c})
		}
	}
	for _, c := range comments {
		if !c.IsReply() {
			continue
		}
		if i, ok := index[c.ParentCommentId]; ok {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}
	return threads
}
