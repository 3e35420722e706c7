package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"golang.org/x/time/rate"
)

//go:embed templates/*.html
var templatesFS embed.FS

// maxFormBytes caps every mutating request body.
const maxFormBytes = 64 * 1024

// Server serves the web frontend and the RSS feeds.
type Server struct {
	conf     *util.AppConfig
	db       *db.DB
	assembly *feed.Assembler
}

func NewServer(conf *util.AppConfig, database *db.DB) *Server {
	return &Server{
		conf:     conf,
		db:       database,
		assembly: feed.NewAssembler(database, conf.Conf.FeedLimit),
	}
}

// Router returns an http.Server for the web frontend. The caller starts and
// stops it.
func Router(conf *util.AppConfig, database *db.DB) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.Conf.Host, conf.Conf.HttpPort),
		Handler: NewServer(conf, database).Engine(),
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"timeAgo": formatTimeAgo,
		"highlight": func(text, query string) template.HTML {
			return template.HTML(feed.Highlight(text, query))
		},
		"join": strings.Join,
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict needs key/value pairs")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				key, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %v is not a string", kv[i])
				}
				m[key] = kv[i+1]
			}
			return m, nil
		},
	}
}

// Engine builds the gin engine with all routes.
func (s *Server) Engine() *gin.Engine {
	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	limiter := NewRateLimiter(rate.Limit(s.conf.Conf.RateLimit), s.conf.Conf.RateBurst)
	g.Use(RateLimitMiddleware(limiter))
	g.Use(ViewerMiddleware(s.db))

	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html"))
	g.SetHTMLTemplate(tmpl)

	g.GET("/", s.HandleIndex)
	g.GET("/u/:username", s.HandleProfile)
	g.GET("/activity", s.HandleActivity)
	g.GET("/login", s.HandleLogin)

	g.GET("/feed.rss", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")
		rss, err := s.GetFeedRSS(viewerFrom(c))
		if err != nil {
			log.Error("could not render feed rss", "err", err)
			c.Render(500, render.String{Format: ""})
			return
		}
		c.Render(200, render.String{Format: "%s", Data: []any{rss}})
	})

	g.GET("/activity.rss", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")
		rss, err := s.GetActivityRSS()
		if err != nil {
			log.Error("could not render activity rss", "err", err)
			c.Render(500, render.String{Format: ""})
			return
		}
		c.Render(200, render.String{Format: "%s", Data: []any{rss}})
	})

	forms := g.Group("/", MaxBytesMiddleware(maxFormBytes))
	forms.POST("/signup", s.HandleSignup)

	authed := forms.Group("/", AuthRequired())
	authed.POST("/posts", s.HandleCreatePost)
	authed.POST("/posts/:id/repost", s.HandleRepost)
	authed.POST("/posts/:id/like", s.HandleLike)
	authed.POST("/posts/:id/delete", s.HandleDeletePost)
	authed.POST("/posts/:id/restore", s.HandleRestorePost)
	authed.POST("/posts/:id/comments", s.HandleCreateComment)
	authed.POST("/comments/:id/delete", s.HandleDeleteComment)
	authed.POST("/users/:id/follow", s.HandleFollow)
	authed.POST("/users/:id/unfollow", s.HandleUnfollow)
	authed.POST("/profile", s.HandleUpdateProfile)

	return g
}
