package web

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/feed"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	viewerKey       = "viewer"
	userKey         = "user"
	RequestIdHeader = "X-Request-Id"
	authRealm       = `Basic realm="tusk"`
)

// RateLimiter holds rate limiters for different IP addresses
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter
// r is requests per second, b is burst size
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    b,
	}
}

// getLimiter returns the rate limiter for a given IP address
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = limiter
	}

	return limiter
}

// cleanupOldLimiters drops all limiters once too many IPs have been seen.
func (rl *RateLimiter) cleanupOldLimiters() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		if len(rl.limiters) > 10000 {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware creates a Gin middleware for rate limiting
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	go rl.cleanupOldLimiters()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.getLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// MaxBytesMiddleware limits the size of request bodies
func MaxBytesMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "Request body too large",
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// ViewerMiddleware attaches a feed.Viewer to every request. Basic auth
// credentials, when present, must be valid; requests without them are
// anonymous.
func ViewerMiddleware(database *db.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header(RequestIdHeader, requestId)
		viewer := feed.Viewer{RequestId: requestId}

		if username, password, ok := c.Request.BasicAuth(); ok {
			user, err := database.Login(username, password)
			switch {
			case errors.Is(err, domain.ErrInvalidCredentials):
				log.Warn("rejected login", "username", username, "request", requestId)
				c.Header("WWW-Authenticate", authRealm)
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			case err != nil:
				log.Error("login failed", "err", err, "request", requestId)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			viewer.UserId = user.Id
			c.Set(userKey, user)
		}

		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// AuthRequired rejects anonymous requests with a basic auth challenge.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewerFrom(c).UserId == "" {
			c.Header("WWW-Authenticate", authRealm)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func viewerFrom(c *gin.Context) feed.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(feed.Viewer); ok {
			return viewer
		}
	}
	return feed.Viewer{}
}

func userFrom(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}
