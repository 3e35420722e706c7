package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestGetLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(10), 20)

	limiter1 := rl.getLimiter("192.168.1.1")
	require.NotNil(t, limiter1)
	assert.Same(t, limiter1, rl.getLimiter("192.168.1.1"))
	assert.NotSame(t, limiter1, rl.getLimiter("192.168.1.2"))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requestCount   int
		rateLimit      rate.Limit
		burst          int
		expectedStatus int
	}{
		{"under limit", 5, rate.Limit(10), 10, http.StatusOK},
		{"at burst limit", 10, rate.Limit(1), 10, http.StatusOK},
		{"over limit", 15, rate.Limit(1), 10, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RateLimitMiddleware(NewRateLimiter(tt.rateLimit, tt.burst)))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			var last *httptest.ResponseRecorder
			for i := 0; i < tt.requestCount; i++ {
				last = httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				req.RemoteAddr = "192.168.1.100:12345"
				router.ServeHTTP(last, req)
			}

			assert.Equal(t, tt.expectedStatus, last.Code)
			if tt.expectedStatus == http.StatusTooManyRequests {
				assert.Contains(t, last.Body.String(), "Rate limit exceeded")
			}
		})
	}
}

func TestRateLimitMiddlewareDifferentIPs(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiter(rate.Limit(1), 1)))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, ip := range []string{"192.168.1.1", "192.168.1.2"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = ip + ":12345"
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, ip)
	}
}

func TestMaxBytesMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		bodySize       int
		expectedStatus int
	}{
		{"under limit", 512, http.StatusOK},
		{"at limit", 1024, http.StatusOK},
		{"over limit", 2048, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(MaxBytesMiddleware(1024))
			router.POST("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", tt.bodySize)))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestViewerMiddleware(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")

	router := gin.New()
	router.Use(ViewerMiddleware(env.db))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s", viewerFrom(c).UserId, viewerFrom(c).RequestId)
	})
	router.GET("/private", AuthRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve := func(path, user, password, requestId string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if user != "" {
			req.SetBasicAuth(user, password)
		}
		if requestId != "" {
			req.Header.Set(RequestIdHeader, requestId)
		}
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("anonymous gets a fresh request id", func(t *testing.T) {
		w := serve("/whoami", "", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		id := w.Header().Get(RequestIdHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, "|"+id, w.Body.String())
	})

	t.Run("incoming request id is kept", func(t *testing.T) {
		w := serve("/whoami", "", "", "req-42")
		assert.Equal(t, "req-42", w.Header().Get(RequestIdHeader))
	})

	t.Run("valid credentials resolve the user", func(t *testing.T) {
		w := serve("/whoami", "alice", password("alice"), "req-1")
		assert.Equal(t, fmt.Sprintf("%s|req-1", env.userId(t, "alice")), w.Body.String())
	})

	t.Run("bad credentials are rejected", func(t *testing.T) {
		w := serve("/whoami", "alice", "wrong", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("auth required challenges anonymous", func(t *testing.T) {
		w := serve("/private", "", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, authRealm, w.Header().Get("WWW-Authenticate"))

		w = serve("/private", "alice", password("alice"), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
