package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/botivate/sheetsync/pkg/jwt"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

func okRouter(mw ...gin.HandlerFunc) (*gin.Engine, *bool) {
	called := false
	router := gin.New()
	router.Use(mw...)
	handler := func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	}
	router.GET("/test", handler)
	router.POST("/test", handler)
	return router, &called
}

func TestWebhookSecretMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{"valid secret", "s3cret", "s3cret", http.StatusOK},
		{"wrong secret", "s3cret", "guess", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"unconfigured secret", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, called := okRouter(WebhookSecretMiddleware(tt.configured))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
			if tt.header != "" {
				req.Header.Set(WebhookSecretHeader, tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, *called)
		})
	}
}

func TestAdminJWTMiddleware(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret-key-with-enough-length", "sheetsync", 1)
	other := jwt.NewTokenManager("a-different-secret-key-entirely", "sheetsync", 1)

	adminToken, err := tm.GenerateToken("ops@example.com", jwt.RoleAdmin)
	require.NoError(t, err)
	viewerToken, err := tm.GenerateToken("viewer@example.com", "viewer")
	require.NoError(t, err)
	foreignToken, err := other.GenerateToken("ops@example.com", jwt.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"admin token", "Bearer " + adminToken, http.StatusOK},
		{"non-admin role", "Bearer " + viewerToken, http.StatusForbidden},
		{"foreign signature", "Bearer " + foreignToken, http.StatusUnauthorized},
		{"missing scheme", adminToken, http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, called := okRouter(AdminJWTMiddleware(tm))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, *called)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()
	router, _ := okRouter(rl.Middleware())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	rl := NewRateLimiter(0.5, 1) // one token every two seconds
	defer rl.Stop()
	router, called := okRouter(rl.Middleware())
	rejected := metrics.RateLimited.WithLabelValues("/test")
	before := testutil.ToFloat64(rejected)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("Retry-After"))

	*called = false
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "2", second.Header().Get("Retry-After"))
	assert.False(t, *called)
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimiter_CleanupForgetsIdleVisitors(t *testing.T) {
	rl := &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		r:        1000,
		b:        1,
		stop:     make(chan struct{}),
	}
	rl.getVisitor("10.0.0.1")
	go rl.cleanupVisitors(5 * time.Millisecond)
	defer rl.Stop()

	assert.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.visitors) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router, _ := okRouter(SecurityHeadersMiddleware())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestBodySizeLimitMiddleware(t *testing.T) {
	var readErr error
	router := gin.New()
	router.Use(BodySizeLimitMiddleware(8))
	router.POST("/test", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("0123456789")))
	assert.Error(t, readErr)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("0123")))
	assert.NoError(t, readErr)
}
