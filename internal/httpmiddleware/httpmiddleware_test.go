package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"afterschool/internal/metrics"
)

func TestTokenBucket(t *testing.T) {
	l := NewTokenBucket(2, 60)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are per key")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "one token refilled")
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Hour)
	l.Allow("c")
	l.mu.Lock()
	_, kept := l.state["a"]
	l.mu.Unlock()
	assert.False(t, kept, "idle buckets are evicted")
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewTokenBucket(1, 1).GinMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, want, w.Code, "request %d", i)
	}
}

func preflight(r http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func corsRouter(t *testing.T, origins string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mw, err := CORS(origins)
	require.NoError(t, err)
	r := gin.New()
	r.Use(SecurityHeaders(), mw)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSPreflight(t *testing.T) {
	r := corsRouter(t, "https://school.example")

	w := preflight(r, "https://school.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://school.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = preflight(r, "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORSWithoutOriginsSendsNoHeaders(t *testing.T) {
	r := corsRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSRejectsWildcard(t *testing.T) {
	for _, origins := range []string{"*", "https://school.example, *", "https://*.example"} {
		_, err := CORS(origins)
		assert.Error(t, err, origins)
	}
	_, err := CORS("school.example")
	assert.Error(t, err, "origins need a scheme")
}

func TestObserve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(Observe(zap.New(core), m, "/healthz"))
	r.GET("/api/members/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/api/members/42", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	assert.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "/api/members/:id", entry.ContextMap()["route"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/members/:id", "404")))
}
