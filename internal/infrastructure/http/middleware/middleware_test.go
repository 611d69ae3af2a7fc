package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/test/testutils"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Environment = "production"
	cfg.Server.EnableCORS = true
	cfg.Server.AllowedOrigins = []string{"https://cookbook.example"}
	cfg.RateLimit.Enable = true
	cfg.RateLimit.RequestsPerMin = 60
	cfg.RateLimit.BurstSize = 2
	return cfg
}

func newEngine(m *Middleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.RequestID(), m.Recovery(), m.Security(), m.CORS(), m.RateLimit(), m.ErrorHandler())
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(errors.NewRecipeNotFoundError("7")) })
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_RequestIDAndSecurityHeaders(t *testing.T) {
	r := newEngine(New(testConfig(), zap.NewNop()))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc")
	assert.Equal(t, "abc", serve(r, req).Header().Get(RequestIDHeader))
}

func TestMiddleware_ErrorHandlerRendersAppError(t *testing.T) {
	r := newEngine(New(testConfig(), zap.NewNop()))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	testutils.NewHTTPAssertions(t).StatusCode(w, http.StatusNotFound)
	testutils.NewHTTPAssertions(t).ErrorResponse(w, string(errors.CodeRecipeNotFound))
}

func TestMiddleware_RecoveryReturns500(t *testing.T) {
	r := newEngine(New(testConfig(), zap.NewNop()))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	testutils.NewHTTPAssertions(t).ErrorResponse(w, string(errors.CodeInternal))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMiddleware_CORS(t *testing.T) {
	r := newEngine(New(testConfig(), zap.NewNop()))

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "https://cookbook.example")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://cookbook.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.Empty(t, serve(r, req).Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_RateLimitIsPerClient(t *testing.T) {
	r := newEngine(New(testConfig(), zap.NewNop()))

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestClientLimiters_Cleanup(t *testing.T) {
	l := NewClientLimiters(60, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * time.Minute)
	l.Allow("b")
	l.Cleanup(time.Minute)

	assert.Equal(t, 1, l.Len())
}

func TestBrotli(t *testing.T) {
	body := strings.Repeat("rendang ", 200)
	h := Brotli(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, body)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := serve(h, req)

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))

	plain := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, plain.Header().Get("Content-Encoding"))
	assert.Equal(t, body, plain.Body.String())
}

func TestSecurity_ChiHeaders(t *testing.T) {
	h := Security(true)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))

	w := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	testutils.NewHTTPAssertions(t).SecurityHeaders(w)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	static := serve(h, httptest.NewRequest(http.MethodGet, "/static/js/share.js", nil))
	assert.Contains(t, static.Header().Get("Cache-Control"), "max-age")
}

func TestLogger_AttachesTraceID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	serve(h, httptest.NewRequest(http.MethodGet, "/menu", nil).WithContext(ctx))
	serve(h, httptest.NewRequest(http.MethodGet, "/recipes", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, traceID.String(), entries[0].ContextMap()["trace_id"])
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}
