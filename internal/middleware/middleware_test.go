package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/auth"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", apperror.Validation("Invalid video ID"), http.StatusBadRequest, "Invalid video ID"},
		{"unauthorized", apperror.Unauthorized("Authentication required"), http.StatusUnauthorized, "Authentication required"},
		{"forbidden", apperror.Forbidden("nope"), http.StatusForbidden, "nope"},
		{"not found", apperror.NotFound("Video not found"), http.StatusNotFound, "Video not found"},
		{"upstream", apperror.Upstream("Failed to count likes", errors.New("conn reset")), http.StatusBadGateway, "Failed to count likes"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler())
			router.GET("/x", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeEnvelope(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func newAuthRouter(tokens *auth.Tokens) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandler())
	identity := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c), "role": Role(c)})
	}
	router.GET("/private", AuthMiddleware(tokens), identity)
	router.GET("/public", OptionalAuth(tokens), identity)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	token, err := tokens.Issue(&models.User{ID: 5, Role: models.RoleAdmin})
	require.NoError(t, err)
	router := newAuthRouter(tokens)

	tests := []struct {
		name       string
		header     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + token, "/private", http.StatusOK, `{"userId":5,"role":"admin"}`},
		{"lowercase scheme", "bearer " + token, "/private", http.StatusOK, `{"userId":5,"role":"admin"}`},
		{"missing header", "", "/private", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", "/private", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", "/private", http.StatusUnauthorized, ""},
		{"optional anonymous", "", "/public", http.StatusOK, `{"userId":0,"role":""}`},
		{"optional bad token", "Bearer nope", "/public", http.StatusOK, `{"userId":0,"role":""}`},
		{"optional valid", "Bearer " + token, "/public", http.StatusOK, `{"userId":5,"role":"admin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			} else {
				assert.False(t, decodeEnvelope(t, w).Success)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	// other clients have their own bucket
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.allow("10.0.0.1")
	now = now.Add(visitorTTL + time.Second)
	limiter.allow("10.0.0.2")
	limiter.evictIdle()

	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestOriginMatcher(t *testing.T) {
	match := OriginMatcher([]string{
		"http://localhost:3000/",
		"*.vercel.app",
		"https://*.example.com",
	})

	allowed := []string{
		"http://localhost:3000",
		"https://my-app.vercel.app",
		"http://preview.vercel.app",
		"https://app.example.com",
		"https://a.b.example.com",
	}
	denied := []string{
		"http://localhost:3001",
		"https://vercel.app",
		"http://app.example.com",
		"https://example.com",
		"https://evilexample.com",
		"",
	}
	for _, o := range allowed {
		assert.True(t, match(o), o)
	}
	for _, o := range denied {
		assert.False(t, match(o), o)
	}

	assert.True(t, OriginMatcher([]string{"*"})("https://anything.test"))
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://*.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://other.test")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckOrigin(t *testing.T) {
	check := CheckOrigin([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.test")
	assert.False(t, check(req))
}

func TestRequestLoggerCountsRoutes(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	router := gin.New()
	router.Use(RequestLogger(metrics))
	router.GET("/videos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/videos/1", "/videos/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/videos/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRequestLoggerIncludesTraceID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{0, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})

	router := gin.New()
	router.Use(RequestLogger(observability.NewMetrics(prometheus.NewRegistry())))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req = req.WithContext(trace.ContextWithSpanContext(req.Context(), sc))
	router.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, traceID.String(), line["trace_id"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
}
