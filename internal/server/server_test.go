package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/vidtube/backend/internal/auth"
	"github.com/emilythestrangee/vidtube/backend/internal/config"
	"github.com/emilythestrangee/vidtube/backend/internal/handlers"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/observability"
	"github.com/emilythestrangee/vidtube/backend/internal/reactions"
	"github.com/emilythestrangee/vidtube/backend/internal/realtime"
)

type stubReactions struct {
	hub *realtime.Hub
}

func (s stubReactions) SetReaction(_ context.Context, viewerID, videoID int, kind models.ReactionKind) (reactions.Result, error) {
	res := reactions.Result{Liked: kind == models.ReactionLike, Disliked: kind == models.ReactionDislike}
	if res.Liked {
		res.LikesCount = 1
	} else {
		res.DislikesCount = 1
	}
	s.hub.Broadcast(realtime.VideoRoom(videoID), realtime.EventLikeUpdated, reactions.CountsPayload{
		VideoID:       videoID,
		LikesCount:    res.LikesCount,
		DislikesCount: res.DislikesCount,
	})
	return res, nil
}

func (stubReactions) Status(context.Context, int, int) (reactions.Status, error) {
	return reactions.Status{Liked: true}, nil
}

type testEnv struct {
	router *gin.Engine
	tokens *auth.Tokens
	hub    *realtime.Hub
	health map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      "secret",
		JWTExpiry:      time.Hour,
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hub := realtime.NewHub(metrics)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiry)
	env := &testEnv{tokens: tokens, hub: hub, health: map[string]string{"status": "up"}}

	handler := handlers.NewHandler(handlers.Deps{
		Tokens:    tokens,
		Reactions: stubReactions{hub: hub},
	})
	srv := newServer(cfg, func() map[string]string { return env.health }, handler, hub, tokens, metrics, reg)
	env.router = srv.RegisterRoutes()
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"up"`)

	env.health = map[string]string{"status": "down", "error": "db down"}
	w = env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vidtube_http_requests_total")
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/like/1"},
		{http.MethodPost, "/api/videos"},
		{http.MethodPost, "/api/videos/1/comments"},
		{http.MethodDelete, "/api/comments/1"},
		{http.MethodPost, "/api/subscriptions/2"},
		{http.MethodGet, "/api/history"},
		{http.MethodPost, "/api/watch-later/1"},
		{http.MethodPost, "/api/playlists"},
		{http.MethodPost, "/api/upload"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := env.do(httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestReactRoute(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.tokens.Issue(&models.User{ID: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/like/5", strings.NewReader(`{"type":"like"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := env.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"disliked":false,"likesCount":1,"dislikesCount":0}`, w.Body.String())

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/like/status/5/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"disliked":false}`, w.Body.String())
}

func TestReactionReachesWebsocketRoom(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"event": realtime.EventVideoJoin, "data": "5"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ack realtime.Event
	require.NoError(t, conn.ReadJSON(&ack))

	token, err := env.tokens.Issue(&models.User{ID: 1})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/like/5", strings.NewReader(`{"type":"like"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ev struct {
		Event string                  `json:"event"`
		Room  string                  `json:"room"`
		Data  reactions.CountsPayload `json:"data"`
	}
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, realtime.EventLikeUpdated, ev.Event)
	assert.Equal(t, "video:5", ev.Room)
	assert.Equal(t, reactions.CountsPayload{VideoID: 5, LikesCount: 1}, ev.Data)
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
