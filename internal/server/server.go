package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/vidtube/backend/internal/auth"
	"github.com/emilythestrangee/vidtube/backend/internal/comments"
	"github.com/emilythestrangee/vidtube/backend/internal/config"
	"github.com/emilythestrangee/vidtube/backend/internal/database"
	"github.com/emilythestrangee/vidtube/backend/internal/handlers"
	"github.com/emilythestrangee/vidtube/backend/internal/middleware"
	"github.com/emilythestrangee/vidtube/backend/internal/observability"
	"github.com/emilythestrangee/vidtube/backend/internal/reactions"
	"github.com/emilythestrangee/vidtube/backend/internal/realtime"
	"github.com/emilythestrangee/vidtube/backend/internal/store"
	"github.com/emilythestrangee/vidtube/backend/internal/subscriptions"
)

type Server struct {
	cfg      *config.Config
	health   func() map[string]string
	handler  *handlers.Handler
	hub      *realtime.Hub
	tokens   *auth.Tokens
	limiter  *middleware.RateLimiter
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
}

// New wires the stores, services and handlers around an open database.
// uploader may be nil when object storage is not configured.
func New(cfg *config.Config, db database.Service, uploader handlers.Uploader, reg *prometheus.Registry) *Server {
	metrics := observability.NewMetrics(reg)
	hub := realtime.NewHub(metrics)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiry)

	gormDB := db.GetDB()
	users := store.NewUsers(gormDB)
	videos := store.NewVideos(gormDB)

	handler := handlers.NewHandler(handlers.Deps{
		Users:         users,
		Videos:        videos,
		Library:       store.NewLibrary(gormDB),
		Playlists:     store.NewPlaylists(gormDB),
		Tokens:        tokens,
		Reactions:     reactions.NewService(store.NewReactions(gormDB), videos, hub, metrics),
		Comments:      comments.NewService(store.NewComments(gormDB), videos, hub),
		Subscriptions: subscriptions.NewService(store.NewSubscriptions(gormDB), users, metrics),
		Uploader:      uploader,
	})

	return newServer(cfg, db.Health, handler, hub, tokens, metrics, reg)
}

func newServer(
	cfg *config.Config,
	health func() map[string]string,
	handler *handlers.Handler,
	hub *realtime.Hub,
	tokens *auth.Tokens,
	metrics *observability.Metrics,
	gatherer prometheus.Gatherer,
) *Server {
	return &Server{
		cfg:      cfg,
		health:   health,
		handler:  handler,
		hub:      hub,
		tokens:   tokens,
		limiter:  middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		metrics:  metrics,
		gatherer: gatherer,
	}
}

// HTTPServer builds the http.Server for the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + s.cfg.Port,
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		// Large video uploads are read and answered within one request.
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
	}
}

func (s *Server) Limiter() *middleware.RateLimiter {
	return s.limiter
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(observability.ServiceName()),
		middleware.RequestLogger(s.metrics),
		middleware.CORS(s.cfg.CORSOrigins),
		middleware.ErrorHandler(),
	)
	r.NoRoute(middleware.NotFound)

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	r.GET("/ws", realtime.NewHandler(s.hub, middleware.CheckOrigin(s.cfg.CORSOrigins)).Serve)

	h := s.handler
	api := r.Group("/api", s.limiter.Middleware())
	{
		// Auth routes (public)
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)

		// Public reads; a valid token adds the viewer's own state
		public := api.Group("", middleware.OptionalAuth(s.tokens))
		{
			public.GET("/videos", h.Video.ListVideos)
			public.GET("/videos/:id", h.Video.GetVideo)
			public.GET("/videos/:id/comments", h.Comment.GetComments)
			public.GET("/users/:id", h.User.GetChannel)
			public.GET("/like/status/:videoId/:userId", h.Reaction.Status)
			public.GET("/playlists/:id", h.Playlist.Get)
		}

		// Protected routes (authentication required)
		protected := api.Group("", middleware.AuthMiddleware(s.tokens))
		{
			protected.GET("/auth/me", h.Auth.Me)
			protected.PUT("/users/me", h.User.UpdateProfile)

			protected.POST("/videos", h.Video.CreateVideo)
			protected.PUT("/videos/:id", h.Video.UpdateVideo)
			protected.DELETE("/videos/:id", h.Video.DeleteVideo)

			protected.POST("/like/:videoId", h.Reaction.React)

			protected.POST("/videos/:id/comments", h.Comment.CreateComment)
			protected.PUT("/comments/:id", h.Comment.UpdateComment)
			protected.DELETE("/comments/:id", h.Comment.DeleteComment)

			protected.GET("/subscriptions", h.Subscription.List)
			protected.POST("/subscriptions/:channelId", h.Subscription.Toggle)
			protected.GET("/subscriptions/status/:channelId", h.Subscription.Status)

			protected.GET("/history", h.Library.History)
			protected.DELETE("/history", h.Library.ClearHistory)
			protected.DELETE("/history/:videoId", h.Library.RemoveFromHistory)
			protected.GET("/watch-later", h.Library.WatchLater)
			protected.POST("/watch-later/:videoId", h.Library.ToggleWatchLater)

			protected.GET("/playlists", h.Playlist.Mine)
			protected.POST("/playlists", h.Playlist.Create)
			protected.PUT("/playlists/:id", h.Playlist.Update)
			protected.DELETE("/playlists/:id", h.Playlist.Delete)
			protected.POST("/playlists/:id/videos/:videoId", h.Playlist.AddVideo)
			protected.DELETE("/playlists/:id/videos/:videoId", h.Playlist.RemoveVideo)

			protected.POST("/upload", h.Upload.Upload)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
