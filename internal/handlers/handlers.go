package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/comments"
	"github.com/emilythestrangee/vidtube/backend/internal/middleware"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Video        *VideoHandler
	Reaction     *ReactionHandler
	Comment      *CommentHandler
	Subscription *SubscriptionHandler
	Library      *LibraryHandler
	Playlist     *PlaylistHandler
	Upload       *UploadHandler
}

// Deps are the stores and services the handlers are built from.
type Deps struct {
	Users         UserStore
	Videos        VideoStore
	Library       LibraryStore
	Playlists     PlaylistStore
	Tokens        TokenIssuer
	Reactions     ReactionService
	Comments      CommentService
	Subscriptions SubscriptionService
	// Uploader is nil when object storage is not configured.
	Uploader Uploader
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(d.Users, d.Tokens),
		User:         NewUserHandler(d.Users, d.Videos, d.Subscriptions),
		Video:        NewVideoHandler(d.Videos, d.Library, d.Reactions),
		Reaction:     NewReactionHandler(d.Reactions),
		Comment:      NewCommentHandler(d.Comments),
		Subscription: NewSubscriptionHandler(d.Subscriptions),
		Library:      NewLibraryHandler(d.Library, d.Videos),
		Playlist:     NewPlaylistHandler(d.Playlists, d.Videos),
		Upload:       NewUploadHandler(d.Uploader),
	}
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name, label string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperror.Validation("Invalid " + label)
	}
	return id, nil
}

func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

// pageQuery reads ?page= and ?limit=, falling back to defaults on bad input.
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.NormalizePage(page, limit)
}

// requireUser returns the caller's id or reports Unauthorized.
func requireUser(c *gin.Context) (int, bool) {
	userID := middleware.UserID(c)
	if userID <= 0 {
		_ = c.Error(apperror.Unauthorized("Unauthorized"))
		return 0, false
	}
	return userID, true
}

func actor(c *gin.Context) comments.Actor {
	return comments.Actor{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}

func canModify(c *gin.Context, ownerID int) bool {
	return middleware.UserID(c) == ownerID || middleware.Role(c) == models.RoleAdmin
}
