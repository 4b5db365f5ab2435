package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/store"
)

type LibraryStore interface {
	RecordView(ctx context.Context, userID, videoID int) error
	History(ctx context.Context, userID, page, limit int) (models.Page[models.WatchHistory], error)
	RemoveFromHistory(ctx context.Context, userID, videoID int) error
	ClearHistory(ctx context.Context, userID int) error
	SaveForLater(ctx context.Context, userID, videoID int) (store.InsertResult, error)
	RemoveFromLater(ctx context.Context, userID, videoID int) (bool, error)
	WatchLater(ctx context.Context, userID int) ([]models.WatchLater, error)
}

// LibraryHandler serves the caller's watch history and watch-later list.
type LibraryHandler struct {
	library LibraryStore
	videos  VideoStore
}

func NewLibraryHandler(library LibraryStore, videos VideoStore) *LibraryHandler {
	return &LibraryHandler{library: library, videos: videos}
}

func (h *LibraryHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	page, limit := pageQuery(c)
	history, err := h.library.History(c.Request.Context(), userID, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *LibraryHandler) RemoveFromHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	videoID, err := idParam(c, "videoId", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.library.RemoveFromHistory(c.Request.Context(), userID, videoID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *LibraryHandler) ClearHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.library.ClearHistory(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleWatchLater adds the video to watch later, or removes it when it is
// already there.
func (h *LibraryHandler) ToggleWatchLater(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	videoID, err := idParam(c, "videoId", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	exists, err := h.videos.Exists(ctx, videoID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !exists {
		_ = c.Error(apperror.NotFound("Video not found"))
		return
	}

	removed, err := h.library.RemoveFromLater(ctx, userID, videoID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if removed {
		c.JSON(http.StatusOK, gin.H{"saved": false})
		return
	}
	// A lost race against an identical request still leaves it saved.
	if _, err := h.library.SaveForLater(ctx, userID, videoID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

func (h *LibraryHandler) WatchLater(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	entries, err := h.library.WatchLater(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
