package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/middleware"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	Get(ctx context.Context, id int) (*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Playlist, error)
	Update(ctx context.Context, id int, req models.PlaylistRequest) error
	Delete(ctx context.Context, id int) error
	AddVideo(ctx context.Context, playlistID, videoID int) error
	RemoveVideo(ctx context.Context, playlistID, videoID int) error
}

type PlaylistHandler struct {
	playlists PlaylistStore
	videos    VideoStore
}

func NewPlaylistHandler(playlists PlaylistStore, videos VideoStore) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, videos: videos}
}

func (h *PlaylistHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.PlaylistRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	playlist := models.Playlist{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsPublic:    true,
		OwnerID:     userID,
	}
	if input.IsPublic != nil {
		playlist.IsPublic = *input.IsPublic
	}
	if err := h.playlists.Create(c.Request.Context(), &playlist); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

// Mine lists the caller's playlists.
func (h *PlaylistHandler) Mine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	playlists, err := h.playlists.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, playlists)
}

// Get returns a public playlist, or a private one to its owner. Private
// playlists of other users are reported as not found.
func (h *PlaylistHandler) Get(c *gin.Context) {
	playlistID, err := idParam(c, "id", "playlist ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	playlist, err := h.playlists.Get(c.Request.Context(), playlistID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !playlist.IsPublic && middleware.UserID(c) != playlist.OwnerID {
		_ = c.Error(apperror.NotFound("Playlist not found"))
		return
	}
	c.JSON(http.StatusOK, playlist)
}

func (h *PlaylistHandler) Update(c *gin.Context) {
	playlist, ok := h.loadOwned(c)
	if !ok {
		return
	}
	var input models.PlaylistRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	ctx := c.Request.Context()

	if err := h.playlists.Update(ctx, playlist.ID, input); err != nil {
		_ = c.Error(err)
		return
	}
	updated, err := h.playlists.Get(ctx, playlist.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PlaylistHandler) Delete(c *gin.Context) {
	playlist, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.playlists.Delete(c.Request.Context(), playlist.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Playlist deleted"})
}

// AddVideo is idempotent; adding a video twice keeps one entry.
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	playlist, videoID, ok := h.loadOwnedWithVideo(c)
	if !ok {
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
	if err := h.playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	playlist, videoID, ok := h.loadOwnedWithVideo(c)
	if !ok {
		return
	}
	if err := h.playlists.RemoveVideo(c.Request.Context(), playlist.ID, videoID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PlaylistHandler) loadOwned(c *gin.Context) (*models.Playlist, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	playlistID, err := idParam(c, "id", "playlist ID")
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	playlist, err := h.playlists.Get(c.Request.Context(), playlistID)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	if playlist.OwnerID != userID {
		_ = c.Error(apperror.Forbidden("You can only modify your own playlists"))
		return nil, false
	}
	return playlist, true
}

func (h *PlaylistHandler) loadOwnedWithVideo(c *gin.Context) (*models.Playlist, int, bool) {
	videoID, err := idParam(c, "videoId", "video ID")
	if err != nil {
		_ = c.Error(err)
		return nil, 0, false
	}
	playlist, ok := h.loadOwned(c)
	return playlist, videoID, ok
}
