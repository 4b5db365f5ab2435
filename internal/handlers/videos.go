package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/middleware"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/store"
)

type VideoStore interface {
	Get(ctx context.Context, id int) (*models.Video, error)
	Exists(ctx context.Context, id int) (bool, error)
	List(ctx context.Context, filter store.VideoFilter, page, limit int) (models.Page[models.Video], error)
	Create(ctx context.Context, video *models.Video) error
	UpdateDetails(ctx context.Context, id int, changes store.VideoChanges) error
	Delete(ctx context.Context, id int) error
	IncrementViews(ctx context.Context, id int) error
}

type VideoHandler struct {
	videos    VideoStore
	library   LibraryStore
	reactions ReactionService
}

func NewVideoHandler(videos VideoStore, library LibraryStore, reactions ReactionService) *VideoHandler {
	return &VideoHandler{videos: videos, library: library, reactions: reactions}
}

// ListVideos returns videos newest first, optionally filtered by ?q= title
// search and ?owner= channel.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	filter := store.VideoFilter{Query: strings.TrimSpace(c.Query("q"))}
	if owner := c.Query("owner"); owner != "" {
		ownerID, err := strconv.Atoi(owner)
		if err != nil || ownerID <= 0 {
			_ = c.Error(apperror.Validation("Invalid owner ID"))
			return
		}
		filter.OwnerID = ownerID
	}
	page, limit := pageQuery(c)

	videos, err := h.videos.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GetVideo counts a view and, for a signed-in viewer, records history and
// reports their reaction.
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID, err := idParam(c, "id", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	video, err := h.videos.Get(ctx, videoID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.videos.IncrementViews(ctx, videoID); err != nil {
		_ = c.Error(err)
		return
	}
	video.Views++

	detail := models.VideoDetail{Video: *video}
	if viewerID := middleware.UserID(c); viewerID > 0 {
		// History is best effort; the video is still served.
		if err := h.library.RecordView(ctx, viewerID, videoID); err != nil {
			slog.WarnContext(ctx, "failed to record watch history",
				"user_id", viewerID, "video_id", videoID, "error", err)
		}
		status, err := h.reactions.Status(ctx, viewerID, videoID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		detail.Liked, detail.Disliked = status.Liked, status.Disliked
	}
	c.JSON(http.StatusOK, detail)
}

func (h *VideoHandler) CreateVideo(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.CreateVideoRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	video := models.Video{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		VideoURL:     input.VideoURL,
		ThumbnailURL: input.ThumbnailURL,
		Duration:     input.Duration,
		OwnerID:      userID,
	}
	if video.Title == "" {
		_ = c.Error(apperror.Validation("Title is required"))
		return
	}
	if err := h.videos.Create(c.Request.Context(), &video); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// UpdateVideo edits title, description or thumbnail. Owner or admin only.
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	video, ok := h.loadOwned(c, "edit")
	if !ok {
		return
	}
	var input models.UpdateVideoRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	changes := store.VideoChanges{
		Description:  input.Description,
		ThumbnailURL: input.ThumbnailURL,
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			_ = c.Error(apperror.Validation("Title cannot be empty"))
			return
		}
		changes.Title = &title
	}
	ctx := c.Request.Context()

	if err := h.videos.UpdateDetails(ctx, video.ID, changes); err != nil {
		_ = c.Error(err)
		return
	}
	updated, err := h.videos.Get(ctx, video.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteVideo removes the video with its reactions, comments and library
// entries. Owner or admin only.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	video, ok := h.loadOwned(c, "delete")
	if !ok {
		return
	}
	if err := h.videos.Delete(c.Request.Context(), video.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video deleted"})
}

func (h *VideoHandler) loadOwned(c *gin.Context, action string) (*models.Video, bool) {
	if _, ok := requireUser(c); !ok {
		return nil, false
	}
	videoID, err := idParam(c, "id", "video ID")
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	video, err := h.videos.Get(c.Request.Context(), videoID)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	if !canModify(c, video.OwnerID) {
		_ = c.Error(apperror.Forbidden("You can only " + action + " your own videos"))
		return nil, false
	}
	return video, true
}
