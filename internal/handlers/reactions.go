package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/reactions"
)

type ReactionService interface {
	SetReaction(ctx context.Context, viewerID, videoID int, kind models.ReactionKind) (reactions.Result, error)
	Status(ctx context.Context, userID, videoID int) (reactions.Status, error)
}

type ReactionHandler struct {
	svc ReactionService
}

func NewReactionHandler(svc ReactionService) *ReactionHandler {
	return &ReactionHandler{svc: svc}
}

// React toggles a like or dislike on a video (PROTECTED).
func (h *ReactionHandler) React(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	videoID, err := idParam(c, "videoId", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var input models.ReactionRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.svc.SetReaction(c.Request.Context(), userID, videoID, input.Type)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Status reports whether a user likes or dislikes a video.
func (h *ReactionHandler) Status(c *gin.Context) {
	videoID, err := idParam(c, "videoId", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	userID, err := idParam(c, "userId", "user ID")
	if err != nil {
		_ = c.Error(err)
		return
	}

	status, err := h.svc.Status(c.Request.Context(), userID, videoID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, status)
}
