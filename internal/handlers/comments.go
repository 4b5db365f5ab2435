package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/comments"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type CommentService interface {
	List(ctx context.Context, videoID, page, limit int) (models.Page[models.Comment], error)
	Create(ctx context.Context, actor comments.Actor, videoID int, body string) (*models.Comment, error)
	Update(ctx context.Context, actor comments.Actor, commentID int, body string) (*models.Comment, error)
	Delete(ctx context.Context, actor comments.Actor, commentID int) error
}

type CommentHandler struct {
	svc CommentService
}

func NewCommentHandler(svc CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// GetComments returns a page of a video's comments, newest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	videoID, err := idParam(c, "id", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, limit := pageQuery(c)

	result, err := h.svc.List(c.Request.Context(), videoID, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateComment adds a comment to a video (PROTECTED).
func (h *CommentHandler) CreateComment(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	videoID, err := idParam(c, "id", "video ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var input models.CommentRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	comment, err := h.svc.Create(c.Request.Context(), actor(c), videoID, input.Body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment edits a comment. Author or admin only.
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	commentID, err := idParam(c, "id", "comment ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var input models.CommentRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	comment, err := h.svc.Update(c.Request.Context(), actor(c), commentID, input.Body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment. Author or admin only.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	commentID, err := idParam(c, "id", "comment ID")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actor(c), commentID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}
