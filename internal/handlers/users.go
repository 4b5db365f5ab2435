package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/middleware"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/store"
)

type UserHandler struct {
	users  UserStore
	videos VideoStore
	subs   SubscriptionService
}

func NewUserHandler(users UserStore, videos VideoStore, subs SubscriptionService) *UserHandler {
	return &UserHandler{users: users, videos: videos, subs: subs}
}

// GetChannel returns a user's channel page: the profile, subscriber count,
// the first page of their videos and whether the caller subscribes.
func (h *UserHandler) GetChannel(c *gin.Context) {
	channelID, err := idParam(c, "id", "user ID")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.Get(ctx, channelID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, limit := pageQuery(c)
	videos, err := h.videos.List(ctx, store.VideoFilter{OwnerID: channelID}, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	subscribed := false
	if viewerID := middleware.UserID(c); viewerID > 0 && viewerID != channelID {
		if subscribed, err = h.subs.Status(ctx, viewerID, channelID); err != nil {
			_ = c.Error(err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":             user,
		"subscribersCount": user.SubscribersCount,
		"videos":           videos,
		"subscribed":       subscribed,
	})
}

// UpdateProfile edits the caller's own bio and avatar.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var input models.UpdateProfileRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
