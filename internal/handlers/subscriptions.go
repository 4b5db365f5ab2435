package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/subscriptions"
)

type SubscriptionService interface {
	Toggle(ctx context.Context, subscriberID, channelID int) (subscriptions.Result, error)
	Status(ctx context.Context, subscriberID, channelID int) (bool, error)
	List(ctx context.Context, subscriberID int) ([]models.Subscription, error)
}

type SubscriptionHandler struct {
	svc SubscriptionService
}

func NewSubscriptionHandler(svc SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// Toggle subscribes to or unsubscribes from a channel.
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	channelID, err := idParam(c, "channelId", "channel ID")
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.svc.Toggle(c.Request.Context(), userID, channelID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	channelID, err := idParam(c, "channelId", "channel ID")
	if err != nil {
		_ = c.Error(err)
		return
	}

	subscribed, err := h.svc.Status(c.Request.Context(), userID, channelID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": subscribed})
}

// List returns the channels the caller subscribes to.
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	subs, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, subs)
}
