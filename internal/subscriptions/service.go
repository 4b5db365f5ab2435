// Package subscriptions implements the subscribe/unsubscribe toggle between
// users and channels. Like reactions it relies on the unique index for races
// and recounts subscribers_count after every toggle.
package subscriptions

import (
	"context"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/observability"
	"github.com/emilythestrangee/vidtube/backend/internal/store"
)

type Store interface {
	InsertIfAbsent(ctx context.Context, subscriberID, channelID int) (store.InsertResult, error)
	Delete(ctx context.Context, subscriberID, channelID int) (bool, error)
	Exists(ctx context.Context, subscriberID, channelID int) (bool, error)
	CountSubscribers(ctx context.Context, channelID int) (int64, error)
	ListChannels(ctx context.Context, subscriberID int) ([]models.Subscription, error)
}

type Channels interface {
	Exists(ctx context.Context, id int) (bool, error)
	UpdateSubscribersCount(ctx context.Context, id int, count int64) error
}

type Result struct {
	Subscribed       bool  `json:"subscribed"`
	SubscribersCount int64 `json:"subscribersCount"`
}

type Service struct {
	subs     Store
	channels Channels
	metrics  *observability.Metrics
}

func NewService(subs Store, channels Channels, metrics *observability.Metrics) *Service {
	return &Service{subs: subs, channels: channels, metrics: metrics}
}

// Toggle subscribes the user to the channel, or unsubscribes when already
// subscribed.
func (s *Service) Toggle(ctx context.Context, subscriberID, channelID int) (Result, error) {
	if subscriberID <= 0 {
		return Result{}, apperror.Unauthorized("Authentication required")
	}
	if channelID <= 0 {
		return Result{}, apperror.Validation("Invalid channel ID")
	}
	if subscriberID == channelID {
		return Result{}, apperror.Validation("You cannot subscribe to your own channel")
	}
	exists, err := s.channels.Exists(ctx, channelID)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, apperror.NotFound("Channel not found")
	}

	subscribed, outcome, err := s.toggle(ctx, subscriberID, channelID)
	if err != nil {
		s.metrics.SubscriptionToggled("error")
		return Result{}, err
	}
	s.metrics.SubscriptionToggled(outcome)

	count, err := s.subs.CountSubscribers(ctx, channelID)
	if err != nil {
		return Result{}, err
	}
	if err := s.channels.UpdateSubscribersCount(ctx, channelID, count); err != nil {
		return Result{}, err
	}
	return Result{Subscribed: subscribed, SubscribersCount: count}, nil
}

func (s *Service) toggle(ctx context.Context, subscriberID, channelID int) (bool, string, error) {
	removed, err := s.subs.Delete(ctx, subscriberID, channelID)
	if err != nil {
		return false, "", err
	}
	if removed {
		return false, "removed", nil
	}
	res, err := s.subs.InsertIfAbsent(ctx, subscriberID, channelID)
	if err != nil {
		return false, "", err
	}
	if !res.Inserted {
		return true, "already_applied", nil
	}
	return true, "added", nil
}

func (s *Service) Status(ctx context.Context, subscriberID, channelID int) (bool, error) {
	if subscriberID <= 0 || channelID <= 0 {
		return false, apperror.Validation("Invalid user or channel ID")
	}
	return s.subs.Exists(ctx, subscriberID, channelID)
}

// List returns the channels the user subscribes to.
func (s *Service) List(ctx context.Context, subscriberID int) ([]models.Subscription, error) {
	if subscriberID <= 0 {
		return nil, apperror.Unauthorized("Authentication required")
	}
	return s.subs.ListChannels(ctx, subscriberID)
}
