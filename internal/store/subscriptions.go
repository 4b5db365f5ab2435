package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type Subscriptions struct {
	db *gorm.DB
}

func NewSubscriptions(db *gorm.DB) *Subscriptions {
	return &Subscriptions{db: db}
}

func (s *Subscriptions) InsertIfAbsent(ctx context.Context, subscriberID, channelID int) (InsertResult, error) {
	return insertIfAbsent(ctx, s.db, &models.Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
	}, "subscription")
}

func (s *Subscriptions) Delete(ctx context.Context, subscriberID, channelID int) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, apperror.Upstream("Failed to remove subscription", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Subscriptions) Exists(ctx context.Context, subscriberID, channelID int) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&n).Error; err != nil {
		return false, apperror.Upstream("Failed to load subscription", err)
	}
	return n > 0, nil
}

func (s *Subscriptions) CountSubscribers(ctx context.Context, channelID int) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("channel_id = ?", channelID).Count(&n).Error; err != nil {
		return 0, apperror.Upstream("Failed to count subscribers", err)
	}
	return n, nil
}

// ListChannels returns the channels a user subscribes to, most recent first.
func (s *Subscriptions) ListChannels(ctx context.Context, subscriberID int) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := s.db.WithContext(ctx).
		Where("subscriber_id = ?", subscriberID).
		Preload("Channel").
		Order("created_at desc").
		Find(&subs).Error; err != nil {
		return nil, apperror.Upstream("Failed to fetch subscriptions", err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}
