// Package comments manages video comments and keeps each video's
// comments_count equal to its number of comments.
package comments

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/realtime"
)

const MaxBodyLength = 5000

type Store interface {
	List(ctx context.Context, videoID, page, limit int) (models.Page[models.Comment], error)
	Get(ctx context.Context, id int) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	UpdateBody(ctx context.Context, id int, body string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context, videoID int) (int64, error)
}

type Videos interface {
	Exists(ctx context.Context, id int) (bool, error)
	UpdateCommentsCount(ctx context.Context, id int, count int64) error
}

type Broadcaster interface {
	Broadcast(room, event string, payload any) int
}

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID int
	Role   string
}

func (a Actor) isAdmin() bool { return a.Role == models.RoleAdmin }

// DeletedPayload is the data of a comment:deleted event.
type DeletedPayload struct {
	ID            int   `json:"id"`
	VideoID       int   `json:"videoId"`
	CommentsCount int64 `json:"commentsCount"`
}

type Service struct {
	comments Store
	videos   Videos
	notifier Broadcaster
}

func NewService(comments Store, videos Videos, notifier Broadcaster) *Service {
	return &Service{comments: comments, videos: videos, notifier: notifier}
}

// List returns a page of a video's comments, newest first. The limit is
// capped at models.MaxPageLimit.
func (s *Service) List(ctx context.Context, videoID, page, limit int) (models.Page[models.Comment], error) {
	if videoID <= 0 {
		return models.Page[models.Comment]{}, apperror.Validation("Invalid video ID")
	}
	page, limit = models.NormalizePage(page, limit)
	return s.comments.List(ctx, videoID, page, limit)
}

func (s *Service) Create(ctx context.Context, actor Actor, videoID int, body string) (*models.Comment, error) {
	if actor.UserID <= 0 {
		return nil, apperror.Unauthorized("Authentication required")
	}
	body, err := cleanBody(body)
	if err != nil {
		return nil, err
	}
	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("Video not found")
	}

	comment := &models.Comment{Body: body, AuthorID: actor.UserID, VideoID: videoID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if _, err := s.recount(ctx, videoID); err != nil {
		return nil, err
	}

	// Reload so the author is included in the response and the event.
	created, err := s.comments.Get(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	s.broadcast(videoID, realtime.EventCommentNew, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actor Actor, commentID int, body string) (*models.Comment, error) {
	body, err := cleanBody(body)
	if err != nil {
		return nil, err
	}
	comment, err := s.authorize(ctx, actor, commentID, "edit")
	if err != nil {
		return nil, err
	}
	if err := s.comments.UpdateBody(ctx, commentID, body); err != nil {
		return nil, err
	}

	updated, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	s.broadcast(comment.VideoID, realtime.EventCommentUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, commentID int) error {
	comment, err := s.authorize(ctx, actor, commentID, "delete")
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}
	count, err := s.recount(ctx, comment.VideoID)
	if err != nil {
		return err
	}
	s.broadcast(comment.VideoID, realtime.EventCommentDeleted, DeletedPayload{
		ID:            commentID,
		VideoID:       comment.VideoID,
		CommentsCount: count,
	})
	return nil
}

// authorize loads the comment and allows only its author or an admin.
func (s *Service) authorize(ctx context.Context, actor Actor, commentID int, action string) (*models.Comment, error) {
	if actor.UserID <= 0 {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if commentID <= 0 {
		return nil, apperror.Validation("Invalid comment ID")
	}
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actor.UserID && !actor.isAdmin() {
		return nil, apperror.Forbidden("You can only " + action + " your own comments")
	}
	return comment, nil
}

func (s *Service) recount(ctx context.Context, videoID int) (int64, error) {
	count, err := s.comments.Count(ctx, videoID)
	if err != nil {
		return 0, err
	}
	if err := s.videos.UpdateCommentsCount(ctx, videoID, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) broadcast(videoID int, event string, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Broadcast(realtime.VideoRoom(videoID), event, payload)
}

func cleanBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperror.Validation("Comment body is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return "", apperror.Validation("Comment is too long")
	}
	return body, nil
}
