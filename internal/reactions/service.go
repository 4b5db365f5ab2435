// Package reactions implements the like/dislike toggle.
//
// A viewer holds a like, a dislike or neither on a video. The unique index on
// each reaction table breaks duplicate-insert races, and a duplicate insert is
// treated as already applied. Switching kinds inserts under a per-viewer,
// per-video store lock so a like and a dislike never coexist. Counters on the video are
// recounted from the reaction tables after every toggle instead of being
// incremented, so a failed request is repaired by the next one.
package reactions

import (
	"context"
	"log/slog"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/observability"
	"github.com/emilythestrangee/vidtube/backend/internal/realtime"
	"github.com/emilythestrangee/vidtube/backend/internal/store"
)

// Store is the reaction table access the toggle needs.
type Store interface {
	InsertIfAbsent(ctx context.Context, kind models.ReactionKind, userID, videoID int) (store.InsertResult, error)
	Delete(ctx context.Context, kind models.ReactionKind, userID, videoID int) (bool, error)
	Exists(ctx context.Context, kind models.ReactionKind, userID, videoID int) (bool, error)
	Count(ctx context.Context, kind models.ReactionKind, videoID int) (int64, error)
	// WithReactionLock runs fn while no other holder for the same
	// (userID, videoID) is running. Store calls inside fn must use its ctx.
	WithReactionLock(ctx context.Context, userID, videoID int, fn func(ctx context.Context) error) error
}

type Videos interface {
	Exists(ctx context.Context, id int) (bool, error)
	UpdateReactionCounts(ctx context.Context, id int, likes, dislikes int64) error
}

type Broadcaster interface {
	Broadcast(room, event string, payload any) int
}

// Result is a viewer's reaction state after a toggle.
type Result struct {
	Liked         bool  `json:"liked"`
	Disliked      bool  `json:"disliked"`
	LikesCount    int64 `json:"likesCount"`
	DislikesCount int64 `json:"dislikesCount"`
}

type Status struct {
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
}

// CountsPayload is the data of like:updated and dislike:updated events.
type CountsPayload struct {
	VideoID       int   `json:"videoId"`
	LikesCount    int64 `json:"likesCount"`
	DislikesCount int64 `json:"dislikesCount"`
}

// Toggle outcomes recorded in metrics.
const (
	outcomeAdded          = "added"
	outcomeRemoved        = "removed"
	outcomeAlreadyApplied = "already_applied"
	outcomeError          = "error"
)

type Service struct {
	reactions Store
	videos    Videos
	notifier  Broadcaster
	metrics   *observability.Metrics
}

func NewService(reactions Store, videos Videos, notifier Broadcaster, metrics *observability.Metrics) *Service {
	return &Service{
		reactions: reactions,
		videos:    videos,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// SetReaction toggles kind for the viewer on a video. Applying the same kind
// twice removes it again; applying the opposite kind switches.
func (s *Service) SetReaction(ctx context.Context, viewerID, videoID int, kind models.ReactionKind) (Result, error) {
	if viewerID <= 0 {
		return Result{}, apperror.Unauthorized("Authentication required")
	}
	if !kind.Valid() {
		return Result{}, apperror.Validation(`Reaction type must be "like" or "dislike"`)
	}
	if videoID <= 0 {
		return Result{}, apperror.Validation("Invalid video ID")
	}
	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, apperror.NotFound("Video not found")
	}

	outcome, err := s.toggle(ctx, viewerID, videoID, kind)
	if err != nil {
		s.metrics.ReactionToggled(string(kind), outcomeError)
		return Result{}, err
	}
	s.metrics.ReactionToggled(string(kind), outcome)

	likes, dislikes, err := s.recount(ctx, videoID)
	if err != nil {
		return Result{}, err
	}
	s.notify(videoID, likes, dislikes)

	// The state reported back is the state this toggle applied. A
	// concurrent request from the same viewer may already have changed it.
	active := outcome != outcomeRemoved
	return Result{
		Liked:         active && kind == models.ReactionLike,
		Disliked:      active && kind == models.ReactionDislike,
		LikesCount:    likes,
		DislikesCount: dislikes,
	}, nil
}

func (s *Service) toggle(ctx context.Context, viewerID, videoID int, kind models.ReactionKind) (string, error) {
	removed, err := s.reactions.Delete(ctx, kind, viewerID, videoID)
	if err != nil {
		return "", err
	}
	if removed {
		// Toggling off leaves neither reaction behind.
		if _, err := s.reactions.Delete(ctx, kind.Opposite(), viewerID, videoID); err != nil {
			return "", err
		}
		return outcomeRemoved, nil
	}

	// Every insert happens under the lock right after the opposite row is
	// removed, so a concurrent like and dislike cannot both land. Duplicate
	// inserts of the same kind still fall through to the unique index.
	var res store.InsertResult
	err = s.reactions.WithReactionLock(ctx, viewerID, videoID, func(ctx context.Context) error {
		if _, err := s.reactions.Delete(ctx, kind.Opposite(), viewerID, videoID); err != nil {
			return err
		}
		var err error
		res, err = s.reactions.InsertIfAbsent(ctx, kind, viewerID, videoID)
		return err
	})
	if err != nil {
		return "", err
	}
	if !res.Inserted {
		slog.DebugContext(ctx, "reaction already applied",
			"kind", kind, "user_id", viewerID, "video_id", videoID)
		return outcomeAlreadyApplied, nil
	}
	return outcomeAdded, nil
}

// recount writes the current row counts of both tables back to the video.
func (s *Service) recount(ctx context.Context, videoID int) (int64, int64, error) {
	likes, err := s.reactions.Count(ctx, models.ReactionLike, videoID)
	if err != nil {
		return 0, 0, err
	}
	dislikes, err := s.reactions.Count(ctx, models.ReactionDislike, videoID)
	if err != nil {
		return 0, 0, err
	}
	if err := s.videos.UpdateReactionCounts(ctx, videoID, likes, dislikes); err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}

func (s *Service) notify(videoID int, likes, dislikes int64) {
	if s.notifier == nil {
		return
	}
	payload := CountsPayload{VideoID: videoID, LikesCount: likes, DislikesCount: dislikes}
	room := realtime.VideoRoom(videoID)
	s.notifier.Broadcast(room, realtime.EventLikeUpdated, payload)
	s.notifier.Broadcast(room, realtime.EventDislikeUpdated, payload)
}

// Status reports which reaction a user holds on a video.
func (s *Service) Status(ctx context.Context, userID, videoID int) (Status, error) {
	if userID <= 0 || videoID <= 0 {
		return Status{}, apperror.Validation("Invalid user or video ID")
	}
	liked, err := s.reactions.Exists(ctx, models.ReactionLike, userID, videoID)
	if err != nil {
		return Status{}, err
	}
	disliked, err := s.reactions.Exists(ctx, models.ReactionDislike, userID, videoID)
	if err != nil {
		return Status{}, err
	}
	return Status{Liked: liked, Disliked: disliked}, nil
}
