package comments

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
	"github.com/emilythestrangee/vidtube/backend/internal/realtime"
)

type memComments struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]models.Comment
}

func newMemComments() *memComments {
	return &memComments{rows: make(map[int]models.Comment)}
}

func (m *memComments) List(_ context.Context, videoID, page, limit int) (models.Page[models.Comment], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Comment
	for _, c := range m.rows {
		if c.VideoID == videoID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (page - 1) * limit
	end := start + limit
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return models.NewPage(all[start:end], int64(len(all)), page, limit), nil
}

func (m *memComments) Get(_ context.Context, id int) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, apperror.NotFound("Comment not found")
	}
	return &c, nil
}

func (m *memComments) Create(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = *c
	return nil
}

func (m *memComments) UpdateBody(_ context.Context, id int, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.rows[id]
	c.Body = body
	m.rows[id] = c
	return nil
}

func (m *memComments) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memComments) Count(_ context.Context, videoID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.rows {
		if c.VideoID == videoID {
			n++
		}
	}
	return n, nil
}

type memVideos struct {
	ids    map[int]bool
	counts map[int]int64
}

func (v *memVideos) Exists(_ context.Context, id int) (bool, error) { return v.ids[id], nil }

func (v *memVideos) UpdateCommentsCount(_ context.Context, id int, count int64) error {
	v.counts[id] = count
	return nil
}

type event struct {
	room, name string
	payload    any
}

type recordingNotifier struct{ events []event }

func (r *recordingNotifier) Broadcast(room, name string, payload any) int {
	r.events = append(r.events, event{room, name, payload})
	return 0
}

const videoID = 7

var (
	author   = Actor{UserID: 1, Role: models.RoleUser}
	stranger = Actor{UserID: 2, Role: models.RoleUser}
	admin    = Actor{UserID: 3, Role: models.RoleAdmin}
)

func newTestService() (*Service, *memComments, *memVideos, *recordingNotifier) {
	comments := newMemComments()
	videos := &memVideos{ids: map[int]bool{videoID: true}, counts: map[int]int64{}}
	notifier := &recordingNotifier{}
	return NewService(comments, videos, notifier), comments, videos, notifier
}

func TestCreateComment(t *testing.T) {
	svc, _, videos, notifier := newTestService()

	c, err := svc.Create(context.Background(), author, videoID, "  nice video  ")
	require.NoError(t, err)
	assert.Equal(t, "nice video", c.Body)
	assert.Equal(t, author.UserID, c.AuthorID)
	assert.Equal(t, int64(1), videos.counts[videoID])

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "video:7", notifier.events[0].room)
	assert.Equal(t, realtime.EventCommentNew, notifier.events[0].name)
}

func TestCreateCommentValidation(t *testing.T) {
	svc, comments, _, notifier := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, author, videoID, "   ")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, author, videoID, strings.Repeat("é", MaxBodyLength+1))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, author, 99, "hello")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Create(ctx, Actor{}, videoID, "hello")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	assert.Empty(t, comments.rows)
	assert.Empty(t, notifier.events)
}

func TestCreateCommentAtMaxLength(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Create(context.Background(), author, videoID, strings.Repeat("é", MaxBodyLength))
	assert.NoError(t, err)
}

func TestUpdateAndDeleteAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		allowed bool
	}{
		{"author", author, true},
		{"admin", admin, true},
		{"other user", stranger, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments, videos, notifier := newTestService()
			ctx := context.Background()
			c, err := svc.Create(ctx, author, videoID, "first")
			require.NoError(t, err)
			notifier.events = nil

			updated, err := svc.Update(ctx, tt.actor, c.ID, "edited")
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "edited", updated.Body)
			} else {
				assert.True(t, apperror.Is(err, apperror.KindForbidden))
				assert.Equal(t, "first", comments.rows[c.ID].Body)
			}

			err = svc.Delete(ctx, tt.actor, c.ID)
			if tt.allowed {
				require.NoError(t, err)
				assert.Empty(t, comments.rows)
				assert.Equal(t, int64(0), videos.counts[videoID])
				require.Len(t, notifier.events, 2)
				assert.Equal(t, realtime.EventCommentUpdated, notifier.events[0].name)
				assert.Equal(t, realtime.EventCommentDeleted, notifier.events[1].name)
				assert.Equal(t, DeletedPayload{ID: c.ID, VideoID: videoID}, notifier.events[1].payload)
			} else {
				assert.True(t, apperror.Is(err, apperror.KindForbidden))
				assert.Len(t, comments.rows, 1)
				assert.Empty(t, notifier.events)
			}
		})
	}
}

func TestUpdateMissingComment(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Update(context.Background(), author, 404, "x")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	err = svc.Delete(context.Background(), Actor{}, 1)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestListNewestFirstWithCappedLimit(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, author, videoID, "comment")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, videoID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.Items[0].ID)
	assert.Equal(t, 4, page.Items[1].ID)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	page, err = svc.List(ctx, videoID, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, models.MaxPageLimit, page.Limit)
	assert.Len(t, page.Items, 5)

	_, err = svc.List(ctx, 0, 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
