package time_entry

import (
	"context"
	"testing"
	"time"

	"github.com/freelanceos/freelanceos/internal/event_bus"
	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActivities struct {
	known map[int]activity.Activity
}

func (s stubActivities) Get(ctx context.Context, activityId int) (activity.Activity, error) {
	a, ok := s.known[activityId]
	if !ok {
		return activity.Activity{}, activity.ErrActivityNotFound
	}
	return a, nil
}

func setupService() (*ServiceImpl, *StubRepository, *event_bus.EventBus, context.Context) {
	repo := NewStubRepository()
	bus := event_bus.NewEventBus()
	activities := stubActivities{known: map[int]activity.Activity{
		1: {Id: 1, Title: "API"},
		2: {Id: 2, Title: "Docs"},
		3: {Id: 3, Title: "Audit", Status: activity.StatusBilled},
	}}
	ctx := user.WithUser(context.Background(), user.User{Id: 5})
	return NewService(repo, activities, bus), repo, bus, ctx
}

func TestServiceImpl_RecordSpan(t *testing.T) {

	t.Run("should total closed spans only", func(t *testing.T) {
		// given
		service, _, _, ctx := setupService()
		_, err := service.RecordSpan(ctx, 1, monday, at(90*time.Minute), nil)
		require.NoError(t, err)
		_, err = service.RecordSpan(ctx, 1, monday.Add(3*time.Hour), nil, nil)
		require.NoError(t, err)

		// when
		minutes, err := service.TotalMinutes(ctx, 1)
		require.NoError(t, err)
		hours, err := service.TotalHours(ctx, 1)
		require.NoError(t, err)

		// then
		assert.Equal(t, 90, minutes)
		assert.Equal(t, "1.5", hours.String())
	})

	t.Run("should reject invalid span before writing", func(t *testing.T) {
		service, repo, _, ctx := setupService()

		_, err := service.RecordSpan(ctx, 1, monday, at(0), nil)

		assert.ErrorIs(t, err, ErrInvalidSpan)
		spans, _ := repo.ListForActivity(ctx, 5, 1)
		assert.Empty(t, spans)
	})

	t.Run("should reject unknown activity", func(t *testing.T) {
		service, _, _, ctx := setupService()

		_, err := service.RecordSpan(ctx, 99, monday, at(time.Hour), nil)

		assert.ErrorIs(t, err, activity.ErrActivityNotFound)
	})

	t.Run("should publish closed span only", func(t *testing.T) {
		service, _, bus, ctx := setupService()
		var received []event_bus.TimeSpanClosed
		event_bus.SubscribeTyped[event_bus.TimeSpanClosed](bus, event_bus.TimeSpanRecorded,
			func(e event_bus.EventT[event_bus.TimeSpanClosed]) error {
				received = append(received, e.Data)
				return nil
			})

		_, _ = service.RecordSpan(ctx, 1, monday, nil, nil)
		closed, _ := service.RecordSpan(ctx, 2, monday, at(45*time.Minute), nil)

		require.Len(t, received, 1)
		assert.Equal(t, closed.Id.String(), received[0].SpanId)
		assert.Equal(t, 45, received[0].DurationMinutes)
	})
}

func TestServiceImpl_UpdateSpan(t *testing.T) {

	t.Run("should recompute duration", func(t *testing.T) {
		service, _, _, ctx := setupService()
		span, _ := service.RecordSpan(ctx, 1, monday, at(time.Hour), nil)

		updated, err := service.UpdateSpan(ctx, span.Id, monday, at(2*time.Hour), nil)

		require.NoError(t, err)
		assert.Equal(t, 120, *updated.DurationMinutes)
	})

	t.Run("should reopen span when end is removed", func(t *testing.T) {
		service, _, _, ctx := setupService()
		span, _ := service.RecordSpan(ctx, 1, monday, at(time.Hour), nil)

		updated, err := service.UpdateSpan(ctx, span.Id, monday, nil, nil)

		require.NoError(t, err)
		assert.True(t, updated.IsOpen())
		minutes, _ := service.TotalMinutes(ctx, 1)
		assert.Equal(t, 0, minutes)
	})

	t.Run("should reject end before start", func(t *testing.T) {
		service, _, _, ctx := setupService()
		span, _ := service.RecordSpan(ctx, 1, monday, at(time.Hour), nil)

		_, err := service.UpdateSpan(ctx, span.Id, monday.Add(2*time.Hour), at(time.Hour), nil)

		assert.ErrorIs(t, err, ErrInvalidSpan)
	})
}

func TestServiceImpl_CloseSpan(t *testing.T) {

	t.Run("should not close a span twice", func(t *testing.T) {
		service, _, _, ctx := setupService()
		open, _ := service.RecordSpan(ctx, 1, monday, nil, nil)

		closed, err := service.CloseSpan(ctx, open.Id, monday.Add(30*time.Minute))
		require.NoError(t, err)
		_, err = service.CloseSpan(ctx, open.Id, monday.Add(40*time.Minute))

		assert.Equal(t, 30, *closed.DurationMinutes)
		assert.ErrorIs(t, err, ErrSpanAlreadyClosed)
	})
}

func TestServiceImpl_DeleteSpan(t *testing.T) {
	service, _, _, ctx := setupService()
	first, _ := service.RecordSpan(ctx, 1, monday, at(time.Hour), nil)
	_, _ = service.RecordSpan(ctx, 1, monday.Add(2*time.Hour), at(150*time.Minute), nil)

	deleted, err := service.DeleteSpan(ctx, first.Id)

	require.NoError(t, err)
	assert.True(t, deleted)
	minutes, _ := service.TotalMinutes(ctx, 1)
	assert.Equal(t, 30, minutes)
}

func TestServiceImpl_LockedActivity(t *testing.T) {
	service, repo, _, ctx := setupService()
	billed, err := NewSpan(3, monday, at(time.Hour), nil)
	require.NoError(t, err)
	billed, err = repo.Store(ctx, 5, billed)
	require.NoError(t, err)

	t.Run("should refuse recording time on an invoiced activity", func(t *testing.T) {
		_, err := service.RecordSpan(ctx, 3, monday.Add(2*time.Hour), at(3*time.Hour), nil)

		assert.ErrorIs(t, err, activity.ErrActivityLocked)
	})

	t.Run("should refuse changing or deleting spans of an invoiced activity", func(t *testing.T) {
		_, updateErr := service.UpdateSpan(ctx, billed.Id, monday, at(2*time.Hour), nil)
		deleted, deleteErr := service.DeleteSpan(ctx, billed.Id)

		assert.ErrorIs(t, updateErr, activity.ErrActivityLocked)
		assert.ErrorIs(t, deleteErr, activity.ErrActivityLocked)
		assert.False(t, deleted)
		minutes, err := service.TotalMinutes(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 60, minutes)
	})
}
