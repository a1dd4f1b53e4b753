package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscottym/rsvp/internal/models"
)

func TestNotificationRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	minutes := 120
	template := "Custom reminder text"
	n := &models.Notification{
		ID:              "n-1",
		EventID:         ev.ID,
		ScheduleType:    models.ScheduleHoursBefore,
		RelativeMinutes: &minutes,
		ScheduledFor:    time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC),
		MessageTemplate: &template,
		Status:          models.NotificationPending,
		CreatedBy:       "organizer-1",
		CreatedAt:       time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.CreateNotification(ctx, n))

	got, err := st.GetNotification(ctx, "n-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleHoursBefore, got.ScheduleType)
	require.NotNil(t, got.RelativeMinutes)
	assert.Equal(t, 120, *got.RelativeMinutes)
	assert.True(t, got.ScheduledFor.Equal(n.ScheduledFor))
	require.NotNil(t, got.MessageTemplate)
	assert.Equal(t, template, *got.MessageTemplate)
	assert.Equal(t, models.NotificationPending, got.Status)
	assert.Nil(t, got.ProcessedAt)
}

func TestGetNotification_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetNotification(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDueNotifications(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	now := time.Date(2025, time.March, 9, 18, 0, 0, 0, time.UTC)
	past := seedNotification(t, st, ev.ID, now.Add(-time.Hour))
	exact := seedNotification(t, st, ev.ID, now)
	future := seedNotification(t, st, ev.ID, now.Add(time.Minute))

	// A non-PENDING notification is never due, no matter its fire time.
	claimed := seedNotification(t, st, ev.ID, now.Add(-2*time.Hour))
	won, err := st.ClaimNotification(ctx, claimed.ID)
	require.NoError(t, err)
	require.True(t, won)

	due, err := st.DueNotifications(ctx, now)
	require.NoError(t, err)

	ids := make([]string, 0, len(due))
	for _, n := range due {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{past.ID, exact.ID}, ids)
	assert.NotContains(t, ids, future.ID)
}

func TestClaimNotification_SecondClaimLoses(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())

	won, err := st.ClaimNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = st.ClaimNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, won, "a second claim must lose the compare-and-set")

	got, err := st.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationProcessing, got.Status)
}

func TestFinishNotification(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())

	processedAt := time.Date(2025, time.March, 9, 18, 0, 5, 0, time.UTC)
	require.NoError(t, st.FinishNotification(ctx, n.ID, models.NotificationPartiallyFailed, processedAt))

	got, err := st.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationPartiallyFailed, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.True(t, got.ProcessedAt.Equal(processedAt))
}

func TestCancelNotification_OnlyPending(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	pending := seedNotification(t, st, ev.ID, time.Now().UTC())
	require.NoError(t, st.CancelNotification(ctx, pending.ID))
	got, err := st.GetNotification(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationCancelled, got.Status)

	claimed := seedNotification(t, st, ev.ID, time.Now().UTC())
	won, err := st.ClaimNotification(ctx, claimed.ID)
	require.NoError(t, err)
	require.True(t, won)
	assert.ErrorIs(t, st.CancelNotification(ctx, claimed.ID), ErrNotPending)

	// Cancelled notifications never show up in the due set.
	due, err := st.DueNotifications(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	for _, n := range due {
		assert.NotEqual(t, pending.ID, n.ID)
	}
}

func TestCountOutstanding(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	count, err := st.CountOutstanding(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	a := seedNotification(t, st, ev.ID, time.Now().UTC())
	b := seedNotification(t, st, ev.ID, time.Now().UTC())
	seedNotification(t, st, ev.ID, time.Now().UTC())

	won, err := st.ClaimNotification(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, won)

	// PENDING and PROCESSING both count against the cap.
	count, err = st.CountOutstanding(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Terminal states free up capacity.
	require.NoError(t, st.FinishNotification(ctx, a.ID, models.NotificationCompleted, time.Now().UTC()))
	require.NoError(t, st.CancelNotification(ctx, b.ID))
	count, err = st.CountOutstanding(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpdateNotificationSchedule(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())

	minutes := 180
	newFire := time.Date(2025, time.March, 10, 16, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpdateNotificationSchedule(ctx, n.ID, models.ScheduleHoursBefore, &minutes, newFire))

	got, err := st.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleHoursBefore, got.ScheduleType)
	require.NotNil(t, got.RelativeMinutes)
	assert.Equal(t, 180, *got.RelativeMinutes)
	assert.True(t, got.ScheduledFor.Equal(newFire))

	// Once claimed, the schedule is frozen.
	won, err := st.ClaimNotification(ctx, n.ID)
	require.NoError(t, err)
	require.True(t, won)
	err = st.UpdateNotificationSchedule(ctx, n.ID, models.ScheduleDayBefore, nil, newFire)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDeleteNotification_OnlyPending(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	pending := seedNotification(t, st, ev.ID, time.Now().UTC())
	require.NoError(t, st.DeleteNotification(ctx, pending.ID))
	_, err := st.GetNotification(ctx, pending.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	claimed := seedNotification(t, st, ev.ID, time.Now().UTC())
	won, err := st.ClaimNotification(ctx, claimed.ID)
	require.NoError(t, err)
	require.True(t, won)
	assert.ErrorIs(t, st.DeleteNotification(ctx, claimed.ID), ErrNotPending)
}

func TestLatestOutstandingNotification(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	_, err := st.LatestOutstandingNotification(ctx, ev.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	older := &models.Notification{
		ID:           "older",
		EventID:      ev.ID,
		ScheduleType: models.ScheduleDayBefore,
		ScheduledFor: time.Now().UTC(),
		Status:       models.NotificationPending,
		CreatedBy:    "organizer-1",
		CreatedAt:    time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	newer := &models.Notification{
		ID:           "newer",
		EventID:      ev.ID,
		ScheduleType: models.ScheduleDayBefore,
		ScheduledFor: time.Now().UTC(),
		Status:       models.NotificationPending,
		CreatedBy:    "organizer-1",
		CreatedAt:    time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.CreateNotification(ctx, older))
	require.NoError(t, st.CreateNotification(ctx, newer))

	got, err := st.LatestOutstandingNotification(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "newer", got.ID)

	// Finishing the newest exposes the older outstanding one.
	require.NoError(t, st.FinishNotification(ctx, "newer", models.NotificationCompleted, time.Now().UTC()))
	got, err = st.LatestOutstandingNotification(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", got.ID)
}

func TestListNotifications_NewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	for i, id := range []string{"first", "second", "third"} {
		n := &models.Notification{
			ID:           id,
			EventID:      ev.ID,
			ScheduleType: models.ScheduleDayBefore,
			ScheduledFor: time.Now().UTC(),
			Status:       models.NotificationPending,
			CreatedBy:    "organizer-1",
			CreatedAt:    time.Date(2025, time.March, 1+i, 9, 0, 0, 0, time.UTC),
		}
		require.NoError(t, st.CreateNotification(ctx, n))
	}

	list, err := st.ListNotifications(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].ID)
	assert.Equal(t, "first", list[2].ID)
}
