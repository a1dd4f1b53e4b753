package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jscottym/rsvp/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedEvent(t *testing.T, st *Store) *models.Event {
	t.Helper()
	ev := &models.Event{
		ID:          uuid.NewString(),
		Slug:        "spring-game-" + uuid.NewString()[:8],
		Title:       "Spring Game",
		Location:    "North Field",
		Datetime:    time.Date(2025, time.March, 10, 19, 0, 0, 0, time.UTC),
		EndDatetime: time.Date(2025, time.March, 10, 21, 0, 0, 0, time.UTC),
		OrganizerID: "organizer-1",
	}
	require.NoError(t, st.CreateEvent(context.Background(), ev))
	return ev
}

func seedNotification(t *testing.T, st *Store, eventID string, scheduledFor time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		ID:           uuid.NewString(),
		EventID:      eventID,
		ScheduleType: models.ScheduleSpecificTime,
		ScheduledFor: scheduledFor,
		Status:       models.NotificationPending,
		CreatedBy:    "organizer-1",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.CreateNotification(context.Background(), n))
	return n
}

func seedRsvp(t *testing.T, st *Store, eventID, name, phone, status string) *models.Rsvp {
	t.Helper()
	userID := "user-" + name
	r := &models.Rsvp{
		ID:      uuid.NewString(),
		EventID: eventID,
		UserID:  &userID,
		Name:    name,
		Phone:   phone,
		Status:  status,
	}
	require.NoError(t, st.CreateRsvp(context.Background(), r))
	return r
}
