package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscottym/rsvp/internal/models"
)

func seedSentMessage(t *testing.T, st *Store, notificationID, id string) *models.SentMessage {
	t.Helper()
	m := &models.SentMessage{
		ID:             id,
		NotificationID: notificationID,
		PhoneNumber:    "+15550001111",
		RecipientName:  "Sam",
		MessageBody:    "Reminder: Spring Game",
		Status:         models.SentPending,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, st.CreateSentMessage(context.Background(), m))
	return m
}

func TestMarkSentMessageSent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())
	m := seedSentMessage(t, st, n.ID, "m-1")

	sentAt := time.Date(2025, time.March, 9, 18, 0, 1, 0, time.UTC)
	require.NoError(t, st.MarkSentMessageSent(ctx, m.ID, "SM123", "queued", sentAt))

	msgs, err := st.SentMessagesForNotification(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.SentSent, msgs[0].Status)
	require.NotNil(t, msgs[0].CarrierMessageSID)
	assert.Equal(t, "SM123", *msgs[0].CarrierMessageSID)
	require.NotNil(t, msgs[0].SentAt)
	assert.True(t, msgs[0].SentAt.Equal(sentAt))
}

func TestMarkSentMessageFailed(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())
	m := seedSentMessage(t, st, n.ID, "m-1")

	require.NoError(t, st.MarkSentMessageFailed(ctx, m.ID, "invalid number"))

	msgs, err := st.SentMessagesForNotification(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.SentFailed, msgs[0].Status)
	require.NotNil(t, msgs[0].ErrorMessage)
	assert.Equal(t, "invalid number", *msgs[0].ErrorMessage)
	assert.Nil(t, msgs[0].SentAt)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())
	m := seedSentMessage(t, st, n.ID, "m-1")
	require.NoError(t, st.MarkSentMessageSent(ctx, m.ID, "SM123", "queued", time.Now().UTC()))

	found, err := st.UpdateDeliveryStatus(ctx, "SM123", "delivered", models.SentDelivered, nil)
	require.NoError(t, err)
	assert.True(t, found)

	msgs, err := st.SentMessagesForNotification(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.SentDelivered, msgs[0].Status)
	require.NotNil(t, msgs[0].CarrierStatus)
	assert.Equal(t, "delivered", *msgs[0].CarrierStatus)
}

func TestUpdateDeliveryStatus_UnknownSIDIsBenign(t *testing.T) {
	st := newTestStore(t)

	found, err := st.UpdateDeliveryStatus(context.Background(), "SM-unknown", "delivered", models.SentDelivered, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSentMessagesForNotification_CreationOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)
	n := seedNotification(t, st, ev.ID, time.Now().UTC())

	created := time.Date(2025, time.March, 9, 18, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		m := &models.SentMessage{
			ID:             id,
			NotificationID: n.ID,
			PhoneNumber:    "+15550001111",
			RecipientName:  "Sam",
			MessageBody:    "body",
			Status:         models.SentPending,
			CreatedAt:      created.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, st.CreateSentMessage(ctx, m))
	}

	msgs, err := st.SentMessagesForNotification(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "a", msgs[0].ID)
	assert.Equal(t, "c", msgs[2].ID)
}
