package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventBySlug(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	got, err := st.GetEventBySlug(ctx, ev.Slug)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, ev.Title, got.Title)
	assert.True(t, got.Datetime.Equal(ev.Datetime))

	_, err = st.GetEventBySlug(ctx, "no-such-event")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmedRecipients(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	ev := seedEvent(t, st)

	seedRsvp(t, st, ev.ID, "Alice", "+15550000001", "IN")
	seedRsvp(t, st, ev.ID, "Bob", "+15550000002", "OUT")
	seedRsvp(t, st, ev.ID, "Cara", "+15550000003", "MAYBE")
	dropout := seedRsvp(t, st, ev.ID, "Dan", "+15550000004", "IN")

	recipients, err := st.ConfirmedRecipients(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	// Resolution reflects the current RSVP state, not a snapshot.
	require.NoError(t, st.UpdateRsvpStatus(ctx, dropout.ID, "OUT"))
	recipients, err = st.ConfirmedRecipients(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "Alice", recipients[0].Name)
	assert.Equal(t, "+15550000001", recipients[0].Phone)
}

func TestUpdateRsvpStatus_NotFound(t *testing.T) {
	st := newTestStore(t)
	err := st.UpdateRsvpStatus(context.Background(), "missing", "IN")
	assert.ErrorIs(t, err, ErrNotFound)
}
