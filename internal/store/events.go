package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jscottym/rsvp/internal/models"
)

func (s *Store) CreateEvent(ctx context.Context, ev *models.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, slug, title, location, datetime, end_datetime, organizer_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Slug, ev.Title, ev.Location, toMillis(ev.Datetime), toMillis(ev.EndDatetime), ev.OrganizerID)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *Store) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.getEvent(ctx, "slug = ?", slug)
}

func (s *Store) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	return s.getEvent(ctx, "id = ?", id)
}

func (s *Store) getEvent(ctx context.Context, where string, arg any) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, title, location, datetime, end_datetime, organizer_id
		 FROM events WHERE `+where, arg)

	var ev models.Event
	var datetime, endDatetime int64
	err := row.Scan(&ev.ID, &ev.Slug, &ev.Title, &ev.Location, &datetime, &endDatetime, &ev.OrganizerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	ev.Datetime = fromMillis(datetime)
	ev.EndDatetime = fromMillis(endDatetime)
	return &ev, nil
}

func (s *Store) CreateRsvp(ctx context.Context, r *models.Rsvp) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rsvps (id, event_id, user_id, name, phone, status, comment)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EventID, r.UserID, r.Name, r.Phone, r.Status, r.Comment)
	if err != nil {
		return fmt.Errorf("failed to create rsvp: %w", err)
	}
	return nil
}

func (s *Store) UpdateRsvpStatus(ctx context.Context, rsvpID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rsvps SET status = ? WHERE id = ?`, status, rsvpID)
	if err != nil {
		return fmt.Errorf("failed to update rsvp status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ConfirmedRecipients resolves the recipient list for an event at the
// moment of the call: everyone whose RSVP is currently IN. The set is not
// snapshotted at notification-creation time.
func (s *Store) ConfirmedRecipients(ctx context.Context, eventID string) ([]models.Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT phone, user_id, name FROM rsvps WHERE event_id = ? AND status = 'IN'`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []models.Recipient
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(&r.Phone, &r.UserID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}
