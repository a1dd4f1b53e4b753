package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jscottym/rsvp/internal/models"
)

const notificationColumns = `id, event_id, schedule_type, relative_minutes, scheduled_for,
	message_template, status, created_by, created_at, processed_at`

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, event_id, schedule_type, relative_minutes, scheduled_for,
		 message_template, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.EventID, string(n.ScheduleType), n.RelativeMinutes, toMillis(n.ScheduledFor),
		n.MessageTemplate, string(n.Status), n.CreatedBy, toMillis(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *Store) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	return scanNotification(row)
}

// ListNotifications returns all notifications for an event, newest first.
func (s *Store) ListNotifications(ctx context.Context, eventID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE event_id = ? ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// CountOutstanding counts the PENDING and PROCESSING notifications of an
// event, used to enforce the per-event cap at creation time.
func (s *Store) CountOutstanding(ctx context.Context, eventID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications
		 WHERE event_id = ? AND status IN ('PENDING', 'PROCESSING')`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count outstanding notifications: %w", err)
	}
	return count, nil
}

// LatestOutstandingNotification returns the newest PENDING or PROCESSING
// notification of an event, or ErrNotFound. Used by the single-reminder
// upsert path.
func (s *Store) LatestOutstandingNotification(ctx context.Context, eventID string) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE event_id = ? AND status IN ('PENDING', 'PROCESSING')
		 ORDER BY created_at DESC LIMIT 1`, eventID)
	return scanNotification(row)
}

// UpdateNotificationSchedule rewrites the schedule of a PENDING
// notification. Returns ErrNotPending if the notification has been claimed
// or finished in the meantime.
func (s *Store) UpdateNotificationSchedule(ctx context.Context, id string, scheduleType models.ScheduleType, relativeMinutes *int, scheduledFor time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET schedule_type = ?, relative_minutes = ?, scheduled_for = ?
		 WHERE id = ? AND status = 'PENDING'`,
		string(scheduleType), relativeMinutes, toMillis(scheduledFor), id)
	if err != nil {
		return fmt.Errorf("failed to update notification schedule: %w", err)
	}
	return requireRow(res, ErrNotPending)
}

// DeleteNotification removes a PENDING notification outright (the NONE
// reminder path). Returns ErrNotPending if it is no longer pending.
func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND status = 'PENDING'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireRow(res, ErrNotPending)
}

// CancelNotification transitions a PENDING notification to CANCELLED.
// Cancelling a claimed or terminal notification returns ErrNotPending.
func (s *Store) CancelNotification(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'CANCELLED' WHERE id = ? AND status = 'PENDING'`, id)
	if err != nil {
		return fmt.Errorf("failed to cancel notification: %w", err)
	}
	return requireRow(res, ErrNotPending)
}

// DueNotifications returns every PENDING notification whose fire time is at
// or before now.
func (s *Store) DueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE status = 'PENDING' AND scheduled_for <= ?`, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to query due notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// ClaimNotification is the PENDING -> PROCESSING compare-and-set. It
// reports whether this caller won the claim; a concurrent dispatcher run
// that lost the race gets false and must skip the notification.
func (s *Store) ClaimNotification(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'PROCESSING' WHERE id = ? AND status = 'PENDING'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FinishNotification records the terminal status and processing timestamp
// of a claimed notification.
func (s *Store) FinishNotification(ctx context.Context, id string, status models.NotificationStatus, processedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET status = ?, processed_at = ? WHERE id = ?`,
		string(status), toMillis(processedAt), id)
	if err != nil {
		return fmt.Errorf("failed to finish notification: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotificationFrom(sc rowScanner) (*models.Notification, error) {
	var n models.Notification
	var scheduleType, status string
	var scheduledFor, createdAt int64
	var processedAt *int64
	err := sc.Scan(&n.ID, &n.EventID, &scheduleType, &n.RelativeMinutes, &scheduledFor,
		&n.MessageTemplate, &status, &n.CreatedBy, &createdAt, &processedAt)
	if err != nil {
		return nil, err
	}
	n.ScheduleType = models.ScheduleType(scheduleType)
	n.Status = models.NotificationStatus(status)
	n.ScheduledFor = fromMillis(scheduledFor)
	n.CreatedAt = fromMillis(createdAt)
	n.ProcessedAt = fromMillisPtr(processedAt)
	return &n, nil
}

func scanNotification(row *sql.Row) (*models.Notification, error) {
	n, err := scanNotificationFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return n, nil
}

func collectNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var out []models.Notification
	for rows.Next() {
		n, err := scanNotificationFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
