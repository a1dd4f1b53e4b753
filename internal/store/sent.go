package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jscottym/rsvp/internal/models"
)

const sentColumns = `id, notification_id, phone_number, recipient_user_id, recipient_name,
	message_body, status, carrier_message_sid, carrier_status, error_message, sent_at, created_at`

func (s *Store) CreateSentMessage(ctx context.Context, m *models.SentMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sent_messages (id, notification_id, phone_number, recipient_user_id,
		 recipient_name, message_body, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.NotificationID, m.PhoneNumber, m.RecipientUserID,
		m.RecipientName, m.MessageBody, string(m.Status), toMillis(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create sent message: %w", err)
	}
	return nil
}

// MarkSentMessageSent records carrier acceptance of one recipient's message.
func (s *Store) MarkSentMessageSent(ctx context.Context, id, carrierSID, carrierStatus string, sentAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sent_messages SET status = 'SENT', carrier_message_sid = ?, carrier_status = ?, sent_at = ?
		 WHERE id = ?`,
		carrierSID, carrierStatus, toMillis(sentAt), id)
	if err != nil {
		return fmt.Errorf("failed to mark sent message sent: %w", err)
	}
	return nil
}

// MarkSentMessageFailed records carrier rejection of one recipient's message.
func (s *Store) MarkSentMessageFailed(ctx context.Context, id, errorMessage string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sent_messages SET status = 'FAILED', error_message = ? WHERE id = ?`,
		errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark sent message failed: %w", err)
	}
	return nil
}

// UpdateDeliveryStatus applies an asynchronous carrier delivery callback,
// correlated by the carrier message SID. Reports whether a matching record
// existed; a miss is expected noise, not an error.
func (s *Store) UpdateDeliveryStatus(ctx context.Context, carrierSID, carrierStatus string, status models.SentMessageStatus, errorMessage *string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sent_messages SET carrier_status = ?, status = ?, error_message = ?
		 WHERE carrier_message_sid = ?`,
		carrierStatus, string(status), errorMessage, carrierSID)
	if err != nil {
		return false, fmt.Errorf("failed to update delivery status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SentMessagesForNotification returns the per-recipient breakdown of a
// notification in creation order.
func (s *Store) SentMessagesForNotification(ctx context.Context, notificationID string) ([]models.SentMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sentColumns+` FROM sent_messages
		 WHERE notification_id = ? ORDER BY created_at, id`, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent messages: %w", err)
	}
	defer rows.Close()

	var out []models.SentMessage
	for rows.Next() {
		var m models.SentMessage
		var status string
		var sentAt *int64
		var createdAt int64
		err := rows.Scan(&m.ID, &m.NotificationID, &m.PhoneNumber, &m.RecipientUserID, &m.RecipientName,
			&m.MessageBody, &status, &m.CarrierMessageSID, &m.CarrierStatus, &m.ErrorMessage, &sentAt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sent message: %w", err)
		}
		m.Status = models.SentMessageStatus(status)
		m.SentAt = fromMillisPtr(sentAt)
		m.CreatedAt = fromMillis(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}
