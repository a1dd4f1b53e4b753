// Package notify schedules and dispatches SMS reminders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jscottym/rsvp/internal/models"
	"github.com/jscottym/rsvp/internal/sms"
	"github.com/jscottym/rsvp/internal/store"
)

// Dispatcher turns due notifications into sent messages and tracks the
// aggregate outcome. Invoked periodically by an external trigger.
type Dispatcher struct {
	store             *store.Store
	carrier           sms.Carrier
	statusCallbackURL string
	logger            *slog.Logger
	now               func() time.Time
}

func NewDispatcher(st *store.Store, carrier sms.Carrier, statusCallbackURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:             st,
		carrier:           carrier,
		statusCallbackURL: statusCallbackURL,
		logger:            logger,
		now:               time.Now,
	}
}

// TickResult reports one dispatcher run.
type TickResult struct {
	Processed int                  `json:"processed"`
	Results   []NotificationResult `json:"results"`
}

// NotificationResult is the outcome of one notification within a run.
type NotificationResult struct {
	NotificationID string `json:"notificationId"`
	EventSlug      string `json:"eventSlug,omitempty"`
	Sent           int    `json:"sent"`
	Failed         int    `json:"failed"`
	Error          string `json:"error,omitempty"`
}

// Tick processes every due PENDING notification. Each notification is
// claimed with a PENDING -> PROCESSING compare-and-set before any send, so
// an overlapping run cannot double-send; losing the claim means skipping.
// Failures are isolated per notification: one bad notification is marked
// FAILED and the run continues.
func (d *Dispatcher) Tick(ctx context.Context) (*TickResult, error) {
	due, err := d.store.DueNotifications(ctx, d.now())
	if err != nil {
		return nil, fmt.Errorf("failed to query due notifications: %w", err)
	}

	result := &TickResult{Results: []NotificationResult{}}
	for _, n := range due {
		claimed, err := d.store.ClaimNotification(ctx, n.ID)
		if err != nil {
			d.logger.Error("[NOTIFY] Failed to claim notification", "id", n.ID, "error", err)
			continue
		}
		if !claimed {
			d.logger.Info("[NOTIFY] Notification claimed elsewhere, skipping", "id", n.ID)
			continue
		}

		result.Processed++
		result.Results = append(result.Results, d.process(ctx, &n))
	}

	return result, nil
}

func (d *Dispatcher) process(ctx context.Context, n *models.Notification) (res NotificationResult) {
	res.NotificationID = n.ID

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("[NOTIFY] Panic while processing notification", "id", n.ID, "panic", r)
			res.Error = fmt.Sprintf("panic: %v", r)
			d.markFailed(ctx, n.ID)
		}
	}()

	ev, err := d.store.GetEventByID(ctx, n.EventID)
	if err != nil {
		d.logger.Error("[NOTIFY] Failed to load event for notification", "id", n.ID, "error", err)
		res.Error = err.Error()
		d.markFailed(ctx, n.ID)
		return res
	}
	res.EventSlug = ev.Slug

	// Recipient set is resolved now, not at creation time: late "IN" RSVPs
	// are included, drop-outs are excluded.
	recipients, err := d.store.ConfirmedRecipients(ctx, n.EventID)
	if err != nil {
		d.logger.Error("[NOTIFY] Failed to resolve recipients", "id", n.ID, "error", err)
		res.Error = err.Error()
		d.markFailed(ctx, n.ID)
		return res
	}

	// An empty audience is success, not failure.
	if len(recipients) == 0 {
		if err := d.store.FinishNotification(ctx, n.ID, models.NotificationCompleted, d.now()); err != nil {
			d.logger.Error("[NOTIFY] Failed to complete notification", "id", n.ID, "error", err)
		}
		d.logger.Info("[NOTIFY] No recipients, notification completed", "id", n.ID, "event", ev.Slug)
		return res
	}

	body := sms.BuildMessage(ev, n.MessageTemplate)

	sent := 0
	failed := 0
	for _, recipient := range recipients {
		if d.sendToRecipient(ctx, n.ID, recipient, body) {
			sent++
		} else {
			failed++
		}
	}

	status := aggregateStatus(sent, failed)
	if err := d.store.FinishNotification(ctx, n.ID, status, d.now()); err != nil {
		d.logger.Error("[NOTIFY] Failed to record notification status", "id", n.ID, "error", err)
	}

	d.logger.Info("[NOTIFY] Notification processed",
		"id", n.ID, "event", ev.Slug, "status", status, "sent", sent, "failed", failed)

	res.Sent = sent
	res.Failed = failed
	return res
}

// sendToRecipient attempts delivery to one recipient and reports success.
// Failures are recorded on the per-recipient row and never propagated, so
// one bad number cannot block the rest of the audience.
func (d *Dispatcher) sendToRecipient(ctx context.Context, notificationID string, recipient models.Recipient, body string) bool {
	record := &models.SentMessage{
		ID:              uuid.NewString(),
		NotificationID:  notificationID,
		PhoneNumber:     recipient.Phone,
		RecipientUserID: recipient.UserID,
		RecipientName:   recipient.Name,
		MessageBody:     body,
		Status:          models.SentPending,
		CreatedAt:       d.now(),
	}
	if err := d.store.CreateSentMessage(ctx, record); err != nil {
		d.logger.Error("[NOTIFY] Failed to create sent record", "notification", notificationID, "error", err)
		return false
	}

	var result *sms.SendResult
	var err error
	if d.carrier != nil {
		result, err = d.carrier.Send(ctx, recipient.Phone, body+sms.MessageFooter, d.statusCallbackURL)
	} else {
		err = errors.New("carrier not configured")
	}
	if err != nil || result == nil {
		detail := "failed to send via carrier"
		if err != nil {
			detail = err.Error()
		}
		if mErr := d.store.MarkSentMessageFailed(ctx, record.ID, detail); mErr != nil {
			d.logger.Error("[NOTIFY] Failed to record send failure", "record", record.ID, "error", mErr)
		}
		return false
	}

	if err := d.store.MarkSentMessageSent(ctx, record.ID, result.SID, result.Status, d.now()); err != nil {
		d.logger.Error("[NOTIFY] Failed to record send success", "record", record.ID, "error", err)
	}
	return true
}

func (d *Dispatcher) markFailed(ctx context.Context, id string) {
	if err := d.store.FinishNotification(ctx, id, models.NotificationFailed, d.now()); err != nil {
		d.logger.Error("[NOTIFY] Failed to mark notification failed", "id", id, "error", err)
	}
}

func aggregateStatus(sent, failed int) models.NotificationStatus {
	switch {
	case failed == 0:
		return models.NotificationCompleted
	case sent == 0:
		return models.NotificationFailed
	default:
		return models.NotificationPartiallyFailed
	}
}

// RecordDeliveryStatus applies an asynchronous carrier delivery callback.
// Unknown message identifiers are accepted silently; the callback may
// belong to unrelated traffic.
func (d *Dispatcher) RecordDeliveryStatus(ctx context.Context, carrierSID, carrierStatus, errorCode, errorMessage string) error {
	status := models.SentSent
	switch carrierStatus {
	case "delivered":
		status = models.SentDelivered
	case "failed", "undelivered":
		status = models.SentFailed
	}

	var detail *string
	if errorCode != "" {
		msg := errorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		s := fmt.Sprintf("%s: %s", errorCode, msg)
		detail = &s
	}

	found, err := d.store.UpdateDeliveryStatus(ctx, carrierSID, carrierStatus, status, detail)
	if err != nil {
		return err
	}
	if !found {
		d.logger.Debug("[NOTIFY] Delivery callback for unknown message", "sid", carrierSID)
	}
	return nil
}
