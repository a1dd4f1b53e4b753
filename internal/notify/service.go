package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jscottym/rsvp/internal/models"
	"github.com/jscottym/rsvp/internal/schedule"
	"github.com/jscottym/rsvp/internal/store"
)

var (
	ErrNotOrganizer         = errors.New("only the organizer can manage notifications")
	ErrTooManyNotifications = errors.New("maximum pending notifications reached for event")
	ErrNotificationMismatch = errors.New("notification does not belong to this event")
	ErrInvalidScheduleType  = errors.New("invalid schedule type for this operation")
)

// Service handles notification scheduling requests. Two entry points with
// deliberately different caps coexist: Create allows up to maxPerEvent
// outstanding notifications, SetReminder upserts a single reminder.
type Service struct {
	store       *store.Store
	maxPerEvent int
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(st *store.Store, maxPerEvent int, logger *slog.Logger) *Service {
	return &Service{
		store:       st,
		maxPerEvent: maxPerEvent,
		logger:      logger,
		now:         time.Now,
	}
}

type CreateParams struct {
	ScheduleType    models.ScheduleType
	RelativeMinutes *int
	SpecificTime    *time.Time
	MessageTemplate *string
}

// Create schedules a notification on the general-purpose path. The fire
// time must land strictly between now and the event start, and no more
// than maxPerEvent notifications may be outstanding for the event. Nothing
// is persisted on rejection.
func (s *Service) Create(ctx context.Context, eventSlug, userID string, p CreateParams) (*models.Notification, error) {
	switch p.ScheduleType {
	case models.ScheduleDayBefore, models.ScheduleHoursBefore, models.ScheduleMinutesBefore, models.ScheduleSpecificTime:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidScheduleType, p.ScheduleType)
	}

	ev, err := s.store.GetEventBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != userID {
		return nil, ErrNotOrganizer
	}

	outstanding, err := s.store.CountOutstanding(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if outstanding >= s.maxPerEvent {
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyNotifications, s.maxPerEvent)
	}

	relativeMinutes := 0
	if p.RelativeMinutes != nil {
		relativeMinutes = *p.RelativeMinutes
	}
	var specificTime time.Time
	if p.SpecificTime != nil {
		specificTime = *p.SpecificTime
	}

	fireTime, err := schedule.FireTime(ev.Datetime, p.ScheduleType, relativeMinutes, specificTime)
	if err != nil {
		return nil, err
	}
	if err := schedule.Validate(fireTime, s.now(), ev.Datetime); err != nil {
		return nil, err
	}

	n := &models.Notification{
		ID:              uuid.NewString(),
		EventID:         ev.ID,
		ScheduleType:    p.ScheduleType,
		ScheduledFor:    fireTime,
		MessageTemplate: p.MessageTemplate,
		Status:          models.NotificationPending,
		CreatedBy:       userID,
		CreatedAt:       s.now(),
	}
	if p.ScheduleType == models.ScheduleMinutesBefore || p.ScheduleType == models.ScheduleHoursBefore {
		n.RelativeMinutes = p.RelativeMinutes
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("[NOTIFY] Notification created",
		"id", n.ID, "event", eventSlug, "scheduleType", n.ScheduleType, "scheduledFor", n.ScheduledFor)
	return n, nil
}

// SetReminder is the simplified single-reminder path: at most one
// outstanding reminder per event, replaced on update, deleted on NONE.
// Returns nil for NONE.
func (s *Service) SetReminder(ctx context.Context, eventSlug, userID string, scheduleType models.ScheduleType, hoursBeforeValue int) (*models.Notification, error) {
	ev, err := s.store.GetEventBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != userID {
		return nil, ErrNotOrganizer
	}

	existing, err := s.store.LatestOutstandingNotification(ctx, ev.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if scheduleType == models.ScheduleNone {
		if existing == nil {
			return nil, nil
		}
		if existing.Status != models.NotificationPending {
			return nil, store.ErrNotPending
		}
		if err := s.store.DeleteNotification(ctx, existing.ID); err != nil {
			return nil, err
		}
		s.logger.Info("[NOTIFY] Reminder removed", "event", eventSlug)
		return nil, nil
	}

	var relativeMinutes *int
	switch scheduleType {
	case models.ScheduleDayBefore:
	case models.ScheduleHoursBefore:
		if hoursBeforeValue < 1 || hoursBeforeValue > 24 {
			return nil, fmt.Errorf("%w: hoursBeforeValue must be between 1 and 24", schedule.ErrParameterRequired)
		}
		minutes := hoursBeforeValue * 60
		relativeMinutes = &minutes
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidScheduleType, scheduleType)
	}

	minutes := 0
	if relativeMinutes != nil {
		minutes = *relativeMinutes
	}
	fireTime, err := schedule.FireTime(ev.Datetime, scheduleType, minutes, time.Time{})
	if err != nil {
		return nil, err
	}
	if err := schedule.Validate(fireTime, s.now(), ev.Datetime); err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.Status != models.NotificationPending {
			return nil, store.ErrNotPending
		}
		if err := s.store.UpdateNotificationSchedule(ctx, existing.ID, scheduleType, relativeMinutes, fireTime); err != nil {
			return nil, err
		}
		s.logger.Info("[NOTIFY] Reminder updated", "id", existing.ID, "event", eventSlug, "scheduledFor", fireTime)
		return s.store.GetNotification(ctx, existing.ID)
	}

	n := &models.Notification{
		ID:              uuid.NewString(),
		EventID:         ev.ID,
		ScheduleType:    scheduleType,
		RelativeMinutes: relativeMinutes,
		ScheduledFor:    fireTime,
		Status:          models.NotificationPending,
		CreatedBy:       userID,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	s.logger.Info("[NOTIFY] Reminder created", "id", n.ID, "event", eventSlug, "scheduledFor", fireTime)
	return n, nil
}

// Cancel transitions a PENDING notification to CANCELLED. Claimed and
// terminal notifications are rejected.
func (s *Service) Cancel(ctx context.Context, eventSlug, notificationID, userID string) error {
	ev, err := s.store.GetEventBySlug(ctx, eventSlug)
	if err != nil {
		return err
	}
	if ev.OrganizerID != userID {
		return ErrNotOrganizer
	}

	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.EventID != ev.ID {
		return ErrNotificationMismatch
	}

	if err := s.store.CancelNotification(ctx, notificationID); err != nil {
		return err
	}
	s.logger.Info("[NOTIFY] Notification cancelled", "id", notificationID, "event", eventSlug)
	return nil
}

// NotificationDetail pairs a notification with its per-recipient breakdown.
type NotificationDetail struct {
	Notification models.Notification
	Messages     []models.SentMessage
}

// List returns the event's notifications with their sent-message records,
// newest notification first.
func (s *Service) List(ctx context.Context, eventSlug, userID string) ([]NotificationDetail, error) {
	ev, err := s.store.GetEventBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != userID {
		return nil, ErrNotOrganizer
	}

	notifications, err := s.store.ListNotifications(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	details := make([]NotificationDetail, 0, len(notifications))
	for _, n := range notifications {
		messages, err := s.store.SentMessagesForNotification(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, NotificationDetail{Notification: n, Messages: messages})
	}
	return details, nil
}
