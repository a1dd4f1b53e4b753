package models

import "time"

// NotificationStatus is the lifecycle state of a scheduled notification.
// COMPLETED, FAILED, PARTIALLY_FAILED and CANCELLED are terminal.
type NotificationStatus string

const (
	NotificationPending         NotificationStatus = "PENDING"
	NotificationProcessing      NotificationStatus = "PROCESSING"
	NotificationCompleted       NotificationStatus = "COMPLETED"
	NotificationFailed          NotificationStatus = "FAILED"
	NotificationPartiallyFailed NotificationStatus = "PARTIALLY_FAILED"
	NotificationCancelled       NotificationStatus = "CANCELLED"
)

// ScheduleType selects how a notification's fire time is derived from the
// event start time.
type ScheduleType string

const (
	ScheduleNone          ScheduleType = "NONE"
	ScheduleDayBefore     ScheduleType = "DAY_BEFORE"
	ScheduleHoursBefore   ScheduleType = "HOURS_BEFORE"
	ScheduleMinutesBefore ScheduleType = "MINUTES_BEFORE"
	ScheduleSpecificTime  ScheduleType = "SPECIFIC_TIME"
)

// Notification is a scheduled SMS reminder tied to one event.
type Notification struct {
	ID              string
	EventID         string
	ScheduleType    ScheduleType
	RelativeMinutes *int
	ScheduledFor    time.Time
	MessageTemplate *string
	Status          NotificationStatus
	CreatedBy       string
	CreatedAt       time.Time
	ProcessedAt     *time.Time
}

// SentMessageStatus tracks one recipient's delivery state. It moves
// PENDING -> SENT synchronously after the send attempt, then SENT ->
// DELIVERED or FAILED when the carrier's status callback arrives.
type SentMessageStatus string

const (
	SentPending   SentMessageStatus = "PENDING"
	SentSent      SentMessageStatus = "SENT"
	SentDelivered SentMessageStatus = "DELIVERED"
	SentFailed    SentMessageStatus = "FAILED"
)

// SentMessage is the per-recipient fan-out record of a notification.
type SentMessage struct {
	ID                string
	NotificationID    string
	PhoneNumber       string
	RecipientUserID   *string
	RecipientName     string
	MessageBody       string
	Status            SentMessageStatus
	CarrierMessageSID *string
	CarrierStatus     *string
	ErrorMessage      *string
	SentAt            *time.Time
	CreatedAt         time.Time
}

// Event is the slice of the event record the notification core reads.
type Event struct {
	ID          string
	Slug        string
	Title       string
	Location    string
	Datetime    time.Time
	EndDatetime time.Time
	OrganizerID string
}

// Rsvp is the slice of the RSVP record needed for recipient resolution.
type Rsvp struct {
	ID      string
	EventID string
	UserID  *string
	Name    string
	Phone   string
	Status  string
	Comment *string
}

// Recipient is one confirmed attendee resolved at processing time.
type Recipient struct {
	Phone  string
	UserID *string
	Name   string
}
