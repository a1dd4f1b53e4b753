package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/jscottym/rsvp/internal/models"
	"github.com/jscottym/rsvp/internal/notify"
	"github.com/jscottym/rsvp/internal/schedule"
	"github.com/jscottym/rsvp/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, notify.ErrNotOrganizer):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, notify.ErrNotificationMismatch):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotPending),
		errors.Is(err, notify.ErrTooManyNotifications),
		errors.Is(err, notify.ErrInvalidScheduleType),
		errors.Is(err, schedule.ErrFireTimeInPast),
		errors.Is(err, schedule.ErrFireTimeAfterEvent),
		errors.Is(err, schedule.ErrParameterRequired),
		errors.Is(err, schedule.ErrUnknownScheduleType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

type notificationView struct {
	ID              string  `json:"id"`
	ScheduleType    string  `json:"scheduleType"`
	RelativeMinutes *int    `json:"relativeMinutes,omitempty"`
	ScheduledFor    string  `json:"scheduledFor"`
	MessageTemplate *string `json:"messageTemplate,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	ProcessedAt     *string `json:"processedAt,omitempty"`
}

func viewNotification(n *models.Notification) notificationView {
	v := notificationView{
		ID:              n.ID,
		ScheduleType:    string(n.ScheduleType),
		RelativeMinutes: n.RelativeMinutes,
		ScheduledFor:    n.ScheduledFor.UTC().Format(time.RFC3339),
		MessageTemplate: n.MessageTemplate,
		Status:          string(n.Status),
		CreatedAt:       n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.ProcessedAt != nil {
		s := n.ProcessedAt.UTC().Format(time.RFC3339)
		v.ProcessedAt = &s
	}
	return v
}

type sentMessageView struct {
	ID                string  `json:"id"`
	PhoneNumber       string  `json:"phoneNumber"`
	RecipientName     string  `json:"recipientName"`
	Status            string  `json:"status"`
	CarrierMessageSID *string `json:"carrierMessageSid,omitempty"`
	CarrierStatus     *string `json:"carrierStatus,omitempty"`
	ErrorMessage      *string `json:"errorMessage,omitempty"`
	SentAt            *string `json:"sentAt,omitempty"`
}

func viewSentMessage(m *models.SentMessage) sentMessageView {
	v := sentMessageView{
		ID:                m.ID,
		PhoneNumber:       m.PhoneNumber,
		RecipientName:     m.RecipientName,
		Status:            string(m.Status),
		CarrierMessageSID: m.CarrierMessageSID,
		CarrierStatus:     m.CarrierStatus,
		ErrorMessage:      m.ErrorMessage,
	}
	if m.SentAt != nil {
		s := m.SentAt.UTC().Format(time.RFC3339)
		v.SentAt = &s
	}
	return v
}
