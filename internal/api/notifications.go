package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/jscottym/rsvp/internal/auth"
	"github.com/jscottym/rsvp/internal/models"
	"github.com/jscottym/rsvp/internal/notify"
)

const maxTemplateLength = 500

type createNotificationRequest struct {
	ScheduleType    string  `json:"scheduleType"`
	RelativeMinutes *int    `json:"relativeMinutes,omitempty"`
	SpecificTime    *string `json:"specificTime,omitempty"`
	MessageTemplate *string `json:"messageTemplate,omitempty"`
}

func (h *Handler) createNotification(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.MessageTemplate != nil && len(*req.MessageTemplate) > maxTemplateLength {
		writeError(w, http.StatusBadRequest, "messageTemplate exceeds maximum length")
		return
	}

	params := notify.CreateParams{
		ScheduleType:    models.ScheduleType(req.ScheduleType),
		RelativeMinutes: req.RelativeMinutes,
		MessageTemplate: req.MessageTemplate,
	}
	if req.SpecificTime != nil {
		t, err := time.Parse(time.RFC3339, *req.SpecificTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "specificTime must be an RFC3339 timestamp")
			return
		}
		params.SpecificTime = &t
	}

	n, err := h.service.Create(r.Context(), slug, identity.UserID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notification": viewNotification(n)})
}

type setReminderRequest struct {
	ScheduleType     string `json:"scheduleType"`
	HoursBeforeValue int    `json:"hoursBeforeValue,omitempty"`
}

type reminderView struct {
	ID               string `json:"id"`
	ScheduleType     string `json:"scheduleType"`
	HoursBeforeValue *int   `json:"hoursBeforeValue,omitempty"`
	ScheduledFor     string `json:"scheduledFor"`
	Status           string `json:"status"`
}

func (h *Handler) setReminder(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	var req setReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	n, err := h.service.SetReminder(r.Context(), slug, identity.UserID, models.ScheduleType(req.ScheduleType), req.HoursBeforeValue)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if n == nil {
		writeJSON(w, http.StatusOK, map[string]any{"reminder": nil})
		return
	}

	view := reminderView{
		ID:           n.ID,
		ScheduleType: string(n.ScheduleType),
		ScheduledFor: n.ScheduledFor.UTC().Format(time.RFC3339),
		Status:       string(n.Status),
	}
	if n.ScheduleType == models.ScheduleHoursBefore && n.RelativeMinutes != nil {
		hours := *n.RelativeMinutes / 60
		view.HoursBeforeValue = &hours
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminder": view})
}

func (h *Handler) cancelNotification(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	id := chi.URLParam(r, "id")

	if err := h.service.Cancel(r.Context(), slug, id, identity.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	slug := chi.URLParam(r, "slug")

	details, err := h.service.List(r.Context(), slug, identity.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type notificationWithMessages struct {
		notificationView
		SentMessages []sentMessageView `json:"sentMessages"`
	}

	out := make([]notificationWithMessages, 0, len(details))
	for i := range details {
		d := &details[i]
		item := notificationWithMessages{
			notificationView: viewNotification(&d.Notification),
			SentMessages:     make([]sentMessageView, 0, len(d.Messages)),
		}
		for j := range d.Messages {
			item.SentMessages = append(item.SentMessages, viewSentMessage(&d.Messages[j]))
		}
		out = append(out, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

// processNotifications is the periodic dispatch trigger, guarded by a
// shared secret rather than a user credential.
func (h *Handler) processNotifications(w http.ResponseWriter, r *http.Request) {
	if h.cfg.CronSecret != "" {
		token := r.Header.Get("Authorization")
		if token != "Bearer "+h.cfg.CronSecret {
			writeError(w, http.StatusUnauthorized, "Invalid cron secret")
			return
		}
	}

	result, err := h.dispatcher.Tick(r.Context())
	if err != nil {
		h.logger.Error("[API] Dispatch tick failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
