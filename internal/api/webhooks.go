package api

import (
	"net/http"

	"github.com/jscottym/rsvp/internal/sms"
)

// twilioStatus receives asynchronous delivery-status callbacks from the
// carrier. Always acknowledges: an unmatched message id is expected noise
// from unrelated traffic, not an integrity violation.
func (h *Handler) twilioStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	if !h.verifyWebhook(r, "/api/webhooks/twilio/status") {
		writeError(w, http.StatusForbidden, "Invalid signature")
		return
	}

	messageSID := r.PostFormValue("MessageSid")
	if messageSID == "" {
		writeError(w, http.StatusBadRequest, "MessageSid is required")
		return
	}

	err := h.dispatcher.RecordDeliveryStatus(r.Context(),
		messageSID,
		r.PostFormValue("MessageStatus"),
		r.PostFormValue("ErrorCode"),
		r.PostFormValue("ErrorMessage"))
	if err != nil {
		h.logger.Error("[API] Failed to record delivery status", "sid", messageSID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// twilioInbound answers inbound texts with a fixed auto-reply pointing
// people at the organizer.
func (h *Handler) twilioInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	if !h.verifyWebhook(r, "/api/webhooks/twilio/inbound") {
		writeError(w, http.StatusForbidden, "Invalid signature")
		return
	}

	from := r.PostFormValue("From")
	if from != "" && h.carrier != nil {
		if _, err := h.carrier.Send(r.Context(), from, sms.AutoReplyMessage, ""); err != nil {
			h.logger.Error("[API] Failed to send auto-reply", "to", from, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) verifyWebhook(r *http.Request, path string) bool {
	if h.verifier == nil {
		return true
	}

	params := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		params[key] = r.PostFormValue(key)
	}

	signature := r.Header.Get("X-Twilio-Signature")
	url := h.cfg.PublicBaseURL + path
	return h.verifier.VerifySignature(url, params, signature)
}
