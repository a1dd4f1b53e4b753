// Package api exposes the HTTP surface: the realtime websocket endpoint,
// the notification scheduling API, the dispatch trigger and the carrier
// webhooks.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jscottym/rsvp/internal/auth"
	"github.com/jscottym/rsvp/internal/config"
	"github.com/jscottym/rsvp/internal/notify"
	"github.com/jscottym/rsvp/internal/sms"
	"github.com/jscottym/rsvp/internal/ws"
)

// SignatureVerifier checks carrier webhook signatures. Nil disables
// verification (development).
type SignatureVerifier interface {
	VerifySignature(url string, params map[string]string, signature string) bool
}

type Handler struct {
	cfg        *config.Config
	registry   *ws.Registry
	service    *notify.Service
	dispatcher *notify.Dispatcher
	carrier    sms.Carrier
	verifier   SignatureVerifier
	logger     *slog.Logger
}

func NewHandler(cfg *config.Config, registry *ws.Registry, service *notify.Service, dispatcher *notify.Dispatcher, carrier sms.Carrier, verifier SignatureVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		registry:   registry,
		service:    service,
		dispatcher: dispatcher,
		carrier:    carrier,
		verifier:   verifier,
		logger:     logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Subscribing is open; mutations below are authenticated.
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(h.registry, h.logger, w, req)
	})

	r.Route("/api/events/{slug}/notifications", func(r chi.Router) {
		r.Use(auth.Middleware(h.cfg.JWTSecret, h.logger))
		r.Post("/", h.createNotification)
		r.Get("/", h.listNotifications)
		r.Put("/", h.setReminder)
		r.Delete("/{id}", h.cancelNotification)
	})

	r.Post("/api/cron/process-notifications", h.processNotifications)
	r.Post("/api/webhooks/twilio/status", h.twilioStatus)
	r.Post("/api/webhooks/twilio/inbound", h.twilioInbound)

	return r
}
