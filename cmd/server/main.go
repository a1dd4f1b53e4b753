package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jscottym/rsvp/internal/api"
	"github.com/jscottym/rsvp/internal/config"
	"github.com/jscottym/rsvp/internal/notify"
	"github.com/jscottym/rsvp/internal/relay"
	"github.com/jscottym/rsvp/internal/sms"
	"github.com/jscottym/rsvp/internal/store"
	"github.com/jscottym/rsvp/internal/ws"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	registry := ws.NewRegistry(logger)

	publisher, err := relay.NewPublisher(cfg.RedisURL, logger)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	go relay.Subscribe(ctx, publisher, registry)

	var carrier sms.Carrier
	var verifier api.SignatureVerifier
	twilioCarrier, err := sms.NewTwilioCarrier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, logger)
	if err != nil {
		// SMS is optional in development; the dispatcher will fail sends.
		logger.Warn("Twilio carrier not configured", "error", err)
	} else {
		carrier = twilioCarrier
		verifier = twilioCarrier
	}

	statusCallbackURL := cfg.PublicBaseURL + "/api/webhooks/twilio/status"
	dispatcher := notify.NewDispatcher(st, carrier, statusCallbackURL, logger)
	service := notify.NewService(st, cfg.MaxNotificationsPerEvent, logger)

	handler := api.NewHandler(cfg, registry, service, dispatcher, carrier, verifier, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.Router(),
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	logger.Info("Server starting", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
