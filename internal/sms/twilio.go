package sms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioCarrier sends messages through the Twilio REST API.
type TwilioCarrier struct {
	client    *twilio.RestClient
	validator twilioclient.RequestValidator
	from      string
	logger    *slog.Logger
}

func NewTwilioCarrier(accountSID, authToken, from string, logger *slog.Logger) (*TwilioCarrier, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("twilio credentials not configured")
	}
	if from == "" {
		return nil, errors.New("twilio phone number not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioCarrier{
		client:    client,
		validator: twilioclient.NewRequestValidator(authToken),
		from:      from,
		logger:    logger,
	}, nil
}

func (c *TwilioCarrier) Send(ctx context.Context, to, body, statusCallbackURL string) (*SendResult, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)
	if statusCallbackURL != "" {
		params.SetStatusCallback(statusCallbackURL)
	}

	msg, err := c.client.Api.CreateMessage(params)
	if err != nil {
		c.logger.Error("[SMS] Failed to send message", "to", to, "error", err)
		return nil, err
	}

	result := &SendResult{}
	if msg.Sid != nil {
		result.SID = *msg.Sid
	}
	if msg.Status != nil {
		result.Status = *msg.Status
	}
	return result, nil
}

// VerifySignature checks the X-Twilio-Signature header of a webhook request
// against the auth token.
func (c *TwilioCarrier) VerifySignature(url string, params map[string]string, signature string) bool {
	return c.validator.Validate(url, params, signature)
}
