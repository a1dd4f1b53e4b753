// Package sms wraps the outbound SMS carrier.
package sms

import "context"

const (
	// MessageFooter is appended to every outbound reminder. The stored
	// message body excludes it.
	MessageFooter = "\n---\nThis is an automated message. Do not reply."

	// AutoReplyMessage is sent in response to inbound texts.
	AutoReplyMessage = "Do not respond to this text. Contact the event organizer directly."
)

// SendResult is the carrier's synchronous acceptance of one message.
// Delivery confirmation arrives later through the status callback.
type SendResult struct {
	SID    string
	Status string
}

// Carrier sends a single SMS. A nil error means the carrier accepted the
// message for delivery, not that it was delivered.
type Carrier interface {
	Send(ctx context.Context, to, body, statusCallbackURL string) (*SendResult, error)
}
