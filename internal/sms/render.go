package sms

import (
	"fmt"

	"github.com/jscottym/rsvp/internal/models"
)

// BuildMessage renders the reminder body for an event. A custom template on
// the notification wins; otherwise a default is synthesized from the event
// details.
func BuildMessage(ev *models.Event, customTemplate *string) string {
	if customTemplate != nil && *customTemplate != "" {
		return *customTemplate
	}

	dayStr := ev.Datetime.Format("Mon, Jan 2")
	timeStr := ev.Datetime.Format("3:04 PM")

	return fmt.Sprintf("Reminder: %s is %s at %s. See you at %s!", ev.Title, dayStr, timeStr, ev.Location)
}
