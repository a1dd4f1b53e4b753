// Package schedule computes absolute fire times for event reminders.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/jscottym/rsvp/internal/models"
)

var (
	ErrParameterRequired  = errors.New("schedule parameter required")
	ErrUnknownScheduleType = errors.New("unknown schedule type")
	ErrFireTimeInPast     = errors.New("notification must be scheduled for a future time")
	ErrFireTimeAfterEvent = errors.New("notification must be scheduled before the event starts")
)

// neverFires is the sentinel returned for a NONE schedule. Callers must
// treat NONE as "delete / do not schedule"; it is never handed to the
// dispatcher as a real fire time.
var neverFires = time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC)

// FireTime computes the absolute fire time for a reminder.
//
// DAY_BEFORE fires at 18:00 local time on the calendar day before the event,
// regardless of the event's exact hour. HOURS_BEFORE and MINUTES_BEFORE both
// take a positive minute count. SPECIFIC_TIME uses the caller-supplied
// timestamp as-is.
func FireTime(eventStart time.Time, scheduleType models.ScheduleType, relativeMinutes int, specificTime time.Time) (time.Time, error) {
	switch scheduleType {
	case models.ScheduleNone:
		return neverFires, nil

	case models.ScheduleDayBefore:
		d := eventStart.AddDate(0, 0, -1)
		return time.Date(d.Year(), d.Month(), d.Day(), 18, 0, 0, 0, d.Location()), nil

	case models.ScheduleHoursBefore, models.ScheduleMinutesBefore:
		if relativeMinutes <= 0 {
			return time.Time{}, fmt.Errorf("%w: relativeMinutes must be a positive integer", ErrParameterRequired)
		}
		return eventStart.Add(-time.Duration(relativeMinutes) * time.Minute), nil

	case models.ScheduleSpecificTime:
		if specificTime.IsZero() {
			return time.Time{}, fmt.Errorf("%w: specificTime is required", ErrParameterRequired)
		}
		return specificTime, nil

	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownScheduleType, scheduleType)
	}
}

// Validate rejects fire times that are not strictly between now and the
// event start. Violations are creation-time request errors, never
// dispatcher errors.
func Validate(fireTime, now, eventStart time.Time) error {
	if !fireTime.After(now) {
		return ErrFireTimeInPast
	}
	if !fireTime.Before(eventStart) {
		return ErrFireTimeAfterEvent
	}
	return nil
}
