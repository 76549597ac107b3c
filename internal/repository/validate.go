package repository

import (
	"fmt"
	"time"

	"github.com/DJaayy/slot-booking/internal/model"
)

// validateBooking checks the request fields and the target slot's
// date against the booking preconditions shared by both store
// implementations. The date comparison is made at day granularity:
// booking a slot later today is allowed, booking yesterday's slot is
// not.
func validateBooking(req model.BookingRequest, slotDate, now time.Time) error {
	if req.ReleaseName == "" {
		return fmt.Errorf("%w: release name is required", ErrInvalidArgument)
	}
	if req.Team == "" {
		return fmt.Errorf("%w: team is required", ErrInvalidArgument)
	}
	if !model.ValidTeam(req.Team) {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, req.Team)
	}
	if req.ReleaseType == "" {
		return fmt.Errorf("%w: release type is required", ErrInvalidArgument)
	}
	if !model.ValidReleaseType(req.ReleaseType) {
		return fmt.Errorf("%w: unknown release type %q", ErrInvalidArgument, req.ReleaseType)
	}
	if DayOf(slotDate).Before(DayOf(now)) {
		return fmt.Errorf("%w: slot date is in the past", ErrInvalidArgument)
	}
	return nil
}

// DayOf truncates t to UTC midnight of its calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekOf returns the Monday-start week containing date as an
// inclusive [monday, sunday] day pair, both at UTC midnight.
func WeekOf(date time.Time) (monday, sunday time.Time) {
	d := DayOf(date)
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(d.Weekday()) + 6) % 7
	monday = d.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}
