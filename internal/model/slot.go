package model

import (
	"fmt"
	"time"
)

// Slot represents one bookable deployment window on the weekly
// calendar.  Slots are generated ahead of time for a rolling
// horizon and are never deleted; only their booking state
// changes.  Date carries day granularity only and is stored as
// UTC midnight.
//
// Fields:
//  ID         – primary key identifier.
//  Date       – calendar day of the window (UTC midnight).
//  Time       – short label shown in listings (e.g. "Slot 1").
//  TimeDetail – full window description (e.g. "09:00 AM - 11:00 AM IST").
//  Booked     – whether a release currently occupies the slot.
//  ReleaseID  – identifier of the occupying release, nil when free.
type Slot struct {
	ID         uint64    `json:"id"`         // deployment_slots.id
	Date       time.Time `json:"date"`       // deployment_slots.date
	Time       string    `json:"time"`       // deployment_slots.time
	TimeDetail string    `json:"timeDetail"` // deployment_slots.time_detail (nullable in DB, empty when absent)
	Booked     bool      `json:"booked"`     // deployment_slots.booked
	ReleaseID  *uint64   `json:"releaseId"`  // deployment_slots.release_id (nullable)
}

// SlotWithRelease augments a slot with the release occupying it.
// Release is nil for free slots and also when the slot carries a
// dangling release reference; listings must never fail because a
// referenced release is missing.
type SlotWithRelease struct {
	Slot
	Release *Release `json:"release,omitempty"`
}

// SlotNumber reports the ordinal of the slot within its day (1-based),
// parsed from the "Slot N" label.  Returns 0 when the label does not
// follow the generated form.
func (s Slot) SlotNumber() int {
	var n int
	if _, err := fmt.Sscanf(s.Time, "Slot %d", &n); err != nil {
		return 0
	}
	return n
}
