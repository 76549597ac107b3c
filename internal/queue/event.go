// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the notification publisher.
const (
	ReleaseBookedQueue = "release.booked"
	ReleaseStatusQueue = "release.status"
)

// ReleaseBookedEvent is published when a slot booking succeeds. It
// carries the rendered notification text alongside the raw facts so
// downstream consumers (the mailer, chat bridges, audit logs) need
// not query the primary store.
type ReleaseBookedEvent struct {
	ReleaseID   uint64 `json:"release_id"`
	ReleaseName string `json:"release_name"`
	Team        string `json:"team"`
	ReleaseType string `json:"release_type"`
	SlotID      uint64 `json:"slot_id"`
	SlotDate    string `json:"slot_date"`
	SlotWindow  string `json:"slot_window"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	BookedAt    string `json:"booked_at"`
}

// ReleaseStatusEvent is published when a release's status changes.
type ReleaseStatusEvent struct {
	ReleaseID   uint64 `json:"release_id"`
	ReleaseName string `json:"release_name"`
	Team        string `json:"team"`
	Status      string `json:"status"`
	Comments    string `json:"comments"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ChangedAt   string `json:"changed_at"`
}
