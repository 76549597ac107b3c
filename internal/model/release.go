package model

// ReleaseStatus enumerates the lifecycle states of a release.
// A release starts out pending and is later marked with the
// outcome of its deployment window.  The ledger deliberately does
// not restrict transitions between states: operators routinely
// flip a release back to pending after a mistaken update, so any
// of the five values may be set at any time.
type ReleaseStatus string

const (
	StatusPending  ReleaseStatus = "pending"
	StatusReleased ReleaseStatus = "released"
	StatusReverted ReleaseStatus = "reverted"
	StatusSkipped  ReleaseStatus = "skipped"
	StatusUnbooked ReleaseStatus = "unbooked"
)

// ValidStatus reports whether s is one of the five known release states.
func ValidStatus(s ReleaseStatus) bool {
	switch s {
	case StatusPending, StatusReleased, StatusReverted, StatusSkipped, StatusUnbooked:
		return true
	}
	return false
}

// ReleaseTypes lists the accepted values for Release.ReleaseType.
var ReleaseTypes = []string{"feature", "enhancement", "bugfix", "migration", "other"}

// Teams lists the accepted values for Release.Team.
var Teams = []string{
	"Backend Team",
	"Frontend Team",
	"Data Team",
	"Security Team",
	"Finance Team",
}

// ValidReleaseType reports whether t is an accepted release type.
func ValidReleaseType(t string) bool {
	for _, v := range ReleaseTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidTeam reports whether t is an accepted team name.
func ValidTeam(t string) bool {
	for _, v := range Teams {
		if v == t {
			return true
		}
	}
	return false
}

// Release represents one team's deployment request bound to
// exactly one slot.  A release is created only by booking a slot
// and removed only by cancelling that booking; in between, only
// Status and Comments may change.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – release name (required).
//  Version     – optional version string (e.g. "v1.2.3").
//  Team        – owning team, one of Teams (required).
//  ReleaseType – one of ReleaseTypes (required).
//  Description – optional free-text description.
//  Status      – current lifecycle state, initially pending.
//  Comments    – optional note recorded with the last status change.
//  SlotID      – identifier of the occupied slot, set at creation, immutable.
type Release struct {
	ID          uint64        `json:"id"`          // releases.id
	Name        string        `json:"name"`        // releases.name
	Version     string        `json:"version"`     // releases.version (nullable, empty when absent)
	Team        string        `json:"team"`        // releases.team
	ReleaseType string        `json:"releaseType"` // releases.release_type
	Description string        `json:"description"` // releases.description (nullable, empty when absent)
	Status      ReleaseStatus `json:"status"`      // releases.status
	Comments    string        `json:"comments"`    // releases.comments (nullable, empty when absent)
	SlotID      uint64        `json:"slotId"`      // releases.slot_id
}

// ReleaseWithSlot augments a release with the slot it occupies, used
// by the upcoming-releases listing.  Slot is nil when the reference
// dangles.
type ReleaseWithSlot struct {
	Release
	Slot *Slot `json:"slot,omitempty"`
}

// BookingRequest carries the attributes needed to book a slot.
// SlotID identifies the target slot; the remaining fields populate
// the new release.
type BookingRequest struct {
	SlotID      uint64 `json:"slotId"`
	ReleaseName string `json:"releaseName"`
	Version     string `json:"version"`
	Team        string `json:"team"`
	ReleaseType string `json:"releaseType"`
	Description string `json:"description"`
}
