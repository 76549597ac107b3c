package repository

import (
	"context"
	"time"

	"github.com/DJaayy/slot-booking/internal/model"
)

// Store is the capability set every storage backend must provide.
// Two implementations exist: MemoryStore, the in-process reference
// used by tests and development, and MySQLStore for production.
// Which one runs is decided once, by configuration, at startup.
//
// The booking ledger operations (Book, Cancel, UpdateReleaseStatus)
// mutate a slot and a release as one atomic unit: no reader may
// observe a release without its slot marked booked, or a freed slot
// still pointing at a deleted release.
type Store interface {
	// GetSlot returns the slot with the given id or ErrSlotNotFound.
	GetSlot(ctx context.Context, id uint64) (*model.Slot, error)
	// GetSlots returns every slot in the store.
	GetSlots(ctx context.Context) ([]model.Slot, error)
	// GetSlotsByWeek returns the slots of the Monday-start week
	// containing date, each joined with its release when booked,
	// ordered by date then slot ordinal. A dangling release
	// reference yields a nil Release rather than an error.
	GetSlotsByWeek(ctx context.Context, date time.Time) ([]model.SlotWithRelease, error)
	// CreateSlot inserts a slot unless one already exists for the
	// same (date, time) pair, making bulk seeding idempotent. It
	// reports whether a new slot was inserted and populates the ID
	// of the stored slot either way.
	CreateSlot(ctx context.Context, slot *model.Slot) (created bool, err error)

	// Book creates a release for the requested slot and marks the
	// slot booked, atomically. It fails with ErrSlotNotFound,
	// ErrSlotBooked, or ErrInvalidArgument (missing required field
	// or past-dated slot, compared at day granularity against now).
	Book(ctx context.Context, req model.BookingRequest, now time.Time) (*model.Release, error)
	// Cancel deletes the release and frees its slot, atomically.
	// When the referenced slot is missing the release is still
	// removed; the anomaly is logged, not surfaced.
	Cancel(ctx context.Context, releaseID uint64) error
	// UpdateReleaseStatus sets status and comments on the release,
	// leaving every other field and the slot pairing untouched.
	UpdateReleaseStatus(ctx context.Context, releaseID uint64, status model.ReleaseStatus, comments string) (*model.Release, error)
	// GetRelease returns the release with the given id or ErrReleaseNotFound.
	GetRelease(ctx context.Context, id uint64) (*model.Release, error)
	// GetReleases returns every release in the store.
	GetReleases(ctx context.Context) ([]model.Release, error)
	// GetUpcomingReleases returns all releases joined with their
	// slots, ordered by slot date then ordinal. Releases with a
	// dangling slot reference carry a nil Slot.
	GetUpcomingReleases(ctx context.Context) ([]model.ReleaseWithSlot, error)

	// GetEmailTemplate returns the template with the given id or
	// ErrTemplateNotFound.
	GetEmailTemplate(ctx context.Context, id uint64) (*model.EmailTemplate, error)
	// GetEmailTemplates returns all templates, optionally filtered
	// by category when category is non-empty.
	GetEmailTemplates(ctx context.Context, category string) ([]model.EmailTemplate, error)
	// CreateEmailTemplate inserts a template and populates its ID.
	CreateEmailTemplate(ctx context.Context, t *model.EmailTemplate) error
	// UpdateEmailTemplate replaces the mutable fields of a template.
	UpdateEmailTemplate(ctx context.Context, t *model.EmailTemplate) error
	// DeleteEmailTemplate removes a template. Deleting a template
	// flagged default fails with ErrForbidden.
	DeleteEmailTemplate(ctx context.Context, id uint64) error

	// CreateUser inserts a user and populates its ID. A duplicate
	// username fails with ErrUsernameTaken.
	CreateUser(ctx context.Context, u *model.User) error
	// GetUserByUsername returns the user or ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}
