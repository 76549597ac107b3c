package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/model"
)

// MemoryStore is the in-process reference implementation of Store.
// It keeps every collection in maps guarded by a single RWMutex, so
// the slot+release pair updates of the booking ledger are atomic
// with respect to all readers. It backs the test suite and serves
// as the dev-mode store (STORE_DRIVER=memory).
type MemoryStore struct {
	mu        sync.RWMutex
	slots     map[uint64]model.Slot
	releases  map[uint64]model.Release
	templates map[uint64]model.EmailTemplate
	users     map[uint64]model.User

	nextSlotID     uint64
	nextReleaseID  uint64
	nextTemplateID uint64
	nextUserID     uint64

	log *zap.Logger
}

// NewMemoryStore returns an empty MemoryStore. The logger is used
// only for anomaly reporting (dangling references found during
// cancellation); pass zap.NewNop() in tests.
func NewMemoryStore(log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemoryStore{
		slots:     make(map[uint64]model.Slot),
		releases:  make(map[uint64]model.Release),
		templates: make(map[uint64]model.EmailTemplate),
		users:     make(map[uint64]model.User),
		log:       log,
	}
}

// GetSlot returns the slot with the given id or ErrSlotNotFound.
func (s *MemoryStore) GetSlot(ctx context.Context, id uint64) (*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &slot, nil
}

// GetSlots returns every slot in the store.
func (s *MemoryStore) GetSlots(ctx context.Context) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		out = append(out, slot)
	}
	sortSlots(out)
	return out, nil
}

// GetSlotsByWeek returns the slots of the Monday-start week
// containing date, joined with their releases. A slot whose
// release record is missing is surfaced with a nil Release so the
// week view renders it as free-looking metadata instead of failing.
func (s *MemoryStore) GetSlotsByWeek(ctx context.Context, date time.Time) ([]model.SlotWithRelease, error) {
	monday, sunday := WeekOf(date)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SlotWithRelease, 0, 16)
	for _, slot := range s.slots {
		d := DayOf(slot.Date)
		if d.Before(monday) || d.After(sunday) {
			continue
		}
		item := model.SlotWithRelease{Slot: slot}
		if slot.ReleaseID != nil {
			if rel, ok := s.releases[*slot.ReleaseID]; ok {
				r := rel
				item.Release = &r
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].SlotNumber() < out[j].SlotNumber()
	})
	return out, nil
}

// CreateSlot inserts a slot unless one already exists for the same
// (date, time) pair. Seeding the same horizon twice therefore
// leaves the calendar unchanged.
func (s *MemoryStore) CreateSlot(ctx context.Context, slot *model.Slot) (bool, error) {
	day := DayOf(slot.Date)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.slots {
		if DayOf(existing.Date).Equal(day) && existing.Time == slot.Time {
			slot.ID = existing.ID
			return false, nil
		}
	}
	s.nextSlotID++
	slot.ID = s.nextSlotID
	slot.Date = day
	s.slots[slot.ID] = *slot
	return true, nil
}

// Book validates the request, then creates the release and flips
// the slot to booked under the write lock, so concurrent booking
// attempts on the same slot serialize and at most one succeeds.
func (s *MemoryStore) Book(ctx context.Context, req model.BookingRequest, now time.Time) (*model.Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[req.SlotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if slot.Booked {
		return nil, ErrSlotBooked
	}
	if err := validateBooking(req, slot.Date, now); err != nil {
		return nil, err
	}
	s.nextReleaseID++
	rel := model.Release{
		ID:          s.nextReleaseID,
		Name:        req.ReleaseName,
		Version:     req.Version,
		Team:        req.Team,
		ReleaseType: req.ReleaseType,
		Description: req.Description,
		Status:      model.StatusPending,
		SlotID:      slot.ID,
	}
	s.releases[rel.ID] = rel
	slot.Booked = true
	slot.ReleaseID = &rel.ID
	s.slots[slot.ID] = slot
	return &rel, nil
}

// Cancel removes the release and frees its slot. A missing slot
// record means the pairing invariant was already broken; the
// release is removed anyway and the anomaly logged.
func (s *MemoryStore) Cancel(ctx context.Context, releaseID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel, ok := s.releases[releaseID]
	if !ok {
		return ErrReleaseNotFound
	}
	delete(s.releases, releaseID)
	slot, ok := s.slots[rel.SlotID]
	if !ok {
		s.log.Warn("cancelled release referenced a missing slot",
			zap.Uint64("release_id", releaseID),
			zap.Uint64("slot_id", rel.SlotID))
		return nil
	}
	slot.Booked = false
	slot.ReleaseID = nil
	s.slots[slot.ID] = slot
	return nil
}

// UpdateReleaseStatus sets status and comments in place.
func (s *MemoryStore) UpdateReleaseStatus(ctx context.Context, releaseID uint64, status model.ReleaseStatus, comments string) (*model.Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel, ok := s.releases[releaseID]
	if !ok {
		return nil, ErrReleaseNotFound
	}
	rel.Status = status
	rel.Comments = comments
	s.releases[releaseID] = rel
	return &rel, nil
}

// GetRelease returns the release with the given id or ErrReleaseNotFound.
func (s *MemoryStore) GetRelease(ctx context.Context, id uint64) (*model.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.releases[id]
	if !ok {
		return nil, ErrReleaseNotFound
	}
	return &rel, nil
}

// GetReleases returns every release in the store.
func (s *MemoryStore) GetReleases(ctx context.Context) ([]model.Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Release, 0, len(s.releases))
	for _, rel := range s.releases {
		out = append(out, rel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetUpcomingReleases returns all releases joined with their slots,
// ordered by slot date then slot ordinal. Releases whose slot
// record is missing sort last and carry a nil Slot.
func (s *MemoryStore) GetUpcomingReleases(ctx context.Context) ([]model.ReleaseWithSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ReleaseWithSlot, 0, len(s.releases))
	for _, rel := range s.releases {
		item := model.ReleaseWithSlot{Release: rel}
		if slot, ok := s.slots[rel.SlotID]; ok {
			sl := slot
			item.Slot = &sl
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Slot, out[j].Slot
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Date.Equal(b.Date):
			return a.Date.Before(b.Date)
		default:
			return a.SlotNumber() < b.SlotNumber()
		}
	})
	return out, nil
}

// GetEmailTemplate returns the template with the given id or
// ErrTemplateNotFound.
func (s *MemoryStore) GetEmailTemplate(ctx context.Context, id uint64) (*model.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return &t, nil
}

// GetEmailTemplates returns all templates, filtered by category
// when category is non-empty.
func (s *MemoryStore) GetEmailTemplates(ctx context.Context, category string) ([]model.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.EmailTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateEmailTemplate inserts a template and assigns its ID.
func (s *MemoryStore) CreateEmailTemplate(ctx context.Context, t *model.EmailTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTemplateID++
	t.ID = s.nextTemplateID
	s.templates[t.ID] = *t
	return nil
}

// UpdateEmailTemplate replaces a stored template's mutable fields.
func (s *MemoryStore) UpdateEmailTemplate(ctx context.Context, t *model.EmailTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.templates[t.ID]
	if !ok {
		return ErrTemplateNotFound
	}
	// The default flag is owned by the seeder, not the API.
	t.IsDefault = existing.IsDefault
	s.templates[t.ID] = *t
	return nil
}

// DeleteEmailTemplate removes a template unless it is a protected
// default.
func (s *MemoryStore) DeleteEmailTemplate(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return ErrTemplateNotFound
	}
	if t.IsDefault {
		return ErrForbidden
	}
	delete(s.templates, id)
	return nil
}

// CreateUser inserts a user, rejecting duplicate usernames.
func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	return nil
}

// GetUserByUsername returns the user or ErrUserNotFound.
func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func sortSlots(slots []model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].SlotNumber() < slots[j].SlotNumber()
	})
}
