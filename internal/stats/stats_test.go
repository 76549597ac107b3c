package stats

import (
	"context"
	"testing"
	"time"

	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
	"github.com/DJaayy/slot-booking/internal/slotgen"
)

func TestComputeEmpty(t *testing.T) {
	got := Compute(nil, nil, time.Now().UTC())
	if got.Stats != (Counts{}) {
		t.Errorf("empty snapshot stats = %+v, want zeros", got.Stats)
	}
	if len(got.ByType) != 0 || len(got.ByTeam) != 0 {
		t.Errorf("empty snapshot breakdowns = %v / %v, want empty maps", got.ByType, got.ByTeam)
	}
}

func TestComputeBuckets(t *testing.T) {
	// now is Wednesday 2026-09-09; current week runs Mon 07 - Sun 13.
	now := time.Date(2026, 9, 9, 12, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2026, 9, 9+offset, 0, 0, 0, 0, time.UTC)
	}
	slots := []model.Slot{
		{ID: 1, Date: day(-2), Booked: true},  // Monday this week, past: excluded
		{ID: 2, Date: day(0), Booked: true},   // today: this week
		{ID: 3, Date: day(2), Booked: true},   // Friday: this week
		{ID: 4, Date: day(5), Booked: true},   // Monday next week
		{ID: 5, Date: day(16), Booked: true},  // two weeks out: total only
		{ID: 6, Date: day(1)},                 // free, upcoming
		{ID: 7, Date: day(-1)},                // free, past: excluded
	}
	releases := []model.Release{
		{ID: 11, SlotID: 1, ReleaseType: "feature", Team: "Backend Team"},
		{ID: 12, SlotID: 2, ReleaseType: "feature", Team: "Backend Team"},
		{ID: 13, SlotID: 3, ReleaseType: "bugfix", Team: "Data Team"},
		{ID: 14, SlotID: 4, ReleaseType: "migration", Team: "Data Team"},
		{ID: 15, SlotID: 5, ReleaseType: "feature", Team: "Security Team"},
		{ID: 16, SlotID: 99, ReleaseType: "other", Team: "Finance Team"}, // missing slot: skipped
	}

	got := Compute(slots, releases, now)
	want := Counts{Total: 4, ThisWeek: 2, NextWeek: 1, Available: 1}
	if got.Stats != want {
		t.Errorf("stats = %+v, want %+v", got.Stats, want)
	}
	if got.ByType["feature"] != 2 || got.ByType["bugfix"] != 1 || got.ByType["migration"] != 1 {
		t.Errorf("byType = %v", got.ByType)
	}
	if got.ByType["other"] != 0 {
		t.Errorf("release with missing slot counted in byType: %v", got.ByType)
	}
	if got.ByTeam["Backend Team"] != 2 || got.ByTeam["Data Team"] != 2 || got.ByTeam["Security Team"] != 1 {
		t.Errorf("byTeam = %v", got.ByTeam)
	}
}

func TestComputeWeekBoundary(t *testing.T) {
	// Sunday still belongs to the week started the previous Monday.
	now := time.Date(2026, 9, 13, 8, 0, 0, 0, time.UTC) // Sunday
	slots := []model.Slot{
		{ID: 1, Date: time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), Booked: true}, // today
		{ID: 2, Date: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), Booked: true}, // Monday, next week
	}
	releases := []model.Release{
		{ID: 11, SlotID: 1, ReleaseType: "feature", Team: "Backend Team"},
		{ID: 12, SlotID: 2, ReleaseType: "feature", Team: "Backend Team"},
	}
	got := Compute(slots, releases, now)
	if got.Stats.ThisWeek != 1 || got.Stats.NextWeek != 1 {
		t.Errorf("stats = %+v, want thisWeek=1 nextWeek=1", got.Stats)
	}
}

func TestComputeAgainstLiveStore(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	ctx := context.Background()
	now := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC) // Monday

	if _, err := slotgen.New(store, nil).Seed(ctx, now, 1); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	snapshot := func() Overview {
		slots, err := store.GetSlots(ctx)
		if err != nil {
			t.Fatalf("GetSlots: %v", err)
		}
		releases, err := store.GetReleases(ctx)
		if err != nil {
			t.Fatalf("GetReleases: %v", err)
		}
		return Compute(slots, releases, now)
	}

	before := snapshot()
	if before.Stats.Available != 14 || before.Stats.Total != 0 {
		t.Fatalf("fresh week stats = %+v, want 14 available, 0 total", before.Stats)
	}

	slots, _ := store.GetSlots(ctx)
	rel, err := store.Book(ctx, model.BookingRequest{
		SlotID:      slots[0].ID,
		ReleaseName: "ledger-api",
		Version:     "v1.0.0",
		Team:        "Backend Team",
		ReleaseType: "feature",
	}, now)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	after := snapshot()
	if after.Stats.Available != 13 || after.Stats.Total != 1 || after.Stats.ThisWeek != 1 {
		t.Fatalf("post-booking stats = %+v, want 13 available, 1 total, 1 this week", after.Stats)
	}

	if err := store.Cancel(ctx, rel.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	restored := snapshot()
	if restored.Stats != before.Stats {
		t.Fatalf("post-cancel stats = %+v, want %+v", restored.Stats, before.Stats)
	}
}
