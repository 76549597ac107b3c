// Package stats derives read-only aggregates from a snapshot of the
// booking ledger. Computation is a pure function over the slot and
// release collections; only slots dated today or later count.
package stats

import (
	"time"

	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
)

// Counts summarizes upcoming deployment activity.
type Counts struct {
	Total     int `json:"total"`     // upcoming releases (slot dated today or later)
	ThisWeek  int `json:"thisWeek"`  // releases in the current Monday-start week
	NextWeek  int `json:"nextWeek"`  // releases in the following week
	Available int `json:"available"` // free slots dated today or later
}

// Overview is the full statistics payload.
type Overview struct {
	Stats  Counts         `json:"stats"`
	ByType map[string]int `json:"byType"`
	ByTeam map[string]int `json:"byTeam"`
}

// Compute builds the overview from a snapshot taken at `now`.
// Releases whose slot record is missing are skipped: without a slot
// there is no date to bucket them by.
func Compute(slots []model.Slot, releases []model.Release, now time.Time) Overview {
	today := repository.DayOf(now)
	weekStart, weekEnd := repository.WeekOf(now)
	nextStart := weekStart.AddDate(0, 0, 7)
	nextEnd := weekEnd.AddDate(0, 0, 7)

	slotByID := make(map[uint64]model.Slot, len(slots))
	for _, s := range slots {
		slotByID[s.ID] = s
	}

	out := Overview{
		ByType: map[string]int{},
		ByTeam: map[string]int{},
	}

	for _, s := range slots {
		if repository.DayOf(s.Date).Before(today) {
			continue
		}
		if !s.Booked {
			out.Stats.Available++
		}
	}

	for _, r := range releases {
		slot, ok := slotByID[r.SlotID]
		if !ok {
			continue
		}
		day := repository.DayOf(slot.Date)
		if day.Before(today) {
			continue
		}
		out.Stats.Total++
		if !day.Before(weekStart) && !day.After(weekEnd) {
			out.Stats.ThisWeek++
		}
		if !day.Before(nextStart) && !day.After(nextEnd) {
			out.Stats.NextWeek++
		}
		out.ByType[r.ReleaseType]++
		out.ByTeam[r.Team]++
	}
	return out
}
