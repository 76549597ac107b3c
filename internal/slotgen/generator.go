// Package slotgen seeds the deployment calendar with bookable
// slots. The per-day template is fixed: Monday through Thursday get
// three windows (morning, afternoon, evening), Friday gets two,
// weekends get none.
package slotgen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
)

// slotWindows holds the time details assigned to the slots of a
// day, in ordinal order.
var slotWindows = []string{
	"09:00 AM - 11:00 AM IST",
	"02:00 PM - 04:00 PM IST",
	"07:00 PM - 09:00 PM IST",
}

// SlotsPerDay returns how many slots the given weekday carries.
func SlotsPerDay(d time.Weekday) int {
	switch d {
	case time.Saturday, time.Sunday:
		return 0
	case time.Friday:
		return 2
	default:
		return 3
	}
}

// Generator seeds slots into a store for a rolling horizon.
type Generator struct {
	store repository.Store
	log   *zap.Logger
}

// New returns a Generator writing through the given store.
func New(store repository.Store, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{store: store, log: log}
}

// Seed ensures slots exist for every weekday from the Monday of the
// week containing `from` through `weeks` whole weeks. Slots are
// keyed by (date, label) in the store, so reseeding an already
// populated horizon inserts nothing and never duplicates. It
// returns the number of slots actually created.
func (g *Generator) Seed(ctx context.Context, from time.Time, weeks int) (int, error) {
	monday, _ := repository.WeekOf(from)
	created := 0
	for day := 0; day < weeks*7; day++ {
		date := monday.AddDate(0, 0, day)
		n := SlotsPerDay(date.Weekday())
		for ordinal := 1; ordinal <= n; ordinal++ {
			slot := model.Slot{
				Date:       date,
				Time:       fmt.Sprintf("Slot %d", ordinal),
				TimeDetail: slotWindows[ordinal-1],
			}
			ok, err := g.store.CreateSlot(ctx, &slot)
			if err != nil {
				return created, fmt.Errorf("seed slot %s %q: %w", date.Format("2006-01-02"), slot.Time, err)
			}
			if ok {
				created++
			}
		}
	}
	if created > 0 {
		g.log.Info("seeded deployment slots",
			zap.Int("created", created),
			zap.Time("from", monday),
			zap.Int("weeks", weeks))
	}
	return created, nil
}
