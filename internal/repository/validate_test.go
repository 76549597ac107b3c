package repository

import (
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	in := time.Date(2026, 9, 9, 23, 45, 12, 999, time.FixedZone("IST", 5*3600+1800))
	got := DayOf(in)
	want := time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayOf = %v, want %v", got, want)
	}
}

func TestWeekOf(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time // Monday
	}{
		{"monday", time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 9, 13, 23, 0, 0, 0, time.UTC), time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)},
		{"next monday", time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := WeekOf(tc.in)
			if !start.Equal(tc.want) {
				t.Errorf("week start = %v, want %v", start, tc.want)
			}
			if wantEnd := tc.want.AddDate(0, 0, 6); !end.Equal(wantEnd) {
				t.Errorf("week end = %v, want %v", end, wantEnd)
			}
		})
	}
}
