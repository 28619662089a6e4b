package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
)

// SlotDuration is the length of every candidate slot.
const SlotDuration = time.Hour

// Window is an occupied time interval on a user's calendar.
type Window struct {
	Start time.Time
	End   time.Time
}

// Finder computes the next conflict-free business-hours slot for a user.
type Finder struct {
	meetings grooming.MeetingStore
}

// NewFinder creates a new slot finder backed by the given meeting store
func NewFinder(meetings grooming.MeetingStore) *Finder {
	return &Finder{meetings: meetings}
}

// FindNextSlot returns the earliest one-hour slot after from that satisfies
// the policy and does not overlap any of the user's existing meetings. The
// second return value is false when no slot exists inside the search window;
// the caller must not schedule in that case.
func (f *Finder) FindNextSlot(ctx context.Context, userID string, from time.Time, policy grooming.SlotPolicy) (time.Time, bool, error) {
	existing, err := f.meetings.MeetingsByUser(ctx, userID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to load existing meetings: %w", err)
	}

	busy := make([]Window, 0, len(existing))
	for _, m := range existing {
		if m.Status == grooming.StatusCancelled {
			continue
		}
		busy = append(busy, Window{Start: m.StartTime, End: m.EndTime})
	}

	slot, found := NextSlot(from, policy, busy)
	return slot, found, nil
}

// NextSlot is the pure search: starting at the calendar day after from, it
// walks forward day by day up to SearchWindowDays, skips weekends unless
// the policy includes them, and within each kept day walks hour by hour
// from BusinessHoursStart to BusinessHoursEnd (exclusive). The first
// candidate that overlaps no busy window wins.
func NextSlot(from time.Time, policy grooming.SlotPolicy, busy []Window) (time.Time, bool) {
	firstDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()).AddDate(0, 0, 1)

	for offset := 0; offset < policy.SearchWindowDays; offset++ {
		day := firstDay.AddDate(0, 0, offset)

		if !policy.IncludeWeekends && isWeekend(day) {
			continue
		}

		for hour := policy.BusinessHoursStart; hour < policy.BusinessHoursEnd; hour++ {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
			if !overlapsAny(start, busy) {
				return start, true
			}
		}
	}

	return time.Time{}, false
}

func isWeekend(day time.Time) bool {
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

// overlapsAny applies the half-open interval test: a candidate
// [start, start+1h) conflicts when start < busyEnd AND start+1h > busyStart.
func overlapsAny(start time.Time, busy []Window) bool {
	end := start.Add(SlotDuration)
	for _, w := range busy {
		if start.Before(w.End) && end.After(w.Start) {
			return true
		}
	}
	return false
}
