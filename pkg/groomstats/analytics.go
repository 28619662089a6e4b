package groomstats

import (
	"context"
	"fmt"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
)

// NoShowAnalytics aggregates a user's no-show history by the dimensions
// sales teams slice on: when the meeting was booked and who booked it.
type NoShowAnalytics struct {
	Total         int            `json:"total"`
	ByHour        map[int]int    `json:"by_hour"`
	ByIndustry    map[string]int `json:"by_industry"`
	ByCompanySize map[string]int `json:"by_company_size"`
	ByRevenue     map[string]int `json:"by_revenue"`
}

// NoShowAnalytics computes the aggregation over every meeting of the user
// that was ever marked a no-show, including meetings later rescheduled.
func (a *Aggregator) NoShowAnalytics(ctx context.Context, userID string) (*NoShowAnalytics, error) {
	meetings, err := a.meetings.MeetingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	result := &NoShowAnalytics{
		ByHour:        make(map[int]int),
		ByIndustry:    make(map[string]int),
		ByCompanySize: make(map[string]int),
		ByRevenue:     make(map[string]int),
	}

	for _, meeting := range meetings {
		if meeting.NoShowAt == nil {
			continue
		}
		result.Total++

		// The no-show happened at the original time when the meeting has
		// since been rescheduled
		start := meeting.StartTime
		if meeting.OriginalStartTime != nil {
			start = *meeting.OriginalStartTime
		}
		result.ByHour[start.Hour()]++

		industry := meeting.Industry
		if industry == "" {
			industry = "unknown"
		}
		result.ByIndustry[industry]++

		result.ByCompanySize[CompanySizeBucket(meeting.CompanySize)]++
		result.ByRevenue[RevenueBucket(meeting.Revenue)]++
	}

	return result, nil
}

// CompanySizeBucket maps a raw company-size fact to a headcount bucket.
func CompanySizeBucket(raw string) string {
	size, ok := grooming.ParseNumeric(raw)
	if !ok {
		return "unknown"
	}
	switch {
	case size <= 10:
		return "1-10"
	case size <= 50:
		return "11-50"
	case size <= 200:
		return "51-200"
	case size <= 1000:
		return "201-1000"
	default:
		return "1000+"
	}
}

// RevenueBucket maps a raw revenue fact to an annual-revenue bucket.
func RevenueBucket(raw string) string {
	revenue, ok := grooming.ParseNumeric(raw)
	if !ok {
		return "unknown"
	}
	switch {
	case revenue < 1_000_000:
		return "<$1M"
	case revenue < 10_000_000:
		return "$1M-$10M"
	case revenue < 100_000_000:
		return "$10M-$100M"
	default:
		return "$100M+"
	}
}
