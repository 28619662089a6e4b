package groomstats

import (
	"context"
	"testing"
	"time"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/stretchr/testify/assert"
)

func TestNoShowAnalyticsBreakdowns(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	a, s := newAggregator(t, now)

	noShowAt := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	originalStart := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	// A no-show that was later rescheduled keeps its original hour
	rescheduled := &grooming.Meeting{
		ID:                "m1",
		UserID:            "user-1",
		StartTime:         time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		EndTime:           time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		Status:            grooming.StatusPending,
		NoShowAt:          &noShowAt,
		OriginalStartTime: &originalStart,
		Industry:          "software",
		CompanySize:       "120",
		Revenue:           "$5,000,000",
	}
	assert.Nil(s.SaveMeeting(ctx, rescheduled))

	plain := &grooming.Meeting{
		ID:        "m2",
		UserID:    "user-1",
		StartTime: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		Status:    grooming.StatusNoShow,
		NoShowAt:  &noShowAt,
	}
	assert.Nil(s.SaveMeeting(ctx, plain))

	// Never a no-show, must not count
	assert.Nil(s.SaveMeeting(ctx, &grooming.Meeting{
		ID:        "m3",
		UserID:    "user-1",
		StartTime: time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC),
		Status:    grooming.StatusQualified,
	}))

	result, err := a.NoShowAnalytics(ctx, "user-1")
	assert.Nil(err)

	assert.Equal(2, result.Total)
	assert.Equal(1, result.ByHour[14]) // original hour, not the rescheduled 9:00
	assert.Equal(1, result.ByHour[9])
	assert.Equal(1, result.ByIndustry["software"])
	assert.Equal(1, result.ByIndustry["unknown"])
	assert.Equal(1, result.ByCompanySize["51-200"])
	assert.Equal(1, result.ByCompanySize["unknown"])
	assert.Equal(1, result.ByRevenue["$1M-$10M"])
	assert.Equal(1, result.ByRevenue["unknown"])
}

func TestCompanySizeBucket(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("1-10", CompanySizeBucket("5"))
	assert.Equal("11-50", CompanySizeBucket("50"))
	assert.Equal("51-200", CompanySizeBucket("51"))
	assert.Equal("201-1000", CompanySizeBucket("1,000"))
	assert.Equal("1000+", CompanySizeBucket("5000"))
	assert.Equal("unknown", CompanySizeBucket(""))
	assert.Equal("unknown", CompanySizeBucket("a few"))
}

func TestRevenueBucket(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("<$1M", RevenueBucket("999999"))
	assert.Equal("$1M-$10M", RevenueBucket("$1,000,000"))
	assert.Equal("$10M-$100M", RevenueBucket("99000000"))
	assert.Equal("$100M+", RevenueBucket("$250,000,000"))
	assert.Equal("unknown", RevenueBucket(""))
	assert.Equal("unknown", RevenueBucket("undisclosed"))
}
