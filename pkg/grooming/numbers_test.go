package grooming_test

import (
	"testing"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1000000", 1_000_000, true},
		{"$1,000,000", 1_000_000, true},
		{"€2,500", 2_500, true},
		{"£100", 100, true},
		{" 42 ", 42, true},
		{"3.5", 3.5, true},
		{"", 0, false},
		{"undisclosed", 0, false},
		{"$", 0, false},
	}

	for _, tc := range cases {
		got, ok := grooming.ParseNumeric(tc.raw)
		assert.Equal(tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(tc.want, got, tc.raw)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	assert := assert.New(t)

	s := grooming.DefaultSettings("user-1")
	assert.Equal("user-1", s.UserID)
	assert.True(s.AutoRescheduleEnabled)
	assert.True(s.SendConfirmation)
	assert.Equal(2, s.RescheduleDelayHours)
	assert.Equal(2, s.MaxRescheduleAttempts)
	assert.Equal(9, s.BusinessHoursStart)
	assert.Equal(17, s.BusinessHoursEnd)
	assert.False(s.IncludeWeekends)
	assert.Equal(14, s.SearchWindowDays)

	policy := s.SlotPolicy()
	assert.Equal(9, policy.BusinessHoursStart)
	assert.Equal(17, policy.BusinessHoursEnd)
	assert.False(policy.IncludeWeekends)
	assert.Equal(14, policy.SearchWindowDays)
}

func TestIsCalendly(t *testing.T) {
	assert := assert.New(t)

	assert.True((&grooming.Meeting{ExternalID: "calendly_abc"}).IsCalendly())
	assert.False((&grooming.Meeting{ExternalID: "gcal_abc"}).IsCalendly())
	assert.False((&grooming.Meeting{}).IsCalendly())
}
