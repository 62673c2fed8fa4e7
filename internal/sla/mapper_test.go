package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/internal/domain"
)

func newDefaultMapper(t *testing.T) *Mapper {
	t.Helper()
	mapper, err := NewMapper(DefaultCalendar())
	require.NoError(t, err)
	return mapper
}

func TestTierThresholds(t *testing.T) {
	mapper := newDefaultMapper(t)
	submitted := time.Date(2025, time.January, 7, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		score           float64
		tier            domain.SlaTier
		responseHours   int
		resolutionHours int
		businessOnly    bool
		vendorTier      string
	}{
		{98.3, domain.TierEmergency, 4, 24, false, "Premium only"},
		{80.0, domain.TierEmergency, 4, 24, false, "Premium only"},
		{79.9, domain.TierHigh, 24, 48, true, "Preferred + Premium"},
		{60.0, domain.TierHigh, 24, 48, true, "Preferred + Premium"},
		{45.0, domain.TierMedium, 48, 120, true, "All qualified"},
		{25.0, domain.TierMedium, 48, 120, true, "All qualified"},
		{24.9, domain.TierLow, 72, 168, true, "Any available"},
		{1.0, domain.TierLow, 72, 168, true, "Any available"},
	}
	for _, tc := range cases {
		result := mapper.MapToDeadlines(tc.score, submitted)
		assert.Equal(t, tc.tier, result.Tier, "score %.1f", tc.score)
		assert.Equal(t, tc.responseHours, result.ResponseHours, "score %.1f", tc.score)
		assert.Equal(t, tc.resolutionHours, result.ResolutionHours, "score %.1f", tc.score)
		assert.Equal(t, tc.businessOnly, result.BusinessHoursOnly, "score %.1f", tc.score)
		assert.Equal(t, tc.vendorTier, result.VendorTier, "score %.1f", tc.score)
	}
}

func TestEmergencyCountsWallClockHours(t *testing.T) {
	mapper := newDefaultMapper(t)
	// Tuesday 23:30: no calendar snapping for emergencies
	submitted := time.Date(2025, time.January, 7, 23, 30, 0, 0, time.UTC)

	result := mapper.MapToDeadlines(98.3, submitted)
	assert.Equal(t, domain.TierEmergency, result.Tier)
	assert.Equal(t, submitted.Add(4*time.Hour), result.ResponseDeadline)
	assert.Equal(t, submitted.Add(24*time.Hour), result.ResolutionDeadline)
	assert.Equal(t, "Premium only", result.VendorTier)
}

func TestBusinessWalkFromFridayAfternoon(t *testing.T) {
	mapper := newDefaultMapper(t)
	// Friday 16:30: only half an hour left in the business day
	submitted := time.Date(2025, time.January, 10, 16, 30, 0, 0, time.UTC)

	result := mapper.MapToDeadlines(45.0, submitted)
	require.Equal(t, domain.TierMedium, result.Tier)

	// 48h response: 0.5h Friday + 8h/day Mon-Fri + 7.5h the following Monday
	assert.Equal(t, time.Date(2025, time.January, 20, 16, 30, 0, 0, time.UTC), result.ResponseDeadline)
	// 120h resolution: spans two full weeks, skipping both weekends
	assert.Equal(t, time.Date(2025, time.January, 31, 16, 30, 0, 0, time.UTC), result.ResolutionDeadline)
}

func TestWeekendSubmissionSnapsToMonday(t *testing.T) {
	mapper := newDefaultMapper(t)
	// Saturday 10:00 is outside the calendar entirely
	submitted := time.Date(2025, time.January, 11, 10, 0, 0, 0, time.UTC)

	result := mapper.MapToDeadlines(70.0, submitted)
	require.Equal(t, domain.TierHigh, result.Tier)

	// walk starts Monday 09:00; 24h = three full business days
	assert.Equal(t, time.Weekday(time.Wednesday), result.ResponseDeadline.Weekday())
	assert.Equal(t, time.Date(2025, time.January, 15, 17, 0, 0, 0, time.UTC), result.ResponseDeadline)
}

func TestEarlyMorningSnapsToSameDayStart(t *testing.T) {
	mapper := newDefaultMapper(t)
	// Tuesday 07:15, before opening
	submitted := time.Date(2025, time.January, 7, 7, 15, 0, 0, time.UTC)

	result := mapper.MapToDeadlines(45.0, submitted)
	// 48h from Tuesday 09:00 = six full business days
	assert.Equal(t, time.Date(2025, time.January, 14, 17, 0, 0, 0, time.UTC), result.ResponseDeadline)
}

func TestResponseNeverAfterResolution(t *testing.T) {
	mapper := newDefaultMapper(t)
	scores := []float64{1, 24.9, 25, 45, 60, 79.9, 80, 98.3}
	times := []time.Time{
		time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC),   // Monday early
		time.Date(2025, time.March, 7, 16, 45, 0, 0, time.UTC), // Friday late
		time.Date(2025, time.March, 8, 12, 0, 0, 0, time.UTC),  // Saturday
		time.Date(2025, time.March, 5, 23, 59, 0, 0, time.UTC), // Wednesday night
	}
	for _, score := range scores {
		for _, submitted := range times {
			result := mapper.MapToDeadlines(score, submitted)
			assert.False(t, result.ResponseDeadline.After(result.ResolutionDeadline),
				"score %.1f submitted %s", score, submitted)
		}
	}
}

func TestBusinessDeadlinesLandOnBusinessWeekdays(t *testing.T) {
	mapper := newDefaultMapper(t)
	submitted := time.Date(2025, time.March, 7, 16, 45, 0, 0, time.UTC) // Friday 16:45

	for _, score := range []float64{10, 45, 70} {
		result := mapper.MapToDeadlines(score, submitted)
		for _, deadline := range []time.Time{result.ResponseDeadline, result.ResolutionDeadline} {
			day := deadline.Weekday()
			assert.NotEqual(t, time.Saturday, day)
			assert.NotEqual(t, time.Sunday, day)
			assert.GreaterOrEqual(t, deadline.Hour(), 9)
			assert.LessOrEqual(t, deadline.Hour(), 17)
		}
	}
}

func TestCustomCalendar(t *testing.T) {
	mapper, err := NewMapper(BusinessCalendar{
		StartHour: 8,
		EndHour:   12,
		Weekdays:  []time.Weekday{time.Monday, time.Saturday},
	})
	require.NoError(t, err)

	// Friday 10:00 is not a business day under this calendar
	submitted := time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC)
	result := mapper.MapToDeadlines(70.0, submitted)

	// 24h at 4h/day over Sat, Mon, Sat, Mon, Sat, Mon
	assert.Equal(t, time.Date(2025, time.January, 27, 12, 0, 0, 0, time.UTC), result.ResponseDeadline)
}

func TestInvalidCalendarRejectedAtConstruction(t *testing.T) {
	cases := []struct {
		name     string
		calendar BusinessCalendar
	}{
		{"start equals end", BusinessCalendar{StartHour: 9, EndHour: 9, Weekdays: []time.Weekday{time.Monday}}},
		{"start after end", BusinessCalendar{StartHour: 18, EndHour: 9, Weekdays: []time.Weekday{time.Monday}}},
		{"empty weekdays", BusinessCalendar{StartHour: 9, EndHour: 17}},
		{"start out of range", BusinessCalendar{StartHour: -1, EndHour: 17, Weekdays: []time.Weekday{time.Monday}}},
		{"end out of range", BusinessCalendar{StartHour: 9, EndHour: 24, Weekdays: []time.Weekday{time.Monday}}},
		{"bogus weekday", BusinessCalendar{StartHour: 9, EndHour: 17, Weekdays: []time.Weekday{time.Weekday(9)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMapper(tc.calendar)
			assert.Error(t, err)
		})
	}
}

func TestMappingIsDeterministic(t *testing.T) {
	mapper := newDefaultMapper(t)
	submitted := time.Date(2025, time.June, 12, 14, 20, 0, 0, time.UTC)
	first := mapper.MapToDeadlines(45.0, submitted)
	second := mapper.MapToDeadlines(45.0, submitted)
	assert.Equal(t, first, second)
}
