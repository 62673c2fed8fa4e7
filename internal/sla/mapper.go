package sla

import (
	"math"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// maxWalkIterations bounds the day-granularity deadline walk. A validated
// calendar consumes at least one hour per business day, so the largest
// resolution budget (168h) finishes in well under this many iterations.
const maxWalkIterations = 400

type tierSpec struct {
	tier              domain.SlaTier
	minScore          float64
	responseHours     int
	resolutionHours   int
	businessHoursOnly bool
	vendorTier        string
}

// Tier thresholds operate on the priority score only; the classifier's
// severity label is never consulted.
var tierTable = []tierSpec{
	{domain.TierEmergency, 80, 4, 24, false, "Premium only"},
	{domain.TierHigh, 60, 24, 48, true, "Preferred + Premium"},
	{domain.TierMedium, 25, 48, 120, true, "All qualified"},
	{domain.TierLow, math.Inf(-1), 72, 168, true, "Any available"},
}

// Mapper converts a priority score and submission time into binding
// response/resolution deadlines. It is pure and immutable after construction;
// a single instance may be shared by any number of concurrent callers.
type Mapper struct {
	calendar BusinessCalendar
	weekdays map[time.Weekday]bool
}

// NewMapper validates the calendar eagerly; an invalid calendar is the only
// construction error.
func NewMapper(calendar BusinessCalendar) (*Mapper, error) {
	if err := calendar.Validate(); err != nil {
		return nil, err
	}
	weekdays := make(map[time.Weekday]bool, len(calendar.Weekdays))
	for _, day := range calendar.Weekdays {
		weekdays[day] = true
	}
	return &Mapper{calendar: calendar, weekdays: weekdays}, nil
}

// Calendar returns the configured business calendar.
func (m *Mapper) Calendar() BusinessCalendar {
	return m.calendar
}

// MapToDeadlines never fails for a finite score and valid timestamp.
// EMERGENCY deadlines count wall-clock hours; all other tiers count only
// business hours, with response and resolution each walked independently
// from the submission time.
func (m *Mapper) MapToDeadlines(priorityScore float64, submissionTime time.Time) domain.SlaResult {
	spec := tierFor(priorityScore)

	var response, resolution time.Time
	if spec.businessHoursOnly {
		response = m.businessDeadline(submissionTime, spec.responseHours)
		resolution = m.businessDeadline(submissionTime, spec.resolutionHours)
	} else {
		response = submissionTime.Add(time.Duration(spec.responseHours) * time.Hour)
		resolution = submissionTime.Add(time.Duration(spec.resolutionHours) * time.Hour)
	}

	return domain.SlaResult{
		Tier:               spec.tier,
		ResponseDeadline:   response,
		ResolutionDeadline: resolution,
		ResponseHours:      spec.responseHours,
		ResolutionHours:    spec.resolutionHours,
		BusinessHoursOnly:  spec.businessHoursOnly,
		VendorTier:         spec.vendorTier,
	}
}

func tierFor(priorityScore float64) tierSpec {
	for _, spec := range tierTable {
		if priorityScore >= spec.minScore {
			return spec
		}
	}
	return tierTable[len(tierTable)-1]
}

// businessDeadline walks forward from start, consuming only hours inside the
// business window. Each iteration either finishes inside the current business
// day or consumes the remainder of it, so remaining hours strictly decrease.
func (m *Mapper) businessDeadline(start time.Time, hours int) time.Time {
	current := m.snapForward(start)
	remaining := float64(hours)

	for i := 0; i < maxWalkIterations; i++ {
		dayEnd := atHour(current, m.calendar.EndHour)
		available := dayEnd.Sub(current).Hours()
		if remaining <= available {
			return current.Add(time.Duration(remaining * float64(time.Hour)))
		}
		remaining -= available
		current = m.snapForward(dayEnd)
	}
	// unreachable for a validated calendar
	return current
}

// snapForward moves a timestamp to the start of the next business period when
// it falls outside the window. Timestamps already inside the window are
// returned unchanged.
func (m *Mapper) snapForward(t time.Time) time.Time {
	if m.isBusinessTime(t) {
		return t
	}
	if m.weekdays[t.Weekday()] && t.Hour() < m.calendar.StartHour {
		return atHour(t, m.calendar.StartHour)
	}
	next := atHour(t.AddDate(0, 0, 1), m.calendar.StartHour)
	for !m.weekdays[next.Weekday()] {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (m *Mapper) isBusinessTime(t time.Time) bool {
	return m.weekdays[t.Weekday()] &&
		t.Hour() >= m.calendar.StartHour &&
		t.Hour() < m.calendar.EndHour
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}
