package sla

import (
	"fmt"
	"time"
)

// BusinessCalendar configures the daily window and weekdays that count toward
// business-hours deadlines. Hours are whole clock hours; the window is
// [StartHour, EndHour) on each listed weekday.
type BusinessCalendar struct {
	StartHour int
	EndHour   int
	Weekdays  []time.Weekday
}

// DefaultCalendar returns the standard 9-17 Monday-Friday calendar.
func DefaultCalendar() BusinessCalendar {
	return BusinessCalendar{
		StartHour: 9,
		EndHour:   17,
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
	}
}

// Validate rejects calendars that would make the deadline walker loop
// forever: an empty window, an empty weekday set, or out-of-range hours.
func (c BusinessCalendar) Validate() error {
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("business hours start %d out of range [0,23]", c.StartHour)
	}
	if c.EndHour < 0 || c.EndHour > 23 {
		return fmt.Errorf("business hours end %d out of range [0,23]", c.EndHour)
	}
	if c.StartHour >= c.EndHour {
		return fmt.Errorf("business hours start %d must be before end %d", c.StartHour, c.EndHour)
	}
	if len(c.Weekdays) == 0 {
		return fmt.Errorf("business weekday set must not be empty")
	}
	for _, day := range c.Weekdays {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid business weekday %d", day)
		}
	}
	return nil
}
