// Package workhours classifies shifts and derives worked, late and overtime
// hours from raw punch times. Every function is pure and never returns an
// error: malformed input yields zero and is logged at debug level.
package workhours

import "strings"

type ShiftType string

const (
	ShiftGeneral   ShiftType = "general"
	Shift12HourDay ShiftType = "12hour_day"
	ShiftNight     ShiftType = "night"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// MinuteOfDay returns the number of minutes since midnight.
func (c Clock) MinuteOfDay() int {
	return c.Hours*60 + c.Minutes
}

// ShiftConfig is an expected-hours window. Night shifts end on the next day.
type ShiftConfig struct {
	Type        ShiftType `json:"type"`
	StartTime   Clock     `json:"startTime"`
	EndTime     Clock     `json:"endTime"`
	Description string    `json:"description"`
}

// CrossesMidnight reports whether the shift ends on the day after it starts.
func (s ShiftConfig) CrossesMidnight() bool {
	return s.EndTime.MinuteOfDay() <= s.StartTime.MinuteOfDay()
}

var shiftTemplates = map[ShiftType]ShiftConfig{
	ShiftGeneral: {
		Type:        ShiftGeneral,
		StartTime:   Clock{Hours: 9, Minutes: 0},
		EndTime:     Clock{Hours: 17, Minutes: 30},
		Description: "General Shift (9:00 AM - 5:30 PM)",
	},
	Shift12HourDay: {
		Type:        Shift12HourDay,
		StartTime:   Clock{Hours: 7, Minutes: 0},
		EndTime:     Clock{Hours: 15, Minutes: 0},
		Description: "12 Hour Day Shift (7:00 AM - 3:00 PM)",
	},
	ShiftNight: {
		Type:        ShiftNight,
		StartTime:   Clock{Hours: 19, Minutes: 0},
		EndTime:     Clock{Hours: 3, Minutes: 0},
		Description: "Night Shift (7:00 PM - 3:00 AM)",
	},
}

// Classification boundaries, in minutes since midnight.
const (
	dayShiftInFrom   = 6 * 60
	dayShiftInTo     = 8 * 60
	dayShiftOutFrom  = 14 * 60
	dayShiftOutTo    = 16 * 60
	nightShiftInFrom = 19 * 60
	earlyMorningTo   = 4 * 60
)

// ConfigFor returns the template for a shift label, or the general shift when
// the label is unknown.
func ConfigFor(label string) ShiftConfig {
	if cfg, ok := shiftTemplates[ShiftType(strings.ToLower(strings.TrimSpace(label)))]; ok {
		return cfg
	}
	return shiftTemplates[ShiftGeneral]
}

// IsKnownType reports whether label names one of the shift templates.
func IsKnownType(label string) bool {
	_, ok := shiftTemplates[ShiftType(strings.ToLower(strings.TrimSpace(label)))]
	return ok
}

// Classify infers the shift worked from a day's punch times.
func Classify(timeIn, timeOut string) ShiftConfig {
	in, okIn := ParseClock(timeIn)
	out, okOut := ParseClock(timeOut)
	if !okIn || !okOut {
		return shiftTemplates[ShiftGeneral]
	}

	switch {
	case in >= dayShiftInFrom && in <= dayShiftInTo && out >= dayShiftOutFrom && out <= dayShiftOutTo:
		return shiftTemplates[Shift12HourDay]
	case in >= nightShiftInFrom || (in <= earlyMorningTo && out <= earlyMorningTo):
		return shiftTemplates[ShiftNight]
	default:
		return shiftTemplates[ShiftGeneral]
	}
}

// ShiftFor returns the template named by label when it is a known type,
// otherwise the shift classified from the punch times.
func ShiftFor(timeIn, timeOut, label string) ShiftConfig {
	if IsKnownType(label) {
		return ConfigFor(label)
	}
	return Classify(timeIn, timeOut)
}
