package workhours

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minutesPerDay = 24 * 60
	noon          = 12 * 60

	lateGraceMinutes     = 10
	overtimeGraceMinutes = 30

	workingDaysPerMonth = 26
	hoursPerWorkingDay  = 8
)

var (
	sixty         = decimal.NewFromInt(60)
	ot2MinHours   = decimal.NewFromFloat(0.5)
	ot1Multiplier = decimal.NewFromFloat(1.25)
	ot2Multiplier = decimal.NewFromInt(2)
	monthlyHours  = decimal.NewFromInt(workingDaysPerMonth * hoursPerWorkingDay)
	presentCodes  = map[string]bool{"PRESENT": true, "P": true, "PRE": true}
	restDayCodes  = map[string]bool{"OFF": true, "WO": true, "W": true, "WEEKLY OFF": true, "HOLIDAY": true, "H": true}
)

// ParseClock parses "HH:MM" (optionally "HH:MM:SS") into minutes since midnight.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ParseHours parses a duration given either as "H:MM" or as decimal hours.
// Minutes past 59 carry into hours, so "1:75" is 2.25. The result is rounded
// to two decimals.
func ParseHours(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return decimal.Zero, false
		}
		h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || h < 0 {
			return decimal.Zero, false
		}
		m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || m < 0 {
			return decimal.Zero, false
		}
		return minutesToHours(h*60 + m), true
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// HoursOrZero parses s like ParseHours and returns zero when it is empty or
// malformed.
func HoursOrZero(s, field string) decimal.Decimal {
	d, ok := ParseHours(s)
	if !ok && strings.TrimSpace(s) != "" {
		slog.Debug("malformed hours value treated as zero", "field", field, "value", s)
	}
	return d
}

// WorkedHours returns the precomputed value when present, otherwise the span
// between the punches modulo one day.
func WorkedHours(timeIn, timeOut, precomputed string) decimal.Decimal {
	if strings.TrimSpace(precomputed) != "" {
		return HoursOrZero(precomputed, "workedHrs")
	}

	in, okIn := parseClockLogged(timeIn, "timeIn")
	out, okOut := parseClockLogged(timeOut, "timeOut")
	if !okIn || !okOut {
		return decimal.Zero
	}

	diff := ((out-in)%minutesPerDay + minutesPerDay) % minutesPerDay
	return minutesToHours(diff)
}

// LateHours returns how late timeIn is against the shift start. Arrivals
// within the grace period count as on time.
func LateHours(timeIn string, shift ShiftConfig) decimal.Decimal {
	actual, ok := parseClockLogged(timeIn, "timeIn")
	if !ok {
		return decimal.Zero
	}

	if shift.Type == ShiftNight && actual < noon {
		actual += minutesPerDay
	}

	late := actual - shift.StartTime.MinuteOfDay()
	if late <= lateGraceMinutes {
		return decimal.Zero
	}
	return minutesToHours(late)
}

// OT1Hours returns working-day overtime. A known shiftOverride label replaces
// the classified shift.
func OT1Hours(timeIn, timeOut, status, precomputed, shiftOverride string) decimal.Decimal {
	if strings.TrimSpace(precomputed) != "" {
		return HoursOrZero(precomputed, "ot1")
	}
	if !IsPresent(status) {
		return decimal.Zero
	}

	out, ok := parseClockLogged(timeOut, "timeOut")
	if !ok {
		return decimal.Zero
	}

	shift := ShiftFor(timeIn, timeOut, shiftOverride)
	end := shift.EndTime.MinuteOfDay()
	if shift.Type == ShiftNight {
		if out < noon {
			out += minutesPerDay
		}
		end += minutesPerDay
	}

	if out <= end+overtimeGraceMinutes {
		return decimal.Zero
	}
	return minutesToHours(out - end)
}

// OT2Hours returns rest-day overtime: every worked hour on an off day or
// holiday counts once the total exceeds half an hour.
func OT2Hours(timeIn, timeOut, workedHrs, status, precomputed string) decimal.Decimal {
	if strings.TrimSpace(precomputed) != "" {
		return HoursOrZero(precomputed, "ot2")
	}
	if !IsRestDay(status) {
		return decimal.Zero
	}

	worked := WorkedHours(timeIn, timeOut, workedHrs)
	if worked.GreaterThan(ot2MinHours) {
		return worked
	}
	return decimal.Zero
}

// HourlyRate spreads a monthly amount over 26 working days of 8 hours.
func HourlyRate(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Div(monthlyHours)
}

func OT1Amount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Mul(ot1Multiplier).Round(2)
}

func OT2Amount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Mul(ot2Multiplier).Round(2)
}

// IsPresent reports whether status marks a working day attended.
func IsPresent(status string) bool {
	return presentCodes[strings.ToUpper(strings.TrimSpace(status))]
}

// IsRestDay reports whether status marks a weekly off or a holiday.
func IsRestDay(status string) bool {
	return restDayCodes[strings.ToUpper(strings.TrimSpace(status))]
}

// FormatHours renders hours with two decimals, or "" for zero.
func FormatHours(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

func parseClockLogged(s, field string) (int, bool) {
	m, ok := ParseClock(s)
	if !ok && strings.TrimSpace(s) != "" {
		slog.Debug("malformed time value treated as missing", "field", field, "value", s)
	}
	return m, ok
}
