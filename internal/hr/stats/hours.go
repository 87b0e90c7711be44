// Package stats derives attendance, leave and payroll figures from the
// reconciled HR collections. Every function is pure.
package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// NoHours is returned by HoursWorked when the span cannot be computed.
const NoHours = "-"

// HoursWorked formats the span between two clock stamps as "8h 30m".
// Stamps may be 12-hour ("09:00 AM") or 24-hour ("17:30"). A missing or
// unparsable stamp, or a check-out before the check-in, yields NoHours.
func HoursWorked(checkIn, checkOut *string) string {
	if checkIn == nil || checkOut == nil {
		return NoHours
	}
	in, ok := ParseClock(*checkIn)
	if !ok {
		return NoHours
	}
	out, ok := ParseClock(*checkOut)
	if !ok {
		return NoHours
	}

	diff := out - in
	if diff < 0 {
		return NoHours
	}

	h, m := diff/60, diff%60
	switch {
	case m == 0:
		return fmt.Sprintf("%dh", h)
	case h == 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// ParseClock converts a clock stamp to minutes since midnight. The hour
// has one or two digits and the minutes exactly two ("9:05", "09:05 PM").
func ParseClock(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}

	hh, mm, found := strings.Cut(fields[0], ":")
	if !found || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, false
	}
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)
	if minutes > 59 {
		return 0, false
	}

	if len(fields) == 2 {
		if hours < 1 || hours > 12 {
			return 0, false
		}
		switch strings.ToUpper(fields[1]) {
		case "AM":
			if hours == 12 {
				hours = 0
			}
		case "PM":
			if hours != 12 {
				hours += 12
			}
		default:
			return 0, false
		}
	} else if hours > 23 {
		return 0, false
	}

	return hours*60 + minutes, true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
