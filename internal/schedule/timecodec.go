package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedTime = errors.New("malformed time string")

// ToMinutes parses a zero-padded 24-hour "HH:MM" string into minutes since
// midnight (0..1439).
func ToMinutes(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return hour*60 + minute, nil
}

// ToDisplay formats minutes since midnight as "hh:mm AM/PM". Hour 0 maps to
// "12 AM", hour 12 stays "12 PM". Always two-digit hour and minute, so the
// output round-trips exactly through ParseDisplay.
func ToDisplay(minutes int) string {
	hour := minutes / 60
	minute := minutes % 60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour, minute, period)
}

// ParseDisplay parses a stored "hh:mm AM/PM" string back into minutes since
// midnight. Inverse of ToDisplay.
func ParseDisplay(s string) (int, error) {
	clock, period, ok := strings.Cut(s, " ")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	switch period {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return hour*60 + minute, nil
}
