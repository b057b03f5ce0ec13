package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLiteralLayout is the calendar-date literal accepted from the entity
// bag, matching the format the prompt instructs the model to emit.
const dateLiteralLayout = "2006-01-02"

// defaultStartHour is the hour used when no time token is present.
const defaultStartHour = 9

var (
	timePattern     = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(hour|minute)s?`)
)

// ResolveStart converts loose date/time tokens into an absolute instant.
//
// An empty date token resolves to now's calendar day. Tokens containing
// "today" or "tomorrow" (case-insensitive) resolve relative to now; any
// other token must be a calendar date literal and fails loud on malformed
// input rather than producing a silently-wrong date. The time token, when
// present, must be HH:MM (24-hour); when absent the start defaults to
// 09:00. ResolveStart is a pure transform of its arguments; range
// validation belongs to the caller.
func ResolveStart(now time.Time, dateToken, timeToken string) (time.Time, error) {
	day := now

	if dateToken != "" {
		lower := strings.ToLower(dateToken)
		switch {
		case strings.Contains(lower, "today"):
			day = now
		case strings.Contains(lower, "tomorrow"):
			day = now.AddDate(0, 0, 1)
		default:
			parsed, err := time.ParseInLocation(dateLiteralLayout, dateToken, now.Location())
			if err != nil {
				return time.Time{}, fmt.Errorf("unrecognized date %q: %w", dateToken, err)
			}
			day = parsed
		}
	}

	hour, minute := defaultStartHour, 0
	if timeToken != "" {
		match := timePattern.FindStringSubmatch(timeToken)
		if match == nil {
			return time.Time{}, fmt.Errorf("unrecognized time %q: expected HH:MM", timeToken)
		}
		hour, _ = strconv.Atoi(match[1])
		minute, _ = strconv.Atoi(match[2])
		if hour > 23 || minute > 59 {
			return time.Time{}, fmt.Errorf("time %q out of range", timeToken)
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
}

// ResolveEnd derives an end instant from a start instant and a loose
// duration token ("2 hours", "45 minutes"). Unmatched or absent tokens
// default to one hour. Values are applied literally, without clamping;
// upstream validation is the dispatcher's job.
func ResolveEnd(start time.Time, durationToken string) time.Time {
	match := durationPattern.FindStringSubmatch(durationToken)
	if match == nil {
		return start.Add(time.Hour)
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		// Digits too large for an int; treat like an unmatched token.
		return start.Add(time.Hour)
	}

	switch strings.ToLower(match[2]) {
	case "hour":
		return start.Add(time.Duration(value) * time.Hour)
	default: // minute
		return start.Add(time.Duration(value) * time.Minute)
	}
}
