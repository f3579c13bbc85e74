// Package timeutil provides campus timezone and academic calendar helpers.
// The institution runs on West Africa Time (UTC+1, no DST), and academic
// sessions span two calendar years ("2023/2024") starting in September.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CampusTZ is the campus timezone (UTC+1, no DST).
var CampusTZ = time.FixedZone("Africa/Lagos", 1*60*60)

// SessionStartMonth is the month a new academic session opens.
const SessionStartMonth = time.September

// Now returns the current time in campus timezone.
func Now() time.Time {
	return time.Now().In(CampusTZ)
}

// ToCampus converts a time to campus timezone.
func ToCampus(t time.Time) time.Time {
	return t.In(CampusTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in campus timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, CampusTZ)
}

// StartOfDay returns the start of the day (00:00:00) in campus timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToCampus(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, CampusTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in campus timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToCampus(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, CampusTZ)
}

// IsSameDay checks if two times fall on the same campus-timezone day.
func IsSameDay(t1, t2 time.Time) bool {
	l1, l2 := ToCampus(t1), ToCampus(t2)
	return l1.Year() == l2.Year() && l1.YearDay() == l2.YearDay()
}

// ═══════════════════════════════════════════════════════════════════════════
// Academic Sessions
// ═══════════════════════════════════════════════════════════════════════════

// SessionFor returns the academic session label covering the given time,
// e.g. any date from September 2023 through August 2024 is "2023/2024".
func SessionFor(t time.Time) string {
	local := ToCampus(t)
	year := local.Year()
	if local.Month() < SessionStartMonth {
		year--
	}
	return SessionLabel(year)
}

// CurrentSession returns the session label for the current time.
func CurrentSession() string {
	return SessionFor(Now())
}

// SessionLabel formats a session label from its starting year.
func SessionLabel(startYear int) string {
	return fmt.Sprintf("%d/%d", startYear, startYear+1)
}

// SessionStartYear parses the starting year out of a session label.
func SessionStartYear(session string) (int, error) {
	parts := strings.Split(session, "/")
	if len(parts) != 2 {
		return 0, fmt.Errorf("timeutil: malformed session %q", session)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: malformed session %q", session)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil || end != start+1 {
		return 0, fmt.Errorf("timeutil: malformed session %q", session)
	}
	return start, nil
}

// NextSession returns the session following the given one.
func NextSession(session string) (string, error) {
	start, err := SessionStartYear(session)
	if err != nil {
		return "", err
	}
	return SessionLabel(start + 1), nil
}

// PreviousSession returns the session preceding the given one.
func PreviousSession(session string) (string, error) {
	start, err := SessionStartYear(session)
	if err != nil {
		return "", err
	}
	return SessionLabel(start - 1), nil
}

// SessionBounds returns the first and last instants of a session in
// campus timezone.
func SessionBounds(session string) (start, end time.Time, err error) {
	startYear, err := SessionStartYear(session)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = Date(startYear, int(SessionStartMonth), 1)
	end = Date(startYear+1, int(SessionStartMonth), 1).Add(-time.Nanosecond)
	return start, end, nil
}

// CompareSessions orders two session labels chronologically. It returns
// -1, 0, or 1; malformed labels sort last.
func CompareSessions(a, b string) int {
	ya, errA := SessionStartYear(a)
	yb, errB := SessionStartYear(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	case ya < yb:
		return -1
	case ya > yb:
		return 1
	}
	return 0
}

// ═══════════════════════════════════════════════════════════════════════════
// Formatting
// ═══════════════════════════════════════════════════════════════════════════

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in campus timezone.
func FormatDateStr(t time.Time) string {
	return ToCampus(t).Format("2006-01-02")
}

// FormatDateTimeStr formats a time as a date-time string in campus timezone.
func FormatDateTimeStr(t time.Time) string {
	return ToCampus(t).Format("2006-01-02 15:04:05")
}

// ParseDate parses a YYYY-MM-DD string as a campus-timezone date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, CampusTZ)
}
