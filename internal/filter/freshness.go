package filter

import (
	"regexp"
	"strconv"
	"strings"
)

const DefaultWindowDays = 30

type Unit int

const (
	UnitUnknown Unit = iota
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
)

func (u Unit) String() string {
	switch u {
	case UnitHour:
		return "hour"
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	default:
		return "unknown"
	}
}

var (
	reHourPhrase  = regexp.MustCompile(`(?:(\d+)|\ban?)\s+hours?\b`)
	reDayPhrase   = regexp.MustCompile(`(\d+)\+?\s+days?\b`)
	reWeekPhrase  = regexp.MustCompile(`(\d+)\+?\s+weeks?\b`)
	reMonthPhrase = regexp.MustCompile(`\bmonths?\b`)
)

// Classify finds the first recognizable relative-time unit, checked in the order
// hour, day, week, month. count is 0 when the phrase carries no number.
func Classify(phrase string) (unit Unit, count int) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return UnitUnknown, 0
	}
	if m := reHourPhrase.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return UnitHour, n
	}
	if m := reDayPhrase.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return UnitDay, n
	}
	if m := reWeekPhrase.FindStringSubmatch(p); m != nil {
		n, _ := strconv.Atoi(m[1])
		return UnitWeek, n
	}
	if reMonthPhrase.MatchString(p) {
		return UnitMonth, 0
	}
	return UnitUnknown, 0
}

// IsFresh applies the recency window (days) to a "posted X ago" phrase.
// Unknown phrases pass; any month phrase fails. Keep this asymmetry.
func IsFresh(phrase string, windowDays int) bool {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	unit, n := Classify(phrase)
	switch unit {
	case UnitHour:
		return true
	case UnitDay:
		return n <= windowDays
	case UnitWeek:
		// n*7 overflows for absurd counts
		return n <= windowDays/7
	case UnitMonth:
		return false
	default:
		return true
	}
}
