package ui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const DefaultWordLimit = 10

// FormatDeadline renders a deadline like "Nov 1, 2026 09:00 AM" in local time.
func FormatDeadline(t time.Time) string {
	if t.IsZero() {
		return "No date"
	}
	return t.Local().Format("Jan 2, 2006 03:04 PM")
}

// FormatCreated renders a creation date as DD/MM/YYYY.
func FormatCreated(t time.Time) string {
	if t.IsZero() {
		return "No date"
	}
	return t.Local().Format("02/01/2006")
}

// DaysLeft returns "N days left" or "N days overdue", rounding the remaining
// time up to whole days.
func DaysLeft(deadline, now time.Time) (string, bool) {
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	if days < 0 {
		return fmt.Sprintf("%d days overdue", -days), true
	}
	return fmt.Sprintf("%d days left", days), false
}

// TruncateWords keeps the first limit words of text, marking the cut with
// "...". It reports whether anything was cut.
func TruncateWords(text string, limit int) (string, bool) {
	if limit <= 0 {
		limit = DefaultWordLimit
	}
	words := strings.Split(text, " ")
	if len(words) <= limit {
		return text, false
	}
	return strings.Join(words[:limit], " ") + "...", true
}

// Truncate cuts s to at most width runes, ending with "…" when shortened.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

var deadlineLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ErrBadDeadline is returned for input ParseDeadline does not understand.
var ErrBadDeadline = errors.New("deadline must look like 2006-01-02 15:04")

// ParseDeadline reads a deadline typed by the user. Values without a zone are
// taken in loc.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDeadline
}

// EditableDeadline renders a deadline, in its own location, the way
// ParseDeadline reads it back.
func EditableDeadline(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
