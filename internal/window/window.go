// Package window turns a half-open [start, end) date window into the
// calendar months it touches.
package window

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
)

// ErrInvalidWindow reports a malformed or inverted date window.
var ErrInvalidWindow = errors.New("invalid window")

// Window is a half-open calendar-date window. Times are normalized to
// midnight UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// String formats the month as yyyy-mm.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// New validates and returns a window. Only the calendar date of start and
// end is kept.
func New(start, end time.Time) (Window, error) {
	w := Window{Start: dateOf(start), End: dateOf(end)}
	if !w.Start.Before(w.End) {
		return Window{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidWindow, w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}
	return w, nil
}

// Parse builds a window from ISO-8601 bounds. Full timestamps are accepted
// and truncated to their date, matching what orchestrators usually pass.
func Parse(start, end string) (Window, error) {
	s, err := parseDate(start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start_date: %v", ErrInvalidWindow, err)
	}
	e, err := parseDate(end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end_date: %v", ErrInvalidWindow, err)
	}
	return New(s, e)
}

// Months yields the months of the window in chronological order: the first
// month is the one containing Start, and a month is yielded while its first
// day is strictly before End. The sequence can be ranged over any number of
// times.
func (w Window) Months() iter.Seq[Month] {
	return func(yield func(Month) bool) {
		cur := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
		for cur.Before(w.End) {
			if !yield(Month{Year: cur.Year(), Month: cur.Month()}) {
				return
			}
			cur = cur.AddDate(0, 1, 0)
		}
	}
}

// String formats the window as [start, end).
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var layouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
