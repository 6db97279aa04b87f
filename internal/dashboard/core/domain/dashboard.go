package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidShift    = errors.New("shift must end after it starts")
	ErrInvalidDuration = errors.New("shift duration must be positive")
	ErrEmptyReminder   = errors.New("reminder text is required")
)

// Shift is one tracked working period. Times are epoch milliseconds.
type Shift struct {
	ID         string `json:"id,omitempty"`
	StartedAt  int64  `json:"startedAt"`
	EndedAt    int64  `json:"endedAt"`
	DurationMs int64  `json:"durationMs"`
}

// NewShift validates a shift. A zero duration defaults to the span.
func NewShift(startedAt, endedAt, durationMs int64) (Shift, error) {
	if startedAt <= 0 || endedAt <= startedAt {
		return Shift{}, ErrInvalidShift
	}
	if durationMs < 0 {
		return Shift{}, ErrInvalidDuration
	}
	if durationMs == 0 {
		durationMs = endedAt - startedAt
	}
	return Shift{StartedAt: startedAt, EndedAt: endedAt, DurationMs: durationMs}, nil
}

type Reminder struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// ReminderText trims text and rejects blanks.
func ReminderText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyReminder
	}
	return text, nil
}

// WeekStart is Sunday 00:00 local time of the week containing t.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}

// Week lists the shifts of the week starting at Start.
type Week struct {
	Start  int64   `json:"weekStart"`
	Shifts []Shift `json:"shifts"`
}

// TotalMs sums the tracked durations.
func (w Week) TotalMs() int64 {
	var total int64
	for _, s := range w.Shifts {
		total += s.DurationMs
	}
	return total
}
