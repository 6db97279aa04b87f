package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewShift(t *testing.T) {
	s, err := NewShift(1_000, 61_000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.DurationMs != 60_000 {
		t.Fatalf("expected duration to default to the span, got %d", s.DurationMs)
	}

	if _, err := NewShift(5_000, 5_000, 0); !errors.Is(err, ErrInvalidShift) {
		t.Fatalf("expected ErrInvalidShift, got %v", err)
	}
	if _, err := NewShift(1_000, 2_000, -1); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}

	paused, _ := NewShift(1_000, 61_000, 30_000)
	if paused.DurationMs != 30_000 {
		t.Fatalf("explicit duration must be kept, got %d", paused.DurationMs)
	}
}

func TestWeekStart_IsLocalSunday(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	// Wednesday
	got := WeekStart(time.Date(2026, 10, 14, 15, 30, 0, 0, loc))
	want := time.Date(2026, 10, 11, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	sunday := time.Date(2026, 10, 11, 0, 0, 0, 0, loc)
	if !WeekStart(sunday).Equal(sunday) {
		t.Fatalf("Sunday midnight is its own week start")
	}
}

func TestReminderText(t *testing.T) {
	if _, err := ReminderText("   "); !errors.Is(err, ErrEmptyReminder) {
		t.Fatalf("expected ErrEmptyReminder, got %v", err)
	}
	if got, _ := ReminderText("  call back  "); got != "call back" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestWeek_TotalMs(t *testing.T) {
	w := Week{Shifts: []Shift{{DurationMs: 10}, {DurationMs: 5}}}
	if w.TotalMs() != 15 {
		t.Fatalf("expected 15, got %d", w.TotalMs())
	}
}
