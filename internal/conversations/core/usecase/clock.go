package usecase

import (
	"time"

	"chato-dashboard/internal/conversations/core/ports"
)

type systemClock struct{}

// SystemClock is the wall clock.
func SystemClock() ports.Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
