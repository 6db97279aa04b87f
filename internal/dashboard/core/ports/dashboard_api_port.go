package ports

import (
	"context"

	"chato-dashboard/internal/dashboard/core/domain"
)

// DashboardAPIPort is the backend's shift and reminder CRUD.
type DashboardAPIPort interface {
	ListShifts(ctx context.Context, token string, weekStart int64) (domain.Week, error)
	CreateShift(ctx context.Context, token string, shift domain.Shift) error
	ListReminders(ctx context.Context, token string) ([]domain.Reminder, error)
	CreateReminder(ctx context.Context, token, text string) error
	DeleteReminder(ctx context.Context, token, id string) error
}
