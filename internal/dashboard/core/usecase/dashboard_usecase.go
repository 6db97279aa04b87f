package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"chato-dashboard/internal/dashboard/core/domain"
	"chato-dashboard/internal/dashboard/core/ports"

	"github.com/sirupsen/logrus"
)

var ErrInvalidReminderID = errors.New("reminder id is required")

type DashboardUseCase struct {
	api ports.DashboardAPIPort
	now func() time.Time
	log *logrus.Entry
}

func NewDashboardUseCase(api ports.DashboardAPIPort, now func() time.Time, log *logrus.Entry) *DashboardUseCase {
	if now == nil {
		now = time.Now
	}
	return &DashboardUseCase{api: api, now: now, log: log}
}

// Week lists the shifts of the week containing at (epoch ms). Zero means
// the current week. The start is always normalised to Sunday 00:00 local.
func (uc *DashboardUseCase) Week(ctx context.Context, token string, at int64) (domain.Week, error) {
	ref := uc.now()
	if at > 0 {
		ref = time.UnixMilli(at).In(ref.Location())
	}
	start := domain.WeekStart(ref).UnixMilli()

	week, err := uc.api.ListShifts(ctx, token, start)
	if err != nil {
		return domain.Week{}, err
	}
	if week.Start == 0 {
		week.Start = start
	}
	if week.Shifts == nil {
		week.Shifts = []domain.Shift{}
	}
	return week, nil
}

// RecordShift validates and stores a shift, then returns its refreshed week.
func (uc *DashboardUseCase) RecordShift(ctx context.Context, token string, startedAt, endedAt, durationMs int64) (domain.Week, error) {
	shift, err := domain.NewShift(startedAt, endedAt, durationMs)
	if err != nil {
		return domain.Week{}, err
	}
	if err := uc.api.CreateShift(ctx, token, shift); err != nil {
		return domain.Week{}, err
	}
	uc.log.WithField("duration_ms", shift.DurationMs).Debug("shift recorded")
	return uc.Week(ctx, token, shift.StartedAt)
}

func (uc *DashboardUseCase) Reminders(ctx context.Context, token string) ([]domain.Reminder, error) {
	list, err := uc.api.ListReminders(ctx, token)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Reminder{}
	}
	return list, nil
}

// AddReminder stores a reminder and returns the refreshed list.
func (uc *DashboardUseCase) AddReminder(ctx context.Context, token, text string) ([]domain.Reminder, error) {
	text, err := domain.ReminderText(text)
	if err != nil {
		return nil, err
	}
	if err := uc.api.CreateReminder(ctx, token, text); err != nil {
		return nil, err
	}
	return uc.Reminders(ctx, token)
}

func (uc *DashboardUseCase) DeleteReminder(ctx context.Context, token, id string) ([]domain.Reminder, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidReminderID
	}
	if err := uc.api.DeleteReminder(ctx, token, id); err != nil {
		return nil, err
	}
	return uc.Reminders(ctx, token)
}
