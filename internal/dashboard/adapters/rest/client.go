// Package rest implements the dashboard ports against the Chato backend.
package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"chato-dashboard/internal/dashboard/core/domain"
	"chato-dashboard/internal/platform/restclient"
)

type Doer interface {
	Do(ctx context.Context, req restclient.Request, out any) error
}

// DashboardClient serves both the shift/reminder CRUD and the session
// operations used by the chat.
type DashboardClient struct {
	api Doer
}

func NewDashboardClient(api Doer) *DashboardClient {
	return &DashboardClient{api: api}
}

type shiftRecord struct {
	ID         string `json:"id"`
	MongoID    string `json:"_id"`
	StartedAt  int64  `json:"startedAt"`
	EndedAt    int64  `json:"endedAt"`
	DurationMs int64  `json:"durationMs"`
}

type reminderRecord struct {
	ID        string `json:"id"`
	MongoID   string `json:"_id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (c *DashboardClient) ListShifts(ctx context.Context, token string, weekStart int64) (domain.Week, error) {
	var out struct {
		WeekStart int64         `json:"weekStart"`
		Shifts    []shiftRecord `json:"shifts"`
	}
	err := c.api.Do(ctx, restclient.Request{
		Method: http.MethodGet,
		Path:   "/dashboard/shifts",
		Query:  map[string]string{"weekStart": strconv.FormatInt(weekStart, 10)},
		Token:  token,
	}, &out)
	if err != nil {
		return domain.Week{}, err
	}

	week := domain.Week{Start: out.WeekStart, Shifts: make([]domain.Shift, 0, len(out.Shifts))}
	for _, r := range out.Shifts {
		week.Shifts = append(week.Shifts, domain.Shift{
			ID:         firstNonEmpty(r.ID, r.MongoID),
			StartedAt:  r.StartedAt,
			EndedAt:    r.EndedAt,
			DurationMs: r.DurationMs,
		})
	}
	return week, nil
}

func (c *DashboardClient) CreateShift(ctx context.Context, token string, shift domain.Shift) error {
	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   "/dashboard/shifts",
		Token:  token,
		Body: map[string]int64{
			"startedAt":  shift.StartedAt,
			"endedAt":    shift.EndedAt,
			"durationMs": shift.DurationMs,
		},
	}, nil)
}

func (c *DashboardClient) ListReminders(ctx context.Context, token string) ([]domain.Reminder, error) {
	var out struct {
		Reminders []reminderRecord `json:"reminders"`
	}
	if err := c.api.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/dashboard/reminders", Token: token}, &out); err != nil {
		return nil, err
	}

	list := make([]domain.Reminder, 0, len(out.Reminders))
	for _, r := range out.Reminders {
		list = append(list, domain.Reminder{
			ID:        firstNonEmpty(r.ID, r.MongoID),
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		})
	}
	return list, nil
}

func (c *DashboardClient) CreateReminder(ctx context.Context, token, text string) error {
	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   "/dashboard/reminders",
		Token:  token,
		Body:   map[string]string{"text": text},
	}, nil)
}

func (c *DashboardClient) DeleteReminder(ctx context.Context, token, id string) error {
	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodDelete,
		Path:   "/dashboard/reminders/" + url.PathEscape(id),
		Token:  token,
	}, nil)
}

// SendMessage posts an owner reply into a session.
func (c *DashboardClient) SendMessage(ctx context.Context, token, apiKey, sessionID, text string) error {
	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   "/dashboard/message",
		Token:  token,
		Body:   map[string]string{"apiKey": apiKey, "sessionId": sessionID, "text": text},
	}, nil)
}

// MarkRead clears the owner's unread counter of a session.
func (c *DashboardClient) MarkRead(ctx context.Context, token, apiKey, sessionID string) error {
	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   "/dashboard/session/read",
		Token:  token,
		Body:   map[string]string{"apiKey": apiKey, "sessionId": sessionID},
	}, nil)
}
