package fiber

import "chato-dashboard/internal/dashboard/core/domain"

// WeekResponse is one week of tracked shifts.
// @Description Shifts of one Sunday-based week
type WeekResponse struct {
	WeekStart int64          `json:"weekStart" example:"1760140800000"`
	TotalMs   int64          `json:"totalMs" example:"3600000"`
	Shifts    []domain.Shift `json:"shifts"`
}

type CreateShiftRequest struct {
	StartedAt  int64 `json:"startedAt" example:"1760180400000"`
	EndedAt    int64 `json:"endedAt" example:"1760184000000"`
	DurationMs int64 `json:"durationMs" example:"3600000"`
}

type RemindersResponse struct {
	Reminders []domain.Reminder `json:"reminders"`
}

type CreateReminderRequest struct {
	Text string `json:"text" example:"Call back the Friday customer"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"shift must end after it starts"`
}

func toWeekResponse(w domain.Week) WeekResponse {
	return WeekResponse{WeekStart: w.Start, TotalMs: w.TotalMs(), Shifts: w.Shifts}
}
