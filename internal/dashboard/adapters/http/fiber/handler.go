package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"chato-dashboard/internal/dashboard/core/domain"
	"chato-dashboard/internal/dashboard/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/restclient"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type DashboardUseCase interface {
	Week(ctx context.Context, token string, at int64) (domain.Week, error)
	RecordShift(ctx context.Context, token string, startedAt, endedAt, durationMs int64) (domain.Week, error)
	Reminders(ctx context.Context, token string) ([]domain.Reminder, error)
	AddReminder(ctx context.Context, token, text string) ([]domain.Reminder, error)
	DeleteReminder(ctx context.Context, token, id string) ([]domain.Reminder, error)
}

type DashboardHandler struct {
	uc  DashboardUseCase
	log *logrus.Entry
}

func NewDashboardHandler(uc DashboardUseCase, log *logrus.Entry) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// ListShifts godoc
// @Summary Shifts of one week
// @Tags Dashboard
// @Produce json
// @Param weekStart query int false "Any instant of the week in epoch ms (default: now)"
// @Success 200 {object} WeekResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /dashboard/shifts [get]
func (h *DashboardHandler) ListShifts(c *fiber.Ctx) error {
	var at int64
	if raw := c.Query("weekStart"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_query",
				Message: "weekStart must be epoch milliseconds",
			})
		}
		at = v
	}

	week, err := h.uc.Week(c.UserContext(), bearer.Token(c), at)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toWeekResponse(week))
}

// CreateShift godoc
// @Summary Record a shift
// @Description durationMs defaults to endedAt - startedAt
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param request body CreateShiftRequest true "Shift"
// @Success 201 {object} WeekResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /dashboard/shifts [post]
func (h *DashboardHandler) CreateShift(c *fiber.Ctx) error {
	var req CreateShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	week, err := h.uc.RecordShift(c.UserContext(), bearer.Token(c), req.StartedAt, req.EndedAt, req.DurationMs)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toWeekResponse(week))
}

// ListReminders godoc
// @Summary List reminders
// @Tags Dashboard
// @Produce json
// @Success 200 {object} RemindersResponse
// @Security BearerAuth
// @Router /dashboard/reminders [get]
func (h *DashboardHandler) ListReminders(c *fiber.Ctx) error {
	list, err := h.uc.Reminders(c.UserContext(), bearer.Token(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(RemindersResponse{Reminders: list})
}

// CreateReminder godoc
// @Summary Add a reminder
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param request body CreateReminderRequest true "Reminder"
// @Success 201 {object} RemindersResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /dashboard/reminders [post]
func (h *DashboardHandler) CreateReminder(c *fiber.Ctx) error {
	var req CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	list, err := h.uc.AddReminder(c.UserContext(), bearer.Token(c), req.Text)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(RemindersResponse{Reminders: list})
}

// DeleteReminder godoc
// @Summary Delete a reminder
// @Tags Dashboard
// @Produce json
// @Param id path string true "Reminder id"
// @Success 200 {object} RemindersResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /dashboard/reminders/{id} [delete]
func (h *DashboardHandler) DeleteReminder(c *fiber.Ctx) error {
	list, err := h.uc.DeleteReminder(c.UserContext(), bearer.Token(c), c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(RemindersResponse{Reminders: list})
}

func (h *DashboardHandler) writeError(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("dashboard request failed")
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidShift),
		errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrEmptyReminder),
		errors.Is(err, usecase.ErrInvalidReminderID):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()}
	}

	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest:
			return apiErr.Status, ErrorResponse{Error: "invalid_request", Message: apiErr.Message}
		case http.StatusUnauthorized, http.StatusForbidden:
			return apiErr.Status, ErrorResponse{Error: "unauthorized", Message: apiErr.Message}
		case http.StatusNotFound:
			return apiErr.Status, ErrorResponse{Error: "not_found", Message: apiErr.Message}
		}
		return http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: apiErr.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_server_error"}
}
