package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"chato-dashboard/internal/activity/core/domain"
	"chato-dashboard/internal/activity/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/restclient"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type GetActivityUseCase interface {
	Execute(ctx context.Context, in usecase.GetActivityInput) (*domain.Summary, error)
}

// OwnedApps lists the applications of the owner holding token.
type OwnedApps func(ctx context.Context, token string) ([]string, error)

type ActivityHandler struct {
	uc    GetActivityUseCase
	owned OwnedApps
	log   *logrus.Entry
}

func NewActivityHandler(uc GetActivityUseCase, owned OwnedApps, log *logrus.Entry) *ActivityHandler {
	return &ActivityHandler{uc: uc, owned: owned, log: log}
}

// GetActivity godoc
// @Summary Query archived activity
// @Description Sums archived messages and reports peak gauges, optionally grouped by app or day
// @Tags Activity
// @Produce json
// @Param api_key query string false "Restrict to one application"
// @Param from query int true "From timestamp (unix seconds)"
// @Param to query int true "To timestamp (unix seconds)"
// @Param group_by query string false "Group by: app | day"
// @Success 200 {object} ActivityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /activity [get]
func (h *ActivityHandler) GetActivity(c *fiber.Ctx) error {
	fromStr := c.Query("from", "")
	toStr := c.Query("to", "")
	if fromStr == "" || toStr == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "from and to are required",
		})
	}

	from, err := strconv.ParseInt(fromStr, 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid 'from' parameter",
		})
	}
	to, err := strconv.ParseInt(toStr, 10, 64)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid 'to' parameter",
		})
	}

	owned, err := h.owned(c.UserContext(), bearer.Token(c))
	if err != nil {
		if status := restclient.StatusOf(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
			return c.Status(status).JSON(ErrorResponse{Error: "unauthorized", Message: err.Error()})
		}
		h.log.WithError(err).Warn("owned apps lookup failed")
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{Error: "upstream_error", Message: err.Error()})
	}

	in := usecase.GetActivityInput{
		APIKey:  c.Query("api_key", ""),
		Owned:   owned,
		From:    from,
		To:      to,
		GroupBy: c.Query("group_by", ""),
	}

	res, err := h.uc.Execute(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidTimeRange),
			errors.Is(err, usecase.ErrInvalidGroupBy):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_query",
				Message: err.Error(),
			})
		case errors.Is(err, usecase.ErrUnknownApp):
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: err.Error(),
			})
		default:
			h.log.WithError(err).Error("activity query failed")
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := ActivityResponse{
		APIKey:       res.APIKey,
		From:         res.From,
		To:           res.To,
		Messages:     res.Messages,
		PeakSessions: res.PeakSessions,
		PeakActive:   res.PeakActive,
		PeakUnread:   res.PeakUnread,
		GroupBy:      res.GroupBy,
		Groups:       make([]ActivityGroupResponse, 0, len(res.Groups)),
	}

	for _, g := range res.Groups {
		resp.Groups = append(resp.Groups, ActivityGroupResponse{
			Key:          g.Key,
			Messages:     g.Messages,
			PeakSessions: g.PeakSessions,
			PeakActive:   g.PeakActive,
			PeakUnread:   g.PeakUnread,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}
