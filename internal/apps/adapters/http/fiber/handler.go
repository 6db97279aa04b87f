package fiber

import (
	"context"
	"errors"
	"net/http"

	"chato-dashboard/internal/apps/core/domain"
	"chato-dashboard/internal/apps/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/restclient"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AppsUseCase interface {
	Fetch(ctx context.Context, token string) (usecase.StateView, error)
	Retry(ctx context.Context, token string) (usecase.StateView, error)
	Create(ctx context.Context, token, name string) (domain.Application, error)
	Delete(ctx context.Context, token, apiKey string) error
	UpdateSettings(ctx context.Context, token, apiKey string, theme *domain.Theme, prechat *domain.Prechat) (domain.Application, error)
	Config(ctx context.Context, apiKey string) (domain.Theme, domain.Prechat, error)
	View() usecase.StateView
	Watch(fn func(usecase.StateView)) (cancel func())
}

// Resolver returns the AppsUseCase of the owner holding token.
type Resolver func(token string) AppsUseCase

type AppsHandler struct {
	owners Resolver
	log    *logrus.Entry
}

func NewAppsHandler(owners Resolver, log *logrus.Entry) *AppsHandler {
	return &AppsHandler{owners: owners, log: log}
}

func (h *AppsHandler) uc(c *fiber.Ctx) AppsUseCase {
	return h.owners(bearer.Token(c))
}

// ListApps godoc
// @Summary List applications with live counters
// @Description Loads the list from the backend on first use or with refresh=true; otherwise returns the cached state
// @Tags Apps
// @Produce json
// @Param refresh query bool false "Reload from the backend"
// @Success 200 {object} AppsResponse
// @Failure 502 {object} AppsResponse "Load failed; retry with POST /apps/retry"
// @Security BearerAuth
// @Router /apps [get]
func (h *AppsHandler) ListApps(c *fiber.Ctx) error {
	uc := h.uc(c)
	view := uc.View()
	if view.Status != usecase.StatusIdle && !c.QueryBool("refresh") {
		return c.Status(http.StatusOK).JSON(toAppsResponse(view))
	}
	view, err := uc.Fetch(c.UserContext(), bearer.Token(c))
	return h.writeLoad(c, view, err)
}

// RetryApps godoc
// @Summary Retry a failed application load
// @Tags Apps
// @Produce json
// @Success 200 {object} AppsResponse
// @Failure 502 {object} AppsResponse
// @Security BearerAuth
// @Router /apps/retry [post]
func (h *AppsHandler) RetryApps(c *fiber.Ctx) error {
	view, err := h.uc(c).Retry(c.UserContext(), bearer.Token(c))
	return h.writeLoad(c, view, err)
}

// CreateApp godoc
// @Summary Create an application
// @Tags Apps
// @Accept json
// @Produce json
// @Param request body CreateAppRequest true "Application"
// @Success 201 {object} AppResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps [post]
func (h *AppsHandler) CreateApp(c *fiber.Ctx) error {
	var req CreateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	app, err := h.uc(c).Create(c.UserContext(), bearer.Token(c), req.Name)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toAppResponse(app))
}

// DeleteApp godoc
// @Summary Delete an application
// @Tags Apps
// @Param apiKey path string true "Application API key"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps/{apiKey} [delete]
func (h *AppsHandler) DeleteApp(c *fiber.Ctx) error {
	if err := h.uc(c).Delete(c.UserContext(), bearer.Token(c), c.Params("apiKey")); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateSettings godoc
// @Summary Update widget theme and pre-chat questions
// @Description Only non-empty fields overwrite the stored values
// @Tags Apps
// @Accept json
// @Produce json
// @Param apiKey path string true "Application API key"
// @Param request body UpdateSettingsRequest true "Settings"
// @Success 200 {object} AppResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps/{apiKey}/settings [patch]
func (h *AppsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	app, err := h.uc(c).UpdateSettings(c.UserContext(), bearer.Token(c), c.Params("apiKey"), req.Theme, req.Prechat)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(toAppResponse(app))
}

// GetConfig godoc
// @Summary Widget configuration as the SDK sees it
// @Tags Apps
// @Produce json
// @Param apiKey path string true "Application API key"
// @Success 200 {object} ConfigResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps/{apiKey}/config [get]
func (h *AppsHandler) GetConfig(c *fiber.Ctx) error {
	theme, prechat, err := h.uc(c).Config(c.UserContext(), c.Params("apiKey"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(ConfigResponse{Theme: theme, Prechat: prechat})
}

func (h *AppsHandler) writeLoad(c *fiber.Ctx, view usecase.StateView, err error) error {
	if err != nil {
		h.log.WithError(err).Warn("apps load failed")
		return c.Status(http.StatusBadGateway).JSON(toAppsResponse(view))
	}
	return c.Status(http.StatusOK).JSON(toAppsResponse(view))
}

func (h *AppsHandler) writeError(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("apps request failed")
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, usecase.ErrInvalidName),
		errors.Is(err, usecase.ErrInvalidAPIKey),
		errors.Is(err, usecase.ErrNothingToUpdate):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()}
	case errors.Is(err, usecase.ErrAppNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	}

	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apiErr.Status, ErrorResponse{Error: "unauthorized", Message: apiErr.Message}
		case http.StatusNotFound:
			return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: apiErr.Message}
		case http.StatusBadRequest:
			return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: apiErr.Message}
		}
		return http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: apiErr.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_server_error"}
}
