package fiber

import (
	"context"
	"errors"
	"net/http"

	"chato-dashboard/internal/auth/core/domain"
	"chato-dashboard/internal/platform/restclient"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout()
}

type CredentialsRequest struct {
	Email    string `json:"email" example:"owner@shop.com"`
	Password string `json:"password" example:"secret"`
}

type TokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOi..."`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"email and password are required"`
}

type AuthHandler struct {
	uc  AuthUseCase
	log *logrus.Entry
}

func NewAuthHandler(uc AuthUseCase, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Register godoc
// @Summary Create an owner account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	return h.exchange(c, http.StatusCreated, h.uc.Register)
}

// Login godoc
// @Summary Sign in an owner
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return h.exchange(c, http.StatusOK, h.uc.Login)
}

// Logout godoc
// @Summary Sign out
// @Description Drops the realtime identity; the next subscription signs in again
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.uc.Logout()
	return c.SendStatus(http.StatusNoContent)
}

func (h *AuthHandler) exchange(c *fiber.Ctx, status int, call func(ctx context.Context, email, password string) (string, error)) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	token, err := call(c.UserContext(), req.Email, req.Password)
	if err != nil {
		code, body := classify(err)
		if code >= http.StatusInternalServerError {
			h.log.WithError(err).WithField("path", c.Path()).Error("auth request failed")
		}
		return c.Status(code).JSON(body)
	}
	return c.Status(status).JSON(TokenResponse{Token: token})
}

func classify(err error) (int, ErrorResponse) {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()}
	}

	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, ErrorResponse{Error: "rejected", Message: apiErr.Message}
		}
		return http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: apiErr.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_server_error"}
}
