package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	appsUsecase "chato-dashboard/internal/apps/core/usecase"
	"chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/conversations/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/logger"
	"chato-dashboard/internal/platform/restclient"
	rtUsecase "chato-dashboard/internal/realtime/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type ChatUseCase interface {
	Open(ctx context.Context, token, apiKey, sessionID string, onView func(usecase.ThreadView)) (*usecase.Conversation, error)
	Send(ctx context.Context, token, apiKey, sessionID, text string) error
	MarkRead(ctx context.Context, token, apiKey, sessionID string) error
}

// Owner is the set of applications one bearer token may read.
type Owner interface {
	Authorize(ctx context.Context, token, apiKey string) error
	Snapshot(apiKey string) (domain.Snapshot, bool)
	WatchSnapshots(apiKey string, fn func(domain.Snapshot)) (cancel func())
}

// OwnerResolver returns the Owner holding token.
type OwnerResolver func(token string) Owner

// PreviewSource follows the card previews of the sessions a viewer sees.
type PreviewSource interface {
	Sync(ctx context.Context, sessionIDs []string)
	Get(sessionID string) (domain.Preview, bool)
	Close()
}

// PreviewFactory opens a PreviewSource for one app. onChange runs after
// any preview refresh.
type PreviewFactory func(apiKey string, onChange func()) PreviewSource

type ConversationHandler struct {
	chat     ChatUseCase
	owners   OwnerResolver
	previews PreviewFactory
	log      *logrus.Entry
}

func NewConversationHandler(chat ChatUseCase, owners OwnerResolver, log *logrus.Entry) *ConversationHandler {
	return &ConversationHandler{chat: chat, owners: owners, log: log}
}

// WithPreviews makes the sessions socket carry card previews.
func (h *ConversationHandler) WithPreviews(f PreviewFactory) *ConversationHandler {
	h.previews = f
	return h
}

// RequireApp rejects requests for an application the token does not own
// and tags the request context with the app and session.
func (h *ConversationHandler) RequireApp(c *fiber.Ctx) error {
	token := bearer.Token(c)
	if token == "" {
		return c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "bearer token required",
		})
	}

	apiKey := c.Params("apiKey")
	if err := h.owners(token).Authorize(c.UserContext(), token, apiKey); err != nil {
		return h.writeError(c, err)
	}

	ctx := logger.WithAPIKey(c.UserContext(), apiKey)
	if id := c.Params("sessionId"); id != "" {
		ctx = logger.WithSessionID(ctx, id)
	}
	c.SetUserContext(ctx)
	return c.Next()
}

// ListSessions godoc
// @Summary List live sessions of an application
// @Description Returns one page of the latest aggregate snapshot, newest first
// @Tags Conversations
// @Produce json
// @Param apiKey path string true "Application API key"
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} SessionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps/{apiKey}/sessions [get]
func (h *ConversationHandler) ListSessions(c *fiber.Ctx) error {
	apiKey := c.Params("apiKey")

	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: "page must be a positive integer",
		})
	}
	size, err := queryInt(c, "page_size", defaultPageSize)
	if err != nil || size < 1 || size > maxPageSize {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: "page_size must be between 1 and 100",
		})
	}

	snap, ok := h.owners(bearer.Token(c)).Snapshot(apiKey)
	resp := buildPage(apiKey, snap, ok, page, size, nil)
	return c.Status(http.StatusOK).JSON(resp)
}

// SendMessage godoc
// @Summary Send an owner reply
// @Tags Conversations
// @Accept json
// @Produce json
// @Param apiKey path string true "Application API key"
// @Param sessionId path string true "Session id"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} SendMessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Customer left the conversation"
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps/{apiKey}/sessions/{sessionId}/messages [post]
func (h *ConversationHandler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid_json",
		})
	}

	err := h.chat.Send(c.UserContext(), bearer.Token(c), c.Params("apiKey"), c.Params("sessionId"), req.Text)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(SendMessageResponse{Status: "sent"})
}

// MarkRead godoc
// @Summary Mark a session read
// @Tags Conversations
// @Param apiKey path string true "Application API key"
// @Param sessionId path string true "Session id"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /apps/{apiKey}/sessions/{sessionId}/read [post]
func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.chat.MarkRead(c.UserContext(), bearer.Token(c), c.Params("apiKey"), c.Params("sessionId")); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *ConversationHandler) writeError(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.UserContext(), h.log).WithError(err).WithField("path", c.Path()).Error("conversation request failed")
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, usecase.ErrInvalidSession),
		errors.Is(err, usecase.ErrEmptyMessage):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()}
	case errors.Is(err, appsUsecase.ErrAppNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, usecase.ErrSendDisabled):
		return http.StatusConflict, ErrorResponse{Error: "send_disabled", Message: err.Error()}
	case errors.Is(err, rtUsecase.ErrUnauthenticated):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "realtime_unavailable", Message: err.Error()}
	}

	if status := restclient.StatusOf(err); status == http.StatusUnauthorized || status == http.StatusForbidden {
		return status, ErrorResponse{Error: "unauthorized", Message: err.Error()}
	}
	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: apiErr.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal_server_error"}
}

// buildPage cuts one page out of snap. previews may be nil.
func buildPage(apiKey string, snap domain.Snapshot, loaded bool, page, size int, previews PreviewSource) SessionsResponse {
	resp := SessionsResponse{
		APIKey:        apiKey,
		Page:          page,
		PageSize:      size,
		MessagesByDay: make([]int, domain.Days),
		Sessions:      []SessionEntry{},
	}
	if !loaded {
		return resp
	}

	resp.Loaded = true
	resp.Unread = snap.Unread
	resp.SessionsCount = snap.SessionsCount
	resp.ActiveCount = snap.ActiveCount
	resp.MessagesByDay = snap.MessagesByDay[:]

	resp.Sessions = toEntries(pageOf(snap.Sessions, page, size))
	if previews != nil {
		for i := range resp.Sessions {
			if p, ok := previews.Get(resp.Sessions[i].ID); ok {
				resp.Sessions[i].Preview = p.Line()
			}
		}
	}
	return resp
}

func pageOf(sessions []domain.Session, page, size int) []domain.Session {
	start := (page - 1) * size
	if start >= len(sessions) {
		return nil
	}
	return sessions[start:min(start+size, len(sessions))]
}

func sessionIDs(sessions []domain.Session) []string {
	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
