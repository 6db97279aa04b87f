package fiber

import (
	"context"
	"strconv"

	"chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/conversations/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/wspush"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ThreadSocket godoc
// @Summary Live conversation thread
// @Description Pushes {type:"thread"} frames with messages and sendDisabled; accepts {type:"send",text}
// @Tags Conversations
// @Param apiKey path string true "Application API key"
// @Param sessionId path string true "Session id"
// @Param token query string false "Bearer token for browsers"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /ws/apps/{apiKey}/sessions/{sessionId} [get]
func (h *ConversationHandler) ThreadSocket() fiber.Handler {
	return websocket.New(h.serveThread)
}

// SessionsSocket godoc
// @Summary Live sessions page of an application
// @Description Pushes {type:"sessions"} frames with the first page of sessions, including card previews
// @Tags Conversations
// @Param apiKey path string true "Application API key"
// @Param page_size query int false "Sessions per frame (max 100)"
// @Param token query string false "Bearer token for browsers"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /ws/apps/{apiKey}/sessions [get]
func (h *ConversationHandler) SessionsSocket() fiber.Handler {
	return websocket.New(h.serveSessions)
}

func (h *ConversationHandler) serveThread(conn *websocket.Conn) {
	defer conn.Close()

	token, _ := conn.Locals(bearer.LocalsKey).(string)
	apiKey, sessionID := conn.Params("apiKey"), conn.Params("sessionId")
	log := h.log.WithField("api_key", apiKey).WithField("session_id", sessionID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	views := make(chan usecase.ThreadView, 1)
	conv, err := h.chat.Open(ctx, token, apiKey, sessionID, func(v usecase.ThreadView) { wspush.Offer(views, v) })
	if err != nil {
		_, body := classify(err)
		_ = conn.WriteJSON(wsServerFrame{Type: "error", Error: body.Error, Message: body.Message})
		return
	}
	defer conv.Close()

	frames, closed := readFrames(conn)
	for {
		select {
		case v := <-views:
			if err := conn.WriteJSON(wsServerFrame{Type: "thread", Thread: v}); err != nil {
				return
			}
		case f := <-frames:
			if f.Type != "send" {
				continue
			}
			reply := wsServerFrame{Type: "sent"}
			if err := conv.Send(ctx, f.Text); err != nil {
				status, body := classify(err)
				if status >= 500 {
					log.WithError(err).Warn("socket send failed")
				}
				reply = wsServerFrame{Type: "error", Error: body.Error, Message: body.Message}
			}
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *ConversationHandler) serveSessions(conn *websocket.Conn) {
	defer conn.Close()

	token, _ := conn.Locals(bearer.LocalsKey).(string)
	apiKey := conn.Params("apiKey")
	size, err := strconv.Atoi(conn.Query("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 || size > maxPageSize {
		size = defaultPageSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshed := make(chan struct{}, 1)
	var previews PreviewSource
	if h.previews != nil {
		previews = h.previews(apiKey, func() { wspush.Offer(refreshed, struct{}{}) })
		defer previews.Close()
	}

	snaps := make(chan domain.Snapshot, 1)
	stop := h.owners(token).WatchSnapshots(apiKey, func(s domain.Snapshot) { wspush.Offer(snaps, s) })
	defer stop()

	var (
		last   domain.Snapshot
		loaded bool
	)
	write := func() error {
		page := buildPage(apiKey, last, loaded, 1, size, previews)
		return conn.WriteJSON(wsServerFrame{Type: "sessions", Sessions: &page})
	}

	closed := wspush.Drain(conn)
	for {
		select {
		case s := <-snaps:
			last, loaded = s, true
			if previews != nil {
				previews.Sync(ctx, sessionIDs(pageOf(s.Sessions, 1, size)))
			}
			if err := write(); err != nil {
				return
			}
		case <-refreshed:
			if !loaded {
				continue
			}
			if err := write(); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

// readFrames decodes client frames until the connection fails.
func readFrames(conn *websocket.Conn) (<-chan wsClientFrame, <-chan struct{}) {
	frames := make(chan wsClientFrame, 4)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var f wsClientFrame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			select {
			case frames <- f:
			default:
				// client is flooding; drop
			}
		}
	}()
	return frames, closed
}
