package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chato-dashboard/internal/conversations/core/ports"
	"chato-dashboard/internal/platform/logger"
	rtPorts "chato-dashboard/internal/realtime/core/ports"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidSession = errors.New("api key and session id are required")
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrSendDisabled   = errors.New("customer left the conversation")
	ErrSendFailed     = errors.New("send message failed")
)

// Chat opens conversations for the owner and sends replies.
type Chat struct {
	stream    *MessageStream
	dashboard ports.DashboardPort
	clock     ports.Clock
	log       *logrus.Entry
}

func NewChat(stream *MessageStream, dashboard ports.DashboardPort, clock ports.Clock, log *logrus.Entry) *Chat {
	if clock == nil {
		clock = SystemClock()
	}
	return &Chat{stream: stream, dashboard: dashboard, clock: clock, log: log}
}

// Conversation is one open session. Close it when the viewer goes away.
type Conversation struct {
	chat      *Chat
	token     string
	apiKey    string
	sessionID string
	thread    *Thread

	mu    sync.Mutex
	unsub rtPorts.Unsubscribe
	once  sync.Once
}

// Open subscribes to the session's messages and marks it read. A failed
// read receipt is logged and otherwise ignored.
func (c *Chat) Open(ctx context.Context, token, apiKey, sessionID string, onView func(ThreadView)) (*Conversation, error) {
	return c.open(ctx, token, apiKey, sessionID, onView, true)
}

func (c *Chat) open(ctx context.Context, token, apiKey, sessionID string, onView func(ThreadView), markRead bool) (*Conversation, error) {
	apiKey, sessionID = strings.TrimSpace(apiKey), strings.TrimSpace(sessionID)
	if apiKey == "" || sessionID == "" {
		return nil, ErrInvalidSession
	}

	ctx = logger.WithSessionID(logger.WithAPIKey(ctx, apiKey), sessionID)
	conv := &Conversation{
		chat:      c,
		token:     token,
		apiKey:    apiKey,
		sessionID: sessionID,
		thread:    NewThread(apiKey, sessionID, c.clock, onView),
	}

	unsub, err := c.stream.Subscribe(ctx, apiKey, sessionID, conv.thread.Replace)
	if err != nil {
		return nil, fmt.Errorf("open conversation: %w", err)
	}
	conv.mu.Lock()
	conv.unsub = unsub
	conv.mu.Unlock()

	if markRead && token != "" {
		if err := c.dashboard.MarkRead(ctx, token, apiKey, sessionID); err != nil {
			logger.FromContext(ctx, c.log).WithError(err).Debug("mark read failed")
		}
	}
	return conv, nil
}

// Send posts text as an owner message, showing it optimistically until the
// store confirms it. On failure the optimistic entry is withdrawn.
func (cv *Conversation) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if cv.thread.SendDisabled() {
		return ErrSendDisabled
	}

	id := cv.thread.AddOptimistic(text)
	if err := cv.chat.dashboard.SendMessage(ctx, cv.token, cv.apiKey, cv.sessionID, text); err != nil {
		cv.thread.Withdraw(id)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}

func (cv *Conversation) View() ThreadView {
	return cv.thread.View()
}

func (cv *Conversation) Close() {
	cv.once.Do(func() {
		cv.mu.Lock()
		unsub := cv.unsub
		cv.mu.Unlock()
		if unsub != nil {
			unsub()
		}
	})
}

// Send is the one-shot form used by plain REST callers: it loads the
// thread to apply the send policy, sends, and closes.
func (c *Chat) Send(ctx context.Context, token, apiKey, sessionID, text string) error {
	conv, err := c.open(ctx, token, apiKey, sessionID, nil, false)
	if err != nil {
		return err
	}
	defer conv.Close()
	return conv.Send(ctx, text)
}

// MarkRead is the REST form of the read receipt; unlike Open it reports
// failures.
func (c *Chat) MarkRead(ctx context.Context, token, apiKey, sessionID string) error {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	return c.dashboard.MarkRead(ctx, token, apiKey, sessionID)
}
