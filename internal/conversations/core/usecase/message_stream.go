package usecase

import (
	"context"

	"chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/conversations/core/ports"
	"chato-dashboard/internal/platform/logger"
	rtDomain "chato-dashboard/internal/realtime/core/domain"
	rtPorts "chato-dashboard/internal/realtime/core/ports"
)

// MessageStream delivers the ordered message list of one session.
type MessageStream struct {
	subs ports.SubtreeSubscriber
}

func NewMessageStream(subs ports.SubtreeSubscriber) *MessageStream {
	return &MessageStream{subs: subs}
}

func (s *MessageStream) Subscribe(ctx context.Context, apiKey, sessionID string, onMessages func([]domain.Message)) (rtPorts.Unsubscribe, error) {
	path, err := rtDomain.SessionMessagesPath(apiKey, sessionID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSessionID(logger.WithAPIKey(ctx, apiKey), sessionID)
	return s.subs.Subscribe(ctx, path, func(children []rtDomain.Child) {
		onMessages(toMessages(children))
	})
}

func toMessages(children []rtDomain.Child) []domain.Message {
	msgs := make([]domain.Message, 0, len(children))
	for _, c := range children {
		msgs = append(msgs, domain.NormalizeMessage(c.ID, c.Fields()))
	}
	domain.SortMessages(msgs)
	return msgs
}
