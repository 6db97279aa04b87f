package usecase

import (
	"context"
	"sync"

	"chato-dashboard/internal/conversations/core/domain"
	rtPorts "chato-dashboard/internal/realtime/core/ports"

	"github.com/sirupsen/logrus"
)

// Previews keeps one message subscription per visible session of an app and
// caches each session's card preview. Sync with the visible page; sessions
// that leave the page are unsubscribed. onChange, if set, runs after a
// preview is refreshed.
type Previews struct {
	stream   *MessageStream
	apiKey   string
	log      *logrus.Entry
	onChange func()

	mu       sync.Mutex
	unsubs   map[string]rtPorts.Unsubscribe
	previews map[string]domain.Preview
}

func NewPreviews(stream *MessageStream, apiKey string, log *logrus.Entry, onChange func()) *Previews {
	return &Previews{
		stream:   stream,
		apiKey:   apiKey,
		log:      log,
		onChange: onChange,
		unsubs:   make(map[string]rtPorts.Unsubscribe),
		previews: make(map[string]domain.Preview),
	}
}

func (p *Previews) Sync(ctx context.Context, sessionIDs []string) {
	want := make(map[string]struct{}, len(sessionIDs))
	for _, id := range sessionIDs {
		want[id] = struct{}{}
	}

	p.mu.Lock()
	var (
		stale    []rtPorts.Unsubscribe
		staleIDs []string
	)
	for id, unsub := range p.unsubs {
		if _, ok := want[id]; !ok {
			stale = append(stale, unsub)
			staleIDs = append(staleIDs, id)
			delete(p.unsubs, id)
		}
	}
	var missing []string
	for id := range want {
		if _, ok := p.unsubs[id]; !ok {
			missing = append(missing, id)
		}
	}
	p.mu.Unlock()

	for _, unsub := range stale {
		unsub()
	}
	if len(staleIDs) > 0 {
		p.mu.Lock()
		for _, id := range staleIDs {
			delete(p.previews, id)
		}
		p.mu.Unlock()
	}

	for _, id := range missing {
		sid := id
		unsub, err := p.stream.Subscribe(ctx, p.apiKey, sid, func(msgs []domain.Message) {
			p.mu.Lock()
			p.previews[sid] = domain.PreviewOf(msgs)
			p.mu.Unlock()
			if p.onChange != nil {
				p.onChange()
			}
		})
		if err != nil {
			p.log.WithError(err).WithField("session_id", sid).Warn("preview subscription failed")
			continue
		}
		p.mu.Lock()
		p.unsubs[sid] = unsub
		p.mu.Unlock()
	}
}

func (p *Previews) Get(sessionID string) (domain.Preview, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.previews[sessionID]
	return pr, ok
}

func (p *Previews) Close() {
	p.mu.Lock()
	unsubs := make([]rtPorts.Unsubscribe, 0, len(p.unsubs))
	for _, u := range p.unsubs {
		unsubs = append(unsubs, u)
	}
	p.unsubs = make(map[string]rtPorts.Unsubscribe)
	p.previews = make(map[string]domain.Preview)
	p.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}
