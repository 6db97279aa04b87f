package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/conversations/core/ports"
	"chato-dashboard/internal/platform/logger"
	rtDomain "chato-dashboard/internal/realtime/core/domain"
	rtPorts "chato-dashboard/internal/realtime/core/ports"

	"github.com/sirupsen/logrus"
)

const DefaultDebounce = 80 * time.Millisecond

// Aggregator derives one debounced Snapshot per application from its
// sessions and messages subtrees.
type Aggregator struct {
	subs     ports.SubtreeSubscriber
	clock    ports.Clock
	debounce time.Duration
	log      *logrus.Entry
}

func NewAggregator(subs ports.SubtreeSubscriber, clock ports.Clock, debounce time.Duration, log *logrus.Entry) *Aggregator {
	if clock == nil {
		clock = SystemClock()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Aggregator{subs: subs, clock: clock, debounce: debounce, log: log}
}

// Open subscribes to both subtrees of apiKey. onSnapshot is called from a
// timer goroutine, never concurrently with itself, and never after the
// returned Unsubscribe has returned.
func (a *Aggregator) Open(ctx context.Context, apiKey string, onSnapshot func(domain.Snapshot)) (rtPorts.Unsubscribe, error) {
	sessionsPath, err := rtDomain.SessionsPath(apiKey)
	if err != nil {
		return nil, err
	}
	messagesPath, err := rtDomain.AppMessagesPath(apiKey)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithAPIKey(ctx, apiKey)
	ag := &aggregation{
		apiKey:     apiKey,
		onSnapshot: onSnapshot,
		clock:      a.clock,
		debounce:   a.debounce,
		log:        logger.FromContext(ctx, a.log),
	}

	unsubSessions, err := a.subs.Subscribe(ctx, sessionsPath, ag.onSessions)
	if err != nil {
		ag.cancelTimer()
		return nil, fmt.Errorf("subscribe sessions: %w", err)
	}
	unsubMessages, err := a.subs.Subscribe(ctx, messagesPath, ag.onMessages)
	if err != nil {
		ag.cancelTimer()
		unsubSessions()
		return nil, fmt.Errorf("subscribe messages: %w", err)
	}

	ag.unsubs = []rtPorts.Unsubscribe{unsubSessions, unsubMessages}
	return ag.close, nil
}

// aggregation moves between idle (timer nil) and pending (timer armed).
// The pending timer carries no data: flush reads the latest cells.
type aggregation struct {
	apiKey     string
	onSnapshot func(domain.Snapshot)
	clock      ports.Clock
	debounce   time.Duration
	log        *logrus.Entry
	unsubs     []rtPorts.Unsubscribe

	mu            sync.Mutex
	sessions      []domain.Session
	messageTimes  []int64
	timer         ports.Timer
	lastSignature uint64
	emitted       bool
	closed        bool

	// emitMu serialises callbacks and lets close wait for one in flight.
	emitMu sync.Mutex
	once   sync.Once
}

func (ag *aggregation) onSessions(children []rtDomain.Child) {
	sessions := make([]domain.Session, 0, len(children))
	for _, c := range children {
		sessions = append(sessions, domain.NormalizeSession(c.ID, c.Fields()))
	}
	domain.SortSessions(sessions)

	ag.mu.Lock()
	ag.sessions = sessions
	ag.scheduleLocked()
	ag.mu.Unlock()
}

// onMessages receives sessionId -> messageId -> message. Only the send
// times are kept; flush buckets them against the day it runs on.
func (ag *aggregation) onMessages(children []rtDomain.Child) {
	var times []int64
	for _, session := range children {
		for _, raw := range session.Fields() {
			fields, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if at, ok := domain.MessageTime(fields); ok {
				times = append(times, at)
			}
		}
	}

	ag.mu.Lock()
	ag.messageTimes = times
	ag.scheduleLocked()
	ag.mu.Unlock()
}

func (ag *aggregation) scheduleLocked() {
	if ag.closed || ag.timer != nil {
		return
	}
	ag.timer = ag.clock.AfterFunc(ag.debounce, ag.flush)
}

func (ag *aggregation) flush() {
	ag.emitMu.Lock()
	defer ag.emitMu.Unlock()

	ag.mu.Lock()
	if ag.closed {
		ag.mu.Unlock()
		return
	}
	ag.timer = nil
	h := domain.NewHistogram(ag.clock.Now())
	for _, at := range ag.messageTimes {
		h.Add(at)
	}
	snap := domain.Summarize(ag.apiKey, ag.sessions, h.Counts())
	sig := snap.Signature()
	if ag.emitted && sig == ag.lastSignature {
		ag.mu.Unlock()
		ag.log.Debug("snapshot unchanged, emission suppressed")
		return
	}
	ag.emitted = true
	ag.lastSignature = sig
	ag.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			ag.log.WithField("panic", r).Error("snapshot callback panicked")
		}
	}()
	ag.onSnapshot(snap)
}

func (ag *aggregation) cancelTimer() {
	ag.mu.Lock()
	ag.closed = true
	if ag.timer != nil {
		ag.timer.Stop()
		ag.timer = nil
	}
	ag.mu.Unlock()
}

func (ag *aggregation) close() {
	ag.once.Do(func() {
		ag.cancelTimer()
		for _, unsub := range ag.unsubs {
			unsub()
		}
		// barrier: a flush that passed the closed check finishes first
		ag.emitMu.Lock()
		ag.emitMu.Unlock()
	})
}
