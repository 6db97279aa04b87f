package usecase

import (
	"strings"
	"sync"
	"time"

	"chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/conversations/core/ports"

	"github.com/google/uuid"
)

const (
	// An authoritative owner message this much older than an optimistic one
	// with the same text still confirms it (client/server clock skew).
	reconcileSkew = 5 * time.Second
	optimisticTTL = 30 * time.Second
)

// ThreadView is what an open conversation renders.
type ThreadView struct {
	APIKey       string           `json:"apiKey"`
	SessionID    string           `json:"sessionId"`
	Messages     []domain.Message `json:"messages"`
	SendDisabled bool             `json:"sendDisabled"`
	Preview      domain.Preview   `json:"preview"`
	Loaded       bool             `json:"loaded"`
}

// Thread merges the authoritative stream with optimistic owner messages.
type Thread struct {
	apiKey    string
	sessionID string
	clock     ports.Clock
	onChange  func(ThreadView)

	mu            sync.Mutex
	authoritative []domain.Message
	optimistic    []domain.Message
	loaded        bool

	emitMu sync.Mutex
}

func NewThread(apiKey, sessionID string, clock ports.Clock, onChange func(ThreadView)) *Thread {
	if clock == nil {
		clock = SystemClock()
	}
	return &Thread{apiKey: apiKey, sessionID: sessionID, clock: clock, onChange: onChange}
}

// Replace installs a new authoritative list and drops every optimistic
// entry it confirms.
func (t *Thread) Replace(msgs []domain.Message) {
	t.mu.Lock()
	t.authoritative = msgs
	t.loaded = true
	t.reconcileLocked()
	t.mu.Unlock()
	t.emit()
}

// AddOptimistic appends a local owner message and returns its id.
func (t *Thread) AddOptimistic(text string) string {
	id := uuid.NewString()
	t.mu.Lock()
	t.optimistic = append(t.optimistic, domain.Message{
		ID:         id,
		At:         t.clock.Now().UnixMilli(),
		HasAt:      true,
		From:       domain.FromOwner,
		Text:       text,
		Optimistic: true,
	})
	t.mu.Unlock()
	t.emit()
	return id
}

// Withdraw removes an optimistic entry, e.g. after the send failed.
func (t *Thread) Withdraw(id string) {
	t.mu.Lock()
	kept := t.optimistic[:0]
	for _, m := range t.optimistic {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	t.optimistic = kept
	t.mu.Unlock()
	t.emit()
}

func (t *Thread) View() ThreadView {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconcileLocked()
	return t.viewLocked()
}

func (t *Thread) SendDisabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.SendDisabled(t.authoritative)
}

func (t *Thread) emit() {
	if t.onChange == nil {
		return
	}
	t.emitMu.Lock()
	defer t.emitMu.Unlock()
	t.onChange(t.View())
}

func (t *Thread) viewLocked() ThreadView {
	merged := make([]domain.Message, 0, len(t.authoritative)+len(t.optimistic))
	merged = append(merged, t.authoritative...)
	merged = append(merged, t.optimistic...)
	domain.SortMessages(merged)

	return ThreadView{
		APIKey:       t.apiKey,
		SessionID:    t.sessionID,
		Messages:     merged,
		SendDisabled: domain.SendDisabled(t.authoritative),
		Preview:      domain.PreviewOf(t.authoritative),
		Loaded:       t.loaded,
	}
}

func (t *Thread) reconcileLocked() {
	if len(t.optimistic) == 0 {
		return
	}
	now := t.clock.Now().UnixMilli()
	kept := t.optimistic[:0]
	for _, opt := range t.optimistic {
		if now-opt.At >= optimisticTTL.Milliseconds() || t.confirmedLocked(opt) {
			continue
		}
		kept = append(kept, opt)
	}
	t.optimistic = kept
}

func (t *Thread) confirmedLocked(opt domain.Message) bool {
	want := strings.TrimSpace(opt.Text)
	for _, m := range t.authoritative {
		if m.From == domain.FromOwner &&
			m.At >= opt.At-reconcileSkew.Milliseconds() &&
			strings.TrimSpace(m.Text) == want {
			return true
		}
	}
	return false
}
