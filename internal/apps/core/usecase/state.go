package usecase

import (
	"sync"

	"chato-dashboard/internal/apps/core/domain"
	convDomain "chato-dashboard/internal/conversations/core/domain"

	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StateView is an immutable copy of the application list.
type StateView struct {
	Version uint64               `json:"version"`
	Status  Status               `json:"status"`
	Error   string               `json:"error,omitempty"`
	Items   []domain.Application `json:"items"`
}

// State holds the fetched applications and their live counters.
type State struct {
	log *logrus.Entry

	mu        sync.Mutex
	version   uint64
	status    Status
	err       string
	items     []domain.Application
	listeners map[int]func(StateView)
	nextID    int
}

func NewState(log *logrus.Entry) *State {
	return &State{
		log:       log,
		status:    StatusIdle,
		items:     []domain.Application{},
		listeners: make(map[int]func(StateView)),
	}
}

func (s *State) BeginLoad() {
	s.update(func() bool {
		s.status = StatusLoading
		s.err = ""
		return true
	})
}

// LoadSucceeded replaces the list. Counters start at zero for new apps;
// apps already listed keep their live counters because an unchanged
// membership is not resubscribed.
func (s *State) LoadSucceeded(apps []domain.Application) {
	s.update(func() bool {
		items := make([]domain.Application, 0, len(apps))
		for _, a := range apps {
			a = fresh(a)
			if prev := s.findLocked(a.APIKey); prev != nil {
				a.Unread, a.SessionsCount, a.ActiveCount = prev.Unread, prev.SessionsCount, prev.ActiveCount
				a.MessagesByDay = prev.MessagesByDay
			}
			items = append(items, a)
		}
		s.status = StatusSucceeded
		s.err = ""
		s.items = items
		return true
	})
}

func (s *State) LoadFailed(message string) {
	s.update(func() bool {
		s.status = StatusFailed
		s.err = message
		return true
	})
}

// Prepend adds a newly created application at the top.
func (s *State) Prepend(app domain.Application) {
	app = fresh(app)
	s.update(func() bool {
		s.items = append([]domain.Application{app}, s.items...)
		return true
	})
}

func (s *State) Remove(apiKey string) {
	s.update(func() bool {
		kept := make([]domain.Application, 0, len(s.items))
		for _, a := range s.items {
			if a.APIKey != apiKey {
				kept = append(kept, a)
			}
		}
		changed := len(kept) != len(s.items)
		s.items = kept
		return changed
	})
}

func (s *State) MergeSettings(apiKey string, theme *domain.Theme, prechat *domain.Prechat) {
	s.update(func() bool {
		app := s.findLocked(apiKey)
		if app == nil {
			return false
		}
		if theme != nil {
			app.Theme = app.Theme.Merge(*theme)
		}
		if prechat != nil {
			app.Prechat = app.Prechat.Merge(*prechat)
		}
		return true
	})
}

// ApplyRealtimeMeta merges meta into the matching application. It reports
// whether an application matched; an unknown key is a no-op.
func (s *State) ApplyRealtimeMeta(meta domain.RealtimeMeta) bool {
	matched := false
	s.update(func() bool {
		app := s.findLocked(meta.APIKey)
		if app == nil {
			return false
		}
		matched = true
		if err := meta.Apply(app); err != nil {
			s.log.WithError(err).
				WithField("api_key", meta.APIKey).
				WithField("length", len(meta.MessagesByDay)).
				Warn("malformed histogram ignored")
		}
		return true
	})
	return matched
}

// Deliver routes an aggregate snapshot into the state.
func (s *State) Deliver(snap convDomain.Snapshot) {
	unread, sessions, active := snap.Unread, snap.SessionsCount, snap.ActiveCount
	s.ApplyRealtimeMeta(domain.RealtimeMeta{
		APIKey:        snap.APIKey,
		Unread:        &unread,
		SessionsCount: &sessions,
		ActiveCount:   &active,
		MessagesByDay: snap.MessagesByDay[:],
	})
}

// Keys projects the list onto the set of API keys.
func (s *State) Keys() domain.KeySet {
	s.mu.Lock()
	keys := make([]string, 0, len(s.items))
	for _, a := range s.items {
		keys = append(keys, a.APIKey)
	}
	s.mu.Unlock()
	return domain.NewKeySet(keys...)
}

func (s *State) Find(apiKey string) (domain.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app := s.findLocked(apiKey); app != nil {
		return *app, true
	}
	return domain.Application{}, false
}

func (s *State) View() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Watch calls fn with the current view and after every change.
func (s *State) Watch(fn func(StateView)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	view := s.viewLocked()
	s.mu.Unlock()

	fn(view)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *State) update(mutate func() bool) {
	s.mu.Lock()
	if !mutate() {
		s.mu.Unlock()
		return
	}
	s.version++
	view := s.viewLocked()
	fns := make([]func(StateView), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(view)
	}
}

func (s *State) findLocked(apiKey string) *domain.Application {
	for i := range s.items {
		if s.items[i].APIKey == apiKey {
			return &s.items[i]
		}
	}
	return nil
}

func (s *State) viewLocked() StateView {
	return StateView{
		Version: s.version,
		Status:  s.status,
		Error:   s.err,
		Items:   append(make([]domain.Application, 0, len(s.items)), s.items...),
	}
}

func fresh(a domain.Application) domain.Application {
	a.Unread, a.SessionsCount, a.ActiveCount = 0, 0, 0
	a.MessagesByDay = [domain.HistogramDays]int{}
	return a
}
