package usecase

import (
	"context"
	"sync"
	"time"

	"chato-dashboard/internal/activity/core/domain"
	"chato-dashboard/internal/activity/core/ports"
	convDomain "chato-dashboard/internal/conversations/core/domain"

	"github.com/sirupsen/logrus"
)

const (
	DefaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// Recorder archives delivered snapshots on a background worker. Deliver
// never blocks: when the queue is full the snapshot is dropped.
type Recorder struct {
	repo ports.ActivityWriterPort
	now  func() time.Time
	log  *logrus.Entry

	mu     sync.RWMutex
	queue  chan convDomain.Snapshot
	closed bool
	done   chan struct{}
}

func NewRecorder(repo ports.ActivityWriterPort, queueSize int, now func() time.Time, log *logrus.Entry) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		repo:  repo,
		now:   now,
		log:   log,
		queue: make(chan convDomain.Snapshot, queueSize),
		done:  make(chan struct{}),
	}
}

// Start runs the worker until Stop.
func (r *Recorder) Start() {
	go r.run()
}

func (r *Recorder) Deliver(snap convDomain.Snapshot) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- snap:
	default:
		r.log.WithField("api_key", snap.APIKey).Warn("activity queue full, snapshot dropped")
	}
}

// Stop closes the queue and waits until queued snapshots are written or ctx
// ends.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for snap := range r.queue {
		r.write(snap)
	}
}

func (r *Recorder) write(snap convDomain.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	rec := domain.FromSnapshot(snap, r.now())
	if err := r.repo.UpsertRecord(ctx, rec); err != nil {
		r.log.WithError(err).WithField("api_key", snap.APIKey).Error("archive activity failed")
	}
}
