package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chato-dashboard/internal/activity/core/domain"
	"chato-dashboard/internal/activity/core/usecase"
	convDomain "chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/platform/logger"
)

type fakeActivityWriter struct {
	mu       sync.Mutex
	UpsertFn func(ctx context.Context, rec domain.Record) error
	records  []domain.Record
	block    chan struct{}
}

func (f *fakeActivityWriter) UpsertRecord(ctx context.Context, rec domain.Record) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	if f.UpsertFn != nil {
		return f.UpsertFn(ctx, rec)
	}
	return nil
}

func (f *fakeActivityWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

var fixedNow = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }

// ------------------------------------------------------------
// RECORDER
// ------------------------------------------------------------
func TestRecorder_WritesQueuedSnapshotsBeforeStop(t *testing.T) {
	w := &fakeActivityWriter{}
	r := usecase.NewRecorder(w, 8, fixedNow, logger.Discard())
	r.Start()

	r.Deliver(convDomain.Snapshot{APIKey: "A", Unread: 1})
	r.Deliver(convDomain.Snapshot{APIKey: "B"})

	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if w.count() != 2 {
		t.Fatalf("expected 2 records, got %d", w.count())
	}
	if w.records[0].APIKey != "A" || w.records[0].Today != "2026-10-14" || w.records[0].Gauges.Unread != 1 {
		t.Fatalf("unexpected record: %+v", w.records[0])
	}
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	w := &fakeActivityWriter{block: make(chan struct{})}
	r := usecase.NewRecorder(w, 1, fixedNow, logger.Discard())

	// not started: the queue holds exactly one snapshot
	r.Deliver(convDomain.Snapshot{APIKey: "A"})
	r.Deliver(convDomain.Snapshot{APIKey: "B"})
	r.Deliver(convDomain.Snapshot{APIKey: "C"})

	close(w.block)
	r.Start()
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if w.count() != 1 || w.records[0].APIKey != "A" {
		t.Fatalf("expected only A kept, got %+v", w.records)
	}
}

func TestRecorder_WriteErrorsDoNotStopWorker(t *testing.T) {
	w := &fakeActivityWriter{UpsertFn: func(context.Context, domain.Record) error { return errors.New("db down") }}
	r := usecase.NewRecorder(w, 4, fixedNow, logger.Discard())
	r.Start()

	r.Deliver(convDomain.Snapshot{APIKey: "A"})
	r.Deliver(convDomain.Snapshot{APIKey: "B"})
	_ = r.Stop(context.Background())

	if w.count() != 2 {
		t.Fatalf("expected both attempted, got %d", w.count())
	}
}

func TestRecorder_DeliverAfterStopIsIgnored(t *testing.T) {
	w := &fakeActivityWriter{}
	r := usecase.NewRecorder(w, 4, fixedNow, logger.Discard())
	r.Start()
	_ = r.Stop(context.Background())
	_ = r.Stop(context.Background())

	r.Deliver(convDomain.Snapshot{APIKey: "late"})
	if w.count() != 0 {
		t.Fatalf("expected nothing written after stop")
	}
}

func TestRecorder_StopHonoursContext(t *testing.T) {
	w := &fakeActivityWriter{block: make(chan struct{})}
	defer close(w.block)
	r := usecase.NewRecorder(w, 4, fixedNow, logger.Discard())
	r.Start()
	r.Deliver(convDomain.Snapshot{APIKey: "A"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
