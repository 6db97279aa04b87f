package domain

import (
	"hash/fnv"
	"strconv"
	"time"
)

// Days is the width of the activity histogram.
const Days = 7

// Snapshot is the derived state of one application. It is recomputed from
// the latest subtrees on every emission, never patched.
type Snapshot struct {
	APIKey        string    `json:"apiKey"`
	Sessions      []Session `json:"sessions"`
	Unread        int       `json:"unread"`
	SessionsCount int       `json:"sessionsCount"`
	ActiveCount   int       `json:"activeCount"`
	MessagesByDay [Days]int `json:"messagesByDay"`
}

// Summarize derives the counts from sessions, which must already be sorted.
func Summarize(apiKey string, sessions []Session, byDay [Days]int) Snapshot {
	s := Snapshot{
		APIKey:        apiKey,
		Sessions:      sessions,
		SessionsCount: len(sessions),
		MessagesByDay: byDay,
	}
	if s.Sessions == nil {
		s.Sessions = []Session{}
	}
	for _, sess := range sessions {
		s.Unread += sess.UnreadOwner
		if sess.IsActive() {
			s.ActiveCount++
		}
	}
	return s
}

// Signature changes whenever a consumer-visible part of the snapshot does:
// the counts, the histogram and the ordered session ids with their
// updatedAt and unread values.
func (s Snapshot) Signature() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 64)
	put := func(n int64) {
		buf = strconv.AppendInt(buf[:0], n, 10)
		buf = append(buf, ',')
		_, _ = h.Write(buf)
	}

	put(int64(s.Unread))
	put(int64(s.SessionsCount))
	put(int64(s.ActiveCount))
	for _, n := range s.MessagesByDay {
		put(int64(n))
	}
	for _, sess := range s.Sessions {
		_, _ = h.Write([]byte(sess.ID))
		_, _ = h.Write([]byte{':'})
		put(sess.UpdatedAt)
		put(int64(sess.UnreadOwner))
		if sess.IsActive() {
			put(1)
		} else {
			put(0)
		}
	}
	return h.Sum64()
}

// DayBounds returns the 8 local-midnight instants (epoch ms) delimiting the
// trailing window: bounds[0] is the window start six days before today,
// bounds[7] is tomorrow's midnight.
func DayBounds(now time.Time) [Days + 1]int64 {
	var b [Days + 1]int64
	y, m, d := now.Date()
	loc := now.Location()
	for i := 0; i <= Days; i++ {
		b[i] = time.Date(y, m, d-(Days-1)+i, 0, 0, 0, 0, loc).UnixMilli()
	}
	return b
}

// WindowStart is local midnight six days before now.
func WindowStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-(Days-1), 0, 0, 0, 0, now.Location())
}

// Histogram counts message times into the trailing local-day window. Times
// before the window or after today are ignored.
type Histogram struct {
	bounds [Days + 1]int64
	counts [Days]int
}

func NewHistogram(now time.Time) *Histogram {
	return &Histogram{bounds: DayBounds(now)}
}

func (h *Histogram) Add(at int64) {
	if at < h.bounds[0] || at >= h.bounds[Days] {
		return
	}
	for i := 0; i < Days; i++ {
		if at < h.bounds[i+1] {
			h.counts[i]++
			return
		}
	}
}

func (h *Histogram) Counts() [Days]int { return h.counts }
