package domain

import (
	"time"

	convDomain "chato-dashboard/internal/conversations/core/domain"
)

// DayLayout is how archive days are keyed.
const DayLayout = "2006-01-02"

// DailyActivity is the message count of one app on one local day.
type DailyActivity struct {
	APIKey   string
	Day      string
	Messages int64
}

// Gauges are the point-in-time counts of a snapshot.
type Gauges struct {
	Sessions int64
	Active   int64
	Unread   int64
}

// Record is everything one snapshot contributes to the archive. Gauges
// belong to Today only.
type Record struct {
	APIKey string
	Today  string
	Days   []DailyActivity
	Gauges Gauges
}

// FromSnapshot maps the 7-day histogram onto local calendar days ending
// today.
func FromSnapshot(snap convDomain.Snapshot, now time.Time) Record {
	rec := Record{
		APIKey: snap.APIKey,
		Today:  now.Format(DayLayout),
		Days:   make([]DailyActivity, 0, convDomain.Days),
		Gauges: Gauges{
			Sessions: int64(snap.SessionsCount),
			Active:   int64(snap.ActiveCount),
			Unread:   int64(snap.Unread),
		},
	}
	y, m, d := now.Date()
	for i, count := range snap.MessagesByDay {
		day := time.Date(y, m, d-(convDomain.Days-1-i), 0, 0, 0, 0, now.Location())
		rec.Days = append(rec.Days, DailyActivity{
			APIKey:   snap.APIKey,
			Day:      day.Format(DayLayout),
			Messages: int64(count),
		})
	}
	return rec
}

// Summary is the archive aggregated over a day range.
type Summary struct {
	APIKey  string // empty: all apps
	From    string
	To      string
	GroupBy string // "", "app", "day"

	Messages     int64
	PeakSessions int64
	PeakActive   int64
	PeakUnread   int64

	Groups []Group
}

type Group struct {
	Key          string // api key or day
	Messages     int64
	PeakSessions int64
	PeakActive   int64
	PeakUnread   int64
}
