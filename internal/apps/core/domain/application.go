package domain

import (
	"errors"
	"sort"
	"strings"
)

const HistogramDays = 7

var ErrHistogramShape = errors.New("messagesByDay must have exactly 7 entries")

type Theme struct {
	BubbleBg string `json:"bubbleBg"`
	Primary  string `json:"primary"`
	IconSvg  string `json:"iconSvg"`
	Title    string `json:"title"`
}

type Prechat struct {
	Q1     string `json:"q1"`
	Q2     string `json:"q2"`
	Q3     string `json:"q3"`
	FaqURL string `json:"faqUrl"`
}

// Merge overwrites the fields set in patch.
func (t Theme) Merge(patch Theme) Theme {
	t.BubbleBg = pick(patch.BubbleBg, t.BubbleBg)
	t.Primary = pick(patch.Primary, t.Primary)
	t.IconSvg = pick(patch.IconSvg, t.IconSvg)
	t.Title = pick(patch.Title, t.Title)
	return t
}

func (p Prechat) Merge(patch Prechat) Prechat {
	p.Q1 = pick(patch.Q1, p.Q1)
	p.Q2 = pick(patch.Q2, p.Q2)
	p.Q3 = pick(patch.Q3, p.Q3)
	p.FaqURL = pick(patch.FaqURL, p.FaqURL)
	return p
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// Application is a registered app with its live counters. The counters are
// written only from realtime snapshots.
type Application struct {
	APIKey        string             `json:"apiKey"`
	Name          string             `json:"name"`
	Theme         Theme              `json:"theme"`
	Prechat       Prechat            `json:"prechat"`
	Unread        int                `json:"unread"`
	SessionsCount int                `json:"sessionsCount"`
	ActiveCount   int                `json:"activeCount"`
	MessagesByDay [HistogramDays]int `json:"messagesByDay"`
}

// RealtimeMeta is a partial update of an application's counters. Nil fields
// keep their previous value.
type RealtimeMeta struct {
	APIKey        string
	Unread        *int
	SessionsCount *int
	ActiveCount   *int
	MessagesByDay []int
}

// Apply merges m into app. A histogram of the wrong length is ignored and
// reported; the other fields still apply.
func (m RealtimeMeta) Apply(app *Application) error {
	if m.Unread != nil {
		app.Unread = *m.Unread
	}
	if m.SessionsCount != nil {
		app.SessionsCount = *m.SessionsCount
	}
	if m.ActiveCount != nil {
		app.ActiveCount = *m.ActiveCount
	}
	if m.MessagesByDay == nil {
		return nil
	}
	if len(m.MessagesByDay) != HistogramDays {
		return ErrHistogramShape
	}
	copy(app.MessagesByDay[:], m.MessagesByDay)
	return nil
}

// KeySet is the sorted, de-duplicated set of tracked API keys. It is the
// only input of the subscription manager.
type KeySet struct {
	keys []string
}

func NewKeySet(keys ...string) KeySet {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return KeySet{keys: out}
}

func (s KeySet) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s KeySet) Len() int { return len(s.keys) }

// MembershipKey identifies the set; equal sets give equal keys.
func (s KeySet) MembershipKey() string {
	return strings.Join(s.keys, "\x1f")
}
