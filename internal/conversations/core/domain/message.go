package domain

import (
	"sort"
	"strings"
)

type Sender string

const (
	FromOwner    Sender = "owner"
	FromCustomer Sender = "customer"
)

type Message struct {
	ID         string `json:"id"`
	At         int64  `json:"at"`
	HasAt      bool   `json:"-"`
	From       Sender `json:"from"`
	Text       string `json:"text"`
	Optimistic bool   `json:"optimistic,omitempty"`
}

// NormalizeMessage reads the time from at, then createdAt, and the text from
// text, then message.
func NormalizeMessage(id string, fields map[string]any) Message {
	m := Message{ID: id}
	if fields == nil {
		return m
	}
	if at, ok := MessageTime(fields); ok {
		m.At, m.HasAt = at, true
	}
	if from, ok := fields["from"].(string); ok {
		m.From = Sender(from)
	}
	if t, ok := fields["text"].(string); ok {
		m.Text = t
	} else if t, ok := fields["message"].(string); ok {
		m.Text = t
	}
	return m
}

// MessageTime resolves the send time of a raw message record.
func MessageTime(fields map[string]any) (int64, bool) {
	if at, ok := Millis(fields["at"]); ok {
		return at, true
	}
	return Millis(fields["createdAt"])
}

// SortMessages orders ascending by At; missing At sorts as 0.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].At < msgs[j].At })
}

// SortSessions orders newest updated first.
func SortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].UpdatedAt > sessions[j].UpdatedAt })
}

// SendDisabled reports whether the most recent customer message is the
// sentinel. Owner messages after it do not re-enable sending.
func SendDisabled(msgs []Message) bool {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].From == FromCustomer {
			return IsSentinel(msgs[i].Text)
		}
	}
	return false
}

// Preview is the conversation card summary: the 2nd and 4th message texts
// and the last one.
type Preview struct {
	Second   string `json:"msg2"`
	Fourth   string `json:"msg4"`
	LastText string `json:"lastText"`
}

func PreviewOf(msgs []Message) Preview {
	var p Preview
	if len(msgs) > 1 {
		p.Second = msgs[1].Text
	}
	if len(msgs) > 3 {
		p.Fourth = msgs[3].Text
	}
	if len(msgs) > 0 {
		p.LastText = msgs[len(msgs)-1].Text
	}
	return p
}

// Line renders the preview as "msg2 | msg4" with a dash for missing parts.
func (p Preview) Line() string {
	a, b := strings.TrimSpace(p.Second), strings.TrimSpace(p.Fourth)
	if a == "" {
		a = "—"
	}
	if b == "" {
		b = "—"
	}
	return a + " | " + b
}
