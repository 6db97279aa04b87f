package domain

import (
	"encoding/json"
	"strings"
)

// SentinelText is written by the widget when the end user closes the chat.
const SentinelText = "Customer left the conversation"

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Session is one conversation of an application, normalised from its
// realtime record.
type Session struct {
	ID            string `json:"id"`
	UpdatedAt     int64  `json:"updatedAt"`
	UnreadOwner   int    `json:"unreadOwner"`
	LastText      string `json:"lastMessageText,omitempty"`
	HasLastText   bool   `json:"-"`
	LastMessageAt int64  `json:"lastMessageAt,omitempty"`
	Status        string `json:"status"`
}

// IsSentinel compares text to SentinelText ignoring case and surrounding
// whitespace.
func IsSentinel(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), SentinelText)
}

// IsActive: a resolvable last text decides (sentinel means closed),
// otherwise the status field does, defaulting to open.
func (s Session) IsActive() bool {
	if s.HasLastText {
		return !IsSentinel(s.LastText)
	}
	return s.Status != StatusClosed
}

// NormalizeSession resolves the record's legacy field names. Last text
// precedence: lastMessageText, lastText, lastMessage (string),
// lastMessage.text, lastMessage.message.
func NormalizeSession(id string, fields map[string]any) Session {
	s := Session{ID: id, Status: StatusOpen}
	if fields == nil {
		return s
	}

	s.UpdatedAt, _ = Millis(fields["updatedAt"])
	if n, ok := Millis(fields["unreadOwner"]); ok && n > 0 {
		s.UnreadOwner = int(n)
	}
	if st, ok := fields["status"].(string); ok && st != "" {
		s.Status = st
	}

	s.LastText, s.HasLastText = lastText(fields)

	if at, ok := Millis(fields["lastMessageAt"]); ok {
		s.LastMessageAt = at
	} else {
		s.LastMessageAt = s.UpdatedAt
	}
	return s
}

func lastText(fields map[string]any) (string, bool) {
	for _, k := range []string{"lastMessageText", "lastText"} {
		if v, ok := fields[k].(string); ok {
			return v, true
		}
	}
	switch lm := fields["lastMessage"].(type) {
	case string:
		return lm, true
	case map[string]any:
		for _, k := range []string{"text", "message"} {
			if v, ok := lm[k].(string); ok {
				return v, true
			}
		}
	}
	return "", false
}

// Millis reads a numeric JSON value as epoch milliseconds (or any integer).
// Strings and other types are not numbers.
func Millis(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	}
	return 0, false
}
