package domain

import (
	"testing"
	"time"
)

// ------------------------------------------------------------
// NORMALISATION
// ------------------------------------------------------------
func TestNormalizeSession_LastTextPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   string
		has    bool
	}{
		{"lastMessageText wins", map[string]any{"lastMessageText": "a", "lastText": "b", "lastMessage": "c"}, "a", true},
		{"lastText", map[string]any{"lastText": "b", "lastMessage": "c"}, "b", true},
		{"lastMessage string", map[string]any{"lastMessage": "c"}, "c", true},
		{"lastMessage.text", map[string]any{"lastMessage": map[string]any{"text": "d", "message": "e"}}, "d", true},
		{"lastMessage.message", map[string]any{"lastMessage": map[string]any{"message": "e"}}, "e", true},
		{"none", map[string]any{"status": "open"}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NormalizeSession("s1", tc.fields)
			if s.LastText != tc.want || s.HasLastText != tc.has {
				t.Fatalf("expected (%q,%v), got (%q,%v)", tc.want, tc.has, s.LastText, s.HasLastText)
			}
		})
	}
}

func TestNormalizeSession_Defaults(t *testing.T) {
	s := NormalizeSession("s1", map[string]any{"updatedAt": float64(42), "unreadOwner": "3"})
	if s.UnreadOwner != 0 {
		t.Fatalf("non-numeric unreadOwner must count as 0, got %d", s.UnreadOwner)
	}
	if s.Status != StatusOpen {
		t.Fatalf("expected default status open, got %s", s.Status)
	}
	if s.LastMessageAt != 42 {
		t.Fatalf("expected lastMessageAt to fall back to updatedAt, got %d", s.LastMessageAt)
	}

	if got := NormalizeSession("s2", nil); got.UpdatedAt != 0 || got.ID != "s2" {
		t.Fatalf("unexpected session for nil record: %+v", got)
	}
}

func TestNormalizeMessage_Fallbacks(t *testing.T) {
	m := NormalizeMessage("m1", map[string]any{"createdAt": float64(7), "message": "hey", "from": "customer"})
	if !m.HasAt || m.At != 7 {
		t.Fatalf("expected at from createdAt, got %+v", m)
	}
	if m.Text != "hey" || m.From != FromCustomer {
		t.Fatalf("unexpected message: %+v", m)
	}

	m = NormalizeMessage("m2", map[string]any{"at": "yesterday"})
	if m.HasAt {
		t.Fatalf("string at must not resolve")
	}
}

// ------------------------------------------------------------
// ACTIVE PREDICATE
// ------------------------------------------------------------
func TestSession_IsActive(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   bool
	}{
		{"sentinel exact", map[string]any{"lastMessageText": SentinelText}, false},
		{"sentinel case and spaces", map[string]any{"lastText": "  customer LEFT the conversation \n"}, false},
		{"other text", map[string]any{"lastMessageText": "hi"}, true},
		{"text wins over closed status", map[string]any{"lastMessageText": "hi", "status": "closed"}, true},
		{"no text, no status", map[string]any{}, true},
		{"no text, open", map[string]any{"status": "open"}, true},
		{"no text, closed", map[string]any{"status": "closed"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeSession("s", tc.fields).IsActive(); got != tc.want {
				t.Fatalf("expected active=%v, got %v", tc.want, got)
			}
		})
	}
}

func TestSummarize_TwoSessions(t *testing.T) {
	sessions := []Session{
		NormalizeSession("s1", map[string]any{"unreadOwner": float64(2), "lastMessageText": "hi", "updatedAt": float64(20)}),
		NormalizeSession("s2", map[string]any{"unreadOwner": float64(0), "lastMessageText": SentinelText, "updatedAt": float64(10)}),
	}

	snap := Summarize("X", sessions, [Days]int{})
	if snap.Unread != 2 || snap.SessionsCount != 2 || snap.ActiveCount != 1 {
		t.Fatalf("unexpected aggregate: unread=%d sessions=%d active=%d", snap.Unread, snap.SessionsCount, snap.ActiveCount)
	}
}

func TestSummarize_EmptyIsZero(t *testing.T) {
	snap := Summarize("X", nil, [Days]int{})
	if snap.Sessions == nil || snap.SessionsCount != 0 || snap.Unread != 0 {
		t.Fatalf("unexpected empty snapshot: %+v", snap)
	}
}

func TestSignature_TracksVisibleFields(t *testing.T) {
	base := Summarize("X", []Session{{ID: "s1", UpdatedAt: 1, Status: StatusOpen}}, [Days]int{})
	same := Summarize("X", []Session{{ID: "s1", UpdatedAt: 1, Status: StatusOpen, LastMessageAt: 99}}, [Days]int{})
	bumped := Summarize("X", []Session{{ID: "s1", UpdatedAt: 2, Status: StatusOpen}}, [Days]int{})
	histo := Summarize("X", []Session{{ID: "s1", UpdatedAt: 1, Status: StatusOpen}}, [Days]int{0, 0, 0, 0, 0, 0, 1})

	if base.Signature() != same.Signature() {
		t.Fatalf("unrelated field must not change the signature")
	}
	if base.Signature() == bumped.Signature() {
		t.Fatalf("updatedAt change must change the signature")
	}
	if base.Signature() == histo.Signature() {
		t.Fatalf("histogram change must change the signature")
	}
}

// ------------------------------------------------------------
// HISTOGRAM
// ------------------------------------------------------------
func TestHistogram_WindowBoundary(t *testing.T) {
	now := time.Date(2024, time.March, 14, 15, 30, 0, 0, time.UTC)
	start := WindowStart(now).UnixMilli()

	h := NewHistogram(now)
	h.Add(start)
	h.Add(start - 1)
	h.Add(now.UnixMilli())
	h.Add(now.Add(48 * time.Hour).UnixMilli())

	got := h.Counts()
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	want := [Days]int{1, 0, 0, 0, 0, 0, 1}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHistogram_LocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, time.March, 14, 1, 0, 0, 0, loc)

	h := NewHistogram(now)
	// 23:59 local yesterday and 00:00 local today
	h.Add(time.Date(2024, time.March, 13, 23, 59, 0, 0, loc).UnixMilli())
	h.Add(time.Date(2024, time.March, 14, 0, 0, 0, 0, loc).UnixMilli())

	got := h.Counts()
	if got[5] != 1 || got[6] != 1 {
		t.Fatalf("expected one message yesterday and one today, got %v", got)
	}
}

func TestDayBounds_SpansDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// The window contains the switch to summer time on 31 March.
	now := time.Date(2024, time.April, 2, 12, 0, 0, 0, loc)
	b := DayBounds(now)
	for i := 0; i < Days; i++ {
		d := time.UnixMilli(b[i]).In(loc)
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Fatalf("bound %d is not local midnight: %s", i, d)
		}
	}
}

// ------------------------------------------------------------
// MESSAGES
// ------------------------------------------------------------
func TestSortMessages_Ascending(t *testing.T) {
	msgs := []Message{{ID: "a", At: 300}, {ID: "b", At: 100}, {ID: "c", At: 200}, {ID: "d"}}
	SortMessages(msgs)

	want := []string{"d", "b", "c", "a"}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, msgs[i].ID)
		}
	}
}

func TestSendDisabled(t *testing.T) {
	left := []Message{
		{From: FromCustomer, Text: "hello"},
		{From: FromCustomer, Text: " CUSTOMER left the conversation "},
		{From: FromOwner, Text: "are you there?"},
	}
	if !SendDisabled(left) {
		t.Fatalf("expected sending disabled after the customer left")
	}

	back := append(left, Message{From: FromCustomer, Text: "I'm back"})
	if SendDisabled(back) {
		t.Fatalf("a later customer message re-enables sending")
	}
	if SendDisabled(nil) {
		t.Fatalf("empty conversation can be answered")
	}
}

func TestPreviewOf(t *testing.T) {
	msgs := []Message{{Text: "1"}, {Text: "2"}, {Text: "3"}, {Text: "4"}, {Text: "5"}}
	p := PreviewOf(msgs)
	if p.Second != "2" || p.Fourth != "4" || p.LastText != "5" {
		t.Fatalf("unexpected preview: %+v", p)
	}
	if line := PreviewOf(msgs[:1]).Line(); line != "— | —" {
		t.Fatalf("unexpected line %q", line)
	}
}
