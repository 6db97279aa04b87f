package fiber

import "chato-dashboard/internal/conversations/core/domain"

// SessionsResponse is one page of an application's live sessions.
// @Description Latest aggregate snapshot of an application
type SessionsResponse struct {
	APIKey        string         `json:"apiKey"`
	Loaded        bool           `json:"loaded"`
	Unread        int            `json:"unread"`
	SessionsCount int            `json:"sessionsCount"`
	ActiveCount   int            `json:"activeCount"`
	MessagesByDay []int          `json:"messagesByDay"`
	Page          int            `json:"page"`
	PageSize      int            `json:"pageSize"`
	Sessions      []SessionEntry `json:"sessions"`
}

type SessionEntry struct {
	ID            string `json:"id"`
	UpdatedAt     int64  `json:"updatedAt"`
	UnreadOwner   int    `json:"unreadOwner"`
	LastText      string `json:"lastText"`
	LastMessageAt int64  `json:"lastMessageAt"`
	Active        bool   `json:"active"`
	Preview       string `json:"preview,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"text" example:"Hi! How can I help?"`
}

type SendMessageResponse struct {
	Status string `json:"status" example:"sent"`
}

// wsClientFrame is what the browser sends on the thread socket.
type wsClientFrame struct {
	Type string `json:"type"` // "send"
	Text string `json:"text"`
}

type wsServerFrame struct {
	Type     string            `json:"type"` // "thread" | "sessions" | "error" | "sent"
	Thread   any               `json:"thread,omitempty"`
	Sessions *SessionsResponse `json:"sessions,omitempty"`
	Error    string            `json:"error,omitempty"`
	Message  string            `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"text is required"`
}

func toEntries(sessions []domain.Session) []SessionEntry {
	out := make([]SessionEntry, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionEntry{
			ID:            s.ID,
			UpdatedAt:     s.UpdatedAt,
			UnreadOwner:   s.UnreadOwner,
			LastText:      s.LastText,
			LastMessageAt: s.LastMessageAt,
			Active:        s.IsActive(),
		})
	}
	return out
}
