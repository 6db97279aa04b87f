package fiber

type ActivityGroupResponse struct {
	Key          string `json:"key"`
	Messages     int64  `json:"messages"`
	PeakSessions int64  `json:"peak_sessions"`
	PeakActive   int64  `json:"peak_active"`
	PeakUnread   int64  `json:"peak_unread"`
}

type ActivityResponse struct {
	APIKey       string                  `json:"api_key,omitempty"`
	From         string                  `json:"from" example:"2026-10-01"`
	To           string                  `json:"to" example:"2026-10-07"`
	Messages     int64                   `json:"messages"`
	PeakSessions int64                   `json:"peak_sessions"`
	PeakActive   int64                   `json:"peak_active"`
	PeakUnread   int64                   `json:"peak_unread"`
	GroupBy      string                  `json:"group_by,omitempty"`
	Groups       []ActivityGroupResponse `json:"groups,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message" example:"invalid time range"`
}
