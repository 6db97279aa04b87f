package fiber

import (
	"chato-dashboard/internal/apps/core/domain"
	"chato-dashboard/internal/apps/core/usecase"
)

// AppsResponse is the application list with live counters.
// @Description Application list state
type AppsResponse struct {
	Version uint64        `json:"version" example:"3"`
	Status  string        `json:"status" example:"succeeded"`
	Error   string        `json:"error,omitempty" example:"Failed to load apps (backend cold start)"`
	Items   []AppResponse `json:"items"`
}

type AppResponse struct {
	APIKey        string         `json:"apiKey" example:"ak_123"`
	Name          string         `json:"name" example:"Shop"`
	Theme         domain.Theme   `json:"theme"`
	Prechat       domain.Prechat `json:"prechat"`
	Unread        int            `json:"unread"`
	SessionsCount int            `json:"sessionsCount"`
	ActiveCount   int            `json:"activeCount"`
	MessagesByDay []int          `json:"messagesByDay"`
}

type CreateAppRequest struct {
	Name string `json:"name" example:"Shop"`
}

type UpdateSettingsRequest struct {
	Theme   *domain.Theme   `json:"theme,omitempty"`
	Prechat *domain.Prechat `json:"prechat,omitempty"`
}

type ConfigResponse struct {
	Theme   domain.Theme   `json:"theme"`
	Prechat domain.Prechat `json:"prechat"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"app name is required"`
}

type wsFrame struct {
	Type string        `json:"type"` // "apps"
	Apps *AppsResponse `json:"apps,omitempty"`
}

func toAppsResponse(v usecase.StateView) AppsResponse {
	items := make([]AppResponse, 0, len(v.Items))
	for _, a := range v.Items {
		items = append(items, toAppResponse(a))
	}
	return AppsResponse{
		Version: v.Version,
		Status:  string(v.Status),
		Error:   v.Error,
		Items:   items,
	}
}

func toAppResponse(a domain.Application) AppResponse {
	return AppResponse{
		APIKey:        a.APIKey,
		Name:          a.Name,
		Theme:         a.Theme,
		Prechat:       a.Prechat,
		Unread:        a.Unread,
		SessionsCount: a.SessionsCount,
		ActiveCount:   a.ActiveCount,
		MessagesByDay: append([]int(nil), a.MessagesByDay[:]...),
	}
}
