package fiber

import (
	"chato-dashboard/internal/apps/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/wspush"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// AppsSocket godoc
// @Summary Live application list
// @Description Pushes {type:"apps"} frames whenever the list or a counter changes
// @Tags Apps
// @Param token query string false "Bearer token for browsers"
// @Failure 401 {object} ErrorResponse
// @Router /ws/apps [get]
func (h *AppsHandler) AppsSocket() fiber.Handler {
	return websocket.New(h.serveApps)
}

func (h *AppsHandler) serveApps(conn *websocket.Conn) {
	defer conn.Close()

	token, _ := conn.Locals(bearer.LocalsKey).(string)
	views := make(chan usecase.StateView, 1)
	cancel := h.owners(token).Watch(func(v usecase.StateView) { wspush.Offer(views, v) })
	defer cancel()

	closed := wspush.Drain(conn)
	for {
		select {
		case v := <-views:
			resp := toAppsResponse(v)
			if err := conn.WriteJSON(wsFrame{Type: "apps", Apps: &resp}); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
