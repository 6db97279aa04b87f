// Package wspush holds the helpers shared by the WebSocket push routes.
package wspush

import "github.com/gofiber/websocket/v2"

// Offer replaces any unread value so the writer always sees the latest.
func Offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Drain discards client frames and closes the returned channel once the
// connection fails.
func Drain(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return closed
}
