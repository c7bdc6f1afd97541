package server

import (
	"encoding/json"
	"log/slog"

	"farmconnect/internal/middleware"
	"farmconnect/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles GET /api/ws. The route's auth middleware has
// already resolved the caller; the socket then receives that user's events.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(string)
		if userID == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			slog.Warn("notification socket rejected",
				slog.String("user_id", userID), slog.String("error", err.Error()))
			_ = conn.WriteJSON(fiber.Map{"type": "error", "error": err.Error()})
			_ = conn.Close()
			return
		}

		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		if hello, err := json.Marshal(notifications.NewEvent(notifications.EventConnected, map[string]any{
			"userId": userID,
		})); err == nil {
			client.TrySend(hello)
		}

		go client.WritePump()
		client.ReadPump()
	})
}
