package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"farmconnect/internal/featureflags"
	"farmconnect/internal/notifications"
)

const publishTimeout = 2 * time.Second

// publishUserEvent delivers an event to userID's open sockets. With Redis the
// event travels over pub/sub so every instance can deliver it; without Redis
// only this instance's hub is used. Failures are logged and never affect the
// request that triggered the event.
func (s *Server) publishUserEvent(userID, eventType string, payload map[string]any) {
	if userID == "" || !s.featureFlags.EnabledOr(featureflags.Notifications, userID, true) {
		return
	}
	event := notifications.NewEvent(eventType, payload)

	if s.notifier.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.notifier.PublishUser(ctx, userID, event); err != nil {
			slog.Error("failed to publish event",
				slog.String("type", eventType),
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if s.hub == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}
	s.hub.Broadcast(userID, message)
}
