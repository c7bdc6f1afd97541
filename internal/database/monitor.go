package database

import (
	"context"
	"log/slog"

	"farmconnect/internal/middleware"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *Manager) clientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(m.opts.URI).
		SetServerSelectionTimeout(m.opts.ConnectTimeout).
		SetConnectTimeout(m.opts.ConnectTimeout).
		SetSocketTimeout(m.opts.SocketTimeout).
		SetMonitor(m.commandMonitor()).
		SetServerMonitor(m.serverMonitor()).
		SetPoolMonitor(m.poolMonitor())
}

// serverMonitor keeps State in step with the driver's view of the deployment.
func (m *Manager) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			if m.State() == Connected {
				slog.Warn("database heartbeat failed",
					slog.String("connection_id", e.ConnectionID),
					slog.Any("error", e.Failure),
				)
				m.setState(Disconnected)
			}
		},
		ServerHeartbeatSucceeded: func(_ *event.ServerHeartbeatSucceededEvent) {
			if m.State() == Disconnected && m.currentClient() != nil {
				m.setState(Connected)
			}
		},
		TopologyClosed: func(_ *event.TopologyClosedEvent) {
			m.setState(Disconnected)
		},
	}
}

func (m *Manager) poolMonitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			if e.Type == event.PoolCleared {
				slog.Warn("database connection pool cleared", slog.String("address", e.Address))
			}
		},
	}
}

func (m *Manager) commandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			middleware.MongoCommandLatency.WithLabelValues(e.CommandName, "ok").Observe(e.Duration.Seconds())
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			middleware.MongoCommandLatency.WithLabelValues(e.CommandName, "error").Observe(e.Duration.Seconds())
			slog.WarnContext(ctx, "database command failed",
				slog.String("command", e.CommandName),
				slog.String("database", e.DatabaseName),
				slog.Duration("duration", e.Duration),
				slog.Any("error", e.Failure),
			)
		},
	}
}
