// Package observability provides logging and tracing helpers for the data and
// realtime layers.
package observability

import (
	"context"
	"log/slog"
)

// RepoLogger writes one record per repository write, tagged with the
// collection. Records go through slog.Default so request ids on ctx are kept.
type RepoLogger struct {
	collection string
}

func NewRepoLogger(collection string) *RepoLogger {
	return &RepoLogger{collection: collection}
}

func (l *RepoLogger) emit(ctx context.Context, level slog.Level, op string, attrs []slog.Attr) {
	logger := slog.Default()
	if !logger.Enabled(ctx, level) {
		return
	}
	base := []slog.Attr{slog.String("collection", l.collection), slog.String("operation", op)}
	logger.LogAttrs(ctx, level, "repository "+op, append(base, attrs...)...)
}

func (l *RepoLogger) Created(ctx context.Context, attrs ...slog.Attr) {
	l.emit(ctx, slog.LevelInfo, "create", attrs)
}

// Read is logged at debug level only.
func (l *RepoLogger) Read(ctx context.Context, attrs ...slog.Attr) {
	l.emit(ctx, slog.LevelDebug, "read", attrs)
}

func (l *RepoLogger) Updated(ctx context.Context, attrs ...slog.Attr) {
	l.emit(ctx, slog.LevelInfo, "update", attrs)
}

func (l *RepoLogger) Deleted(ctx context.Context, attrs ...slog.Attr) {
	l.emit(ctx, slog.LevelInfo, "delete", attrs)
}

// LogError records a driver failure that is about to be returned.
func (l *RepoLogger) LogError(ctx context.Context, err error, op string) {
	l.emit(ctx, slog.LevelError, op, []slog.Attr{slog.String("error", err.Error())})
}

// WSLogger logs socket lifecycle events for one hub.
type WSLogger struct {
	hub string
}

func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

func (l *WSLogger) LogConnect(ctx context.Context, userID string) {
	slog.InfoContext(ctx, "websocket connected", slog.String("hub", l.hub), slog.String("user_id", userID))
}

func (l *WSLogger) LogDisconnect(ctx context.Context, userID, reason string) {
	slog.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hub), slog.String("user_id", userID), slog.String("reason", reason))
}

func (l *WSLogger) LogError(ctx context.Context, userID string, err error, stage string) {
	slog.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hub),
		slog.String("user_id", userID),
		slog.String("stage", stage),
		slog.String("error", err.Error()))
}

// LogLifecycle logs a hub-wide event such as shutdown.
func (l *WSLogger) LogLifecycle(ctx context.Context, event string, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("hub", l.hub), slog.String("event", event))
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.InfoContext(ctx, "websocket hub "+event, args...)
}
