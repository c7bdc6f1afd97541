// Package middleware provides the Fiber middleware shared by every route:
// structured logging, tracing, metrics and rate limiting.
package middleware

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide logger. Records logged with a request context
// carry its request, user and trace ids.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "userID"

var correlationKeys = [...]contextKey{RequestIDKey, UserIDKey, TraceIDKey}

type correlatingHandler struct {
	next slog.Handler
}

func (h correlatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h correlatingHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx == nil {
		return h.next.Handle(ctx, r)
	}
	for _, key := range correlationKeys {
		if v, _ := ctx.Value(key).(string); v != "" {
			r.AddAttrs(slog.String(string(key), v))
		}
	}
	return h.next.Handle(ctx, r)
}

func (h correlatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return correlatingHandler{h.next.WithAttrs(attrs)}
}

func (h correlatingHandler) WithGroup(name string) slog.Handler {
	return correlatingHandler{h.next.WithGroup(name)}
}

func init() {
	InitLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
}

// InitLogger rebuilds Logger for env and level and installs it as the slog
// default. Production writes JSON, other environments write text.
func InitLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	base := slog.Handler(slog.NewTextHandler(os.Stdout, opts))
	if env == "production" || env == "prod" {
		base = slog.NewJSONHandler(os.Stdout, opts)
	}

	Logger = slog.New(correlatingHandler{base})
	slog.SetDefault(Logger)
	return Logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	switch v := strings.ToLower(strings.TrimSpace(level)); v {
	case "":
		return slog.LevelInfo
	case "warning":
		return slog.LevelWarn
	default:
		if err := l.UnmarshalText([]byte(v)); err != nil {
			return slog.LevelInfo
		}
		return l
	}
}

// WithUserID returns ctx annotated with the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// ContextMiddleware copies the request id and any authenticated user id from
// Fiber locals into the user context seen by services and repositories.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			ctx = context.WithValue(ctx, RequestIDKey, rid)
		}
		if uid, _ := c.Locals(LocalUserID).(string); uid != "" {
			ctx = WithUserID(ctx, uid)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// quietPaths are probed by orchestrators and only logged at debug level.
var quietPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// StructuredLogger logs one record per request. 5xx responses and handler
// errors are logged at error level, 4xx at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		began := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		level := slog.LevelInfo
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		case quietPaths[c.Path()]:
			level = slog.LevelDebug
		}

		ctx := c.UserContext()
		if !Logger.Enabled(ctx, level) {
			return err
		}
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(began)),
			slog.String("ip", c.IP()),
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			attrs = append(attrs, slog.String("user_agent", ua))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		Logger.LogAttrs(ctx, level, "http request", attrs...)
		return err
	}
}
