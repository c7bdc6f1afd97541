package models

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies an AppError so callers can branch on it without
// inspecting messages.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

// AppError is an error with a client-facing message and a kind that
// decides the HTTP status.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	// Fields lists every violated field for aggregated validation failures.
	Fields []string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

var kindInfo = map[ErrorKind]struct {
	code   string
	status int
}{
	KindInternal:        {"INTERNAL_ERROR", fiber.StatusInternalServerError},
	KindValidation:      {"VALIDATION_ERROR", fiber.StatusBadRequest},
	KindUnauthenticated: {"UNAUTHORIZED", fiber.StatusUnauthorized},
	KindForbidden:       {"FORBIDDEN", fiber.StatusForbidden},
	KindNotFound:        {"NOT_FOUND", fiber.StatusNotFound},
}

func newError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Code: kindInfo[kind].code, Message: message}
}

// NewNotFoundError reports that resource id does not exist.
func NewNotFoundError(resource string, id any) *AppError {
	return newError(KindNotFound, fmt.Sprintf("%s with ID %v not found", resource, id))
}

// NewMissingError is a NotFound error for owner-scoped lookups that have no id.
func NewMissingError(message string) *AppError {
	return newError(KindNotFound, message)
}

func NewValidationError(message string, fields ...string) *AppError {
	e := newError(KindValidation, message)
	e.Fields = fields
	return e
}

func NewUnauthorizedError(message string) *AppError {
	return newError(KindUnauthenticated, message)
}

func NewForbiddenError(message string) *AppError {
	return newError(KindForbidden, message)
}

// NewInternalError hides err behind a generic message.
func NewInternalError(err error) *AppError {
	e := newError(KindInternal, "Internal server error")
	e.Err = err
	return e
}

// KindOf reports the kind of err. Errors that are not AppErrors are internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusFor maps an error to the HTTP status returned to clients.
func StatusFor(err error) int {
	if info, ok := kindInfo[KindOf(err)]; ok {
		return info.status
	}
	return fiber.StatusInternalServerError
}

// RespondWithError logs err with request context and writes the error envelope.
// Internal errors are reported with a generic message only.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	resp := Envelope{Success: false}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		resp.Error = appErr.Message
		resp.Code = appErr.Code
		resp.Errors = appErr.Fields
	} else {
		resp.Error = "Internal server error"
		resp.Code = "INTERNAL_ERROR"
	}

	level := slog.LevelWarn
	if status >= fiber.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Default().Log(c.UserContext(), level, "request error",
		slog.Int("status", status),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)

	return c.Status(status).JSON(resp)
}

// RespondWithAppError writes err using the status derived from its kind.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
