// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"fmt"
	"regexp"
	"strings"

	"farmconnect/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,18}$`)
)

func validEmail(s string) bool { return emailRegex.MatchString(strings.TrimSpace(s)) }

func validPhone(s string) bool { return phoneRegex.MatchString(strings.TrimSpace(s)) }

// violations collects field errors so a payload reports every problem at once.
type violations []string

func (v *violations) add(field, format string, args ...any) {
	*v = append(*v, field+": "+fmt.Sprintf(format, args...))
}

func (v *violations) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}

func (v violations) err(message string) error {
	if len(v) == 0 {
		return nil
	}
	return models.NewValidationError(message, v...)
}
