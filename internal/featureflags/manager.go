// Package featureflags evaluates FEATURE_FLAGS, a comma-separated list of
// name=value pairs such as "notifications=on,profile_cache=25%".
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags read by the server.
const (
	Notifications = "notifications"
	ProfileCache  = "profile_cache"
)

// rule is a parsed flag value. pct is the share of users in the rollout:
// 100 for on, 0 for off or anything unparseable.
type rule struct {
	raw string
	pct int
}

func parseRule(value string) rule {
	r := rule{raw: value}
	switch value {
	case "on", "true", "1":
		r.pct = 100
	case "off", "false", "0":
	default:
		if n, ok := strings.CutSuffix(value, "%"); ok {
			if pct, err := strconv.Atoi(n); err == nil {
				r.pct = min(max(pct, 0), 100)
			}
		}
	}
	return r
}

// Manager holds the parsed flags. A nil Manager has every flag off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses raw. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	rules := make(map[string]rule)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		rules[name] = parseRule(value)
	}
	return &Manager{rules: rules}
}

// Enabled reports whether name is on for userID. Partial rollouts bucket
// users deterministically and never include an anonymous caller.
func (m *Manager) Enabled(name, userID string) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case r.pct >= 100:
		return true
	case r.pct <= 0, userID == "":
		return false
	default:
		return bucket(name, userID) < r.pct
	}
}

// EnabledOr is Enabled, except that an unconfigured flag yields def.
func (m *Manager) EnabledOr(name, userID string, def bool) bool {
	if m == nil {
		return def
	}
	if _, ok := m.rules[normalize(name)]; !ok {
		return def
	}
	return m.Enabled(name, userID)
}

// Raw returns the configured values by flag name.
func (m *Manager) Raw() map[string]string {
	out := map[string]string{}
	if m == nil {
		return out
	}
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for userID.
func (m *Manager) Snapshot(userID string) map[string]bool {
	out := map[string]bool{}
	if m == nil {
		return out
	}
	for name := range m.rules {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + userID))
	return int(h.Sum32() % 100)
}
