// Package auth resolves the session principal from a bearer token. It is the
// only place tokens are parsed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmconnect/internal/config"
	"farmconnect/internal/middleware"
	"farmconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnauthenticated is wrapped by every error Resolve returns.
var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the authenticated caller.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

const (
	localsPrincipal = "principal"
	revokedPrefix   = "revoked:"
)

// Guard validates HS256 session tokens.
type Guard struct {
	secret   []byte
	issuer   string
	audience string
	rdb      *redis.Client
}

// NewGuard builds a Guard from config. rdb may be nil, which disables the
// revocation check.
func NewGuard(cfg *config.Config, rdb *redis.Client) *Guard {
	return &Guard{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		rdb:      rdb,
	}
}

func unauthenticated(msg string) *models.AppError {
	err := models.NewUnauthorizedError(msg)
	err.Err = ErrUnauthenticated
	return err
}

// bearerToken extracts the token from the Authorization header. Websocket
// upgrades may pass it as ?token= since browsers cannot set headers there.
func bearerToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if strings.HasPrefix(c.Path(), "/api/ws") {
		return c.Query("token")
	}
	return ""
}

// Resolve returns the principal for the request or an Unauthenticated AppError.
func (g *Guard) Resolve(c *fiber.Ctx) (Principal, error) {
	token := bearerToken(c)
	if token == "" {
		return Principal{}, unauthenticated("Authorization required")
	}
	return g.ResolveToken(c.UserContext(), token)
}

// ResolveToken validates a raw token string.
func (g *Guard) ResolveToken(ctx context.Context, tokenString string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}
	if g.audience != "" {
		opts = append(opts, jwt.WithAudience(g.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return g.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return Principal{}, unauthenticated("Invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return Principal{}, unauthenticated("Invalid subject claim")
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" && g.rdb != nil {
		n, err := g.rdb.Exists(ctx, revokedPrefix+jti).Result()
		if err == nil && n > 0 {
			return Principal{}, unauthenticated("Token has been revoked")
		}
	}

	p := Principal{ID: sub}
	p.Email, _ = claims["email"].(string)
	p.Name, _ = claims["name"].(string)
	return p, nil
}

// Middleware rejects unauthenticated requests with 401 and stores the
// principal in locals and in the request context for log correlation.
func (g *Guard) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := g.Resolve(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		setPrincipal(c, p)
		return c.Next()
	}
}

// Optional returns the principal when the request carries a valid token,
// without rejecting requests that do not.
func (g *Guard) Optional(c *fiber.Ctx) (Principal, bool) {
	if p, ok := FromContext(c); ok {
		return p, true
	}
	if bearerToken(c) == "" {
		return Principal{}, false
	}
	p, err := g.Resolve(c)
	if err != nil {
		return Principal{}, false
	}
	setPrincipal(c, p)
	return p, true
}

func setPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(localsPrincipal, p)
	c.Locals(middleware.LocalUserID, p.ID)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), p.ID))
}

// FromContext returns the principal stored by Middleware.
func FromContext(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(localsPrincipal).(Principal)
	return p, ok
}

// TokenOptions describes a token to issue.
type TokenOptions struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// IssueToken signs a session token for p. It is used by development tooling
// and tests; production tokens come from the session provider.
func IssueToken(p Principal, opts TokenOptions) (string, error) {
	if opts.Secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	if opts.TTL == 0 {
		opts.TTL = 24 * time.Hour
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   p.ID,
		"email": p.Email,
		"exp":   now.Add(opts.TTL).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   uuid.NewString(),
	}
	if p.Name != "" {
		claims["name"] = p.Name
	}
	if opts.Issuer != "" {
		claims["iss"] = opts.Issuer
	}
	if opts.Audience != "" {
		claims["aud"] = opts.Audience
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(opts.Secret))
}

// Revoke blacklists the token id jti for ttl.
func Revoke(ctx context.Context, rdb *redis.Client, jti string, ttl time.Duration) error {
	if rdb == nil {
		return errors.New("redis client is nil")
	}
	return rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}
