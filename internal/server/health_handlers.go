package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

type checkResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

func runCheck(ctx context.Context, probe func(context.Context) error) checkResult {
	start := time.Now()
	err := probe(ctx)
	r := checkResult{Status: "healthy", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		r.Status = "unhealthy"
		r.Error = err.Error()
	}
	return r
}

// HealthCheck handles GET /api/
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles GET /health/live. It never touches dependencies.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "up", "time": time.Now().UTC()})
}

// ReadinessCheck handles GET /health/ready. MongoDB must answer; Redis is
// optional, so only a configured but failing Redis makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	var db, redisCheck checkResult
	redisCheck.Status = "disabled"

	var g errgroup.Group
	g.Go(func() error {
		db = runCheck(ctx, func(ctx context.Context) error {
			if err := s.db.EnsureConnected(ctx); err != nil {
				return err
			}
			return s.db.Ping(ctx)
		})
		return nil
	})
	if s.redis != nil {
		g.Go(func() error {
			redisCheck = runCheck(ctx, func(ctx context.Context) error { return s.redis.Ping(ctx).Err() })
			return nil
		})
	}
	_ = g.Wait()

	status, overall := fiber.StatusOK, "healthy"
	if db.Status != "healthy" || redisCheck.Status == "unhealthy" {
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Farm Connect API",
		"version": "1.0.0",
		"status":  overall,
		"checks": fiber.Map{
			"database":      db,
			"databaseState": s.db.State().String(),
			"redis":         redisCheck,
		},
		"time": time.Now().UTC(),
	})
}
