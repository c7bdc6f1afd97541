// Package server contains HTTP and WebSocket handlers for the marketplace API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "farmconnect/docs" // swagger docs
	"farmconnect/internal/auth"
	"farmconnect/internal/cache"
	"farmconnect/internal/config"
	"farmconnect/internal/database"
	"farmconnect/internal/featureflags"
	"farmconnect/internal/middleware"
	"farmconnect/internal/models"
	"farmconnect/internal/notifications"
	"farmconnect/internal/repository"
	"farmconnect/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// connector is the part of database.Manager the HTTP layer depends on.
type connector interface {
	EnsureConnected(ctx context.Context) error
	Ping(ctx context.Context) error
	State() database.State
	Shutdown(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             connector
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	guard          *auth.Guard
	limiter        *middleware.Limiter
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	cartService    *service.CartService
	postService    *service.PostService
	profileService *service.ProfileService
	reviewService  *service.ReviewService
}

// NewServer creates a new server instance, connecting Redis from config.
// The database connects lazily on the first request that needs it.
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	mgr := database.NewManager(database.OptionsFromConfig(cfg))

	rdb, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, continuing without cache", slog.String("error", err.Error()))
	} else if rdb != nil {
		slog.Info("redis connected")
	}
	return NewServerWithDeps(cfg, mgr, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and cross-instance
// notifications are then disabled.
func NewServerWithDeps(cfg *config.Config, mgr *database.Manager, redisClient *redis.Client) (*Server, error) {
	if mgr == nil {
		return nil, errors.New("database manager is required")
	}

	cartRepo := repository.NewCartRepository(mgr)
	farmPostRepo := repository.NewFarmPostRepository(mgr)
	storePostRepo := repository.NewStorePostRepository(mgr)
	profileRepo := repository.NewProfileRepository(mgr)
	farmProfileRepo := repository.NewFarmProfileRepository(mgr)
	storeProfileRepo := repository.NewStoreProfileRepository(mgr)
	reviewRepo := repository.NewReviewRepository(mgr)

	flags := featureflags.NewManager(cfg.FeatureFlags)

	var profileCache *cache.Store
	if redisClient != nil && flags.EnabledOr(featureflags.ProfileCache, "", true) {
		profileCache = cache.NewStore(redisClient, "profile")
	}

	server := &Server{
		config:         cfg,
		db:             mgr,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("farmconnect-api"),
		guard:          auth.NewGuard(cfg, redisClient),
		limiter:        middleware.NewLimiter(redisClient, cfg.RateLimitEnabled),
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(),
		featureFlags:   flags,
		cartService:    service.NewCartService(cartRepo),
		postService:    service.NewPostService(farmPostRepo, storePostRepo, profileRepo, farmProfileRepo, storeProfileRepo),
		profileService: service.NewProfileService(profileRepo, farmProfileRepo, storeProfileRepo, profileCache),
		reviewService:  service.NewReviewService(reviewRepo, profileRepo),
	}
	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request and user ids into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.Tracing())
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return !s.config.RateLimitEnabled || c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Success: false,
				Error:   "Too many requests, please try again later.",
				Code:    "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.HealthCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Farm Connect Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := s.guard.Middleware()
	dbRequired := s.DBRequired()

	// Cart: every route is scoped to the caller.
	cart := api.Group("/cart", dbRequired, authRequired)
	cart.Get("/", s.GetCart)
	cart.Post("/", s.limiter.Handler("cart_add", 30, time.Minute, middleware.FailOpen), s.AddToCart)
	// Specific /clear route before generic /:id
	cart.Delete("/clear", s.ClearCart)
	cart.Get("/:id", s.GetCartItem)
	cart.Put("/:id", s.UpdateCartItem)
	cart.Delete("/:id", s.RemoveCartItem)

	// Posts: reads are public, writes need a session.
	posts := api.Group("/posts", dbRequired)
	posts.Get("/", s.ListPosts)
	posts.Get("/farm", s.ListFarmPosts)
	posts.Post("/farm", authRequired, s.CreateFarmPost)
	posts.Get("/farm/:id", s.GetFarmPost)
	posts.Put("/farm/:id", authRequired, s.UpdateFarmPost)
	posts.Delete("/farm/:id", authRequired, s.DeleteFarmPost)
	posts.Get("/store", s.ListStorePosts)
	posts.Post("/store", authRequired, s.CreateStorePost)
	posts.Get("/store/:id", s.GetStorePost)
	posts.Put("/store/:id", authRequired, s.UpdateStorePost)
	posts.Delete("/store/:id", authRequired, s.DeleteStorePost)

	// Profile: specific routes before generic /:id
	profile := api.Group("/profile", dbRequired)
	profile.Get("/", authRequired, s.GetMyProfile)
	profile.Post("/", authRequired, s.CreateProfile)
	profile.Get("/farm", authRequired, s.GetMyFarmProfile)
	profile.Post("/farm", authRequired, s.SaveFarmProfile)
	profile.Get("/farm_me", authRequired, s.GetMyFarmProfile)
	profile.Post("/farm_me", authRequired, s.SaveFarmProfile)
	profile.Post("/store", authRequired, s.SaveStoreProfile)
	profile.Get("/store/:userId", s.GetStoreProfile)
	profile.Get("/:id", s.GetProfile)
	profile.Put("/:id", authRequired, s.UpdateProfile)
	profile.Delete("/:id", authRequired, s.DeleteProfile)

	// Reviews: specific routes before generic /:id
	review := api.Group("/review", dbRequired)
	review.Post("/", authRequired, s.limiter.Handler("create_review", 5, time.Minute, middleware.FailOpen), s.CreateReview)
	review.Get("/user/:userId", s.ListUserReviews)
	review.Patch("/:id/helpful", authRequired, s.MarkReviewHelpful)
	review.Get("/:id", s.GetReview)
	review.Patch("/:id", authRequired, s.UpdateReview)
	review.Delete("/:id", authRequired, s.DeleteReview)

	ws := api.Group("/ws", authRequired)
	ws.Get("/", s.WebsocketHandler())

	admin := api.Group("/admin", authRequired)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// errorHandler renders errors that escape handlers, including Fiber's own
// routing errors, in the response envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.Envelope{
			Success: false,
			Error:   fe.Message,
		})
	}
	return models.RespondWithAppError(c, err)
}

// NewApp builds a Fiber app with the server's middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Farm Connect API",
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server and blocks until it stops listening.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier.Enabled() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			slog.Error("failed to start notification wiring",
				slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
		}
	}

	slog.Info("server starting", slog.String("port", s.config.Port), slog.String("env", s.config.Env))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			slog.Error("error shutting down hub", slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
		}
	}

	var errs []error
	if s.db != nil {
		if err := s.db.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database shutdown: %w", err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	slog.Info("server shutdown complete")
	return errors.Join(errs...)
}
