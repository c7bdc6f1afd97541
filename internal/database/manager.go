// Package database owns the MongoDB connection: a single Manager that is
// created once at startup, connects lazily with bounded retries and is
// injected everywhere a collection is needed.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"farmconnect/internal/config"
	"farmconnect/internal/middleware"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// State is the connection state of a Manager.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

var (
	// ErrMissingURI is returned when the manager has no connection string.
	ErrMissingURI = errors.New("database: MONGODB_URI is not configured")
	// ErrConnectFailed is returned once every connection attempt has failed.
	ErrConnectFailed = errors.New("database: connection failed")
	// ErrShutdown is returned after Shutdown has been called.
	ErrShutdown = errors.New("database: manager is shut down")
	// ErrNotConnected is returned by Ping when no client exists.
	ErrNotConnected = errors.New("database: not connected")
)

// Options configures a Manager.
type Options struct {
	URI            string
	Database       string
	MaxRetries     int
	RetryBackoff   time.Duration
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

// OptionsFromConfig maps application config onto manager options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URI:            cfg.MongoURI,
		Database:       cfg.MongoDatabase,
		MaxRetries:     cfg.DBMaxRetries,
		RetryBackoff:   cfg.DBRetryBackoff,
		ConnectTimeout: cfg.DBConnectTimeout,
		SocketTimeout:  cfg.DBSocketTimeout,
	}
}

type (
	dialFunc    func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
	pingFunc    func(ctx context.Context, client *mongo.Client) error
	indexerFunc func(ctx context.Context, db *mongo.Database) error
)

// Manager is the single owner of the database client.
//
// EnsureConnected is safe for concurrent use: callers that arrive while an
// attempt is in flight wait for that attempt instead of starting their own.
type Manager struct {
	opts Options

	dial    dialFunc
	ping    pingFunc
	indexer indexerFunc
	sleep   func(ctx context.Context, d time.Duration) error

	group singleflight.Group
	state atomic.Int32

	mu       sync.RWMutex
	client   *mongo.Client
	indexed  bool
	shutdown bool
}

// NewManager creates a Manager. No connection is made until EnsureConnected.
func NewManager(opts Options) *Manager {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 30 * time.Second
	}
	if opts.SocketTimeout <= 0 {
		opts.SocketTimeout = 75 * time.Second
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	}

	m := &Manager{
		opts:    opts,
		dial:    func(ctx context.Context, o *options.ClientOptions) (*mongo.Client, error) { return mongo.Connect(ctx, o) },
		ping:    func(ctx context.Context, c *mongo.Client) error { return c.Ping(ctx, readpref.Primary()) },
		indexer: EnsureIndexes,
		sleep:   sleepCtx,
	}
	m.setState(Disconnected)
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// IsConnected reports whether the manager currently holds a live connection.
func (m *Manager) IsConnected() bool {
	return m.State() == Connected
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
	middleware.DBConnectionState.Set(float64(s))
}

// EnsureConnected connects if necessary. It returns immediately when already
// connected and shares a single in-flight attempt between concurrent callers.
// The caller's ctx bounds only how long it waits, not the shared attempt.
func (m *Manager) EnsureConnected(ctx context.Context) error {
	if m.opts.URI == "" {
		return ErrMissingURI
	}
	if m.IsConnected() {
		return nil
	}

	m.mu.RLock()
	closed := m.shutdown
	m.mu.RUnlock()
	if closed {
		return ErrShutdown
	}

	ch := m.group.DoChan("connect", func() (interface{}, error) {
		return nil, m.connect(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// connect runs up to MaxRetries attempts with a fixed backoff between them.
func (m *Manager) connect(ctx context.Context) error {
	if m.IsConnected() {
		return nil
	}

	// A client may survive a heartbeat failure; reuse it when it answers.
	if stale := m.currentClient(); stale != nil {
		pingCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
		err := m.ping(pingCtx, stale)
		cancel()
		if err == nil {
			m.setState(Connected)
			return nil
		}
		m.dropClient(ctx, stale)
	}

	var lastErr error
	for attempt := 1; attempt <= m.opts.MaxRetries; attempt++ {
		m.setState(Connecting)

		client, err := m.attempt(ctx)
		if err == nil {
			if err := m.install(ctx, client); err != nil {
				return err
			}
			middleware.DBConnectAttempts.WithLabelValues("success").Inc()
			slog.InfoContext(ctx, "database connected",
				slog.String("database", m.opts.Database),
				slog.Int("attempt", attempt),
			)
			m.ensureIndexesOnce(ctx)
			return nil
		}

		lastErr = err
		m.setState(Disconnected)
		middleware.DBConnectAttempts.WithLabelValues("failure").Inc()
		slog.WarnContext(ctx, "database connection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", m.opts.MaxRetries),
			slog.String("error", err.Error()),
		)

		if attempt < m.opts.MaxRetries {
			if err := m.sleep(ctx, m.opts.RetryBackoff); err != nil {
				return fmt.Errorf("%w: %w", ErrConnectFailed, err)
			}
		}
	}

	slog.ErrorContext(ctx, "database connection failed",
		slog.Int("attempts", m.opts.MaxRetries),
		slog.String("error", lastErr.Error()),
	)
	return fmt.Errorf("%w after %d attempts: %w", ErrConnectFailed, m.opts.MaxRetries, lastErr)
}

func (m *Manager) attempt(ctx context.Context) (*mongo.Client, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()

	client, err := m.dial(attemptCtx, m.clientOptions())
	if err != nil {
		return nil, err
	}
	if err := m.ping(attemptCtx, client); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	return client, nil
}

func (m *Manager) install(ctx context.Context, client *mongo.Client) error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		_ = client.Disconnect(ctx)
		return ErrShutdown
	}
	m.client = client
	m.mu.Unlock()

	m.setState(Connected)
	return nil
}

func (m *Manager) ensureIndexesOnce(ctx context.Context) {
	m.mu.Lock()
	if m.indexed || m.indexer == nil {
		m.mu.Unlock()
		return
	}
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return
	}

	if err := m.indexer(ctx, client.Database(m.opts.Database)); err != nil {
		slog.ErrorContext(ctx, "failed to ensure indexes", slog.String("error", err.Error()))
		return
	}

	m.mu.Lock()
	m.indexed = true
	m.mu.Unlock()
}

func (m *Manager) currentClient() *mongo.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

func (m *Manager) dropClient(ctx context.Context, client *mongo.Client) {
	m.mu.Lock()
	if m.client == client {
		m.client = nil
	}
	m.mu.Unlock()
	_ = client.Disconnect(ctx)
}

// Database returns the configured database, connecting first if necessary.
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	if err := m.EnsureConnected(ctx); err != nil {
		return nil, err
	}
	client := m.currentClient()
	if client == nil {
		return nil, ErrNotConnected
	}
	return client.Database(m.opts.Database), nil
}

// Ping runs a liveness query against the current client.
func (m *Manager) Ping(ctx context.Context) error {
	client := m.currentClient()
	if client == nil {
		return ErrNotConnected
	}
	if err := m.ping(ctx, client); err != nil {
		m.setState(Disconnected)
		return err
	}
	return nil
}

// Shutdown disconnects the client and rejects further connection attempts.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.shutdown = true
	client := m.client
	m.client = nil
	m.mu.Unlock()

	m.setState(Disconnected)
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: disconnect: %w", err)
	}
	slog.InfoContext(ctx, "database disconnected")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
