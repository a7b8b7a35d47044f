package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/tellhub/internal/infrastructure/config"
	"github.com/nerrad567/tellhub/internal/infrastructure/logging"
	"github.com/nerrad567/tellhub/internal/notify"
	"github.com/nerrad567/tellhub/internal/session"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// and sessions to finish during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceService is the device registry as used by the server and its sessions.
type DeviceService interface {
	session.Devices
	HealthCheck(ctx context.Context) error
	Count() int
}

// HealthChecker is implemented by infrastructure with a liveness probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Session     config.SessionConfig
	Logger      *logging.Logger
	Devices     DeviceService
	Schedule    session.Schedule
	DeviceHub   *notify.Hub
	ScheduleHub *notify.Hub
	DB          HealthChecker // optional
	Version     string

	// Probes are extra named checks reported by /api/v1/health, such as
	// the MQTT and InfluxDB clients when those mirrors are enabled.
	Probes map[string]HealthChecker
}

// Server is the HTTP and WebSocket server.
//
// It is created with New and started with Start. Every accepted WebSocket
// connection runs as a session until the peer leaves or Close is called.
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	maxInFlight int
	logger      *logging.Logger
	devices     DeviceService
	schedule    session.Schedule
	deviceHub   *notify.Hub
	scheduleHub *notify.Hub
	db          HealthChecker
	probes      map[string]HealthChecker
	version     string

	server   *http.Server
	listener net.Listener
	handler  http.Handler

	// ctx bounds every session; cancel ends them all.
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards sessions and closed; wg.Add only happens under mu while
	// closed is false, so Close never races a late upgrade.
	mu       sync.Mutex
	sessions map[string]*session.Session
	closed   bool
	wg       sync.WaitGroup
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (logger, devices, schedule, both hubs)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Devices == nil:
		return nil, fmt.Errorf("device registry is required")
	case deps.Schedule == nil:
		return nil, fmt.Errorf("schedule service is required")
	case deps.DeviceHub == nil || deps.ScheduleHub == nil:
		return nil, fmt.Errorf("device and schedule hubs are required")
	}

	s := &Server{
		cfg:         deps.Config,
		wsCfg:       withWebSocketDefaults(deps.WS),
		maxInFlight: deps.Session.MaxInFlight,
		logger:      deps.Logger.Component("api"),
		devices:     deps.Devices,
		schedule:    deps.Schedule,
		deviceHub:   deps.DeviceHub,
		scheduleHub: deps.ScheduleHub,
		db:          deps.DB,
		probes:      deps.Probes,
		version:     deps.Version,
		sessions:    make(map[string]*session.Session),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the router, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start binds the listener and serves in a background goroutine.
//
// Parameters:
//   - ctx: Context for cancellation; when done, the server shuts down
//
// Returns:
//   - error: If the listener cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	s.logger.Info("API server starting", "address", ln.Addr().String(), "ws_path", s.wsCfg.Path)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	context.AfterFunc(ctx, s.cancel)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close stops accepting connections, ends every session and waits for them,
// bounded by the graceful shutdown timeout.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if s.server != nil {
		s.logger.Info("API server shutting down")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("shutting down API server: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions still open after shutdown timeout", "sessions", s.SessionCount())
	}
	return shutdownErr
}

// HealthCheck verifies the API server is running.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("api server closed")
	}
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// admit reserves a slot in wg for one session goroutine. It fails once
// Close has started.
func (s *Server) admit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ctx.Err() != nil {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) track(sess *session.Session) {
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
}

func (s *Server) untrack(sess *session.Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()
}

func withWebSocketDefaults(cfg config.WebSocketConfig) config.WebSocketConfig {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 8192
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 10
	}
	return cfg
}
