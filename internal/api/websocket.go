package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/tellhub/internal/infrastructure/config"
	"github.com/nerrad567/tellhub/internal/infrastructure/logging"
	"github.com/nerrad567/tellhub/internal/session"
)

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// No authentication or origin policy; the server is meant for a trusted LAN.
		return true
	},
}

// handleWebSocket upgrades the connection and runs it as a session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.admit() {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "server shutting down")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.wg.Done()
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	ws := newWSConn(conn, s.wsCfg, s.logger)
	sess := session.New(ws, session.Deps{
		Devices:     s.devices,
		Schedule:    s.schedule,
		DeviceHub:   s.deviceHub,
		ScheduleHub: s.scheduleHub,
		MaxInFlight: s.maxInFlight,
		Logger:      s.logger.Component("session"),
	})

	s.track(sess)
	go func() {
		defer s.wg.Done()
		defer s.untrack(sess)
		if err := sess.Serve(s.ctx); err != nil {
			s.logger.Debug("session ended", "session_id", sess.ID(), "error", err)
		}
	}()
}

// wsConn adapts a gorilla connection to session.Conn. Reads keep a deadline
// that pongs and inbound frames extend; a keepalive goroutine sends pings.
type wsConn struct {
	conn         *websocket.Conn
	logger       *logging.Logger
	pingInterval time.Duration
	pongWait     time.Duration

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newWSConn(conn *websocket.Conn, cfg config.WebSocketConfig, logger *logging.Logger) *wsConn {
	c := &wsConn{
		conn:         conn,
		logger:       logger,
		pingInterval: time.Duration(cfg.PingInterval) * time.Second,
		pongWait:     time.Duration(cfg.PongTimeout) * time.Second,
		done:         make(chan struct{}),
	}

	conn.SetReadLimit(int64(cfg.MaxMessageSize))
	c.extendReadDeadline()
	conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	go c.keepalive()
	return c
}

func (c *wsConn) extendReadDeadline() {
	//nolint:errcheck // Best-effort deadline; a failed read reports the problem
	c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.pongWait))
}

// ReadMessage returns the next text or binary frame.
func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			c.logger.Warn("websocket read error", "error", err, "remote", c.RemoteAddr())
		} else {
			c.logger.Debug("websocket closed", "error", err, "remote", c.RemoteAddr())
		}
		return nil, err
	}
	// Any client frame counts as liveness, even from peers that ignore pings.
	c.extendReadDeadline()
	return data, nil
}

// WriteMessage sends one text frame. The session serializes callers.
func (c *wsConn) WriteMessage(data []byte) error {
	//nolint:errcheck // Best-effort deadline; write error caught below
	c.conn.SetWriteDeadline(time.Now().Add(c.pongWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and releases the connection. Later calls are no-ops.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		//nolint:errcheck // Best-effort close frame; the peer may already be gone
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr returns the peer address.
func (c *wsConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *wsConn) keepalive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			// WriteControl may run concurrently with WriteMessage.
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.pongWait)); err != nil {
				c.logger.Debug("websocket ping failed", "error", err, "remote", c.RemoteAddr())
				return
			}
		}
	}
}
