package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/notify"
	"github.com/nerrad567/tellhub/internal/protocol"
	"github.com/nerrad567/tellhub/internal/schedule"
)

// DefaultMaxInFlight bounds concurrent handlers when Deps leaves it unset.
const DefaultMaxInFlight = 16

// Conn is a message-oriented, bidirectional transport. Reads happen on one
// goroutine only; writes are serialized by the session.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() string
}

// Devices is the device registry as seen by a session.
type Devices interface {
	Refresh(ctx context.Context) ([]device.Device, error)
	SetStatus(ctx context.Context, id int) error
	RegisterDevice(ctx context.Context, c device.Candidate) (device.Device, error)
}

// Schedule is the schedule collaborator as seen by a session.
type Schedule interface {
	GetSchedule(ctx context.Context) (schedule.Snapshot, error)
	InsertEvent(ctx context.Context, ev schedule.Event) (schedule.Event, error)
}

// Hub is the subscription side of a notification hub.
type Hub interface {
	Subscribe(s notify.Subscriber) bool
	Unsubscribe(id string)
}

// Logger is the logging surface used by sessions.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps are the shared collaborators every session uses.
type Deps struct {
	Devices     Devices
	Schedule    Schedule
	DeviceHub   Hub
	ScheduleHub Hub
	MaxInFlight int
	Logger      Logger
}

// Session is one connected client.
type Session struct {
	id     string
	conn   Conn
	deps   Deps
	sem    *semaphore.Weighted
	logger Logger

	state atomic.Int32

	// writeMu serializes transport writes and guards closed.
	writeMu sync.Mutex
	closed  bool

	inflight sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// New creates a session in the Connecting state.
func New(conn Conn, deps Deps) *Session {
	if deps.MaxInFlight < 1 {
		deps.MaxInFlight = DefaultMaxInFlight
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	s := &Session{
		id:   uuid.NewString(),
		conn: conn,
		deps: deps,
		sem:  semaphore.NewWeighted(int64(deps.MaxInFlight)),
		done: make(chan struct{}),
	}
	s.logger = &sessionLogger{base: logger, id: s.id, remote: conn.RemoteAddr()}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the client address.
func (s *Session) RemoteAddr() string { return s.conn.RemoteAddr() }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Done is closed once the session reaches Closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Serve activates the session and runs the receive loop until the transport
// fails, the peer goes away or ctx is cancelled. It tears the session down
// before returning.
//
// A session whose context is already cancelled goes straight to Closed
// without subscribing.
func (s *Session) Serve(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if s.state.CompareAndSwap(int32(StateConnecting), int32(StateClosing)) {
			s.finish()
			return err
		}
		return s.notServable()
	}
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return s.notServable()
	}

	s.deps.DeviceHub.Subscribe(s)
	s.deps.ScheduleHub.Subscribe(s)
	s.logger.Info("session active")

	// Cancellation unblocks the pending read by closing the transport.
	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	// Handlers outlive the receive loop; transport loss must not kill a
	// half-finished external command sequence.
	handlerCtx := context.WithoutCancel(ctx)

	s.receive(ctx, handlerCtx)
	s.teardown()
	return nil
}

func (s *Session) notServable() error {
	if s.State() >= StateClosing {
		return ErrClosed
	}
	return ErrAlreadyServed
}

func (s *Session) receive(ctx, handlerCtx context.Context) {
	for {
		data, err := s.conn.ReadMessage()
		if err != nil {
			s.logger.Debug("receive loop ended", "error", err)
			return
		}

		msg, err := protocol.Decode(data)
		if err == nil && !protocol.IsRequest(msg.Kind) {
			err = fmt.Errorf("%w: %q is not a request", protocol.ErrDecode, msg.Kind)
		}
		if err != nil {
			s.logger.Warn("undecodable message", "error", err, "size", len(data))
			s.reply(protocol.NewError(msg.ID, msg.Kind, errorCode(err), err.Error()))
			continue
		}

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			defer s.sem.Release(1)
			s.handle(handlerCtx, msg)
		}()
	}
}

// Close tears the session down. A session that was never served goes
// straight to Closed. Close on a serving session closes the transport, which
// ends Serve.
func (s *Session) Close() error {
	if s.state.CompareAndSwap(int32(StateConnecting), int32(StateClosing)) {
		s.finish()
		return nil
	}
	return s.conn.Close()
}

// Wait blocks until every in-flight handler has returned.
func (s *Session) Wait() { s.inflight.Wait() }

func (s *Session) teardown() {
	s.state.Store(int32(StateClosing))
	s.deps.DeviceHub.Unsubscribe(s.id)
	s.deps.ScheduleHub.Unsubscribe(s.id)
	s.finish()
	s.logger.Info("session closed")
}

// finish marks the session closed for writers, releases the transport and
// enters Closed.
func (s *Session) finish() {
	s.writeMu.Lock()
	s.closed = true
	s.writeMu.Unlock()

	if err := s.conn.Close(); err != nil {
		s.logger.Debug("closing transport", "error", err)
	}
	s.state.Store(int32(StateClosed))
	s.doneOnce.Do(func() { close(s.done) })
}

// Push sends msg to this client. It is safe for concurrent use and is how
// hubs deliver notifications.
func (s *Session) Push(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.conn.WriteMessage(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// reply pushes a direct response and logs a failure.
func (s *Session) reply(msg protocol.Message) {
	if err := s.Push(msg); err != nil {
		level := s.logger.Warn
		if errors.Is(err, ErrClosed) {
			level = s.logger.Debug
		}
		level("reply not delivered", "kind", string(msg.Kind), "error", err)
	}
}

// sessionLogger adds the session identity to every record.
type sessionLogger struct {
	base   Logger
	id     string
	remote string
}

func (l *sessionLogger) with(args []any) []any {
	return append([]any{"session_id", l.id, "remote", l.remote}, args...)
}

func (l *sessionLogger) Debug(msg string, args ...any) { l.base.Debug(msg, l.with(args)...) }
func (l *sessionLogger) Info(msg string, args ...any)  { l.base.Info(msg, l.with(args)...) }
func (l *sessionLogger) Warn(msg string, args ...any)  { l.base.Warn(msg, l.with(args)...) }
func (l *sessionLogger) Error(msg string, args ...any) { l.base.Error(msg, l.with(args)...) }
