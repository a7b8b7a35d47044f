package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notifier is told after the schedule changes.
type Notifier interface {
	Notify(ctx context.Context)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context) {}

// Logger is the logging surface used by the service.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Service is the schedule collaborator used by client sessions.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   Logger
}

// NewService creates a service over repo.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		notifier: noopNotifier{},
		logger:   noopLogger{},
	}
}

// SetNotifier sets the hub told about schedule changes. Nil disables notification.
func (s *Service) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

// SetLogger sets the logger.
func (s *Service) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	s.logger = l
}

// GetSchedule returns the full schedule.
func (s *Service) GetSchedule(ctx context.Context) (Snapshot, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing schedule: %w", err)
	}
	if events == nil {
		events = []Event{}
	}
	return Snapshot{Events: events}, nil
}

// InsertEvent validates ev, stores it under a new ID and notifies.
// The stored event is returned.
func (s *Service) InsertEvent(ctx context.Context, ev Event) (Event, error) {
	ev = normalize(ev)
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}

	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Time{}
	if err := s.repo.Create(ctx, &ev); err != nil {
		return Event{}, err
	}

	s.logger.Info("scheduled event added",
		"event_id", ev.ID,
		"device_id", ev.DeviceID,
		"action", string(ev.Action),
		"at", ev.At.Format(time.RFC3339),
		"repeat", string(ev.Repeat),
	)
	s.notifier.Notify(ctx)
	return ev, nil
}
