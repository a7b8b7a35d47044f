package device

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/nerrad567/tellhub/internal/process"
)

// Logger defines the logging interface used by the Registry.
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

// Notifier is told when device state may have changed.
type Notifier interface {
	Notify(ctx context.Context)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context) {}

// Config holds the telldus settings the registry needs.
type Config struct {
	// TDTool is the tdtool binary or wrapper.
	TDTool string

	// ConfigFile is the telldusd configuration new devices are appended to.
	ConfigFile string

	// RestartCommand restarts telldusd after ConfigFile changes.
	RestartCommand string

	// House is written as the house parameter of new devices.
	House string
}

// Registry is the authoritative device snapshot and the only path to the
// external device commands.
//
// All public methods are thread-safe.
type Registry struct {
	runner process.Runner
	cfg    Config

	// seqMu serializes every external command sequence and the snapshot
	// swap that ends it.
	seqMu sync.Mutex

	// mu guards snapshot.
	mu       sync.RWMutex
	snapshot []Device

	notifier Notifier
	logger   Logger
}

// NewRegistry creates a registry that drives telldus through runner.
// The snapshot is empty until the first Refresh.
func NewRegistry(runner process.Runner, cfg Config) *Registry {
	if cfg.TDTool == "" {
		cfg.TDTool = "tdtool"
	}
	return &Registry{
		runner:   runner,
		cfg:      cfg,
		snapshot: []Device{},
		notifier: noopNotifier{},
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetNotifier sets the notifier called after mutating sequences.
// It must be set before the registry is shared between goroutines.
func (r *Registry) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	r.notifier = n
}

// Refresh re-runs the device listing and installs the parsed result as the
// new snapshot. On a command or parse failure the previous snapshot is kept.
// The returned slice is a copy.
func (r *Registry) Refresh(ctx context.Context) ([]Device, error) {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()

	devices, err := r.refreshLocked(ctx)
	if err != nil {
		return nil, err
	}
	return copyDevices(devices), nil
}

// refreshLocked must be called with seqMu held.
func (r *Registry) refreshLocked(ctx context.Context) ([]Device, error) {
	out, err := r.runner.Run(ctx, r.listCommand())
	if err != nil {
		r.logger.Warn("device listing failed", "error", err)
		return nil, fmt.Errorf("%w: listing devices: %w", ErrCommand, err)
	}

	devices, err := ParseListing(out)
	if err != nil {
		r.logger.Warn("device listing unparseable, keeping previous snapshot", "error", err)
		return nil, err
	}

	r.mu.Lock()
	r.snapshot = devices
	r.mu.Unlock()

	r.logger.Debug("device snapshot refreshed", "count", len(devices))
	return devices, nil
}

// SetStatus refreshes the listing and switches device id to the inverse of
// its current status.
//
// An id outside [1, N] returns ErrDeviceNotFound and runs no switch command.
// Once the switch command has been issued the notifier is called whether or
// not it succeeded; a failure is returned as ErrCommand.
func (r *Registry) SetStatus(ctx context.Context, id int) error {
	r.seqMu.Lock()

	devices, err := r.refreshLocked(ctx)
	if err != nil {
		r.seqMu.Unlock()
		return err
	}

	if id < 1 || id > len(devices) {
		r.seqMu.Unlock()
		return fmt.Errorf("%w: id %d (have %d devices)", ErrDeviceNotFound, id, len(devices))
	}

	target := devices[id-1]
	on := !target.Status

	_, cmdErr := r.runner.Run(ctx, r.switchCommand(id, on))
	r.seqMu.Unlock()

	r.notifier.Notify(ctx)

	if cmdErr != nil {
		r.logger.Warn("device switch failed", "device_id", id, "on", on, "error", cmdErr)
		return fmt.Errorf("%w: switching device %d: %w", ErrCommand, id, cmdErr)
	}

	r.logger.Info("device switched", "device_id", id, "name", target.Name, "on", on)
	return nil
}

// RegisterDevice adds a new device to telldusd.
//
// The sequence is: refresh, append a block with id N+1 to the configuration
// file, restart telldusd, send the learn command. There is no rollback. A
// failure after the append returns ErrPartialRegistration.
//
// The returned Device carries the assigned id and is off.
func (r *Registry) RegisterDevice(ctx context.Context, c Candidate) (Device, error) {
	if err := c.Validate(); err != nil {
		return Device{}, err
	}

	dev, mutated, err := r.register(ctx, c)
	if mutated {
		r.notifier.Notify(ctx)
	}
	if err != nil {
		return Device{}, err
	}

	r.logger.Info("device registered", "device_id", dev.ID, "name", dev.Name, "protocol", dev.Protocol, "model", dev.Model)
	return dev, nil
}

// register runs the registration sequence under seqMu. mutated reports
// whether a side-effecting step was attempted.
func (r *Registry) register(ctx context.Context, c Candidate) (dev Device, mutated bool, err error) {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()

	devices, err := r.refreshLocked(ctx)
	if err != nil {
		return Device{}, false, err
	}

	id := len(devices) + 1
	dev = Device{ID: id, Name: c.Name, Model: c.Model, Protocol: c.Protocol}

	if err := r.runner.AppendToFile(r.cfg.ConfigFile, ConfigBlock(id, r.cfg.House, c)); err != nil {
		return Device{}, true, fmt.Errorf("%w: appending device %d to %s: %w", ErrCommand, id, r.cfg.ConfigFile, err)
	}

	if r.cfg.RestartCommand != "" {
		if _, err := r.runner.Run(ctx, r.cfg.RestartCommand); err != nil {
			r.logger.Error("telldusd restart failed after config append", "device_id", id, "error", err)
			return Device{}, true, fmt.Errorf("%w: restarting telldusd for device %d: %w", ErrPartialRegistration, id, err)
		}
	}

	if _, err := r.runner.Run(ctx, r.learnCommand(id)); err != nil {
		r.logger.Error("learn command failed after config append", "device_id", id, "error", err)
		return Device{}, true, fmt.Errorf("%w: learning device %d: %w", ErrPartialRegistration, id, err)
	}

	return dev, true, nil
}

// HealthCheck runs the listing and reports whether it parses.
func (r *Registry) HealthCheck(ctx context.Context) error {
	_, err := r.Refresh(ctx)
	return err
}

// Devices returns a copy of the current snapshot without running a command.
func (r *Registry) Devices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyDevices(r.snapshot)
}

// Count returns the number of devices in the current snapshot.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshot)
}

func (r *Registry) listCommand() string {
	return r.cfg.TDTool + " --list-devices"
}

func (r *Registry) switchCommand(id int, on bool) string {
	flag := "--off"
	if on {
		flag = "--on"
	}
	return r.cfg.TDTool + " " + flag + " " + strconv.Itoa(id)
}

func (r *Registry) learnCommand(id int) string {
	return r.cfg.TDTool + " --learn " + strconv.Itoa(id)
}
