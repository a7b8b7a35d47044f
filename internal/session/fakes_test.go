package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/notify"
	"github.com/nerrad567/tellhub/internal/protocol"
	"github.com/nerrad567/tellhub/internal/schedule"
)

var errConnClosed = errors.New("use of closed connection")

// fakeConn is an in-memory Conn. Inbound frames are fed through Send;
// outbound frames are collected and can be awaited with Next.
type fakeConn struct {
	in       chan []byte
	out      chan []byte
	closedCh chan struct{}
	once     sync.Once

	writing    atomic.Bool
	overlapped atomic.Bool
	writes     atomic.Int32
	writeErr   error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:       make(chan []byte, 16),
		out:      make(chan []byte, 256),
		closedCh: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data, ok := <-c.in:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	case <-c.closedCh:
		return nil, errConnClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	if !c.writing.CompareAndSwap(false, true) {
		c.overlapped.Store(true)
	}
	defer c.writing.Store(false)

	select {
	case <-c.closedCh:
		return errConnClosed
	default:
	}
	if c.writeErr != nil {
		return c.writeErr
	}
	// Widen the window for overlapping writers.
	time.Sleep(100 * time.Microsecond)
	c.writes.Add(1)
	c.out <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closedCh) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "198.51.100.7:50000" }

// Send feeds one raw frame to the session.
func (c *fakeConn) Send(frame string) { c.in <- []byte(frame) }

// Hangup simulates the peer closing the stream.
func (c *fakeConn) Hangup() { close(c.in) }

// Next waits for the next outbound message.
func (c *fakeConn) Next(t *testing.T) protocol.Message {
	t.Helper()
	select {
	case data := <-c.out:
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound message")
		return protocol.Message{}
	}
}

// Quiet asserts nothing is written for a short while.
func (c *fakeConn) Quiet(t *testing.T) {
	t.Helper()
	select {
	case data := <-c.out:
		t.Fatalf("unexpected outbound message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeDevices behaves like the registry: positional lookup, toggle, then
// notify the device hub even when the switch command fails.
type fakeDevices struct {
	mu         sync.Mutex
	devices    []device.Device
	refreshErr error
	setErr     error
	partial    bool
	block      chan struct{}
	entered    chan struct{}
	hub        *notify.Hub
}

func (f *fakeDevices) Refresh(context.Context) ([]device.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	out := make([]device.Device, len(f.devices))
	copy(out, f.devices)
	return out, nil
}

func (f *fakeDevices) SetStatus(ctx context.Context, id int) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	if id < 1 || id > len(f.devices) {
		f.mu.Unlock()
		return device.ErrDeviceNotFound
	}
	setErr := f.setErr
	if setErr == nil {
		f.devices[id-1].Status = !f.devices[id-1].Status
	}
	f.mu.Unlock()

	f.hub.Notify(ctx)
	if setErr != nil {
		return errors.Join(device.ErrCommand, setErr)
	}
	return nil
}

func (f *fakeDevices) RegisterDevice(ctx context.Context, c device.Candidate) (device.Device, error) {
	if err := c.Validate(); err != nil {
		return device.Device{}, err
	}

	f.mu.Lock()
	dev := device.Device{ID: len(f.devices) + 1, Name: c.Name, Model: c.Model, Protocol: c.Protocol}
	f.devices = append(f.devices, dev)
	partial := f.partial
	f.mu.Unlock()

	f.hub.Notify(ctx)
	if partial {
		return device.Device{}, device.ErrPartialRegistration
	}
	return dev, nil
}

// memRepo is an in-memory schedule.Repository.
type memRepo struct {
	mu     sync.Mutex
	events []schedule.Event
}

func (r *memRepo) List(context.Context) ([]schedule.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schedule.Event, len(r.events))
	copy(out, r.events)
	return out, nil
}

func (r *memRepo) Create(_ context.Context, ev *schedule.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.CreatedAt = time.Now().UTC()
	r.events = append(r.events, *ev)
	return nil
}

// recordingLogger keeps the messages logged at info level.
type recordingLogger struct {
	mu   sync.Mutex
	info []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	l.info = append(l.info, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) infos() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.info...)
}

// harness wires fakes to real hubs and a real schedule service.
type harness struct {
	devices     *fakeDevices
	schedule    *schedule.Service
	deviceHub   *notify.Hub
	scheduleHub *notify.Hub
	maxInFlight int
}

func newHarness() *harness {
	h := &harness{
		devices: &fakeDevices{devices: []device.Device{
			{ID: 1, Name: "lamp"},
			{ID: 2, Name: "heater", Status: true},
		}},
		schedule: schedule.NewService(&memRepo{}),
	}
	h.deviceHub = notify.NewHub("devices", func(ctx context.Context) (protocol.Message, error) {
		devices, err := h.devices.Refresh(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		return protocol.DeviceList("", devices)
	})
	h.scheduleHub = notify.NewHub("schedule", func(ctx context.Context) (protocol.Message, error) {
		snap, err := h.schedule.GetSchedule(ctx)
		if err != nil {
			return protocol.Message{}, err
		}
		return protocol.Schedule("", snap.Events)
	})
	h.devices.hub = h.deviceHub
	h.schedule.SetNotifier(h.scheduleHub)
	return h
}

func (h *harness) deps() Deps {
	return Deps{
		Devices:     h.devices,
		Schedule:    h.schedule,
		DeviceHub:   h.deviceHub,
		ScheduleHub: h.scheduleHub,
		MaxInFlight: h.maxInFlight,
	}
}

// start serves a new session and waits until it is subscribed to both hubs.
func (h *harness) start(t *testing.T) (*Session, *fakeConn, <-chan error) {
	t.Helper()

	wantSubs := h.deviceHub.Len() + 1
	conn := newFakeConn()
	s := New(conn, h.deps())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(context.Background()) }()

	require.Eventually(t, func() bool {
		return h.deviceHub.Len() == wantSubs && h.scheduleHub.Len() == wantSubs
	}, 2*time.Second, time.Millisecond)
	return s, conn, errCh
}

func waitServe(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}
