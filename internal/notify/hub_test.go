package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/tellhub/internal/protocol"
)

// recorder is a Subscriber that appends every push to a shared log.
type recorder struct {
	id   string
	log  *[]string
	mu   *sync.Mutex
	err  error
	hook func()
	got  []protocol.Message
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Push(msg protocol.Message) error {
	if r.hook != nil {
		r.hook()
	}
	r.mu.Lock()
	*r.log = append(*r.log, r.id)
	r.got = append(r.got, msg)
	r.mu.Unlock()
	return r.err
}

type panicker struct{ id string }

func (p panicker) ID() string                  { return p.id }
func (p panicker) Push(protocol.Message) error { panic("boom") }

func staticSource(kind protocol.Kind) (Source, *atomic.Int32) {
	calls := &atomic.Int32{}
	return func(context.Context) (protocol.Message, error) {
		calls.Add(1)
		return protocol.New(kind, "", nil)
	}, calls
}

func newRecorders(ids ...string) ([]*recorder, *[]string) {
	var log []string
	mu := &sync.Mutex{}
	out := make([]*recorder, 0, len(ids))
	for _, id := range ids {
		out = append(out, &recorder{id: id, log: &log, mu: mu})
	}
	return out, &log
}

func TestHub_SubscribeDuplicate(t *testing.T) {
	src, _ := staticSource(protocol.KindDeviceList)
	h := NewHub("devices", src)
	recs, _ := newRecorders("a")

	assert.True(t, h.Subscribe(recs[0]))
	assert.False(t, h.Subscribe(recs[0]), "second subscribe must be rejected")
	assert.Equal(t, 1, h.Len())
}

func TestHub_NotifyOrderAndSingleBuild(t *testing.T) {
	src, calls := staticSource(protocol.KindDeviceList)
	h := NewHub("devices", src)
	recs, log := newRecorders("a", "b", "c")
	for _, r := range recs {
		require.True(t, h.Subscribe(r))
	}

	h.Notify(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, *log)
	assert.Equal(t, int32(1), calls.Load(), "message built once per notification")
	for _, r := range recs {
		require.Len(t, r.got, 1)
		assert.Equal(t, protocol.KindDeviceList, r.got[0].Kind)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	src, _ := staticSource(protocol.KindSchedule)
	h := NewHub("schedule", src)
	recs, log := newRecorders("a", "b", "c")
	for _, r := range recs {
		h.Subscribe(r)
	}

	h.Unsubscribe("b")
	h.Unsubscribe("missing")
	h.Notify(context.Background())

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"a", "c"}, *log)
}

func TestHub_ResubscribeGoesToBack(t *testing.T) {
	src, _ := staticSource(protocol.KindSchedule)
	h := NewHub("schedule", src)
	recs, log := newRecorders("a", "b")
	h.Subscribe(recs[0])
	h.Subscribe(recs[1])

	h.Unsubscribe("a")
	h.Subscribe(recs[0])
	h.Notify(context.Background())

	assert.Equal(t, []string{"b", "a"}, *log)
}

func TestHub_FailingSubscriberDoesNotStopDelivery(t *testing.T) {
	src, _ := staticSource(protocol.KindDeviceList)
	h := NewHub("devices", src)
	recs, log := newRecorders("a", "b")
	recs[0].err = errors.New("connection reset")

	h.Subscribe(recs[0])
	h.Subscribe(panicker{id: "p"})
	h.Subscribe(recs[1])

	assert.NotPanics(t, func() { h.Notify(context.Background()) })
	assert.Equal(t, []string{"a", "b"}, *log)
}

func TestHub_SourceFailurePushesNothing(t *testing.T) {
	h := NewHub("devices", func(context.Context) (protocol.Message, error) {
		return protocol.Message{}, errors.New("tdtool failed")
	})
	recs, log := newRecorders("a")
	h.Subscribe(recs[0])

	h.Notify(context.Background())

	assert.Empty(t, *log)
}

func TestHub_NotifyWithNoSubscribers(t *testing.T) {
	src, calls := staticSource(protocol.KindDeviceList)
	h := NewHub("devices", src)

	h.Notify(context.Background())
	assert.Equal(t, int32(1), calls.Load())
}

func TestHub_SubscriberMayUnsubscribeDuringDelivery(t *testing.T) {
	src, _ := staticSource(protocol.KindDeviceList)
	h := NewHub("devices", src)
	recs, log := newRecorders("a", "b")
	recs[0].hook = func() { h.Unsubscribe("a") }
	h.Subscribe(recs[0])
	h.Subscribe(recs[1])

	h.Notify(context.Background())

	assert.Equal(t, []string{"a", "b"}, *log)
	assert.Equal(t, 1, h.Len())
}

func TestHub_ConcurrentUse(t *testing.T) {
	src, _ := staticSource(protocol.KindDeviceList)
	h := NewHub("devices", src)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs, _ := newRecorders(string(rune('a' + i)))
			h.Subscribe(recs[0])
			h.Notify(context.Background())
			h.Unsubscribe(recs[0].ID())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, h.Len())
}
