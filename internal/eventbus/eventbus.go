// Package eventbus implements spec §4's Command/Event Bus: a broadcast
// channel decoupling core mutations from consumers (IPC subscribers,
// renderer-damage hints). This is the one place in the core packages
// where genuine cross-goroutine concurrency exists — the single
// event-loop goroutine emits, IPC server goroutines drain — so, unlike
// registry/layout/workspace/voutput/router, a subscriber's queue is
// mutex-guarded.
package eventbus

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Capacity is the fixed buffer size per subscriber (spec §9 design note
// "Event bus"). When full, the oldest event is dropped to make room for
// the newest, favouring liveness over completeness for slow consumers.
const Capacity = 100

// Kind identifies what happened. Consumers type-switch or inspect
// Payload according to Kind; the bus itself never interprets payloads.
type Kind string

const (
	WindowCreated       Kind = "window_created"
	WindowRemoved       Kind = "window_removed"
	WindowFocused       Kind = "window_focused"
	WindowFullscreened  Kind = "window_fullscreened"
	WorkspaceSwitched   Kind = "workspace_switched"
	OutputConfigChanged Kind = "output_config_changed"
	LayoutChanged       Kind = "layout_changed"
)

// Event is one item broadcast on the bus. Seq increases monotonically
// per-bus across all emitted events, giving subscribers a total order
// even if two events of the same Kind carry equal payloads.
type Event struct {
	Seq     uint64
	Kind    Kind
	Payload any
}

// Bus fans events out to any number of subscribers.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]*Subscriber
	nextID      int
	seq         uint64
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int]*Subscriber)}
}

// Subscribe registers a new consumer and returns its id (for
// Unsubscribe) and its queue.
func (b *Bus) Subscribe() (int, *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := newSubscriber()
	b.subscribers[id] = sub
	return id, sub
}

// Unsubscribe removes a consumer; further Emit calls no longer reach it.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, id)
}

// Emit broadcasts kind/payload to every current subscriber. Delivery to
// each subscriber's queue happens concurrently via errgroup so one
// subscriber's lock contention cannot delay another's, but Emit still
// blocks until every subscriber has the event queued — this is what
// preserves the per-source ordering guarantee (spec §5) across
// sequential Emit calls from the single-threaded event loop.
func (b *Bus) Emit(kind Kind, payload any) {
	b.mu.Lock()
	b.seq++
	ev := Event{Seq: b.seq, Kind: kind, Payload: payload}
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	g, _ := errgroup.WithContext(context.Background())
	for _, s := range subs {
		s := s
		g.Go(func() error {
			s.push(ev)
			return nil
		})
	}
	_ = g.Wait()
}

// Subscriber is a capacity-bounded, drop-oldest event queue.
type Subscriber struct {
	mu     sync.Mutex
	buf    []Event
	notify chan struct{}
}

func newSubscriber() *Subscriber {
	return &Subscriber{notify: make(chan struct{}, 1)}
}

func (s *Subscriber) push(ev Event) {
	s.mu.Lock()
	if len(s.buf) >= Capacity {
		s.buf = s.buf[1:]
	}
	s.buf = append(s.buf, ev)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every event currently queued, oldest first.
func (s *Subscriber) Drain() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return nil
	}
	out := s.buf
	s.buf = nil
	return out
}

// Wait blocks until at least one event has been pushed since the last
// Drain, or ctx is done.
func (s *Subscriber) Wait(ctx context.Context) error {
	select {
	case <-s.notify:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
