// Package pubsub fans values out to in-process subscribers by topic. The
// explorer publishes every frame and status change here so several
// renderers, and the network broadcaster, can follow one canvas.
package pubsub

import (
	"context"
	"errors"
	"sync"
)

// Topics used by the explorer binaries.
const (
	TopicFrames = "frames"
	TopicStatus = "status"
)

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 16

// ErrShutdown is returned by Subscribe after Shutdown.
var ErrShutdown = errors.New("pubsub: shut down")

// PubSub delivers values of type T to the subscribers of a topic. Publish
// never blocks: when a subscriber's queue is full its oldest value is
// discarded, so a slow renderer always catches up to the latest frame.
type PubSub[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription[T]]struct{}
	buffer      int
	shutdown    chan struct{}
	isShutdown  bool
}

// Subscription is one subscriber's queue on a topic.
type Subscription[T any] struct {
	topic     string
	channel   chan T
	ps        *PubSub[T]
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu      sync.Mutex
	dropped int
}

// New creates a PubSub whose subscriptions queue up to buffer values; a
// buffer below 1 uses DefaultBuffer.
func New[T any](buffer int) *PubSub[T] {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &PubSub[T]{
		subscribers: make(map[string]map[*Subscription[T]]struct{}),
		buffer:      buffer,
		shutdown:    make(chan struct{}),
	}
}

// Subscribe creates a subscription to topic that ends when ctx is done.
func (ps *PubSub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, ps.buffer),
		ps:      ps,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.isShutdown {
		ps.mu.Unlock()
		cancel()
		return nil, ErrShutdown
	}
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription[T]]struct{})
	}
	ps.subscribers[topic][sub] = struct{}{}
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
		}
	}()

	return sub, nil
}

// Publish sends v to every subscriber of topic and reports how many
// received it.
func (ps *PubSub[T]) Publish(topic string, v T) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	if ps.isShutdown {
		return 0
	}
	for sub := range ps.subscribers[topic] {
		sub.offer(v)
	}
	return len(ps.subscribers[topic])
}

// SubscriberCount returns the number of subscribers of topic.
func (ps *PubSub[T]) SubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Shutdown closes every subscription. Later publishes are dropped.
func (ps *PubSub[T]) Shutdown() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.isShutdown {
		return
	}
	ps.isShutdown = true
	close(ps.shutdown)

	for topic, subs := range ps.subscribers {
		for sub := range subs {
			sub.cancel()
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
}

// Channel returns the subscription's queue. It is closed on Unsubscribe
// and on Shutdown.
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Dropped reports how many values were discarded because the queue was
// full.
func (s *Subscription[T]) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()
	if subs := s.ps.subscribers[s.topic]; subs != nil {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}
	s.close()
}

// offer enqueues v, evicting the oldest value when the queue is full. It
// runs under the PubSub read lock, so the channel cannot close meanwhile.
func (s *Subscription[T]) offer(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		select {
		case s.channel <- v:
			return
		default:
		}
		select {
		case <-s.channel:
			s.dropped++
		default:
		}
	}
}

func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
