// Package broadcast streams explorer frames over a nanomsg PUB socket so a
// second renderer can watch a live session, and reads them back on the SUB
// side. Frames travel as snappy-compressed JSON behind a topic prefix.
package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/scout/pkg/clusters"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
	"github.com/dd0wney/scout/pkg/pubsub"
)

// DefaultAddr is where the explorer publishes when broadcasting is enabled.
const DefaultAddr = "tcp://127.0.0.1:5557"

// FramePrefix is the subscription topic of frame messages.
var FramePrefix = []byte("FRAME:")

// recvPoll bounds how long a Recv blocks before the watcher re-checks its
// context.
const recvPoll = 250 * time.Millisecond

// Encode serializes a frame into a broadcast message.
func Encode(f clusters.Frame) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	msg := make([]byte, 0, len(FramePrefix)+snappy.MaxEncodedLen(len(raw)))
	msg = append(msg, FramePrefix...)
	return append(msg, snappy.Encode(nil, raw)...), nil
}

// Decode parses a broadcast message.
func Decode(msg []byte) (clusters.Frame, error) {
	var f clusters.Frame
	if !bytes.HasPrefix(msg, FramePrefix) {
		return f, fmt.Errorf("decode frame: missing %q prefix", FramePrefix)
	}
	raw, err := snappy.Decode(nil, msg[len(FramePrefix):])
	if err != nil {
		return f, fmt.Errorf("decode frame: %w", err)
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// Publisher owns a PUB socket.
type Publisher struct {
	sock    mangos.Socket
	addr    string
	logger  logging.Logger
	metrics *metrics.Registry

	mu     sync.Mutex
	closed bool
}

// NewPublisher listens on addr.
func NewPublisher(addr string, logger logging.Logger, m *metrics.Registry) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	logger = logging.OrNop(logger).With(logging.Component("broadcast"))
	logger.Info("broadcasting frames", logging.String("addr", addr))
	return &Publisher{sock: sock, addr: addr, logger: logger, metrics: m}, nil
}

// Addr is the address the publisher listens on.
func (p *Publisher) Addr() string {
	return p.addr
}

// Publish sends one frame. Subscribers that are not keeping up miss frames;
// the socket never blocks the caller.
func (p *Publisher) Publish(f clusters.Frame) error {
	msg, err := Encode(f)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return mangos.ErrClosed
	}
	if err := p.sock.Send(msg); err != nil {
		return fmt.Errorf("publish frame %d: %w", f.Seq, err)
	}
	p.metrics.RecordFrame("broadcast")
	return nil
}

// Forward publishes every frame arriving on an in-process subscription
// until ctx is done or the subscription closes.
func (p *Publisher) Forward(ctx context.Context, frames *pubsub.Subscription[clusters.Frame]) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames.Channel():
			if !ok {
				return nil
			}
			if err := p.Publish(f); err != nil {
				if errors.Is(err, mangos.ErrClosed) {
					return err
				}
				p.logger.Warn("frame not broadcast", logging.Error(err))
			}
		}
	}
}

// Close shuts the socket.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.sock.Close()
}

// Watcher owns a SUB socket subscribed to frames.
type Watcher struct {
	sock    mangos.Socket
	logger  logging.Logger
	metrics *metrics.Registry
}

// Dial connects a watcher to a publisher at addr. Dialing succeeds before
// the publisher is up; the socket reconnects in the background.
func Dial(addr string, logger logging.Logger, m *metrics.Registry) (*Watcher, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, FramePrefix); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, recvPoll); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}
	if err := sock.DialOptions(addr, map[string]any{mangos.OptionDialAsynch: true}); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Watcher{
		sock:    sock,
		logger:  logging.OrNop(logger).With(logging.Component("broadcast")),
		metrics: m,
	}, nil
}

// Run receives frames and republishes them on ps under
// pubsub.TopicFrames until ctx is done. Undecodable messages are logged
// and skipped.
func (w *Watcher) Run(ctx context.Context, ps *pubsub.PubSub[clusters.Frame]) error {
	defer w.sock.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := w.sock.Recv()
		switch {
		case errors.Is(err, mangos.ErrRecvTimeout):
			continue
		case err != nil:
			return fmt.Errorf("receive frame: %w", err)
		}
		f, err := Decode(msg)
		if err != nil {
			w.logger.Warn("dropping broadcast message", logging.Error(err))
			continue
		}
		w.metrics.RecordFrame("watch")
		ps.Publish(pubsub.TopicFrames, f)
	}
}
