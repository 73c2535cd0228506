package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"longevity/internal/fasting"
	"longevity/internal/protocol"
)

// DefaultBuffer is the number of events queued before new ones are dropped
const DefaultBuffer = 64

type event struct {
	name string
	send func(ctx context.Context) error
}

// Publisher forwards tracker events to the gateway without blocking the
// caller. Events are queued and sent by a single worker; a full queue drops
// the event with a warning.
type Publisher struct {
	client *Client
	events chan event
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewPublisher starts the delivery worker
func NewPublisher(client *Client, buffer int, log zerolog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	p := &Publisher{
		client: client,
		events: make(chan event, buffer),
		log:    log.With().Str("component", "gateway-publisher").Logger(),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.events {
		ctx, cancel := context.WithTimeout(context.Background(), p.client.timeout)
		if err := ev.send(ctx); err != nil {
			p.log.Warn().Err(err).Str("event", ev.name).Msg("Gateway delivery failed")
		} else {
			p.log.Debug().Str("event", ev.name).Msg("Gateway event delivered")
		}
		cancel()
	}
}

func (p *Publisher) enqueue(ev event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.log.Warn().Str("event", ev.name).Msg("Publisher closed, dropping event")
		return
	}

	select {
	case p.events <- ev:
	default:
		p.log.Warn().Str("event", ev.name).Msg("Gateway queue full, dropping event")
	}
}

// FastStarted implements fasting.Publisher
func (p *Publisher) FastStarted(s fasting.Session) {
	p.enqueue(event{name: "fast-started", send: func(ctx context.Context) error {
		return p.client.StartFast(ctx, s)
	}})
}

// FastEnded implements fasting.Publisher
func (p *Publisher) FastEnded(s fasting.Session) {
	p.enqueue(event{name: "fast-ended", send: func(ctx context.Context) error {
		return p.client.EndFast(ctx, s)
	}})
}

// FastCancelled implements fasting.Publisher
func (p *Publisher) FastCancelled(s fasting.Session) {
	p.enqueue(event{name: "fast-cancelled", send: func(ctx context.Context) error {
		return p.client.CancelFast(ctx, s)
	}})
}

func logEntry(item protocol.Item, day string) ProtocolLog {
	return ProtocolLog{ItemID: item.ID, Name: item.Name, Category: string(item.Category), Date: day}
}

// ItemLogged implements protocol.Publisher
func (p *Publisher) ItemLogged(item protocol.Item, day string) {
	entry := logEntry(item, day)
	p.enqueue(event{name: "protocol-log", send: func(ctx context.Context) error {
		return p.client.LogProtocol(ctx, entry)
	}})
}

// ItemUnlogged implements protocol.Publisher
func (p *Publisher) ItemUnlogged(item protocol.Item, day string) {
	entry := logEntry(item, day)
	p.enqueue(event{name: "protocol-unlog", send: func(ctx context.Context) error {
		return p.client.UnlogProtocol(ctx, entry)
	}})
}

// Close stops accepting events and waits up to timeout for the queue to drain
func (p *Publisher) Close(timeout time.Duration) {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-time.After(timeout):
		p.log.Warn().Int("pending", len(p.events)).Msg("Gateway queue not drained before shutdown")
	}
}

var (
	_ fasting.Publisher  = (*Publisher)(nil)
	_ protocol.Publisher = (*Publisher)(nil)
)
