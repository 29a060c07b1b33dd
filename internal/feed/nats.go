// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// =============================================================================
// CONNECTION
// =============================================================================

// Connect dials a NATS server with heartline's reconnect policy.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: nats %s: %w", ErrFeedUnavailable, url, err)
	}
	return nc, nil
}

// =============================================================================
// NATS SOURCE
// =============================================================================

// NATSSource receives beats published on a subject.
type NATSSource struct {
	url     string
	subject string
	now     func() time.Time
	ready   chan struct{}
}

// NewNATSSource creates a source for subject on the server at url.
func NewNATSSource(url, subject string) *NATSSource {
	return &NATSSource{
		url:     url,
		subject: subject,
		now:     time.Now,
		ready:   make(chan struct{}),
	}
}

// Name implements Source.
func (s *NATSSource) Name() string {
	return "nats:" + s.subject
}

// Ready is closed once the subscription is registered with the server.
func (s *NATSSource) Ready() <-chan struct{} {
	return s.ready
}

// Run implements Source.
func (s *NATSSource) Run(ctx context.Context, out chan<- Beat) error {
	nc, err := Connect(s.url, "heartline-monitor")
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.url, err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(s.subject, msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	defer sub.Unsubscribe()

	if err := nc.Flush(); err != nil {
		return fmt.Errorf("flush subscription: %w", err)
	}
	close(s.ready)
	log.Printf("FEED_CONNECTED | source=%s url=%s", s.Name(), s.url)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-msgs:
			b, err := ParseBeat(string(msg.Data), s.now())
			if err != nil {
				log.Printf("FEED_PARSE_ERROR | source=%s error=%v", s.Name(), err)
				continue
			}
			b.Source = s.Name()
			select {
			case out <- b:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// =============================================================================
// PUBLISHER
// =============================================================================

// Publisher sends beats to a subject. The publish command uses it to drive
// a remote monitor.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to url.
func NewPublisher(url, subject string) (*Publisher, error) {
	nc, err := Connect(url, "heartline-publisher")
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish sends one beat.
func (p *Publisher) Publish(b Beat) error {
	data, err := b.Encode()
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Flush waits until the server has processed everything published.
func (p *Publisher) Flush() error {
	return p.nc.Flush()
}

// RunAuto publishes a beat at bpm every 60/bpm seconds until ctx is done.
func (p *Publisher) RunAuto(ctx context.Context, bpm float64) error {
	return p.RunCount(ctx, bpm, 0)
}

// RunCount is RunAuto that stops after count beats. A count of 0 or less
// runs until ctx is done.
func (p *Publisher) RunCount(ctx context.Context, bpm float64, count int) error {
	if bpm <= 0 {
		return fmt.Errorf("bpm must be > 0, got %g", bpm)
	}
	ticker := time.NewTicker(time.Duration(float64(time.Minute) / bpm))
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			return p.Flush()
		case now := <-ticker.C:
			if err := p.Publish(Beat{BPM: bpm, At: now}); err != nil {
				return err
			}
			sent++
			if count > 0 && sent >= count {
				return p.Flush()
			}
		}
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
