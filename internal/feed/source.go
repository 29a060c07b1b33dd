// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jeranaias/heartline/internal/config"
)

// Feed errors.
var (
	// ErrUnknownSource is returned by Open for an unrecognised feed.source.
	ErrUnknownSource = errors.New("unknown feed source")

	// ErrFeedUnavailable wraps failures to reach the server or port.
	ErrFeedUnavailable = errors.New("feed unavailable")
)

// Source produces beats.
type Source interface {
	// Run sends beats to out until ctx is done or the source fails. It
	// returns nil on cancellation.
	Run(ctx context.Context, out chan<- Beat) error

	// Name identifies the source in logs and the monitor footer.
	Name() string
}

// Open builds the source named by cfg. The simulated source has no feed
// and returns nil.
func Open(cfg config.FeedConfig) (Source, error) {
	switch cfg.Source {
	case "", config.FeedSimulated:
		return nil, nil
	case config.FeedNATS:
		return NewNATSSource(cfg.NATSURL, cfg.NATSSubject), nil
	case config.FeedSerial:
		return NewSerialSource(cfg.SerialPort, cfg.SerialBaud), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// Pump runs src and forwards the beats gate allows to out. It closes out
// when src stops.
func Pump(ctx context.Context, src Source, gate *Gate, out chan<- Beat) error {
	defer close(out)

	raw := make(chan Beat, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- src.Run(ctx, raw)
		close(raw)
	}()

	for b := range raw {
		if gate != nil {
			if ok, reason := gate.Allow(b); !ok {
				log.Printf("FEED_DROPPED | source=%s bpm=%.1f reason=%s dropped=%d", src.Name(), b.BPM, reason, gate.Dropped())
				continue
			}
		}
		log.Printf("FEED_BEAT | source=%s bpm=%.1f", src.Name(), b.BPM)
		select {
		case out <- b:
		case <-ctx.Done():
		}
	}

	if err := <-errc; err != nil {
		return fmt.Errorf("feed %s: %w", src.Name(), err)
	}
	return nil
}
