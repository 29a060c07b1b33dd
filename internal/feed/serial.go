// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// DefaultBaud is the pulse sensor line speed.
const DefaultBaud = 115200

// SerialSource reads newline-delimited rates from a pulse sensor.
type SerialSource struct {
	port string
	mode *serial.Mode
	open func(name string, mode *serial.Mode) (serial.Port, error)
	now  func() time.Time
}

// NewSerialSource creates a source on port at baud, 8N1.
func NewSerialSource(port string, baud int) *SerialSource {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &SerialSource{
		port: port,
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: serial.Open,
		now:  time.Now,
	}
}

// Name implements Source.
func (s *SerialSource) Name() string {
	return "serial:" + s.port
}

// Run implements Source. It returns nil when the port reaches end of input
// or ctx is cancelled.
func (s *SerialSource) Run(ctx context.Context, out chan<- Beat) error {
	port, err := s.open(s.port, s.mode)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrFeedUnavailable, s.port, err)
	}

	var closeOnce sync.Once
	closePort := func() { closeOnce.Do(func() { port.Close() }) }
	defer closePort()

	// Closing the port unblocks a pending Read.
	stop := context.AfterFunc(ctx, closePort)
	defer stop()

	log.Printf("FEED_CONNECTED | source=%s baud=%d", s.Name(), s.mode.BaudRate)

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := ParseBeat(line, s.now())
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

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
			return nil
		}
		return fmt.Errorf("read %s: %w", s.port, err)
	}
	return nil
}

// Ports lists serial ports present on this machine.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
