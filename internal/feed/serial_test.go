// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// mockPort serves a fixed transcript and then reports end of input.
type mockPort struct {
	r      io.Reader
	closed bool
}

func (m *mockPort) Read(p []byte) (int, error)                           { return m.r.Read(p) }
func (m *mockPort) SetMode(mode *serial.Mode) error                      { return nil }
func (m *mockPort) Write(p []byte) (int, error)                          { return len(p), nil }
func (m *mockPort) Drain() error                                         { return nil }
func (m *mockPort) ResetInputBuffer() error                              { return nil }
func (m *mockPort) ResetOutputBuffer() error                             { return nil }
func (m *mockPort) SetDTR(dtr bool) error                                { return nil }
func (m *mockPort) SetRTS(rts bool) error                                { return nil }
func (m *mockPort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (m *mockPort) SetReadTimeout(t time.Duration) error                 { return nil }
func (m *mockPort) Break(time.Duration) error                            { return nil }

func (m *mockPort) Close() error {
	m.closed = true
	return nil
}

func TestSerialSource_ReadsLines(t *testing.T) {
	port := &mockPort{r: strings.NewReader("# pulse sensor v2\n72\n\nBPM:75\nnoise\nbpm=78\n")}

	src := NewSerialSource("/dev/ttyACM0", 0)
	var gotMode *serial.Mode
	src.open = func(name string, mode *serial.Mode) (serial.Port, error) {
		require.Equal(t, "/dev/ttyACM0", name)
		gotMode = mode
		return port, nil
	}
	fixed := time.Unix(42, 0)
	src.now = func() time.Time { return fixed }

	out := make(chan Beat, 10)
	require.NoError(t, src.Run(context.Background(), out))
	close(out)

	var bpms []float64
	for b := range out {
		bpms = append(bpms, b.BPM)
		require.Equal(t, "serial:/dev/ttyACM0", b.Source)
		require.Equal(t, fixed, b.At)
	}
	require.Equal(t, []float64{72, 75, 78}, bpms)
	require.True(t, port.closed)
	require.Equal(t, DefaultBaud, gotMode.BaudRate)
	require.Equal(t, 8, gotMode.DataBits)
	require.Equal(t, serial.NoParity, gotMode.Parity)
	require.Equal(t, serial.OneStopBit, gotMode.StopBits)
}

func TestSerialSource_OpenError(t *testing.T) {
	src := NewSerialSource("/dev/missing", 9600)
	src.open = func(string, *serial.Mode) (serial.Port, error) {
		return nil, errors.New("no such device")
	}
	err := src.Run(context.Background(), make(chan Beat))
	require.Error(t, err)
	require.Contains(t, err.Error(), "/dev/missing")
}
