// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Parse errors.
var (
	ErrEmptyPayload = errors.New("empty beat payload")
	ErrBadPayload   = errors.New("malformed beat payload")
)

// Beat is one measured heart beat.
type Beat struct {
	BPM    float64   `json:"bpm"`
	At     time.Time `json:"ts"`
	Source string    `json:"-"`
}

// payload is the JSON wire form. ts may be RFC 3339 or unix milliseconds.
type payload struct {
	BPM *float64        `json:"bpm"`
	TS  json.RawMessage `json:"ts,omitempty"`
}

// ParseBeat decodes one line. Beats without a timestamp are stamped now.
// Compatibility forms are folded first, so full-width digits from an IME
// parse like ASCII.
func ParseBeat(line string, now time.Time) (Beat, error) {
	line = strings.TrimSpace(norm.NFKC.String(line))
	if line == "" {
		return Beat{}, ErrEmptyPayload
	}

	if strings.HasPrefix(line, "{") {
		return parseJSON(line, now)
	}

	value := line
	lower := strings.ToLower(line)
	for _, prefix := range []string{"bpm:", "bpm=", "hr:", "hr="} {
		if strings.HasPrefix(lower, prefix) {
			value = strings.TrimSpace(line[len(prefix):])
			break
		}
	}
	if v, ok := strings.CutSuffix(strings.ToLower(value), "bpm"); ok {
		value = strings.TrimSpace(v)
	}

	bpm, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return Beat{}, fmt.Errorf("%w: %q", ErrBadPayload, line)
	}
	return Beat{BPM: bpm, At: now}, nil
}

func parseJSON(line string, now time.Time) (Beat, error) {
	var p payload
	if err := json.Unmarshal([]byte(line), &p); err != nil {
		return Beat{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.BPM == nil {
		return Beat{}, fmt.Errorf("%w: missing bpm", ErrBadPayload)
	}

	b := Beat{BPM: *p.BPM, At: now}
	if len(p.TS) == 0 || string(p.TS) == "null" {
		return b, nil
	}

	var s string
	if err := json.Unmarshal(p.TS, &s); err == nil {
		at, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Beat{}, fmt.Errorf("%w: ts: %v", ErrBadPayload, err)
		}
		b.At = at
		return b, nil
	}

	var ms int64
	if err := json.Unmarshal(p.TS, &ms); err != nil {
		return Beat{}, fmt.Errorf("%w: ts must be RFC 3339 or unix milliseconds", ErrBadPayload)
	}
	b.At = time.UnixMilli(ms)
	return b, nil
}

// Encode returns the JSON wire form of b.
func (b Beat) Encode() ([]byte, error) {
	return json.Marshal(struct {
		BPM float64 `json:"bpm"`
		TS  string  `json:"ts"`
	}{BPM: b.BPM, TS: b.At.UTC().Format(time.RFC3339Nano)})
}
