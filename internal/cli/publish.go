// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// publish.go - Publish beats to a NATS subject.
//
// Command: publish [--auto BPM] [--count N] [--url URL] [--subject SUBJ]
//
// With --auto a beat is sent every 60/BPM seconds until Ctrl+C (or --count
// beats). Without it the command prompts for rates and sends one beat per
// line, so a monitor started with --feed nats can be driven by hand.

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/feed"
)

// stdinIsTTY gates the interactive prompt.
var stdinIsTTY = IsTTY

// HandlePublish handles the "publish" command.
func HandlePublish(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	url := args.Option("url", cfg.Feed.NATSURL)
	subject := args.Option("subject", cfg.Feed.NATSSubject)

	count := 0
	if v := args.Option("count", ""); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 0 {
			return NewValidationErrorWithExample("--count", v, "must be a non-negative integer", "--count 10")
		}
	}

	auto := args.Option("auto", "")
	if auto == "" && !stdinIsTTY() {
		return NewValidationErrorWithExample("--auto", "",
			"interactive publishing needs a terminal on stdin", "publish --auto 72 --count 10")
	}

	pub, err := feed.NewPublisher(url, subject)
	if err != nil {
		return err
	}
	defer pub.Close()

	log.Printf("PUBLISH_START | url=%s subject=%s", url, subject)

	if v := auto; v != "" {
		bpm, err := strconv.ParseFloat(v, 64)
		if err != nil || bpm < cfg.Feed.MinBPM || bpm > cfg.Feed.MaxBPM {
			return NewValidationErrorWithExample("--auto", v,
				fmt.Sprintf("must be a rate between %.0f and %.0f", cfg.Feed.MinBPM, cfg.Feed.MaxBPM), "--auto 72")
		}
		return publishAuto(pub, subject, bpm, count)
	}
	return publishInteractive(pub, subject, cfg.Feed)
}

func publishAuto(pub *feed.Publisher, subject string, bpm float64, count int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Publishing %s BPM to %s %s\n",
		ValueStyle.Render(strconv.FormatFloat(bpm, 'f', -1, 64)),
		subject, DimStyle.Render("(Ctrl+C to stop)"))

	if err := pub.RunCount(ctx, bpm, count); err != nil {
		return NewCommandError("publish", "auto", "publish failed", err)
	}
	log.Printf("PUBLISH_STOP | subject=%s bpm=%.1f", subject, bpm)
	return nil
}

// historyFile is where the publish prompt keeps its history.
func historyFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "publish_history")
}

func publishInteractive(pub *feed.Publisher, subject string, fc config.FeedConfig) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	hist := historyFile()
	if f, err := os.Open(hist); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if err := config.EnsureConfigDir(); err != nil {
			return
		}
		if f, err := os.OpenFile(hist, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("Publishing to %s. Enter a rate per beat, q to quit.\n", subject)
	sent := 0
	for {
		input, err := line.Prompt("bpm> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
			}
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "q" || input == "quit" {
			break
		}
		line.AppendHistory(input)

		bpm, ok := parsePromptBPM(input, fc)
		if !ok {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("[X]"),
				fmt.Sprintf("not a rate between %.0f and %.0f: %s", fc.MinBPM, fc.MaxBPM, input))
			continue
		}
		if err := pub.Publish(feed.Beat{BPM: bpm, At: time.Now()}); err != nil {
			return NewCommandError("publish", "send", "publish failed", err)
		}
		sent++
	}

	if err := pub.Flush(); err != nil {
		return NewCommandError("publish", "flush", "server did not confirm", err)
	}
	log.Printf("PUBLISH_STOP | subject=%s sent=%d", subject, sent)
	fmt.Printf("Sent %d beats\n", sent)
	return nil
}

// parsePromptBPM accepts a rate typed at the prompt, within the feed bounds.
func parsePromptBPM(input string, fc config.FeedConfig) (float64, bool) {
	b, err := feed.ParseBeat(input, time.Time{})
	if err != nil {
		return 0, false
	}
	return b.BPM, b.BPM >= fc.MinBPM && b.BPM <= fc.MaxBPM
}
