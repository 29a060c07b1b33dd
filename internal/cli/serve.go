// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Run the monitor headless and serve it over HTTP.
//
// Command: serve [--addr HOST:PORT]

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/heartline/internal/feed"
	"github.com/jeranaias/heartline/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may finish.
const shutdownTimeout = 5 * time.Second

// HandleServe handles the "serve" command.
func HandleServe(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	if addr := args.Option("addr", ""); addr != "" {
		cfg.Serve.Addr = addr
	}

	src, err := feed.Open(cfg.Feed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live := server.NewLive(cfg, time.Now)
	var beats chan feed.Beat
	if src != nil {
		beats = make(chan feed.Beat, 16)
		live.AttachFeed(src.Name())
		gate := feed.NewGate(cfg.Feed.MaxBeatsPerSec, cfg.Feed.MinBPM, cfg.Feed.MaxBPM)
		go func() {
			if err := feed.Pump(ctx, src, gate, beats); err != nil {
				log.Printf("FEED_ERROR | source=%s error=%v", src.Name(), err)
			}
		}()
	}
	go live.Run(ctx, beats)

	srv := server.NewServer(cfg, live)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	fmt.Printf("Serving %s on %s %s\n",
		ValueStyle.Render(live.Reading().Source), ValueStyle.Render("http://"+cfg.Serve.Addr),
		DimStyle.Render("(Ctrl+C to stop)"))

	select {
	case err := <-errCh:
		return NewCommandError("serve", "listen", "server failed", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return NewCommandError("serve", "shutdown", "shutdown failed", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return NewCommandError("serve", "listen", "server failed", err)
	}
	if err := RecordSession(cfg, live.Record(time.Now())); err != nil {
		log.Printf("HISTORY_ERROR | error=%v", err)
	}
	return nil
}
