// heartline - A simulated heart-rate strip chart for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/heartline/internal/cli"
	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/feed"
	"github.com/jeranaias/heartline/internal/storage"
	"github.com/jeranaias/heartline/internal/ui/components"
	"github.com/jeranaias/heartline/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()
	if len(args.Errors) > 0 {
		cli.Exit(errors.Join(args.Errors...))
	}
	// cli.Exit ends the process, so run owns every deferred cleanup.
	cli.Exit(run(cmd, args))
}

// run dispatches one command.
func run(cmd cli.Command, args cli.Args) error {
	if cmd != cli.CmdTUI {
		cli.ApplyColorProfile()
		closeLog := setupLogging(args.LogFile, args.Verbose)
		defer closeLog()
	}

	switch cmd {
	case cli.CmdTUI:
		return runTUI(args)
	case cli.CmdSnapshot:
		return cli.HandleSnapshot(args)
	case cli.CmdPublish:
		return cli.HandlePublish(args)
	case cli.CmdPorts:
		return cli.HandlePorts(args)
	case cli.CmdServe:
		return cli.HandleServe(args)
	case cli.CmdHistory:
		return cli.HandleHistory(args)
	case cli.CmdConfig:
		return cli.HandleConfig(args)
	case cli.CmdVersion:
		return cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
		return nil
	default:
		fmt.Fprintln(os.Stderr, cli.DimStyle.Render("Run 'heartline help' for usage."))
		return fmt.Errorf("%w: %s", cli.ErrUnknownCommand, args.Subcommand)
	}
}

// setupLogging sends the event log to path, or to stderr when verbose.
// Otherwise the log is discarded. The returned func closes the file and
// points the log back at stderr.
func setupLogging(path string, verbose bool) func() {
	if path != "" {
		f, err := tea.LogToFile(path, "heartline")
		if err == nil {
			return func() {
				log.SetOutput(os.Stderr)
				f.Close()
			}
		}
		fmt.Fprintf(os.Stderr, "Warning: could not open log file %s: %v\n", path, err)
	}
	if !verbose {
		log.SetOutput(io.Discard)
	}
	return func() {}
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(args cli.Args) error {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so the log only ever goes to a file.
	closeLog := setupLogging(cfg.UI.LogFile, false)
	defer closeLog()

	src, err := feed.Open(cfg.Feed)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	theme := styles.NewTheme(cfg.UI.Theme)
	app := NewApp(cfg, theme)

	opts := []tea.ProgramOption{}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(app, opts...)

	if src != nil {
		beats := make(chan feed.Beat, 16)
		gate := feed.NewGate(cfg.Feed.MaxBeatsPerSec, cfg.Feed.MinBPM, cfg.Feed.MaxBPM)
		app.AttachFeed(src.Name(), beats)
		go func() {
			if err := feed.Pump(ctx, src, gate, beats); err != nil {
				log.Printf("FEED_ERROR | source=%s error=%v", src.Name(), err)
				p.Send(feedErrorMsg{err: err})
			}
		}()
	}

	watchConfig(ctx, args, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running heartline: %w", err)
	}

	mon := app.Monitor()
	if err := cli.RecordSession(cfg, storage.NewRecord(mon.Session(), mon.Source(), time.Now())); err != nil {
		log.Printf("HISTORY_ERROR | error=%v", err)
	}
	return nil
}

// watchConfig forwards edits of the configuration file to the program.
// Nothing is watched until the file exists.
func watchConfig(ctx context.Context, args cli.Args, p *tea.Program) {
	path := args.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ActivePath(); err != nil {
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	w, err := config.NewWatcher(path, config.DefaultDebounce)
	if err != nil {
		log.Printf("CONFIG_WATCH_ERROR | path=%s error=%v", path, err)
		return
	}
	go w.Run(ctx)
	go func() {
		for cfg := range w.Updates() {
			p.Send(components.ConfigReloadedMsg{Config: cfg})
		}
	}()
}
