// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/export"
	"github.com/jeranaias/heartline/internal/feed"
	"github.com/jeranaias/heartline/internal/ui/components"
	"github.com/jeranaias/heartline/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// snapshotSavedMsg reports the result of an export started with s.
type snapshotSavedMsg struct {
	path string
	err  error
}

// feedErrorMsg reports that the beat feed stopped with an error.
type feedErrorMsg struct {
	err error
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// App is the top-level Bubble Tea model: the monitor plus toasts and help.
type App struct {
	cfg   *config.Config
	theme *styles.Theme

	monitor *components.HeartRateMonitor
	toasts  *components.ToastManager
	help    help.Model
	keys    components.KeyMap

	width  int
	height int

	toastTicking bool

	// Swappable for tests.
	now       func() time.Time
	copyText  func(string) error
	runExport func(snap export.Snapshot) tea.Cmd
}

// NewApp creates the application model.
func NewApp(cfg *config.Config, theme *styles.Theme) *App {
	a := &App{
		cfg:      cfg,
		theme:    theme,
		help:     help.New(),
		keys:     components.DefaultKeyMap(),
		now:      time.Now,
		copyText: clipboard.WriteAll,
	}
	a.monitor = components.NewHeartRateMonitor(components.MonitorOptions{
		Config: cfg,
		Theme:  theme,
	})
	a.toasts = components.NewToastManager(func() time.Time { return a.now() })
	a.runExport = a.exportCmd
	return a
}

// AttachFeed switches the monitor to an external beat feed. Call before
// the program starts.
func (a *App) AttachFeed(name string, ch <-chan feed.Beat) {
	a.monitor.AttachFeed(name, ch)
}

// Monitor returns the strip-chart component.
func (a *App) Monitor() *components.HeartRateMonitor {
	return a.monitor
}

// Init starts the monitor.
func (a *App) Init() tea.Cmd {
	return a.monitor.Init()
}

// Update handles messages and updates the model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.theme.SetSize(msg.Width, msg.Height)
		a.monitor.SetWidth(msg.Width)
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case snapshotSavedMsg:
		if msg.err != nil {
			log.Printf("SNAPSHOT_FAILED | error=%v", msg.err)
			return a, a.toast(components.ToastKindError, "Snapshot failed: "+msg.err.Error())
		}
		log.Printf("SNAPSHOT_SAVED | path=%s", msg.path)
		return a, a.toast(components.ToastKindStatus, "Saved "+msg.path)

	case feedErrorMsg:
		return a, a.toast(components.ToastKindError, "Feed stopped: "+msg.err.Error())

	case components.ConfigReloadedMsg:
		if msg.Config != nil {
			a.cfg.Palette = msg.Config.Palette
			a.cfg.Snapshot = msg.Config.Snapshot
		}
		a.monitor, _ = a.monitor.Update(msg)
		return a, a.toast(components.ToastKindStatus, "Configuration reloaded")

	case components.ToastTickMsg:
		if a.toasts.Tick() {
			return a, components.ToastTickCmd()
		}
		a.toastTicking = false
		return a, nil
	}

	var cmd tea.Cmd
	a.monitor, cmd = a.monitor.Update(msg)
	return a, cmd
}

func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.monitor.Stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Pause):
		if a.monitor.Running() {
			a.monitor.Stop()
			return a, nil
		}
		return a, a.monitor.Start()

	case key.Matches(msg, a.keys.Snapshot):
		return a, a.runExport(a.monitor.Snapshot())

	case key.Matches(msg, a.keys.Copy):
		reading := a.reading()
		if err := a.copyText(reading); err != nil {
			return a, a.toast(components.ToastKindError, "Clipboard unavailable: "+err.Error())
		}
		return a, a.toast(components.ToastKindStatus, "Copied: "+reading)

	case key.Matches(msg, a.keys.Faster), key.Matches(msg, a.keys.Slower):
		if a.monitor.FeedMode() {
			return a, a.toast(components.ToastKindWarning, "Rate comes from the feed")
		}
		delta := 1
		if key.Matches(msg, a.keys.Slower) {
			delta = -1
		}
		a.monitor.Nudge(delta)
		return a, nil

	case key.Matches(msg, a.keys.Stats):
		a.monitor.ToggleStats()
		return a, nil

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}
	return a, nil
}

// reading is the text put on the clipboard.
func (a *App) reading() string {
	return fmt.Sprintf("%d BPM (%s, not medical data) at %s",
		a.monitor.BPM(), a.source(), a.now().Format("15:04:05"))
}

func (a *App) source() string {
	if a.monitor.FeedMode() {
		return "feed"
	}
	return config.FeedSimulated
}

// toast adds a toast and starts the pruning tick if it is not running.
func (a *App) toast(kind components.ToastKind, message string) tea.Cmd {
	a.toasts.Add(kind, message)
	if a.toastTicking {
		return nil
	}
	a.toastTicking = true
	return components.ToastTickCmd()
}

// exportCmd renders the snapshot off the Update goroutine.
func (a *App) exportCmd(snap export.Snapshot) tea.Cmd {
	opts := export.DefaultOptions()
	opts.OutputDir = a.cfg.Snapshot.OutputDir
	opts.Palette = export.Palette{
		Line:       a.cfg.Palette.Line,
		Background: a.cfg.Palette.Background,
		Baseline:   a.cfg.Palette.Baseline,
	}
	format := a.cfg.Snapshot.Format
	return func() tea.Msg {
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return snapshotSavedMsg{err: err}
		}
		path, err := export.ExportToFile(snap, exporter, opts)
		return snapshotSavedMsg{path: path, err: err}
	}
}

// View renders the monitor, toasts and help.
func (a *App) View() string {
	parts := []string{a.monitor.View()}
	if t := a.toasts.View(a.width); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, a.theme.Help.Render(a.help.View(a.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
