// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"log"
	"math"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/export"
	"github.com/jeranaias/heartline/internal/feed"
	"github.com/jeranaias/heartline/internal/rhythm"
	"github.com/jeranaias/heartline/internal/session"
	"github.com/jeranaias/heartline/internal/strip"
	"github.com/jeranaias/heartline/internal/ui/styles"
)

// =============================================================================
// HEART RATE MONITOR
// =============================================================================

// panelChrome is the border plus horizontal padding of the monitor panel.
const panelChrome = 4

// minCols keeps the strip readable in very narrow terminals.
const minCols = 10

// MonitorOptions configures a HeartRateMonitor.
type MonitorOptions struct {
	Config *config.Config
	Theme  *styles.Theme

	// FeedName selects feed mode: beats come from AttachFeed and the
	// simulated rhythm is not started.
	FeedName string

	Session *session.Manager

	// Now supplies the clock for the pulse dot. Nil uses time.Now.
	Now func() time.Time

	// RandSource overrides the drift seed.
	RandSource rand.Source
}

// HeartRateMonitor is the strip-chart component. It owns the rhythm driver,
// the beat scheduler and the render loop, and is driven entirely by its own
// tick messages inside the bubbletea Update goroutine.
type HeartRateMonitor struct {
	id  int
	gen int

	cfg     config.MonitorConfig
	palette styles.Palette
	theme   *styles.Theme

	driver   *rhythm.Driver
	sched    *rhythm.Scheduler
	external *rhythm.External
	loop     *strip.Loop
	canvas   *strip.Canvas
	sess     *session.Manager

	feedName string
	feedCh   <-chan feed.Beat
	feedDone bool

	running   bool
	bpm       int
	lastBeat  time.Time
	showStats bool
	termCols  int

	now       func() time.Time
	stripView string
}

// NewHeartRateMonitor creates a stopped monitor.
func NewHeartRateMonitor(opts MonitorOptions) *HeartRateMonitor {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	sess := opts.Session
	if sess == nil {
		sess = session.NewManager(session.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &HeartRateMonitor{
		id:        nextID(),
		cfg:       cfg.Monitor,
		palette:   styles.NewPalette(cfg.Palette),
		theme:     theme,
		sess:      sess,
		feedName:  opts.FeedName,
		showStats: cfg.UI.ShowStats,
		now:       now,
	}

	m.loop = strip.NewLoop(strip.LoopConfig{
		Height:      float64(m.cfg.Height),
		ScrollSpeed: m.cfg.ScrollSpeed,
		Amplitude:   m.cfg.Amplitude,
	})
	m.canvas = strip.NewCanvas(0, m.rows())

	src := opts.RandSource
	if src == nil && m.cfg.Seed != 0 {
		src = rand.NewSource(m.cfg.Seed)
	}
	m.driver = rhythm.NewDriver(rhythm.DriverConfig{
		Initial:     m.cfg.BPMDefault,
		Bounds:      m.bounds(),
		MaxStep:     m.cfg.DriftMaxStep,
		MinInterval: m.cfg.DriftMin(),
		MaxInterval: m.cfg.DriftMax(),
		Source:      src,
	})
	m.sched = rhythm.NewScheduler(m.driver, m.loop, m.cfg.FrameRate, m.cfg.ScrollSpeed)
	m.external = rhythm.NewExternal(m.loop, feedBounds(cfg.Feed), m.cfg.FrameRate, m.cfg.ScrollSpeed)

	m.bpm = m.driver.BPM()
	m.driver.Subscribe(func(bpm int) { m.bpm = bpm })
	m.external.Subscribe(func(bpm int) { m.bpm = bpm })
	return m
}

func (m *HeartRateMonitor) bounds() rhythm.Bounds {
	return rhythm.Bounds{Min: m.cfg.BPMMin, Max: m.cfg.BPMMax}
}

// feedBounds is the clamp range for measured rates, wider than the
// simulated bounds.
func feedBounds(f config.FeedConfig) rhythm.Bounds {
	return rhythm.Bounds{Min: int(math.Ceil(f.MinBPM)), Max: int(math.Floor(f.MaxBPM))}
}

func (m *HeartRateMonitor) rows() int {
	if m.cfg.Rows <= 0 {
		return 8
	}
	return m.cfg.Rows
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// ID returns the monitor's tick id.
func (m *HeartRateMonitor) ID() int { return m.id }

// Running reports whether the ticks are armed.
func (m *HeartRateMonitor) Running() bool { return m.running }

// FeedMode reports whether beats come from an external feed.
func (m *HeartRateMonitor) FeedMode() bool { return m.feedName != "" }

// Start arms the drift, beat and frame ticks. The first beat boundary fires
// immediately. In feed mode only the frame tick is armed. Starting a
// running monitor is a no-op.
func (m *HeartRateMonitor) Start() tea.Cmd {
	if m.running {
		return nil
	}
	m.running = true
	m.gen++
	if !m.loop.Mounted() {
		m.mount(strip.FallbackWidth / 2)
	}

	log.Printf("MONITOR_START | session=%s bpm=%d feed=%s width=%d",
		m.sess.SessionID(), m.bpm, m.Source(), m.loop.Width())

	cmds := []tea.Cmd{frameCmd(m.id, m.gen, m.cfg.FrameInterval())}
	if !m.FeedMode() {
		now := m.now()
		delay := m.sched.Fire(now)
		m.onBeat(now)
		cmds = append(cmds,
			beatCmd(m.id, m.gen, delay),
			driftCmd(m.id, m.gen, m.driver.NextInterval()),
		)
	}
	if m.feedCh != nil && !m.feedDone {
		cmds = append(cmds, listenCmd(m.id, m.feedCh))
	}
	return tea.Batch(cmds...)
}

// Stop cancels all three ticks together. Pending ticks from before the stop
// are dropped when they arrive.
func (m *HeartRateMonitor) Stop() {
	if !m.running {
		return
	}
	m.running = false
	m.gen++
	m.sched.Stop()
	log.Printf("MONITOR_STOP | session=%s beats=%d frames=%d",
		m.sess.SessionID(), m.sched.Beats()+m.external.Beats(), m.loop.Frames())
}

// AttachFeed switches the monitor to feed mode and returns the command that
// waits for the first beat.
func (m *HeartRateMonitor) AttachFeed(name string, ch <-chan feed.Beat) tea.Cmd {
	m.feedName = name
	m.feedCh = ch
	m.feedDone = false
	m.sched.Stop()
	if !m.running {
		return nil
	}
	return listenCmd(m.id, ch)
}

// =============================================================================
// SIZING
// =============================================================================

// SetWidth sizes the strip to a terminal width. A fixed monitor.width takes
// precedence.
func (m *HeartRateMonitor) SetWidth(termCols int) {
	m.termCols = termCols
	m.theme.SetSize(termCols, m.theme.Height)
	if m.cfg.Width > 0 {
		m.mount(m.cfg.Width / 2)
		return
	}
	m.mount(termCols - panelChrome)
}

func (m *HeartRateMonitor) mount(cols int) {
	if cols < minCols {
		cols = minCols
	}
	if cols == m.canvas.Cols() && m.loop.Mounted() {
		return
	}
	m.canvas.Resize(cols, m.rows())
	if m.loop.Resize(m.canvas.DotWidth()) {
		log.Printf("MONITOR_RESIZE | cols=%d px=%d", cols, m.loop.Width())
	}
	m.redraw()
}

// =============================================================================
// UPDATE
// =============================================================================

// Init implements tea.Model.
func (m *HeartRateMonitor) Init() tea.Cmd {
	return m.Start()
}

// Update handles the monitor's own messages and ignores everything else.
func (m *HeartRateMonitor) Update(msg tea.Msg) (*HeartRateMonitor, tea.Cmd) {
	switch msg := msg.(type) {
	case DriftTickMsg:
		if !m.current(msg.ID, msg.Gen) || m.FeedMode() {
			return m, nil
		}
		before := m.driver.BPM()
		after := m.driver.Step()
		log.Printf("BPM_DRIFT | from=%d to=%d", before, after)
		return m, driftCmd(m.id, m.gen, m.driver.NextInterval())

	case BeatMsg:
		if !m.current(msg.ID, msg.Gen) || m.FeedMode() {
			return m, nil
		}
		delay := m.sched.Fire(msg.Time)
		m.onBeat(msg.Time)
		return m, beatCmd(m.id, m.gen, delay)

	case FrameMsg:
		if !m.current(msg.ID, msg.Gen) {
			return m, nil
		}
		m.Frame()
		return m, frameCmd(m.id, m.gen, m.cfg.FrameInterval())

	case FeedBeatMsg:
		if msg.ID != m.id {
			return m, nil
		}
		if _, ok := m.external.Trigger(msg.Beat.BPM, msg.Beat.At); ok {
			m.onBeat(m.now())
		}
		if m.feedCh == nil {
			return m, nil
		}
		return m, listenCmd(m.id, m.feedCh)

	case FeedClosedMsg:
		if msg.ID == m.id {
			m.feedDone = true
			log.Printf("FEED_CLOSED | source=%s", m.feedName)
		}
		return m, nil

	case ConfigReloadedMsg:
		m.ApplyConfig(msg.Config)
		return m, nil
	}
	return m, nil
}

func (m *HeartRateMonitor) current(id, gen int) bool {
	return m.running && id == m.id && gen == m.gen
}

func (m *HeartRateMonitor) onBeat(at time.Time) {
	m.lastBeat = at
	m.sess.Record(float64(m.bpm), at)
}

// Frame advances the strip one frame and redraws it. It does not need the
// monitor to be running, which lets headless callers step it directly.
func (m *HeartRateMonitor) Frame() {
	if m.loop.Advance() == 0 {
		return
	}
	m.redraw()
}

func (m *HeartRateMonitor) redraw() {
	if strip.Draw(m.canvas, m.loop.Buffer(), m.loop.Height(), m.glowRadius()) {
		m.stripView = m.renderCanvas()
	}
}

func (m *HeartRateMonitor) glowRadius() float64 {
	if m.cfg.GlowRadius <= 0 {
		return strip.DefaultGlowRadius
	}
	return m.cfg.GlowRadius
}

// =============================================================================
// CONTROLS
// =============================================================================

// Nudge moves the simulated rate by delta, clamped to the bounds. It has no
// effect in feed mode.
func (m *HeartRateMonitor) Nudge(delta int) int {
	if m.FeedMode() {
		return m.bpm
	}
	bpm := m.driver.Apply(delta)
	log.Printf("BPM_NUDGE | delta=%d bpm=%d", delta, bpm)
	return bpm
}

// ToggleStats shows or hides the statistics line.
func (m *HeartRateMonitor) ToggleStats() {
	m.showStats = !m.showStats
}

// ApplyConfig takes palette, bounds and glow settings from a reloaded
// configuration. Geometry changes take effect on the next restart.
func (m *HeartRateMonitor) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.palette = styles.NewPalette(cfg.Palette)
	m.cfg.BPMMin = cfg.Monitor.BPMMin
	m.cfg.BPMMax = cfg.Monitor.BPMMax
	m.cfg.GlowRadius = cfg.Monitor.GlowRadius
	m.cfg.DriftMaxStep = cfg.Monitor.DriftMaxStep
	m.driver.SetBounds(m.bounds())
	m.external.SetBounds(feedBounds(cfg.Feed))
	m.showStats = cfg.UI.ShowStats
	m.redraw()
	log.Printf("CONFIG_RELOAD | bpm_min=%d bpm_max=%d bpm=%d", m.cfg.BPMMin, m.cfg.BPMMax, m.bpm)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// BPM returns the displayed rate.
func (m *HeartRateMonitor) BPM() int { return m.bpm }

// Driver returns the simulated rhythm driver.
func (m *HeartRateMonitor) Driver() *rhythm.Driver { return m.driver }

// Scheduler returns the beat scheduler.
func (m *HeartRateMonitor) Scheduler() *rhythm.Scheduler { return m.sched }

// Loop returns the render loop.
func (m *HeartRateMonitor) Loop() *strip.Loop { return m.loop }

// Canvas returns the drawing surface.
func (m *HeartRateMonitor) Canvas() *strip.Canvas { return m.canvas }

// Session returns the session manager.
func (m *HeartRateMonitor) Session() *session.Manager { return m.sess }

// Palette returns the active strip palette.
func (m *HeartRateMonitor) Palette() styles.Palette { return m.palette }

// Source names where the rate comes from.
func (m *HeartRateMonitor) Source() string {
	if m.feedName == "" {
		return config.FeedSimulated
	}
	return m.feedName
}

// Snapshot captures the strip for export.
func (m *HeartRateMonitor) Snapshot() export.Snapshot {
	return export.Snapshot{
		SessionID: m.sess.SessionID(),
		Taken:     m.now(),
		BPM:       m.bpm,
		Source:    m.Source(),
		Width:     m.loop.Width(),
		Height:    m.loop.Height(),
		Samples:   m.loop.Buffer().Samples(),
		Stats:     m.sess.Stats(),
	}
}
