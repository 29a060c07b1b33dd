// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartline/internal/ui/styles"
	"github.com/jeranaias/heartline/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is informational (snapshot saved, reading copied).
	ToastKindStatus ToastKind = iota
	// ToastKindError reports a failed action.
	ToastKindError
	// ToastKindWarning reports a degraded feed.
	ToastKindWarning
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is longer so errors can be read.
const ErrorToastDuration = 8 * time.Second

// Toast is a one-line notice under the monitor.
type Toast struct {
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// Expired reports whether the toast should be dismissed at now.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the newest few toasts. It is used from Update only.
type ToastManager struct {
	toasts    []Toast
	maxToasts int
	now       func() time.Time
}

// NewToastManager creates a toast manager. Nil now uses time.Now.
func NewToastManager(now func() time.Time) *ToastManager {
	if now == nil {
		now = time.Now
	}
	return &ToastManager{maxToasts: 3, now: now}
}

// Add pushes a toast, newest first.
func (m *ToastManager) Add(kind ToastKind, message string) {
	d := DefaultToastDuration
	if kind == ToastKindError {
		d = ErrorToastDuration
	}
	t := Toast{Message: message, Kind: kind, CreatedAt: m.now(), Duration: d}
	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
}

// AddStatus adds a status toast.
func (m *ToastManager) AddStatus(message string) { m.Add(ToastKindStatus, message) }

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) { m.Add(ToastKindError, message) }

// Tick drops expired toasts and reports whether any remain.
func (m *ToastManager) Tick() bool {
	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.Expired(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Toasts returns a copy of the active toasts.
func (m *ToastManager) Toasts() []Toast {
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// ToastTickMsg prunes expired toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// View renders the toasts one per line, truncated to width.
func (m *ToastManager) View(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		msg := util.TruncateWidth(t.Message, width-4)
		switch t.Kind {
		case ToastKindError:
			lines = append(lines, styles.RenderError(msg))
		case ToastKindWarning:
			lines = append(lines, styles.RenderWarning(msg))
		default:
			lines = append(lines, lipgloss.NewStyle().Foreground(styles.Indigo).Render("[i] "+msg))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
