// Package dashboard is the interactive admin console: it shows the current
// parent/child collection relations and drives the sync and reset workflows
// against the backend, including confirmation gating, live progress
// streaming and failure recovery.
package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/colsync/internal/backend"
	"github.com/marcus/colsync/internal/models"
	"github.com/marcus/colsync/internal/output"
	"github.com/marcus/colsync/internal/stream"
)

// MinWidth is the minimum terminal width for proper display
const MinWidth = 40

// MinHeight is the minimum terminal height for proper display
const MinHeight = 12

// Model is the Bubble Tea model for the admin dashboard.
type Model struct {
	Client *backend.Client
	Shop   string
	AppURL string

	// Window dimensions
	Width  int
	Height int

	// Data
	Relations  []models.Relation
	Plan       models.Plan
	Loaded     bool
	Refreshing bool
	FlashError string // manual refresh failures, cleared on the next success

	// Per-action state slices
	Sync  ActionState
	Reset ActionState

	// Single-slot resources
	confirm *pendingConfirm
	sub     streamHandle

	openStream func() streamHandle

	progressBar progress.Model
	spin        spinner.Model

	HelpOpen bool
	helpView string
	quitting bool
}

// New creates a dashboard model for the given shop.
func New(client *backend.Client, streams *stream.Subscriber, shop, appURL string) Model {
	bar := progress.New(progress.WithDefaultGradient())
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return Model{
		Client:      client,
		Shop:        shop,
		AppURL:      appURL,
		Sync:        idleState(ActionSync),
		Reset:       idleState(ActionReset),
		progressBar: bar,
		spin:        sp,
		openStream: func() streamHandle {
			return streams.Open(context.Background(), shop)
		},
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refreshCmd(ActionSync, true),
		m.spin.Tick,
	)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		w := m.Width - 12
		if w > 60 {
			w = 60
		}
		if w > 0 {
			m.progressBar.Width = w
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshDoneMsg:
		return m.handleRefreshDone(msg)

	case syncTriggeredMsg:
		return m.handleSyncTriggered(msg)

	case resetDoneMsg:
		return m.handleResetDone(msg)

	case streamEventMsg:
		return m.handleStreamEvent(msg)

	case syncSettleMsg:
		m.Refreshing = true
		return m, m.refreshCmd(ActionSync, false)

	case resetSettleMsg:
		m.Refreshing = true
		return m, m.refreshCmd(ActionReset, false)

	case lostRefreshMsg:
		// Best effort: the job may have completed despite the dead stream.
		m.Refreshing = true
		return m, m.refreshCmd(ActionSync, false)
	}

	return m, nil
}

// handleKey processes key input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m.teardown()

	case "?":
		m.toggleHelp()
		return m, nil
	}

	if m.HelpOpen {
		if msg.String() == "esc" {
			m.HelpOpen = false
		}
		return m, nil
	}

	// Confirmation modal owns the keyboard while open. A fresh action
	// request replaces the pending one, so only the latest can fire.
	if m.confirm != nil {
		switch msg.String() {
		case "enter", "y":
			return m.affirmConfirm()
		case "esc", "n":
			m.cancelConfirm()
			return m, nil
		case "s":
			m.requestConfirm(ActionSync)
			return m, nil
		case "r":
			m.requestConfirm(ActionReset)
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "s":
		m.requestConfirm(ActionSync)
		return m, nil

	case "r":
		m.requestConfirm(ActionReset)
		return m, nil

	case "f":
		if m.Refreshing {
			return m, nil
		}
		m.Refreshing = true
		return m, m.refreshCmd(ActionSync, true)
	}

	return m, nil
}

// teardown releases the stream handle and any open confirmation before
// quitting. Safe to hit twice; the second pass finds nothing to release.
func (m Model) teardown() (tea.Model, tea.Cmd) {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.confirm = nil
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) toggleHelp() {
	m.HelpOpen = !m.HelpOpen
	if m.HelpOpen && m.helpView == "" {
		w := m.Width - 4
		if w <= 0 {
			w = 76
		}
		rendered, err := output.RenderMarkdownWithWidth(helpText, w)
		if err != nil {
			rendered = helpText
		}
		m.helpView = rendered
	}
}

// action returns the state slice for the given kind.
func (m *Model) action(kind ActionKind) *ActionState {
	if kind == ActionReset {
		return &m.Reset
	}
	return &m.Sync
}
