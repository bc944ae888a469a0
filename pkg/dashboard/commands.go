package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 30 * time.Second

// refreshCmd fetches the admin view off the update loop.
func (m Model) refreshCmd(initiator ActionKind, manual bool) tea.Cmd {
	client, shop := m.Client, m.Shop
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		view, err := client.FetchRelations(ctx, shop)
		return refreshDoneMsg{view: view, err: err, initiator: initiator, manual: manual}
	}
}

// triggerSyncCmd issues the fire-and-forget sync start request.
func (m Model) triggerSyncCmd() tea.Cmd {
	client, shop := m.Client, m.Shop
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return syncTriggeredMsg{err: client.TriggerSync(ctx, shop)}
	}
}

// triggerResetCmd issues the reset request and awaits its completion.
func (m Model) triggerResetCmd() tea.Cmd {
	client, shop := m.Client, m.Shop
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return resetDoneMsg{err: client.TriggerReset(ctx, shop)}
	}
}

// waitForStream blocks on the next stream event and re-arms itself from the
// update loop after each delivery.
func waitForStream(sub streamHandle) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		return streamEventMsg{ev: ev, ok: ok, from: sub}
	}
}

// tick delivers msg after d.
func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}
