package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
)

// requestConfirm arms the confirmation slot for an action. Any prior pending
// confirmation is reverted first so at most one action is ever armed.
func (m *Model) requestConfirm(kind ActionKind) {
	if m.confirm != nil {
		if m.confirm.kind == kind {
			return // already armed for this action
		}
		m.revertConfirming(m.confirm.kind)
		m.confirm = nil
	}

	st := m.action(kind)
	if st.Phase != PhaseIdle {
		return // action already in flight
	}

	st.Phase = PhaseConfirming
	st.Disabled = true
	st.Label = syncConfirmLabel

	message := syncConfirmMessage
	if kind == ActionReset {
		message = resetConfirmMessage
	}
	m.confirm = &pendingConfirm{kind: kind, message: message}
}

// cancelConfirm dismisses the prompt and reverts the armed action to Idle.
func (m *Model) cancelConfirm() {
	if m.confirm == nil {
		return
	}
	m.revertConfirming(m.confirm.kind)
	m.confirm = nil
}

func (m *Model) revertConfirming(kind ActionKind) {
	st := m.action(kind)
	if st.Phase == PhaseConfirming {
		status := st.Status
		*st = idleState(kind)
		st.Status = status // banner survives an aborted attempt
	}
}

// affirmConfirm fires the armed action exactly once.
func (m Model) affirmConfirm() (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		return m, nil
	}
	kind := m.confirm.kind
	m.confirm = nil

	if kind == ActionReset {
		return m.startReset()
	}
	return m.startSync()
}

// startSync enters Pending: trigger the job and open the progress stream.
func (m Model) startSync() (tea.Model, tea.Cmd) {
	st := &m.Sync
	st.Phase = PhasePending
	st.Label = syncBusyLabel
	st.Disabled = true
	st.Loading = true
	st.HintVisible = true
	st.ProgressVisible = true
	st.Progress = 0
	st.Status = Status{}

	// One live handle per action kind: release any leftover first.
	if m.sub != nil {
		m.sub.Close()
	}
	m.sub = m.openStream()

	return m, tea.Batch(m.triggerSyncCmd(), waitForStream(m.sub))
}

// startReset enters Pending for the reset action; completion comes back on
// the trigger response itself, there is no stream.
func (m Model) startReset() (tea.Model, tea.Cmd) {
	st := &m.Reset
	st.Phase = PhasePending
	st.Label = resetBusyLabel
	st.Disabled = true
	st.Loading = true
	st.Status = Status{}

	return m, m.triggerResetCmd()
}

func (m Model) handleSyncTriggered(msg syncTriggeredMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		return m, nil // acceptance only; progress arrives on the stream
	}

	// The start request itself failed before any streaming: kill the
	// stream, surface a danger status and re-enable the button.
	if m.Sync.Phase != PhasePending && m.Sync.Phase != PhaseStreaming {
		return m, nil
	}
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.Sync = idleState(ActionSync)
	m.Sync.Status = Status{Show: true, Message: syncStartFailMessage, Severity: SeverityDanger}
	return m, nil
}

func (m Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if msg.from != m.sub {
		return m, nil // superseded subscription; drop stale events
	}
	if !msg.ok {
		// Channel closed without a terminal or error event: Close did it.
		return m, nil
	}

	if msg.ev.Err != nil {
		return m.connectionLost()
	}
	if msg.ev.Terminal {
		return m.terminalReached()
	}

	st := &m.Sync
	if st.Phase != PhasePending && st.Phase != PhaseStreaming {
		return m, nil
	}
	st.Phase = PhaseStreaming
	st.Progress = msg.ev.Progress
	return m, waitForStream(m.sub)
}

// terminalReached handles the 100% sample: close the stream, show success
// and hold the full bar briefly before refreshing.
func (m Model) terminalReached() (tea.Model, tea.Cmd) {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}

	st := &m.Sync
	st.Phase = PhaseSettling
	st.Progress = 100
	st.Label = syncIdleLabel
	st.Disabled = false
	st.Loading = false
	st.HintVisible = false
	st.Status = Status{Show: true, Message: syncSettlingMessage, Severity: SeveritySuccess}

	return m, tick(settleDelay, syncSettleMsg{})
}

// connectionLost handles a fatal stream closure before the terminal sample:
// warn, re-enable the button and schedule one best-effort refresh.
func (m Model) connectionLost() (tea.Model, tea.Cmd) {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}

	st := &m.Sync
	st.Phase = PhaseIdle
	st.Label = syncIdleLabel
	st.Disabled = false
	st.Loading = false
	st.HintVisible = false
	st.Status = Status{Show: true, Message: syncLostMessage, Severity: SeverityWarning}

	return m, tick(lostRefreshDelay, lostRefreshMsg{})
}

func (m Model) handleResetDone(msg resetDoneMsg) (tea.Model, tea.Cmd) {
	if m.Reset.Phase != PhasePending {
		return m, nil
	}

	if msg.err != nil {
		m.Reset = idleState(ActionReset)
		m.Reset.Status = Status{Show: true, Message: resetFailMessage, Severity: SeverityDanger}
		return m, nil
	}

	st := &m.Reset
	st.Phase = PhaseSettling
	st.Label = resetDoneLabel
	st.Disabled = false
	st.Loading = false
	return m, tick(resetRefreshDelay, resetSettleMsg{})
}

func (m Model) handleRefreshDone(msg refreshDoneMsg) (tea.Model, tea.Cmd) {
	m.Refreshing = false

	if msg.err != nil {
		// Previously displayed data stays untouched.
		if msg.manual {
			m.FlashError = refreshFailMessage
			return m, nil
		}
		st := m.action(msg.initiator)
		st.Status = Status{Show: true, Message: refreshFailMessage, Severity: SeverityDanger}
		m.settleAfterRefresh(msg.initiator)
		return m, nil
	}

	m.Relations = msg.view.Relations
	m.Plan = msg.view.CurrentPlan
	m.Loaded = true
	m.FlashError = ""

	if !msg.manual {
		m.settleAfterRefresh(msg.initiator)
		if msg.initiator == ActionSync && m.Sync.Status.Show && m.Sync.Status.Severity == SeveritySuccess {
			m.Sync.Status.Message = syncCompletedMessage
		}
	}

	// After a connection-lost refresh the stale bar has served its purpose.
	if msg.initiator == ActionSync && m.Sync.Phase == PhaseIdle {
		m.Sync.ProgressVisible = false
		m.Sync.Progress = 0
	}

	return m, nil
}

// settleAfterRefresh finishes a Settling action once its follow-up refresh
// has resolved (either way), returning the action to Idle.
func (m *Model) settleAfterRefresh(kind ActionKind) {
	st := m.action(kind)
	if st.Phase != PhaseSettling {
		return
	}
	status := st.Status
	*st = idleState(kind)
	st.Status = status
}
