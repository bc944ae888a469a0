package dashboard

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/colsync/internal/backend"
	"github.com/marcus/colsync/internal/models"
	"github.com/marcus/colsync/internal/stream"
)

// fakeStream stands in for a live subscription.
type fakeStream struct {
	ch     chan stream.Event
	closed int
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan stream.Event, 8)}
}

func (f *fakeStream) Events() <-chan stream.Event { return f.ch }
func (f *fakeStream) Close()                      { f.closed++ }

// newTestModel returns a model whose stream opens are intercepted.
func newTestModel() (Model, *fakeStream, *int) {
	fs := newFakeStream()
	opens := 0
	m := New(backend.New("http://backend.invalid"), stream.NewSubscriber("http://backend.invalid"), "demo.myshopify.com", "")
	m.openStream = func() streamHandle {
		opens++
		return fs
	}
	return m, fs, &opens
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, s string) (Model, tea.Cmd) {
	nm, cmd := m.Update(key(s))
	return nm.(Model), cmd
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	nm, cmd := m.Update(msg)
	return nm.(Model), cmd
}

func sampleView() *models.AdminView {
	return &models.AdminView{
		Relations: []models.Relation{
			{
				Parent: models.Collection{ID: "101", Title: "Shoes"},
				Children: []models.ChildCollection{
					{ID: "201", Title: "Running", Tag: "run", Redirect: "/collections/running"},
				},
			},
		},
		CurrentPlan: models.Plan{Name: "Basic"},
	}
}

func TestClickEntersConfirming(t *testing.T) {
	m, _, opens := newTestModel()

	m, _ = press(m, "s")

	if m.Sync.Phase != PhaseConfirming {
		t.Errorf("phase = %v, want Confirming", m.Sync.Phase)
	}
	if !m.Sync.Disabled {
		t.Error("button must be disabled while confirming")
	}
	if m.confirm == nil || m.confirm.kind != ActionSync {
		t.Error("confirmation slot not armed for sync")
	}
	if *opens != 0 {
		t.Error("no stream may open before confirmation")
	}
}

func TestCancelReverts(t *testing.T) {
	m, _, opens := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "esc")

	if m.Sync.Phase != PhaseIdle || m.Sync.Disabled || m.Sync.Label != syncIdleLabel {
		t.Errorf("cancel must fully revert, got %+v", m.Sync)
	}
	if m.confirm != nil {
		t.Error("confirmation slot should be cleared")
	}
	if *opens != 0 {
		t.Error("cancelled action must not open a stream")
	}
}

func TestLatestConfirmationWins(t *testing.T) {
	m, _, _ := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "r") // replaces the sync confirmation

	if m.Sync.Phase != PhaseIdle {
		t.Errorf("superseded sync should revert to Idle, got %v", m.Sync.Phase)
	}
	if m.confirm == nil || m.confirm.kind != ActionReset {
		t.Fatal("confirmation slot should now hold reset")
	}

	m, _ = press(m, "enter")

	if m.Reset.Phase != PhasePending {
		t.Errorf("reset phase = %v, want Pending", m.Reset.Phase)
	}
	if m.Sync.Phase != PhaseIdle {
		t.Error("affirming reset must not start sync")
	}
}

func TestAffirmFiresOnce(t *testing.T) {
	m, _, opens := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "enter")
	m, _ = press(m, "enter") // slot already consumed

	if *opens != 1 {
		t.Errorf("stream opened %d times, want 1", *opens)
	}
}

func TestSyncHappyPath(t *testing.T) {
	m, fs, _ := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "enter")

	if m.Sync.Phase != PhasePending {
		t.Fatalf("phase = %v, want Pending", m.Sync.Phase)
	}
	if !m.Sync.HintVisible || !m.Sync.ProgressVisible || m.Sync.Progress != 0 {
		t.Errorf("pending visuals wrong: %+v", m.Sync)
	}
	if m.Sync.Label != syncBusyLabel {
		t.Errorf("label = %q, want %q", m.Sync.Label, syncBusyLabel)
	}

	m, _ = update(m, streamEventMsg{ev: stream.Event{Progress: 10}, ok: true, from: fs})
	if m.Sync.Phase != PhaseStreaming || m.Sync.Progress != 10 {
		t.Errorf("after first sample: phase=%v progress=%v", m.Sync.Phase, m.Sync.Progress)
	}

	m, _ = update(m, streamEventMsg{ev: stream.Event{Progress: 55}, ok: true, from: fs})
	if m.Sync.Progress != 55 {
		t.Errorf("progress = %v, want 55", m.Sync.Progress)
	}

	m, _ = update(m, streamEventMsg{ev: stream.Event{Progress: 100, Terminal: true}, ok: true, from: fs})
	if m.Sync.Phase != PhaseSettling {
		t.Errorf("phase = %v, want Settling", m.Sync.Phase)
	}
	if m.Sync.Progress != 100 || m.Sync.Disabled || m.Sync.HintVisible {
		t.Errorf("settling visuals wrong: %+v", m.Sync)
	}
	if m.Sync.Status.Message != syncSettlingMessage || m.Sync.Status.Severity != SeveritySuccess {
		t.Errorf("status = %+v", m.Sync.Status)
	}
	if fs.closed == 0 {
		t.Error("terminal event must close the stream handle")
	}

	m, _ = update(m, syncSettleMsg{})
	if !m.Refreshing {
		t.Error("settle timer should start a refresh")
	}

	m, _ = update(m, refreshDoneMsg{view: sampleView(), initiator: ActionSync})
	if m.Sync.Phase != PhaseIdle {
		t.Errorf("phase = %v, want Idle", m.Sync.Phase)
	}
	if m.Sync.ProgressVisible {
		t.Error("progress must be cleared after the refresh")
	}
	if m.Sync.Status.Message != syncCompletedMessage {
		t.Errorf("status = %q, want completed message", m.Sync.Status.Message)
	}
	if len(m.Relations) != 1 {
		t.Errorf("relations = %d, want 1", len(m.Relations))
	}
}

func TestTriggerFailure(t *testing.T) {
	m, fs, _ := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "enter")
	m, _ = update(m, syncTriggeredMsg{err: errors.New("connection refused")})

	if m.Sync.Phase != PhaseIdle || m.Sync.Disabled {
		t.Errorf("failed trigger must re-enable the action: %+v", m.Sync)
	}
	if m.Sync.HintVisible || m.Sync.ProgressVisible {
		t.Error("hint and progress must be cleared")
	}
	if m.Sync.Status.Severity != SeverityDanger || m.Sync.Status.Message != syncStartFailMessage {
		t.Errorf("status = %+v", m.Sync.Status)
	}
	if fs.closed == 0 {
		t.Error("the opened stream must be released")
	}
}

func TestConnectionLost(t *testing.T) {
	m, fs, _ := newTestModel()
	m.Relations = sampleView().Relations
	m.Loaded = true

	m, _ = press(m, "s")
	m, _ = press(m, "enter")
	m, _ = update(m, streamEventMsg{ev: stream.Event{Progress: 20}, ok: true, from: fs})
	m, cmd := update(m, streamEventMsg{ev: stream.Event{Err: stream.ErrConnectionLost}, ok: true, from: fs})

	if m.Sync.Phase != PhaseIdle || m.Sync.Disabled {
		t.Errorf("lost connection must re-enable the action: %+v", m.Sync)
	}
	if m.Sync.Status.Severity != SeverityWarning || m.Sync.Status.Message != syncLostMessage {
		t.Errorf("status = %+v", m.Sync.Status)
	}
	if m.Sync.HintVisible {
		t.Error("hint must be cleared")
	}
	if fs.closed == 0 {
		t.Error("handle must be released")
	}
	if cmd == nil {
		t.Fatal("a best-effort refresh must be scheduled")
	}

	// The scheduled refresh fails; previously displayed data is retained.
	m, _ = update(m, lostRefreshMsg{})
	m, _ = update(m, refreshDoneMsg{err: errors.New("boom"), initiator: ActionSync})
	if len(m.Relations) != 1 {
		t.Error("failed refresh must not clear previously displayed data")
	}
}

func TestResetFlow(t *testing.T) {
	m, _, opens := newTestModel()

	m, _ = press(m, "r")
	m, _ = press(m, "enter")

	if m.Reset.Phase != PhasePending || m.Reset.Label != resetBusyLabel {
		t.Fatalf("reset pending state wrong: %+v", m.Reset)
	}
	if *opens != 0 {
		t.Error("reset must not open a progress stream")
	}

	m, _ = update(m, resetDoneMsg{})
	if m.Reset.Phase != PhaseSettling || m.Reset.Label != resetDoneLabel || m.Reset.Disabled {
		t.Errorf("reset settling state wrong: %+v", m.Reset)
	}

	m, _ = update(m, resetSettleMsg{})
	if !m.Refreshing {
		t.Error("reset settle should start a refresh")
	}

	m, _ = update(m, refreshDoneMsg{view: sampleView(), initiator: ActionReset})
	if m.Reset.Phase != PhaseIdle || m.Reset.Label != resetIdleLabel {
		t.Errorf("reset should return to Idle with its default label: %+v", m.Reset)
	}
}

func TestResetFailure(t *testing.T) {
	m, _, _ := newTestModel()

	m, _ = press(m, "r")
	m, _ = press(m, "enter")
	m, _ = update(m, resetDoneMsg{err: errors.New("boom")})

	if m.Reset.Phase != PhaseIdle || m.Reset.Disabled || m.Reset.Label != resetIdleLabel {
		t.Errorf("failed reset must re-enable the action: %+v", m.Reset)
	}
	if m.Reset.Status.Severity != SeverityDanger || m.Reset.Status.Message != resetFailMessage {
		t.Errorf("status = %+v", m.Reset.Status)
	}
}

func TestActionsAreIndependent(t *testing.T) {
	m, fs, _ := newTestModel()

	// Start a sync, then a reset while the sync is in flight.
	m, _ = press(m, "s")
	m, _ = press(m, "enter")
	m, _ = press(m, "r")
	m, _ = press(m, "enter")

	if m.Sync.Phase != PhasePending || m.Reset.Phase != PhasePending {
		t.Fatalf("both actions should be pending: sync=%v reset=%v", m.Sync.Phase, m.Reset.Phase)
	}

	// Sync stream events must not disturb the reset slice.
	m, _ = update(m, streamEventMsg{ev: stream.Event{Progress: 50}, ok: true, from: fs})
	if m.Reset.Phase != PhasePending || m.Reset.Label != resetBusyLabel {
		t.Errorf("sync progress leaked into reset state: %+v", m.Reset)
	}

	// And the reset result must not disturb the streaming sync.
	m, _ = update(m, resetDoneMsg{})
	if m.Sync.Phase != PhaseStreaming || m.Sync.Progress != 50 {
		t.Errorf("reset completion leaked into sync state: %+v", m.Sync)
	}
}

func TestStaleStreamEventsIgnored(t *testing.T) {
	m, fs, _ := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "enter")

	stale := newFakeStream()
	m, _ = update(m, streamEventMsg{ev: stream.Event{Progress: 90}, ok: true, from: stale})
	if m.Sync.Progress != 0 {
		t.Errorf("event from a superseded handle must be dropped, progress = %v", m.Sync.Progress)
	}

	// Events while idle (no live handle) are dropped too; Idle cannot jump
	// straight to Streaming.
	idle, _, _ := newTestModel()
	idle, _ = update(idle, streamEventMsg{ev: stream.Event{Progress: 40}, ok: true, from: fs})
	if idle.Sync.Phase != PhaseIdle {
		t.Errorf("idle action must ignore stream events, phase = %v", idle.Sync.Phase)
	}
}

func TestTeardownClosesStreamOnce(t *testing.T) {
	m, fs, _ := newTestModel()

	m, _ = press(m, "s")
	m, _ = press(m, "enter")

	m, _ = press(m, "q")
	if fs.closed != 1 {
		t.Errorf("teardown closed the stream %d times, want 1", fs.closed)
	}

	m, _ = press(m, "q")
	if fs.closed != 1 {
		t.Errorf("second teardown must not close again, got %d", fs.closed)
	}
}

func TestManualRefreshFailureKeepsData(t *testing.T) {
	m, _, _ := newTestModel()
	m.Relations = sampleView().Relations
	m.Loaded = true

	m, _ = press(m, "f")
	if !m.Refreshing {
		t.Fatal("manual refresh should start")
	}

	m, _ = update(m, refreshDoneMsg{err: errors.New("boom"), initiator: ActionSync, manual: true})
	if len(m.Relations) != 1 {
		t.Error("failed refresh must retain previous data")
	}
	if m.FlashError == "" {
		t.Error("manual refresh failure should surface an error banner")
	}
	if m.Sync.Status.Show {
		t.Error("manual refresh failure must not touch action statuses")
	}
}

func TestViewSmoke(t *testing.T) {
	m, _, _ := newTestModel()
	m.Width = 100
	m.Height = 40
	m.Loaded = true
	m.Relations = sampleView().Relations
	m.Plan = models.Plan{Name: "Basic"}
	m.AppURL = "https://app.example.com"

	view := m.View()
	for _, want := range []string{"Parent & Child Collection Relations", "Sync Now", "Reset", "Shoes", "Running", "Explore Plans"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = press(m, "s")
	modal := m.View()
	if !strings.Contains(modal, "Please Confirm") {
		t.Error("confirm modal not rendered")
	}
	if !strings.Contains(modal, "Are you sure?") {
		t.Error("confirm modal missing the sync message")
	}
}
