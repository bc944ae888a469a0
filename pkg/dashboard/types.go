package dashboard

import (
	"time"

	"github.com/marcus/colsync/internal/models"
	"github.com/marcus/colsync/internal/stream"
)

// ActionKind identifies one of the two long-running admin actions. Each kind
// owns its own state slice and stream handle; they never interfere.
type ActionKind int

const (
	ActionSync ActionKind = iota
	ActionReset
)

func (k ActionKind) String() string {
	if k == ActionReset {
		return "reset"
	}
	return "sync"
}

// Phase is the lifecycle position of an action.
//
// Idle -> Confirming -> Pending -> Streaming -> Settling -> Idle for a sync
// that completes; failures and lost connections drop back to Idle with a
// status message. Transitions are driven only by key input, confirmation
// results, trigger results, stream events and teardown.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConfirming
	PhasePending
	PhaseStreaming
	PhaseSettling
)

// Severity grades a status message.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityWarning
	SeverityDanger
)

// Status is a dismissable banner tied to one action.
type Status struct {
	Show     bool
	Message  string
	Severity Severity
}

// ActionState is the full button/hint/progress/status state for one action
// kind. It is mutated only through the Model's transition helpers.
type ActionState struct {
	Phase           Phase
	Label           string
	Disabled        bool
	Loading         bool
	HintVisible     bool
	ProgressVisible bool
	Progress        float64
	Status          Status
}

// pendingConfirm is the single confirmation slot. Each request overwrites
// it, so only the most recent action can be affirmed.
type pendingConfirm struct {
	kind    ActionKind
	message string
}

// streamHandle is the slice of stream.Subscription the model depends on;
// tests substitute their own.
type streamHandle interface {
	Events() <-chan stream.Event
	Close()
}

// Button labels and status texts.
const (
	syncIdleLabel    = "Sync Now"
	syncConfirmLabel = "Confirm..."
	syncBusyLabel    = "Syncing..."
	resetIdleLabel   = "Reset"
	resetBusyLabel   = "Resetting..."
	resetDoneLabel   = "Done!"

	syncConfirmMessage  = "Are you sure? This will create collections in your Shopify store."
	resetConfirmMessage = "Are you sure? This will delete all parent-child collection relationships."

	syncHintText = "This may take a few minutes. You can safely keep working; the sync continues in the background."

	syncSettlingMessage  = "Sync completed successfully. Refreshing data..."
	syncCompletedMessage = "Sync completed successfully! Data has been updated."
	syncStartFailMessage = "Failed to start sync. Please try again."
	syncLostMessage      = "Sync connection lost. Please check if sync completed."
	refreshFailMessage   = "Failed to refresh data. Please try again."
	resetFailMessage     = "Reset failed. Please try again."
)

// Delays between a terminal condition and the follow-up refresh. The settle
// delay keeps 100% on screen long enough to be perceived.
const (
	settleDelay       = 1500 * time.Millisecond
	lostRefreshDelay  = 2 * time.Second
	resetRefreshDelay = 500 * time.Millisecond
)

func idleState(kind ActionKind) ActionState {
	if kind == ActionReset {
		return ActionState{Label: resetIdleLabel}
	}
	return ActionState{Label: syncIdleLabel}
}

// Messages.

// refreshDoneMsg carries the result of a relations fetch. initiator is the
// action whose flow requested it; manual marks operator-requested and
// initial-load refreshes.
type refreshDoneMsg struct {
	view      *models.AdminView
	err       error
	initiator ActionKind
	manual    bool
}

// syncTriggeredMsg reports the fire-and-forget sync start call. A nil err
// only means the request was accepted.
type syncTriggeredMsg struct {
	err error
}

// resetDoneMsg reports the reset call, which confirms completion.
type resetDoneMsg struct {
	err error
}

// streamEventMsg delivers one progress stream event. from identifies the
// handle so events from a superseded subscription are ignored; ok is false
// once the channel has closed.
type streamEventMsg struct {
	ev   stream.Event
	ok   bool
	from streamHandle
}

// Timer messages for the scheduled refreshes.
type (
	syncSettleMsg  struct{}
	resetSettleMsg struct{}
	lostRefreshMsg struct{}
)
