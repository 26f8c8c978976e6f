package controller

// Mode - which sub-flow is active for the viewed address. Recomputed from the
// identity check on every refresh, never cached across a session change.
type Mode string

// modes
const (
	ModeVisitor Mode = "visitor"
	ModeOwner   Mode = "owner"
)

// State - lifecycle of the single in-flight mutating operation. The
// controller returns to idle after either terminal state is observed, no
// persistent "last result" is retained.
type State string

// transaction states
const (
	StateIdle             State = "idle"
	StateAwaitingApproval State = "awaiting_wallet_approval"
	StateMining           State = "mining"
	StateConfirmed        State = "confirmed"
	StateFailed           State = "failed"
)

// EventKind -
type EventKind string

// events pushed to the presentation layer
const (
	EventStateChanged   EventKind = "state_changed"
	EventTipSent        EventKind = "tip_sent"
	EventBalanceUpdated EventKind = "balance_updated"
	EventStatsUpdated   EventKind = "stats_updated"
)

// Event -
type Event struct {
	Kind  EventKind
	State State
}

type operation string

const (
	opSend     operation = "send"
	opWithdraw operation = "withdraw"
)
