package controller

import (
	"github.com/rs/zerolog/log"
)

// notification icons, matching the original toasts
const (
	IconParty = "🎉"
	IconMoney = "💸"
	IconStop  = "✋"
	IconFox   = "🦊"
)

// user-facing messages
const (
	msgTipSent       = "Tip sent!"
	msgWithdrawn     = "Tips sent to your wallet!"
	msgInsufficient  = "Insufficient funds."
	msgConnectWallet = "Connect wallet to continue."
	msgGeneric       = "Something went wrong."
)

// Notifier - fire-and-forget sink for transient user-facing messages. No
// acknowledgment is expected.
type Notifier interface {
	Notify(message, icon string)
	NotifyError(message string)
}

// LogNotifier - renders notifications into the log, used by the reference
// shell.
type LogNotifier struct{}

// Notify -
func (LogNotifier) Notify(message, icon string) {
	log.Info().Str("icon", icon).Msg(message)
}

// NotifyError -
func (LogNotifier) NotifyError(message string) {
	log.Error().Msg(message)
}
