package controller

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dipdup-io/workerpool"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/karlseguin/ccache/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cryptip/tipjar/internal/currency"
	"github.com/cryptip/tipjar/internal/feed"
	"github.com/cryptip/tipjar/internal/identity"
	"github.com/cryptip/tipjar/internal/ledger"
)

// Ledger - the contract-call collaborator. Implemented by *ledger.Client.
type Ledger interface {
	TipBalance(ctx context.Context, recipient identity.Identity) (*big.Int, error)
	SubmitTip(ctx context.Context, wallet ledger.Wallet, recipient identity.Identity, name, message string, amount *big.Int) (ledger.Handle, error)
	WithdrawBalance(ctx context.Context, wallet ledger.Wallet) (ledger.Handle, error)
	Confirm(ctx context.Context, handle ledger.Handle) (*types.Receipt, error)
}

// Config -
type Config struct {
	// clear the draft after a successful send; the original keeps it so the
	// visitor can resend the same tip, hence the default
	ResetIntentOnSend bool  `yaml:"reset_intent_on_send"`
	StatsTTL          int64 `yaml:"stats_ttl" validate:"omitempty,min=1"`
}

// ViewModel - snapshot rendered by the presentation layer.
type ViewModel struct {
	Viewed       identity.Identity
	Mode         Mode
	State        State
	Mining       bool
	Intent       Intent
	Balance      decimal.Decimal
	BalanceLabel string
	Stats        feed.Stats
	CanSend      bool
	CanWithdraw  bool
}

type pendingTx struct {
	op         operation
	handle     ledger.Handle
	generation uint64
}

// Controller - owns the view state for one viewed-address session and drives
// the send-tip and withdraw flows. Constructed fresh on navigation to a new
// address and torn down on navigation away.
type Controller struct {
	viewed   identity.Identity
	ledger   Ledger
	source   feed.Source
	resolver identity.NameResolver
	notifier Notifier

	wallet     ledger.Wallet
	generation atomic.Uint64

	mining atomic.Bool
	pool   *workerpool.Pool[pendingTx]

	statsCache *ccache.Cache
	statsTTL   time.Duration

	resetIntent bool

	mx         sync.RWMutex
	viewedName string
	mode       Mode
	state      State
	intent     Intent
	balance    decimal.Decimal
	stats      feed.Stats

	events chan Event
}

// New -
func New(viewed identity.Identity, wallet ledger.Wallet, lg Ledger, source feed.Source, notifier Notifier, cfg Config) *Controller {
	statsTTL := time.Hour
	if cfg.StatsTTL > 0 {
		statsTTL = time.Second * time.Duration(cfg.StatsTTL)
	}

	c := &Controller{
		viewed:      viewed,
		wallet:      wallet,
		ledger:      lg,
		source:      source,
		notifier:    notifier,
		statsCache:  ccache.New(ccache.Configure().MaxSize(100)),
		statsTTL:    statsTTL,
		resetIntent: cfg.ResetIntentOnSend,
		mode:        ModeVisitor,
		state:       StateIdle,
		intent:      NewIntent(),
		events:      make(chan Event, 64),
	}
	c.pool = workerpool.NewPool(c.confirmWorker, 1)
	return c
}

// WithResolver - attaches the external display-name resolver.
func (c *Controller) WithResolver(resolver identity.NameResolver) *Controller {
	c.resolver = resolver
	return c
}

// Start -
func (c *Controller) Start(ctx context.Context) {
	c.pool.Start(ctx)
}

// Close -
func (c *Controller) Close() error {
	if err := c.pool.Close(); err != nil {
		return err
	}
	close(c.events)
	return nil
}

// Events - notifications for the hosting shell: state transitions, sent tips
// (feed refresh trigger), balance and stats updates.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// SetWallet - swaps the wallet session. In-flight confirmations of the old
// session are still awaited but no longer mutate the view.
func (c *Controller) SetWallet(ctx context.Context, wallet ledger.Wallet) {
	c.mx.Lock()
	c.wallet = wallet
	c.mx.Unlock()
	c.generation.Add(1)
	c.Refresh(ctx)
}

// SetAmount -
func (c *Controller) SetAmount(amount string) {
	c.mx.Lock()
	c.intent.Amount = amount
	c.mx.Unlock()
}

// SetName -
func (c *Controller) SetName(name string) {
	c.mx.Lock()
	c.intent.Name = clampRunes(name, maxNameLength)
	c.mx.Unlock()
}

// SetMessage -
func (c *Controller) SetMessage(message string) {
	c.mx.Lock()
	c.intent.Message = clampRunes(message, maxMessageLength)
	c.mx.Unlock()
}

// ViewModel -
func (c *Controller) ViewModel() ViewModel {
	c.mx.RLock()
	defer c.mx.RUnlock()

	viewed := c.viewed
	if c.viewedName != "" {
		viewed = viewed.WithName(c.viewedName)
	}

	// the send trigger stays disabled while the drafted amount is
	// empty or not a positive decimal
	_, amountErr := currency.ParseEther(c.intent.Amount)

	mining := c.mining.Load()
	return ViewModel{
		Viewed:       viewed,
		Mode:         c.mode,
		State:        c.state,
		Mining:       mining,
		Intent:       c.intent,
		Balance:      c.balance,
		BalanceLabel: currency.FormatBalance(c.balance),
		Stats:        c.stats,
		CanSend:      c.mode == ModeVisitor && !mining && amountErr == nil,
		CanWithdraw:  c.mode == ModeOwner && !mining && c.balance.IsPositive(),
	}
}

// Refresh - the explicit recompute entry point: re-resolves the mode from the
// current identities and, in owner mode, re-reads the ledger balance and
// re-aggregates the feed. Invoked by the hosting shell whenever the connected
// identity, the balance or the feed may have changed.
func (c *Controller) Refresh(ctx context.Context) {
	c.resolveName(ctx)

	wallet := c.currentWallet()
	var connected *identity.Identity
	if id, ok := wallet.Connected(); ok {
		connected = &id
	}

	mode := ModeVisitor
	if identity.IsOwner(connected, c.viewed) {
		mode = ModeOwner
	}
	c.mx.Lock()
	c.mode = mode
	c.mx.Unlock()

	if mode != ModeOwner {
		return
	}

	c.refreshBalance(ctx)
	c.refreshStats(ctx)
}

// SendTip - the visitor flow. Every failure is converted to a notification
// and the controller returns to idle; nothing propagates to the presentation
// layer.
func (c *Controller) SendTip(ctx context.Context) {
	if !c.mining.CompareAndSwap(false, true) {
		// already mining, the trigger is disabled
		return
	}

	wallet := c.currentWallet()
	if _, ok := wallet.Connected(); !ok {
		c.notifier.Notify(msgConnectWallet, IconFox)
		c.mining.Store(false)
		return
	}

	intent := c.currentIntent()
	amount, err := currency.ParseEther(intent.Amount)
	if err != nil {
		log.Err(err).Str("amount", intent.Amount).Msg("parsing tip amount")
		c.notifier.NotifyError(msgGeneric)
		c.mining.Store(false)
		return
	}

	c.setState(StateAwaitingApproval)

	handle, err := c.ledger.SubmitTip(ctx, wallet, c.viewed, intent.Name, intent.Message, amount)
	if err != nil {
		c.failSubmission(err)
		return
	}

	c.setState(StateMining)
	c.pool.AddTask(pendingTx{
		op:         opSend,
		handle:     handle,
		generation: c.generation.Load(),
	})
}

// Withdraw - the owner flow. No-op unless the connected identity owns the
// viewed address and the tip balance is positive.
func (c *Controller) Withdraw(ctx context.Context) {
	if !c.mining.CompareAndSwap(false, true) {
		return
	}

	wallet := c.currentWallet()
	connected, ok := wallet.Connected()
	if !ok || !identity.IsOwner(&connected, c.viewed) {
		log.Warn().Str("viewed", c.viewed.String()).Msg("withdraw triggered by non-owner")
		c.mining.Store(false)
		return
	}
	if !c.currentBalance().IsPositive() {
		c.mining.Store(false)
		return
	}

	c.setState(StateAwaitingApproval)

	handle, err := c.ledger.WithdrawBalance(ctx, wallet)
	if err != nil {
		c.failSubmission(err)
		return
	}

	c.setState(StateMining)
	c.pool.AddTask(pendingTx{
		op:         opWithdraw,
		handle:     handle,
		generation: c.generation.Load(),
	})
}

func (c *Controller) confirmWorker(ctx context.Context, task pendingTx) {
	_, err := c.ledger.Confirm(ctx, task.handle)

	// a confirmation may arrive after the session it belongs to is gone;
	// it must not mutate the current view
	stale := task.generation != c.generation.Load()
	if stale {
		log.Info().Str("tx", task.handle.Hash.Hex()).Msg("late confirmation for an abandoned flow")
		// the abandoned flow's machine still has to come back to idle,
		// only the data fields of the new session stay untouched
		c.setState(StateIdle)
		c.mining.Store(false)
		return
	}

	if err != nil {
		c.setState(StateFailed)
		if ledger.IsUserRejection(err) {
			c.notifier.NotifyError(err.Error())
		} else {
			log.Err(err).Str("tx", task.handle.Hash.Hex()).Msg("confirmation")
			c.notifier.NotifyError(msgGeneric)
		}
		c.setState(StateIdle)
		c.mining.Store(false)
		return
	}

	c.setState(StateConfirmed)

	switch task.op {
	case opSend:
		c.notifier.Notify(msgTipSent, IconParty)
		if c.resetIntent {
			c.mx.Lock()
			c.intent = NewIntent()
			c.mx.Unlock()
		}
		c.emit(EventTipSent)
	case opWithdraw:
		c.setBalance(decimal.Zero)
		c.notifier.Notify(msgWithdrawn, IconMoney)
	}

	c.setState(StateIdle)
	c.mining.Store(false)
}

// failSubmission - converts a submit-time failure into a notification and
// returns the machine to idle with the mining flag cleared.
func (c *Controller) failSubmission(err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.notifier.Notify(msgInsufficient, IconStop)
		c.setState(StateIdle)
	case ledger.IsUserRejection(err):
		c.setState(StateFailed)
		c.notifier.NotifyError(err.Error())
		c.setState(StateIdle)
	default:
		log.Err(err).Msg("submission")
		c.setState(StateFailed)
		c.notifier.NotifyError(msgGeneric)
		c.setState(StateIdle)
	}
	c.mining.Store(false)
}

func (c *Controller) refreshBalance(ctx context.Context) {
	wei, err := c.ledger.TipBalance(ctx, c.viewed)
	if err != nil {
		if ledger.IsUserRejection(err) {
			c.notifier.NotifyError(err.Error())
		} else {
			log.Err(err).Str("viewed", c.viewed.String()).Msg("reading tip balance")
			c.notifier.NotifyError(msgGeneric)
		}
		return
	}
	c.setBalance(currency.FromWei(wei))
}

func (c *Controller) refreshStats(ctx context.Context) {
	cacheKey := c.viewed.Address().Hex()

	records, err := c.source.Tips(ctx, c.viewed.Address())
	if err != nil {
		// degrade to last-known stats, empty when nothing was cached yet
		log.Warn().Err(err).Str("viewed", c.viewed.String()).Msg("feed unavailable")
		if item := c.statsCache.Get(cacheKey); item != nil && !item.Expired() {
			c.setStats(item.Value().(feed.Stats))
		}
		return
	}

	stats := feed.Aggregate(records)
	c.statsCache.Set(cacheKey, stats, c.statsTTL)
	c.setStats(stats)
}

func (c *Controller) resolveName(ctx context.Context) {
	if c.resolver == nil {
		return
	}
	c.mx.RLock()
	resolved := c.viewedName != ""
	c.mx.RUnlock()
	if resolved || c.viewed.Name() != "" {
		return
	}

	name, err := c.resolver.ResolveName(ctx, c.viewed.Address())
	if err != nil {
		log.Warn().Err(err).Str("viewed", c.viewed.String()).Msg("name resolution")
		return
	}
	if name != "" {
		c.mx.Lock()
		c.viewedName = name
		c.mx.Unlock()
	}
}

func (c *Controller) setState(state State) {
	c.mx.Lock()
	c.state = state
	c.mx.Unlock()
	c.emit(EventStateChanged)
}

func (c *Controller) setBalance(balance decimal.Decimal) {
	c.mx.Lock()
	c.balance = balance
	c.mx.Unlock()
	c.emit(EventBalanceUpdated)
}

func (c *Controller) setStats(stats feed.Stats) {
	c.mx.Lock()
	c.stats = stats
	c.mx.Unlock()
	c.emit(EventStatsUpdated)
}

func (c *Controller) currentWallet() ledger.Wallet {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.wallet
}

func (c *Controller) currentIntent() Intent {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.intent
}

func (c *Controller) currentBalance() decimal.Decimal {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.balance
}

func (c *Controller) emit(kind EventKind) {
	c.mx.RLock()
	state := c.state
	c.mx.RUnlock()

	select {
	case c.events <- Event{Kind: kind, State: state}:
	default:
		// the shell is not draining, dropping is safer than blocking
	}
}
