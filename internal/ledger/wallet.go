package ledger

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/cryptip/tipjar/internal/identity"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Wallet - the session provider collaborator: exposes the currently connected
// identity, its available balance and transaction approval. "No session" and
// "balance unresolved" are distinct states; an AvailableBalance error never
// means insufficient funds.
type Wallet interface {
	Connected() (identity.Identity, bool)
	AvailableBalance(ctx context.Context) (*big.Int, error)
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// LocalWallet - key-in-process session used by the reference shell. Approval
// is implicit: signing never prompts, so it never returns a rejection.
type LocalWallet struct {
	key     *ecdsa.PrivateKey
	id      identity.Identity
	backend Backend
}

// NewLocalWallet -
func NewLocalWallet(hexKey string, backend Backend) (*LocalWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing private key")
	}
	return &LocalWallet{
		key:     key,
		id:      identity.FromAddress(crypto.PubkeyToAddress(key.PublicKey)),
		backend: backend,
	}, nil
}

// Connected -
func (w *LocalWallet) Connected() (identity.Identity, bool) {
	return w.id, true
}

// AvailableBalance -
func (w *LocalWallet) AvailableBalance(ctx context.Context) (*big.Int, error) {
	balance, err := w.backend.BalanceAt(ctx, w.id.Address(), nil)
	if err != nil {
		return nil, errors.Wrap(ErrLedgerRead, err.Error())
	}
	return balance, nil
}

// SignTx -
func (w *LocalWallet) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
}

// Disconnected - wallet with no session; every owner check against it fails
// and any submission reports ErrNotConnected.
type Disconnected struct{}

// Connected -
func (Disconnected) Connected() (identity.Identity, bool) {
	return identity.Identity{}, false
}

// AvailableBalance -
func (Disconnected) AvailableBalance(context.Context) (*big.Int, error) {
	return nil, ErrNotConnected
}

// SignTx -
func (Disconnected) SignTx(context.Context, *types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, ErrNotConnected
}
