package ledger

import (
	"context"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/cryptip/tipjar/internal/identity"
	"github.com/dipdup-net/go-lib/config"
)

// Backend - the subset of an Ethereum node the client needs. Implemented by
// *ethclient.Client.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Handle - a submitted but unconfirmed transaction.
type Handle struct {
	Hash common.Hash
}

// Client - thin call abstraction over the tip-jar contract: read-balance,
// submit-tip, withdraw-balance and confirmation. Performs no local caching of
// balances across calls.
type Client struct {
	backend         Backend
	contract        common.Address
	timeout         time.Duration
	confirmInterval time.Duration

	chainMx sync.Mutex
	chainID *big.Int
}

// NewClient -
func NewClient(backend Backend, contract common.Address, timeout, confirmInterval time.Duration) *Client {
	if timeout <= 0 {
		timeout = time.Second * 10
	}
	if confirmInterval <= 0 {
		confirmInterval = time.Second
	}
	return &Client{
		backend:         backend,
		contract:        contract,
		timeout:         timeout,
		confirmInterval: confirmInterval,
	}
}

// Dial - connects to the node described by the datasource and builds a client
// for the given contract.
func Dial(ctx context.Context, cfg config.DataSource, contract common.Address) (*Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "dialing node")
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	return NewClient(client, contract, timeout, 0), nil
}

// Backend -
func (c *Client) Backend() Backend {
	return c.backend
}

// TipBalance - reads the aggregated tip balance held by the contract for the
// recipient.
func (c *Client) TipBalance(ctx context.Context, recipient identity.Identity) (*big.Int, error) {
	reqCtx, cancelReq := context.WithTimeout(ctx, c.timeout)
	defer cancelReq()

	data, err := tipjarABI.Pack(entrypointGetTipBalance, recipient.Address())
	if err != nil {
		return nil, err
	}

	response, err := c.backend.CallContract(reqCtx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(ErrLedgerRead, err.Error())
	}

	results, err := tipjarABI.Unpack(entrypointGetTipBalance, response)
	if err != nil {
		return nil, errors.Wrap(ErrLedgerRead, err.Error())
	}
	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, errors.Wrapf(ErrLedgerRead, "unexpected balance type %T", results[0])
	}
	return balance, nil
}

// SubmitTip - submits a value-bearing tip transaction through the wallet.
// The insufficient-funds guard runs before anything touches the ledger; it is
// a client-side courtesy, the ledger may still reject for gas or other
// reasons.
func (c *Client) SubmitTip(ctx context.Context, wallet Wallet, recipient identity.Identity, name, message string, amount *big.Int) (Handle, error) {
	if amount == nil || amount.Sign() <= 0 {
		return Handle{}, ErrInvalidAmount
	}

	available, err := wallet.AvailableBalance(ctx)
	if err != nil {
		// unresolved balance is not insufficient funds
		return Handle{}, errors.Wrap(ErrLedgerRead, err.Error())
	}
	if available.Sign() == 0 || available.Cmp(amount) <= 0 {
		return Handle{}, ErrInsufficientFunds
	}

	data, err := tipjarABI.Pack(entrypointSendTip, recipient.Address(), name, message)
	if err != nil {
		return Handle{}, err
	}
	return c.submit(ctx, wallet, data, amount)
}

// WithdrawBalance - submits a withdrawal of the caller's accumulated tips.
// Only meaningful when the caller is the recipient; the contract enforces
// that, the client does not.
func (c *Client) WithdrawBalance(ctx context.Context, wallet Wallet) (Handle, error) {
	data, err := tipjarABI.Pack(entrypointWithdrawTips)
	if err != nil {
		return Handle{}, err
	}
	return c.submit(ctx, wallet, data, new(big.Int))
}

func (c *Client) submit(ctx context.Context, wallet Wallet, data []byte, value *big.Int) (Handle, error) {
	from, ok := wallet.Connected()
	if !ok {
		return Handle{}, ErrNotConnected
	}

	reqCtx, cancelReq := context.WithTimeout(ctx, c.timeout)
	defer cancelReq()

	chainID, err := c.getChainID(reqCtx)
	if err != nil {
		return Handle{}, errors.Wrap(ErrLedgerRead, err.Error())
	}
	nonce, err := c.backend.PendingNonceAt(reqCtx, from.Address())
	if err != nil {
		return Handle{}, errors.Wrap(ErrLedgerRead, err.Error())
	}
	gasPrice, err := c.backend.SuggestGasPrice(reqCtx)
	if err != nil {
		return Handle{}, errors.Wrap(ErrLedgerRead, err.Error())
	}
	gas, err := c.backend.EstimateGas(reqCtx, ethereum.CallMsg{
		From:     from.Address(),
		To:       &c.contract,
		Value:    value,
		GasPrice: gasPrice,
		Data:     data,
	})
	if err != nil {
		return Handle{}, errors.Wrap(ErrTransactionFailed, err.Error())
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.contract,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	// wallet approval is the user-paced suspension point, rejections
	// surface here with the provider's code
	signed, err := wallet.SignTx(ctx, tx, chainID)
	if err != nil {
		return Handle{}, err
	}

	if err := c.backend.SendTransaction(reqCtx, signed); err != nil {
		return Handle{}, errors.Wrap(ErrTransactionFailed, err.Error())
	}
	return Handle{Hash: signed.Hash()}, nil
}

// Confirm - blocks until the network reports inclusion or failure of the
// submitted transaction. A submitted transaction cannot be cancelled; the
// caller may stop waiting through ctx, the transaction stays in flight.
func (c *Client) Confirm(ctx context.Context, handle Handle) (*types.Receipt, error) {
	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, handle.Hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, errors.Wrapf(ErrTransactionFailed, "reverted: %s", handle.Hash)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			// still mining
		default:
			return nil, errors.Wrap(ErrLedgerRead, err.Error())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// getChainID - memoizes only a successful lookup; a transient failure must
// not poison later submissions.
func (c *Client) getChainID(ctx context.Context) (*big.Int, error) {
	c.chainMx.Lock()
	defer c.chainMx.Unlock()

	if c.chainID != nil {
		return c.chainID, nil
	}
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	c.chainID = chainID
	return chainID, nil
}
