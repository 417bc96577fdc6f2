package tx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
	"github.com/faucethub/faucetd/internal/wallet"
)

// EthClient defines the minimal ethclient interface needed for disbursements.
// This allows mocking in tests.
type EthClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Dialer opens an RPC client for a network. Swappable in tests.
type Dialer func(rpcURL string) (EthClient, error)

// DialEthClient is the production dialer.
func DialEthClient(rpcURL string) (EthClient, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC %s: %w", rpcURL, err)
	}
	return client, nil
}

// TransferResult describes a confirmed disbursement.
type TransferResult struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// Engine performs on-chain transfers from the faucet account:
// BalanceCheck -> PriceEstimate -> Submit -> Confirm, one attempt per step.
// A per-chain mutex serializes PriceEstimate through Submit so nonce
// assignment for the single signer cannot race.
type Engine struct {
	signer          *wallet.Signer
	dial            Dialer
	gasBoostPercent int64

	mu      sync.Mutex
	clients map[int64]EthClient
	locks   map[int64]*sync.Mutex
}

// NewEngine creates a disbursement engine for the given signer.
func NewEngine(signer *wallet.Signer, dial Dialer, gasBoostPercent int) *Engine {
	slog.Info("disbursement engine created",
		"signer", signer.Address().Hex(),
		"gasBoostPercent", gasBoostPercent,
	)
	return &Engine{
		signer:          signer,
		dial:            dial,
		gasBoostPercent: int64(gasBoostPercent),
		clients:         make(map[int64]EthClient),
		locks:           make(map[int64]*sync.Mutex),
	}
}

// BoostedGasPrice raises a suggested gas price by the configured percentage to
// reduce the chance of a stuck transaction under congestion.
func BoostedGasPrice(suggested *big.Int, boostPercent int64) *big.Int {
	boosted := new(big.Int).Mul(suggested, big.NewInt(100+boostPercent))
	return boosted.Div(boosted, big.NewInt(100))
}

// client returns the cached RPC client for a chain, dialing on first use.
func (e *Engine) client(chainID int64, rpcURL string) (EthClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.clients[chainID]; ok {
		return c, nil
	}
	c, err := e.dial(rpcURL)
	if err != nil {
		return nil, err
	}
	e.clients[chainID] = c
	return c, nil
}

// submitLock returns the per-(signer, chain) mutex. One signer per deployment,
// so the lock is keyed by chain id alone.
func (e *Engine) submitLock(chainID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	if l, ok := e.locks[chainID]; ok {
		return l
	}
	l := &sync.Mutex{}
	e.locks[chainID] = l
	return l
}

// Send transfers the network's faucet amount to the destination and waits for
// inclusion. No step is retried: once Submit has broadcast, the funds are
// committed to the network and only Confirm may still report failure.
func (e *Engine) Send(ctx context.Context, network models.NetworkConfig, dest common.Address) (*TransferResult, error) {
	amount, err := ParseDecimalAmount(network.FaucetAmount, config.NativeDecimals)
	if err != nil {
		return nil, fmt.Errorf("parse faucet amount %q for %s: %w", network.FaucetAmount, network.ID, err)
	}

	client, err := e.client(network.ChainID, network.RPCURL)
	if err != nil {
		return nil, err
	}

	from := e.signer.Address()

	// BalanceCheck.
	balCtx, cancelBal := context.WithTimeout(ctx, config.RPCCallTimeout)
	balance, err := client.BalanceAt(balCtx, from, nil)
	cancelBal()
	if err != nil {
		return nil, fmt.Errorf("faucet balance check on %s: %w", network.ID, err)
	}
	if balance.Cmp(amount) < 0 {
		slog.Error("faucet wallet underfunded",
			"network", network.ID,
			"chainId", network.ChainID,
			"balance", balance.String(),
			"required", amount.String(),
		)
		return nil, fmt.Errorf("%w: have %s wei, need %s wei on %s",
			config.ErrInsufficientFaucetFunds, balance.String(), amount.String(), network.ID)
	}

	// Serialize PriceEstimate through Submit per chain: broadcasting two
	// transactions with the same nonce from one account is the one true race.
	lock := e.submitLock(network.ChainID)
	lock.Lock()

	signedTx, err := e.submit(ctx, client, network, dest, amount)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	txHash := signedTx.Hash()
	slog.Info("disbursement broadcast",
		"network", network.ID,
		"txHash", txHash.Hex(),
		"to", dest.Hex(),
		"amount", amount.String(),
	)

	// Confirm. The funds are committed to the network at this point, so the
	// wait must survive the caller hanging up: detach from the request
	// context and bound the poll by ReceiptPollTimeout alone. Otherwise a
	// client that disconnects right after broadcast would abort the poll,
	// skip the cooldown record, and be free to claim again.
	receipt, err := e.waitForReceipt(context.WithoutCancel(ctx), client, txHash)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{
		TxHash:      txHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}

	slog.Info("disbursement confirmed",
		"network", network.ID,
		"txHash", result.TxHash,
		"block", result.BlockNumber,
		"gasUsed", result.GasUsed,
	)
	return result, nil
}

// submit runs PriceEstimate and Submit under the caller-held chain lock.
func (e *Engine) submit(ctx context.Context, client EthClient, network models.NetworkConfig, dest common.Address, amount *big.Int) (*types.Transaction, error) {
	gasCtx, cancelGas := context.WithTimeout(ctx, config.RPCCallTimeout)
	suggested, err := client.SuggestGasPrice(gasCtx)
	cancelGas()
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %s", config.ErrGasEstimationFailed, network.ID, err)
	}
	gasPrice := BoostedGasPrice(suggested, e.gasBoostPercent)

	from := e.signer.Address()
	nonceCtx, cancelNonce := context.WithTimeout(ctx, config.RPCCallTimeout)
	nonce, err := client.PendingNonceAt(nonceCtx, from)
	cancelNonce()
	if err != nil {
		return nil, fmt.Errorf("get nonce on %s: %w", network.ID, err)
	}

	unsignedTx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &dest,
		Value:    amount,
		Gas:      config.GasLimitTransfer,
		GasPrice: gasPrice,
	})

	signer := types.NewEIP155Signer(big.NewInt(network.ChainID))
	signedTx, err := types.SignTx(unsignedTx, signer, e.signer.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("sign transaction on %s: %w", network.ID, err)
	}

	slog.Debug("submitting transfer",
		"network", network.ID,
		"nonce", nonce,
		"gasPrice", gasPrice.String(),
	)

	sendCtx, cancelSend := context.WithTimeout(ctx, config.RPCCallTimeout)
	err = client.SendTransaction(sendCtx, signedTx)
	cancelSend()
	if err != nil {
		return nil, fmt.Errorf("broadcast on %s: %w", network.ID, err)
	}

	return signedTx, nil
}

// waitForReceipt polls for a transaction receipt until mined, reverted, or
// timeout. A failed receipt status means gas was spent but no value delivered.
func (e *Engine) waitForReceipt(ctx context.Context, client EthClient, txHash common.Hash) (*types.Receipt, error) {
	pollCtx, cancel := context.WithTimeout(ctx, config.ReceiptPollTimeout)
	defer cancel()

	for {
		receipt, err := client.TransactionReceipt(pollCtx, txHash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusFailed {
				slog.Error("disbursement reverted, gas consumed without delivery",
					"txHash", txHash.Hex(),
					"block", receipt.BlockNumber,
				)
				return nil, fmt.Errorf("%w: tx %s reverted in block %d",
					config.ErrTxNotConfirmed, txHash.Hex(), receipt.BlockNumber.Uint64())
			}
			return receipt, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// The poll deadline expired while a receipt query was in
			// flight; report it as the timeout it is.
			return nil, fmt.Errorf("%w: tx %s not mined within timeout", config.ErrReceiptTimeout, txHash.Hex())
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("query receipt for %s: %w", txHash.Hex(), err)
		}

		select {
		case <-pollCtx.Done():
			return nil, fmt.Errorf("%w: tx %s not mined within timeout", config.ErrReceiptTimeout, txHash.Hex())
		case <-time.After(config.ReceiptPollInterval):
		}
	}
}
