package faucet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/limiter"
	"github.com/faucethub/faucetd/internal/models"
	"github.com/faucethub/faucetd/internal/tx"
)

// NetworkResolver resolves chain configuration.
type NetworkResolver interface {
	ResolveByChainID(chainID int64) (*models.NetworkConfig, error)
}

// ScoreFetcher fetches the eligibility score for an address.
type ScoreFetcher interface {
	FetchScore(ctx context.Context, address string) (models.PassportScore, error)
}

// RateLimiter gates claims per (address, network) pair.
type RateLimiter interface {
	IsLimited(address, networkID string) (limited bool, remainingSeconds int64, err error)
	RecordClaim(address, networkID string, window time.Duration) error
}

// Disburser performs the on-chain transfer.
type Disburser interface {
	Send(ctx context.Context, network models.NetworkConfig, dest common.Address) (*tx.TransferResult, error)
}

// ClaimStore persists successful claims for auditing.
type ClaimStore interface {
	InsertClaim(c models.Claim) (int64, error)
}

// Orchestrator composes validation, eligibility, rate limiting, and
// disbursement into the single claim operation. Every failure is returned as
// a result value; nothing throws past this boundary.
type Orchestrator struct {
	networks NetworkResolver
	scores   ScoreFetcher
	limits   RateLimiter
	engine   Disburser
	claims   ClaimStore

	threshold        float64
	window           time.Duration
	trustClientScore bool
}

// New creates the claim orchestrator. engine may be nil when no signing
// credential is configured; claims then fail with a server configuration
// message instead of ever disbursing unsigned.
func New(networks NetworkResolver, scores ScoreFetcher, limits RateLimiter, engine Disburser, claims ClaimStore, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		networks:         networks,
		scores:           scores,
		limits:           limits,
		engine:           engine,
		claims:           claims,
		threshold:        cfg.ScoreThreshold,
		window:           time.Duration(cfg.ClaimWindowHours) * time.Hour,
		trustClientScore: cfg.TrustClientScore,
	}
}

// Threshold returns the configured eligibility threshold.
func (o *Orchestrator) Threshold() float64 {
	return o.threshold
}

// ClaimTokens runs the claim workflow: validate, resolve network, check
// activity, check score, check rate limit, disburse, record. Checks
// short-circuit on first failure, in that order.
func (o *Orchestrator) ClaimTokens(ctx context.Context, req models.ClaimRequest) models.ClaimReceipt {
	if !common.IsHexAddress(req.Address) {
		return fail("Invalid Ethereum address provided.")
	}

	network, err := o.networks.ResolveByChainID(req.ChainID)
	if err != nil {
		slog.Error("network lookup failed", "chainId", req.ChainID, "error", err)
		return fail("Server configuration error for selected chain.")
	}
	if network == nil {
		return fail("Unsupported chain ID.")
	}

	if !network.IsActive {
		return fail(fmt.Sprintf("%s faucet is currently disabled.", network.Name))
	}
	if network.RPCURL == "" {
		slog.Error("network has no RPC URL", "network", network.ID)
		return fail("Server configuration error for selected chain.")
	}

	score := o.effectiveScore(ctx, req)
	if score < o.threshold {
		return fail(fmt.Sprintf("Insufficient Gitcoin Passport score. Minimum required: %g", o.threshold))
	}

	// Fail closed: no claim proceeds if the limiter cannot be consulted.
	limited, remaining, err := o.limits.IsLimited(req.Address, network.ID)
	if err != nil {
		slog.Error("rate limiter unavailable, rejecting claim",
			"address", req.Address,
			"network", network.ID,
			"error", err,
		)
		return fail("Server configuration error: Rate limiting service is unavailable.")
	}
	if limited {
		return fail(fmt.Sprintf("You have already claimed on this network. Please try again in %s.",
			limiter.FormatRemaining(remaining)))
	}

	if o.engine == nil {
		slog.Error("claim attempted without a configured faucet signer")
		return fail("Server configuration error. Faucet is not configured.")
	}

	result, err := o.engine.Send(ctx, *network, common.HexToAddress(req.Address))
	if err != nil {
		return o.sendFailure(network, err)
	}

	// The transfer is confirmed; the cooldown must be recorded before the
	// claim is complete. If recording fails the fund has already left the
	// faucet and the limiter may under-enforce: a reconciliation concern,
	// not a user-visible failure.
	if err := o.limits.RecordClaim(req.Address, network.ID, o.window); err != nil {
		slog.Error("RECONCILIATION: claim confirmed but rate limit not recorded",
			"address", req.Address,
			"network", network.ID,
			"txHash", result.TxHash,
			"error", err,
		)
	}

	o.persistClaim(req, network, score, result)

	return models.ClaimReceipt{
		OK:          true,
		TxHash:      result.TxHash,
		BlockNumber: result.BlockNumber,
		GasUsed:     result.GasUsed,
		Network:     network,
		Message:     "Transaction successful!",
	}
}

// effectiveScore re-verifies the passport score server-side immediately before
// the threshold check. Oracle failures degrade the score to 0 so the claim is
// rejected as ineligible rather than crashing. When client trust is enabled
// (legacy behavior) the caller-supplied value is used as-is.
func (o *Orchestrator) effectiveScore(ctx context.Context, req models.ClaimRequest) float64 {
	if o.trustClientScore {
		return req.PassportScore
	}

	verified, err := o.scores.FetchScore(ctx, req.Address)
	if err != nil {
		// Address was validated above; a failure here means malformed input
		// slipped through, which must not grant a score.
		return 0
	}
	if verified.Status != models.PassportDone {
		slog.Info("score verification not conclusive, treating as ineligible",
			"address", req.Address,
			"status", verified.Status,
		)
		return 0
	}

	if req.PassportScore != verified.Score {
		slog.Warn("client-supplied score differs from verified score",
			"address", req.Address,
			"clientScore", req.PassportScore,
			"verifiedScore", verified.Score,
		)
	}
	return verified.Score
}

// sendFailure maps disbursement errors to user-facing messages. Operational
// faults are logged in full and surfaced generically.
func (o *Orchestrator) sendFailure(network *models.NetworkConfig, err error) models.ClaimReceipt {
	slog.Error("disbursement failed",
		"network", network.ID,
		"chainId", network.ChainID,
		"error", err,
	)

	switch {
	case errors.Is(err, config.ErrInsufficientFaucetFunds):
		return fail("Faucet is currently out of funds. Please try again later.")
	case errors.Is(err, config.ErrGasEstimationFailed):
		return fail("Network is congested. Please try again later.")
	case errors.Is(err, config.ErrTxNotConfirmed), errors.Is(err, config.ErrReceiptTimeout):
		return fail("Transaction failed to confirm.")
	default:
		return fail("An unexpected error occurred during the transaction.")
	}
}

func (o *Orchestrator) persistClaim(req models.ClaimRequest, network *models.NetworkConfig, score float64, result *tx.TransferResult) {
	if o.claims == nil {
		return
	}

	claim := models.Claim{
		WalletAddress: req.Address,
		NetworkID:     network.ID,
		Amount:        network.FaucetAmount,
		TxHash:        result.TxHash,
		PassportScore: fmt.Sprintf("%g", score),
		BlockNumber:   result.BlockNumber,
		GasUsed:       fmt.Sprintf("%d", result.GasUsed),
	}
	if _, err := o.claims.InsertClaim(claim); err != nil {
		slog.Error("failed to record claim audit row",
			"address", req.Address,
			"network", network.ID,
			"txHash", result.TxHash,
			"error", err,
		)
	}
}

func fail(message string) models.ClaimReceipt {
	return models.ClaimReceipt{OK: false, Message: message}
}
