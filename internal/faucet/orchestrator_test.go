package faucet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
	"github.com/faucethub/faucetd/internal/tx"
)

const (
	goodAddress = "0xAbCd1234aBcD1234AbCd1234aBcD1234AbCd1234"
	goodChainID = int64(84532)
)

type fakeRegistry struct {
	networks map[int64]*models.NetworkConfig
	err      error
	calls    int
}

func (f *fakeRegistry) ResolveByChainID(chainID int64) (*models.NetworkConfig, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.networks[chainID], nil
}

type fakeScores struct {
	score models.PassportScore
	err   error
	calls int
}

func (f *fakeScores) FetchScore(ctx context.Context, address string) (models.PassportScore, error) {
	f.calls++
	return f.score, f.err
}

type fakeLimiter struct {
	limited    bool
	remaining  int64
	checkErr   error
	recordErr  error
	checkCalls int
	recorded   []string
}

func (f *fakeLimiter) IsLimited(address, networkID string) (bool, int64, error) {
	f.checkCalls++
	return f.limited, f.remaining, f.checkErr
}

func (f *fakeLimiter) RecordClaim(address, networkID string, window time.Duration) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, address+"|"+networkID)
	return nil
}

type fakeEngine struct {
	result *tx.TransferResult
	err    error
	calls  int
}

func (f *fakeEngine) Send(ctx context.Context, network models.NetworkConfig, dest common.Address) (*tx.TransferResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeClaims struct {
	inserted []models.Claim
	err      error
}

func (f *fakeClaims) InsertClaim(c models.Claim) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, c)
	return int64(len(f.inserted)), nil
}

type fixture struct {
	registry *fakeRegistry
	scores   *fakeScores
	limits   *fakeLimiter
	engine   *fakeEngine
	claims   *fakeClaims
	orch     *Orchestrator
}

func newFixture(cfg *config.Config) *fixture {
	f := &fixture{
		registry: &fakeRegistry{
			networks: map[int64]*models.NetworkConfig{
				goodChainID: {
					ID:           "base-sepolia",
					Name:         "Base Sepolia",
					ChainID:      goodChainID,
					RPCURL:       "https://sepolia.base.org",
					FaucetAmount: "0.001",
					IsActive:     true,
				},
			},
		},
		scores: &fakeScores{score: models.PassportScore{Score: 25, Status: models.PassportDone}},
		limits: &fakeLimiter{},
		engine: &fakeEngine{result: &tx.TransferResult{TxHash: "0xfeed", BlockNumber: 42, GasUsed: 21000}},
		claims: &fakeClaims{},
	}
	f.orch = New(f.registry, f.scores, f.limits, f.engine, f.claims, cfg)
	return f
}

func defaultConfig() *config.Config {
	return &config.Config{ScoreThreshold: 10, ClaimWindowHours: 24}
}

func goodRequest() models.ClaimRequest {
	return models.ClaimRequest{Address: goodAddress, ChainID: goodChainID, PassportScore: 25}
}

func TestClaimSuccess(t *testing.T) {
	f := newFixture(defaultConfig())

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if !receipt.OK {
		t.Fatalf("claim failed: %s", receipt.Message)
	}
	if receipt.Message != "Transaction successful!" {
		t.Errorf("message = %q", receipt.Message)
	}
	if receipt.TxHash != "0xfeed" || receipt.BlockNumber != 42 {
		t.Errorf("receipt = %+v", receipt)
	}
	if receipt.Network == nil || receipt.Network.ID != "base-sepolia" {
		t.Errorf("network = %+v", receipt.Network)
	}

	if len(f.limits.recorded) != 1 {
		t.Fatalf("recorded %d cooldowns, want 1", len(f.limits.recorded))
	}
	if f.limits.recorded[0] != goodAddress+"|base-sepolia" {
		t.Errorf("recorded = %q", f.limits.recorded[0])
	}
	if len(f.claims.inserted) != 1 {
		t.Fatalf("inserted %d audit rows, want 1", len(f.claims.inserted))
	}
	if f.claims.inserted[0].TxHash != "0xfeed" {
		t.Errorf("audit txHash = %q", f.claims.inserted[0].TxHash)
	}
}

func TestClaimInvalidAddress(t *testing.T) {
	f := newFixture(defaultConfig())

	for _, addr := range []string{"", "nonsense", "0x123"} {
		req := goodRequest()
		req.Address = addr
		receipt := f.orch.ClaimTokens(context.Background(), req)
		if receipt.OK {
			t.Fatalf("claim with address %q succeeded", addr)
		}
		if receipt.Message != "Invalid Ethereum address provided." {
			t.Errorf("message = %q", receipt.Message)
		}
	}

	// Validation failures must not touch any downstream collaborator.
	if f.registry.calls != 0 || f.scores.calls != 0 || f.limits.checkCalls != 0 || f.engine.calls != 0 {
		t.Errorf("downstream calls after validation failure: registry=%d scores=%d limits=%d engine=%d",
			f.registry.calls, f.scores.calls, f.limits.checkCalls, f.engine.calls)
	}
}

func TestClaimUnsupportedChain(t *testing.T) {
	f := newFixture(defaultConfig())

	req := goodRequest()
	req.ChainID = 1
	receipt := f.orch.ClaimTokens(context.Background(), req)
	if receipt.OK || receipt.Message != "Unsupported chain ID." {
		t.Fatalf("receipt = %+v", receipt)
	}
	if f.scores.calls != 0 || f.limits.checkCalls != 0 || f.engine.calls != 0 {
		t.Error("downstream collaborators called for unsupported chain")
	}
}

func TestClaimDisabledNetwork(t *testing.T) {
	f := newFixture(defaultConfig())
	f.registry.networks[goodChainID].IsActive = false

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if receipt.OK {
		t.Fatal("claim on disabled network succeeded")
	}
	if receipt.Message != "Base Sepolia faucet is currently disabled." {
		t.Errorf("message = %q", receipt.Message)
	}
	if f.engine.calls != 0 {
		t.Error("engine called for disabled network")
	}
}

func TestClaimInsufficientScore(t *testing.T) {
	f := newFixture(defaultConfig())
	f.scores.score = models.PassportScore{Score: 9.99, Status: models.PassportDone}

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if receipt.OK {
		t.Fatal("claim with low score succeeded")
	}
	if !strings.Contains(receipt.Message, "Insufficient Gitcoin Passport score") {
		t.Errorf("message = %q", receipt.Message)
	}
	if !strings.Contains(receipt.Message, "10") {
		t.Errorf("message %q does not state the threshold", receipt.Message)
	}
	if f.limits.checkCalls != 0 || f.engine.calls != 0 {
		t.Error("limiter or engine consulted for ineligible claim")
	}
}

func TestClaimScoreExactlyAtThreshold(t *testing.T) {
	f := newFixture(defaultConfig())
	f.scores.score = models.PassportScore{Score: 10, Status: models.PassportDone}

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if !receipt.OK {
		t.Fatalf("score == threshold must pass, got %q", receipt.Message)
	}
}

func TestClaimIgnoresClientScore(t *testing.T) {
	// Server-side verification is authoritative; an inflated client score
	// must not grant eligibility.
	f := newFixture(defaultConfig())
	f.scores.score = models.PassportScore{Score: 2, Status: models.PassportDone}

	req := goodRequest()
	req.PassportScore = 99
	receipt := f.orch.ClaimTokens(context.Background(), req)
	if receipt.OK {
		t.Fatal("inflated client score granted a claim")
	}
	if f.scores.calls != 1 {
		t.Errorf("score fetches = %d, want 1", f.scores.calls)
	}
}

func TestClaimTrustClientScoreMode(t *testing.T) {
	cfg := defaultConfig()
	cfg.TrustClientScore = true
	f := newFixture(cfg)
	f.scores.score = models.PassportScore{Score: 0, Status: models.PassportError}

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if !receipt.OK {
		t.Fatalf("trusted client score rejected: %s", receipt.Message)
	}
	if f.scores.calls != 0 {
		t.Errorf("oracle consulted in trust-client mode: %d calls", f.scores.calls)
	}
}

func TestClaimOracleNotConclusive(t *testing.T) {
	// NOT_FOUND, PROCESSING, and ERROR all degrade to score 0.
	for _, status := range []models.PassportStatus{models.PassportNotFound, models.PassportProcessing, models.PassportError} {
		f := newFixture(defaultConfig())
		f.scores.score = models.PassportScore{Score: 50, Status: status}

		receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
		if receipt.OK {
			t.Errorf("status %s granted a claim", status)
		}
		if f.engine.calls != 0 {
			t.Errorf("engine called under oracle status %s", status)
		}
	}
}

func TestClaimRateLimited(t *testing.T) {
	f := newFixture(defaultConfig())
	f.limits.limited = true
	f.limits.remaining = 3*3600 + 42*60

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if receipt.OK {
		t.Fatal("rate-limited claim succeeded")
	}
	want := "You have already claimed on this network. Please try again in 3h 42m."
	if receipt.Message != want {
		t.Errorf("message = %q, want %q", receipt.Message, want)
	}
	if f.engine.calls != 0 {
		t.Error("engine called for rate-limited claim")
	}
}

func TestClaimLimiterUnavailableFailsClosed(t *testing.T) {
	f := newFixture(defaultConfig())
	f.limits.checkErr = fmt.Errorf("%w: store down", config.ErrLimiterUnavailable)

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if receipt.OK {
		t.Fatal("claim proceeded with limiter down")
	}
	if !strings.Contains(receipt.Message, "Rate limiting service is unavailable") {
		t.Errorf("message = %q", receipt.Message)
	}
	if f.engine.calls != 0 {
		t.Error("engine called while limiter unavailable")
	}
}

func TestClaimNoSignerConfigured(t *testing.T) {
	f := newFixture(defaultConfig())
	f.orch = New(f.registry, f.scores, f.limits, nil, f.claims, defaultConfig())

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if receipt.OK {
		t.Fatal("claim succeeded without a signer")
	}
	if receipt.Message != "Server configuration error. Faucet is not configured." {
		t.Errorf("message = %q", receipt.Message)
	}
}

func TestClaimSendFailures(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    string
	}{
		{"out of funds", config.ErrInsufficientFaucetFunds, "Faucet is currently out of funds. Please try again later."},
		{"gas estimation", config.ErrGasEstimationFailed, "Network is congested. Please try again later."},
		{"reverted", config.ErrTxNotConfirmed, "Transaction failed to confirm."},
		{"receipt timeout", config.ErrReceiptTimeout, "Transaction failed to confirm."},
		{"unknown", errors.New("boom"), "An unexpected error occurred during the transaction."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(defaultConfig())
			f.engine.err = fmt.Errorf("wrapped: %w", tt.sendErr)

			receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
			if receipt.OK {
				t.Fatal("failed send reported success")
			}
			if receipt.Message != tt.want {
				t.Errorf("message = %q, want %q", receipt.Message, tt.want)
			}
			// No cooldown and no audit row for a failed transfer.
			if len(f.limits.recorded) != 0 {
				t.Error("cooldown recorded for failed transfer")
			}
			if len(f.claims.inserted) != 0 {
				t.Error("audit row written for failed transfer")
			}
		})
	}
}

func TestClaimRecordFailureStillSucceeds(t *testing.T) {
	// Funds already left the faucet; a limiter write failure is logged for
	// reconciliation but must not turn the claim into a user-visible error.
	f := newFixture(defaultConfig())
	f.limits.recordErr = errors.New("store down")

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if !receipt.OK {
		t.Fatalf("confirmed transfer reported as failure: %s", receipt.Message)
	}
	if receipt.TxHash != "0xfeed" {
		t.Errorf("txHash = %q", receipt.TxHash)
	}
}

func TestClaimAuditFailureStillSucceeds(t *testing.T) {
	f := newFixture(defaultConfig())
	f.claims.err = errors.New("disk full")

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if !receipt.OK {
		t.Fatalf("confirmed transfer reported as failure: %s", receipt.Message)
	}
}

func TestClaimRegistryFailure(t *testing.T) {
	f := newFixture(defaultConfig())
	f.registry.err = errors.New("database locked")

	receipt := f.orch.ClaimTokens(context.Background(), goodRequest())
	if receipt.OK {
		t.Fatal("claim succeeded with registry down")
	}
	if receipt.Message != "Server configuration error for selected chain." {
		t.Errorf("message = %q", receipt.Message)
	}
}
