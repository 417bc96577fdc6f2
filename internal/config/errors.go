package config

import "errors"

// Sentinel errors for internal use. Each claim-path error maps to exactly one
// user-facing message in the faucet package.
var (
	ErrInvalidConfig = errors.New("invalid configuration")

	// User-correctable claim failures.
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrUnsupportedChain  = errors.New("unsupported chain")
	ErrChainDisabled     = errors.New("chain disabled")
	ErrInsufficientScore = errors.New("insufficient passport score")
	ErrRateLimited       = errors.New("rate limited")

	// Operator-caused.
	ErrServerConfiguration = errors.New("server configuration error")

	// Operational faults from the chain RPC.
	ErrInsufficientFaucetFunds = errors.New("insufficient faucet funds")
	ErrGasEstimationFailed     = errors.New("gas estimation failed")
	ErrTxNotConfirmed          = errors.New("transaction not confirmed")
	ErrTxReverted              = errors.New("transaction reverted")
	ErrReceiptTimeout          = errors.New("receipt polling timeout")

	// Rate limiter backend.
	ErrLimiterUnavailable = errors.New("rate limit store unavailable")

	// Signer.
	ErrSignerNotConfigured = errors.New("faucet signer not configured")
	ErrKeyDerivation       = errors.New("key derivation failed")
	ErrInvalidMnemonic     = errors.New("invalid mnemonic")
)

// Error codes shared with the frontend via API responses.
const (
	ErrorInvalidAddress    = "ERROR_INVALID_ADDRESS"
	ErrorUnsupportedChain  = "ERROR_UNSUPPORTED_CHAIN"
	ErrorChainDisabled     = "ERROR_CHAIN_DISABLED"
	ErrorInsufficientScore = "ERROR_INSUFFICIENT_SCORE"
	ErrorRateLimited       = "ERROR_RATE_LIMITED"
	ErrorServerConfig      = "ERROR_SERVER_CONFIGURATION"
	ErrorInsufficientFunds = "ERROR_INSUFFICIENT_FAUCET_FUNDS"
	ErrorGasEstimation     = "ERROR_GAS_ESTIMATION_FAILED"
	ErrorTxNotConfirmed    = "ERROR_TX_NOT_CONFIRMED"
	ErrorDatabase          = "ERROR_DATABASE"
	ErrorPassportFetch     = "ERROR_PASSPORT_FETCH"
	ErrorNetworkNotFound   = "ERROR_NETWORK_NOT_FOUND"
	ErrorUnauthorized      = "ERROR_UNAUTHORIZED"
	ErrorTooManyRequests   = "ERROR_TOO_MANY_REQUESTS"
	ErrorInvalidRequest    = "ERROR_INVALID_REQUEST"
)
