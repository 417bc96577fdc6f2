package config

import "time"

// BIP-44 derivation for the faucet signer: m/44'/60'/0'/0/0.
const (
	BIP44Purpose   = 44
	EVMCoinType    = 60
	SignerKeyIndex = 0
)

// Transaction
const (
	GasLimitTransfer    = 21_000
	NativeDecimals      = 18
	ReceiptPollInterval = 2 * time.Second
	ReceiptPollTimeout  = 90 * time.Second
	RPCCallTimeout      = 15 * time.Second
)

// Passport scoring
const (
	PassportAPITimeout = 10 * time.Second
	ScoreCacheTTL      = 2 * time.Minute
	ScoreCacheSweep    = 5 * time.Minute
)

// Server
const (
	ServerReadTimeout    = 30 * time.Second
	ServerWriteTimeout   = 120 * time.Second
	ServerIdleTimeout    = 120 * time.Second
	ServerMaxHeaderBytes = 1 << 20
	ShutdownTimeout      = 30 * time.Second
)

// Logging
const (
	LogFilePrefix = "faucetd-"
	LogMaxAgeDays = 30
)

// Database
const (
	DBBusyTimeout = 5000 // milliseconds

	RateLimitPurgeInterval = time.Hour
)
