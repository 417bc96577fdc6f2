package models

// NetworkConfig represents one supported chain. Owned by the network registry;
// all other components treat it as read-only.
type NetworkConfig struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ChainID        int64  `json:"chainId"`
	RPCURL         string `json:"rpcUrl"`
	NativeCurrency string `json:"nativeCurrency"`
	ExplorerURL    string `json:"explorerUrl"`
	FaucetAmount   string `json:"faucetAmount"`
	IsActive       bool   `json:"isActive"`
	IconURL        string `json:"iconUrl,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// PassportStatus is the normalized state of an eligibility score lookup.
type PassportStatus string

const (
	PassportDone       PassportStatus = "DONE"
	PassportProcessing PassportStatus = "PROCESSING"
	PassportError      PassportStatus = "ERROR"
	PassportNotFound   PassportStatus = "NOT_FOUND"
)

// PassportScore is the result of querying the reputation oracle for one address.
// Created fresh on every query; the oracle is the source of truth.
type PassportScore struct {
	Address     string         `json:"address"`
	Score       float64        `json:"score"`
	Status      PassportStatus `json:"status"`
	ErrorDetail string         `json:"error,omitempty"`
	AsOf        string         `json:"lastScoreTimestamp,omitempty"`
}

// PassportResult is the API shape for GET /api/passport/{address}: the raw
// score plus the eligibility verdict against the configured threshold.
type PassportResult struct {
	PassportScore
	IsEligible bool    `json:"isEligible"`
	Threshold  float64 `json:"threshold"`
}

// RateLimitStatus answers "is this address currently blocked, and until when".
type RateLimitStatus struct {
	IsRateLimited bool   `json:"isRateLimited"`
	RemainingMs   *int64 `json:"remainingTime"`
}

// ClaimRequest is the POST /api/claim body.
type ClaimRequest struct {
	Address       string  `json:"address"`
	ChainID       int64   `json:"chainId"`
	PassportScore float64 `json:"passportScore"`
}

// ClaimReceipt is the outcome of a disbursement attempt. Created once per
// attempt; on success written immutably to the claims table.
type ClaimReceipt struct {
	OK          bool           `json:"ok"`
	TxHash      string         `json:"txHash,omitempty"`
	BlockNumber uint64         `json:"blockNumber,omitempty"`
	GasUsed     uint64         `json:"gasUsed,omitempty"`
	Network     *NetworkConfig `json:"network,omitempty"`
	Message     string         `json:"message"`
}

// Claim is a persisted audit row for one successful disbursement.
type Claim struct {
	ID            int64  `json:"id"`
	WalletAddress string `json:"walletAddress"`
	NetworkID     string `json:"networkId"`
	Amount        string `json:"amount"`
	TxHash        string `json:"txHash"`
	PassportScore string `json:"passportScore,omitempty"`
	BlockNumber   uint64 `json:"blockNumber,omitempty"`
	GasUsed       string `json:"gasUsed,omitempty"`
	ClaimedAt     string `json:"claimedAt"`
}

// AdminStats summarizes faucet activity for the admin dashboard.
type AdminStats struct {
	TotalClaims        int64  `json:"totalClaims"`
	UniqueClaimers     int64  `json:"uniqueClaimers"`
	TotalAmountClaimed string `json:"totalAmountClaimed"`
}

// NetworkUpdate is the admin PATCH body. Nil fields are left unchanged;
// chain identity is immutable once configured.
type NetworkUpdate struct {
	FaucetAmount *string `json:"faucetAmount,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Data interface{} `json:"data,omitempty"`
	Meta *APIMeta    `json:"meta,omitempty"`
}

// APIMeta contains execution metadata.
type APIMeta struct {
	ExecutionTime int64 `json:"executionTime,omitempty"`
}

// APIError is the standard error response.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail contains error code and message.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
