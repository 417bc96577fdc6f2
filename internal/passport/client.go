package passport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// Client queries the Gitcoin Passport scorer API and normalizes its responses.
// All upstream failures are folded into a PassportScore with status ERROR;
// nothing past this boundary ever sees a transport error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	scorerID   string
	cache      *gocache.Cache
}

// New creates a passport client from configuration.
func New(cfg *config.Config) *Client {
	slog.Info("passport client initialized",
		"baseURL", cfg.PassportBaseURL,
		"scorerConfigured", cfg.PassportAPIKey != "" && cfg.PassportScorerID != "",
		"cacheTTL", config.ScoreCacheTTL,
	)
	return NewWithBaseURL(cfg.PassportBaseURL, cfg.PassportAPIKey, cfg.PassportScorerID)
}

// NewWithBaseURL creates a passport client with an explicit base URL (for testing).
func NewWithBaseURL(baseURL, apiKey, scorerID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: config.PassportAPITimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		scorerID:   scorerID,
		cache:      gocache.New(config.ScoreCacheTTL, config.ScoreCacheSweep),
	}
}

// Configured reports whether scorer credentials are present. An unconfigured
// client still answers FetchScore, with status ERROR and score 0.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.scorerID != ""
}

// scoreResponse mirrors the scorer API body. The score field arrives as a
// string in some deployments and a number in others, so it is kept raw and
// coerced defensively.
type scoreResponse struct {
	Address            string          `json:"address"`
	Score              json.RawMessage `json:"score"`
	Status             string          `json:"status"`
	Error              string          `json:"error"`
	LastScoreTimestamp string          `json:"last_score_timestamp"`
}

// FetchScore returns the passport score for an address. The only error
// returned is ErrInvalidAddress, raised before any network call; every
// upstream or transport failure is encoded in the result's status.
func (c *Client) FetchScore(ctx context.Context, address string) (models.PassportScore, error) {
	if !common.IsHexAddress(address) {
		return models.PassportScore{}, fmt.Errorf("%w: %q", config.ErrInvalidAddress, address)
	}

	cacheKey := strings.ToLower(address)
	if cached, found := c.cache.Get(cacheKey); found {
		if score, ok := cached.(models.PassportScore); ok {
			slog.Debug("passport score cache hit", "address", cacheKey)
			return score, nil
		}
	}

	score := c.fetch(ctx, address)
	if score.Status == models.PassportDone {
		c.cache.Set(cacheKey, score, gocache.DefaultExpiration)
	}
	return score, nil
}

func (c *Client) fetch(ctx context.Context, address string) models.PassportScore {
	result := models.PassportScore{Address: address}

	if !c.Configured() {
		slog.Error("passport scorer credentials not configured")
		result.Status = models.PassportError
		result.ErrorDetail = "passport scorer is not configured"
		return result
	}

	url := fmt.Sprintf("%s/score/%s/%s", c.baseURL, c.scorerID, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Status = models.PassportError
		result.ErrorDetail = "failed to build scorer request"
		return result
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("passport scorer request failed", "address", address, "error", err)
		result.Status = models.PassportError
		result.ErrorDetail = "scorer service unreachable"
		return result
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		slog.Warn("passport scorer response read failed", "address", address, "error", readErr)
		result.Status = models.PassportError
		result.ErrorDetail = "scorer response unreadable"
		return result
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// No record for this address: ineligible, not a fault.
		result.Status = models.PassportNotFound
		result.Score = 0
		return result

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = fmt.Sprintf("scorer returned HTTP %d", resp.StatusCode)
		}
		slog.Warn("passport scorer error response",
			"address", address,
			"status", resp.StatusCode,
			"body", detail,
		)
		result.Status = models.PassportError
		result.ErrorDetail = detail
		return result
	}

	var sr scoreResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		slog.Warn("passport scorer response unparseable", "address", address, "error", err)
		result.Status = models.PassportError
		result.ErrorDetail = "scorer response unparseable"
		return result
	}

	result.Score = coerceScore(sr.Score)
	result.Status = normalizeStatus(sr.Status)
	result.ErrorDetail = sr.Error
	result.AsOf = sr.LastScoreTimestamp

	slog.Debug("passport score fetched",
		"address", address,
		"score", result.Score,
		"status", result.Status,
	)
	return result
}

// coerceScore parses the raw score field, accepting both JSON strings and
// numbers. Anything missing or malformed coerces to 0 so a parse glitch can
// never produce a higher score than the truth.
func coerceScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return clampScore(asNumber)
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(asString), 64)
		if perr != nil {
			return 0
		}
		return clampScore(parsed)
	}

	return 0
}

func clampScore(v float64) float64 {
	if v < 0 || v != v { // negative or NaN
		return 0
	}
	return v
}

func normalizeStatus(s string) models.PassportStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DONE":
		return models.PassportDone
	case "PROCESSING":
		return models.PassportProcessing
	case "ERROR":
		return models.PassportError
	case "":
		// Some scorer deployments omit status on completed scores.
		return models.PassportDone
	default:
		return models.PassportError
	}
}
