package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// Claimer runs the full claim workflow and reports the outcome as a value.
type Claimer interface {
	ClaimTokens(ctx context.Context, req models.ClaimRequest) models.ClaimReceipt
}

// Claim handles POST /api/claim. The receipt is always returned with HTTP 200;
// the ok flag and message carry the outcome. Only an unreadable body is a
// transport-level error.
func Claim(orchestrator Claimer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req models.ClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("invalid claim request body", "error", err, "remoteAddr", r.RemoteAddr)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid request body")
			return
		}

		slog.Info("claim requested",
			"address", req.Address,
			"chainId", req.ChainID,
			"remoteAddr", r.RemoteAddr,
		)

		receipt := orchestrator.ClaimTokens(r.Context(), req)

		elapsed := time.Since(start).Milliseconds()

		if receipt.OK {
			slog.Info("claim succeeded",
				"address", req.Address,
				"chainId", req.ChainID,
				"txHash", receipt.TxHash,
				"elapsed_ms", elapsed,
			)
		} else {
			slog.Info("claim rejected",
				"address", req.Address,
				"chainId", req.ChainID,
				"reason", receipt.Message,
				"elapsed_ms", elapsed,
			)
		}

		writeJSON(w, http.StatusOK, receipt)
	}
}
