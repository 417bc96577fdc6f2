package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// LimitChecker answers the informational rate-limit query.
type LimitChecker interface {
	Status(address, networkID string) models.RateLimitStatus
}

// GetRateLimit handles GET /api/rate-limit/{address}/{networkId}. This is the
// display query: limiter failures report "not limited" rather than erroring.
func GetRateLimit(limits LimitChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		address := chi.URLParam(r, "address")
		networkID := chi.URLParam(r, "networkId")

		if !common.IsHexAddress(address) {
			writeError(w, http.StatusBadRequest, config.ErrorInvalidAddress, "invalid Ethereum address")
			return
		}

		status := limits.Status(address, networkID)

		slog.Debug("rate limit status",
			"address", address,
			"network", networkID,
			"limited", status.IsRateLimited,
		)

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: status,
			Meta: &models.APIMeta{ExecutionTime: time.Since(start).Milliseconds()},
		})
	}
}
