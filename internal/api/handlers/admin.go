package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
	"github.com/faucethub/faucetd/internal/tx"
)

// NetworkUpdater applies admin edits to a network.
type NetworkUpdater interface {
	Update(id string, update models.NetworkUpdate) (*models.NetworkConfig, error)
}

// StatsReader returns aggregate claim statistics.
type StatsReader interface {
	GetAdminStats() (models.AdminStats, error)
	ListClaims(limit int) ([]models.Claim, error)
}

// UpdateNetwork handles PATCH /api/admin/networks/{networkId}. Only the faucet
// amount and active flag are editable; chain identity is immutable.
func UpdateNetwork(registry NetworkUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		networkID := chi.URLParam(r, "networkId")

		var update models.NetworkUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			slog.Warn("invalid network update body", "network", networkID, "error", err)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid request body")
			return
		}
		if update.FaucetAmount == nil && update.IsActive == nil {
			writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "nothing to update")
			return
		}
		if update.FaucetAmount != nil {
			if _, err := tx.ParseDecimalAmount(*update.FaucetAmount, config.NativeDecimals); err != nil {
				writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid faucet amount: "+err.Error())
				return
			}
		}

		network, err := registry.Update(networkID, update)
		if err != nil {
			slog.Error("failed to update network", "network", networkID, "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to update network")
			return
		}
		if network == nil {
			writeError(w, http.StatusNotFound, config.ErrorNetworkNotFound, "unknown network: "+networkID)
			return
		}

		slog.Info("network updated",
			"network", networkID,
			"faucetAmount", network.FaucetAmount,
			"isActive", network.IsActive,
		)

		writeJSON(w, http.StatusOK, models.APIResponse{Data: network})
	}
}

// GetStats handles GET /api/admin/stats.
func GetStats(stats StatsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		summary, err := stats.GetAdminStats()
		if err != nil {
			slog.Error("failed to get admin stats", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to get stats")
			return
		}

		recent, err := stats.ListClaims(50)
		if err != nil {
			slog.Error("failed to list recent claims", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to list claims")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: map[string]interface{}{
				"stats":        summary,
				"recentClaims": recent,
			},
			Meta: &models.APIMeta{ExecutionTime: time.Since(start).Milliseconds()},
		})
	}
}
