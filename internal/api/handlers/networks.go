package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// NetworkLister is the registry surface the networks handler needs.
type NetworkLister interface {
	ListActive() ([]models.NetworkConfig, error)
	ListAll() ([]models.NetworkConfig, error)
}

// ListNetworks handles GET /api/networks. Active networks only by default;
// ?all=true includes disabled ones.
func ListNetworks(registry NetworkLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		includeAll := r.URL.Query().Get("all") == "true"

		slog.Debug("networks requested", "all", includeAll, "remoteAddr", r.RemoteAddr)

		var (
			networks []models.NetworkConfig
			err      error
		)
		if includeAll {
			networks, err = registry.ListAll()
		} else {
			networks, err = registry.ListActive()
		}
		if err != nil {
			slog.Error("failed to list networks", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to list networks")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: networks,
			Meta: &models.APIMeta{ExecutionTime: time.Since(start).Milliseconds()},
		})
	}
}
