package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
)

// ScoreFetcher fetches the eligibility score for an address.
type ScoreFetcher interface {
	FetchScore(ctx context.Context, address string) (models.PassportScore, error)
}

// GetPassport handles GET /api/passport/{address}: the oracle score plus the
// eligibility verdict against the configured threshold. Oracle failures are
// reported in the payload, never as HTTP errors; only a malformed address is
// rejected outright.
func GetPassport(scores ScoreFetcher, threshold float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		address := chi.URLParam(r, "address")

		slog.Debug("passport score requested", "address", address, "remoteAddr", r.RemoteAddr)

		score, err := scores.FetchScore(r.Context(), address)
		if err != nil {
			if errors.Is(err, config.ErrInvalidAddress) {
				writeError(w, http.StatusBadRequest, config.ErrorInvalidAddress, "invalid Ethereum address")
				return
			}
			slog.Error("passport score fetch failed", "address", address, "error", err)
			writeError(w, http.StatusBadGateway, config.ErrorPassportFetch, "failed to fetch passport score")
			return
		}

		result := models.PassportResult{
			PassportScore: score,
			IsEligible:    score.Status == models.PassportDone && score.Score >= threshold,
			Threshold:     threshold,
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: result,
			Meta: &models.APIMeta{ExecutionTime: time.Since(start).Milliseconds()},
		})
	}
}
