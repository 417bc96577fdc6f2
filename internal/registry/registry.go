package registry

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/db"
	"github.com/faucethub/faucetd/internal/models"
)

// Registry is the authoritative view of supported chains. Entries are seeded
// into SQLite at startup and mutated only by admin updates.
type Registry struct {
	database *db.DB

	// Serializes admin updates: one writer at a time per the whole table,
	// so no concurrent partial writes to a network entry.
	mu sync.Mutex
}

// seedFile is the YAML shape of an optional networks seed file.
type seedFile struct {
	Networks []seedNetwork `yaml:"networks"`
}

type seedNetwork struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	ChainID        int64  `yaml:"chainId"`
	RPCURL         string `yaml:"rpcUrl"`
	NativeCurrency string `yaml:"nativeCurrency"`
	ExplorerURL    string `yaml:"explorerUrl"`
	FaucetAmount   string `yaml:"faucetAmount"`
	IsActive       *bool  `yaml:"isActive"`
	IconURL        string `yaml:"iconUrl"`
}

// Load builds the registry: reads seeds (built-in defaults or the configured
// YAML file), applies RPC overrides, enforces chain id uniqueness, and
// persists the set. Uniqueness violations are load-time fatal.
func Load(database *db.DB, cfg *config.Config) (*Registry, error) {
	seeds := DefaultNetworks
	if cfg.NetworksFile != "" {
		loaded, err := loadSeedFile(cfg.NetworksFile)
		if err != nil {
			return nil, err
		}
		seeds = loaded
	}

	seeds, err := applyOverrides(seeds, cfg.RPCOverrides)
	if err != nil {
		return nil, err
	}

	if err := checkUniqueness(seeds); err != nil {
		return nil, err
	}

	for _, n := range seeds {
		if err := database.UpsertNetwork(n); err != nil {
			return nil, fmt.Errorf("seed network %s: %w", n.ID, err)
		}
	}

	slog.Info("network registry loaded",
		"count", len(seeds),
		"seedFile", cfg.NetworksFile,
		"rpcOverrides", len(cfg.RPCOverrides),
	)

	return &Registry{database: database}, nil
}

func loadSeedFile(path string) ([]models.NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read networks file %q: %w", path, err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse networks file %q: %w", path, err)
	}

	if len(sf.Networks) == 0 {
		return nil, fmt.Errorf("%w: networks file %q defines no networks", config.ErrInvalidConfig, path)
	}

	networks := make([]models.NetworkConfig, 0, len(sf.Networks))
	for _, s := range sf.Networks {
		if s.ID == "" || s.ChainID == 0 || s.RPCURL == "" || s.FaucetAmount == "" {
			return nil, fmt.Errorf("%w: network entry %q is missing id, chainId, rpcUrl, or faucetAmount", config.ErrInvalidConfig, s.ID)
		}
		active := true
		if s.IsActive != nil {
			active = *s.IsActive
		}
		currency := s.NativeCurrency
		if currency == "" {
			currency = "ETH"
		}
		networks = append(networks, models.NetworkConfig{
			ID:             s.ID,
			Name:           s.Name,
			ChainID:        s.ChainID,
			RPCURL:         s.RPCURL,
			NativeCurrency: currency,
			ExplorerURL:    s.ExplorerURL,
			FaucetAmount:   s.FaucetAmount,
			IsActive:       active,
			IconURL:        s.IconURL,
		})
	}
	return networks, nil
}

// applyOverrides replaces RPC URLs for chains listed in the overrides map,
// keyed by decimal chain id.
func applyOverrides(networks []models.NetworkConfig, overrides map[string]string) ([]models.NetworkConfig, error) {
	if len(overrides) == 0 {
		return networks, nil
	}

	byChainID := make(map[int64]string, len(overrides))
	for key, url := range overrides {
		chainID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: RPC override key %q is not a chain id", config.ErrInvalidConfig, key)
		}
		byChainID[chainID] = url
	}

	for i, n := range networks {
		if url, ok := byChainID[n.ChainID]; ok && url != "" {
			slog.Info("RPC URL overridden", "network", n.ID, "chainId", n.ChainID)
			networks[i].RPCURL = url
		}
	}
	return networks, nil
}

func checkUniqueness(networks []models.NetworkConfig) error {
	seenChainID := make(map[int64]string, len(networks))
	seenID := make(map[string]bool, len(networks))
	for _, n := range networks {
		if prev, dup := seenChainID[n.ChainID]; dup {
			return fmt.Errorf("%w: duplicate chain id %d (%s and %s)", config.ErrInvalidConfig, n.ChainID, prev, n.ID)
		}
		if seenID[n.ID] {
			return fmt.Errorf("%w: duplicate network id %q", config.ErrInvalidConfig, n.ID)
		}
		seenChainID[n.ChainID] = n.ID
		seenID[n.ID] = true
	}
	return nil
}

// ResolveByChainID looks up a network by its EVM chain id. A nil result with a
// nil error means the chain is unsupported, a normal outcome.
func (r *Registry) ResolveByChainID(chainID int64) (*models.NetworkConfig, error) {
	return r.database.GetNetworkByChainID(chainID)
}

// ResolveByID looks up a network by its stable string id.
func (r *Registry) ResolveByID(id string) (*models.NetworkConfig, error) {
	return r.database.GetNetworkByID(id)
}

// ListActive returns active networks ordered by name.
func (r *Registry) ListActive() ([]models.NetworkConfig, error) {
	return r.database.ListNetworks(true)
}

// ListAll returns every configured network including inactive ones.
func (r *Registry) ListAll() ([]models.NetworkConfig, error) {
	return r.database.ListNetworks(false)
}

// Update applies an admin point mutation (faucet amount and/or active flag).
// Chain identity is immutable; there is no code path that changes chainId.
func (r *Registry) Update(id string, update models.NetworkUpdate) (*models.NetworkConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated, err := r.database.UpdateNetwork(id, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	slog.Info("network updated",
		"network", id,
		"faucetAmount", updated.FaucetAmount,
		"isActive", updated.IsActive,
	)
	return updated, nil
}
