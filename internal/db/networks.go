package db

import (
	"database/sql"
	"fmt"

	"github.com/faucethub/faucetd/internal/models"
)

const networkColumns = "id, name, chain_id, rpc_url, native_currency, explorer_url, faucet_amount, is_active, COALESCE(icon_url, ''), created_at"

// UpsertNetwork inserts a network or leaves an existing row untouched.
// Seeding is idempotent: admin edits survive restarts.
func (d *DB) UpsertNetwork(n models.NetworkConfig) error {
	_, err := d.conn.Exec(`
		INSERT INTO networks (id, name, chain_id, rpc_url, native_currency, explorer_url, faucet_amount, is_active, icon_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chain_id) DO UPDATE SET rpc_url = excluded.rpc_url
	`, n.ID, n.Name, n.ChainID, n.RPCURL, n.NativeCurrency, n.ExplorerURL, n.FaucetAmount, boolToInt(n.IsActive), n.IconURL)
	if err != nil {
		return fmt.Errorf("upsert network %s (chain %d): %w", n.ID, n.ChainID, err)
	}
	return nil
}

// ListNetworks returns all networks ordered by name. When activeOnly is set,
// inactive networks are excluded.
func (d *DB) ListNetworks(activeOnly bool) ([]models.NetworkConfig, error) {
	query := "SELECT " + networkColumns + " FROM networks"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name"

	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}
	defer rows.Close()

	var networks []models.NetworkConfig
	for rows.Next() {
		n, err := scanNetwork(rows)
		if err != nil {
			return nil, err
		}
		networks = append(networks, n)
	}
	return networks, rows.Err()
}

// GetNetworkByChainID returns the network with the given chain id, or nil when
// no entry matches.
func (d *DB) GetNetworkByChainID(chainID int64) (*models.NetworkConfig, error) {
	row := d.conn.QueryRow("SELECT "+networkColumns+" FROM networks WHERE chain_id = ?", chainID)
	n, err := scanNetwork(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetNetworkByID returns the network with the given stable id, or nil.
func (d *DB) GetNetworkByID(id string) (*models.NetworkConfig, error) {
	row := d.conn.QueryRow("SELECT "+networkColumns+" FROM networks WHERE id = ?", id)
	n, err := scanNetwork(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNetwork applies an admin point mutation keyed by the network's stable id.
// ChainID, RPC URL, and name are not touched. Returns the updated row, or nil
// when the id does not exist.
func (d *DB) UpdateNetwork(id string, update models.NetworkUpdate) (*models.NetworkConfig, error) {
	if update.FaucetAmount != nil {
		if _, err := d.conn.Exec("UPDATE networks SET faucet_amount = ? WHERE id = ?", *update.FaucetAmount, id); err != nil {
			return nil, fmt.Errorf("update network %s faucet amount: %w", id, err)
		}
	}
	if update.IsActive != nil {
		if _, err := d.conn.Exec("UPDATE networks SET is_active = ? WHERE id = ?", boolToInt(*update.IsActive), id); err != nil {
			return nil, fmt.Errorf("update network %s active flag: %w", id, err)
		}
	}
	return d.GetNetworkByID(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNetwork(row rowScanner) (models.NetworkConfig, error) {
	var n models.NetworkConfig
	var active int
	err := row.Scan(&n.ID, &n.Name, &n.ChainID, &n.RPCURL, &n.NativeCurrency, &n.ExplorerURL, &n.FaucetAmount, &active, &n.IconURL, &n.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return n, err
		}
		return n, fmt.Errorf("scan network row: %w", err)
	}
	n.IsActive = active != 0
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
