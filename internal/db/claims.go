package db

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/models"
	"github.com/faucethub/faucetd/internal/tx"
)

// InsertClaim records one successful disbursement. Rows are immutable once written.
func (d *DB) InsertClaim(c models.Claim) (int64, error) {
	res, err := d.conn.Exec(`
		INSERT INTO claims (wallet_address, network_id, amount, tx_hash, passport_score, block_number, gas_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.WalletAddress, c.NetworkID, c.Amount, c.TxHash, c.PassportScore, c.BlockNumber, c.GasUsed)
	if err != nil {
		return 0, fmt.Errorf("insert claim for %s on %s: %w", c.WalletAddress, c.NetworkID, err)
	}
	return res.LastInsertId()
}

// ListClaims returns the most recent claims, newest first.
func (d *DB) ListClaims(limit int) ([]models.Claim, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(`
		SELECT id, wallet_address, network_id, amount, tx_hash,
		       COALESCE(passport_score, ''), COALESCE(block_number, 0), COALESCE(gas_used, ''), claimed_at
		FROM claims ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var claims []models.Claim
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.ID, &c.WalletAddress, &c.NetworkID, &c.Amount, &c.TxHash,
			&c.PassportScore, &c.BlockNumber, &c.GasUsed, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// GetAdminStats aggregates claim activity for the admin dashboard.
func (d *DB) GetAdminStats() (models.AdminStats, error) {
	var stats models.AdminStats

	if err := d.conn.QueryRow("SELECT COUNT(*) FROM claims").Scan(&stats.TotalClaims); err != nil {
		return stats, fmt.Errorf("count claims: %w", err)
	}
	if err := d.conn.QueryRow("SELECT COUNT(DISTINCT wallet_address) FROM claims").Scan(&stats.UniqueClaimers); err != nil {
		return stats, fmt.Errorf("count unique claimers: %w", err)
	}

	// Amounts are decimal strings; sum them with the same exact integer
	// arithmetic used on the disbursement path, never through floats.
	rows, err := d.conn.Query("SELECT amount FROM claims")
	if err != nil {
		return stats, fmt.Errorf("sum claimed amounts: %w", err)
	}
	defer rows.Close()

	total := new(big.Int)
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return stats, fmt.Errorf("scan claim amount: %w", err)
		}
		wei, err := tx.ParseDecimalAmount(amount, config.NativeDecimals)
		if err != nil {
			slog.Warn("skipping malformed claim amount in stats", "amount", amount, "error", err)
			continue
		}
		total.Add(total, wei)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("sum claimed amounts: %w", err)
	}
	stats.TotalAmountClaimed = tx.FormatDecimalAmount(total, config.NativeDecimals)

	return stats, nil
}
