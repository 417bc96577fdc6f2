package registry

import "github.com/faucethub/faucetd/internal/models"

// DefaultNetworks is the built-in Superchain testnet set, used when no seed
// file is configured. RPC URLs may be overridden per chain id via
// FAUCET_RPC_OVERRIDES.
var DefaultNetworks = []models.NetworkConfig{
	{
		ID:             "base-sepolia",
		Name:           "Base Sepolia",
		ChainID:        84532,
		RPCURL:         "https://sepolia.base.org",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://sepolia.basescan.org",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/base.svg",
	},
	{
		ID:             "optimism-sepolia",
		Name:           "Optimism Sepolia",
		ChainID:        11155420,
		RPCURL:         "https://sepolia.optimism.io",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://sepolia-optimism.etherscan.io",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/optimism.svg",
	},
	{
		ID:             "arbitrum-sepolia",
		Name:           "Arbitrum Sepolia",
		ChainID:        421614,
		RPCURL:         "https://sepolia-rollup.arbitrum.io/rpc",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://sepolia.arbiscan.io",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/arbitrum.svg",
	},
	{
		ID:             "ink-sepolia",
		Name:           "Ink Sepolia",
		ChainID:        763373,
		RPCURL:         "https://rpc-gel-sepolia.inkonchain.com",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://explorer-sepolia.inkonchain.com",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/ink.svg",
	},
	{
		ID:             "mode-sepolia",
		Name:           "Mode Sepolia",
		ChainID:        919,
		RPCURL:         "https://sepolia.mode.network",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://sepolia.explorer.mode.network",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/mode.svg",
	},
	{
		ID:             "zora-sepolia",
		Name:           "Zora Sepolia",
		ChainID:        999999999,
		RPCURL:         "https://sepolia.rpc.zora.energy",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://sepolia.explorer.zora.energy",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/zora.svg",
	},
	{
		ID:             "unichain-sepolia",
		Name:           "Unichain Sepolia",
		ChainID:        1301,
		RPCURL:         "https://sepolia.unichain.org",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://sepolia.uniscan.xyz",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/unichain.svg",
	},
	{
		ID:             "blast-sepolia",
		Name:           "Blast Sepolia",
		ChainID:        168587773,
		RPCURL:         "https://sepolia.blast.io",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://testnet.blastscan.io",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/blast.svg",
	},
	{
		ID:             "frax-sepolia",
		Name:           "Frax Sepolia",
		ChainID:        2522,
		RPCURL:         "https://rpc.testnet.frax.com",
		NativeCurrency: "frxETH",
		ExplorerURL:    "https://holesky.fraxscan.com",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/frax.svg",
	},
	{
		ID:             "cyber-sepolia",
		Name:           "Cyber Sepolia",
		ChainID:        111557560,
		RPCURL:         "https://cyber-testnet.alt.technology",
		NativeCurrency: "ETH",
		ExplorerURL:    "https://testnet.cyberscan.co",
		FaucetAmount:   "0.001",
		IsActive:       true,
		IconURL:        "/networks/cyber.svg",
	},
}
