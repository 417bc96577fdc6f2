package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/faucethub/faucetd/internal/config"
)

// ValidateMnemonic validates a BIP-39 mnemonic phrase (12 or 24 words).
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("validate mnemonic: %w", config.ErrInvalidMnemonic)
	}

	words := len(strings.Fields(mnemonic))
	if words != 12 && words != 24 {
		return fmt.Errorf("expected 12 or 24 word mnemonic, got %d words: %w", words, config.ErrInvalidMnemonic)
	}
	return nil
}

// MnemonicToSeed converts a BIP-39 mnemonic to a 64-byte seed (empty passphrase).
func MnemonicToSeed(mnemonic string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("mnemonic to seed: %w", err)
	}
	return seed, nil
}

// ReadMnemonicFromFile reads a mnemonic from a file, trims whitespace, and validates it.
func ReadMnemonicFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read mnemonic file %q: %w", path, err)
	}

	mnemonic := strings.TrimSpace(string(data))
	if mnemonic == "" {
		return "", fmt.Errorf("mnemonic file %q is empty: %w", path, config.ErrInvalidMnemonic)
	}

	if err := ValidateMnemonic(mnemonic); err != nil {
		return "", fmt.Errorf("mnemonic file %q: %w", path, err)
	}

	slog.Info("mnemonic read and validated from file")
	return mnemonic, nil
}

// DeriveSignerKey walks the BIP-44 path m/44'/60'/0'/0/0 and returns the
// faucet signing key. The BIP-32 version bytes do not affect EVM derivation,
// so mainnet params are used unconditionally.
func DeriveSignerKey(seed []byte) (*ecdsa.PrivateKey, error) {
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: derive master key: %s", config.ErrKeyDerivation, err)
	}

	// m/44'
	purpose, err := masterKey.Derive(hdkeychain.HardenedKeyStart + uint32(config.BIP44Purpose))
	if err != nil {
		return nil, fmt.Errorf("%w: derive purpose key: %s", config.ErrKeyDerivation, err)
	}

	// m/44'/60'
	coin, err := purpose.Derive(hdkeychain.HardenedKeyStart + uint32(config.EVMCoinType))
	if err != nil {
		return nil, fmt.Errorf("%w: derive coin key: %s", config.ErrKeyDerivation, err)
	}

	// m/44'/60'/0'
	account, err := coin.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, fmt.Errorf("%w: derive account key: %s", config.ErrKeyDerivation, err)
	}

	// m/44'/60'/0'/0
	change, err := account.Derive(0)
	if err != nil {
		return nil, fmt.Errorf("%w: derive change key: %s", config.ErrKeyDerivation, err)
	}

	// m/44'/60'/0'/0/0
	child, err := change.Derive(uint32(config.SignerKeyIndex))
	if err != nil {
		return nil, fmt.Errorf("%w: derive signer key: %s", config.ErrKeyDerivation, err)
	}

	privKey, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract signer private key: %s", config.ErrKeyDerivation, err)
	}

	return privKey.ToECDSA(), nil
}
