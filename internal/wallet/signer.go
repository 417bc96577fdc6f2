package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/faucethub/faucetd/internal/config"
)

// Signer is the single faucet-controlled account for a deployment.
type Signer struct {
	privKey *ecdsa.PrivateKey
	address common.Address
}

// NewSigner wraps an already-resolved private key.
func NewSigner(privKey *ecdsa.PrivateKey) *Signer {
	return &Signer{
		privKey: privKey,
		address: crypto.PubkeyToAddress(privKey.PublicKey),
	}
}

// NewSignerFromConfig resolves the faucet signer from configuration. A raw
// private key takes precedence over the mnemonic file; with neither present
// the faucet cannot disburse and claims must fail as a server configuration
// error.
func NewSignerFromConfig(cfg *config.Config) (*Signer, error) {
	switch {
	case cfg.PrivateKey != "":
		keyHex := strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x")
		privKey, err := crypto.HexToECDSA(keyHex)
		if err != nil {
			return nil, fmt.Errorf("%w: parse private key: %s", config.ErrKeyDerivation, err)
		}
		signer := NewSigner(privKey)
		slog.Info("faucet signer resolved from private key", "address", signer.Address().Hex())
		return signer, nil

	case cfg.MnemonicFile != "":
		mnemonic, err := ReadMnemonicFromFile(cfg.MnemonicFile)
		if err != nil {
			return nil, err
		}
		seed, err := MnemonicToSeed(mnemonic)
		if err != nil {
			return nil, err
		}
		privKey, err := DeriveSignerKey(seed)
		if err != nil {
			return nil, err
		}
		signer := NewSigner(privKey)
		slog.Info("faucet signer derived from mnemonic",
			"address", signer.Address().Hex(),
			"path", "m/44'/60'/0'/0/0",
		)
		return signer, nil

	default:
		return nil, config.ErrSignerNotConfigured
	}
}

// Address returns the signer's account address.
func (s *Signer) Address() common.Address {
	return s.address
}

// PrivateKey returns the signing key. Callers must not retain copies beyond
// the signing operation.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return s.privKey
}

// Zero clears the private scalar. Call on shutdown.
func (s *Signer) Zero() {
	if s.privKey != nil && s.privKey.D != nil {
		s.privKey.D.SetInt64(0)
	}
}
