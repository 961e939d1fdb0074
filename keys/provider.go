// Package keys generates account key pairs and checks address shape for the ledger.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
)

// Provider is the only source of addresses the ledger accepts
type Provider interface {
	// GenerateKeyPair returns a fresh hex private key and the address derived from it
	GenerateKeyPair() (privateKey string, address string, err error)
	// ValidateAddressFormat reports whether address is well formed
	ValidateAddressFormat(address string) bool
}

// Ed25519Provider derives base58 addresses from Ed25519 public keys.
// Private keys are the hex encoded 32-byte seed.
type Ed25519Provider struct {
	rand io.Reader
}

func NewEd25519Provider() *Ed25519Provider {
	return &Ed25519Provider{rand: rand.Reader}
}

// NewEd25519ProviderWithRand uses r as the entropy source. Intended for reproducible simulations.
func NewEd25519ProviderWithRand(r io.Reader) *Ed25519Provider {
	return &Ed25519Provider{rand: r}
}

func (p *Ed25519Provider) GenerateKeyPair() (string, string, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(p.rand, seed); err != nil {
		return "", "", fmt.Errorf("failed to generate ed25519 seed: %w", err)
	}

	privKey := ed25519.NewKeyFromSeed(seed)
	pubKey := privKey.Public().(ed25519.PublicKey)

	return hex.EncodeToString(seed), base58.Encode(pubKey), nil
}

func (p *Ed25519Provider) ValidateAddressFormat(address string) bool {
	return IsValidAddress(address)
}

// IsValidAddress checks that address is base58 of a 32-byte public key
func IsValidAddress(address string) bool {
	if address == "" {
		return false
	}
	decoded, err := base58.Decode(address)
	if err != nil {
		return false
	}
	return len(decoded) == ed25519.PublicKeySize
}

// AddressFromPrivateKey re-derives the address for a hex seed
func AddressFromPrivateKey(privateKeyHex string) (string, error) {
	seed, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return "", fmt.Errorf("invalid private key length: expected %d, got %d", ed25519.SeedSize, len(seed))
	}
	pubKey := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	return base58.Encode(pubKey), nil
}
