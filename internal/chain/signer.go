package chain

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeySigner is the cached faucet wallet key material, derived once at
// startup when a private key is configured.
type KeySigner struct {
	address       string
	privateKeyHex string
}

// NewKeySigner pairs an already-derived address with its private key;
// it derives nothing itself. Callers obtain the address beforehand (see
// DeriveAddress) and pass it in alongside the key.
func NewKeySigner(address, privateKeyHex string) *KeySigner {
	return &KeySigner{address: address, privateKeyHex: privateKeyHex}
}

func (s *KeySigner) Address() string       { return s.address }
func (s *KeySigner) PrivateKeyHex() string { return s.privateKeyHex }

// DeriveAddress computes the faucet wallet's address from a configured
// private key when the chain SDK's real derivation is unavailable to
// this module (it is treated as an external black box). It is a
// one-way hash folded to the normalized 32-byte address length, stable
// across restarts for the same key.
func DeriveAddress(privateKeyHex string) string {
	sum := sha256.Sum256([]byte(privateKeyHex))
	return "0x" + hex.EncodeToString(sum[:])
}
