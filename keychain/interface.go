package keychain

import (
	"crypto/ed25519"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/wtypes"
)

// SigningKey is a decrypted ed25519 signing key. The private material is
// unexported so holders can sign with the key but never read it back. The
// zero value is unusable; construct keys through NewSigningKey or
// NewSigningKeyFromSeed.
type SigningKey struct {
	priv ed25519.PrivateKey
}

// NewSigningKey wraps a copy of the given ed25519 private key.
func NewSigningKey(priv ed25519.PrivateKey) (SigningKey, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return SigningKey{}, fmt.Errorf("invalid private key "+
			"length %d, want %d", len(priv),
			ed25519.PrivateKeySize)
	}

	key := SigningKey{
		priv: make(ed25519.PrivateKey, ed25519.PrivateKeySize),
	}
	copy(key.priv, priv)

	return key, nil
}

// NewSigningKeyFromSeed derives a signing key from a 32 byte seed.
func NewSigningKeyFromSeed(seed []byte) (SigningKey, error) {
	if len(seed) != ed25519.SeedSize {
		return SigningKey{}, fmt.Errorf("invalid seed length %d, "+
			"want %d", len(seed), ed25519.SeedSize)
	}

	return SigningKey{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// PubKey returns the verification key matching the signing key.
func (k SigningKey) PubKey() ed25519.PublicKey {
	return k.priv.Public().(ed25519.PublicKey)
}

// Sign signs msg with the wrapped private key.
func (k SigningKey) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// KeyStore resolves the addresses and decrypted signing material needed to
// witness a transaction. Lookups are pure and non-blocking; absence is an
// expected answer, not an error.
type KeyStore interface {
	// ResolveInput returns the address of the output the given input
	// spends, if the wallet knows that output.
	ResolveInput(in wtypes.TxIn) fn.Option[wtypes.Address]

	// SigningKey returns the decrypted payment key for the given
	// address, if the wallet holds it.
	SigningKey(addr wtypes.Address) fn.Option[SigningKey]

	// StakeKey returns the decrypted stake key for the given reward
	// account, if the wallet holds it.
	StakeKey(acct wtypes.RewardAccount) fn.Option[SigningKey]
}
