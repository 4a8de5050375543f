package keychain

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/praoslabs/walletd/wtypes"
	"github.com/stretchr/testify/require"
)

// randomSeed returns 32 random bytes.
func randomSeed(t *testing.T) []byte {
	t.Helper()

	seed := make([]byte, ed25519.SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	return seed
}

// TestSigningKey asserts that wrapped keys produce verifiable signatures
// and that derivation from a seed is deterministic.
func TestSigningKey(t *testing.T) {
	t.Parallel()

	seed := randomSeed(t)

	key, err := NewSigningKeyFromSeed(seed)
	require.NoError(t, err)

	msg := []byte("sign me")
	sig := key.Sign(msg)
	require.True(t, ed25519.Verify(key.PubKey(), msg, sig))

	// The same seed yields the same key pair.
	again, err := NewSigningKeyFromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, key.PubKey(), again.PubKey())

	// Wrapping the expanded private key is equivalent to deriving from
	// the seed.
	wrapped, err := NewSigningKey(ed25519.NewKeyFromSeed(seed))
	require.NoError(t, err)
	require.Equal(t, key.PubKey(), wrapped.PubKey())

	_, err = NewSigningKeyFromSeed(seed[:16])
	require.ErrorContains(t, err, "invalid seed length")

	_, err = NewSigningKey(nil)
	require.ErrorContains(t, err, "invalid private key length")
}

// TestMemoryKeyStore asserts the three lookup paths with both present and
// absent entries.
func TestMemoryKeyStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryKeyStore()

	var txID wtypes.TxID
	_, err := rand.Read(txID[:])
	require.NoError(t, err)

	in := wtypes.TxIn{TxID: txID, Index: 0}
	addr := wtypes.NewAddress([]byte{0x01, 0xaa, 0xbb})

	var acct wtypes.RewardAccount
	_, err = rand.Read(acct[:])
	require.NoError(t, err)

	// Everything is absent in an empty store.
	require.True(t, store.ResolveInput(in).IsNone())
	require.True(t, store.SigningKey(addr).IsNone())
	require.True(t, store.StakeKey(acct).IsNone())

	paymentKey, err := NewSigningKeyFromSeed(randomSeed(t))
	require.NoError(t, err)
	stakeKey, err := NewSigningKeyFromSeed(randomSeed(t))
	require.NoError(t, err)

	store.AddUTxO(in, addr)
	store.AddAddressKey(addr, paymentKey)
	store.AddStakeKey(acct, stakeKey)

	resolved := store.ResolveInput(in)
	require.Equal(t, addr, resolved.UnwrapOrFail(t))

	key := store.SigningKey(addr)
	require.Equal(
		t, paymentKey.PubKey(), key.UnwrapOrFail(t).PubKey(),
	)

	sk := store.StakeKey(acct)
	require.Equal(t, stakeKey.PubKey(), sk.UnwrapOrFail(t).PubKey())

	// An unrelated input still resolves to nothing.
	other := wtypes.TxIn{TxID: txID, Index: 7}
	require.True(t, store.ResolveInput(other).IsNone())
}
