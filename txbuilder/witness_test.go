package txbuilder

import (
	"testing"

	"github.com/praoslabs/walletd/keychain"
	"github.com/praoslabs/walletd/wtypes"
	"github.com/stretchr/testify/require"
)

// recordingMaker returns a maker that notes the address of every witness
// it produces.
func recordingMaker(calls *[]wtypes.Address) WitnessMaker {
	return func(key keychain.SigningKey,
		addr wtypes.Address) wtypes.TxWitness {

		*calls = append(*calls, addr)

		var witness wtypes.TxWitness
		copy(witness.VKey[:], key.PubKey())
		copy(witness.Signature[:], key.Sign(addr.Bytes()))

		return witness
	}
}

// TestResolveInputWitness asserts the three absence cases of input witness
// resolution and that the maker only runs when a key is held.
func TestResolveInputWitness(t *testing.T) {
	t.Parallel()

	ks := keychain.NewMemoryKeyStore()

	knownIn := testTxIn(0xaa, 0)
	knownAddr := testAddr(0x0a)
	knownKey := testKey(t, 0x0a)
	ks.AddUTxO(knownIn, knownAddr)
	ks.AddAddressKey(knownAddr, knownKey)

	keylessIn := testTxIn(0xbb, 1)
	keylessAddr := testAddr(0x0b)
	ks.AddUTxO(keylessIn, keylessAddr)

	var calls []wtypes.Address
	maker := recordingMaker(&calls)

	t.Run("unknown output", func(t *testing.T) {
		record := ResolveInputWitness(ks, maker, testTxIn(0xcc, 2))

		require.Equal(t, testTxIn(0xcc, 2), record.Input)
		require.True(t, record.Address.IsNone())
		require.True(t, record.Key.IsNone())
		require.True(t, record.Witness.IsNone())
		require.Empty(t, calls)
	})

	t.Run("address without key", func(t *testing.T) {
		record := ResolveInputWitness(ks, maker, keylessIn)

		require.Equal(t, keylessAddr,
			record.Address.UnwrapOrFail(t))
		require.True(t, record.Key.IsNone())
		require.True(t, record.Witness.IsNone())
		require.Empty(t, calls)
	})

	t.Run("fully resolved", func(t *testing.T) {
		record := ResolveInputWitness(ks, maker, knownIn)

		require.Equal(t, knownAddr, record.Address.UnwrapOrFail(t))
		require.True(t, record.Key.IsSome())

		witness := record.Witness.UnwrapOrFail(t)
		require.Equal(t, []byte(knownKey.PubKey()), witness.VKey[:])

		require.Equal(t, []wtypes.Address{knownAddr}, calls)
	})
}

// TestResolveWithdrawalWitness asserts that withdrawal resolution yields a
// witness exactly when the stake key is held, with the reward account
// bytes standing in for the address.
func TestResolveWithdrawalWitness(t *testing.T) {
	t.Parallel()

	ks := keychain.NewMemoryKeyStore()

	acct := testRewardAccount(0x0e)
	stakeKey := testKey(t, 0x0e)
	ks.AddStakeKey(acct, stakeKey)

	var calls []wtypes.Address
	maker := recordingMaker(&calls)

	t.Run("stake key missing", func(t *testing.T) {
		missing := ResolveWithdrawalWitness(
			ks, maker, testRewardAccount(0x1e),
		)
		require.True(t, missing.IsNone())
		require.Empty(t, calls)
	})

	t.Run("stake key held", func(t *testing.T) {
		resolved := ResolveWithdrawalWitness(ks, maker, acct)

		withdrawal := resolved.UnwrapOrFail(t)
		require.Equal(t, acct, withdrawal.Account)
		require.Equal(
			t, []byte(stakeKey.PubKey()),
			withdrawal.Witness.VKey[:],
		)

		require.Equal(
			t, []wtypes.Address{wtypes.NewAddress(acct[:])},
			calls,
		)
	})
}
