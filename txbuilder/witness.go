package txbuilder

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/keychain"
	"github.com/praoslabs/walletd/wtypes"
)

// WitnessMaker produces the witness for a signing key, typically closed
// over the hash of the transaction body being signed. The address is the
// one the witnessed credential belongs to; for withdrawal witnesses the
// reward account bytes stand in for it.
type WitnessMaker func(key keychain.SigningKey,
	addr wtypes.Address) wtypes.TxWitness

// InputWitness is the per-input result of witness resolution. The three
// optional fields are independently absent: an input spending an unknown
// output leaves only Input set, a known address without a held key leaves
// Input and Address set and nothing else.
type InputWitness struct {
	// Input is the input the record describes.
	Input wtypes.TxIn

	// Address is the address of the spent output, if known.
	Address fn.Option[wtypes.Address]

	// Key is the signing key for the address, if held.
	Key fn.Option[keychain.SigningKey]

	// Witness is the produced witness, present exactly when Key is.
	Witness fn.Option[wtypes.TxWitness]
}

// WithdrawalWitness pairs a reward account with the witness authorizing
// its withdrawal.
type WithdrawalWitness struct {
	// Account is the reward account being withdrawn from.
	Account wtypes.RewardAccount

	// Witness authorizes the withdrawal.
	Witness wtypes.TxWitness
}

// ResolveInputWitness resolves the witness for a single input. The
// function is total over the three absence cases: it never fails for
// missing data, it only leaves the corresponding fields unset. The caller
// decides whether a partially resolved record constitutes an error.
func ResolveInputWitness(ks keychain.KeyStore, maker WitnessMaker,
	in wtypes.TxIn) InputWitness {

	record := InputWitness{
		Input:   in,
		Address: fn.None[wtypes.Address](),
		Key:     fn.None[keychain.SigningKey](),
		Witness: fn.None[wtypes.TxWitness](),
	}

	ks.ResolveInput(in).WhenSome(func(addr wtypes.Address) {
		record.Address = fn.Some(addr)

		ks.SigningKey(addr).WhenSome(func(key keychain.SigningKey) {
			record.Key = fn.Some(key)
			record.Witness = fn.Some(maker(key, addr))
		})
	})

	return record
}

// ResolveWithdrawalWitness resolves the witness for a reward account
// withdrawal. The result is None when no stake key is held for the
// account.
func ResolveWithdrawalWitness(ks keychain.KeyStore, maker WitnessMaker,
	acct wtypes.RewardAccount) fn.Option[WithdrawalWitness] {

	return fn.MapOption(func(key keychain.SigningKey) WithdrawalWitness {
		return WithdrawalWitness{
			Account: acct,
			Witness: maker(key, wtypes.NewAddress(acct[:])),
		}
	})(ks.StakeKey(acct))
}
