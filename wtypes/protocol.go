package wtypes

import "fmt"

// Era identifies a ledger era. Eras gate which transaction features are
// available; in particular, delegation and withdrawals only exist from the
// Shelley era onwards.
type Era uint8

const (
	// EraByron is the initial federated era. Byron transactions carry
	// neither certificates nor withdrawals.
	EraByron Era = iota

	// EraShelley introduced stake delegation.
	EraShelley

	// EraAllegra introduced token locking and validity intervals.
	EraAllegra

	// EraMary introduced native multi-asset support.
	EraMary
)

// String returns the era's name.
func (e Era) String() string {
	switch e {
	case EraByron:
		return "byron"
	case EraShelley:
		return "shelley"
	case EraAllegra:
		return "allegra"
	case EraMary:
		return "mary"
	default:
		return fmt.Sprintf("unknown<%d>", uint8(e))
	}
}

// SupportsDelegation reports whether transactions of the era may carry
// delegation certificates and withdrawals.
func (e Era) SupportsDelegation() bool {
	return e >= EraShelley
}

// FeePolicy is the linear fee schedule of the chain: a transaction of s
// serialized bytes costs Base + s*PerByte.
type FeePolicy struct {
	// Base is the constant portion of the fee.
	Base Coin

	// PerByte is the marginal fee per serialized byte.
	PerByte Coin
}

// Fee returns the fee for a transaction of the given serialized size.
func (p FeePolicy) Fee(sizeBytes uint64) Coin {
	return p.Base + Coin(sizeBytes)*p.PerByte
}

// ProtocolParameters are the subset of the chain's protocol parameters that
// constrain transaction construction.
type ProtocolParameters struct {
	// Fee is the linear fee schedule.
	Fee FeePolicy

	// MaxTxSize is the maximum serialized transaction size in bytes.
	MaxTxSize uint64

	// MaxTokenBundleSize is the maximum serialized size in bytes of the
	// token bundle of a single output.
	MaxTokenBundleSize uint64

	// StakeKeyDeposit is the deposit that registering a stake key
	// requires, refunded on deregistration.
	StakeKeyDeposit Coin

	// MinUTxOValue is the minimum coin value an output must carry.
	MinUTxOValue Coin
}
