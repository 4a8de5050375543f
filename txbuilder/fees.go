package txbuilder

import (
	"github.com/praoslabs/walletd/wtypes"
)

// Serialized sizes used by the fee estimator. They bound the CBOR encoding
// from above, so a fee computed over them always covers the sealed
// transaction.
const (
	// txOverheadBytes covers the envelope around the body: the version,
	// array framing, the TTL and the witness set header.
	txOverheadBytes = 16

	// txInputBytes is the size of one input: a 32 byte transaction ID
	// plus index and framing.
	txInputBytes = 43

	// txOutputOverheadBytes is the size of one output before its token
	// bundle: address bytes, coin value and framing.
	txOutputOverheadBytes = 67

	// txAssetEntryBytes is the size of one token bundle entry: a 28
	// byte policy ID, up to 32 bytes of asset name and the quantity.
	txAssetEntryBytes = 73

	// txWithdrawalBytes is the size of one withdrawal: a 29 byte reward
	// account plus the amount.
	txWithdrawalBytes = 43

	// txCertificateBytes is the size of one certificate: kind, a 29
	// byte reward account and an optional 28 byte pool ID.
	txCertificateBytes = 65

	// txVKeyWitnessBytes is the size of one key witness: a 32 byte key
	// and a 64 byte signature plus framing.
	txVKeyWitnessBytes = 102

	// txMetadataOverheadBytes frames the metadata payload.
	txMetadataOverheadBytes = 5
)

// estimateTxSize bounds the serialized size of a transaction built from
// the skeleton under the given context.
func estimateTxSize(txCtx TxContext, skeleton SelectionSkeleton) uint64 {
	size := uint64(txOverheadBytes)

	size += uint64(skeleton.InputCount) * txInputBytes

	for _, out := range skeleton.Outputs {
		size += txOutputOverheadBytes
		size += uint64(out.Assets.AssetCount()) * txAssetEntryBytes
	}
	for _, bundle := range skeleton.ChangeAssets {
		size += txOutputOverheadBytes
		size += uint64(bundle.AssetCount()) * txAssetEntryBytes
	}

	if txCtx.Withdrawal.Kind != WithdrawalNone {
		size += txWithdrawalBytes
	}

	txCtx.Delegation.WhenSome(func(action DelegationAction) {
		size += uint64(len(action.Certificates())) *
			txCertificateBytes
	})

	txCtx.Metadata.WhenSome(func(metadata []byte) {
		size += txMetadataOverheadBytes + uint64(len(metadata))
	})

	// One witness per input, plus the stake key witness a self
	// withdrawal adds.
	size += uint64(skeleton.InputCount) * txVKeyWitnessBytes
	if txCtx.Withdrawal.Kind == WithdrawalSelf {
		size += txVKeyWitnessBytes
	}

	return size
}

// MinimumCost returns the smallest amount the transaction described by the
// skeleton and context can cost: the linear fee over its estimated size,
// plus the stake key deposit when the context registers a stake key.
func MinimumCost(params *wtypes.ProtocolParameters, txCtx TxContext,
	skeleton SelectionSkeleton) wtypes.Coin {

	cost := params.Fee.Fee(estimateTxSize(txCtx, skeleton))

	txCtx.Delegation.WhenSome(func(action DelegationAction) {
		if action.Kind == DelegationRegisterAndJoin {
			cost += params.StakeKeyDeposit
		}
	})

	return cost
}

// EstimateMaxInputs returns how many inputs a transaction with the given
// number of token free payment outputs can carry without exceeding the
// maximum transaction size. Every input brings a key witness with it.
func EstimateMaxInputs(params *wtypes.ProtocolParameters, txCtx TxContext,
	outputCount int) int {

	fixed := estimateTxSize(txCtx, SelectionSkeleton{
		Outputs: make([]wtypes.TxOut, outputCount),
	})
	if fixed >= params.MaxTxSize {
		return 0
	}

	perInput := uint64(txInputBytes + txVKeyWitnessBytes)

	return int((params.MaxTxSize - fixed) / perInput)
}
