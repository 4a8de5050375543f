package wtypes

import (
	"encoding/hex"
	"fmt"
)

const (
	// TxIDSize is the size of a transaction ID in bytes.
	TxIDSize = 32

	// WitnessVKeySize is the size of a witness verification key in
	// bytes.
	WitnessVKeySize = 32

	// WitnessSigSize is the size of a witness signature in bytes.
	WitnessSigSize = 64
)

// TxID is the unique identifier of a transaction: the blake2b-256 hash of
// its serialized body.
type TxID [TxIDSize]byte

// NewTxID constructs a TxID from a byte slice, returning an error if the
// slice length doesn't match TxIDSize.
func NewTxID(b []byte) (TxID, error) {
	var id TxID
	if len(b) != TxIDSize {
		return id, fmt.Errorf("invalid tx id length %d, want %d",
			len(b), TxIDSize)
	}
	copy(id[:], b)

	return id, nil
}

// String returns the hex encoding of the transaction ID.
func (id TxID) String() string {
	return hex.EncodeToString(id[:])
}

// TxIn references an output of a previous transaction.
type TxIn struct {
	// TxID is the transaction the referenced output belongs to.
	TxID TxID

	// Index is the position of the output within that transaction.
	Index uint32
}

// String returns the conventional txid:index rendering of the input.
func (in TxIn) String() string {
	return fmt.Sprintf("%s:%d", in.TxID, in.Index)
}

// TxOut is a transaction output: an address together with the value paid to
// it.
type TxOut struct {
	// Address is the address the output pays to.
	Address Address

	// Coin is the amount of the native currency carried by the output.
	Coin Coin

	// Assets are the native tokens carried by the output, if any.
	Assets TokenBundle
}

// ResolvedInput is a transaction input together with the coin value of the
// output it spends. The value isn't part of the on-chain input reference and
// has to be resolved against the spender's UTxO set.
type ResolvedInput struct {
	// Input references the output being spent.
	Input TxIn

	// Coin is the coin value of the spent output.
	Coin Coin
}

// TxWitness is a single verification key witness: a signature over the
// transaction ID together with the key that produced it.
type TxWitness struct {
	// VKey is the verification key the signature is checked against.
	VKey [WitnessVKeySize]byte

	// Signature is the ed25519 signature over the transaction ID.
	Signature [WitnessSigSize]byte
}

// Tx is a wallet-level view of a transaction, with inputs resolved to the
// values they spend.
type Tx struct {
	// ID is the transaction's ID.
	ID TxID

	// ResolvedInputs are the transaction's inputs, each annotated with
	// the coin value of the output it spends.
	ResolvedInputs []ResolvedInput

	// Outputs are the transaction's outputs.
	Outputs []TxOut

	// Withdrawals are the reward account withdrawals performed by the
	// transaction, if any.
	Withdrawals map[RewardAccount]Coin

	// Metadata is the transaction's serialized metadata, if any.
	Metadata []byte
}

// SealedTx is a fully assembled and signed transaction in its final
// serialized form, ready for submission.
type SealedTx []byte
