package txbuilder

import (
	"github.com/praoslabs/walletd/wtypes"
)

// CertificateKind enumerates the certificate types a built transaction can
// carry.
type CertificateKind uint8

const (
	// CertStakeKeyRegistration registers a stake key.
	CertStakeKeyRegistration CertificateKind = iota

	// CertStakeKeyDeregistration deregisters a stake key.
	CertStakeKeyDeregistration

	// CertDelegation delegates a stake key to a pool.
	CertDelegation
)

// Certificate is a single certificate carried in a transaction body.
type Certificate struct {
	// Kind is the certificate type.
	Kind CertificateKind

	// Account is the reward account whose stake credential the
	// certificate applies to.
	Account wtypes.RewardAccount

	// Pool is the delegation target. Only set for CertDelegation.
	Pool wtypes.PoolID
}

// TxBody is the unsigned portion of a transaction: everything the
// witnesses commit to.
type TxBody struct {
	// Inputs are the outputs the transaction spends.
	Inputs []wtypes.TxIn

	// Outputs are the payments and change the transaction creates.
	Outputs []wtypes.TxOut

	// Withdrawals are the reward withdrawals the transaction performs,
	// if any.
	Withdrawals map[wtypes.RewardAccount]wtypes.Coin

	// Certificates are the delegation certificates the transaction
	// carries, in order.
	Certificates []Certificate

	// TTL is the last slot the transaction is valid in.
	TTL wtypes.Slot

	// Metadata is the serialized transaction metadata, if any.
	Metadata []byte
}

// WitnessSet is the collection of witnesses attached to a sealed
// transaction: one verification key witness per spending key, input
// witnesses first, then the withdrawal witness if present.
type WitnessSet struct {
	// VKeyWitnesses are the verification key witnesses.
	VKeyWitnesses []wtypes.TxWitness
}

// DecodedTx is a sealed transaction parsed back into its parts, before the
// spent input values are attached.
type DecodedTx struct {
	// ID is the transaction ID, the blake2b-256 hash of the serialized
	// body.
	ID wtypes.TxID

	// Inputs are the outputs the transaction spends.
	Inputs []wtypes.TxIn

	// Outputs are the outputs the transaction creates.
	Outputs []wtypes.TxOut

	// Withdrawals are the reward withdrawals the transaction performs,
	// if any.
	Withdrawals map[wtypes.RewardAccount]wtypes.Coin

	// Certificates are the delegation certificates the transaction
	// carries.
	Certificates []Certificate

	// Metadata is the transaction's serialized metadata, if any.
	Metadata []byte

	// Witnesses are the verification key witnesses attached to the
	// transaction.
	Witnesses []wtypes.TxWitness
}
