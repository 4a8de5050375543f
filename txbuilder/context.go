package txbuilder

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/wtypes"
)

// WithdrawalKind enumerates how a transaction treats reward withdrawals.
type WithdrawalKind uint8

const (
	// WithdrawalNone builds a transaction without any withdrawal.
	WithdrawalNone WithdrawalKind = iota

	// WithdrawalSelf withdraws from the wallet's own reward account,
	// witnessed with the wallet's stake key.
	WithdrawalSelf

	// WithdrawalExternal withdraws from an externally owned reward
	// account. The owner witnesses the withdrawal out of band.
	WithdrawalExternal
)

// Withdrawal selects the reward account a transaction withdraws from, if
// any.
type Withdrawal struct {
	// Kind is the withdrawal variant.
	Kind WithdrawalKind

	// Account is the reward account being withdrawn from. Unset for
	// WithdrawalNone.
	Account wtypes.RewardAccount

	// Amount is the reward amount being withdrawn. Unset for
	// WithdrawalNone.
	Amount wtypes.Coin
}

// NoWithdrawal returns the withdrawal variant of a transaction that
// doesn't withdraw rewards.
func NoWithdrawal() Withdrawal {
	return Withdrawal{Kind: WithdrawalNone}
}

// SelfWithdrawal withdraws the given amount from the wallet's own reward
// account.
func SelfWithdrawal(acct wtypes.RewardAccount,
	amount wtypes.Coin) Withdrawal {

	return Withdrawal{
		Kind:    WithdrawalSelf,
		Account: acct,
		Amount:  amount,
	}
}

// ExternalWithdrawal withdraws the given amount from a reward account the
// wallet doesn't own.
func ExternalWithdrawal(acct wtypes.RewardAccount,
	amount wtypes.Coin) Withdrawal {

	return Withdrawal{
		Kind:    WithdrawalExternal,
		Account: acct,
		Amount:  amount,
	}
}

// RewardAccount returns the account the transaction withdraws from, or
// None for a transaction without withdrawal.
func (w Withdrawal) RewardAccount() fn.Option[wtypes.RewardAccount] {
	if w.Kind == WithdrawalNone {
		return fn.None[wtypes.RewardAccount]()
	}

	return fn.Some(w.Account)
}

// DelegationKind enumerates the delegation changes a transaction can
// perform.
type DelegationKind uint8

const (
	// DelegationJoin delegates an already registered stake key to a
	// pool.
	DelegationJoin DelegationKind = iota

	// DelegationRegisterAndJoin registers the stake key and delegates it
	// to a pool in the same transaction. Registering locks the stake key
	// deposit.
	DelegationRegisterAndJoin

	// DelegationQuit deregisters the stake key, reclaiming the deposit.
	DelegationQuit
)

// DelegationAction describes the delegation change a transaction performs,
// together with the stake credential it applies to.
type DelegationAction struct {
	// Kind is the delegation variant.
	Kind DelegationKind

	// Account is the reward account whose stake credential the action
	// applies to.
	Account wtypes.RewardAccount

	// Pool is the pool being delegated to. Unset for DelegationQuit.
	Pool wtypes.PoolID
}

// JoinPool delegates the account's already registered stake key to the
// given pool.
func JoinPool(acct wtypes.RewardAccount,
	pool wtypes.PoolID) DelegationAction {

	return DelegationAction{
		Kind:    DelegationJoin,
		Account: acct,
		Pool:    pool,
	}
}

// RegisterAndJoinPool registers the account's stake key and delegates it to
// the given pool in one transaction.
func RegisterAndJoinPool(acct wtypes.RewardAccount,
	pool wtypes.PoolID) DelegationAction {

	return DelegationAction{
		Kind:    DelegationRegisterAndJoin,
		Account: acct,
		Pool:    pool,
	}
}

// QuitDelegation deregisters the account's stake key.
func QuitDelegation(acct wtypes.RewardAccount) DelegationAction {
	return DelegationAction{
		Kind:    DelegationQuit,
		Account: acct,
	}
}

// Certificates returns the certificate list the action expands to, in the
// order the certificates must appear in the transaction body.
func (a DelegationAction) Certificates() []Certificate {
	switch a.Kind {
	case DelegationJoin:
		return []Certificate{{
			Kind:    CertDelegation,
			Account: a.Account,
			Pool:    a.Pool,
		}}

	case DelegationRegisterAndJoin:
		// The stake key has to exist before it can delegate, so the
		// registration certificate comes first.
		return []Certificate{
			{
				Kind:    CertStakeKeyRegistration,
				Account: a.Account,
			},
			{
				Kind:    CertDelegation,
				Account: a.Account,
				Pool:    a.Pool,
			},
		}

	case DelegationQuit:
		return []Certificate{{
			Kind:    CertStakeKeyDeregistration,
			Account: a.Account,
		}}

	default:
		return nil
	}
}

// TxContext carries the transaction-level choices that exist independently
// of coin selection: withdrawal, metadata, validity horizon and delegation.
type TxContext struct {
	// Withdrawal selects the reward account withdrawal, if any.
	Withdrawal Withdrawal

	// Metadata is the serialized transaction metadata, if any.
	Metadata fn.Option[[]byte]

	// TTL is the last slot the transaction is valid in.
	TTL wtypes.Slot

	// Delegation is the delegation change the transaction performs, if
	// any.
	Delegation fn.Option[DelegationAction]
}

// DefaultTxContext returns a context with no withdrawal, no metadata, no
// delegation and an unbounded validity horizon.
func DefaultTxContext() TxContext {
	return TxContext{
		Withdrawal: NoWithdrawal(),
		Metadata:   fn.None[[]byte](),
		TTL:        wtypes.MaxSlot,
		Delegation: fn.None[DelegationAction](),
	}
}
