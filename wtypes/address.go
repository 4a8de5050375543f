package wtypes

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// addressHrp is the human readable prefix used for the bech32
	// encoding of payment addresses.
	addressHrp = "addr"

	// rewardAccountHrp is the human readable prefix used for the bech32
	// encoding of reward accounts.
	rewardAccountHrp = "stake"

	// RewardAccountSize is the size of a reward account in bytes: a one
	// byte header followed by the 28 byte stake credential hash.
	RewardAccountSize = 29
)

// Address is a payment address in its raw binary form. The type is a string
// so addresses can be used as map keys; the bytes are not required to be
// valid UTF-8.
type Address string

// NewAddress constructs an Address from raw bytes.
func NewAddress(b []byte) Address {
	return Address(b)
}

// Bytes returns the raw bytes of the address.
func (a Address) Bytes() []byte {
	return []byte(a)
}

// String returns the bech32 encoding of the address.
func (a Address) String() string {
	conv, err := bech32.ConvertBits([]byte(a), 8, 5, true)
	if err != nil {
		return hex.EncodeToString([]byte(a))
	}
	s, err := bech32.Encode(addressHrp, conv)
	if err != nil {
		return hex.EncodeToString([]byte(a))
	}

	return s
}

// RewardAccount is the account rewards and withdrawals are attached to. It
// is derived from a stake key and serves as the target of delegation
// certificates.
type RewardAccount [RewardAccountSize]byte

// NewRewardAccount constructs a RewardAccount from a byte slice, returning
// an error if the slice length doesn't match RewardAccountSize.
func NewRewardAccount(b []byte) (RewardAccount, error) {
	var r RewardAccount
	if len(b) != RewardAccountSize {
		return r, fmt.Errorf("invalid reward account length %d, "+
			"want %d", len(b), RewardAccountSize)
	}
	copy(r[:], b)

	return r, nil
}

// String returns the bech32 encoding of the reward account.
func (r RewardAccount) String() string {
	conv, err := bech32.ConvertBits(r[:], 8, 5, true)
	if err != nil {
		return hex.EncodeToString(r[:])
	}
	s, err := bech32.Encode(rewardAccountHrp, conv)
	if err != nil {
		return hex.EncodeToString(r[:])
	}

	return s
}
