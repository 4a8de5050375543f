package wtypes

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	// PoolIDSize is the size of a pool ID in bytes. A pool ID is the
	// blake2b-224 hash of the pool's cold verification key.
	PoolIDSize = 28

	// PoolOwnerSize is the size of a pool owner in bytes. Owners are
	// identified by their ed25519 stake verification key.
	PoolOwnerSize = 32

	// MetadataHashSize is the size of a pool metadata hash in bytes.
	MetadataHashSize = 32

	// poolIDHrp is the human readable prefix used for the bech32
	// encoding of pool IDs.
	poolIDHrp = "pool"

	// poolOwnerHrp is the human readable prefix used for the bech32
	// encoding of pool owner keys.
	poolOwnerHrp = "ed25519_pk"
)

// ErrMalformedPoolID is returned when decoding a pool ID from a string that
// isn't a valid bech32 encoding with the expected prefix and length.
var ErrMalformedPoolID = errors.New("malformed pool id")

// PoolID uniquely identifies a stake pool.
type PoolID [PoolIDSize]byte

// NewPoolID constructs a PoolID from a byte slice, returning an error if the
// slice length doesn't match PoolIDSize.
func NewPoolID(b []byte) (PoolID, error) {
	var p PoolID
	if len(b) != PoolIDSize {
		return p, fmt.Errorf("invalid pool id length %d, want %d",
			len(b), PoolIDSize)
	}
	copy(p[:], b)

	return p, nil
}

// DecodePoolID parses the bech32 encoding of a pool ID.
func DecodePoolID(s string) (PoolID, error) {
	var p PoolID
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedPoolID, err)
	}
	if hrp != poolIDHrp {
		return p, fmt.Errorf("%w: unexpected prefix %q",
			ErrMalformedPoolID, hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedPoolID, err)
	}

	return NewPoolID(raw)
}

// String returns the bech32 encoding of the pool ID.
func (p PoolID) String() string {
	conv, err := bech32.ConvertBits(p[:], 8, 5, true)
	if err != nil {
		return hex.EncodeToString(p[:])
	}
	s, err := bech32.Encode(poolIDHrp, conv)
	if err != nil {
		return hex.EncodeToString(p[:])
	}

	return s
}

// PoolOwner is the stake verification key of a pool owner.
type PoolOwner [PoolOwnerSize]byte

// NewPoolOwner constructs a PoolOwner from a byte slice, returning an error
// if the slice length doesn't match PoolOwnerSize.
func NewPoolOwner(b []byte) (PoolOwner, error) {
	var o PoolOwner
	if len(b) != PoolOwnerSize {
		return o, fmt.Errorf("invalid pool owner length %d, want %d",
			len(b), PoolOwnerSize)
	}
	copy(o[:], b)

	return o, nil
}

// String returns the bech32 encoding of the owner key.
func (o PoolOwner) String() string {
	conv, err := bech32.ConvertBits(o[:], 8, 5, true)
	if err != nil {
		return hex.EncodeToString(o[:])
	}
	s, err := bech32.Encode(poolOwnerHrp, conv)
	if err != nil {
		return hex.EncodeToString(o[:])
	}

	return s
}

// MetadataHash is the blake2b-256 hash of a pool's off-chain metadata, as
// committed to in the pool's registration certificate.
type MetadataHash [MetadataHashSize]byte

// NewMetadataHash constructs a MetadataHash from a byte slice, returning an
// error if the slice length doesn't match MetadataHashSize.
func NewMetadataHash(b []byte) (MetadataHash, error) {
	var h MetadataHash
	if len(b) != MetadataHashSize {
		return h, fmt.Errorf("invalid metadata hash length %d, "+
			"want %d", len(b), MetadataHashSize)
	}
	copy(h[:], b)

	return h, nil
}

// String returns the hex encoding of the metadata hash.
func (h MetadataHash) String() string {
	return hex.EncodeToString(h[:])
}

// PoolMetadataRef points at a pool's off-chain metadata: where to fetch it
// and the hash the fetched bytes must match.
type PoolMetadataRef struct {
	// URL is the location the metadata is served from.
	URL string

	// Hash is the expected blake2b-256 hash of the metadata bytes.
	Hash MetadataHash
}

// PoolMetadata is the content of a pool's off-chain metadata file.
type PoolMetadata struct {
	// Ticker is the pool's short ticker symbol, between 3 and 5
	// characters.
	Ticker string

	// Name is the pool's human readable name.
	Name string

	// Description optionally describes the pool in more detail.
	Description fn.Option[string]

	// Homepage is the URL of the pool's website.
	Homepage string
}

// PoolRegistrationCertificate announces or updates a stake pool on chain.
// Publishing a new registration certificate for an already registered pool
// replaces the pool's previous parameters wholesale.
type PoolRegistrationCertificate struct {
	// PoolID is the pool being registered.
	PoolID PoolID

	// Owners are the pool's owner keys, in the order they appear in the
	// certificate.
	Owners []PoolOwner

	// Margin is the fraction of pool rewards the operator takes before
	// the remainder is shared with delegators.
	Margin Percentage

	// Cost is the fixed operating cost the operator takes from rewards
	// each epoch.
	Cost Coin

	// Pledge is the amount of stake the owners commit to delegating to
	// their own pool.
	Pledge Coin

	// Metadata optionally points at the pool's off-chain metadata.
	Metadata fn.Option[PoolMetadataRef]
}

// PoolRetirementCertificate announces the planned retirement of a stake pool
// at the start of a given epoch.
type PoolRetirementCertificate struct {
	// PoolID is the pool being retired.
	PoolID PoolID

	// RetirementEpoch is the epoch at whose start the retirement takes
	// effect.
	RetirementEpoch Epoch
}

// PoolLifeCycleStatus is the life-cycle state of a pool, derived from the
// latest certificates published for it.
type PoolLifeCycleStatus struct {
	// Registration is the latest registration certificate known for the
	// pool. It is None if the pool was never registered, in which case
	// Retirement is None as well.
	Registration fn.Option[PoolRegistrationCertificate]

	// Retirement is the latest retirement certificate known for the
	// pool, set only when it is still in effect, i.e. no registration
	// was published after it.
	Retirement fn.Option[PoolRetirementCertificate]
}

// IsRegistered reports whether the pool has an active registration.
func (s PoolLifeCycleStatus) IsRegistered() bool {
	return s.Registration.IsSome()
}

// IsRetiring reports whether the pool has an effective retirement scheduled.
func (s PoolLifeCycleStatus) IsRetiring() bool {
	return s.Retirement.IsSome()
}
