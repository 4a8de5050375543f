package pooldb

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/wtypes"
)

// Store is the interface to the stake pool database. The database indexes
// what the chain says about stake pools: which pool produced which block,
// the stake delegated to each pool per epoch, the registration and
// retirement certificates published for each pool, and the off-chain
// metadata fetched for registered pools.
//
// Every Store operation runs in its own serializable database transaction.
// Use DB.Atomically to compose several operations into a single one.
type Store interface {
	// PutPoolProduction records that the given pool produced the block
	// described by header. If a production record already occupies the
	// header's slot, ErrPointAlreadyExists is returned and nothing is
	// written.
	PutPoolProduction(ctx context.Context, header wtypes.BlockHeader,
		pool wtypes.PoolID) error

	// ReadPoolProduction returns the blocks produced within the given
	// epoch, grouped by producing pool. Each pool's list is ordered by
	// ascending slot.
	ReadPoolProduction(ctx context.Context, epoch wtypes.Epoch) (
		map[wtypes.PoolID][]wtypes.BlockHeader, error)

	// ReadTotalProduction returns the number of blocks ever produced by
	// each pool, across all epochs.
	ReadTotalProduction(ctx context.Context) (map[wtypes.PoolID]uint64,
		error)

	// PutStakeDistribution replaces the stake distribution snapshot of
	// the given epoch with the passed one.
	PutStakeDistribution(ctx context.Context, epoch wtypes.Epoch,
		distribution map[wtypes.PoolID]wtypes.Coin) error

	// ReadStakeDistribution returns the stake distribution snapshot of
	// the given epoch. The map is empty if no snapshot was ever stored
	// for the epoch.
	ReadStakeDistribution(ctx context.Context, epoch wtypes.Epoch) (
		map[wtypes.PoolID]wtypes.Coin, error)

	// PutPoolRegistration stores a pool registration certificate that
	// was published at the given point.
	PutPoolRegistration(ctx context.Context, point wtypes.Point,
		cert wtypes.PoolRegistrationCertificate) error

	// ReadPoolRegistration returns the latest registration certificate
	// published for the given pool, or None if the pool was never
	// registered.
	ReadPoolRegistration(ctx context.Context, pool wtypes.PoolID) (
		fn.Option[wtypes.PoolRegistrationCertificate], error)

	// PutPoolRetirement stores a pool retirement certificate that was
	// published at the given point.
	PutPoolRetirement(ctx context.Context, point wtypes.Point,
		cert wtypes.PoolRetirementCertificate) error

	// ReadPoolRetirement returns the latest retirement certificate
	// published for the given pool, or None if none was ever published.
	// The certificate is returned even when a later re-registration
	// cancelled it; ReadPoolLifeCycleStatus interprets the two
	// certificate streams together.
	ReadPoolRetirement(ctx context.Context, pool wtypes.PoolID) (
		fn.Option[wtypes.PoolRetirementCertificate], error)

	// ReadPoolLifeCycleStatus derives the pool's life-cycle state from
	// the latest certificates published for it. A retirement only takes
	// effect when it was published at a strictly later slot than the
	// latest registration.
	ReadPoolLifeCycleStatus(ctx context.Context, pool wtypes.PoolID) (
		wtypes.PoolLifeCycleStatus, error)

	// ListRegisteredPools returns the pool IDs of every registration
	// certificate on record, most recently published first. A pool that
	// re-registered appears once per certificate.
	ListRegisteredPools(ctx context.Context) ([]wtypes.PoolID, error)

	// ListRetiredPools returns the retirement certificates that have
	// taken effect at or before the given epoch. Only the latest
	// certificate per pool counts, and a certificate cancelled by a
	// later re-registration doesn't retire the pool.
	ListRetiredPools(ctx context.Context, epoch wtypes.Epoch) (
		[]wtypes.PoolRetirementCertificate, error)

	// UnfetchedPoolMetadataRefs returns up to limit metadata references
	// from registration certificates whose metadata hasn't been fetched
	// yet, skipping references that are still inside their retry backoff
	// window. Malformed references are dropped rather than failing the
	// query.
	UnfetchedPoolMetadataRefs(ctx context.Context, limit int) (
		[]wtypes.PoolMetadataRef, error)

	// PutFetchAttempt records a failed fetch of the referenced metadata.
	// Each consecutive failure doubles the backoff before the reference
	// is handed out again by UnfetchedPoolMetadataRefs.
	PutFetchAttempt(ctx context.Context, ref wtypes.PoolMetadataRef) error

	// PutPoolMetadata stores the metadata with the given content hash
	// and clears any pending fetch attempt record for it. Storing the
	// same hash twice is a harmless overwrite.
	PutPoolMetadata(ctx context.Context, hash wtypes.MetadataHash,
		meta wtypes.PoolMetadata) error

	// ReadPoolMetadata returns all stored pool metadata, keyed by
	// content hash.
	ReadPoolMetadata(ctx context.Context) (
		map[wtypes.MetadataHash]wtypes.PoolMetadata, error)

	// PutDelistedPools replaces the set of delisted pools with the
	// passed one.
	PutDelistedPools(ctx context.Context, pools []wtypes.PoolID) error

	// ReadDelistedPools returns the current set of delisted pools.
	ReadDelistedPools(ctx context.Context) ([]wtypes.PoolID, error)

	// RollbackTo unwinds the chain-derived records to the given point:
	// block production and certificates recorded after the point's slot
	// are deleted, as are stake distributions of later epochs. Fetched
	// metadata and fetch attempt records are kept.
	RollbackTo(ctx context.Context, point wtypes.Point) error

	// ReadPoolProductionCursor returns the k most recently produced
	// blocks, ordered by ascending slot.
	ReadPoolProductionCursor(ctx context.Context, k int) (
		[]wtypes.BlockHeader, error)

	// ReadSystemSeed returns the database's random seed, generating and
	// persisting it on first use. Every call afterwards, from any
	// connection, returns the same bytes.
	ReadSystemSeed(ctx context.Context) ([]byte, error)

	// RemovePools deletes every record of the given pools: production,
	// stake distribution, registrations and retirements.
	RemovePools(ctx context.Context, pools []wtypes.PoolID) error

	// RemoveRetiredPools removes every pool retired at or before the
	// given epoch, per ListRetiredPools, and returns the retirement
	// certificates of the removed pools.
	RemoveRetiredPools(ctx context.Context, epoch wtypes.Epoch) (
		[]wtypes.PoolRetirementCertificate, error)

	// Wipe deletes every record family except the system seed.
	Wipe(ctx context.Context) error
}

// DB is a Store that owns its database connection and can compose multiple
// operations into a single transaction.
type DB interface {
	Store

	// Atomically runs f against a Store whose operations all apply
	// within the same database transaction. The transaction commits
	// when f returns nil and rolls back when it returns an error. f may
	// run more than once when the transaction fails to serialize
	// against concurrent ones, so it must not mutate state other than
	// the passed Store.
	Atomically(ctx context.Context, f func(Store) error) error

	// Close closes the database connection backing the store.
	Close() error
}
