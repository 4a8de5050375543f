package pooldb

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/sqldb"
	"github.com/praoslabs/walletd/sqldb/sqlc"
	"github.com/praoslabs/walletd/wtypes"
)

const (
	// systemSeedSize is the number of random bytes in the system seed.
	systemSeedSize = 32

	// metadataRetryBase is the backoff after the first failed metadata
	// fetch.
	metadataRetryBase = time.Minute

	// metadataRetryCap bounds the doubling of the fetch backoff. With a
	// one minute base the longest backoff is 512 minutes.
	metadataRetryCap = 9
)

// SQLQueries is a subset of the sqlc.Querier interface that can be used to
// execute queries against the stake pool tables.
//
//nolint:ll,interfacebloat
type SQLQueries interface {
	/*
		Block production queries.
	*/
	InsertPoolProduction(ctx context.Context, arg sqlc.InsertPoolProductionParams) error
	ListPoolProductionInRange(ctx context.Context, arg sqlc.ListPoolProductionInRangeParams) ([]sqlc.PoolProduction, error)
	ListRecentPoolProduction(ctx context.Context, limit int64) ([]sqlc.PoolProduction, error)
	CountPoolProduction(ctx context.Context) ([]sqlc.CountPoolProductionRow, error)
	DeletePoolProductionAfterSlot(ctx context.Context, slot int64) error
	DeletePoolProductionByPool(ctx context.Context, poolID []byte) error
	DeleteAllPoolProduction(ctx context.Context) error

	/*
		Stake distribution queries.
	*/
	InsertStakeDistribution(ctx context.Context, arg sqlc.InsertStakeDistributionParams) error
	ListStakeDistribution(ctx context.Context, epoch int64) ([]sqlc.StakeDistribution, error)
	DeleteStakeDistribution(ctx context.Context, epoch int64) error
	DeleteStakeDistributionAfterEpoch(ctx context.Context, epoch int64) error
	DeleteStakeDistributionByPool(ctx context.Context, poolID []byte) error
	DeleteAllStakeDistribution(ctx context.Context) error

	/*
		Registration certificate queries.
	*/
	UpsertPoolRegistration(ctx context.Context, arg sqlc.UpsertPoolRegistrationParams) error
	GetLatestPoolRegistration(ctx context.Context, poolID []byte) (sqlc.PoolRegistration, error)
	ListLatestPoolRegistrations(ctx context.Context) ([]sqlc.PoolRegistration, error)
	ListRegisteredPools(ctx context.Context) ([][]byte, error)
	InsertPoolOwner(ctx context.Context, arg sqlc.InsertPoolOwnerParams) error
	ListPoolOwners(ctx context.Context, arg sqlc.ListPoolOwnersParams) ([][]byte, error)
	DeletePoolOwners(ctx context.Context, arg sqlc.DeletePoolOwnersParams) error
	DeletePoolRegistrationAfterSlot(ctx context.Context, slot int64) error
	DeletePoolRegistrationByPool(ctx context.Context, poolID []byte) error
	DeleteAllPoolRegistration(ctx context.Context) error

	/*
		Retirement certificate queries.
	*/
	UpsertPoolRetirement(ctx context.Context, arg sqlc.UpsertPoolRetirementParams) error
	GetLatestPoolRetirement(ctx context.Context, poolID []byte) (sqlc.PoolRetirement, error)
	ListLatestPoolRetirements(ctx context.Context) ([]sqlc.PoolRetirement, error)
	DeletePoolRetirementAfterSlot(ctx context.Context, slot int64) error
	DeletePoolRetirementByPool(ctx context.Context, poolID []byte) error
	DeleteAllPoolRetirement(ctx context.Context) error

	/*
		Metadata queries.
	*/
	UpsertPoolMetadata(ctx context.Context, arg sqlc.UpsertPoolMetadataParams) error
	ListPoolMetadata(ctx context.Context) ([]sqlc.PoolMetadata, error)
	ListUnfetchedPoolMetadata(ctx context.Context, arg sqlc.ListUnfetchedPoolMetadataParams) ([]sqlc.ListUnfetchedPoolMetadataRow, error)
	GetFetchAttempt(ctx context.Context, arg sqlc.GetFetchAttemptParams) (sqlc.PoolMetadataFetchAttempt, error)
	UpsertFetchAttempt(ctx context.Context, arg sqlc.UpsertFetchAttemptParams) error
	DeleteFetchAttemptsByHash(ctx context.Context, hash []byte) error
	DeleteAllFetchAttempts(ctx context.Context) error
	DeleteAllPoolMetadata(ctx context.Context) error

	/*
		Delistment queries.
	*/
	InsertDelistedPool(ctx context.Context, poolID []byte) error
	ListDelistedPools(ctx context.Context) ([][]byte, error)
	DeleteAllDelistedPools(ctx context.Context) error

	/*
		System seed queries.
	*/
	InsertSystemSeed(ctx context.Context, arg sqlc.InsertSystemSeedParams) error
	GetSystemSeed(ctx context.Context) (sqlc.SystemSeed, error)
}

// BatchedSQLQueries is a version of SQLQueries that's capable of batched
// database operations.
type BatchedSQLQueries interface {
	SQLQueries

	sqldb.BatchedTx[SQLQueries]
}

// SQLStoreConfig holds the configuration for the SQLStore.
type SQLStoreConfig struct {
	// EpochLength is the number of slots per epoch of the chain the
	// database indexes.
	EpochLength wtypes.EpochLength
}

// SQLStore is an implementation of the DB interface that uses a SQL
// database as the backend.
type SQLStore struct {
	cfg *SQLStoreConfig
	db  BatchedSQLQueries

	clock  clock.Clock
	closer io.Closer
}

// A compile-time assertion to ensure that SQLStore implements the DB
// interface.
var _ DB = (*SQLStore)(nil)

// StoreOption modifies the default behavior of the SQLStore.
type StoreOption func(*SQLStore)

// WithClock sets the clock the store reads the current time from. Useful
// for testing the metadata fetch backoff.
func WithClock(c clock.Clock) StoreOption {
	return func(s *SQLStore) {
		s.clock = c
	}
}

// WithCloser hands the store ownership of the underlying database handle,
// closing it when the store itself is closed.
func WithCloser(c io.Closer) StoreOption {
	return func(s *SQLStore) {
		s.closer = c
	}
}

// NewSQLStore creates a new SQLStore instance given an open
// BatchedSQLQueries storage backend.
func NewSQLStore(cfg *SQLStoreConfig, db BatchedSQLQueries,
	options ...StoreOption) (*SQLStore, error) {

	if cfg.EpochLength == 0 {
		return nil, fmt.Errorf("epoch length must be positive")
	}

	s := &SQLStore{
		cfg:   cfg,
		db:    db,
		clock: clock.NewDefaultClock(),
	}
	for _, o := range options {
		o(s)
	}

	return s, nil
}

// update runs f inside a single writable database transaction.
func (s *SQLStore) update(ctx context.Context, f func(*txStore) error) error {
	return s.db.ExecTx(ctx, sqldb.WriteTxOpt(), func(db SQLQueries) error {
		return f(&txStore{db: db, cfg: s.cfg, clock: s.clock})
	}, sqldb.NoOpReset)
}

// view runs f inside a single read-only database transaction.
func (s *SQLStore) view(ctx context.Context, f func(*txStore) error) error {
	return s.db.ExecTx(ctx, sqldb.ReadTxOpt(), func(db SQLQueries) error {
		return f(&txStore{db: db, cfg: s.cfg, clock: s.clock})
	}, sqldb.NoOpReset)
}

// PutPoolProduction records that the given pool produced the block described
// by header.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutPoolProduction(ctx context.Context,
	header wtypes.BlockHeader, pool wtypes.PoolID) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutPoolProduction(ctx, header, pool)
	})
}

// ReadPoolProduction returns the blocks produced within the given epoch,
// grouped by producing pool.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadPoolProduction(ctx context.Context,
	epoch wtypes.Epoch) (map[wtypes.PoolID][]wtypes.BlockHeader, error) {

	var production map[wtypes.PoolID][]wtypes.BlockHeader
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		production, err = tx.ReadPoolProduction(ctx, epoch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read pool production: %w",
			err)
	}

	return production, nil
}

// ReadTotalProduction returns the number of blocks ever produced by each
// pool.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadTotalProduction(ctx context.Context) (
	map[wtypes.PoolID]uint64, error) {

	var total map[wtypes.PoolID]uint64
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		total, err = tx.ReadTotalProduction(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read total production: %w",
			err)
	}

	return total, nil
}

// PutStakeDistribution replaces the stake distribution snapshot of the
// given epoch.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutStakeDistribution(ctx context.Context,
	epoch wtypes.Epoch, distribution map[wtypes.PoolID]wtypes.Coin) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutStakeDistribution(ctx, epoch, distribution)
	})
}

// ReadStakeDistribution returns the stake distribution snapshot of the
// given epoch.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadStakeDistribution(ctx context.Context,
	epoch wtypes.Epoch) (map[wtypes.PoolID]wtypes.Coin, error) {

	var distribution map[wtypes.PoolID]wtypes.Coin
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		distribution, err = tx.ReadStakeDistribution(ctx, epoch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read stake "+
			"distribution: %w", err)
	}

	return distribution, nil
}

// PutPoolRegistration stores a pool registration certificate published at
// the given point.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutPoolRegistration(ctx context.Context,
	point wtypes.Point, cert wtypes.PoolRegistrationCertificate) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutPoolRegistration(ctx, point, cert)
	})
}

// ReadPoolRegistration returns the latest registration certificate
// published for the given pool.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadPoolRegistration(ctx context.Context,
	pool wtypes.PoolID) (fn.Option[wtypes.PoolRegistrationCertificate],
	error) {

	var cert fn.Option[wtypes.PoolRegistrationCertificate]
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		cert, err = tx.ReadPoolRegistration(ctx, pool)
		return err
	})
	if err != nil {
		return cert, fmt.Errorf("unable to read pool "+
			"registration: %w", err)
	}

	return cert, nil
}

// PutPoolRetirement stores a pool retirement certificate published at the
// given point.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutPoolRetirement(ctx context.Context, point wtypes.Point,
	cert wtypes.PoolRetirementCertificate) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutPoolRetirement(ctx, point, cert)
	})
}

// ReadPoolRetirement returns the latest retirement certificate published
// for the given pool.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadPoolRetirement(ctx context.Context,
	pool wtypes.PoolID) (fn.Option[wtypes.PoolRetirementCertificate],
	error) {

	var cert fn.Option[wtypes.PoolRetirementCertificate]
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		cert, err = tx.ReadPoolRetirement(ctx, pool)
		return err
	})
	if err != nil {
		return cert, fmt.Errorf("unable to read pool retirement: %w",
			err)
	}

	return cert, nil
}

// ReadPoolLifeCycleStatus derives the pool's life-cycle state from the
// latest certificates published for it.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadPoolLifeCycleStatus(ctx context.Context,
	pool wtypes.PoolID) (wtypes.PoolLifeCycleStatus, error) {

	var status wtypes.PoolLifeCycleStatus
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		status, err = tx.ReadPoolLifeCycleStatus(ctx, pool)
		return err
	})
	if err != nil {
		return status, fmt.Errorf("unable to read pool life cycle "+
			"status: %w", err)
	}

	return status, nil
}

// ListRegisteredPools returns the pool IDs of every registration
// certificate on record, most recently published first.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ListRegisteredPools(ctx context.Context) ([]wtypes.PoolID,
	error) {

	var pools []wtypes.PoolID
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		pools, err = tx.ListRegisteredPools(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list registered pools: %w",
			err)
	}

	return pools, nil
}

// ListRetiredPools returns the retirement certificates that have taken
// effect at or before the given epoch.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ListRetiredPools(ctx context.Context,
	epoch wtypes.Epoch) ([]wtypes.PoolRetirementCertificate, error) {

	var retired []wtypes.PoolRetirementCertificate
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		retired, err = tx.ListRetiredPools(ctx, epoch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list retired pools: %w",
			err)
	}

	return retired, nil
}

// UnfetchedPoolMetadataRefs returns up to limit metadata references whose
// metadata hasn't been fetched yet.
//
// NOTE: part of the Store interface.
func (s *SQLStore) UnfetchedPoolMetadataRefs(ctx context.Context,
	limit int) ([]wtypes.PoolMetadataRef, error) {

	var refs []wtypes.PoolMetadataRef
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		refs, err = tx.UnfetchedPoolMetadataRefs(ctx, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list unfetched metadata "+
			"refs: %w", err)
	}

	return refs, nil
}

// PutFetchAttempt records a failed fetch of the referenced metadata.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutFetchAttempt(ctx context.Context,
	ref wtypes.PoolMetadataRef) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutFetchAttempt(ctx, ref)
	})
}

// PutPoolMetadata stores the metadata with the given content hash.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutPoolMetadata(ctx context.Context,
	hash wtypes.MetadataHash, meta wtypes.PoolMetadata) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutPoolMetadata(ctx, hash, meta)
	})
}

// ReadPoolMetadata returns all stored pool metadata, keyed by content hash.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadPoolMetadata(ctx context.Context) (
	map[wtypes.MetadataHash]wtypes.PoolMetadata, error) {

	var meta map[wtypes.MetadataHash]wtypes.PoolMetadata
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		meta, err = tx.ReadPoolMetadata(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read pool metadata: %w",
			err)
	}

	return meta, nil
}

// PutDelistedPools replaces the set of delisted pools with the passed one.
//
// NOTE: part of the Store interface.
func (s *SQLStore) PutDelistedPools(ctx context.Context,
	pools []wtypes.PoolID) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.PutDelistedPools(ctx, pools)
	})
}

// ReadDelistedPools returns the current set of delisted pools.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadDelistedPools(ctx context.Context) ([]wtypes.PoolID,
	error) {

	var pools []wtypes.PoolID
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		pools, err = tx.ReadDelistedPools(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read delisted pools: %w",
			err)
	}

	return pools, nil
}

// RollbackTo unwinds the chain-derived records to the given point.
//
// NOTE: part of the Store interface.
func (s *SQLStore) RollbackTo(ctx context.Context, point wtypes.Point) error {
	log.Infof("Rolling stake pool database back to %v", point)

	return s.update(ctx, func(tx *txStore) error {
		return tx.RollbackTo(ctx, point)
	})
}

// ReadPoolProductionCursor returns the k most recently produced blocks,
// ordered by ascending slot.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadPoolProductionCursor(ctx context.Context, k int) (
	[]wtypes.BlockHeader, error) {

	var headers []wtypes.BlockHeader
	err := s.view(ctx, func(tx *txStore) error {
		var err error
		headers, err = tx.ReadPoolProductionCursor(ctx, k)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read production cursor: %w",
			err)
	}

	return headers, nil
}

// ReadSystemSeed returns the database's random seed, generating it on first
// use.
//
// NOTE: part of the Store interface.
func (s *SQLStore) ReadSystemSeed(ctx context.Context) ([]byte, error) {
	var seed []byte
	err := s.update(ctx, func(tx *txStore) error {
		var err error
		seed, err = tx.ReadSystemSeed(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read system seed: %w", err)
	}

	return seed, nil
}

// RemovePools deletes every record of the given pools.
//
// NOTE: part of the Store interface.
func (s *SQLStore) RemovePools(ctx context.Context,
	pools []wtypes.PoolID) error {

	return s.update(ctx, func(tx *txStore) error {
		return tx.RemovePools(ctx, pools)
	})
}

// RemoveRetiredPools removes every pool retired at or before the given
// epoch and returns the retirement certificates of the removed pools.
//
// NOTE: part of the Store interface.
func (s *SQLStore) RemoveRetiredPools(ctx context.Context,
	epoch wtypes.Epoch) ([]wtypes.PoolRetirementCertificate, error) {

	var removed []wtypes.PoolRetirementCertificate
	err := s.update(ctx, func(tx *txStore) error {
		var err error
		removed, err = tx.RemoveRetiredPools(ctx, epoch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("unable to remove retired pools: %w",
			err)
	}

	return removed, nil
}

// Wipe deletes every record family except the system seed.
//
// NOTE: part of the Store interface.
func (s *SQLStore) Wipe(ctx context.Context) error {
	log.Infof("Wiping stake pool database")

	return s.update(ctx, func(tx *txStore) error {
		return tx.Wipe(ctx)
	})
}

// Atomically runs f against a Store whose operations all apply within the
// same database transaction.
//
// NOTE: part of the DB interface.
func (s *SQLStore) Atomically(ctx context.Context,
	f func(Store) error) error {

	return s.update(ctx, func(tx *txStore) error {
		return f(tx)
	})
}

// Close closes the database connection backing the store.
//
// NOTE: part of the DB interface.
func (s *SQLStore) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

// txStore applies Store operations to an already open database transaction.
// Both the SQLStore methods and the Atomically callback funnel through it.
type txStore struct {
	db    SQLQueries
	cfg   *SQLStoreConfig
	clock clock.Clock
}

// A compile-time assertion to ensure that txStore implements the Store
// interface, which keeps Atomically's callback scope in sync with the
// outer store.
var _ Store = (*txStore)(nil)

// PutPoolProduction inserts a block production record, translating a
// primary key collision on the slot into ErrPointAlreadyExists.
func (t *txStore) PutPoolProduction(ctx context.Context,
	header wtypes.BlockHeader, pool wtypes.PoolID) error {

	err := t.db.InsertPoolProduction(ctx, sqlc.InsertPoolProductionParams{
		Slot:             int64(header.Slot),
		PoolID:           pool[:],
		HeaderHash:       header.Hash[:],
		ParentHeaderHash: header.ParentHash[:],
		BlockHeight:      int64(header.Height),
	})
	if err != nil {
		if sqldb.IsUniqueConstraintError(sqldb.MapSQLError(err)) {
			return &ErrPointAlreadyExists{Slot: header.Slot}
		}
		return err
	}

	return nil
}

// ReadPoolProduction scans the epoch's slot range and groups the produced
// blocks by pool.
func (t *txStore) ReadPoolProduction(ctx context.Context,
	epoch wtypes.Epoch) (map[wtypes.PoolID][]wtypes.BlockHeader, error) {

	rows, err := t.db.ListPoolProductionInRange(
		ctx, sqlc.ListPoolProductionInRangeParams{
			StartSlot: int64(epoch.StartSlot(t.cfg.EpochLength)),
			EndSlot: int64(
				(epoch + 1).StartSlot(t.cfg.EpochLength),
			),
		},
	)
	if err != nil {
		return nil, err
	}

	production := make(map[wtypes.PoolID][]wtypes.BlockHeader)
	for _, row := range rows {
		pool, err := wtypes.NewPoolID(row.PoolID)
		if err != nil {
			return nil, err
		}
		header, err := unmarshalBlockHeader(row)
		if err != nil {
			return nil, err
		}

		// Rows arrive in ascending slot order, so every per pool
		// list ends up slot ascending as well.
		production[pool] = append(production[pool], header)
	}

	return production, nil
}

// ReadTotalProduction counts the blocks ever produced, per pool.
func (t *txStore) ReadTotalProduction(ctx context.Context) (
	map[wtypes.PoolID]uint64, error) {

	rows, err := t.db.CountPoolProduction(ctx)
	if err != nil {
		return nil, err
	}

	total := make(map[wtypes.PoolID]uint64, len(rows))
	for _, row := range rows {
		pool, err := wtypes.NewPoolID(row.PoolID)
		if err != nil {
			return nil, err
		}
		total[pool] = uint64(row.Blocks)
	}

	return total, nil
}

// PutStakeDistribution deletes the epoch's snapshot and inserts the passed
// one in its place.
func (t *txStore) PutStakeDistribution(ctx context.Context,
	epoch wtypes.Epoch, distribution map[wtypes.PoolID]wtypes.Coin) error {

	err := t.db.DeleteStakeDistribution(ctx, int64(epoch))
	if err != nil {
		return err
	}

	for pool, stake := range distribution {
		err := t.db.InsertStakeDistribution(
			ctx, sqlc.InsertStakeDistributionParams{
				Epoch:  int64(epoch),
				PoolID: pool[:],
				Stake:  int64(stake),
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// ReadStakeDistribution loads the epoch's snapshot into a map.
func (t *txStore) ReadStakeDistribution(ctx context.Context,
	epoch wtypes.Epoch) (map[wtypes.PoolID]wtypes.Coin, error) {

	rows, err := t.db.ListStakeDistribution(ctx, int64(epoch))
	if err != nil {
		return nil, err
	}

	distribution := make(map[wtypes.PoolID]wtypes.Coin, len(rows))
	for _, row := range rows {
		pool, err := wtypes.NewPoolID(row.PoolID)
		if err != nil {
			return nil, err
		}
		distribution[pool] = wtypes.Coin(row.Stake)
	}

	return distribution, nil
}

// PutPoolRegistration upserts the certificate row and replaces its owner
// list wholesale, preserving certificate order.
func (t *txStore) PutPoolRegistration(ctx context.Context,
	point wtypes.Point, cert wtypes.PoolRegistrationCertificate) error {

	var (
		metaURL  sql.NullString
		metaHash []byte
	)
	cert.Metadata.WhenSome(func(ref wtypes.PoolMetadataRef) {
		metaURL = sqldb.SQLStr(ref.URL)
		metaHash = ref.Hash[:]
	})

	err := t.db.UpsertPoolRegistration(
		ctx, sqlc.UpsertPoolRegistrationParams{
			PoolID:            cert.PoolID[:],
			Slot:              int64(point.Slot),
			MarginNumerator:   int64(cert.Margin.Numerator),
			MarginDenominator: int64(cert.Margin.Denominator),
			Cost:              int64(cert.Cost),
			Pledge:            int64(cert.Pledge),
			MetadataUrl:       metaURL,
			MetadataHash:      metaHash,
		},
	)
	if err != nil {
		return err
	}

	err = t.db.DeletePoolOwners(ctx, sqlc.DeletePoolOwnersParams{
		PoolID: cert.PoolID[:],
		Slot:   int64(point.Slot),
	})
	if err != nil {
		return err
	}

	for i, owner := range cert.Owners {
		err := t.db.InsertPoolOwner(ctx, sqlc.InsertPoolOwnerParams{
			PoolID:     cert.PoolID[:],
			Slot:       int64(point.Slot),
			Owner:      owner[:],
			OwnerIndex: int32(i),
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// ReadPoolRegistration loads the pool's latest registration row together
// with its owner list.
func (t *txStore) ReadPoolRegistration(ctx context.Context,
	pool wtypes.PoolID) (fn.Option[wtypes.PoolRegistrationCertificate],
	error) {

	none := fn.None[wtypes.PoolRegistrationCertificate]()

	row, err := t.db.GetLatestPoolRegistration(ctx, pool[:])
	if errors.Is(err, sql.ErrNoRows) {
		return none, nil
	} else if err != nil {
		return none, err
	}

	cert, err := t.unmarshalRegistrationRow(ctx, row)
	if err != nil {
		return none, err
	}

	return fn.Some(cert), nil
}

// PutPoolRetirement upserts a retirement certificate row.
func (t *txStore) PutPoolRetirement(ctx context.Context, point wtypes.Point,
	cert wtypes.PoolRetirementCertificate) error {

	return t.db.UpsertPoolRetirement(ctx, sqlc.UpsertPoolRetirementParams{
		PoolID:          cert.PoolID[:],
		Slot:            int64(point.Slot),
		RetirementEpoch: int64(cert.RetirementEpoch),
	})
}

// ReadPoolRetirement loads the pool's latest retirement row.
func (t *txStore) ReadPoolRetirement(ctx context.Context,
	pool wtypes.PoolID) (fn.Option[wtypes.PoolRetirementCertificate],
	error) {

	none := fn.None[wtypes.PoolRetirementCertificate]()

	row, err := t.db.GetLatestPoolRetirement(ctx, pool[:])
	if errors.Is(err, sql.ErrNoRows) {
		return none, nil
	} else if err != nil {
		return none, err
	}

	cert, err := unmarshalPoolRetirement(row)
	if err != nil {
		return none, err
	}

	return fn.Some(cert), nil
}

// ReadPoolLifeCycleStatus combines the pool's latest registration and
// retirement rows into a life-cycle state.
func (t *txStore) ReadPoolLifeCycleStatus(ctx context.Context,
	pool wtypes.PoolID) (wtypes.PoolLifeCycleStatus, error) {

	var status wtypes.PoolLifeCycleStatus

	regRow, err := t.db.GetLatestPoolRegistration(ctx, pool[:])
	if errors.Is(err, sql.ErrNoRows) {
		// A pool that never registered has no life cycle, even when a
		// stray retirement certificate exists for it.
		return status, nil
	} else if err != nil {
		return status, err
	}

	regCert, err := t.unmarshalRegistrationRow(ctx, regRow)
	if err != nil {
		return status, err
	}
	status.Registration = fn.Some(regCert)

	retRow, err := t.db.GetLatestPoolRetirement(ctx, pool[:])
	if errors.Is(err, sql.ErrNoRows) {
		return status, nil
	} else if err != nil {
		return status, err
	}

	// A registration at the retirement's slot or later cancels the
	// retirement.
	if retRow.Slot > regRow.Slot {
		retCert, err := unmarshalPoolRetirement(retRow)
		if err != nil {
			return status, err
		}
		status.Retirement = fn.Some(retCert)
	}

	return status, nil
}

// ListRegisteredPools lists the pool ID of every registration row, newest
// first.
func (t *txStore) ListRegisteredPools(ctx context.Context) ([]wtypes.PoolID,
	error) {

	rows, err := t.db.ListRegisteredPools(ctx)
	if err != nil {
		return nil, err
	}

	pools := make([]wtypes.PoolID, 0, len(rows))
	for _, raw := range rows {
		pool, err := wtypes.NewPoolID(raw)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}

	return pools, nil
}

// ListRetiredPools resolves the latest certificates of every pool and
// returns the retirements in effect at or before the given epoch.
func (t *txStore) ListRetiredPools(ctx context.Context, epoch wtypes.Epoch) (
	[]wtypes.PoolRetirementCertificate, error) {

	regs, err := t.db.ListLatestPoolRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	regSlots := make(map[string]int64, len(regs))
	for _, reg := range regs {
		regSlots[string(reg.PoolID)] = reg.Slot
	}

	rets, err := t.db.ListLatestPoolRetirements(ctx)
	if err != nil {
		return nil, err
	}

	var retired []wtypes.PoolRetirementCertificate
	for _, ret := range rets {
		// A retirement for a pool that never registered carries no
		// meaning.
		regSlot, ok := regSlots[string(ret.PoolID)]
		if !ok {
			continue
		}

		// A registration at the retirement's slot or later cancels
		// the retirement.
		if ret.Slot <= regSlot {
			continue
		}

		if ret.RetirementEpoch > int64(epoch) {
			continue
		}

		cert, err := unmarshalPoolRetirement(ret)
		if err != nil {
			return nil, err
		}
		retired = append(retired, cert)
	}

	return retired, nil
}

// UnfetchedPoolMetadataRefs lists metadata references that still need
// fetching and aren't inside their retry backoff window.
func (t *txStore) UnfetchedPoolMetadataRefs(ctx context.Context,
	limit int) ([]wtypes.PoolMetadataRef, error) {

	rows, err := t.db.ListUnfetchedPoolMetadata(
		ctx, sqlc.ListUnfetchedPoolMetadataParams{
			Now:     t.clock.Now().UTC(),
			MaxRefs: int64(limit),
		},
	)
	if err != nil {
		return nil, err
	}

	refs := make([]wtypes.PoolMetadataRef, 0, len(rows))
	for _, row := range rows {
		if !row.MetadataUrl.Valid {
			continue
		}

		// Malformed references are dropped rather than failing the
		// whole query.
		hash, err := wtypes.NewMetadataHash(row.MetadataHash)
		if err != nil {
			log.Debugf("Skipping metadata ref with malformed "+
				"hash for url=%s: %v", row.MetadataUrl.String,
				err)
			continue
		}

		refs = append(refs, wtypes.PoolMetadataRef{
			URL:  row.MetadataUrl.String,
			Hash: hash,
		})
	}

	return refs, nil
}

// PutFetchAttempt bumps the reference's retry count and pushes its backoff
// window out.
func (t *txStore) PutFetchAttempt(ctx context.Context,
	ref wtypes.PoolMetadataRef) error {

	var retryCount int32

	attempt, err := t.db.GetFetchAttempt(ctx, sqlc.GetFetchAttemptParams{
		Url:  ref.URL,
		Hash: ref.Hash[:],
	})
	switch {
	case err == nil:
		retryCount = attempt.RetryCount + 1

	case errors.Is(err, sql.ErrNoRows):
		retryCount = 0

	default:
		return err
	}

	retryAfter := t.clock.Now().UTC().Add(fetchBackoff(retryCount))

	return t.db.UpsertFetchAttempt(ctx, sqlc.UpsertFetchAttemptParams{
		Url:        ref.URL,
		Hash:       ref.Hash[:],
		RetryAfter: retryAfter,
		RetryCount: retryCount,
	})
}

// PutPoolMetadata upserts the metadata row and ends the retry cycle for
// its hash.
func (t *txStore) PutPoolMetadata(ctx context.Context,
	hash wtypes.MetadataHash, meta wtypes.PoolMetadata) error {

	var description sql.NullString
	meta.Description.WhenSome(func(d string) {
		description = sqldb.SQLStr(d)
	})

	err := t.db.UpsertPoolMetadata(ctx, sqlc.UpsertPoolMetadataParams{
		Hash:        hash[:],
		Ticker:      meta.Ticker,
		Name:        meta.Name,
		Description: description,
		Homepage:    meta.Homepage,
	})
	if err != nil {
		return err
	}

	return t.db.DeleteFetchAttemptsByHash(ctx, hash[:])
}

// ReadPoolMetadata loads all metadata rows into a map keyed by hash.
func (t *txStore) ReadPoolMetadata(ctx context.Context) (
	map[wtypes.MetadataHash]wtypes.PoolMetadata, error) {

	rows, err := t.db.ListPoolMetadata(ctx)
	if err != nil {
		return nil, err
	}

	meta := make(map[wtypes.MetadataHash]wtypes.PoolMetadata, len(rows))
	for _, row := range rows {
		hash, err := wtypes.NewMetadataHash(row.Hash)
		if err != nil {
			return nil, err
		}

		description := fn.None[string]()
		if row.Description.Valid {
			description = fn.Some(row.Description.String)
		}

		meta[hash] = wtypes.PoolMetadata{
			Ticker:      row.Ticker,
			Name:        row.Name,
			Description: description,
			Homepage:    row.Homepage,
		}
	}

	return meta, nil
}

// PutDelistedPools replaces the delistment set wholesale.
func (t *txStore) PutDelistedPools(ctx context.Context,
	pools []wtypes.PoolID) error {

	if err := t.db.DeleteAllDelistedPools(ctx); err != nil {
		return err
	}

	for _, pool := range pools {
		if err := t.db.InsertDelistedPool(ctx, pool[:]); err != nil {
			return err
		}
	}

	return nil
}

// ReadDelistedPools lists the delistment set.
func (t *txStore) ReadDelistedPools(ctx context.Context) ([]wtypes.PoolID,
	error) {

	rows, err := t.db.ListDelistedPools(ctx)
	if err != nil {
		return nil, err
	}

	pools := make([]wtypes.PoolID, 0, len(rows))
	for _, raw := range rows {
		pool, err := wtypes.NewPoolID(raw)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}

	return pools, nil
}

// RollbackTo deletes production and certificate rows recorded after the
// point's slot and distribution snapshots of later epochs. Metadata and
// fetch attempts stay, dangling metadata is harmless and saves a refetch
// if the certificate is applied again.
func (t *txStore) RollbackTo(ctx context.Context, point wtypes.Point) error {
	slot := int64(point.Slot)

	err := t.db.DeletePoolProductionAfterSlot(ctx, slot)
	if err != nil {
		return err
	}

	err = t.db.DeletePoolRegistrationAfterSlot(ctx, slot)
	if err != nil {
		return err
	}

	err = t.db.DeletePoolRetirementAfterSlot(ctx, slot)
	if err != nil {
		return err
	}

	epoch := wtypes.EpochOf(point.Slot, t.cfg.EpochLength)

	return t.db.DeleteStakeDistributionAfterEpoch(ctx, int64(epoch))
}

// ReadPoolProductionCursor loads the k newest production rows and flips
// them into ascending slot order.
func (t *txStore) ReadPoolProductionCursor(ctx context.Context, k int) (
	[]wtypes.BlockHeader, error) {

	rows, err := t.db.ListRecentPoolProduction(ctx, int64(k))
	if err != nil {
		return nil, err
	}

	headers := make([]wtypes.BlockHeader, len(rows))
	for i, row := range rows {
		header, err := unmarshalBlockHeader(row)
		if err != nil {
			return nil, err
		}
		headers[len(rows)-1-i] = header
	}

	return headers, nil
}

// ReadSystemSeed inserts a fresh random seed if none exists yet and reads
// the persisted one back. Concurrent first calls race on the insert, only
// the winner's seed survives and everyone reads that one.
func (t *txStore) ReadSystemSeed(ctx context.Context) ([]byte, error) {
	seed := make([]byte, systemSeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}

	err := t.db.InsertSystemSeed(ctx, sqlc.InsertSystemSeedParams{
		Seed:      seed,
		CreatedAt: t.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	row, err := t.db.GetSystemSeed(ctx)
	if err != nil {
		return nil, err
	}

	return row.Seed, nil
}

// RemovePools deletes all records of the given pools.
func (t *txStore) RemovePools(ctx context.Context,
	pools []wtypes.PoolID) error {

	for _, pool := range pools {
		err := t.db.DeletePoolProductionByPool(ctx, pool[:])
		if err != nil {
			return err
		}

		err = t.db.DeleteStakeDistributionByPool(ctx, pool[:])
		if err != nil {
			return err
		}

		// Owner rows go with their registrations through the cascade.
		err = t.db.DeletePoolRegistrationByPool(ctx, pool[:])
		if err != nil {
			return err
		}

		err = t.db.DeletePoolRetirementByPool(ctx, pool[:])
		if err != nil {
			return err
		}
	}

	return nil
}

// RemoveRetiredPools removes the pools retired at or before the given
// epoch.
func (t *txStore) RemoveRetiredPools(ctx context.Context,
	epoch wtypes.Epoch) ([]wtypes.PoolRetirementCertificate, error) {

	retired, err := t.ListRetiredPools(ctx, epoch)
	if err != nil {
		return nil, err
	}

	pools := make([]wtypes.PoolID, len(retired))
	for i, cert := range retired {
		pools[i] = cert.PoolID
	}

	if err := t.RemovePools(ctx, pools); err != nil {
		return nil, err
	}

	return retired, nil
}

// Wipe truncates every table except the system seed.
func (t *txStore) Wipe(ctx context.Context) error {
	deletes := []func(context.Context) error{
		t.db.DeleteAllPoolProduction,
		t.db.DeleteAllStakeDistribution,

		// Owner rows go with their registrations through the cascade.
		t.db.DeleteAllPoolRegistration,
		t.db.DeleteAllPoolRetirement,
		t.db.DeleteAllPoolMetadata,
		t.db.DeleteAllFetchAttempts,
		t.db.DeleteAllDelistedPools,
	}
	for _, del := range deletes {
		if err := del(ctx); err != nil {
			return err
		}
	}

	return nil
}

// unmarshalRegistrationRow builds the registration certificate from its row
// and the owner rows attached to it.
func (t *txStore) unmarshalRegistrationRow(ctx context.Context,
	row sqlc.PoolRegistration) (wtypes.PoolRegistrationCertificate,
	error) {

	var cert wtypes.PoolRegistrationCertificate

	owners, err := t.db.ListPoolOwners(ctx, sqlc.ListPoolOwnersParams{
		PoolID: row.PoolID,
		Slot:   row.Slot,
	})
	if err != nil {
		return cert, err
	}

	return unmarshalPoolRegistration(row, owners)
}

// fetchBackoff returns the time to wait before a failed metadata fetch may
// be attempted again. The delay doubles with every failed attempt, starting
// at one minute, with the doubling capped after metadataRetryCap attempts.
func fetchBackoff(retryCount int32) time.Duration {
	exponent := retryCount
	if exponent > metadataRetryCap {
		exponent = metadataRetryCap
	}

	return metadataRetryBase << uint(exponent)
}

// unmarshalBlockHeader converts a production row back into a block header.
func unmarshalBlockHeader(row sqlc.PoolProduction) (wtypes.BlockHeader,
	error) {

	hash, err := wtypes.NewBlockHash(row.HeaderHash)
	if err != nil {
		return wtypes.BlockHeader{}, err
	}

	parent, err := wtypes.NewBlockHash(row.ParentHeaderHash)
	if err != nil {
		return wtypes.BlockHeader{}, err
	}

	return wtypes.BlockHeader{
		Slot:       wtypes.Slot(row.Slot),
		Hash:       hash,
		ParentHash: parent,
		Height:     uint64(row.BlockHeight),
	}, nil
}

// unmarshalPoolRegistration converts a registration row and its ordered
// owner rows back into a certificate.
func unmarshalPoolRegistration(row sqlc.PoolRegistration,
	rawOwners [][]byte) (wtypes.PoolRegistrationCertificate, error) {

	var cert wtypes.PoolRegistrationCertificate

	pool, err := wtypes.NewPoolID(row.PoolID)
	if err != nil {
		return cert, err
	}

	margin, err := wtypes.NewPercentage(
		uint64(row.MarginNumerator), uint64(row.MarginDenominator),
	)
	if err != nil {
		return cert, fmt.Errorf("invalid margin stored for pool "+
			"%v: %w", pool, err)
	}

	owners := make([]wtypes.PoolOwner, 0, len(rawOwners))
	for _, raw := range rawOwners {
		owner, err := wtypes.NewPoolOwner(raw)
		if err != nil {
			return cert, err
		}
		owners = append(owners, owner)
	}

	metadata := fn.None[wtypes.PoolMetadataRef]()
	if row.MetadataUrl.Valid {
		hash, err := wtypes.NewMetadataHash(row.MetadataHash)
		if err != nil {
			return cert, err
		}
		metadata = fn.Some(wtypes.PoolMetadataRef{
			URL:  row.MetadataUrl.String,
			Hash: hash,
		})
	}

	return wtypes.PoolRegistrationCertificate{
		PoolID:   pool,
		Owners:   owners,
		Margin:   margin,
		Cost:     wtypes.Coin(row.Cost),
		Pledge:   wtypes.Coin(row.Pledge),
		Metadata: metadata,
	}, nil
}

// unmarshalPoolRetirement converts a retirement row back into a
// certificate.
func unmarshalPoolRetirement(row sqlc.PoolRetirement) (
	wtypes.PoolRetirementCertificate, error) {

	pool, err := wtypes.NewPoolID(row.PoolID)
	if err != nil {
		return wtypes.PoolRetirementCertificate{}, err
	}

	return wtypes.PoolRetirementCertificate{
		PoolID:          pool,
		RetirementEpoch: wtypes.Epoch(row.RetirementEpoch),
	}, nil
}
