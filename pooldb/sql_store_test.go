package pooldb

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/praoslabs/walletd/wtypes"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// randomPoolID returns a random pool ID.
func randomPoolID(t *testing.T) wtypes.PoolID {
	t.Helper()

	var id wtypes.PoolID
	_, err := rand.Read(id[:])
	require.NoError(t, err)

	return id
}

// randomOwner returns a random pool owner key hash.
func randomOwner(t *testing.T) wtypes.PoolOwner {
	t.Helper()

	var owner wtypes.PoolOwner
	_, err := rand.Read(owner[:])
	require.NoError(t, err)

	return owner
}

// randomMetadataHash returns a random metadata content hash.
func randomMetadataHash(t *testing.T) wtypes.MetadataHash {
	t.Helper()

	var hash wtypes.MetadataHash
	_, err := rand.Read(hash[:])
	require.NoError(t, err)

	return hash
}

// randomBlockHeader returns a block header at the given slot with random
// hashes.
func randomBlockHeader(t *testing.T, slot wtypes.Slot) wtypes.BlockHeader {
	t.Helper()

	var hash, parent wtypes.BlockHash
	_, err := rand.Read(hash[:])
	require.NoError(t, err)
	_, err = rand.Read(parent[:])
	require.NoError(t, err)

	return wtypes.BlockHeader{
		Slot:       slot,
		Hash:       hash,
		ParentHash: parent,
		Height:     uint64(slot / 20),
	}
}

// randomRegistration returns a registration certificate for the given pool
// with three owners and a metadata reference.
func randomRegistration(t *testing.T,
	pool wtypes.PoolID) wtypes.PoolRegistrationCertificate {

	t.Helper()

	margin, err := wtypes.NewPercentage(1, 3)
	require.NoError(t, err)

	owners := make([]wtypes.PoolOwner, 3)
	for i := range owners {
		owners[i] = randomOwner(t)
	}

	return wtypes.PoolRegistrationCertificate{
		PoolID: pool,
		Owners: owners,
		Margin: margin,
		Cost:   340_000_000,
		Pledge: 100_000_000,
		Metadata: fn.Some(wtypes.PoolMetadataRef{
			URL:  fmt.Sprintf("https://pool.example.com/%v", pool),
			Hash: randomMetadataHash(t),
		}),
	}
}

// pointAt returns a chain point at the given slot.
func pointAt(slot wtypes.Slot) wtypes.Point {
	return wtypes.Point{Slot: slot}
}

// TestPoolProductionRoundTrip asserts that block production records are
// grouped by epoch and pool when read back.
func TestPoolProductionRoundTrip(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)

	epochStart := wtypes.Epoch(1).StartSlot(testEpochLength)

	// Pool A produces twice in epoch 1, pool B once. Pool B also
	// produces once in epoch 2.
	headerA1 := randomBlockHeader(t, epochStart+5)
	headerA2 := randomBlockHeader(t, epochStart+100)
	headerB1 := randomBlockHeader(t, epochStart+50)
	headerB2 := randomBlockHeader(
		t, wtypes.Epoch(2).StartSlot(testEpochLength),
	)

	require.NoError(t, db.PutPoolProduction(ctx, headerA2, poolA))
	require.NoError(t, db.PutPoolProduction(ctx, headerA1, poolA))
	require.NoError(t, db.PutPoolProduction(ctx, headerB1, poolB))
	require.NoError(t, db.PutPoolProduction(ctx, headerB2, poolB))

	production, err := db.ReadPoolProduction(ctx, 1)
	require.NoError(t, err)
	require.Len(t, production, 2)

	// Per pool block lists come back in ascending slot order, regardless
	// of insertion order.
	require.Equal(
		t, []wtypes.BlockHeader{headerA1, headerA2}, production[poolA],
	)
	require.Equal(t, []wtypes.BlockHeader{headerB1}, production[poolB])

	production, err = db.ReadPoolProduction(ctx, 2)
	require.NoError(t, err)
	require.Len(t, production, 1)
	require.Equal(t, []wtypes.BlockHeader{headerB2}, production[poolB])

	// An epoch nobody produced in reads back empty.
	production, err = db.ReadPoolProduction(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, production)
}

// TestPoolProductionDuplicateSlot asserts that recording a second block in
// an already occupied slot fails with ErrPointAlreadyExists and leaves the
// original record in place.
func TestPoolProductionDuplicateSlot(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)

	header := randomBlockHeader(t, 1000)
	require.NoError(t, db.PutPoolProduction(ctx, header, poolA))

	// The same slot again, even for another pool and another header,
	// must be rejected.
	clash := randomBlockHeader(t, 1000)
	err := db.PutPoolProduction(ctx, clash, poolB)

	var dupErr *ErrPointAlreadyExists
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, wtypes.Slot(1000), dupErr.Slot)

	// The original record survived the clash.
	production, err := db.ReadPoolProduction(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []wtypes.BlockHeader{header}, production[poolA])
	require.NotContains(t, production, poolB)
}

// TestReadTotalProduction asserts the per pool all-time block counts.
func TestReadTotalProduction(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	total, err := db.ReadTotalProduction(ctx)
	require.NoError(t, err)
	require.Empty(t, total)

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)

	// Pool A produces three blocks across two epochs, pool B one.
	slots := []wtypes.Slot{
		10, 20, wtypes.Epoch(3).StartSlot(testEpochLength),
	}
	for _, slot := range slots {
		require.NoError(t, db.PutPoolProduction(
			ctx, randomBlockHeader(t, slot), poolA,
		))
	}
	require.NoError(t, db.PutPoolProduction(
		ctx, randomBlockHeader(t, 30), poolB,
	))

	total, err = db.ReadTotalProduction(ctx)
	require.NoError(t, err)
	require.Equal(t, map[wtypes.PoolID]uint64{
		poolA: 3,
		poolB: 1,
	}, total)
}

// TestReadPoolProductionCursor asserts that the cursor returns the most
// recent blocks in ascending slot order.
func TestReadPoolProductionCursor(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	headers, err := db.ReadPoolProductionCursor(ctx, 3)
	require.NoError(t, err)
	require.Empty(t, headers)

	pool := randomPoolID(t)
	all := make([]wtypes.BlockHeader, 5)
	for i := range all {
		all[i] = randomBlockHeader(t, wtypes.Slot(100*(i+1)))
	}

	// Insert out of order to make sure the cursor sorts by slot.
	for _, i := range []int{2, 0, 4, 1, 3} {
		require.NoError(t, db.PutPoolProduction(ctx, all[i], pool))
	}

	headers, err = db.ReadPoolProductionCursor(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, all[2:], headers)

	// Asking for more blocks than exist returns everything.
	headers, err = db.ReadPoolProductionCursor(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, all, headers)
}

// TestStakeDistribution asserts that a stake snapshot round trips and that
// writing an epoch again replaces the previous snapshot wholesale.
func TestStakeDistribution(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)
	poolC := randomPoolID(t)

	first := map[wtypes.PoolID]wtypes.Coin{
		poolA: 1_000_000,
		poolB: 2_500_000,
	}
	require.NoError(t, db.PutStakeDistribution(ctx, 4, first))

	distribution, err := db.ReadStakeDistribution(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, first, distribution)

	// Other epochs are unaffected.
	distribution, err = db.ReadStakeDistribution(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, distribution)

	// Writing epoch 4 again drops pool B entirely rather than merging.
	second := map[wtypes.PoolID]wtypes.Coin{
		poolA: 1_200_000,
		poolC: 700_000,
	}
	require.NoError(t, db.PutStakeDistribution(ctx, 4, second))

	distribution, err = db.ReadStakeDistribution(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, second, distribution)
}

// TestPoolRegistrationRoundTrip asserts that a registration certificate
// round trips exactly, including owner order and the margin fraction.
func TestPoolRegistrationRoundTrip(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pool := randomPoolID(t)
	cert := randomRegistration(t, pool)

	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(500), cert))

	got, err := db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, cert, got.UnwrapOrFail(t))

	// The 1/3 margin must come back as the exact fraction, not a
	// rounded decimal.
	margin := got.UnwrapOrFail(t).Margin
	require.Equal(t, uint64(1), margin.Numerator)
	require.Equal(t, uint64(3), margin.Denominator)

	// Re-announcing the certificate at the same point replaces the
	// stored parameters, including the owner list.
	update := cert
	update.Cost = 500_000_000
	update.Owners = []wtypes.PoolOwner{randomOwner(t)}
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(500), update))

	got, err = db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, update, got.UnwrapOrFail(t))

	// A certificate published later shadows the earlier one.
	latest := randomRegistration(t, pool)
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(900), latest))

	got, err = db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, latest, got.UnwrapOrFail(t))
}

// TestPoolRegistrationNoMetadata asserts that a certificate without a
// metadata reference and without owners round trips.
func TestPoolRegistrationNoMetadata(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	margin, err := wtypes.NewPercentage(15, 100)
	require.NoError(t, err)

	cert := wtypes.PoolRegistrationCertificate{
		PoolID:   randomPoolID(t),
		Owners:   []wtypes.PoolOwner{},
		Margin:   margin,
		Cost:     340_000_000,
		Pledge:   0,
		Metadata: fn.None[wtypes.PoolMetadataRef](),
	}
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(10), cert))

	got, err := db.ReadPoolRegistration(ctx, cert.PoolID)
	require.NoError(t, err)
	require.Equal(t, cert, got.UnwrapOrFail(t))
}

// TestReadPoolRegistrationMissing asserts that an unknown pool reads back
// as None rather than an error.
func TestReadPoolRegistrationMissing(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	got, err := db.ReadPoolRegistration(ctx, randomPoolID(t))
	require.NoError(t, err)
	require.True(t, got.IsNone())

	ret, err := db.ReadPoolRetirement(ctx, randomPoolID(t))
	require.NoError(t, err)
	require.True(t, ret.IsNone())
}

// TestPoolRetirementRoundTrip asserts that retirement certificates round
// trip and that the latest one wins.
func TestPoolRetirementRoundTrip(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pool := randomPoolID(t)

	first := wtypes.PoolRetirementCertificate{
		PoolID:          pool,
		RetirementEpoch: 12,
	}
	require.NoError(t, db.PutPoolRetirement(ctx, pointAt(100), first))

	got, err := db.ReadPoolRetirement(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, first, got.UnwrapOrFail(t))

	// A later certificate moving the retirement epoch shadows the first.
	second := wtypes.PoolRetirementCertificate{
		PoolID:          pool,
		RetirementEpoch: 20,
	}
	require.NoError(t, db.PutPoolRetirement(ctx, pointAt(300), second))

	got, err = db.ReadPoolRetirement(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, second, got.UnwrapOrFail(t))
}

// TestPoolLifeCycleStatus exercises the derivation of a pool's life cycle
// state from its certificate history.
func TestPoolLifeCycleStatus(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	retireAt := func(pool wtypes.PoolID,
		epoch wtypes.Epoch) wtypes.PoolRetirementCertificate {

		return wtypes.PoolRetirementCertificate{
			PoolID:          pool,
			RetirementEpoch: epoch,
		}
	}

	t.Run("never registered", func(t *testing.T) {
		pool := randomPoolID(t)

		status, err := db.ReadPoolLifeCycleStatus(ctx, pool)
		require.NoError(t, err)
		require.False(t, status.IsRegistered())
		require.False(t, status.IsRetiring())

		// A stray retirement without any registration doesn't make
		// the pool known.
		require.NoError(t, db.PutPoolRetirement(
			ctx, pointAt(50), retireAt(pool, 3),
		))

		status, err = db.ReadPoolLifeCycleStatus(ctx, pool)
		require.NoError(t, err)
		require.False(t, status.IsRegistered())
		require.False(t, status.IsRetiring())
	})

	t.Run("registered only", func(t *testing.T) {
		pool := randomPoolID(t)
		cert := randomRegistration(t, pool)

		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(100), cert,
		))

		status, err := db.ReadPoolLifeCycleStatus(ctx, pool)
		require.NoError(t, err)
		require.Equal(t, cert, status.Registration.UnwrapOrFail(t))
		require.False(t, status.IsRetiring())
	})

	t.Run("registered then retiring", func(t *testing.T) {
		pool := randomPoolID(t)
		cert := randomRegistration(t, pool)
		ret := retireAt(pool, 9)

		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(100), cert,
		))
		require.NoError(t, db.PutPoolRetirement(ctx, pointAt(200), ret))

		status, err := db.ReadPoolLifeCycleStatus(ctx, pool)
		require.NoError(t, err)
		require.Equal(t, cert, status.Registration.UnwrapOrFail(t))
		require.Equal(t, ret, status.Retirement.UnwrapOrFail(t))
	})

	t.Run("retirement cancelled by re-registration", func(t *testing.T) {
		pool := randomPoolID(t)

		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(100), randomRegistration(t, pool),
		))
		require.NoError(t, db.PutPoolRetirement(
			ctx, pointAt(200), retireAt(pool, 9),
		))

		revived := randomRegistration(t, pool)
		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(300), revived,
		))

		status, err := db.ReadPoolLifeCycleStatus(ctx, pool)
		require.NoError(t, err)
		require.Equal(
			t, revived, status.Registration.UnwrapOrFail(t),
		)
		require.False(t, status.IsRetiring())
	})

	t.Run("same slot favors registration", func(t *testing.T) {
		pool := randomPoolID(t)
		cert := randomRegistration(t, pool)

		require.NoError(t, db.PutPoolRetirement(
			ctx, pointAt(400), retireAt(pool, 9),
		))
		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(400), cert,
		))

		status, err := db.ReadPoolLifeCycleStatus(ctx, pool)
		require.NoError(t, err)
		require.True(t, status.IsRegistered())
		require.False(t, status.IsRetiring())
	})
}

// TestListRegisteredPools asserts that every registration row is listed,
// newest first, with one entry per certificate rather than per pool.
func TestListRegisteredPools(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pools, err := db.ListRegisteredPools(ctx)
	require.NoError(t, err)
	require.Empty(t, pools)

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)

	require.NoError(t, db.PutPoolRegistration(
		ctx, pointAt(100), randomRegistration(t, poolA),
	))
	require.NoError(t, db.PutPoolRegistration(
		ctx, pointAt(200), randomRegistration(t, poolB),
	))
	require.NoError(t, db.PutPoolRegistration(
		ctx, pointAt(300), randomRegistration(t, poolA),
	))

	pools, err = db.ListRegisteredPools(ctx)
	require.NoError(t, err)
	require.Equal(t, []wtypes.PoolID{poolA, poolB, poolA}, pools)
}

// TestListRetiredPools asserts the resolution of effective retirements up
// to a given epoch.
func TestListRetiredPools(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)
	poolC := randomPoolID(t)
	poolD := randomPoolID(t)

	for _, pool := range []wtypes.PoolID{poolA, poolB, poolC} {
		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(100), randomRegistration(t, pool),
		))
	}

	retire := func(pool wtypes.PoolID, slot wtypes.Slot,
		epoch wtypes.Epoch) {

		require.NoError(t, db.PutPoolRetirement(
			ctx, pointAt(slot), wtypes.PoolRetirementCertificate{
				PoolID:          pool,
				RetirementEpoch: epoch,
			},
		))
	}

	retire(poolA, 200, 5)
	retire(poolB, 200, 8)

	// Pool C's retirement is cancelled by a later registration.
	retire(poolC, 200, 5)
	require.NoError(t, db.PutPoolRegistration(
		ctx, pointAt(300), randomRegistration(t, poolC),
	))

	// Pool D retires without ever registering.
	retire(poolD, 200, 5)

	retired, err := db.ListRetiredPools(ctx, 4)
	require.NoError(t, err)
	require.Empty(t, retired)

	retired, err = db.ListRetiredPools(ctx, 5)
	require.NoError(t, err)
	require.ElementsMatch(t, []wtypes.PoolRetirementCertificate{
		{PoolID: poolA, RetirementEpoch: 5},
	}, retired)

	retired, err = db.ListRetiredPools(ctx, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []wtypes.PoolRetirementCertificate{
		{PoolID: poolA, RetirementEpoch: 5},
		{PoolID: poolB, RetirementEpoch: 8},
	}, retired)
}

// TestRemoveRetiredPools asserts that retired pools are removed together
// with all their records and reported back to the caller.
func TestRemoveRetiredPools(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)

	for _, pool := range []wtypes.PoolID{poolA, poolB} {
		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(100), randomRegistration(t, pool),
		))
	}
	require.NoError(t, db.PutPoolProduction(
		ctx, randomBlockHeader(t, 150), poolA,
	))

	require.NoError(t, db.PutPoolRetirement(
		ctx, pointAt(200), wtypes.PoolRetirementCertificate{
			PoolID:          poolA,
			RetirementEpoch: 3,
		},
	))
	require.NoError(t, db.PutPoolRetirement(
		ctx, pointAt(200), wtypes.PoolRetirementCertificate{
			PoolID:          poolB,
			RetirementEpoch: 9,
		},
	))

	removed, err := db.RemoveRetiredPools(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []wtypes.PoolRetirementCertificate{
		{PoolID: poolA, RetirementEpoch: 3},
	}, removed)

	// Pool A is gone from every record family.
	reg, err := db.ReadPoolRegistration(ctx, poolA)
	require.NoError(t, err)
	require.True(t, reg.IsNone())

	total, err := db.ReadTotalProduction(ctx)
	require.NoError(t, err)
	require.NotContains(t, total, poolA)

	// Pool B's retirement lies beyond the horizon and survives.
	reg, err = db.ReadPoolRegistration(ctx, poolB)
	require.NoError(t, err)
	require.True(t, reg.IsSome())
}

// TestPoolMetadataRoundTrip asserts that metadata round trips keyed by
// hash and that re-storing a hash replaces the previous content.
func TestPoolMetadataRoundTrip(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	hashA := randomMetadataHash(t)
	hashB := randomMetadataHash(t)

	metaA := wtypes.PoolMetadata{
		Ticker:      "ALPHA",
		Name:        "Alpha Pool",
		Description: fn.Some("The first of its kind."),
		Homepage:    "https://alpha.example.com",
	}
	metaB := wtypes.PoolMetadata{
		Ticker:      "BRAVO",
		Name:        "Bravo Pool",
		Description: fn.None[string](),
		Homepage:    "https://bravo.example.com",
	}

	require.NoError(t, db.PutPoolMetadata(ctx, hashA, metaA))
	require.NoError(t, db.PutPoolMetadata(ctx, hashB, metaB))

	meta, err := db.ReadPoolMetadata(ctx)
	require.NoError(t, err)
	require.Equal(t, map[wtypes.MetadataHash]wtypes.PoolMetadata{
		hashA: metaA,
		hashB: metaB,
	}, meta)

	// Storing the same hash again simply replaces the content.
	metaA.Name = "Alpha Pool Reborn"
	require.NoError(t, db.PutPoolMetadata(ctx, hashA, metaA))

	meta, err = db.ReadPoolMetadata(ctx)
	require.NoError(t, err)
	require.Equal(t, metaA, meta[hashA])
	require.Len(t, meta, 2)
}

// TestUnfetchedPoolMetadataRefs asserts that registration certificates
// surface their metadata references until the metadata is stored.
func TestUnfetchedPoolMetadataRefs(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	refs, err := db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, refs)

	certA := randomRegistration(t, randomPoolID(t))
	certB := randomRegistration(t, randomPoolID(t))
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(10), certA))
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(20), certB))

	// A certificate without a metadata reference contributes nothing.
	bare := randomRegistration(t, randomPoolID(t))
	bare.Metadata = fn.None[wtypes.PoolMetadataRef]()
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(30), bare))

	refA := certA.Metadata.UnwrapOrFail(t)
	refB := certB.Metadata.UnwrapOrFail(t)

	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []wtypes.PoolMetadataRef{refA, refB}, refs)

	// The limit caps the number of returned references.
	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	// Once the metadata is stored the reference no longer needs
	// fetching.
	require.NoError(t, db.PutPoolMetadata(
		ctx, refA.Hash, wtypes.PoolMetadata{
			Ticker:   "ALPHA",
			Name:     "Alpha Pool",
			Homepage: "https://alpha.example.com",
		},
	))

	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []wtypes.PoolMetadataRef{refB}, refs)
}

// TestMetadataFetchBackoff asserts that failed fetch attempts hide a
// reference for an exponentially growing backoff window.
func TestMetadataFetchBackoff(t *testing.T) {
	t.Parallel()

	baseTime := time.Unix(1700000000, 0).UTC()
	testClock := clock.NewTestClock(baseTime)

	db := NewTestDB(t, WithClock(testClock))
	ctx := context.Background()

	cert := randomRegistration(t, randomPoolID(t))
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(10), cert))
	ref := cert.Metadata.UnwrapOrFail(t)

	// The first failed attempt hides the reference for one minute.
	require.NoError(t, db.PutFetchAttempt(ctx, ref))

	refs, err := db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, refs)

	testClock.SetTime(baseTime.Add(time.Minute))

	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []wtypes.PoolMetadataRef{ref}, refs)

	// The second failed attempt doubles the backoff to two minutes.
	require.NoError(t, db.PutFetchAttempt(ctx, ref))

	testClock.SetTime(baseTime.Add(2 * time.Minute))

	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, refs)

	testClock.SetTime(baseTime.Add(3 * time.Minute))

	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []wtypes.PoolMetadataRef{ref}, refs)

	// A successful fetch ends the retry cycle for good.
	require.NoError(t, db.PutPoolMetadata(ctx, ref.Hash, wtypes.PoolMetadata{
		Ticker:   "DELTA",
		Name:     "Delta Pool",
		Homepage: "https://delta.example.com",
	}))

	refs, err = db.UnfetchedPoolMetadataRefs(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, refs)
}

// TestFetchBackoffCap asserts the backoff doubling caps out rather than
// overflowing for large retry counts.
func TestFetchBackoffCap(t *testing.T) {
	t.Parallel()

	require.Equal(t, time.Minute, fetchBackoff(0))
	require.Equal(t, 2*time.Minute, fetchBackoff(1))
	require.Equal(t, 512*time.Minute, fetchBackoff(9))
	require.Equal(t, 512*time.Minute, fetchBackoff(10))
	require.Equal(t, 512*time.Minute, fetchBackoff(1000))
}

// TestDelistedPools asserts that the delistment set is replaced wholesale
// on every write.
func TestDelistedPools(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pools, err := db.ReadDelistedPools(ctx)
	require.NoError(t, err)
	require.Empty(t, pools)

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)
	poolC := randomPoolID(t)

	require.NoError(t, db.PutDelistedPools(
		ctx, []wtypes.PoolID{poolA, poolB},
	))

	pools, err = db.ReadDelistedPools(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []wtypes.PoolID{poolA, poolB}, pools)

	// The next write replaces the set, it doesn't accumulate.
	require.NoError(t, db.PutDelistedPools(ctx, []wtypes.PoolID{poolC}))

	pools, err = db.ReadDelistedPools(ctx)
	require.NoError(t, err)
	require.Equal(t, []wtypes.PoolID{poolC}, pools)

	// An empty write clears the set.
	require.NoError(t, db.PutDelistedPools(ctx, nil))

	pools, err = db.ReadDelistedPools(ctx)
	require.NoError(t, err)
	require.Empty(t, pools)
}

// TestRollbackTo asserts that rolling back unwinds exactly the records
// recorded after the rollback point.
func TestRollbackTo(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pool := randomPoolID(t)

	// Production at slots 10, 20 and 30, a registration at slot 15 and
	// a retirement at slot 25.
	headers := make(map[wtypes.Slot]wtypes.BlockHeader)
	for _, slot := range []wtypes.Slot{10, 20, 30} {
		header := randomBlockHeader(t, slot)
		headers[slot] = header
		require.NoError(t, db.PutPoolProduction(ctx, header, pool))
	}

	cert := randomRegistration(t, pool)
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(15), cert))
	require.NoError(t, db.PutPoolRetirement(
		ctx, pointAt(25), wtypes.PoolRetirementCertificate{
			PoolID:          pool,
			RetirementEpoch: 8,
		},
	))

	// Stake snapshots for the rollback point's epoch and a later one.
	stake := map[wtypes.PoolID]wtypes.Coin{pool: 42}
	require.NoError(t, db.PutStakeDistribution(ctx, 0, stake))
	require.NoError(t, db.PutStakeDistribution(ctx, 2, stake))

	// Rolling back to slot 20 drops the slot 30 block and the slot 25
	// retirement but keeps everything at or before slot 20.
	require.NoError(t, db.RollbackTo(ctx, pointAt(20)))

	production, err := db.ReadPoolProduction(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []wtypes.BlockHeader{
		headers[10], headers[20],
	}, production[pool])

	reg, err := db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, cert, reg.UnwrapOrFail(t))

	ret, err := db.ReadPoolRetirement(ctx, pool)
	require.NoError(t, err)
	require.True(t, ret.IsNone())

	// The snapshot of the later epoch is gone, the rollback epoch's own
	// snapshot stays.
	distribution, err := db.ReadStakeDistribution(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, distribution)

	distribution, err = db.ReadStakeDistribution(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, stake, distribution)

	// Rolling back before everything leaves no trace.
	require.NoError(t, db.RollbackTo(ctx, pointAt(5)))

	production, err = db.ReadPoolProduction(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, production)

	reg, err = db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.True(t, reg.IsNone())
}

// TestSystemSeed asserts that the system seed is created once and then
// stays stable.
func TestSystemSeed(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	seed, err := db.ReadSystemSeed(ctx)
	require.NoError(t, err)
	require.Len(t, seed, systemSeedSize)

	again, err := db.ReadSystemSeed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, again)
}

// TestSystemSeedConcurrent asserts that concurrent first reads of the
// system seed race safely: exactly one insert wins and every caller
// observes the winner's bytes.
func TestSystemSeedConcurrent(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	const readers = 8

	var (
		start = make(chan struct{})
		wg    sync.WaitGroup

		seeds [readers][]byte
		errs  [readers]error
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			<-start
			seeds[i], errs[i] = db.ReadSystemSeed(ctx)
		}(i)
	}

	close(start)
	wg.Wait()

	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, seeds[i], systemSeedSize)
		require.Equal(t, seeds[0], seeds[i])
	}
}

// TestRemovePools asserts that removing pools erases their records while
// leaving other pools untouched.
func TestRemovePools(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	poolA := randomPoolID(t)
	poolB := randomPoolID(t)

	for i, pool := range []wtypes.PoolID{poolA, poolB} {
		slot := wtypes.Slot(100 * (i + 1))
		require.NoError(t, db.PutPoolProduction(
			ctx, randomBlockHeader(t, slot), pool,
		))
		require.NoError(t, db.PutPoolRegistration(
			ctx, pointAt(slot), randomRegistration(t, pool),
		))
		require.NoError(t, db.PutPoolRetirement(
			ctx, pointAt(slot+50), wtypes.PoolRetirementCertificate{
				PoolID:          pool,
				RetirementEpoch: 5,
			},
		))
	}
	require.NoError(t, db.PutStakeDistribution(
		ctx, 1, map[wtypes.PoolID]wtypes.Coin{poolA: 10, poolB: 20},
	))

	require.NoError(t, db.RemovePools(ctx, []wtypes.PoolID{poolA}))

	total, err := db.ReadTotalProduction(ctx)
	require.NoError(t, err)
	require.Equal(t, map[wtypes.PoolID]uint64{poolB: 1}, total)

	reg, err := db.ReadPoolRegistration(ctx, poolA)
	require.NoError(t, err)
	require.True(t, reg.IsNone())

	ret, err := db.ReadPoolRetirement(ctx, poolA)
	require.NoError(t, err)
	require.True(t, ret.IsNone())

	distribution, err := db.ReadStakeDistribution(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, map[wtypes.PoolID]wtypes.Coin{poolB: 20}, distribution)

	// Pool B's records are fully intact.
	reg, err = db.ReadPoolRegistration(ctx, poolB)
	require.NoError(t, err)
	require.True(t, reg.IsSome())
}

// TestWipe asserts that wiping clears every record family but preserves
// the system seed.
func TestWipe(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pool := randomPoolID(t)
	cert := randomRegistration(t, pool)

	require.NoError(t, db.PutPoolProduction(
		ctx, randomBlockHeader(t, 10), pool,
	))
	require.NoError(t, db.PutPoolRegistration(ctx, pointAt(15), cert))
	require.NoError(t, db.PutPoolRetirement(
		ctx, pointAt(25), wtypes.PoolRetirementCertificate{
			PoolID:          pool,
			RetirementEpoch: 8,
		},
	))
	require.NoError(t, db.PutStakeDistribution(
		ctx, 1, map[wtypes.PoolID]wtypes.Coin{pool: 10},
	))
	require.NoError(t, db.PutPoolMetadata(
		ctx, randomMetadataHash(t), wtypes.PoolMetadata{
			Ticker:   "GONE",
			Name:     "Soon Gone",
			Homepage: "https://gone.example.com",
		},
	))
	require.NoError(t, db.PutDelistedPools(ctx, []wtypes.PoolID{pool}))
	require.NoError(t, db.PutFetchAttempt(
		ctx, cert.Metadata.UnwrapOrFail(t),
	))

	seed, err := db.ReadSystemSeed(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Wipe(ctx))

	total, err := db.ReadTotalProduction(ctx)
	require.NoError(t, err)
	require.Empty(t, total)

	reg, err := db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.True(t, reg.IsNone())

	ret, err := db.ReadPoolRetirement(ctx, pool)
	require.NoError(t, err)
	require.True(t, ret.IsNone())

	distribution, err := db.ReadStakeDistribution(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, distribution)

	meta, err := db.ReadPoolMetadata(ctx)
	require.NoError(t, err)
	require.Empty(t, meta)

	delisted, err := db.ReadDelistedPools(ctx)
	require.NoError(t, err)
	require.Empty(t, delisted)

	// The seed survives the wipe.
	again, err := db.ReadSystemSeed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, again)
}

// TestAtomically asserts that composed operations commit together and roll
// back together.
func TestAtomically(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pool := randomPoolID(t)
	header := randomBlockHeader(t, 10)
	cert := randomRegistration(t, pool)

	// Both writes land when the callback succeeds.
	err := db.Atomically(ctx, func(store Store) error {
		if err := store.PutPoolProduction(ctx, header, pool); err != nil {
			return err
		}

		return store.PutPoolRegistration(ctx, pointAt(15), cert)
	})
	require.NoError(t, err)

	production, err := db.ReadPoolProduction(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []wtypes.BlockHeader{header}, production[pool])

	reg, err := db.ReadPoolRegistration(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, cert, reg.UnwrapOrFail(t))

	// Neither write lands when the callback fails, even though the
	// first one succeeded inside the transaction.
	errAbort := errors.New("abort")
	other := randomPoolID(t)

	err = db.Atomically(ctx, func(store Store) error {
		err := store.PutPoolProduction(
			ctx, randomBlockHeader(t, 20), other,
		)
		if err != nil {
			return err
		}

		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	total, err := db.ReadTotalProduction(ctx)
	require.NoError(t, err)
	require.NotContains(t, total, other)

	// Reads compose with writes inside the same transaction.
	err = db.Atomically(ctx, func(store Store) error {
		status, err := store.ReadPoolLifeCycleStatus(ctx, pool)
		if err != nil {
			return err
		}
		if !status.IsRegistered() {
			return errors.New("expected registered pool")
		}

		return store.PutPoolRetirement(
			ctx, pointAt(30), wtypes.PoolRetirementCertificate{
				PoolID:          pool,
				RetirementEpoch: 2,
			},
		)
	})
	require.NoError(t, err)

	ret, err := db.ReadPoolRetirement(ctx, pool)
	require.NoError(t, err)
	require.True(t, ret.IsSome())
}

// TestPoolProductionProps checks with random block schedules that the
// production counts and the cursor stay consistent with a model.
func TestPoolProductionProps(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	ctx := context.Background()

	pools := make([]wtypes.PoolID, 3)
	for i := range pools {
		pools[i] = randomPoolID(t)
	}

	hashGen := rapid.SliceOfN(rapid.Byte(), 32, 32)

	rapid.Check(t, func(rt *rapid.T) {
		require.NoError(rt, db.Wipe(ctx))

		slots := rapid.SliceOfNDistinct(
			rapid.Uint64Range(0, 1_000_000), 1, 30,
			func(s uint64) uint64 { return s },
		).Draw(rt, "slots")

		counts := make(map[wtypes.PoolID]uint64)
		bySlot := make(map[uint64]wtypes.BlockHeader)

		for _, slot := range slots {
			pool := pools[rapid.IntRange(0, 2).Draw(rt, "pool")]

			var header wtypes.BlockHeader
			header.Slot = wtypes.Slot(slot)
			header.Height = slot / 20
			copy(header.Hash[:], hashGen.Draw(rt, "hash"))
			copy(header.ParentHash[:], hashGen.Draw(rt, "parent"))

			require.NoError(rt, db.PutPoolProduction(
				ctx, header, pool,
			))

			counts[pool]++
			bySlot[slot] = header
		}

		total, err := db.ReadTotalProduction(ctx)
		require.NoError(rt, err)
		require.Equal(rt, counts, total)

		// The cursor must return the blocks sorted by slot no matter
		// the insertion order.
		sorted := make([]uint64, len(slots))
		copy(sorted, slots)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})

		expected := make([]wtypes.BlockHeader, len(sorted))
		for i, slot := range sorted {
			expected[i] = bySlot[slot]
		}

		headers, err := db.ReadPoolProductionCursor(ctx, len(slots))
		require.NoError(rt, err)
		require.Equal(rt, expected, headers)
	})
}
