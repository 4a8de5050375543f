package txbuilder

import (
	"math"
	"testing"

	"github.com/praoslabs/walletd/wtypes"
	"github.com/stretchr/testify/require"
)

// testBundle builds a bundle of n distinct single-quantity assets.
func testBundle(n int) wtypes.TokenBundle {
	bundle := make(wtypes.TokenBundle, n)
	for i := 0; i < n; i++ {
		var id wtypes.AssetID
		id.PolicyID[0] = byte(i)
		id.Name = wtypes.AssetName([]byte{byte(i)})
		bundle[id] = 1
	}

	return bundle
}

// TestConstraints asserts the derivation of construction limits from the
// protocol parameters.
func TestConstraints(t *testing.T) {
	t.Parallel()

	constraints := Constraints(testFeeParams())

	require.Equal(t, uint64(16_384), constraints.MaxTxSize)
	require.Equal(t, uint64(5_000), constraints.MaxTokenBundleSize)
	require.Equal(
		t, wtypes.TokenQuantity(math.MaxUint64),
		constraints.MaxTokenQuantity,
	)
}

// TestTokenBundleSizeAssessor asserts the bundle size judgment at its
// boundary.
func TestTokenBundleSizeAssessor(t *testing.T) {
	t.Parallel()

	assessor := NewTokenBundleSizeAssessor(2 * txAssetEntryBytes)

	require.True(t, assessor.WithinLimit(nil))
	require.True(t, assessor.WithinLimit(testBundle(2)))
	require.False(t, assessor.WithinLimit(testBundle(3)))
}

// TestValidateSelectionOutputs asserts the selection criteria checks:
// oversized bundles and out of range quantities are reported against the
// offending output, in output order.
func TestValidateSelectionOutputs(t *testing.T) {
	t.Parallel()

	constraints := TxConstraints{
		MaxTxSize:          16_384,
		MaxTokenBundleSize: 2 * txAssetEntryBytes,
		MaxTokenQuantity:   1_000,
	}

	okOut := wtypes.TxOut{
		Address: testAddr(0x0a),
		Coin:    2_000_000,
		Assets:  testBundle(2),
	}

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		err := ValidateSelectionOutputs(
			constraints, []wtypes.TxOut{
				{Address: testAddr(0x0b), Coin: 1_000_000},
				okOut,
			},
		)
		require.NoError(t, err)
	})

	t.Run("bundle too large", func(t *testing.T) {
		t.Parallel()

		oversized := wtypes.TxOut{
			Address: testAddr(0x0c),
			Coin:    2_000_000,
			Assets:  testBundle(3),
		}

		err := ValidateSelectionOutputs(
			constraints, []wtypes.TxOut{okOut, oversized},
		)

		var sizeErr *OutputTokenBundleSizeExceedsLimit
		require.ErrorAs(t, err, &sizeErr)
		require.Equal(t, oversized.Address, sizeErr.Address)
		require.Equal(t, 3, sizeErr.AssetCount)

		// The violation is a member of the criteria error set.
		var criteriaErr SelectionCriteriaError
		require.ErrorAs(t, err, &criteriaErr)
	})

	t.Run("quantity too large", func(t *testing.T) {
		t.Parallel()

		asset := wtypes.AssetID{
			PolicyID: testPolicyID(0x01),
			Name:     "coin",
		}
		excessive := wtypes.TxOut{
			Address: testAddr(0x0c),
			Coin:    2_000_000,
			Assets: wtypes.TokenBundle{
				asset: 1_001,
			},
		}

		err := ValidateSelectionOutputs(
			constraints, []wtypes.TxOut{okOut, excessive},
		)

		var quantityErr *OutputTokenQuantityExceedsLimit
		require.ErrorAs(t, err, &quantityErr)
		require.Equal(t, excessive.Address, quantityErr.Address)
		require.Equal(t, asset, quantityErr.Asset)
		require.Equal(
			t, wtypes.TokenQuantity(1_001), quantityErr.Quantity,
		)
		require.Equal(
			t, wtypes.TokenQuantity(1_000), quantityErr.MaxBound,
		)
	})

	t.Run("first offending output wins", func(t *testing.T) {
		t.Parallel()

		oversized := wtypes.TxOut{
			Address: testAddr(0x0c),
			Assets:  testBundle(5),
		}
		excessive := wtypes.TxOut{
			Address: testAddr(0x0d),
			Assets: wtypes.TokenBundle{
				{Name: "coin"}: 2_000,
			},
		}

		err := ValidateSelectionOutputs(
			constraints,
			[]wtypes.TxOut{okOut, oversized, excessive},
		)

		var sizeErr *OutputTokenBundleSizeExceedsLimit
		require.ErrorAs(t, err, &sizeErr)
		require.Equal(t, oversized.Address, sizeErr.Address)
	})
}
