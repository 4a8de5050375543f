package txbuilder

import (
	"fmt"
	"math"

	"github.com/praoslabs/walletd/wtypes"
)

// maxTokenQuantity is the largest amount of a single token an output can
// carry. It is a bound of the ledger's word size, not a protocol
// parameter.
const maxTokenQuantity = wtypes.TokenQuantity(math.MaxUint64)

// TxConstraints are the limits transaction construction must respect,
// derived from the protocol parameters.
type TxConstraints struct {
	// MaxTxSize is the maximum serialized transaction size in bytes.
	MaxTxSize uint64

	// MaxTokenBundleSize is the maximum serialized size in bytes of a
	// single output's token bundle.
	MaxTokenBundleSize uint64

	// MaxTokenQuantity is the largest amount of a single token an
	// output can carry.
	MaxTokenQuantity wtypes.TokenQuantity
}

// Constraints derives the construction limits from the protocol
// parameters.
func Constraints(params *wtypes.ProtocolParameters) TxConstraints {
	return TxConstraints{
		MaxTxSize:          params.MaxTxSize,
		MaxTokenBundleSize: params.MaxTokenBundleSize,
		MaxTokenQuantity:   maxTokenQuantity,
	}
}

// TokenBundleSizeAssessor judges token bundles against the serialized
// size limit of a single output.
type TokenBundleSizeAssessor struct {
	maxSizeBytes uint64
}

// NewTokenBundleSizeAssessor creates an assessor for the given bundle
// size limit.
func NewTokenBundleSizeAssessor(
	maxSizeBytes uint64) *TokenBundleSizeAssessor {

	return &TokenBundleSizeAssessor{
		maxSizeBytes: maxSizeBytes,
	}
}

// WithinLimit reports whether the bundle's serialized size fits within a
// single output.
func (a *TokenBundleSizeAssessor) WithinLimit(
	bundle wtypes.TokenBundle) bool {

	return uint64(bundle.AssetCount())*txAssetEntryBytes <=
		a.maxSizeBytes
}

// SelectionCriteriaError disqualifies requested outputs before coin
// selection starts. The implementations below form a closed set.
type SelectionCriteriaError interface {
	error

	// selectionCriteriaError distinguishes the closed set from
	// arbitrary errors.
	selectionCriteriaError()
}

// OutputTokenBundleSizeExceedsLimit is returned when the token bundle of
// a requested output does not fit within a single output.
type OutputTokenBundleSizeExceedsLimit struct {
	// Address is the address of the oversized output.
	Address wtypes.Address

	// AssetCount is the number of distinct assets in the bundle.
	AssetCount int
}

// A compile-time assertion to ensure that OutputTokenBundleSizeExceedsLimit
// implements the SelectionCriteriaError interface.
var _ SelectionCriteriaError = (*OutputTokenBundleSizeExceedsLimit)(nil)

// Error returns a human readable version of the error.
func (e *OutputTokenBundleSizeExceedsLimit) Error() string {
	return fmt.Sprintf("token bundle with %d assets in the output to "+
		"%v exceeds the maximum output size", e.AssetCount, e.Address)
}

func (e *OutputTokenBundleSizeExceedsLimit) selectionCriteriaError() {}

// OutputTokenQuantityExceedsLimit is returned when a requested output
// carries more of a single token than an output can represent.
type OutputTokenQuantityExceedsLimit struct {
	// Address is the address of the offending output.
	Address wtypes.Address

	// Asset is the token whose quantity is out of range.
	Asset wtypes.AssetID

	// Quantity is the requested quantity.
	Quantity wtypes.TokenQuantity

	// MaxBound is the largest representable quantity.
	MaxBound wtypes.TokenQuantity
}

// A compile-time assertion to ensure that OutputTokenQuantityExceedsLimit
// implements the SelectionCriteriaError interface.
var _ SelectionCriteriaError = (*OutputTokenQuantityExceedsLimit)(nil)

// Error returns a human readable version of the error.
func (e *OutputTokenQuantityExceedsLimit) Error() string {
	return fmt.Sprintf("quantity %d of asset %v in the output to %v "+
		"exceeds the maximum of %d", e.Quantity, e.Asset, e.Address,
		e.MaxBound)
}

func (e *OutputTokenQuantityExceedsLimit) selectionCriteriaError() {}

// ValidateSelectionOutputs checks the requested outputs against the
// construction limits. Outputs are checked in order and the first
// offending output is reported as a SelectionCriteriaError.
func ValidateSelectionOutputs(constraints TxConstraints,
	outputs []wtypes.TxOut) error {

	assessor := NewTokenBundleSizeAssessor(
		constraints.MaxTokenBundleSize,
	)

	for _, out := range outputs {
		if !assessor.WithinLimit(out.Assets) {
			return &OutputTokenBundleSizeExceedsLimit{
				Address:    out.Address,
				AssetCount: out.Assets.AssetCount(),
			}
		}

		for id, quantity := range out.Assets {
			if quantity > constraints.MaxTokenQuantity {
				return &OutputTokenQuantityExceedsLimit{
					Address:  out.Address,
					Asset:    id,
					Quantity: quantity,
					MaxBound: constraints.MaxTokenQuantity,
				}
			}
		}
	}

	return nil
}
