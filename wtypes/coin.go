package wtypes

import (
	"encoding/hex"
	"fmt"
)

// Coin is a quantity of the chain's native currency, expressed in its
// smallest indivisible unit.
type Coin uint64

// String returns the coin amount followed by its unit.
func (c Coin) String() string {
	return fmt.Sprintf("%d lovelace", uint64(c))
}

// PolicyIDSize is the size of a token policy ID in bytes.
const PolicyIDSize = 28

// PolicyID identifies the minting policy of a native token.
type PolicyID [PolicyIDSize]byte

// String returns the hex encoding of the policy ID.
func (p PolicyID) String() string {
	return hex.EncodeToString(p[:])
}

// AssetName is the name of a native token within its policy, at most 32
// bytes of opaque data.
type AssetName string

// AssetID identifies a native token: the pairing of a minting policy with an
// asset name.
type AssetID struct {
	// PolicyID is the token's minting policy.
	PolicyID PolicyID

	// Name is the token's name within the policy.
	Name AssetName
}

// String returns the policy ID and the hex encoded asset name separated
// by a dot.
func (a AssetID) String() string {
	return fmt.Sprintf(
		"%v.%s", a.PolicyID, hex.EncodeToString([]byte(a.Name)),
	)
}

// TokenQuantity is an amount of a single native token.
type TokenQuantity uint64

// TokenBundle is a collection of native token quantities keyed by asset.
// Assets with a zero quantity are not represented.
type TokenBundle map[AssetID]TokenQuantity

// AssetCount returns the number of distinct assets in the bundle.
func (b TokenBundle) AssetCount() int {
	return len(b)
}

// Clone returns an independent copy of the bundle.
func (b TokenBundle) Clone() TokenBundle {
	if b == nil {
		return nil
	}

	clone := make(TokenBundle, len(b))
	for id, quantity := range b {
		clone[id] = quantity
	}

	return clone
}
