package wtypes

import (
	"encoding/hex"
	"fmt"
)

// BlockHashSize is the size of a block header hash in bytes.
const BlockHashSize = 32

// BlockHash is the hash of a block header.
type BlockHash [BlockHashSize]byte

// NewBlockHash constructs a BlockHash from a byte slice, returning an error
// if the slice length doesn't match BlockHashSize.
func NewBlockHash(b []byte) (BlockHash, error) {
	var h BlockHash
	if len(b) != BlockHashSize {
		return h, fmt.Errorf("invalid block hash length %d, want %d",
			len(b), BlockHashSize)
	}
	copy(h[:], b)

	return h, nil
}

// String returns the hex encoding of the block hash.
func (h BlockHash) String() string {
	return hex.EncodeToString(h[:])
}

// Slot is an absolute slot number, counted from the chain's inception. Slots
// are the chain's basic unit of time: each slot may contain at most one
// block.
type Slot uint64

// MaxSlot is the highest expressible slot number. It is used as the default
// time-to-live bound for transactions that shouldn't expire.
const MaxSlot = Slot(^uint64(0))

// Point identifies a position on the chain. Points are ordered by slot; the
// hash disambiguates between forks occupying the same slot but plays no role
// in ordering. The zero Point is the chain origin.
type Point struct {
	// Slot is the slot the point refers to.
	Slot Slot

	// Hash is the header hash of the block at this point. It may be left
	// zero when only the ordering component is relevant, e.g. when naming
	// a rollback target.
	Hash BlockHash
}

// String returns a compact representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("slot=%d hash=%s", p.Slot, p.Hash)
}

// After reports whether p is strictly after other in slot order.
func (p Point) After(other Point) bool {
	return p.Slot > other.Slot
}

// BlockHeader summarizes a single block: where it sits on the chain and how
// it links to its parent.
type BlockHeader struct {
	// Slot is the slot the block was produced in.
	Slot Slot

	// Hash is the block's header hash.
	Hash BlockHash

	// ParentHash is the header hash of the block's parent.
	ParentHash BlockHash

	// Height is the block's height, i.e. the number of ancestor blocks.
	Height uint64
}

// Point returns the chain point occupied by the block.
func (h BlockHeader) Point() Point {
	return Point{
		Slot: h.Slot,
		Hash: h.Hash,
	}
}
