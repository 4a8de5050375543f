package pooldb

import (
	"fmt"

	"github.com/praoslabs/walletd/wtypes"
)

// ErrPointAlreadyExists is returned by PutPoolProduction when the target
// slot already holds a block production record. Chain followers treat this
// as the signal that the incoming block was applied before.
type ErrPointAlreadyExists struct {
	// Slot is the slot that's already occupied.
	Slot wtypes.Slot
}

// Error implements the error interface.
func (e *ErrPointAlreadyExists) Error() string {
	return fmt.Sprintf("a block was already produced in slot %d", e.Slot)
}
