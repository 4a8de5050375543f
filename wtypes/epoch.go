package wtypes

// Epoch is an epoch number, counted from the chain's inception.
type Epoch uint64

// EpochLength is the number of slots in an epoch. The value is a chain
// parameter and is fixed for the lifetime of a database.
type EpochLength uint32

// EpochOf returns the epoch that contains the given slot.
func EpochOf(slot Slot, length EpochLength) Epoch {
	return Epoch(uint64(slot) / uint64(length))
}

// StartSlot returns the first slot of the epoch.
func (e Epoch) StartSlot(length EpochLength) Slot {
	return Slot(uint64(e) * uint64(length))
}
