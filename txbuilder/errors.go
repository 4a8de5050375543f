package txbuilder

import (
	"errors"
	"fmt"

	"github.com/praoslabs/walletd/wtypes"
)

// ErrDecodeTxNotSupported is returned when a sealed transaction carries a
// wire format version this codec doesn't understand.
var ErrDecodeTxNotSupported = errors.New("transaction format not supported")

// ErrInvalidEra is returned when a transaction is requested for an era the
// builder cannot produce transactions for.
type ErrInvalidEra struct {
	// Era is the rejected era.
	Era wtypes.Era
}

// Error returns the error message.
func (e *ErrInvalidEra) Error() string {
	return fmt.Sprintf("cannot build transactions for the %v era", e.Era)
}

// ErrSignTxAddressUnknown is returned when a transaction spends an output
// whose address cannot be resolved, so nobody can be asked to witness it.
type ErrSignTxAddressUnknown struct {
	// Input is the input that cannot be witnessed.
	Input wtypes.TxIn
}

// Error returns the error message.
func (e *ErrSignTxAddressUnknown) Error() string {
	return fmt.Sprintf("no known address for the output spent by "+
		"input %v", e.Input)
}

// ErrSignTxKeyNotFound is returned when the address of a spent output is
// known but no signing key is held for it.
type ErrSignTxKeyNotFound struct {
	// Address is the address the missing key belongs to.
	Address wtypes.Address
}

// Error returns the error message.
func (e *ErrSignTxKeyNotFound) Error() string {
	return fmt.Sprintf("no signing key for address %v", e.Address)
}

// ErrSignTxBody wraps a failure to serialize or assemble the transaction
// during signing.
type ErrSignTxBody struct {
	// Err is the underlying assembly error.
	Err error
}

// Error returns the error message.
func (e *ErrSignTxBody) Error() string {
	return fmt.Sprintf("unable to assemble transaction: %v", e.Err)
}

// Unwrap returns the wrapped error.
func (e *ErrSignTxBody) Unwrap() error {
	return e.Err
}

// ErrDecodeTxWrongPayload is returned when a byte string presented as a
// sealed transaction cannot be parsed.
type ErrDecodeTxWrongPayload struct {
	// Reason describes why the payload was rejected.
	Reason string
}

// Error returns the error message.
func (e *ErrDecodeTxWrongPayload) Error() string {
	return fmt.Sprintf("not a sealed transaction: %s", e.Reason)
}
