package txbuilder

import (
	"github.com/praoslabs/walletd/wtypes"
)

// SelectedInput pairs a selected input with the full output it spends. The
// output carries the address that has to witness the spend and the value
// being consumed.
type SelectedInput struct {
	// Input references the output being spent.
	Input wtypes.TxIn

	// Output is the output the input spends.
	Output wtypes.TxOut
}

// SelectionResult is the outcome of coin selection: the inputs to spend
// and the outputs to create. It is produced by an external selection
// algorithm and consumed by the builder.
type SelectionResult struct {
	// Inputs are the selected inputs.
	Inputs []SelectedInput

	// Outputs are the payment outputs the selection covers.
	Outputs []wtypes.TxOut

	// Change are the change outputs returning excess value to the
	// wallet.
	Change []wtypes.TxOut
}

// SelectionSkeleton is the structural summary of a selection in progress.
// It carries counts and shapes rather than final values, which is all fee
// estimation needs, so it can be evaluated repeatedly while the selection
// is still growing.
type SelectionSkeleton struct {
	// InputCount is the number of inputs selected so far.
	InputCount int

	// Outputs are the payment outputs the transaction will create.
	Outputs []wtypes.TxOut

	// ChangeAssets are the asset sets of the change outputs the
	// selection will produce, one entry per change output. Only the
	// asset identities matter for size estimation, not the quantities.
	ChangeAssets []wtypes.TokenBundle
}
