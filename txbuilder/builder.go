package txbuilder

import (
	"github.com/praoslabs/walletd/keychain"
	"github.com/praoslabs/walletd/wtypes"
	"golang.org/x/crypto/blake2b"
)

// Author builds and signs transactions for a single era under a fixed set
// of protocol parameters.
type Author struct {
	// Era is the ledger era transactions are built for.
	Era wtypes.Era

	// Params are the protocol parameters in effect.
	Params *wtypes.ProtocolParameters

	// Codec seals and opens transactions at the wire boundary.
	Codec Codec
}

// BuildSignedTx assembles a transaction body from the coin selection and
// context, witnesses it against the key store, and seals it. The returned
// transaction is read back from the sealed bytes, so its ID and contents
// are exactly what a peer decoding the transaction would see. On error
// neither value is returned; there are no partially signed transactions.
func (a *Author) BuildSignedTx(ks keychain.KeyStore, txCtx TxContext,
	selection *SelectionResult) (*wtypes.Tx, wtypes.SealedTx, error) {

	body, err := a.makeUnsignedBody(txCtx, selection)
	if err != nil {
		return nil, nil, err
	}

	sealed, err := a.signTx(ks, txCtx, body)
	if err != nil {
		return nil, nil, err
	}

	decoded, err := a.Codec.DecodeTx(sealed)
	if err != nil {
		return nil, nil, err
	}

	tx := resolvedTx(decoded, selection)

	log.Debugf("Built transaction %v: %d inputs, %d outputs, "+
		"%d certificates", tx.ID, len(tx.ResolvedInputs),
		len(tx.Outputs), len(decoded.Certificates))

	return tx, sealed, nil
}

// makeUnsignedBody lays out the transaction body: the selected inputs and
// outputs, then the withdrawal, certificates and metadata the context asks
// for.
func (a *Author) makeUnsignedBody(txCtx TxContext,
	selection *SelectionResult) (*TxBody, error) {

	// The body layout below presupposes certificate and withdrawal
	// support, which the earliest era lacks.
	if !a.Era.SupportsDelegation() {
		return nil, &ErrInvalidEra{Era: a.Era}
	}

	body := &TxBody{
		TTL: txCtx.TTL,
	}

	for _, in := range selection.Inputs {
		body.Inputs = append(body.Inputs, in.Input)
	}

	// Change outputs follow the payment outputs. The asset bundles are
	// cloned so the body does not alias the caller's maps.
	for _, out := range selection.Outputs {
		out.Assets = out.Assets.Clone()
		body.Outputs = append(body.Outputs, out)
	}
	for _, out := range selection.Change {
		out.Assets = out.Assets.Clone()
		body.Outputs = append(body.Outputs, out)
	}

	txCtx.Withdrawal.RewardAccount().WhenSome(
		func(acct wtypes.RewardAccount) {
			body.Withdrawals = map[wtypes.RewardAccount]wtypes.Coin{
				acct: txCtx.Withdrawal.Amount,
			}
		},
	)

	txCtx.Delegation.WhenSome(func(action DelegationAction) {
		body.Certificates = action.Certificates()
	})

	txCtx.Metadata.WhenSome(func(metadata []byte) {
		body.Metadata = metadata
	})

	return body, nil
}

// signTx witnesses the body against the key store and seals it. Every
// witness signs the transaction ID, the blake2b-256 hash of the encoded
// body.
func (a *Author) signTx(ks keychain.KeyStore, txCtx TxContext,
	body *TxBody) (wtypes.SealedTx, error) {

	bodyBytes, err := a.Codec.EncodeTxBody(body)
	if err != nil {
		return nil, &ErrSignTxBody{Err: err}
	}
	txID := blake2b.Sum256(bodyBytes)

	maker := func(key keychain.SigningKey,
		_ wtypes.Address) wtypes.TxWitness {

		var witness wtypes.TxWitness
		copy(witness.VKey[:], key.PubKey())
		copy(witness.Signature[:], key.Sign(txID[:]))

		return witness
	}

	// Resolve every input before judging any of them, so the error
	// reported is for the first failing input in body order.
	records := make([]InputWitness, 0, len(body.Inputs))
	for _, in := range body.Inputs {
		records = append(records, ResolveInputWitness(ks, maker, in))
	}

	witnesses := &WitnessSet{
		VKeyWitnesses: make([]wtypes.TxWitness, 0, len(records)),
	}
	for _, record := range records {
		if record.Address.IsNone() {
			return nil, &ErrSignTxAddressUnknown{
				Input: record.Input,
			}
		}
		if record.Witness.IsNone() {
			return nil, &ErrSignTxKeyNotFound{
				Address: record.Address.UnsafeFromSome(),
			}
		}

		witnesses.VKeyWitnesses = append(
			witnesses.VKeyWitnesses,
			record.Witness.UnsafeFromSome(),
		)
	}

	// Withdrawals from our own reward accounts get a stake key witness.
	// An account the key store cannot witness yields none; external
	// withdrawals are witnessed by their owner.
	if txCtx.Withdrawal.Kind == WithdrawalSelf {
		for acct := range body.Withdrawals {
			ResolveWithdrawalWitness(ks, maker, acct).WhenSome(
				func(w WithdrawalWitness) {
					witnesses.VKeyWitnesses = append(
						witnesses.VKeyWitnesses,
						w.Witness,
					)
				},
			)
		}
	}

	sealed, err := a.Codec.EncodeTx(body, witnesses)
	if err != nil {
		return nil, &ErrSignTxBody{Err: err}
	}

	return sealed, nil
}

// resolvedTx pairs the decoded transaction with the input coin values of
// the selection. The sealed format does not carry the value of spent
// outputs, so the selection that chose the inputs is the only source for
// them.
func resolvedTx(decoded *DecodedTx, selection *SelectionResult) *wtypes.Tx {
	coins := make(map[wtypes.TxIn]wtypes.Coin, len(selection.Inputs))
	for _, in := range selection.Inputs {
		coins[in.Input] = in.Output.Coin
	}

	tx := &wtypes.Tx{
		ID:          decoded.ID,
		Outputs:     decoded.Outputs,
		Withdrawals: decoded.Withdrawals,
		Metadata:    decoded.Metadata,
	}
	for _, in := range decoded.Inputs {
		tx.ResolvedInputs = append(
			tx.ResolvedInputs, wtypes.ResolvedInput{
				Input: in,
				Coin:  coins[in],
			},
		)
	}

	return tx
}
