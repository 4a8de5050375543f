package txbuilder

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/praoslabs/walletd/wtypes"
	"golang.org/x/crypto/blake2b"
)

// Codec serializes transactions at the wire boundary. Implementations must
// be deterministic: the transaction ID is a hash over the encoded body, so
// encoding the same body twice has to yield identical bytes.
type Codec interface {
	// EncodeTxBody serializes an unsigned transaction body. The
	// transaction ID is the blake2b-256 hash of these bytes.
	EncodeTxBody(body *TxBody) ([]byte, error)

	// EncodeTx assembles the sealed transaction from its body and
	// witness set.
	EncodeTx(body *TxBody,
		witnesses *WitnessSet) (wtypes.SealedTx, error)

	// DecodeTx parses a sealed transaction back into its parts.
	// Failures are ErrDecodeTxWrongPayload for malformed bytes and
	// ErrDecodeTxNotSupported for unknown wire versions.
	DecodeTx(sealed wtypes.SealedTx) (*DecodedTx, error)
}

// txWireVersion is the wire format version CBORCodec seals transactions
// with.
const txWireVersion = 1

// Wire forms of the transaction pieces. Fixed-size byte arrays travel as
// byte strings and maps travel as sorted pair lists, which keeps the
// encoding deterministic.
type wireTxIn struct {
	_     struct{} `cbor:",toarray"`
	TxID  []byte
	Index uint32
}

type wireAsset struct {
	_        struct{} `cbor:",toarray"`
	PolicyID []byte
	Name     []byte
	Quantity uint64
}

type wireTxOut struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Coin    uint64
	Assets  []wireAsset
}

type wireWithdrawal struct {
	_       struct{} `cbor:",toarray"`
	Account []byte
	Amount  uint64
}

type wireCertificate struct {
	_       struct{} `cbor:",toarray"`
	Kind    uint8
	Account []byte
	Pool    []byte
}

type wireBody struct {
	_            struct{} `cbor:",toarray"`
	Inputs       []wireTxIn
	Outputs      []wireTxOut
	Withdrawals  []wireWithdrawal
	Certificates []wireCertificate
	TTL          uint64
	Metadata     []byte
}

type wireWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

type wireTx struct {
	_         struct{} `cbor:",toarray"`
	Version   uint8
	Body      cbor.RawMessage
	Witnesses []wireWitness
}

// CBORCodec is the default Codec. It seals transactions as a small
// versioned CBOR envelope holding the raw body bytes and the witness set.
// Keeping the body bytes opaque inside the envelope lets the decoder
// recompute the transaction ID over exactly the bytes the witnesses
// signed.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// A compile-time assertion to ensure that CBORCodec implements the Codec
// interface.
var _ Codec = (*CBORCodec)(nil)

// NewCBORCodec creates a codec with deterministic CBOR encoding.
func NewCBORCodec() (*CBORCodec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}

	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}

	return &CBORCodec{enc: enc, dec: dec}, nil
}

// EncodeTxBody serializes an unsigned transaction body.
//
// NOTE: part of the Codec interface.
func (c *CBORCodec) EncodeTxBody(body *TxBody) ([]byte, error) {
	return c.enc.Marshal(bodyToWire(body))
}

// EncodeTx assembles the sealed transaction from its body and witness set.
//
// NOTE: part of the Codec interface.
func (c *CBORCodec) EncodeTx(body *TxBody,
	witnesses *WitnessSet) (wtypes.SealedTx, error) {

	bodyBytes, err := c.EncodeTxBody(body)
	if err != nil {
		return nil, err
	}

	tx := wireTx{
		Version: txWireVersion,
		Body:    cbor.RawMessage(bodyBytes),
	}
	for _, witness := range witnesses.VKeyWitnesses {
		tx.Witnesses = append(tx.Witnesses, wireWitness{
			VKey:      witness.VKey[:],
			Signature: witness.Signature[:],
		})
	}

	sealed, err := c.enc.Marshal(tx)
	if err != nil {
		return nil, err
	}

	return wtypes.SealedTx(sealed), nil
}

// DecodeTx parses a sealed transaction back into its parts.
//
// NOTE: part of the Codec interface.
func (c *CBORCodec) DecodeTx(sealed wtypes.SealedTx) (*DecodedTx, error) {
	var tx wireTx
	if err := c.dec.Unmarshal(sealed, &tx); err != nil {
		return nil, wrongPayload("%v", err)
	}

	if tx.Version != txWireVersion {
		return nil, ErrDecodeTxNotSupported
	}

	var body wireBody
	if err := c.dec.Unmarshal(tx.Body, &body); err != nil {
		return nil, wrongPayload("body: %v", err)
	}

	decoded := &DecodedTx{
		// The ID is the hash over exactly the body bytes carried in
		// the envelope.
		ID:       wtypes.TxID(blake2b.Sum256(tx.Body)),
		Metadata: body.Metadata,
	}

	for _, in := range body.Inputs {
		txID, err := wtypes.NewTxID(in.TxID)
		if err != nil {
			return nil, wrongPayload("input: %v", err)
		}
		decoded.Inputs = append(decoded.Inputs, wtypes.TxIn{
			TxID:  txID,
			Index: in.Index,
		})
	}

	for _, out := range body.Outputs {
		txOut, err := wireToTxOut(out)
		if err != nil {
			return nil, err
		}
		decoded.Outputs = append(decoded.Outputs, txOut)
	}

	if len(body.Withdrawals) > 0 {
		decoded.Withdrawals = make(
			map[wtypes.RewardAccount]wtypes.Coin,
			len(body.Withdrawals),
		)
		for _, withdrawal := range body.Withdrawals {
			acct, err := wtypes.NewRewardAccount(
				withdrawal.Account,
			)
			if err != nil {
				return nil, wrongPayload("withdrawal: %v", err)
			}
			decoded.Withdrawals[acct] = wtypes.Coin(
				withdrawal.Amount,
			)
		}
	}

	for _, cert := range body.Certificates {
		converted, err := wireToCertificate(cert)
		if err != nil {
			return nil, err
		}
		decoded.Certificates = append(decoded.Certificates, converted)
	}

	for _, witness := range tx.Witnesses {
		converted, err := wireToWitness(witness)
		if err != nil {
			return nil, err
		}
		decoded.Witnesses = append(decoded.Witnesses, converted)
	}

	return decoded, nil
}

// wrongPayload builds an ErrDecodeTxWrongPayload with a formatted reason.
func wrongPayload(format string, args ...interface{}) error {
	return &ErrDecodeTxWrongPayload{
		Reason: fmt.Sprintf(format, args...),
	}
}

// bodyToWire converts a transaction body into its wire form, sorting the
// map-shaped fields so the encoding is deterministic.
func bodyToWire(body *TxBody) wireBody {
	wire := wireBody{
		TTL:      uint64(body.TTL),
		Metadata: body.Metadata,
	}

	for _, in := range body.Inputs {
		wire.Inputs = append(wire.Inputs, wireTxIn{
			TxID:  in.TxID[:],
			Index: in.Index,
		})
	}

	for _, out := range body.Outputs {
		wire.Outputs = append(wire.Outputs, txOutToWire(out))
	}

	for acct, amount := range body.Withdrawals {
		wire.Withdrawals = append(wire.Withdrawals, wireWithdrawal{
			Account: acct[:],
			Amount:  uint64(amount),
		})
	}
	sort.Slice(wire.Withdrawals, func(i, j int) bool {
		return bytes.Compare(
			wire.Withdrawals[i].Account,
			wire.Withdrawals[j].Account,
		) < 0
	})

	for _, cert := range body.Certificates {
		wireCert := wireCertificate{
			Kind:    uint8(cert.Kind),
			Account: cert.Account[:],
		}
		if cert.Kind == CertDelegation {
			wireCert.Pool = cert.Pool[:]
		}
		wire.Certificates = append(wire.Certificates, wireCert)
	}

	return wire
}

// txOutToWire converts an output into its wire form with the token bundle
// sorted by asset.
func txOutToWire(out wtypes.TxOut) wireTxOut {
	wire := wireTxOut{
		Address: out.Address.Bytes(),
		Coin:    uint64(out.Coin),
	}

	for id, quantity := range out.Assets {
		wire.Assets = append(wire.Assets, wireAsset{
			PolicyID: id.PolicyID[:],
			Name:     []byte(id.Name),
			Quantity: uint64(quantity),
		})
	}
	sort.Slice(wire.Assets, func(i, j int) bool {
		cmp := bytes.Compare(
			wire.Assets[i].PolicyID, wire.Assets[j].PolicyID,
		)
		if cmp != 0 {
			return cmp < 0
		}

		return bytes.Compare(
			wire.Assets[i].Name, wire.Assets[j].Name,
		) < 0
	})

	return wire
}

// wireToTxOut converts a wire output back into its domain form.
func wireToTxOut(out wireTxOut) (wtypes.TxOut, error) {
	txOut := wtypes.TxOut{
		Address: wtypes.NewAddress(out.Address),
		Coin:    wtypes.Coin(out.Coin),
	}

	if len(out.Assets) > 0 {
		txOut.Assets = make(wtypes.TokenBundle, len(out.Assets))
		for _, asset := range out.Assets {
			if len(asset.PolicyID) != wtypes.PolicyIDSize {
				return txOut, wrongPayload(
					"invalid policy id length %d",
					len(asset.PolicyID),
				)
			}

			var id wtypes.AssetID
			copy(id.PolicyID[:], asset.PolicyID)
			id.Name = wtypes.AssetName(asset.Name)

			txOut.Assets[id] = wtypes.TokenQuantity(
				asset.Quantity,
			)
		}
	}

	return txOut, nil
}

// wireToCertificate converts a wire certificate back into its domain form.
func wireToCertificate(cert wireCertificate) (Certificate, error) {
	var converted Certificate

	if cert.Kind > uint8(CertDelegation) {
		return converted, wrongPayload(
			"unknown certificate kind %d", cert.Kind,
		)
	}
	converted.Kind = CertificateKind(cert.Kind)

	acct, err := wtypes.NewRewardAccount(cert.Account)
	if err != nil {
		return converted, wrongPayload("certificate: %v", err)
	}
	converted.Account = acct

	if converted.Kind == CertDelegation {
		pool, err := wtypes.NewPoolID(cert.Pool)
		if err != nil {
			return converted, wrongPayload("certificate: %v", err)
		}
		converted.Pool = pool
	}

	return converted, nil
}

// wireToWitness converts a wire witness back into its domain form.
func wireToWitness(witness wireWitness) (wtypes.TxWitness, error) {
	var converted wtypes.TxWitness

	if len(witness.VKey) != wtypes.WitnessVKeySize {
		return converted, wrongPayload(
			"invalid witness key length %d", len(witness.VKey),
		)
	}
	if len(witness.Signature) != wtypes.WitnessSigSize {
		return converted, wrongPayload(
			"invalid witness signature length %d",
			len(witness.Signature),
		)
	}

	copy(converted.VKey[:], witness.VKey)
	copy(converted.Signature[:], witness.Signature)

	return converted, nil
}
