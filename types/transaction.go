package types

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/verdant-labs/verdant/amount"
)

const (
	// NativeAsset is the symbol transactions default to.
	NativeAsset = "VRD"

	// FeeRate is the flat transfer fee, expressed as a fraction of the amount.
	FeeRate = 0.01
)

// Transaction is a signed transfer instruction. All fields except the
// signature are fixed at construction; the signature is assigned exactly
// once by the sender's wallet. CBOR keyasint tags give the struct a single
// canonical encoding, which hashing and signing depend on.
type Transaction struct {
	Sender    string        `cbor:"1,keyasint"`
	Recipient string        `cbor:"2,keyasint"`
	Amount    amount.Amount `cbor:"3,keyasint"`
	Asset     string        `cbor:"4,keyasint"`
	Fee       amount.Amount `cbor:"5,keyasint"`
	Timestamp int64         `cbor:"6,keyasint"`
	Signature []byte        `cbor:"7,keyasint,omitempty"`

	// SenderPubKey lets any party check the signature and that the key
	// really owns the sender address. Set by the wallet before signing.
	SenderPubKey []byte `cbor:"8,keyasint,omitempty"`
}

// NewTransaction builds an unsigned transfer of amt from sender to
// recipient in the native asset. The fee is derived, not caller-supplied.
func NewTransaction(sender, recipient string, amt amount.Amount) *Transaction {
	return &Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amt,
		Asset:     NativeAsset,
		Fee:       amt.MulF64(FeeRate),
		Timestamp: time.Now().UnixNano(),
	}
}

// TotalCost is what the sender's balance must cover: amount plus fee.
func (tx *Transaction) TotalCost() amount.Amount {
	return tx.Amount + tx.Fee
}

// SignablePayload is the canonical encoding of every field except the
// signature. It is both the hashing input and the message a signature covers.
func (tx *Transaction) SignablePayload() ([]byte, error) {
	unsigned := *tx
	unsigned.Signature = nil
	return cbor.Marshal(&unsigned)
}

func (tx *Transaction) Marshal() ([]byte, error) {
	return cbor.Marshal(tx)
}

func (tx *Transaction) Unmarshal(data []byte) error {
	return cbor.Unmarshal(data, tx)
}
