package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
)

// Set of errors related to transaction identity.
var (
	ErrTxNotFinalized = errors.New("transaction has not been finalized")
	ErrInvalidTxID    = errors.New("transaction id does not match its fields")
)

// =============================================================================

// Tx is the value transfer between two parties recorded in a block.
type Tx struct {
	ID        string    `json:"id"`        // Hex digest of the transaction content.
	From      PublicKey `json:"from"`      // Public key of the sender.
	To        PublicKey `json:"to"`        // Public key of the recipient.
	Amount    float64   `json:"amount"`    // Quantity being transferred.
	TimeStamp int64     `json:"timestamp"` // Unix seconds at construction.
	Sequence  uint64    `json:"sequence"`  // Number of times the id has been computed.
}

// txIdentity is the canonical set of fields the transaction id is
// derived from.
type txIdentity struct {
	From     PublicKey `json:"sender"`
	To       PublicKey `json:"recipient"`
	Amount   txAmount  `json:"amount"`
	Sequence uint64    `json:"sequence"`
}

// txAmount encodes NaN and the infinities as null so every float64 can
// take part in a transaction id.
type txAmount float64

// MarshalJSON implements the json.Marshaler interface.
func (a txAmount) MarshalJSON() ([]byte, error) {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}

	return json.Marshal(f)
}

// NewTx constructs a finalized transaction between two parties. The amount
// is not validated here, that is the job of the wallet sending it.
func NewTx(from PublicKey, to PublicKey, amount float64) (Tx, error) {
	tx := Tx{
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: time.Now().UTC().Unix(),
	}

	if err := tx.Finalize(); err != nil {
		return Tx{}, err
	}

	return tx, nil
}

// Finalize computes the transaction id over the current sequence and then
// increments the sequence by one.
func (tx *Tx) Finalize() error {
	id, err := calculateTxID(tx.From, tx.To, tx.Amount, tx.Sequence)
	if err != nil {
		return fmt.Errorf("calculate tx id: %w", err)
	}

	tx.ID = id
	tx.Sequence++

	return nil
}

// VerifyID recomputes the id using the sequence in effect when the
// transaction was last finalized and compares it to the stored id.
func (tx Tx) VerifyID() error {
	if tx.Sequence == 0 || tx.ID == "" {
		return ErrTxNotFinalized
	}

	id, err := calculateTxID(tx.From, tx.To, tx.Amount, tx.Sequence-1)
	if err != nil {
		return fmt.Errorf("calculate tx id: %w", err)
	}

	if id != tx.ID {
		return fmt.Errorf("%w: got %s, exp %s", ErrInvalidTxID, tx.ID, id)
	}

	return nil
}

// Hash implements the merkle Hashable interface. The decoded id is used as
// the leaf value of the tree.
func (tx Tx) Hash() ([]byte, error) {
	return hashing.DecodeHex(tx.ID)
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.ID == otherTx.ID
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("id=%s", tx.ID)
}

// =============================================================================

// calculateTxID produces the hex digest of the canonical identity fields.
func calculateTxID(from PublicKey, to PublicKey, amount float64, sequence uint64) (string, error) {
	d, err := hashing.JSON(txIdentity{
		From:     from,
		To:       to,
		Amount:   txAmount(amount),
		Sequence: sequence,
	})
	if err != nil {
		return "", err
	}

	return d.Hex(), nil
}
