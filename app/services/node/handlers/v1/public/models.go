package public

import (
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

type tx struct {
	ID        string             `json:"id"`
	From      database.PublicKey `json:"from"`
	FromName  string             `json:"from_name"`
	To        database.PublicKey `json:"to"`
	ToName    string             `json:"to_name"`
	Amount    float64            `json:"amount"`
	TimeStamp int64              `json:"timestamp"`
	Sequence  uint64             `json:"sequence"`
}

type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"previous_hash"`
	TimeStamp     int64  `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	MerkleRoot    string `json:"merkle_root"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"trans"`
}

type proof struct {
	Block      uint64   `json:"block"`
	TxID       string   `json:"tx_id"`
	MerkleRoot string   `json:"merkle_root"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
	Verified   bool     `json:"verified"`
}

type validation struct {
	Valid      bool     `json:"valid"`
	Blocks     int      `json:"blocks"`
	Violations []string `json:"violations,omitempty"`
}

// NewTx is what a client posts to submit a transfer.
type NewTx struct {
	From   database.PublicKey `json:"from" validate:"required"`
	To     database.PublicKey `json:"to" validate:"required"`
	Amount float64            `json:"amount" validate:"gte=0"`
}

// Validate checks the data in the model is considered clean.
func (ntx NewTx) Validate() error {
	if err := validate.Check(ntx); err != nil {
		return err
	}
	return nil
}

// =============================================================================

func (h Handlers) toTx(dbTx database.Tx) tx {
	return tx{
		ID:        dbTx.ID,
		From:      dbTx.From,
		FromName:  h.NS.Lookup(dbTx.From),
		To:        dbTx.To,
		ToName:    h.NS.Lookup(dbTx.To),
		Amount:    dbTx.Amount,
		TimeStamp: dbTx.TimeStamp,
		Sequence:  dbTx.Sequence,
	}
}

func (h Handlers) toBlock(blk database.Block) block {
	trans := make([]tx, len(blk.Trans))
	for i, dbTx := range blk.Trans {
		trans[i] = h.toTx(dbTx)
	}

	return block{
		Number:        blk.Header.Number,
		PrevBlockHash: blk.Header.PrevBlockHash,
		TimeStamp:     blk.Header.TimeStamp,
		Nonce:         blk.Header.Nonce,
		MerkleRoot:    blk.Header.MerkleRoot,
		Hash:          blk.Hash,
		Transactions:  trans,
	}
}
