package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
)

// BlockHeader represents the fields of a block that are covered by the
// block hash.
type BlockHeader struct {
	Number        uint64 `json:"id"`            // Height of the block in the chain, genesis is 0.
	PrevBlockHash string `json:"previous_hash"` // Hash of the previous block, empty for genesis.
	TimeStamp     int64  `json:"timestamp"`     // Unix seconds the block was constructed.
	Nonce         uint64 `json:"nonce"`         // Value identified to solve the hash solution.
	MerkleRoot    string `json:"merkle_root"`   // Merkle root over the ids of the transactions.
}

// Digest returns the hash of the header fields. A header that can't be
// encoded produces the zero digest which never matches a stored hash.
func (bh BlockHeader) Digest() hashing.Digest {
	d, err := hashing.JSON(bh)
	if err != nil {
		return hashing.Digest{}
	}

	return d
}

// =============================================================================

// Block represents a group of transactions batched together and sealed by
// proof of work.
type Block struct {
	Header BlockHeader `json:"header"`
	Hash   string      `json:"hash"` // Hex digest of the header, empty until sealed.
	Trans  []Tx        `json:"trans"`
}

// NewBlock constructs an unsealed block that will sit on top of the block
// with the specified hash.
func NewBlock(number uint64, prevBlockHash string) Block {
	return Block{
		Header: BlockHeader{
			Number:        number,
			PrevBlockHash: prevBlockHash,
			TimeStamp:     time.Now().UTC().Unix(),
		},
	}
}

// AddTransaction appends the transaction to the block. Transactions keep the
// order they are added in.
func (b *Block) AddTransaction(tx Tx) error {
	if b.IsSealed() {
		return ErrBlockSealed
	}

	b.Trans = append(b.Trans, tx)
	return nil
}

// IsSealed reports whether the block has been mined.
func (b Block) IsSealed() bool {
	return b.Hash != ""
}

// CalculateHash recomputes the hex hash of the block from its current
// header fields.
func (b Block) CalculateHash() string {
	return b.Header.Digest().Hex()
}

// MerkleTree constructs the merkle tree over the block's transactions.
func (b Block) MerkleTree() (*merkle.Tree[Tx], error) {
	tree, err := merkle.NewTree(b.Trans)
	if err != nil {
		return nil, fmt.Errorf("blk[%d]: build merkle tree: %w", b.Header.Number, err)
	}

	return tree, nil
}

// TxIDs returns the ids of the block's transactions in order.
func (b Block) TxIDs() []string {
	ids := make([]string, len(b.Trans))
	for i, tx := range b.Trans {
		ids[i] = tx.ID
	}

	return ids
}

// Copy returns a block that shares no memory with the original.
func (b Block) Copy() Block {
	trans := make([]Tx, len(b.Trans))
	copy(trans, b.Trans)

	b.Trans = trans
	return b
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("blk[%d]: hash[%s]: prev[%s]: nonce[%d]: trans[%d]", b.Header.Number, b.Hash, b.Header.PrevBlockHash, b.Header.Nonce, len(b.Trans))
}
