package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
)

// ID represents a hex encoded transaction id used as a leaf of the tree. The
// decoded bytes of the id are the leaf hash.
type ID string

// Hash implements the Hashable interface by decoding the hex id.
func (id ID) Hash() ([]byte, error) {
	return hashing.DecodeHex(string(id))
}

// Equals implements the Hashable interface.
func (id ID) Equals(other ID) bool {
	return id == other
}

// =============================================================================

// RootFromIDs reduces an ordered list of hex encoded transaction ids into the
// hex encoded merkle root. A single id is returned as is.
func RootFromIDs(ids []string) (string, error) {
	values := make([]ID, len(ids))
	for i, id := range ids {
		values[i] = ID(id)
	}

	tree, err := NewTree(values)
	if err != nil {
		return "", err
	}

	if len(ids) == 1 {
		return ids[0], nil
	}

	return tree.RootHex(), nil
}

// VerifyProof recomputes the merkle root from the hex encoded leaf hash and
// proof produced by Tree.Proof and compares it with the hex encoded root.
func VerifyProof(leaf string, proof []string, order []int64, root string) error {
	if len(proof) != len(order) {
		return fmt.Errorf("proof length %d does not match order length %d", len(proof), len(order))
	}

	hash, err := hashing.DecodeHex(leaf)
	if err != nil {
		return err
	}

	for i := range proof {
		sibling, err := hashing.DecodeHex(proof[i])
		if err != nil {
			return err
		}

		switch order[i] {
		case 0:
			hash, err = pair(sha256.New, sibling, hash)
		case 1:
			hash, err = pair(sha256.New, hash, sibling)
		default:
			return fmt.Errorf("invalid proof order %d at position %d", order[i], i)
		}
		if err != nil {
			return err
		}
	}

	exp, err := hashing.DecodeHex(root)
	if err != nil {
		return err
	}

	if !bytes.Equal(hash, exp) {
		return errors.New("merkle root is not equivalent to the root calculated from the proof")
	}

	return nil
}

// ProofHex converts the byte hashes of a proof into hex strings.
func ProofHex(proof [][]byte) []string {
	hexes := make([]string, len(proof))
	for i, p := range proof {
		hexes[i] = hashing.EncodeHex(p)
	}

	return hexes
}
