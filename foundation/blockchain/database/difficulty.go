package database

import (
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
)

// MaxDifficulty is the number of bits in a digest.
const MaxDifficulty = hashing.Size * 8

// Difficulty is the number of leading zero bits a block digest must have,
// read from its binary rendering, for the block to be sealed.
type Difficulty uint

// Prefix returns the string of zero characters the binary rendering of a
// digest must start with.
func (d Difficulty) Prefix() string {
	return strings.Repeat("0", int(d))
}

// IsSolved checks the digest complies with the proof of work rules.
func (d Difficulty) IsSolved(digest hashing.Digest) bool {
	if d > MaxDifficulty {
		return false
	}

	return strings.HasPrefix(digest.Binary(), d.Prefix())
}

// IsSolvedHex is IsSolved for a hex encoded digest. Malformed hashes are
// never solved.
func (d Difficulty) IsSolvedHex(hash string) bool {
	digest, err := hashing.ToDigest(hash)
	if err != nil {
		return false
	}

	return d.IsSolved(digest)
}
