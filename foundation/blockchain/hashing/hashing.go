// Package hashing provides the digest and byte encoding helpers shared by
// transactions, blocks and the merkle tree.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Size is the number of bytes in a digest.
const Size = sha256.Size

// Digest represents a sha256 hash value.
type Digest [Size]byte

// Hex returns the digest as a lowercase hex string with no prefix.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Binary renders the digest as a bit string, 8 bits per byte.
func (d Digest) Binary() string {
	return ToBinary(d[:])
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return d.Hex()
}

// =============================================================================

// Sum256 returns the sha256 digest of the data.
func Sum256(data []byte) Digest {
	return sha256.Sum256(data)
}

// DoubleSum256 applies sha256 twice in succession.
func DoubleSum256(data []byte) Digest {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// JSON returns the sha256 digest of the JSON encoding of the value. The
// encoding of a struct follows field declaration order so the result is
// stable for the same field values.
func JSON(value any) (Digest, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Digest{}, fmt.Errorf("marshal value: %w", err)
	}

	return Sum256(data), nil
}

// =============================================================================

// Reverse returns a copy of b with the byte order reversed. The input slice
// is left untouched.
func Reverse(b []byte) []byte {
	r := make([]byte, len(b))
	for i := range b {
		r[len(b)-1-i] = b[i]
	}

	return r
}

// ToBinary renders the bytes as a bit string. Every byte contributes exactly
// 8 characters so leading zero bits are preserved.
func ToBinary(b []byte) string {
	bits := make([]byte, 0, len(b)*8)
	for _, c := range b {
		for i := 7; i >= 0; i-- {
			bits = append(bits, '0'+(c>>uint(i))&1)
		}
	}

	return string(bits)
}

// DecodeHex converts a hex string with no prefix into bytes.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex %q: %w", s, err)
	}

	return b, nil
}

// EncodeHex converts bytes into a lowercase hex string with no prefix.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// ToDigest decodes a hex string into a digest and validates its length.
func ToDigest(s string) (Digest, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return Digest{}, err
	}

	if len(b) != Size {
		return Digest{}, fmt.Errorf("invalid digest length, got %d, exp %d", len(b), Size)
	}

	var d Digest
	copy(d[:], b)

	return d, nil
}
