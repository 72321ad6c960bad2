package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// PublicKeyLength is the size of a compressed secp256k1 public key.
const PublicKeyLength = 33

// PublicKey represents the compressed public key of a wallet. The core treats
// the bytes as opaque values identifying the sender and recipient of a
// transaction.
type PublicKey [PublicKeyLength]byte

// PublicKeyFromECDSA compresses the ecdsa public key into a PublicKey.
func PublicKeyFromECDSA(pk ecdsa.PublicKey) PublicKey {
	var key PublicKey
	copy(key[:], crypto.CompressPubkey(&pk))
	return key
}

// ToPublicKey converts a 0x prefixed hex-encoded string into a PublicKey and
// validates the string is formatted correctly.
func ToPublicKey(hex string) (PublicKey, error) {
	var key PublicKey
	if err := key.UnmarshalText([]byte(hex)); err != nil {
		return PublicKey{}, err
	}

	return key, nil
}

// ECDSA decompresses the key back into an ecdsa public key.
func (pk PublicKey) ECDSA() (*ecdsa.PublicKey, error) {
	return crypto.DecompressPubkey(pk[:])
}

// IsZero reports whether the key has not been set.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// String implements the fmt.Stringer interface.
func (pk PublicKey) String() string {
	return hexutil.Encode(pk[:])
}

// MarshalText implements the encoding.TextMarshaler interface so keys are
// encoded as 0x prefixed hex strings.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(pk[:])), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("invalid public key format: %w", err)
	}

	if len(b) != PublicKeyLength {
		return fmt.Errorf("invalid public key length, got %d, exp %d", len(b), PublicKeyLength)
	}

	copy(pk[:], b)
	return nil
}
