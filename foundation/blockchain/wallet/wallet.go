// Package wallet manages the key pairs that send and receive value on the
// ledger.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
)

// KeyExtension is the file extension of stored private keys.
const KeyExtension = ".ecdsa"

// ErrNegativeAmount is returned when a wallet is asked to send a negative
// amount.
var ErrNegativeAmount = errors.New("amount must not be negative")

// validate holds the settings and caches for validating amounts.
var validate = validator.New()

// Wallet represents a named key pair.
type Wallet struct {
	Name       string
	privateKey *ecdsa.PrivateKey
}

// New generates a wallet with a fresh secp256k1 key pair.
func New(name string) (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	return FromPrivateKey(name, privateKey), nil
}

// FromPrivateKey constructs a wallet around an existing private key.
func FromPrivateKey(name string, privateKey *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		Name:       name,
		privateKey: privateKey,
	}
}

// Load reads the private key for the named wallet from the key folder.
func Load(name string, path string) (*Wallet, error) {
	name = strings.TrimSuffix(name, KeyExtension)

	privateKey, err := crypto.LoadECDSA(KeyPath(name, path))
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", name, err)
	}

	return FromPrivateKey(name, privateKey), nil
}

// KeyPath returns the file the named wallet's key is stored in.
func KeyPath(name string, path string) string {
	if !strings.HasSuffix(name, KeyExtension) {
		name += KeyExtension
	}

	return filepath.Join(path, name)
}

// Save writes the private key of the wallet into the key folder.
func (w *Wallet) Save(path string) error {
	if err := crypto.SaveECDSA(KeyPath(w.Name, path), w.privateKey); err != nil {
		return fmt.Errorf("save key %q: %w", w.Name, err)
	}

	return nil
}

// PublicKey returns the compressed public key of the wallet.
func (w *Wallet) PublicKey() database.PublicKey {
	return database.PublicKeyFromECDSA(w.privateKey.PublicKey)
}

// Address returns the ethereum style address of the wallet for display.
func (w *Wallet) Address() string {
	return crypto.PubkeyToAddress(w.privateKey.PublicKey).String()
}

// Send constructs a transaction moving the amount from this wallet to the
// recipient. Negative amounts are rejected before any transaction exists.
func (w *Wallet) Send(to database.PublicKey, amount float64) (database.Tx, error) {
	if err := validate.Var(amount, "gte=0"); err != nil {
		return database.Tx{}, fmt.Errorf("%w: %w", ErrNegativeAmount, err)
	}

	tx, err := database.NewTx(w.PublicKey(), to, amount)
	if err != nil {
		return database.Tx{}, fmt.Errorf("new tx: %w", err)
	}

	return tx, nil
}
