// Package nameservice reads the key folder and creates a name service lookup
// for the wallets known to the node.
package nameservice

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// NameService maintains a map of public keys for name lookup.
type NameService struct {
	mu   sync.RWMutex
	keys map[database.PublicKey]string
}

// New constructs a name service with the wallets stored in the key folder.
// A folder that doesn't exist produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		keys: make(map[database.PublicKey]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			if fileName == root && d == nil {
				return fs.SkipDir
			}
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != wallet.KeyExtension {
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(fileName), wallet.KeyExtension)
		w, err := wallet.Load(name, filepath.Dir(fileName))
		if err != nil {
			return err
		}

		ns.keys[w.PublicKey()] = name

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Register adds a name for the public key, replacing any existing name.
func (ns *NameService) Register(name string, key database.PublicKey) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	ns.keys[key] = name
}

// Lookup returns the name for the specified public key or the hex form of
// the key when it is unknown.
func (ns *NameService) Lookup(key database.PublicKey) string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	name, exists := ns.keys[key]
	if !exists {
		return key.String()
	}
	return name
}

// Copy returns a copy of the map of names and public keys.
func (ns *NameService) Copy() map[database.PublicKey]string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	cpy := make(map[database.PublicKey]string, len(ns.keys))
	for key, name := range ns.keys {
		cpy[key] = name
	}
	return cpy
}
