// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/go-playground/validator/v10"
)

// validate holds the settings and caches for validating genesis values.
var validate = validator.New()

// Genesis represents the genesis file.
type Genesis struct {
	Date time.Time `json:"date"`

	// ChainID represents an unique id for this running instance.
	ChainID uint16 `json:"chain_id"`

	// Difficulty is the number of leading zero bits the block hash needs.
	Difficulty uint16 `json:"difficulty" validate:"lte=256"`

	// MaxNonce is the largest nonce tried when mining, 0 means unbounded.
	MaxNonce uint64 `json:"max_nonce"`

	// MiningWorkers is the number of goroutines searching the nonce space.
	MiningWorkers uint16 `json:"mining_workers" validate:"gte=1"`

	// TransPerBlock is the maximum number of transactions in a block.
	TransPerBlock uint16 `json:"trans_per_block" validate:"gte=1"`

	// SeedAmount is the amount of the transaction sealed in the genesis block.
	SeedAmount float64 `json:"seed_amount" validate:"gte=0"`
}

// Default returns the genesis used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:          time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:       1,
		Difficulty:    8,
		MaxNonce:      0,
		MiningWorkers: 1,
		TransPerBlock: 10,
		SeedAmount:    30.0,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. When no file exists at the path
// the default genesis is returned.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("unmarshal genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis values are in range.
func (g Genesis) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("validate genesis: %w", err)
	}

	return nil
}

// MineConfig returns the mining parameters described by the genesis.
func (g Genesis) MineConfig(evHandler func(v string, args ...any)) database.MineConfig {
	return database.MineConfig{
		Difficulty: database.Difficulty(g.Difficulty),
		MaxNonce:   g.MaxNonce,
		Workers:    int(g.MiningWorkers),
		EvHandler:  evHandler,
	}
}
