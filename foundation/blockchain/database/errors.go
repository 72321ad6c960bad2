package database

import (
	"errors"
	"fmt"
)

// Set of precondition errors for blocks and the chain.
var (
	ErrBlockSealed            = errors.New("block has already been sealed")
	ErrNoTransactions         = errors.New("block has no transactions to mine")
	ErrDifficultyUnreachable  = errors.New("difficulty unreachable within the nonce bound")
	ErrInvalidDifficulty      = errors.New("difficulty exceeds the number of bits in a digest")
	ErrChainNotEmpty          = errors.New("chain already has a genesis block")
	ErrEmptyChain             = errors.New("chain has no genesis block")
	ErrPrevHashMismatch       = errors.New("previous hash does not match the parent block hash")
	ErrHashMismatch           = errors.New("block hash does not match the recomputed hash")
	ErrGenesisPrevHash        = errors.New("genesis block has a previous hash")
	ErrDifficultyNotSatisfied = errors.New("block hash does not satisfy the difficulty")
)

// =============================================================================

// IntegrityError is returned when a block violates the linkage or hash
// rules of the chain. The block number identifies the offending block.
type IntegrityError struct {
	Number uint64
	Err    error
	Got    string
	Exp    string
}

// Error implements the error interface.
func (ie *IntegrityError) Error() string {
	return fmt.Sprintf("blk[%d]: %s, got %s, exp %s", ie.Number, ie.Err, ie.Got, ie.Exp)
}

// Unwrap provides support for errors.Is against the kind of violation.
func (ie *IntegrityError) Unwrap() error {
	return ie.Err
}

// IsIntegrityError checks if an error of type IntegrityError exists.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// GetIntegrityError returns a copy of the IntegrityError pointer.
func GetIntegrityError(err error) *IntegrityError {
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		return nil
	}
	return ie
}
