package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction for inclusion in a future block
// and signals the worker to start mining.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if err := tx.VerifyID(); err != nil {
		return fmt.Errorf("verify tx: %w", err)
	}

	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return err
	}

	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, n)
	s.metrics.TxSubmitted(n)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}

// Transfer constructs a transaction between the two keys and submits it.
func (s *State) Transfer(from database.PublicKey, to database.PublicKey, amount float64) (database.Tx, error) {
	tx, err := database.NewTx(from, to, amount)
	if err != nil {
		return database.Tx{}, err
	}

	if err := s.SubmitTransaction(tx); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}
