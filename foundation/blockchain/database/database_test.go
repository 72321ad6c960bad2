package database_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKeyFrom = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkHexKeyTo   = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
)

func keys(t *testing.T) (database.PublicKey, database.PublicKey) {
	from, err := crypto.HexToECDSA(pkHexKeyFrom)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	to, err := crypto.HexToECDSA(pkHexKeyTo)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	return database.PublicKeyFromECDSA(from.PublicKey), database.PublicKeyFromECDSA(to.PublicKey)
}

func newTx(t *testing.T, amount float64) database.Tx {
	from, to := keys(t)

	tx, err := database.NewTx(from, to, amount)
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %s", err)
	}

	return tx
}

// =============================================================================

func Test_TxIdentity(t *testing.T) {
	t.Log("Given the need to derive transaction ids from their fields.")
	{
		t.Logf("\tTest 0:\tWhen handling a new transaction.")
		{
			tx := newTx(t, 30.0)

			if tx.Sequence != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have the sequence incremented once: got %d", failed, tx.Sequence)
			}
			t.Logf("\t%s\tTest 0:\tShould have the sequence incremented once.", success)

			if len(tx.ID) != hashing.Size*2 {
				t.Fatalf("\t%s\tTest 0:\tShould have a 32 byte hex id: got %q", failed, tx.ID)
			}
			t.Logf("\t%s\tTest 0:\tShould have a 32 byte hex id.", success)

			if err := tx.VerifyID(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to recompute the id: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to recompute the id.", success)

			again := newTx(t, 30.0)
			if again.ID != tx.ID {
				t.Logf("\t%s\tTest 0:\tgot: %s", failed, again.ID)
				t.Logf("\t%s\tTest 0:\texp: %s", failed, tx.ID)
				t.Fatalf("\t%s\tTest 0:\tShould get the same id for the same fields.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same id for the same fields.", success)

			b, err := hashing.DecodeHex(tx.ID)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the id: %s", failed, err)
			}
			if hashing.EncodeHex(b) != tx.ID {
				t.Fatalf("\t%s\tTest 0:\tShould round trip the id through hex.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould round trip the id through hex.", success)
		}

		t.Logf("\tTest 1:\tWhen finalizing a transaction a second time.")
		{
			tx := newTx(t, 30.0)
			first := tx.ID

			if err := tx.Finalize(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to finalize again: %s", failed, err)
			}

			if tx.Sequence != 2 || tx.ID == first {
				t.Fatalf("\t%s\tTest 1:\tShould get a new id and sequence 2: got %d", failed, tx.Sequence)
			}
			t.Logf("\t%s\tTest 1:\tShould get a new id and sequence 2.", success)

			if err := tx.VerifyID(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to recompute the id: %s", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to recompute the id.", success)
		}

		t.Logf("\tTest 2:\tWhen a transaction field is changed after finalization.")
		{
			tx := newTx(t, 30.0)
			tx.Amount = 3000.0

			if err := tx.VerifyID(); !errors.Is(err, database.ErrInvalidTxID) {
				t.Fatalf("\t%s\tTest 2:\tShould detect the changed amount: got %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould detect the changed amount.", success)

			var empty database.Tx
			if err := empty.VerifyID(); !errors.Is(err, database.ErrTxNotFinalized) {
				t.Fatalf("\t%s\tTest 2:\tShould reject a transaction never finalized: got %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a transaction never finalized.", success)
		}

		t.Logf("\tTest 3:\tWhen handling a negative amount.")
		{
			tx := newTx(t, -1.5)
			if err := tx.VerifyID(); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould accept any amount: %s", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould accept any amount.", success)
		}

		t.Logf("\tTest 4:\tWhen handling amounts that are not finite.")
		{
			for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
				from, to := keys(t)

				tx, err := database.NewTx(from, to, amount)
				if err != nil {
					t.Fatalf("\t%s\tTest 4:\tShould construct a transaction for %v: %s", failed, amount, err)
				}

				if err := tx.VerifyID(); err != nil {
					t.Fatalf("\t%s\tTest 4:\tShould recompute the id for %v: %s", failed, amount, err)
				}
				t.Logf("\t%s\tTest 4:\tShould identify a transaction for %v.", success, amount)
			}

			from, to := keys(t)
			nan, _ := database.NewTx(from, to, math.NaN())
			inf, _ := database.NewTx(from, to, math.Inf(1))
			if nan.ID != inf.ID {
				t.Fatalf("\t%s\tTest 4:\tShould encode every non finite amount as null.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould encode every non finite amount as null.", success)
		}
	}
}

func Test_PublicKey(t *testing.T) {
	t.Log("Given the need to encode public keys as text.")
	{
		t.Logf("\tTest 0:\tWhen handling a compressed key.")
		{
			from, _ := keys(t)

			text, err := from.MarshalText()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to marshal the key: %s", failed, err)
			}

			key, err := database.ToPublicKey(string(text))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to parse the key: %s", failed, err)
			}

			if key != from {
				t.Fatalf("\t%s\tTest 0:\tShould round trip the key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould round trip the key.", success)

			pk, err := key.ECDSA()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decompress the key: %s", failed, err)
			}

			if database.PublicKeyFromECDSA(*pk) != from {
				t.Fatalf("\t%s\tTest 0:\tShould get back the same key after decompressing.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the same key after decompressing.", success)

			if _, err := database.ToPublicKey("0x1234"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a key with the wrong length.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a key with the wrong length.", success)
		}
	}
}

func Test_Difficulty(t *testing.T) {
	t.Log("Given the need to check digests against the difficulty.")
	{
		t.Logf("\tTest 0:\tWhen handling digests with known leading bits.")
		{
			var d hashing.Digest
			d[0] = 0x0f

			if database.Difficulty(4).Prefix() != "0000" {
				t.Fatalf("\t%s\tTest 0:\tShould get a prefix of four zeros.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get a prefix of four zeros.", success)

			if !database.Difficulty(4).IsSolved(d) {
				t.Fatalf("\t%s\tTest 0:\tShould solve four leading zero bits.", failed)
			}
			if database.Difficulty(5).IsSolved(d) {
				t.Fatalf("\t%s\tTest 0:\tShould not solve five leading zero bits.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould read leading zero bits from the binary rendering.", success)

			if !database.Difficulty(0).IsSolved(d) {
				t.Fatalf("\t%s\tTest 0:\tShould solve any digest at difficulty zero.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould solve any digest at difficulty zero.", success)

			if !database.Difficulty(database.MaxDifficulty).IsSolved(hashing.Digest{}) {
				t.Fatalf("\t%s\tTest 0:\tShould solve the zero digest at max difficulty.", failed)
			}
			if database.Difficulty(database.MaxDifficulty + 1).IsSolved(hashing.Digest{}) {
				t.Fatalf("\t%s\tTest 0:\tShould never solve beyond max difficulty.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould handle the bounds of the difficulty.", success)

			if database.Difficulty(1).IsSolvedHex("zz") {
				t.Fatalf("\t%s\tTest 0:\tShould never solve a malformed hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould never solve a malformed hash.", success)
		}
	}
}

func Test_Mine(t *testing.T) {
	type table struct {
		name       string
		difficulty database.Difficulty
		workers    int
	}

	tt := []table{
		{name: "one bit", difficulty: 1, workers: 1},
		{name: "eight bits", difficulty: 8, workers: 1},
		{name: "ten bits", difficulty: 10, workers: 1},
		{name: "eight bits parallel", difficulty: 8, workers: 4},
		{name: "ten bits parallel", difficulty: 10, workers: 3},
	}

	t.Log("Given the need to seal blocks with proof of work.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen mining with difficulty %d and %d workers.", testID, tst.difficulty, tst.workers)
			{
				f := func(t *testing.T) {
					block := database.NewBlock(1, "")
					block.AddTransaction(newTx(t, 10))
					block.AddTransaction(newTx(t, 20))

					cfg := database.MineConfig{
						Difficulty: tst.difficulty,
						Workers:    tst.workers,
					}

					if err := block.Mine(context.Background(), cfg); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

					root, err := merkle.RootFromIDs(block.TxIDs())
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to build the merkle root: %s", failed, testID, err)
					}
					if block.Header.MerkleRoot != root {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, block.Header.MerkleRoot)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, root)
						t.Fatalf("\t%s\tTest %d:\tShould have the merkle root of the transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould have the merkle root of the transactions.", success, testID)

					digest := block.Header.Digest()
					if block.Hash != digest.Hex() || !tst.difficulty.IsSolved(digest) {
						t.Fatalf("\t%s\tTest %d:\tShould have a hash starting with the prefix: %s", failed, testID, digest.Binary()[:16])
					}
					t.Logf("\t%s\tTest %d:\tShould have a hash starting with the prefix.", success, testID)

					header := block.Header
					for nonce := uint64(0); nonce < block.Header.Nonce; nonce++ {
						header.Nonce = nonce
						if tst.difficulty.IsSolved(header.Digest()) {
							t.Fatalf("\t%s\tTest %d:\tShould have found the smallest nonce: %d solves before %d", failed, testID, nonce, block.Header.Nonce)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould have found the smallest nonce.", success, testID)

					if err := block.Mine(context.Background(), cfg); !errors.Is(err, database.ErrBlockSealed) {
						t.Fatalf("\t%s\tTest %d:\tShould not be able to mine a sealed block: %v", failed, testID, err)
					}
					if err := block.AddTransaction(newTx(t, 1)); !errors.Is(err, database.ErrBlockSealed) {
						t.Fatalf("\t%s\tTest %d:\tShould not be able to add to a sealed block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould reject changes to a sealed block.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_MineParallelMatchesSequential(t *testing.T) {
	t.Log("Given the need to search the nonce space in parallel.")
	{
		t.Logf("\tTest 0:\tWhen mining the same block sequentially and in parallel.")
		{
			block := database.NewBlock(7, "abc")
			block.AddTransaction(newTx(t, 5))

			seq := block.Copy()
			if err := seq.Mine(context.Background(), database.MineConfig{Difficulty: 12, Workers: 1}); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine sequentially: %s", failed, err)
			}

			for _, workers := range []int{2, 5, 8} {
				par := block.Copy()
				if err := par.Mine(context.Background(), database.MineConfig{Difficulty: 12, Workers: workers}); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to mine with %d workers: %s", failed, workers, err)
				}

				if par.Header.Nonce != seq.Header.Nonce || par.Hash != seq.Hash {
					t.Logf("\t%s\tTest 0:\tgot: %d", failed, par.Header.Nonce)
					t.Logf("\t%s\tTest 0:\texp: %d", failed, seq.Header.Nonce)
					t.Fatalf("\t%s\tTest 0:\tShould find the same nonce with %d workers.", failed, workers)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould find the same nonce regardless of workers.", success)
		}
	}
}

func Test_MinePreconditions(t *testing.T) {
	t.Log("Given the need to reject blocks that can't be mined.")
	{
		t.Logf("\tTest 0:\tWhen the block has no transactions.")
		{
			block := database.NewBlock(1, "")
			if err := block.Mine(context.Background(), database.MineConfig{Difficulty: 1}); !errors.Is(err, database.ErrNoTransactions) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the empty block: got %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the empty block.", success)
		}

		t.Logf("\tTest 1:\tWhen the nonce bound is exhausted.")
		{
			for _, workers := range []int{1, 4} {
				block := database.NewBlock(1, "")
				block.AddTransaction(newTx(t, 1))

				cfg := database.MineConfig{
					Difficulty: database.MaxDifficulty,
					MaxNonce:   100,
					Workers:    workers,
				}

				if err := block.Mine(context.Background(), cfg); !errors.Is(err, database.ErrDifficultyUnreachable) {
					t.Fatalf("\t%s\tTest 1:\tShould report the difficulty unreachable with %d workers: got %v", failed, workers, err)
				}
				if block.IsSealed() {
					t.Fatalf("\t%s\tTest 1:\tShould leave the block unsealed.", failed)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould report the difficulty unreachable.", success)
		}

		t.Logf("\tTest 2:\tWhen the search is cancelled.")
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			for _, workers := range []int{1, 4} {
				block := database.NewBlock(1, "")
				block.AddTransaction(newTx(t, 1))

				if err := block.Mine(ctx, database.MineConfig{Difficulty: 64, Workers: workers}); !errors.Is(err, context.Canceled) {
					t.Fatalf("\t%s\tTest 2:\tShould stop mining with %d workers: got %v", failed, workers, err)
				}
				if block.IsSealed() {
					t.Fatalf("\t%s\tTest 2:\tShould leave the block unsealed.", failed)
				}
			}
			t.Logf("\t%s\tTest 2:\tShould stop mining.", success)
		}

		t.Logf("\tTest 3:\tWhen the difficulty is larger than a digest.")
		{
			block := database.NewBlock(1, "")
			block.AddTransaction(newTx(t, 1))

			if err := block.Mine(context.Background(), database.MineConfig{Difficulty: database.MaxDifficulty + 1}); !errors.Is(err, database.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest 3:\tShould reject the difficulty: got %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject the difficulty.", success)
		}
	}
}
