package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func demoCmd(log *zap.SugaredLogger) *cobra.Command {
	var genesisPath string
	var difficulty uint16

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seal a genesis block, mine a second block and validate the chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := genesis.Load(genesisPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("difficulty") {
				gen.Difficulty = difficulty
				if err := gen.Validate(); err != nil {
					return err
				}
			}

			ev := func(v string, args ...any) {
				log.Infow(fmt.Sprintf(v, args...))
			}

			return Demo(cmd.Context(), cmd.OutOrStdout(), gen, ev)
		},
	}

	cmd.Flags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	cmd.Flags().Uint16VarP(&difficulty, "difficulty", "d", 0, "Override the genesis difficulty.")

	return cmd
}

// Demo walks through the life of a small chain. It seals the genesis block,
// mines a block holding two transfers and validates the chain. It then shows
// a tampered copy of that block being refused.
func Demo(ctx context.Context, out io.Writer, gen genesis.Genesis, ev func(v string, args ...any)) error {
	alice, err := wallet.New("alice")
	if err != nil {
		return err
	}
	bob, err := wallet.New("bob")
	if err != nil {
		return err
	}

	mineCfg := gen.MineConfig(ev)
	chain := database.NewChain(mineCfg)

	seed, err := alice.Send(bob.PublicKey(), gen.SeedAmount)
	if err != nil {
		return err
	}

	genesisBlock, err := chain.Genesis(ctx, seed)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	fmt.Fprintf(out, "genesis: %s\n", genesisBlock)

	tx1, err := alice.Send(bob.PublicKey(), 10)
	if err != nil {
		return err
	}
	tx2, err := bob.Send(alice.PublicKey(), 4.5)
	if err != nil {
		return err
	}

	block := database.NewBlock(1, genesisBlock.Hash)
	for _, tx := range []database.Tx{tx1, tx2} {
		if err := block.AddTransaction(tx); err != nil {
			return err
		}
	}

	if err := block.Mine(ctx, mineCfg); err != nil {
		return fmt.Errorf("mine: %w", err)
	}
	fmt.Fprintf(out, "mined:   %s\n", block)

	if err := chain.AddBlock(block); err != nil {
		return fmt.Errorf("add block: %w", err)
	}
	fmt.Fprintf(out, "chain:   blocks[%d] valid[%t]\n", chain.Length(), chain.IsValid())

	// A block whose merkle root was swapped after sealing keeps a stale
	// hash and is refused.
	tampered := block.Copy()
	tampered.Header.Number = block.Header.Number + 1
	tampered.Header.PrevBlockHash = block.Hash
	tampered.Header.MerkleRoot = genesisBlock.Header.MerkleRoot
	err = chain.AddBlock(tampered)
	fmt.Fprintf(out, "tamper:  rejected[%t] err[%v]\n", err != nil, err)
	if err == nil {
		return fmt.Errorf("tampered block was accepted")
	}

	fmt.Fprintf(out, "chain:   blocks[%d] valid[%t]\n", chain.Length(), chain.IsValid())

	return nil
}
