package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/spf13/cobra"
)

func merkleCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "merkle [ids...]",
		Short: "Print the merkle root of a list of hex transaction ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()

				if ids, err = ReadIDs(f); err != nil {
					return err
				}
			}

			if len(ids) == 0 {
				return errors.New("no ids provided")
			}

			root, err := merkle.RootFromIDs(ids)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File holding one hex id per line.")

	return cmd
}

// ReadIDs returns the non blank lines of the reader.
func ReadIDs(r io.Reader) ([]string, error) {
	var ids []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
