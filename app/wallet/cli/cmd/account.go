package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the public key and address of the wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWallet()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "key:    ", w.PublicKey())
		fmt.Fprintln(cmd.OutOrStdout(), "address:", w.Address())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
