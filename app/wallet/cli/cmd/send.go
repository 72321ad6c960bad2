package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	url    string
	to     string
	amount float64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWallet()
		if err != nil {
			return err
		}

		toKey, err := database.ToPublicKey(to)
		if err != nil {
			return fmt.Errorf("recipient: %w", err)
		}

		return sendWithDetails(cmd.OutOrStdout(), url, w, toKey, amount)
	},
}

// sendWithDetails builds the transaction through the wallet so the amount
// rules are applied before the node is contacted.
func sendWithDetails(out io.Writer, nodeURL string, w *wallet.Wallet, toKey database.PublicKey, amount float64) error {
	tx, err := w.Send(toKey, amount)
	if err != nil {
		return err
	}

	submit := struct {
		From   database.PublicKey `json:"from"`
		To     database.PublicKey `json:"to"`
		Amount float64            `json:"amount"`
	}{
		From:   tx.From,
		To:     tx.To,
		Amount: tx.Amount,
	}

	data, err := json.Marshal(submit)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", nodeURL), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("node returned %s: %s", resp.Status, body)
	}

	fmt.Fprintln(out, string(body))
	return nil
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Public key of the recipient.")
	sendCmd.Flags().Float64VarP(&amount, "amount", "v", 0, "Amount to send.")
}
