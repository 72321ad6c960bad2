// Package commands contains the functionality for the set of commands
// currently supported by the admin tooling.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Execute builds the command tree and runs the command named on the
// command line.
func Execute(build string, log *zap.SugaredLogger) error {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Administrative tasks for the ledger",
		Version:       build,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(demoCmd(log))
	root.AddCommand(merkleCmd())

	return root.ExecuteContext(context.Background())
}
