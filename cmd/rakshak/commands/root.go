// Package commands implements the rakshak command line.
package commands

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "rakshak.yaml"

// NewRootCommand builds the rakshak command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rakshak",
		Short: "Scam detection for messages, URLs and job postings",
		Long: `rakshak scores text messages, URLs and job postings for fraud.

It serves the detection API over HTTP and can score single inputs
offline against the same model directory.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", defaultConfigPath, "path to the rakshak config file")

	root.AddCommand(
		NewServeCommand(),
		NewScanCommand(),
		NewNormalizeCommand(),
		NewModelsCommand(),
		NewBenchCommand(),
		NewReceiveCommand(),
	)
	return root
}
