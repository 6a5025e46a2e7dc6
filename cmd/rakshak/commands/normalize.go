package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/straja-ai/rakshak/internal/textnorm"
)

func NewNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text>...",
		Short: "Print text as the vectorizers see it",
		Long: `Print text after normalization: lowercased, with URLs, emails,
phone numbers and other numbers replaced by placeholders and punctuation
removed. Use it to check parity with the corpus the vectorizers were
fitted on.`,
		Example: `  rakshak normalize "Call +91 98765 43210 or visit https://win.example now!"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), textnorm.Normalize(strings.Join(args, " ")))
			return err
		},
	}
}
