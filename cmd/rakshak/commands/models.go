package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/straja-ai/rakshak/internal/estimator"
)

func NewModelsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Show which model artifacts load",
		Long: `Load the configured model directory and report every known
artifact as active or not loaded. Load failures are logged to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newOffline(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			dir := env.cfg.Models.Dir
			set := env.registry.Current()
			status := set.Status()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"dir":          dir,
					"version":      set.Version,
					"models":       status,
					"total_loaded": len(set.Loaded()),
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Directory:\t%s\n", dir)
			if set.Version != "" {
				fmt.Fprintf(w, "Version:\t%s\n", set.Version)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "ARTIFACT\tNAME\tSTATUS")
			for _, a := range estimator.Catalog {
				st := status[a.Key]
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Key, st.Name, st.Status)
			}
			fmt.Fprintf(w, "\nLoaded %d of %d\n", len(set.Loaded()), len(estimator.Catalog))
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
