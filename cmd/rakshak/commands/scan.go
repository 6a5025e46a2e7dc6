package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/straja-ai/rakshak/internal/detect"
)

func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Score one input offline",
		Long: `Score one message, URL or job posting against the local model
directory and print the outcome as JSON. No server is needed.`,
	}

	cmd.AddCommand(newScanMessageCommand(), newScanURLCommand(), newScanJobCommand())
	return cmd
}

func newScanMessageCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "message <text>...",
		Short:   "Score a text message",
		Example: `  rakshak scan message "Your KYC expires today, verify your account at bit.ly/kyc"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newOffline(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			out, err := env.svc.DetectMessage(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newScanURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "url <url>",
		Short:   "Score a URL",
		Example: `  rakshak scan url http://192.168.1.1/secure-login`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newOffline(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			out, err := env.svc.ScanURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newScanJobCommand() *cobra.Command {
	var job detect.JobPosting

	cmd := &cobra.Command{
		Use:   "job",
		Short: "Score a job posting",
		Example: `  rakshak scan job --title "Data entry" \
    --description "Earn 5000 per day from home, no experience needed" \
    --benefits "Registration fee refundable"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newOffline(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			out, err := env.svc.DetectJob(cmd.Context(), job)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&job.Title, "title", "", "job title")
	cmd.Flags().StringVar(&job.CompanyProfile, "company-profile", "", "company profile")
	cmd.Flags().StringVar(&job.Description, "description", "", "job description")
	cmd.Flags().StringVar(&job.Requirements, "requirements", "", "requirements")
	cmd.Flags().StringVar(&job.Benefits, "benefits", "", "benefits")
	return cmd
}
