package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

const defaultBenchMessage = "Dear customer, your bank account will be blocked today. Verify your KYC at http://bit.ly/kyc-update and share the OTP."

func NewBenchCommand() *cobra.Command {
	var (
		n       int
		kind    string
		message string
		url     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure offline scan latency",
		Long: `Score the same input n times against the local model directory and
print average, p50 and p95 latency.`,
		Example: `  rakshak bench -n 500
  rakshak bench --kind url --url http://192.168.1.1/login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newOffline(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			var scan func() error
			switch kind {
			case "message":
				scan = func() error {
					_, err := env.svc.DetectMessage(cmd.Context(), message)
					return err
				}
			case "url":
				scan = func() error {
					_, err := env.svc.ScanURL(cmd.Context(), url)
					return err
				}
			default:
				return fmt.Errorf("unknown kind %q (want message or url)", kind)
			}

			for i := 0; i < 5; i++ {
				if err := scan(); err != nil {
					return fmt.Errorf("warmup: %w", err)
				}
			}

			durations, err := benchmark(n, scan)
			if err != nil {
				return err
			}
			avg, p50, p95 := latencySummary(durations)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "bench: kind=%s n=%d avg_ms=%.2f p50_ms=%.2f p95_ms=%.2f models=%s\n",
				kind, len(durations), avg, p50, p95, env.cfg.Models.Dir)
			return err
		},
	}

	cmd.Flags().IntVarP(&n, "iterations", "n", 200, "number of iterations")
	cmd.Flags().StringVar(&kind, "kind", "message", "input kind: message or url")
	cmd.Flags().StringVar(&message, "message", defaultBenchMessage, "message text for --kind message")
	cmd.Flags().StringVar(&url, "url", "http://secure-login.example.tk/verify", "URL for --kind url")
	return cmd
}

func benchmark(n int, scan func() error) ([]time.Duration, error) {
	if n <= 0 {
		n = 1
	}
	durations := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		if err := scan(); err != nil {
			return nil, err
		}
		durations = append(durations, time.Since(start))
	}
	return durations, nil
}

// latencySummary returns avg, p50 and p95 in milliseconds. durations is
// sorted in place.
func latencySummary(durations []time.Duration) (avg, p50, p95 float64) {
	if len(durations) == 0 {
		return 0, 0, 0
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }

	avg = ms(total) / float64(len(durations))
	p50 = ms(durations[len(durations)/2])
	p95 = ms(durations[int(float64(len(durations))*0.95)])
	return avg, p50, p95
}
