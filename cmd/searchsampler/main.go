// Package main provides the searchsampler CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pewresearch/search-sampler/cli"
)

var (
	// Global flags
	verbose bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "searchsampler",
		Short: "Sample Google Trends data with a rolling window",
		Long: `A CLI tool for approximating the distribution of Google Trends values per
time period. The API returns noisy values and does not cache by window
length, so repeated queries over shifted windows yield independent-ish
samples for the same periods. Results are saved as CSV under
{output}/{region}/{region}-{name}.csv and optionally to SQLite.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(pullCmd())
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pullCmd() *cobra.Command {
	opts := cli.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Run a sampling job and save the results",
		Example: `  searchsampler pull --name flu_symptoms --term cough --term fever \
    --region US-DC --start 2017-01-01 --end 2017-02-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = verbose
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return cli.RunPull(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Suffix for the output file (required)")
	cmd.Flags().StringArrayVarP(&opts.Terms, "term", "t", nil, "Search term; repeat for multiple terms (required)")
	cmd.Flags().StringVarP(&opts.Region, "region", "r", "", `Region: country ("US"), subdivision(s) ("US-CA" or "US-CA,US-NY"), or a DMA code ("511")`)
	cmd.Flags().StringVar(&opts.PeriodStart, "start", "", "Start of the period, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.PeriodEnd, "end", "", "End of the period, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.PeriodLength, "period-length", opts.PeriodLength, "Timeline resolution: day, week, or month")
	cmd.Flags().IntVar(&opts.NumSamples, "samples", 0, "Samples to collect per period (default SAMPLER_NUM_SAMPLES or 5)")
	cmd.Flags().BoolVar(&opts.Append, "append", opts.Append, "Append to an existing results file instead of overwriting")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "Also record the run in a SQLite database at this path")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("term")
	cmd.MarkFlagRequired("region")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

func showCmd() *cobra.Command {
	opts := cli.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a previously saved results file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunShow(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Suffix of the output file (required)")
	cmd.Flags().StringVarP(&opts.Region, "region", "r", "", "Region the file was saved under (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("region")

	return cmd
}
