// Command execution for CLI commands.
//
// Information Hiding:
// - Client/sampler/storage assembly hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/pewresearch/search-sampler/config"
	"github.com/pewresearch/search-sampler/internal/dates"
	"github.com/pewresearch/search-sampler/model"
	"github.com/pewresearch/search-sampler/sampler"
	"github.com/pewresearch/search-sampler/storage"
	"github.com/pewresearch/search-sampler/trends"
)

// Options holds CLI execution options.
type Options struct {
	Name         string
	Terms        []string
	Region       string
	PeriodStart  string
	PeriodEnd    string
	PeriodLength string
	NumSamples   int
	Append       bool
	DBPath       string
	Verbose      bool
}

// DefaultOptions returns default CLI options. NumSamples is left at zero
// so the SAMPLER_NUM_SAMPLES setting applies unless --samples is passed.
func DefaultOptions() Options {
	return Options{
		PeriodLength: string(model.PeriodWeek),
		Append:       true,
	}
}

// resolveNumSamples applies the precedence: explicit flag, then settings
// (environment or default).
func resolveNumSamples(opts Options, settings config.Settings) int {
	if opts.NumSamples > 0 {
		return opts.NumSamples
	}
	return settings.Sampler.NumSamples
}

// newLogger builds the CLI's console logger.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// buildSpec translates CLI options into a validated SearchSpec.
func buildSpec(opts Options) (model.SearchSpec, error) {
	region, err := model.ParseRegion(opts.Region)
	if err != nil {
		return model.SearchSpec{}, err
	}
	start, err := dates.ParseISO(opts.PeriodStart)
	if err != nil {
		return model.SearchSpec{}, &model.ConfigError{Field: "period_start", Reason: err.Error()}
	}
	end, err := dates.ParseISO(opts.PeriodEnd)
	if err != nil {
		return model.SearchSpec{}, &model.ConfigError{Field: "period_end", Reason: err.Error()}
	}
	spec := model.SearchSpec{
		Terms:        opts.Terms,
		Region:       region,
		PeriodStart:  start,
		PeriodEnd:    end,
		PeriodLength: model.PeriodLength(opts.PeriodLength),
	}
	if err := spec.Validate(); err != nil {
		return model.SearchSpec{}, err
	}
	return spec, nil
}

// RunPull executes one sampling run and persists the results.
func RunPull(ctx context.Context, opts Options) error {
	log := newLogger(opts.Verbose)

	settings, err := config.New()
	if err != nil {
		return err
	}
	apiKey, err := config.APIKey()
	if err != nil {
		return err
	}

	spec, err := buildSpec(opts)
	if err != nil {
		return err
	}

	client, err := trends.NewRESTClient(apiKey)
	if err != nil {
		return err
	}
	client.WithServer(settings.API.Server).
		WithVersion(settings.API.Version).
		WithLogger(log.With().Str("component", "trends").Logger())

	s, err := sampler.New(client, spec)
	if err != nil {
		return err
	}
	s.WithRetryPolicy(settings.RetryPolicy()).
		WithLogger(log.With().Str("component", "sampler").Logger())

	numSamples := resolveNumSamples(opts, settings)

	started := time.Now()
	rows, err := s.Pull(ctx, numSamples)
	if err != nil {
		return fmt.Errorf("sampling run failed: %w", err)
	}
	log.Info().Int("rows", len(rows)).Dur("elapsed", time.Since(started)).Msg("sampling run complete")

	store, err := storage.NewCSVStore(settings.Sampler.OutputPath)
	if err != nil {
		return err
	}
	if err := store.WithLogger(log.With().Str("component", "storage").Logger()).
		Save(spec.Region, opts.Name, rows, opts.Append); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	fmt.Printf("Saved %d rows to %s\n", len(rows), store.FilePath(spec.Region, opts.Name))

	if opts.DBPath != "" {
		db, err := storage.OpenSqlite(opts.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err := db.SaveRun(ctx, spec.Region, opts.Name, rows)
		if err != nil {
			return fmt.Errorf("saving run to database: %w", err)
		}
		fmt.Printf("Saved run %s to %s\n", runID, opts.DBPath)
	}
	return nil
}

// RunShow prints a previously saved results file.
func RunShow(opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	region, err := model.ParseRegion(opts.Region)
	if err != nil {
		return err
	}

	store, err := storage.NewCSVStore(settings.Sampler.OutputPath)
	if err != nil {
		return err
	}
	rows, err := store.Load(region, opts.Name)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no saved file at %s", store.FilePath(region, opts.Name))
		}
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TERM\tTIMESTAMP\tSAMPLE\tVALUE\tQUERY TIME")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\n",
			row.Term,
			dates.FormatISO(row.Timestamp),
			row.Sample,
			row.Value,
			row.QueryTime.Format(time.RFC3339),
		)
	}
	return w.Flush()
}
