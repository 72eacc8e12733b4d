package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/rpggio/geodash/internal/domain/explorer"
	"github.com/rpggio/geodash/internal/source"
	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	Verbose  bool
	JSON     bool
	Source   string
	Path     string
	Count    int
	Seed     uint64
	Location string
}

// NewRootCommand creates the geodash command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "geodash",
		Short:         "Explore a dataset of geolocated projects",
		Long:          "geodash loads a project dataset and answers table queries against it the same way the server does.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			kinds := []string{source.KindGenerated, source.KindSQLite, source.KindJSONL}
			if !slices.Contains(kinds, opts.Source) {
				return fmt.Errorf("invalid source %q: must be one of %v", opts.Source, kinds)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log engine activity to stderr")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print JSON instead of a table")
	cmd.PersistentFlags().StringVar(&opts.Source, "source", source.KindGenerated, "dataset source (generated|sqlite|jsonl)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "database or JSONL file for the sqlite and jsonl sources")
	cmd.PersistentFlags().IntVar(&opts.Count, "count", 5000, "number of generated records")
	cmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", 1, "generator seed")
	cmd.PersistentFlags().StringVar(&opts.Location, "tz", "Local", "time zone for dates and timestamps")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewStatusesCommand(opts))

	return cmd
}

func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadExplorer opens the configured source and loads it into a new explorer.
func (o *RootOptions) loadExplorer(ctx context.Context, stderr io.Writer) (*explorer.Service, *time.Location, error) {
	loc, err := time.LoadLocation(o.Location)
	if err != nil {
		return nil, nil, fmt.Errorf("load time zone %q: %w", o.Location, err)
	}

	provider, closeFn, err := source.Open(ctx, source.Options{
		Kind:  o.Source,
		Path:  o.Path,
		Count: o.Count,
		Seed:  o.Seed,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = closeFn() }()

	svc := explorer.NewService(
		explorer.WithLogger(o.logger(stderr)),
		explorer.WithLocation(loc),
	)
	if err := svc.Load(ctx, provider); err != nil {
		return nil, nil, err
	}
	return svc, loc, nil
}
