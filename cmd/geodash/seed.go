package main

import (
	"fmt"

	"github.com/rpggio/geodash/internal/source"
	"github.com/rpggio/geodash/internal/sqlite"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	DB    string
	JSONL string
}

// NewSeedCommand writes a generated dataset to SQLite and/or JSONL.
func NewSeedCommand(root *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a generated dataset",
		Long: `Seed generates --count records from --seed and writes them to a SQLite
database, a JSONL file, or both. An existing database table is replaced.

Example:
  geodash seed --db geodash.db
  geodash seed --count 200 --seed 7 --jsonl projects.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DB == "" && opts.JSONL == "" {
				return fmt.Errorf("nothing to write: pass --db and/or --jsonl")
			}
			records := source.NewGenerator(root.Count, root.Seed).Generate()

			if opts.DB != "" {
				db, err := sqlite.New(opts.DB)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.RunMigrations(); err != nil {
					return err
				}
				if err := sqlite.NewRecordRepository(db).ReplaceAll(cmd.Context(), records); err != nil {
					return fmt.Errorf("seed database: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), opts.DB)
			}
			if opts.JSONL != "" {
				if err := source.WriteJSONL(opts.JSONL, records); err != nil {
					return fmt.Errorf("seed jsonl: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), opts.JSONL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to write")
	cmd.Flags().StringVar(&opts.JSONL, "jsonl", "", "JSONL file to write")

	return cmd
}
