package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rpggio/geodash/internal/domain/explorer"
	"github.com/rpggio/geodash/internal/domain/query"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/presenter/table"
	"github.com/spf13/cobra"
)

type queryOptions struct {
	Search   string
	Statuses []string
	From     string
	To       string
	Sort     string
	Desc     bool
	Page     int
	PageSize int
	Select   int64
}

type queryResult struct {
	DatasetSize int              `json:"dataset_size"`
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
	PageCount   int              `json:"page_count"`
	Rows        []table.Row      `json:"rows"`
	Selection   *table.RowTarget `json:"selection,omitempty"`
}

// NewQueryCommand prints one page of the filtered and sorted dataset.
func NewQueryCommand(root *RootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print a page of the filtered, sorted dataset",
		Long: `Query loads the dataset, applies the filter and sort, and prints one page.

Dates are inclusive calendar days (YYYY-MM-DD) in --tz.

Example:
  geodash query --search harbor --status Active --status Pending
  geodash query --source sqlite --path geodash.db --sort last_updated --desc
  geodash query --from 2025-01-01 --to 2025-03-31 --page 2 --page-size 25 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, loc, err := root.loadExplorer(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := applyQuery(svc, cmd, opts); err != nil {
				return err
			}

			adapter := table.NewAdapter(svc, loc, nil)
			defer adapter.Close()

			snap := svc.Snapshot()
			result := queryResult{
				DatasetSize: snap.DatasetSize,
				Total:       snap.Total,
				Page:        snap.PageState.Index,
				PageSize:    snap.PageState.Size,
				PageCount:   snap.PageCount,
				Rows:        adapter.Rows(),
			}
			if target, ok := adapter.Target(); ok {
				result.Selection = &target
			}

			out := cmd.OutOrStdout()
			if root.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printQuery(out, result)
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "case-insensitive project name substring")
	cmd.Flags().StringArrayVar(&opts.Statuses, "status", nil, "keep only this status (repeatable)")
	cmd.Flags().StringVar(&opts.From, "from", "", "earliest last-updated day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "latest last-updated day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort field ("+fieldList()+")")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "zero-based page index")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 10, "rows per page (10, 25, 50 or 100)")
	cmd.Flags().Int64Var(&opts.Select, "select", 0, "record id to select and locate")

	return cmd
}

func applyQuery(svc *explorer.Service, cmd *cobra.Command, opts *queryOptions) error {
	patch := query.FilterPatch{}
	if opts.Search != "" {
		patch.Search = &opts.Search
	}
	if len(opts.Statuses) > 0 {
		statuses := make([]record.Status, 0, len(opts.Statuses))
		for _, value := range opts.Statuses {
			s, err := record.ParseStatus(value)
			if err != nil {
				return fmt.Errorf("%w: %q", err, value)
			}
			statuses = append(statuses, s)
		}
		patch.Statuses = &statuses
	}
	for _, bound := range []struct {
		value string
		dst   **query.Date
	}{{opts.From, &patch.DateFrom}, {opts.To, &patch.DateTo}} {
		if bound.value == "" {
			continue
		}
		d, err := query.ParseDate(bound.value)
		if err != nil {
			return err
		}
		*bound.dst = &d
	}
	if err := svc.SetFilter(patch); err != nil {
		return err
	}

	if opts.Sort != "" {
		if err := svc.SetSort(record.Field(opts.Sort)); err != nil {
			return err
		}
		if opts.Desc {
			if err := svc.SetSort(record.Field(opts.Sort)); err != nil {
				return err
			}
		}
	} else if cmd.Flags().Changed("desc") {
		return fmt.Errorf("--desc requires --sort")
	}

	if err := svc.SetPageSize(opts.PageSize); err != nil {
		return err
	}
	if err := svc.SetPage(opts.Page); err != nil {
		return err
	}
	if opts.Select != 0 {
		svc.Select(opts.Select)
	}
	return nil
}

func printQuery(out io.Writer, result queryResult) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tPROJECT\tLAT\tLON\tSTATUS\tUPDATED")
	for _, row := range result.Rows {
		mark := ""
		if row.Selected {
			mark = "*"
		}
		updated := row.LastUpdated
		if updated == "" {
			updated = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			mark, row.ID, row.ProjectName, row.Latitude, row.Longitude, row.Status, updated)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "page %d of %d, %d of %d records match\n",
		result.Page+1, max(result.PageCount, 1), result.Total, result.DatasetSize)
	if sel := result.Selection; sel != nil {
		switch {
		case !sel.InView:
			fmt.Fprintf(out, "record %d is not in the view\n", sel.ID)
		case !sel.OnCurrentPage:
			fmt.Fprintf(out, "record %d is on page %d, row %d\n", sel.ID, sel.Page+1, sel.Row+1)
		}
	}
	return nil
}

func fieldList() string {
	fields := record.SortableFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}
