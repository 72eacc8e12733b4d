package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusesCommand lists the status filter choices of the dataset.
func NewStatusesCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List the status filter choices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := root.loadExplorer(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			statuses := svc.Statuses()

			out := cmd.OutOrStdout()
			if root.JSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}
			for _, s := range statuses {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}
