package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDuplicatesCmd(factory DepsFactory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Scan the graph for likely duplicate person records",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, release, err := factory(opts)
			if err != nil {
				return err
			}
			defer release()

			candidates, err := deps.Dedup.Scan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return printJSON(out, candidates)
			}
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No duplicate candidates above the threshold")
				return nil
			}
			for _, c := range candidates {
				fmt.Fprintf(out, "%3d  %s <> %s  (%s)\n",
					c.Score, c.PersonAID, c.PersonBID, strings.Join(c.Reasons, ", "))
			}
			return nil
		},
	}
}

func newMergeCmd(factory DepsFactory, opts *RootOptions) *cobra.Command {
	var keepID, discardID string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a confirmed duplicate pair into one record",
		Long:  "Folds the discarded record into the kept one, rewrites every\nreference across the graph, and deletes the discarded record.",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, release, err := factory(opts)
			if err != nil {
				return err
			}
			defer release()

			result, err := deps.Dedup.Merge(cmd.Context(), keepID, discardID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Merged %s into %s: %d reference(s) rewritten, %d record(s) deleted\n",
				discardID, result.Merged.ID, len(result.Updates), len(result.Deletions))
			return nil
		},
	}

	cmd.Flags().StringVar(&keepID, "keep", "", "id of the record that survives (required)")
	cmd.Flags().StringVar(&discardID, "discard", "", "id of the record to fold in (required)")
	_ = cmd.MarkFlagRequired("keep")
	_ = cmd.MarkFlagRequired("discard")
	return cmd
}
