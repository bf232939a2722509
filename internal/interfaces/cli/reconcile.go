package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/minhaarvore/arvore/internal/application/consistency"
)

func newReconcileCmd(factory DepsFactory, opts *RootOptions) *cobra.Command {
	var distancesOnly bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run a consistency pass over the whole graph",
		Long:  "Scans every person record, repairs asymmetric parent/child and\nspouse links, removes dangling references, and recomputes root distances.",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, release, err := factory(opts)
			if err != nil {
				return err
			}
			defer release()

			out := cmd.OutOrStdout()

			if distancesOnly {
				updated, err := deps.Consistency.RecomputeDistances(cmd.Context())
				if err != nil {
					return err
				}
				if opts.JSONOutput {
					return printJSON(out, map[string]int{"updated": updated})
				}
				fmt.Fprintf(out, "Recomputed root distances: %d record(s) updated\n", updated)
				return nil
			}

			report, err := deps.Consistency.Run(cmd.Context())
			if err != nil {
				return err
			}
			if opts.JSONOutput {
				return printJSON(out, report)
			}

			fmt.Fprintf(out, "Scanned %d record(s), corrected %d\n", report.Scanned, report.Mutated)
			kinds := make([]consistency.AnomalyKind, 0, len(report.CountsByKind))
			for kind := range report.CountsByKind {
				kinds = append(kinds, kind)
			}
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
			for _, kind := range kinds {
				fmt.Fprintf(out, "  %-28s %d\n", kind, report.CountsByKind[kind])
			}
			if len(report.Failures) > 0 {
				fmt.Fprintf(out, "WARNING: %d record(s) failed to persist\n", len(report.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&distancesOnly, "distances-only", false, "only recompute distance-from-root values")
	return cmd
}
