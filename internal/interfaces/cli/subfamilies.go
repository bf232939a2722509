package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minhaarvore/arvore/pkg/errors"
)

func newSubfamiliesCmd(factory DepsFactory, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subfamilies",
		Short: "Suggest and confirm nuclear-family groupings",
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "List parent couples not yet grouped as a subfamily",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, release, err := factory(opts)
			if err != nil {
				return err
			}
			defer release()

			suggestions, err := deps.Subfamily.Suggest(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return printJSON(out, suggestions)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No new subfamilies to suggest")
				return nil
			}
			for _, sg := range suggestions {
				fmt.Fprintf(out, "%-24s %s  [%s]\n", sg.Key, sg.Name, strings.Join(sg.MemberIDs, ", "))
			}
			return nil
		},
	}

	var acceptKey string
	acceptCmd := &cobra.Command{
		Use:   "accept",
		Short: "Confirm a suggested subfamily by its couple key",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, release, err := factory(opts)
			if err != nil {
				return err
			}
			defer release()

			suggestions, err := deps.Subfamily.Suggest(cmd.Context())
			if err != nil {
				return err
			}
			for _, sg := range suggestions {
				if sg.Key != acceptKey {
					continue
				}
				created, err := deps.Subfamily.Accept(cmd.Context(), sg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.JSONOutput {
					return printJSON(out, created)
				}
				fmt.Fprintf(out, "Created subfamily %s (%s) with %d member(s)\n",
					created.Name, created.ID, len(created.MemberIDs))
				return nil
			}
			return errors.NotFound("no suggestion with couple key " + acceptKey)
		},
	}
	acceptCmd.Flags().StringVar(&acceptKey, "key", "", "couple key of the suggestion to accept (required)")
	_ = acceptCmd.MarkFlagRequired("key")

	cmd.AddCommand(suggestCmd, acceptCmd)
	return cmd
}
