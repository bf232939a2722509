package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/pkg/errors"
)

func newKinshipCmd(factory DepsFactory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinship <from-id> <to-id>",
		Short: "Resolve the relationship between two persons",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, release, err := factory(opts)
			if err != nil {
				return err
			}
			defer release()

			snapshot, err := deps.Persons.GetAll(cmd.Context())
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeSnapshotUnavailable, "failed to load graph snapshot")
			}

			label, err := deps.Kinship.Resolve(args[0], args[1], person.BuildIndex(snapshot))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return printJSON(out, map[string]string{
					"from":  args[0],
					"to":    args[1],
					"label": string(label),
				})
			}
			fmt.Fprintf(out, "%s is %s of %s\n", args[1], label, args[0])
			return nil
		},
	}
}
