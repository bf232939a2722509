// Package cli defines the arvore command tree.  Commands receive their
// dependencies through a factory so main wires real stores and tests wire
// in-memory ones.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/minhaarvore/arvore/internal/application/consistency"
	"github.com/minhaarvore/arvore/internal/application/dedup"
	"github.com/minhaarvore/arvore/internal/application/kinship"
	appsubfamily "github.com/minhaarvore/arvore/internal/application/subfamily"
	"github.com/minhaarvore/arvore/internal/domain/person"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	JSONOutput bool
}

// Deps carries the initialized services the subcommands operate on.
type Deps struct {
	Consistency *consistency.Service
	Dedup       *dedup.Service
	Kinship     *kinship.Resolver
	Subfamily   *appsubfamily.Service
	Persons     person.GraphStore
	Logger      logging.Logger
}

// DepsFactory builds the dependency set for one command invocation.  The
// returned func releases any connections it opened.
type DepsFactory func(opts *RootOptions) (*Deps, func(), error)

// NewRootCommand creates the root command and mounts every subcommand.
func NewRootCommand(factory DepsFactory) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "arvore",
		Short:   "Genealogical graph consistency and deduplication engine",
		Long:    "arvore maintains a collaboratively edited family-tree graph:\nit reconciles bidirectional links, scores duplicate person records,\nmerges confirmed pairs, and answers kinship queries.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./arvore.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVar(&opts.JSONOutput, "json", false, "emit machine-readable JSON output")

	cmd.AddCommand(
		newReconcileCmd(factory, opts),
		newDuplicatesCmd(factory, opts),
		newMergeCmd(factory, opts),
		newKinshipCmd(factory, opts),
		newSubfamiliesCmd(factory, opts),
	)

	return cmd
}

// printJSON writes v as indented JSON to out.
func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
