// CLI entry point.  Subcommands operate directly against the configured
// storage backend through the shared composition root.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minhaarvore/arvore/internal/bootstrap"
	"github.com/minhaarvore/arvore/internal/config"
	"github.com/minhaarvore/arvore/internal/infrastructure/monitoring/logging"
	"github.com/minhaarvore/arvore/internal/interfaces/cli"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	root := cli.NewRootCommand(buildDeps)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildDeps wires the real dependency set for one command invocation.
func buildDeps(opts *cli.RootOptions) (*cli.Deps, func(), error) {
	path := opts.ConfigPath
	if path == "" {
		path = defaultConfigPath
	}

	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	// CLI runs are interactive; keep log noise out of command output.
	cfg.Log.OutputPaths = []string{"stderr"}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	deps := &cli.Deps{
		Consistency: app.Consistency,
		Dedup:       app.Dedup,
		Kinship:     app.Kinship,
		Subfamily:   app.Subfamily,
		Persons:     app.Persons,
		Logger:      log,
	}
	return deps, func() { app.Close(context.Background()) }, nil
}
