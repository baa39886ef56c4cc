package cmd

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dehydratedfish/bricks/internal/version"
)

// NewApp creates the CLI application.
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "bricks",
		Usage:   "A build orchestrator for native executables and libraries",
		Version: version.Version(),
		Description: `bricks builds native executables and libraries described by
blueprint files: a small declarative DSL for sources, include paths,
dependencies between entities, and per-platform/per-build-type overrides.

Examples:
  bricks build
  bricks build --build-type release --platform win32
  bricks register mylib
  bricks clean`,
		Commands: []*cli.Command{
			buildCommand(),
			registerCommand(),
			cleanCommand(),
			versionCommand(),
		},
		Action: buildAction,
	}
}

// Execute runs the CLI application.
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}
