package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dehydratedfish/bricks/internal/discovery"
)

// cleanCommand implements SPEC_FULL.md §D.1's supplemental `clean`
// subcommand: remove every `.bricks` intermediate directory under a
// blueprint tree without inspecting its contents.
func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:      "clean",
		Usage:     "Remove .bricks intermediate folders under a blueprint tree",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "List the folders that would be removed without deleting them",
			},
		},
		Action: runClean,
	}
}

func runClean(_ context.Context, cmd *cli.Command) error {
	root := "."
	if cmd.Args().Len() > 0 {
		root = cmd.Args().First()
	}

	dirs, err := discovery.IntermediateDirs(root)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to scan %s: %v", root, err), exitConfigError)
	}

	if len(dirs) == 0 {
		fmt.Println("nothing to clean")
		return nil
	}

	dryRun := cmd.Bool("dry-run")
	for _, dir := range dirs {
		if dryRun {
			fmt.Println(dir)
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return cli.Exit(fmt.Sprintf("failed to remove %s: %v", dir, err), exitConfigError)
		}
		fmt.Println("removed", dir)
	}

	return nil
}
