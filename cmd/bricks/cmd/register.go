package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/dehydratedfish/bricks/internal/brickyard"
	"github.com/dehydratedfish/bricks/internal/config"
)

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Add the current directory to the brickyard",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Re-register an existing name even if it points elsewhere",
			},
		},
		Action: runRegister,
	}
}

// runRegister implements spec.md §6's `register [<name>]`: add the
// current directory to the brickyard under name, defaulting to the last
// path segment of the cwd. SPEC_FULL.md §D.4 adds the --force-gated
// duplicate check on top of the unchanged core Brickyard.Add.
func runRegister(_ context.Context, cmd *cli.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	name := cmd.Args().First()
	if name == "" {
		name = filepath.Base(cwd)
	}

	if err := brickyard.ValidateName(name); err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	cfg := config.Default()
	if loaded, loadErr := config.Load(cwd); loadErr == nil {
		cfg = loaded
	}

	yard, err := loadBrickyard(cfg.BrickyardPath)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	if !cmd.Bool("force") {
		if dupErr := brickyard.CheckDuplicate(yard, name, cwd); dupErr != nil {
			return cli.Exit(dupErr.Error()+" (use --force to overwrite)", exitConfigError)
		}
	}

	yard.Add(name, "", cwd)

	if err := yard.Save(cfg.BrickyardPath, false); err != nil {
		return cli.Exit(fmt.Sprintf("failed to save brickyard: %v", err), exitConfigError)
	}

	fmt.Printf("registered %q -> %s\n", name, cwd)
	return nil
}
