package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/dehydratedfish/bricks/internal/brickyard"
	"github.com/dehydratedfish/bricks/internal/compiler"
	_ "github.com/dehydratedfish/bricks/internal/compiler/msvc"
	"github.com/dehydratedfish/bricks/internal/config"
	"github.com/dehydratedfish/bricks/internal/diag"
	"github.com/dehydratedfish/bricks/internal/driver"
	"github.com/dehydratedfish/bricks/internal/execshell"
	"github.com/dehydratedfish/bricks/internal/platform"
	"github.com/dehydratedfish/bricks/internal/version"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Build the blueprint at <path> (default command)",
		ArgsUsage: "[path]",
		Flags:     buildFlags(),
		Action:    buildAction,
	}
}

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "build-type",
			Usage: "Active build type used to evaluate field predicates",
		},
		&cli.StringFlag{
			Name:  "group",
			Usage: "Only build executables tagged with this group",
		},
		&cli.StringFlag{
			Name:  "platform",
			Usage: fmt.Sprintf("Target platform (%v)", platform.Names()),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Print every command before executing it",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Diagnostic output format: text, json, sarif",
			Value: "text",
		},
		&cli.BoolFlag{
			Name:  "color",
			Usage: "Force colored text output on or off",
		},
	}
}

// buildAction is shared by `bricks build` and the app's default action.
func buildAction(ctx context.Context, cmd *cli.Command) error {
	target := "."
	if cmd.Args().Len() > 0 {
		target = cmd.Args().First()
	}

	rootFile, cwd, err := resolveRootFile(target)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load config: %v", err), exitConfigError)
	}
	applyBuildFlagOverrides(cmd, cfg)

	yard, err := loadBrickyard(cfg.BrickyardPath)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	channel := &logrusChannel{logger: logger}

	result, err := driver.Run(ctx, driver.Input{
		RootFile:  rootFile,
		BuildType: cfg.BuildType,
		Platform:  cfg.Platform,
		Group:     cfg.Group,
		Cwd:       cwd,
		Brickyard: yard,
		Compilers: compiler.DefaultRegistry(),
		Executor:  execshell.NewShell(),
		Verbose:   cfg.Verbose,
		Channel:   channel,
	})
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	if err := writeDiagnostics(cmd, result.Diagnostics.Entries()); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write report: %v", err), exitConfigError)
	}

	if result.HasErrors {
		return cli.Exit("", exitViolations)
	}
	return nil
}

// resolveRootFile turns a CLI path argument into a root blueprint file and
// the working directory local import probing (spec §4.2) is relative to.
func resolveRootFile(target string) (rootFile, cwd string, err error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", target, err)
	}
	if info.IsDir() {
		return target + string(os.PathSeparator) + "blueprint", target, nil
	}
	return target, ".", nil
}

func applyBuildFlagOverrides(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("build-type") {
		cfg.BuildType = cmd.String("build-type")
	}
	if cmd.IsSet("group") {
		cfg.Group = cmd.String("group")
	}
	if cmd.IsSet("platform") {
		cfg.Platform = cmd.String("platform")
	}
	if cmd.IsSet("verbose") {
		cfg.Verbose = cmd.Bool("verbose")
	}
}

func loadBrickyard(path string) (*brickyard.Yard, error) {
	if path == "" {
		return brickyard.New(), nil
	}
	yard, err := brickyard.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return brickyard.New(), nil
		}
		return nil, fmt.Errorf("failed to load brickyard %s: %w", path, err)
	}
	return yard, nil
}

func writeDiagnostics(cmd *cli.Command, entries []diag.Diagnostic) error {
	format := cmd.String("format")
	w := os.Stdout

	switch format {
	case "", "text":
		color := diag.AutoColor(w)
		if cmd.IsSet("color") {
			color = cmd.Bool("color")
		}
		return diag.WriteText(w, entries, color)
	case "sarif":
		return diag.WriteSARIF(w, entries, version.Version())
	case "json":
		return writeJSONDiagnostics(w, entries)
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
}

// logrusChannel implements driver.Channel on top of logrus, the way the
// teacher's CLI wires its own Channel-shaped logging collaborator.
type logrusChannel struct {
	logger *logrus.Logger
}

func (c *logrusChannel) Log(level driver.Level, msg string) {
	switch level {
	case driver.LevelDebug:
		c.logger.Debug(msg)
	case driver.LevelWarn:
		c.logger.Warn(msg)
	case driver.LevelError:
		c.logger.Error(msg)
	default:
		c.logger.Info(msg)
	}
}

func (c *logrusChannel) Progress(title string, pct int) {
	if pct < 0 {
		c.logger.Debugf("%s...", title)
		return
	}
	c.logger.Debugf("%s (%d%%)", title, pct)
}

func (c *logrusChannel) Warn(msg string) {
	c.logger.Warn(msg)
}
