// Package driver is the top-level build orchestrator: parse the root
// blueprint, process its imports, walk executables matching the active
// group, and drive the resolver over each one.
package driver

import (
	"context"
	"fmt"

	"github.com/dehydratedfish/bricks/internal/brickyard"
	"github.com/dehydratedfish/bricks/internal/compiler"
	"github.com/dehydratedfish/bricks/internal/diag"
	"github.com/dehydratedfish/bricks/internal/execshell"
	"github.com/dehydratedfish/bricks/internal/model"
	"github.com/dehydratedfish/bricks/internal/parser"
	"github.com/dehydratedfish/bricks/internal/platform"
	"github.com/dehydratedfish/bricks/internal/resolver"
)

// Level is a log level for the Channel interface.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Channel receives progress and diagnostic output from a build run.
// Implementations map to environment-specific UX (CLI stderr, etc.).
type Channel interface {
	Log(level Level, msg string)
	Progress(title string, pct int) // -1 = indeterminate
	Warn(msg string)
}

type noopChannel struct{}

func (noopChannel) Log(Level, string)    {}
func (noopChannel) Progress(string, int) {}
func (noopChannel) Warn(string)          {}

// Input configures a single build run.
type Input struct {
	// RootFile is the path to the root blueprint file.
	RootFile string

	BuildType string
	Platform  string
	Group     string

	// Cwd is the working directory local import probing is relative to
	// (spec §4.2); it is independent of RootFile's own directory.
	Cwd string

	Brickyard *brickyard.Yard
	Compilers *compiler.Registry
	Executor  execshell.Executor

	Verbose bool
	Channel Channel
}

// Result is the outcome of a build run.
type Result struct {
	Root        *model.Blueprint
	HasErrors   bool
	Diagnostics *diag.Sink
}

// Run executes the full pipeline described in spec §4.4's "Top-level
// driver": parse, process imports, build matching executables in
// declared order, aggregate diagnostics.
func Run(ctx context.Context, input Input) (*Result, error) {
	channel := input.Channel
	if channel == nil {
		channel = noopChannel{}
	}

	info, err := platform.Lookup(input.Platform)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}

	channel.Progress("parsing "+input.RootFile, -1)
	pctx := parser.NewContext(input.BuildType, input.Platform, input.Cwd, input.Brickyard)
	root := parser.ParseFile(pctx, input.RootFile)

	rc := &resolver.Context{
		Compilers: input.Compilers,
		Executor:  input.Executor,
		Platform:  info,
		Verbose:   input.Verbose,
	}
	if input.Verbose {
		rc.OnCommand = func(command string) { channel.Log(LevelInfo, command) }
	}

	hasErrors := root.Status == model.BlueprintError

	if root.Status != model.BlueprintError {
		targets := matchingExecutables(root, input.Group)
		for i, e := range targets {
			channel.Progress(e.Name, i*100/max(len(targets), 1))
			if err := resolver.Build(ctx, rc, root, e); err != nil {
				channel.Warn(fmt.Sprintf("%s: %v", e.Name, err))
			}
			if e.HasErrors() {
				hasErrors = true
			}
		}
	}

	diagnostics := diag.NewSink()
	collectDiagnostics(root, diagnostics)
	if diagnostics.HasErrors() {
		hasErrors = true
	}

	if hasErrors {
		channel.Log(LevelError, "Build aborted.")
	} else {
		channel.Log(LevelInfo, "Build finished.")
	}

	return &Result{Root: root, HasErrors: hasErrors, Diagnostics: diagnostics}, nil
}

// matchingExecutables returns root's direct Executable entities, in
// declared order, whose groups match the active group (spec §4.4).
func matchingExecutables(root *model.Blueprint, group string) []*model.Entity {
	var out []*model.Entity
	for _, e := range root.Entities {
		if e.Kind != model.EntityExecutable {
			continue
		}
		if e.MatchesGroup(group) {
			out = append(out, e)
		}
	}
	return out
}

// collectDiagnostics walks the whole blueprint tree (the root, its
// entities, and every import, recursively) and merges every diagnostic
// sink into one ordered accumulator for final reporting.
func collectDiagnostics(bp *model.Blueprint, into *diag.Sink) {
	into.Merge(bp.Diagnostics)
	for _, e := range bp.Entities {
		into.Merge(e.Diagnostics)
	}
	for _, imp := range bp.Imports {
		collectDiagnostics(imp, into)
	}
}
