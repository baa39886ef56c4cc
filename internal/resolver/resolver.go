// Package resolver walks an entity's declared dependencies, inlines brick
// contributions, recursively builds dependent libraries, and drives the
// compiler adapter that turns the result into build artifacts.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/dehydratedfish/bricks/internal/compiler"
	"github.com/dehydratedfish/bricks/internal/diag"
	"github.com/dehydratedfish/bricks/internal/execshell"
	"github.com/dehydratedfish/bricks/internal/model"
	"github.com/dehydratedfish/bricks/internal/platform"
)

// UnknownCompilerError is recorded when an entity names a compiler with no
// registered adapter.
type UnknownCompilerError struct {
	Entity   string
	Compiler string
}

func (e *UnknownCompilerError) Error() string {
	return fmt.Sprintf("unknown compiler %q for entity %s", e.Compiler, e.Entity)
}

// UnknownModuleError is recorded when a dependency names a module with no
// matching import.
type UnknownModuleError struct {
	Entity string
	Module string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("no module %q imported (required by %s)", e.Module, e.Entity)
}

// UnknownEntityError is recorded when a dependency names an entity absent
// from its resolved blueprint.
type UnknownEntityError struct {
	Entity     string
	Blueprint  string
	Dependency string
}

func (e *UnknownEntityError) Error() string {
	bp := e.Blueprint
	if bp == "" {
		bp = "<root>"
	}
	return fmt.Sprintf("no entity %s in blueprint %s", e.Dependency, bp)
}

// UnsupportedDependencyKindError is recorded when a dependency resolves to
// an entity kind that cannot be depended on (today: Executable).
type UnsupportedDependencyKindError struct {
	Entity     string
	Dependency string
	Kind       model.EntityKind
}

func (e *UnsupportedDependencyKindError) Error() string {
	return fmt.Sprintf("%s cannot depend on %s: %s entities are not a supported dependency kind", e.Entity, e.Dependency, e.Kind)
}

// LaunchError wraps a fatal platform-level subprocess launch failure.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not run command %q: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Context bundles the collaborators resolution needs, replacing the
// original's process-wide mutable App singleton with a value explicitly
// threaded through every call.
type Context struct {
	Compilers *compiler.Registry
	Executor  execshell.Executor
	Platform  platform.Info
	Verbose   bool

	// OnCommand, when non-nil, is called with each command line
	// immediately before it runs (the --verbose echo).
	OnCommand func(command string)
}

// Build resolves and, if necessary, builds entity within blueprint bp. It
// is idempotent: re-entry on an already-Ready or already-Error entity
// returns immediately (step 1 of spec §4.4).
func Build(ctx context.Context, rc *Context, bp *model.Blueprint, entity *model.Entity) error {
	if entity.Status == model.EntityReady || entity.Status == model.EntityError {
		return nil
	}
	entity.Status = model.EntityBuilding

	adapter, ok := rc.Compilers.Get(entity.Compiler)
	if !ok {
		err := &UnknownCompilerError{Entity: entity.Name, Compiler: entity.Compiler}
		entity.Diagnostics.Addf(diag.Error, "%s", err)
		entity.Status = model.EntityError
		return err
	}

	if err := resolveDependencies(ctx, rc, bp, entity); err != nil {
		entity.Status = model.EntityError
		return err
	}

	ext := extensionFor(rc.Platform, entity)
	intermediateName := entity.Name
	if ext != "" {
		intermediateName += "." + ext
	}
	entity.IntermediateFolder = combineIntermediatePath(bp.Path, intermediateName)
	entity.FilePath = computeFilePath(bp, entity, ext)

	if err := os.MkdirAll(entity.IntermediateFolder, 0o755); err != nil {
		entity.Diagnostics.Addf(diag.Error, "could not create intermediate folder %s: %v", entity.IntermediateFolder, err)
		entity.Status = model.EntityError
		return err
	}
	if err := os.MkdirAll(path.Dir(entity.FilePath), 0o755); err != nil {
		entity.Diagnostics.Addf(diag.Error, "could not create output folder for %s: %v", entity.FilePath, err)
		entity.Status = model.EntityError
		return err
	}

	if err := adapter.GenerateCommands(bp, entity); err != nil {
		entity.Status = model.EntityError
		return err
	}

	for _, command := range entity.BuildCommands {
		if rc.OnCommand != nil {
			rc.OnCommand(command)
		}
		output, err := rc.Executor.Run(ctx, command, bp.Path)
		if err != nil {
			launchErr := &LaunchError{Command: command, Err: err}
			entity.Diagnostics.Addf(diag.Error, "%s", launchErr)
			entity.Status = model.EntityError
			return launchErr
		}
		adapter.ProcessDiagnostics(entity, output)
	}

	if entity.HasErrors() {
		entity.Status = model.EntityError
	} else {
		entity.Status = model.EntityReady
	}
	return nil
}

func resolveDependencies(ctx context.Context, rc *Context, bp *model.Blueprint, entity *model.Entity) error {
	for _, dep := range entity.Dependencies {
		sub := bp.FindSubmodule(dep.Module)
		if sub == nil {
			err := &UnknownModuleError{Entity: entity.Name, Module: dep.Module}
			entity.Diagnostics.Addf(diag.Error, "%s", err)
			return err
		}

		target := sub.FindEntity(dep.Entity)
		if target == nil {
			err := &UnknownEntityError{Entity: entity.Name, Blueprint: sub.Name, Dependency: dep.Entity}
			entity.Diagnostics.Addf(diag.Error, "%s", err)
			return err
		}

		switch target.Kind {
		case model.EntityBrick:
			entity.MergeBrick(target)
		case model.EntityLibrary:
			if target.Status != model.EntityReady {
				if err := Build(ctx, rc, sub, target); err != nil {
					entity.Diagnostics.Addf(diag.Error, "dependency %s failed: %v", target.Name, err)
					return err
				}
				if target.Status != model.EntityReady {
					err := fmt.Errorf("dependency %s did not build successfully", target.Name)
					entity.Diagnostics.Addf(diag.Error, "%s", err)
					return err
				}
			}
			entity.MergeLibrary(target.FilePath)
			for _, lib := range target.Libraries {
				entity.MergeLibrary(lib)
			}
		case model.EntityExecutable:
			err := &UnsupportedDependencyKindError{Entity: entity.Name, Dependency: target.Name, Kind: target.Kind}
			entity.Diagnostics.Addf(diag.Error, "%s", err)
			return err
		default:
			err := &UnsupportedDependencyKindError{Entity: entity.Name, Dependency: target.Name, Kind: target.Kind}
			entity.Diagnostics.Addf(diag.Error, "%s", err)
			return err
		}
	}
	return nil
}

func extensionFor(info platform.Info, entity *model.Entity) string {
	switch entity.Kind {
	case model.EntityExecutable:
		return info.ExeExt
	case model.EntityLibrary:
		if entity.LibKind == model.LibraryShared {
			return info.SharedLibExt
		}
		return info.StaticLibExt
	default:
		return ""
	}
}

// combineEntityPath implements spec §4.3's combine_entity_path:
// bp_path/build_folder/name.extension, with empty segments omitted and
// redundant interior separators stripped; "/" is always the stored
// separator. bpPath is always absolute, and path.Join preserves that
// leading "/" while collapsing the rest, so it must never be stripped
// before joining.
func combineEntityPath(bpPath, buildFolder, name, extension string) string {
	result := path.Join(bpPath, buildFolder, name)
	if extension != "" {
		result += "." + extension
	}
	return result
}

// combineIntermediatePath implements spec §4.3's combine_intermediate_path:
// bp_path/.bricks/name.extension (name already carries its extension here,
// since callers pass "<entity>.<ext>").
func combineIntermediatePath(bpPath, name string) string {
	return path.Join(bpPath, ".bricks", name)
}

// computeFilePath applies spec §4.4 step 5: static libraries with no
// explicit build_folder default into the intermediate folder instead of
// polluting the output tree.
func computeFilePath(bp *model.Blueprint, entity *model.Entity, ext string) string {
	if entity.Kind == model.EntityLibrary && entity.LibKind == model.LibraryStatic && entity.BuildFolder == "" {
		return path.Join(entity.IntermediateFolder, entity.Name+orExtSuffix(ext))
	}
	return combineEntityPath(bp.Path, entity.BuildFolder, entity.Name, ext)
}

func orExtSuffix(ext string) string {
	if ext == "" {
		return ""
	}
	return "." + ext
}
