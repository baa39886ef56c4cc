// Package model is the in-memory representation of a parsed blueprint
// tree: blueprints, their build entities, and cross-entity dependencies.
package model

import "github.com/dehydratedfish/bricks/internal/diag"

// Dependency is a lookup key, never a pointer into the owned tree:
// resolution happens by name against the consuming entity's blueprint each
// time it is needed, so a stale or cyclic reference surfaces as a named
// resolution error rather than a dangling pointer.
type Dependency struct {
	// Module is empty when the dependency lives in the same blueprint as
	// the entity declaring it.
	Module string
	Entity string
}

// EntityKind distinguishes the three things a blueprint can declare.
type EntityKind int

const (
	EntityNone EntityKind = iota
	EntityBrick
	EntityExecutable
	EntityLibrary
)

func (k EntityKind) String() string {
	switch k {
	case EntityBrick:
		return "brick"
	case EntityExecutable:
		return "executable"
	case EntityLibrary:
		return "library"
	default:
		return "none"
	}
}

// LibraryKind refines EntityLibrary. Only Static is implemented by any
// compiler adapter today; the parser never produces Shared (the DSL has
// no field selecting it), and the MSVC adapter rejects it at build time.
type LibraryKind int

const (
	LibraryNone LibraryKind = iota
	LibraryStatic
	LibraryShared
)

// EntityStatus is the lifecycle of a single entity's build.
type EntityStatus int

const (
	EntityUnbuilt EntityStatus = iota
	EntityBuilding
	EntityReady
	EntityError
)

// Entity is a single named build unit declared inside a blueprint.
type Entity struct {
	Name    string
	Kind    EntityKind
	LibKind LibraryKind
	Status  EntityStatus

	Compiler string
	Linker   string

	// BuildFolder is the output directory, relative to the owning
	// blueprint's path; empty means "use the default computed location".
	BuildFolder string

	// IntermediateFolder is the hidden .bricks/<name>.<ext> directory
	// used for object files, set during resolution.
	IntermediateFolder string

	// FilePath is the absolute path of the final build artifact, set
	// during resolution before the build commands run.
	FilePath string

	// Groups tags this entity for --group selection; Executable entities
	// with no groups are always selected when no --group is active.
	Groups []string

	IncludeFolders []string
	Symbols        []string
	Sources        []string
	Libraries      []string

	Dependencies []Dependency

	// BuildCommands holds the materialized command lines in execution
	// order, filled in by a compiler adapter's GenerateCommands.
	BuildCommands []string

	Diagnostics *diag.Sink
}

// NewEntity returns an Entity ready for field population, with compiler and
// linker defaulted from the owning blueprint per the inheritance rule
// (library entities do not inherit BuildFolder).
func NewEntity(name string, kind EntityKind, bp *Blueprint) *Entity {
	e := &Entity{
		Name:        name,
		Kind:        kind,
		Status:      EntityUnbuilt,
		Compiler:    bp.Compiler,
		Linker:      bp.Linker,
		Diagnostics: diag.NewSink(),
	}
	if kind != EntityLibrary {
		e.BuildFolder = bp.BuildFolder
	}
	return e
}

// HasErrors reports whether this entity recorded any Error diagnostic.
func (e *Entity) HasErrors() bool {
	return e.Diagnostics.HasErrors()
}

// appendUnique appends value to list unless it is already present,
// preserving declared order. This is the merge-time duplicate suppression
// every ordered entity field relies on (include folders, sources, symbols,
// libraries).
func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// MergeInclude appends value to IncludeFolders if not already present.
func (e *Entity) MergeInclude(value string) {
	e.IncludeFolders = appendUnique(e.IncludeFolders, value)
}

// MergeSymbol appends value to Symbols if not already present.
func (e *Entity) MergeSymbol(value string) {
	e.Symbols = appendUnique(e.Symbols, value)
}

// MergeSource appends value to Sources if not already present.
func (e *Entity) MergeSource(value string) {
	e.Sources = appendUnique(e.Sources, value)
}

// MergeLibrary appends value to Libraries if not already present.
func (e *Entity) MergeLibrary(value string) {
	e.Libraries = appendUnique(e.Libraries, value)
}

// MergeGroup appends value to Groups if not already present.
func (e *Entity) MergeGroup(value string) {
	e.Groups = appendUnique(e.Groups, value)
}

// MergeBrick folds another entity's include folders, sources, libraries,
// and symbols into e, in order, suppressing duplicates. Used both for
// brick inlining and for transitively merging a built library's own
// library list into its dependent.
func (e *Entity) MergeBrick(other *Entity) {
	for _, v := range other.IncludeFolders {
		e.MergeInclude(v)
	}
	for _, v := range other.Sources {
		e.MergeSource(v)
	}
	for _, v := range other.Libraries {
		e.MergeLibrary(v)
	}
	for _, v := range other.Symbols {
		e.MergeSymbol(v)
	}
}

// MatchesGroup reports whether this entity should be built for the given
// active group: an entity with no groups always matches an empty active
// group, and otherwise matches iff active is one of its declared groups.
func (e *Entity) MatchesGroup(active string) bool {
	if len(e.Groups) == 0 {
		return active == ""
	}
	for _, g := range e.Groups {
		if g == active {
			return true
		}
	}
	return false
}

// BlueprintStatus is the lifecycle of a parsed blueprint.
type BlueprintStatus int

const (
	BlueprintInit BlueprintStatus = iota
	BlueprintParsing
	BlueprintBuilding
	BlueprintReady
	BlueprintError
)

// Blueprint is a single parsed file: either the root project description or
// one import, each owning its own entities and further imports.
type Blueprint struct {
	Status BlueprintStatus

	// Name is empty for the root blueprint; for an import it is the
	// alias given by "as", or the raw import name otherwise.
	Name string

	// File is the absolute path to the parsed source file; Path is its
	// parent directory, used as the base for every relative path the
	// entities inside declare.
	File string
	Path string

	Compiler    string
	Linker      string
	BuildFolder string
	BuildType   string

	Entities []*Entity
	Imports  []*Blueprint

	Diagnostics *diag.Sink
}

// NewBlueprint returns an empty Blueprint in BlueprintInit status.
func NewBlueprint() *Blueprint {
	return &Blueprint{Status: BlueprintInit, Diagnostics: diag.NewSink()}
}

// HasErrors reports whether this blueprint (not counting entities or
// imports) recorded any Error diagnostic.
func (b *Blueprint) HasErrors() bool {
	return b.Diagnostics.HasErrors()
}

// FindEntity looks up a direct entity of b by name.
func (b *Blueprint) FindEntity(name string) *Entity {
	for _, e := range b.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindImport looks up a direct import of b by its assigned name.
func (b *Blueprint) FindImport(name string) *Blueprint {
	for _, imp := range b.Imports {
		if imp.Name == name {
			return imp
		}
	}
	return nil
}

// FindSubmodule resolves a dependency's module reference: empty name means
// "this blueprint", otherwise it is looked up among direct imports.
func (b *Blueprint) FindSubmodule(name string) *Blueprint {
	if name == "" {
		return b
	}
	return b.FindImport(name)
}
