// Package msvc implements the MSVC compiler adapter: cl.exe/LIB.exe command
// generation and diagnostic classification for their combined output.
package msvc

import (
	"fmt"
	"path"
	"strings"

	"github.com/dehydratedfish/bricks/internal/compiler"
	"github.com/dehydratedfish/bricks/internal/diag"
	"github.com/dehydratedfish/bricks/internal/model"
)

const name = "msvc"

// Adapter implements compiler.Adapter for the MSVC toolchain.
type Adapter struct{}

// New returns an MSVC Adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name implements compiler.Adapter.
func (a *Adapter) Name() string {
	return name
}

func init() {
	compiler.Register(New())
}

// GenerateCommands computes entity.BuildCommands. It never runs anything.
func (a *Adapter) GenerateCommands(bp *model.Blueprint, entity *model.Entity) error {
	switch entity.Kind {
	case model.EntityExecutable:
		return a.generateExecutable(bp, entity)
	case model.EntityLibrary:
		switch entity.LibKind {
		case model.LibraryStatic:
			return a.generateStaticLibrary(bp, entity)
		case model.LibraryShared:
			entity.Diagnostics.Addf(diag.Error, "shared libraries are not implemented by the msvc adapter (entity: %s)", entity.Name)
			entity.Status = model.EntityError
			return fmt.Errorf("msvc: shared library unsupported for %s", entity.Name)
		default:
			entity.Diagnostics.Addf(diag.Error, "entity %s has no usable library kind", entity.Name)
			entity.Status = model.EntityError
			return fmt.Errorf("msvc: no library kind for %s", entity.Name)
		}
	default:
		entity.Diagnostics.Addf(diag.Error, "msvc can only build executables and libraries (entity: %s)", entity.Name)
		entity.Status = model.EntityError
		return fmt.Errorf("msvc: cannot build entity kind %s", entity.Kind)
	}
}

func (a *Adapter) generateExecutable(bp *model.Blueprint, entity *model.Entity) error {
	if len(entity.Sources) == 0 {
		entity.Diagnostics.Addf(diag.Error, "executable %s has no source file(s) to build", entity.Name)
		entity.Status = model.EntityError
		return fmt.Errorf("msvc: %s has no sources", entity.Name)
	}

	debug := bp.BuildType == "debug"

	var b strings.Builder
	b.WriteString("cl /nologo /permissive- /W2")
	if debug {
		b.WriteString(" /Zi")
	}
	for _, symbol := range entity.Symbols {
		fmt.Fprintf(&b, " /D\"%s\"", symbol)
	}
	for _, dir := range entity.IncludeFolders {
		fmt.Fprintf(&b, " /I\"%s\"", dir)
	}
	fmt.Fprintf(&b, " /Fe\"%s\"", entity.FilePath)
	fmt.Fprintf(&b, " /Fo\"%s/\"", entity.IntermediateFolder)
	if debug {
		if folder := path.Dir(entity.FilePath); folder != "" && folder != "." {
			fmt.Fprintf(&b, " /Fd\"%s/\"", folder)
		}
	}
	for _, source := range entity.Sources {
		fmt.Fprintf(&b, " \"%s\"", source)
	}
	b.WriteString(" /link /SUBSYSTEM:CONSOLE /INCREMENTAL:NO")
	for _, lib := range entity.Libraries {
		fmt.Fprintf(&b, " \"%s\"", lib)
	}

	entity.BuildCommands = []string{b.String()}
	return nil
}

func (a *Adapter) generateStaticLibrary(bp *model.Blueprint, entity *model.Entity) error {
	debug := bp.BuildType == "debug"

	var compile strings.Builder
	compile.WriteString("cl /nologo /permissive- /W2 /c")
	if debug {
		compile.WriteString(" /Zi")
	}
	for _, symbol := range entity.Symbols {
		fmt.Fprintf(&compile, " /D\"%s\"", symbol)
	}
	for _, dir := range entity.IncludeFolders {
		fmt.Fprintf(&compile, " /I\"%s\"", dir)
	}
	fmt.Fprintf(&compile, " /Fo\"%s/\"", entity.IntermediateFolder)
	if debug {
		fmt.Fprintf(&compile, " /Fd\"%s/\"", entity.IntermediateFolder)
	}

	objectFiles := make([]string, 0, len(entity.Sources))
	for _, source := range entity.Sources {
		fmt.Fprintf(&compile, " \"%s\"", source)
		objectFiles = append(objectFiles, fmt.Sprintf("%s/%s.obj", entity.IntermediateFolder, basenameWithoutExt(source)))
	}

	var archive strings.Builder
	fmt.Fprintf(&archive, "LIB /NOLOGO /OUT:\"%s\"", entity.FilePath)
	for _, obj := range objectFiles {
		fmt.Fprintf(&archive, " \"%s\"", obj)
	}

	entity.BuildCommands = []string{compile.String(), archive.String()}
	return nil
}

func basenameWithoutExt(p string) string {
	base := path.Base(p)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// ProcessDiagnostics classifies one command's captured output into
// entity.Diagnostics. A line containing ": error ", ": fatal error ", or
// " Command line error " becomes an Error and flips entity.Status to
// Error; classification continues after an Error is seen, exactly as the
// original MSVC adapter does — it never stops early.
func (a *Adapter) ProcessDiagnostics(entity *model.Entity, output string) {
	for _, line := range splitLines(output) {
		switch {
		case strings.Contains(line, ": error "),
			strings.Contains(line, ": fatal error "),
			strings.Contains(line, " Command line error "):
			entity.Diagnostics.Add(diag.Diagnostic{Kind: diag.Error, Message: line})
			entity.Status = model.EntityError
		case strings.Contains(line, ": warning"):
			entity.Diagnostics.Add(diag.Diagnostic{Kind: diag.Warning, Message: line})
		case strings.Contains(line, ": note: "):
			entity.Diagnostics.Add(diag.Diagnostic{Kind: diag.Note, Message: line})
		}
	}
}

func splitLines(output string) []string {
	normalized := strings.ReplaceAll(output, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimRight(normalized, "\n")
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, "\n")
}
