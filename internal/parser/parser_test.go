package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehydratedfish/bricks/internal/brickyard"
	"github.com/dehydratedfish/bricks/internal/model"
	"github.com/dehydratedfish/bricks/internal/parser"
)

func writeBlueprint(t *testing.T, dir, contents string) string {
	t.Helper()
	file := filepath.Join(dir, "blueprint")
	require.NoError(t, os.WriteFile(file, []byte(contents), 0o644))
	return file
}

func newCtx(buildType, platformName, cwd string) *parser.Context {
	return parser.NewContext(buildType, platformName, cwd, brickyard.New())
}

func TestEmptyBlueprintFileIsError(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, "   \n\t\n")

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintError, bp.Status)
	require.NotEmpty(t, bp.Diagnostics.Entries())
	assert.Contains(t, bp.Diagnostics.Entries()[0].Message, "file empty")
}

func TestMinimalExecutableParses(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `compiler: "msvc";
executable: hello {
    sources: "hello.c";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	require.Len(t, bp.Entities, 1)

	e := bp.FindEntity("hello")
	require.NotNil(t, e)
	assert.Equal(t, model.EntityExecutable, e.Kind)
	require.Len(t, e.Sources, 1)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "hello.c")), e.Sources[0])
}

func TestMissingClosingQuoteIsParseError(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: app {
    sources: "unterminated;
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintError, bp.Status)
	require.NotEmpty(t, bp.Diagnostics.Entries())
}

func TestLineCommentAtEOFWithoutNewline(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: app {
    sources: "a.c";
}
// trailing comment, no newline after it`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
}

func TestPredicateMatchesBuildTypeOrPlatform(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: app {
    sources(debug, #win32): "only_debug_or_win32.c";
}
`)

	bp := parser.ParseFile(newCtx("debug", "linux", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	e := bp.FindEntity("app")
	require.Len(t, e.Sources, 1)
}

func TestEmptyPredicateSkipsField(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: app {
    sources(): "never_included.c";
    sources: "base.c";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	e := bp.FindEntity("app")
	require.Len(t, e.Sources, 1)
	assert.Contains(t, e.Sources[0], "base.c")
}

func TestNonMatchingPredicateSkipsField(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: app {
    sources(release): "only_release.c";
    sources: "base.c";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	e := bp.FindEntity("app")
	require.Len(t, e.Sources, 1)
	assert.Contains(t, e.Sources[0], "base.c")
}

func TestSourcesSubfolderGrammar(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `library: utils {
    sources: "util.c", / "sub" "sub.c";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	e := bp.FindEntity("utils")
	require.Len(t, e.Sources, 2)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "util.c")), e.Sources[0])
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "sub", "sub.c")), e.Sources[1])
}

func TestGroupFieldTagsEntity(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: tool {
    sources: "tool.c";
    group: "tools", "ci";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	e := bp.FindEntity("tool")
	require.Len(t, e.Groups, 2)
	assert.Equal(t, []string{"tools", "ci"}, e.Groups)
	assert.True(t, e.MatchesGroup("tools"))
	assert.False(t, e.MatchesGroup("other"))
}

// The parser keeps duplicate dependency entries; duplicates are suppressed
// later, when the resolver merges each brick (see model.MergeBrick).
func TestDuplicateDependencyEntriesKeptByParser(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `brick: core {
    symbols: "X";
}
executable: app {
    sources: "main.c";
    dependencies: core, core;
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	e := bp.FindEntity("app")
	require.Len(t, e.Dependencies, 2)
}

func TestDependenciesMixedIdentifiersAndStrings(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable: app {
    sources: "main.c";
    dependencies: utils, mm.parser, "ws2_32.lib";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	e := bp.FindEntity("app")
	require.Len(t, e.Dependencies, 2)
	assert.Equal(t, model.Dependency{Module: "", Entity: "utils"}, e.Dependencies[0])
	assert.Equal(t, model.Dependency{Module: "mm", Entity: "parser"}, e.Dependencies[1])
	assert.Equal(t, []string{"ws2_32.lib"}, e.Libraries)
}

func TestUnknownBlueprintFieldIsError(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `bogus: "value";
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintError, bp.Status)
}

func TestImportMissingIsError(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `import "nope_not_found_anywhere";
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintError, bp.Status)
}

func TestImportLocalProbeAndAlias(t *testing.T) {
	root := t.TempDir()
	subDir := filepath.Join(root, "foolib")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	writeBlueprint(t, subDir, `brick: core {
    symbols: "FOO";
}
`)

	file := writeBlueprint(t, root, `import foolib as mm;
`)

	bp := parser.ParseFile(newCtx("debug", "win32", root), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	require.Len(t, bp.Imports, 1)
	assert.Equal(t, "mm", bp.Imports[0].Name)
	assert.NotNil(t, bp.FindImport("mm"))
}

func TestImportViaBrickyardFallback(t *testing.T) {
	root := t.TempDir()
	registered := t.TempDir()
	writeBlueprint(t, registered, `brick: core {
    symbols: "FOO";
}
`)

	yard := brickyard.New()
	yard.Add("remote", "", registered)

	file := writeBlueprint(t, root, `import remote;
`)

	bp := parser.ParseFile(parser.NewContext("debug", "win32", root, yard), file)
	require.Equal(t, model.BlueprintReady, bp.Status)
	require.Len(t, bp.Imports, 1)
	assert.Equal(t, "remote", bp.Imports[0].Name)
}

func TestDoubleColonDoesNotTerminateEntityKind(t *testing.T) {
	dir := t.TempDir()
	file := writeBlueprint(t, dir, `executable:: app {
    sources: "main.c";
}
`)

	bp := parser.ParseFile(newCtx("debug", "win32", dir), file)
	require.Equal(t, model.BlueprintError, bp.Status)
}
