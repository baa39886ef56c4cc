// Package parser is a recursive-descent consumer of the blueprint token
// stream. It populates an [model.Blueprint], emitting positional
// diagnostics with file:line:column and a caret under the offending
// column for every syntax error it finds.
package parser

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dehydratedfish/bricks/internal/brickyard"
	"github.com/dehydratedfish/bricks/internal/diag"
	"github.com/dehydratedfish/bricks/internal/lexer"
	"github.com/dehydratedfish/bricks/internal/model"
	"github.com/dehydratedfish/bricks/internal/token"
)

// Context bundles the values that used to live in the original's
// process-wide mutable App singleton — active build type, active
// platform, the brickyard for import fallback, and the working directory
// import probing is relative to — and threads them explicitly through
// parsing instead.
type Context struct {
	BuildType string
	Platform  string
	Cwd       string
	Brickyard *brickyard.Yard

	visited map[string]bool
}

// NewContext returns a parsing Context. cwd is used to resolve a bare
// import name's local "<name>/blueprint" probe; yard may be nil, in which
// case local-only import resolution is attempted and brickyard fallback
// always misses.
func NewContext(buildType, platformName, cwd string, yard *brickyard.Yard) *Context {
	return &Context{
		BuildType: buildType,
		Platform:  platformName,
		Cwd:       cwd,
		Brickyard: yard,
		visited:   make(map[string]bool),
	}
}

// ParseFile reads and parses file into a new Blueprint. Every failure mode
// — missing file, empty file, syntax error — is recorded as a Diagnostic
// on the returned Blueprint with its Status set to Error, rather than as a
// Go error: a parse failure is build-domain data, not a plumbing failure.
func ParseFile(ctx *Context, file string) *model.Blueprint {
	bp := model.NewBlueprint()
	bp.Status = model.BlueprintParsing

	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	bp.File = abs
	bp.Path = filepath.Dir(abs)
	bp.BuildType = ctx.BuildType

	if ctx.visited[abs] {
		bp.Diagnostics.Addf(diag.Error, "import cycle detected at %s", abs)
		bp.Status = model.BlueprintError
		return bp
	}
	ctx.visited[abs] = true
	defer delete(ctx.visited, abs)

	src, err := os.ReadFile(abs)
	if err != nil {
		bp.Diagnostics.Addf(diag.Error, "could not read blueprint file %s: %v", abs, err)
		bp.Status = model.BlueprintError
		return bp
	}
	if len(bytes.TrimSpace(src)) == 0 {
		bp.Diagnostics.Addf(diag.Error, "file empty")
		bp.Status = model.BlueprintError
		return bp
	}

	p := newParser(ctx, abs, src, bp.Diagnostics)
	p.parseBlueprint(bp)

	if bp.Status != model.BlueprintError {
		bp.Status = model.BlueprintReady
	}
	return bp
}

// resolveImport implements spec §4.2's two-step import resolution: probe
// "<name>/blueprint" relative to ctx.Cwd first, then
// fall back to a brickyard lookup by name. Returns ok=false if neither
// source has the blueprint.
func resolveImport(ctx *Context, name string) (string, bool) {
	local := filepath.Join(ctx.Cwd, name, "blueprint")
	if _, err := os.Stat(local); err == nil {
		return local, true
	}
	if ctx.Brickyard != nil {
		if dir, ok := ctx.Brickyard.Find(name, ""); ok {
			return filepath.Join(dir, "blueprint"), true
		}
	}
	return "", false
}

type predicate struct {
	platform bool
	name     string
}

// matchesAny implements the field-predicate OR semantics of spec §4.2: a
// field applies if any predicate in its list matches the active build
// type or active platform.
func matchesAny(predicates []predicate, buildType, platformName string) bool {
	for _, pr := range predicates {
		if pr.platform {
			if pr.name == platformName {
				return true
			}
		} else if pr.name == buildType {
			return true
		}
	}
	return false
}

type parser struct {
	ctx  *Context
	file string
	src  []byte
	lex  *lexer.Lexer
	sink *diag.Sink

	current token.Token
}

func newParser(ctx *Context, file string, src []byte, sink *diag.Sink) *parser {
	p := &parser{ctx: ctx, file: file, src: src, lex: lexer.New(src), sink: sink}
	p.advance()
	return p
}

func (p *parser) advance() token.Token {
	prev := p.current
	p.current = p.lex.Advance()
	return prev
}

func (p *parser) check(kind token.Kind) bool {
	return p.current.Kind == kind
}

func (p *parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has kind, else records a parse
// error and returns false without consuming anything.
func (p *parser) expect(kind token.Kind, context string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.errorAtToken(p.current, "expected %s %s, got %s", kind, context, p.current.Kind)
	return token.Token{}, false
}

// errorAtToken records a positional diagnostic for t. SourceLine keeps its
// leading whitespace intact; internal/diag trims it and shifts the caret
// at render time.
func (p *parser) errorAtToken(t token.Token, format string, args ...any) {
	loc := t.Location
	p.sink.Add(diag.Diagnostic{
		Kind:       diag.Error,
		Message:    fmt.Sprintf(format, args...),
		File:       p.file,
		Line:       loc.Line,
		Column:     loc.Column,
		HasPos:     true,
		SourceLine: p.sourceLine(loc.Line),
	})
}

func (p *parser) errorf(format string, args ...any) {
	p.errorAtToken(p.current, format, args...)
}

func (p *parser) sourceLine(line int) string {
	lines := bytes.Split(p.src, []byte("\n"))
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(string(lines[line-1]), "\r")
}

// stringValue strips the delimiting quotes a String token's Text carries
// (see internal/lexer's token-slicing invariant) to recover the literal's
// actual content.
func stringValue(t token.Token) string {
	if len(t.Text) < 2 {
		return ""
	}
	return t.Text[1 : len(t.Text)-1]
}

// joinPath composes a slash-separated path from segments, stripping
// redundant interior separators and omitting empty segments — the same
// rule combine_entity_path applies, minus the extension suffix. The base
// segment (bp.Path) is always absolute; path.Join preserves that leading
// "/" while still collapsing the rest, so it is never stripped here.
func joinPath(segments ...string) string {
	return path.Join(segments...)
}

// parseBlueprint drives the top-level statement loop. Per spec §4.2 the
// loop terminates as soon as any statement fails, leaving bp in Error.
func (p *parser) parseBlueprint(bp *model.Blueprint) {
	for !p.check(token.EOF) {
		if !p.parseTopLevelStatement(bp) {
			bp.Status = model.BlueprintError
			return
		}
	}
}

func (p *parser) parseTopLevelStatement(bp *model.Blueprint) bool {
	switch p.current.Kind {
	case token.KwExecutable:
		return p.parseEntityDecl(bp, model.EntityExecutable)
	case token.KwBrick:
		return p.parseEntityDecl(bp, model.EntityBrick)
	case token.KwLibrary:
		return p.parseEntityDecl(bp, model.EntityLibrary)
	case token.KwImport:
		return p.parseImport(bp)
	case token.Identifier:
		return p.parseBlueprintField(bp)
	default:
		p.errorf("expected a declaration, got %s", p.current.Kind)
		return false
	}
}

// parseBlueprintField handles statement form 1 of spec §4.2: a bare
// "name: value;" at blueprint scope, with no predicate support.
func (p *parser) parseBlueprintField(bp *model.Blueprint) bool {
	nameTok := p.advance()
	if _, ok := p.expect(token.Colon, "after field name"); !ok {
		return false
	}
	valTok, ok := p.expect(token.String, "field value")
	if !ok {
		return false
	}
	if _, ok := p.expect(token.Semicolon, "to terminate field"); !ok {
		return false
	}

	value := stringValue(valTok)
	switch nameTok.Text {
	case "compiler":
		bp.Compiler = value
	case "linker":
		bp.Linker = value
	case "build_folder":
		bp.BuildFolder = value
	default:
		p.errorAtToken(nameTok, "unknown blueprint field %q", nameTok.Text)
		return false
	}
	return true
}

// parseImport handles statement form 3 of spec §4.2. The ": group" clause
// is recognized but currently inert — no group-scoped import behavior is
// specified beyond parsing it (see DESIGN.md).
func (p *parser) parseImport(bp *model.Blueprint) bool {
	p.advance() // 'import'

	var name string
	switch {
	case p.check(token.Identifier):
		name = p.advance().Text
	case p.check(token.String):
		name = stringValue(p.advance())
	default:
		p.errorf("expected import name, got %s", p.current.Kind)
		return false
	}

	if p.match(token.Colon) {
		if _, ok := p.expect(token.Identifier, "import group"); !ok {
			return false
		}
	}

	alias := ""
	if p.match(token.KwAs) {
		aliasTok, ok := p.expect(token.Identifier, "import alias")
		if !ok {
			return false
		}
		alias = aliasTok.Text
	}

	if _, ok := p.expect(token.Semicolon, "to terminate import"); !ok {
		return false
	}

	resolved, ok := resolveImport(p.ctx, name)
	if !ok {
		p.errorf("could not resolve import %q (no local %q/blueprint, not found in brickyard)", name, name)
		return false
	}

	child := ParseFile(p.ctx, resolved)
	if alias != "" {
		child.Name = alias
	} else {
		child.Name = name
	}
	bp.Imports = append(bp.Imports, child)
	return true
}

// parseEntityDecl handles statement form 2 of spec §4.2.
func (p *parser) parseEntityDecl(bp *model.Blueprint, kind model.EntityKind) bool {
	p.advance() // keyword
	if _, ok := p.expect(token.Colon, "after entity kind"); !ok {
		return false
	}
	nameTok, ok := p.expect(token.Identifier, "entity name")
	if !ok {
		return false
	}
	if _, ok := p.expect(token.LBrace, "to begin entity body"); !ok {
		return false
	}

	entity := model.NewEntity(nameTok.Text, kind, bp)
	if kind == model.EntityLibrary {
		// Only LibraryStatic is implemented by any adapter; the DSL has no
		// field to select Shared (see spec §4.5).
		entity.LibKind = model.LibraryStatic
	}

	for !p.check(token.RBrace) && !p.check(token.EOF) {
		if !p.parseEntityField(bp, entity) {
			return false
		}
	}
	if _, ok := p.expect(token.RBrace, "to close entity body"); !ok {
		return false
	}

	bp.Entities = append(bp.Entities, entity)
	return true
}

// parseEntityField handles "field_name [ '(' predicate_list ')' ] : <value> ;".
func (p *parser) parseEntityField(bp *model.Blueprint, entity *model.Entity) bool {
	fieldTok, ok := p.expect(token.Identifier, "entity field name")
	if !ok {
		return false
	}

	apply := true
	if p.match(token.LParen) {
		var predicates []predicate
		if !p.check(token.RParen) {
			for {
				isPlatform := p.match(token.Hash)
				idTok, ok := p.expect(token.Identifier, "predicate name")
				if !ok {
					return false
				}
				predicates = append(predicates, predicate{platform: isPlatform, name: idTok.Text})
				if !p.match(token.Comma) {
					break
				}
			}
		}
		if _, ok := p.expect(token.RParen, "to close predicate list"); !ok {
			return false
		}
		// An empty predicate list, or one where nothing matches, means
		// "parse but discard" (spec §4.2).
		apply = len(predicates) > 0 && matchesAny(predicates, p.ctx.BuildType, p.ctx.Platform)
	}

	if _, ok := p.expect(token.Colon, "after field name"); !ok {
		return false
	}

	switch fieldTok.Text {
	case "sources":
		return p.parseSourcesField(bp, entity, apply)
	case "include":
		return p.parseStringListField(entity, apply, func(e *model.Entity, v string) {
			e.MergeInclude(joinPath(bp.Path, v))
		})
	case "symbols":
		return p.parseStringListField(entity, apply, func(e *model.Entity, v string) {
			e.MergeSymbol(v)
		})
	case "dependencies":
		return p.parseDependenciesField(entity, apply)
	case "folder":
		return p.parseFolderField(entity, apply)
	case "group":
		return p.parseStringListField(entity, apply, func(e *model.Entity, v string) {
			e.MergeGroup(v)
		})
	default:
		p.errorAtToken(fieldTok, "unknown entity field %q", fieldTok.Text)
		return false
	}
}

// parseSourcesField implements the subfolder-prefix grammar: a "/ subfolder"
// term changes the active subfolder for every source string that follows,
// until another "/" term overrides it again.
func (p *parser) parseSourcesField(bp *model.Blueprint, entity *model.Entity, apply bool) bool {
	subfolder := ""
	for !p.check(token.Semicolon) && !p.check(token.EOF) {
		if p.match(token.Slash) {
			subTok, ok := p.expect(token.String, "subfolder name")
			if !ok {
				return false
			}
			subfolder = stringValue(subTok)
			p.match(token.Comma)
			continue
		}

		srcTok, ok := p.expect(token.String, "source file name")
		if !ok {
			return false
		}
		if apply {
			entity.MergeSource(joinPath(bp.Path, subfolder, stringValue(srcTok)))
		}
		p.match(token.Comma)
	}
	_, ok := p.expect(token.Semicolon, "to terminate sources field")
	return ok
}

// parseStringListField handles "one or more strings", applying fn to each
// value in declared order when apply is true.
func (p *parser) parseStringListField(entity *model.Entity, apply bool, fn func(*model.Entity, string)) bool {
	for {
		strTok, ok := p.expect(token.String, "value")
		if !ok {
			return false
		}
		if apply {
			fn(entity, stringValue(strTok))
		}
		if !p.match(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.Semicolon, "to terminate field")
	return ok
}

// parseDependenciesField handles a comma list of either
// identifier[.identifier] (a Dependency) or a bare string (a direct
// library input, e.g. a system import library name).
func (p *parser) parseDependenciesField(entity *model.Entity, apply bool) bool {
	for !p.check(token.Semicolon) && !p.check(token.EOF) {
		switch {
		case p.check(token.String):
			strTok := p.advance()
			if apply {
				entity.MergeLibrary(stringValue(strTok))
			}
		case p.check(token.Identifier):
			firstTok := p.advance()
			module, entityName := "", firstTok.Text
			if p.match(token.Dot) {
				secondTok, ok := p.expect(token.Identifier, "entity name after '.'")
				if !ok {
					return false
				}
				module, entityName = firstTok.Text, secondTok.Text
			}
			if apply {
				entity.Dependencies = append(entity.Dependencies, model.Dependency{Module: module, Entity: entityName})
			}
		default:
			p.errorf("expected dependency name or string, got %s", p.current.Kind)
			return false
		}
		p.match(token.Comma)
	}
	_, ok := p.expect(token.Semicolon, "to terminate dependencies field")
	return ok
}

func (p *parser) parseFolderField(entity *model.Entity, apply bool) bool {
	strTok, ok := p.expect(token.String, "folder path")
	if !ok {
		return false
	}
	if apply {
		entity.BuildFolder = stringValue(strTok)
	}
	_, ok = p.expect(token.Semicolon, "to terminate folder field")
	return ok
}
