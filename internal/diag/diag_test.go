package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehydratedfish/bricks/internal/diag"
)

func TestSinkFlipsHasErrorsOnlyOnError(t *testing.T) {
	s := diag.NewSink()
	s.Add(diag.Diagnostic{Kind: diag.Warning, Message: "careful"})
	assert.False(t, s.HasErrors())

	s.Add(diag.Diagnostic{Kind: diag.Error, Message: "boom"})
	assert.True(t, s.HasErrors())
	assert.Len(t, s.Entries(), 2)
}

func TestSinkMergePreservesOrderAndErrorFlag(t *testing.T) {
	a := diag.NewSink()
	a.Add(diag.Diagnostic{Kind: diag.Note, Message: "first"})

	b := diag.NewSink()
	b.Add(diag.Diagnostic{Kind: diag.Error, Message: "second"})

	a.Merge(b)
	require.Len(t, a.Entries(), 2)
	assert.Equal(t, "first", a.Entries()[0].Message)
	assert.Equal(t, "second", a.Entries()[1].Message)
	assert.True(t, a.HasErrors())
}

func TestWriteTextTrimsIndentAndShiftsCaret(t *testing.T) {
	var buf bytes.Buffer
	err := diag.WriteText(&buf, []diag.Diagnostic{
		{
			Kind:       diag.Error,
			Message:    "unexpected token",
			File:       "blueprint",
			Line:       3,
			Column:     7,
			HasPos:     true,
			SourceLine: "    sources  \"main.c\"",
		},
	}, false)
	require.NoError(t, err)

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "blueprint:3:7: error: unexpected token", lines[0])
	assert.Equal(t, "  sources  \"main.c\"", lines[1])
	// original column 7 minus 4 trimmed leading spaces = column 3, one-based
	assert.Equal(t, "  "+strings.Repeat(" ", 2)+"^", lines[2])
}

func TestWriteTextPositionlessDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	err := diag.WriteText(&buf, []diag.Diagnostic{
		{Kind: diag.Error, Message: "no entity nope in blueprint"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "error: no entity nope in blueprint\n", buf.String())
}

func TestWriteSARIFProducesValidJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	err := diag.WriteSARIF(&buf, []diag.Diagnostic{
		{Kind: diag.Error, Message: "boom", File: "blueprint", Line: 1, Column: 1, HasPos: true},
		{Kind: diag.Warning, Message: "heads up"},
	}, "0.0.0-test")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"version"`)
	assert.Contains(t, out, "bricks")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "heads up")
}
