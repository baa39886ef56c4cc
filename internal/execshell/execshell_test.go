package execshell_test

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehydratedfish/bricks/internal/execshell"
)

func TestShellRunCapturesCombinedOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a POSIX shell command")
	}

	s := execshell.NewShell()
	out, err := s.Run(context.Background(), "echo hello", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestShellRunSurfacesNonZeroExitOutputWithoutError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a POSIX shell command")
	}

	s := execshell.NewShell()
	out, err := s.Run(context.Background(), "echo bad >&2; exit 1", t.TempDir())
	require.NoError(t, err, "a non-zero exit is the compiler's own result, not a launch failure")
	assert.Contains(t, out, "bad")
}

func TestJoinLinesNormalizesLineEndings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, execshell.JoinLines("a\r\nb\rc"))
	assert.Nil(t, execshell.JoinLines(""))
}

func TestJoinLinesTrimsTrailingNewline(t *testing.T) {
	lines := execshell.JoinLines("one\ntwo\n")
	require.Len(t, lines, 2)
	assert.False(t, strings.HasSuffix(lines[1], "\n"))
}
