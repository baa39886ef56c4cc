package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRemovesIntermediateDirs(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "sub", ".bricks")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "obj.o"), []byte(""), 0o644))

	require.NoError(t, cleanCommand().Run(context.Background(), []string{"clean", root}))

	_, err := os.Stat(nested)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanDryRunLeavesDirsInPlace(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, ".bricks")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	require.NoError(t, cleanCommand().Run(context.Background(), []string{"clean", "--dry-run", root}))

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCleanEmptyWorkspaceReportsNothingToClean(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, cleanCommand().Run(context.Background(), []string{"clean", root}))
}
