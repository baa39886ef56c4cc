package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehydratedfish/bricks/internal/discovery"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestBlueprintsFindsRootAndNested(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blueprint"), "executable: app { sources: \"a.c\"; }")
	writeFile(t, filepath.Join(root, "libs", "util", "blueprint"), "library: util {}")
	writeFile(t, filepath.Join(root, "notes.txt"), "not a blueprint")

	found, err := discovery.Blueprints(root)
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, f := range found {
		assert.Equal(t, "blueprint", filepath.Base(f))
	}
}

func TestBlueprintsHonorsBricksignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blueprint"), "executable: app {}")
	writeFile(t, filepath.Join(root, "vendor", "blueprint"), "executable: skip {}")
	writeFile(t, filepath.Join(root, ".bricksignore"), "vendor\n")

	found, err := discovery.Blueprints(root)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, filepath.Join(root, "blueprint"), found[0])
}

func TestBlueprintsEmptyWorkspace(t *testing.T) {
	root := t.TempDir()
	found, err := discovery.Blueprints(root)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestIntermediateDirsFindsNestedBricksFolders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".bricks"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", ".bricks"), 0o755))
	writeFile(t, filepath.Join(root, "sub", ".bricks", "app.obj"), "binary")

	found, err := discovery.IntermediateDirs(root)
	require.NoError(t, err)
	assert.Len(t, found, 2)
	for _, f := range found {
		assert.Equal(t, ".bricks", filepath.Base(f))
	}
}

func TestIntermediateDirsEmptyWorkspace(t *testing.T) {
	root := t.TempDir()
	found, err := discovery.IntermediateDirs(root)
	require.NoError(t, err)
	assert.Empty(t, found)
}
