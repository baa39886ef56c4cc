package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehydratedfish/bricks/internal/brickyard"
)

func TestRegisterAddsCwdUnderDefaultName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(t.TempDir()) })

	yardPath := filepath.Join(t.TempDir(), "brick.yard")
	require.NoError(t, os.Setenv("BRICKS_BRICKYARD_PATH", yardPath))
	t.Cleanup(func() { os.Unsetenv("BRICKS_BRICKYARD_PATH") })

	require.NoError(t, registerCommand().Run(context.Background(), []string{"register"}))

	yard, err := brickyard.Load(yardPath)
	require.NoError(t, err)
	require.Len(t, yard.Entries(), 1)
	assert.Equal(t, filepath.Base(dir), yard.Entries()[0].Name)
}

func TestRegisterRejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(t.TempDir()) })

	err := registerCommand().Run(context.Background(), []string{"register", "Not A Valid Name!"})
	assert.Error(t, err)
}

func TestRegisterRefusesDuplicateWithoutForce(t *testing.T) {
	yardPath := filepath.Join(t.TempDir(), "brick.yard")
	require.NoError(t, os.Setenv("BRICKS_BRICKYARD_PATH", yardPath))
	t.Cleanup(func() { os.Unsetenv("BRICKS_BRICKYARD_PATH") })

	existing := brickyard.New()
	existing.Add("mylib", "", t.TempDir())
	require.NoError(t, existing.Save(yardPath, true))

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(t.TempDir()) })

	err := registerCommand().Run(context.Background(), []string{"register", "mylib"})
	assert.Error(t, err)
}
