package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dehydratedfish/bricks/internal/platform"
)

func TestLookupKnownAlias(t *testing.T) {
	info, err := platform.Lookup("win32")
	require.NoError(t, err)
	assert.Equal(t, "exe", info.ExeExt)
	assert.Equal(t, "lib", info.StaticLibExt)
	assert.Equal(t, "dll", info.SharedLibExt)
	assert.Equal(t, "windows", info.OS)
}

func TestLookupCanonicalOSArch(t *testing.T) {
	info, err := platform.Lookup("linux/amd64")
	require.NoError(t, err)
	assert.Equal(t, "a", info.StaticLibExt)
}

func TestLookupUnknownPlatformIsFatal(t *testing.T) {
	_, err := platform.Lookup("amiga")
	require.Error(t, err)
	var unknown *platform.UnknownPlatformError
	assert.ErrorAs(t, err, &unknown)
}
