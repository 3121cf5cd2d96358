package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndExtractRoundTrip(t *testing.T) {
	src := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(prev)
	require.NoError(t, os.Chdir(src))

	require.NoError(t, os.Mkdir("tree", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("tree", "a.txt"), []byte("hi"), 0o644))

	archive := filepath.Join(src, "out.tar")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"-c", "-f", archive, "tree"})
	require.NoError(t, cmd.Execute())

	info, err := os.Stat(archive)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	dest := t.TempDir()
	require.NoError(t, os.Chdir(dest))

	cmd = newRootCommand()
	cmd.SetArgs([]string{"-x", "-f", archive})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(filepath.Join(dest, "tree", "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hi", string(got))
}

func TestInvalidArgumentsCombinationExitsSilently(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"archive.tar"}) // neither -c nor -x
	require.NoError(t, cmd.Execute())
}

func TestCreateAndExtractBothSetIsInvalid(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"-c", "-x", "-f", "archive.tar"})
	require.NoError(t, cmd.Execute())
}
