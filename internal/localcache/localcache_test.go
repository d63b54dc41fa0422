package localcache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachecraft/archivekit/internal/cachearchive"
	"github.com/cachecraft/archivekit/internal/config"
	"github.com/cachecraft/archivekit/internal/syspath"
)

func TestFetchMiss(t *testing.T) {
	store := NewStore(syspath.AbsoluteSystemPath(t.TempDir()))
	anchor := syspath.AbsoluteSystemPath(t.TempDir())

	status, restored, err := store.Fetch(anchor, "does-not-exist")
	require.NoError(t, err)
	assert.False(t, status.Local)
	assert.Nil(t, restored)
}

func TestPutThenFetchRoundTrip(t *testing.T) {
	cacheDir := t.TempDir()
	sourceDir := t.TempDir()
	anchor := syspath.AbsoluteSystemPath(t.TempDir())

	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "output.txt"), []byte("built artifact"), 0644))

	store := NewStore(syspath.AbsoluteSystemPath(cacheDir))
	const hash = "deadbeef"

	err := store.Put(hash, syspath.AbsoluteSystemPath(sourceDir), []syspath.AnchoredSystemPath{"output.txt"})
	require.NoError(t, err)

	status, restored, err := store.Fetch(anchor, hash)
	require.NoError(t, err)
	assert.True(t, status.Local)
	require.Len(t, restored, 1)
	assert.Equal(t, syspath.AnchoredSystemPath("output.txt"), restored[0])

	contents, err := os.ReadFile(filepath.Join(anchor.ToString(), "output.txt"))
	require.NoError(t, err)
	assert.Equal(t, "built artifact", string(contents))
}

// TestFetchBufferUsesForceCompressed exercises the buffer-sourced path
// that has no suffix to sniff compression from, confirming Store
// actually consults its configured ForceCompressed instead of assuming
// uncompressed.
func TestFetchBufferUsesForceCompressed(t *testing.T) {
	cacheDir := t.TempDir()
	sourceDir := t.TempDir()
	anchor := syspath.AbsoluteSystemPath(t.TempDir())

	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "output.txt"), []byte("from a buffer"), 0644))

	// Written with an explicit ".tar.zst" path so Create compresses it,
	// then read back as raw bytes with the name discarded: FetchBuffer
	// has to be told it's compressed via config, not a path suffix.
	archivePath := syspath.AbsoluteSystemPath(filepath.Join(cacheDir, "payload.tar.zst"))
	archive, err := cachearchive.Create(archivePath)
	require.NoError(t, err)
	require.NoError(t, archive.AddFile(syspath.AbsoluteSystemPath(sourceDir), syspath.AnchoredSystemPath("output.txt")))
	require.NoError(t, archive.Close())

	raw, err := os.ReadFile(archivePath.ToString())
	require.NoError(t, err)

	store := NewStoreFromConfig(syspath.AbsoluteSystemPath(cacheDir), &config.Config{
		AnchorBase:      ".",
		LogLevel:        "info",
		ForceCompressed: true,
	})

	status, restored, err := store.FetchBuffer(anchor, bytes.NewReader(raw), "buffer-hash")
	require.NoError(t, err)
	assert.True(t, status.Local)
	require.Len(t, restored, 1)
	assert.Equal(t, syspath.AnchoredSystemPath("output.txt"), restored[0])

	contents, err := os.ReadFile(filepath.Join(anchor.ToString(), "output.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from a buffer", string(contents))
}

func TestResolveAnchorUsesConfiguredBase(t *testing.T) {
	base := t.TempDir()
	store := NewStoreFromConfig(syspath.AbsoluteSystemPath(t.TempDir()), &config.Config{
		AnchorBase: base,
		LogLevel:   "info",
	})

	resolved, err := store.ResolveAnchor("workspace/app")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "workspace", "app"), resolved.ToString())
}
