package cachearchive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachecraft/archivekit/internal/syspath"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	archivePath := syspath.AbsoluteSystemPath(filepath.Join(t.TempDir(), "out.tar"))

	contents := []byte("hello from the cache")
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "payload"), contents, 0644))

	archive, err := Create(archivePath)
	require.NoError(t, err, "Create")

	require.NoError(t, archive.AddFile(syspath.AbsoluteSystemPath(srcDir), syspath.AnchoredSystemPath("payload")))
	require.NoError(t, archive.Close())

	opened, err := Open(archivePath)
	require.NoError(t, err, "Open")
	defer func() { _ = opened.Close() }()

	sha, err := opened.GetSha()
	require.NoError(t, err, "GetSha")
	require.Len(t, sha, 64, "SHA-512 digest is 64 bytes")
}

func TestCreateCompressedSuffixDetection(t *testing.T) {
	archivePath := syspath.AbsoluteSystemPath(filepath.Join(t.TempDir(), "out.tar.zst"))

	archive, err := Create(archivePath)
	require.NoError(t, err, "Create")
	require.True(t, archive.compressed, "a .zst path is detected as compressed")
	require.NoError(t, archive.Close())

	opened, err := Open(archivePath)
	require.NoError(t, err, "Open")
	defer func() { _ = opened.Close() }()
	require.True(t, opened.compressed, "re-opening preserves compression detection")
}

// TestOpenBufferRestoresFromMemory exercises the entry point spec.md
// describes as restoring "from an arbitrary readable byte stream": an
// in-memory buffer with no backing file and no path suffix to sniff
// compression from.
func TestOpenBufferRestoresFromMemory(t *testing.T) {
	srcDir := t.TempDir()
	archivePath := syspath.AbsoluteSystemPath(filepath.Join(t.TempDir(), "out.tar"))

	contents := []byte("hello from a buffer")
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "payload"), contents, 0644))

	archive, err := Create(archivePath)
	require.NoError(t, err, "Create")
	require.NoError(t, archive.AddFile(syspath.AbsoluteSystemPath(srcDir), syspath.AnchoredSystemPath("payload")))
	require.NoError(t, archive.Close())

	raw, err := os.ReadFile(archivePath.ToString())
	require.NoError(t, err, "ReadFile")

	anchor := syspath.AbsoluteSystemPath(t.TempDir())
	buffered := OpenBuffer(bytes.NewReader(raw), false)
	defer func() { _ = buffered.Close() }()

	restored, err := buffered.Restore(anchor)
	require.NoError(t, err, "Restore")
	assert.Equal(t, []syspath.AnchoredSystemPath{"payload"}, restored)

	got, err := os.ReadFile(filepath.Join(anchor.ToString(), "payload"))
	require.NoError(t, err, "ReadFile")
	assert.Equal(t, contents, got)
}
