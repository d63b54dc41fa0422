// Package cachearchive restores tar (optionally zstd-compressed) build
// cache archives onto disk, safely.
//
// It is deliberately asymmetric: the create side is minimal (it produces
// fixtures for the restore side's tests and plain archives for
// localcache.Store.Put), and the restore side is the part with a real
// safety contract (path traversal rejection, deferred
// symlink resolution, cross-platform name validation). See
// Archive.Restore.
package cachearchive

import (
	"archive/tar"
	"bufio"
	"crypto/sha512"
	"io"
	"os"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// Archive is a handle on a single cache archive file, either freshly
// opened for restoration or mid-construction for creation.
type Archive struct {
	// Path is the location on disk of the archive itself.
	Path syspath.AbsoluteSystemPath
	// Anchor is the directory the archive's contents restore into.
	Anchor syspath.AbsoluteSystemPath

	// Create-path state.
	tw         *tar.Writer
	zw         io.WriteCloser
	fileBuffer *bufio.Writer

	// handle is the backing *os.File for a path-opened or freshly
	// created archive. It is nil for an Archive built over an arbitrary
	// io.Reader via OpenBuffer.
	handle *os.File

	// reader is the restore read source: either handle itself (Open) or
	// whatever OpenBuffer was given. It's kept distinct from handle so
	// that OpenBuffer can wrap a source with no on-disk file at all (an
	// in-memory buffer, a network stream already read into memory).
	reader io.Reader
	// closer is reader's io.Closer, if it has one; closed alongside
	// handle.
	closer io.Closer

	compressed bool
}

// Close flushes and releases every resource the Archive is holding,
// regardless of whether it was opened for reading or writing.
func (a *Archive) Close() error {
	if a.tw != nil {
		if err := a.tw.Close(); err != nil {
			return err
		}
	}

	if a.zw != nil {
		if err := a.zw.Close(); err != nil {
			return err
		}
	}

	if a.fileBuffer != nil {
		if err := a.fileBuffer.Flush(); err != nil {
			return err
		}
	}

	if a.handle != nil {
		if err := a.handle.Close(); err != nil {
			return err
		}
	}

	if a.handle == nil && a.closer != nil {
		if err := a.closer.Close(); err != nil {
			return err
		}
	}

	return nil
}

// GetSha returns the SHA-512 digest of the archive's raw bytes,
// independent of whether it is compressed. For a path-opened archive
// this is read straight off disk; for a buffer-sourced archive it
// consumes whatever of the underlying reader remains, so it must be
// called before (or instead of) Restore if both are needed.
func (a *Archive) GetSha() ([]byte, error) {
	sha := sha512.New()
	if _, err := io.Copy(sha, a.reader); err != nil {
		return nil, err
	}

	return sha.Sum(nil), nil
}
