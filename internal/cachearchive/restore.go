package cachearchive

import (
	"archive/tar"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/moby/sys/sequential"
	pkgerrors "github.com/pkg/errors"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// Open returns an existing Archive at the given path, ready for
// restoration. Compression is auto-detected from the ".zst" suffix.
func Open(path syspath.AbsoluteSystemPath) (*Archive, error) {
	handle, err := sequential.OpenFile(path.ToString(), os.O_RDONLY, 0777)
	if err != nil {
		return nil, wrapIO(err)
	}

	return &Archive{
		Path:       path,
		handle:     handle,
		reader:     handle,
		compressed: strings.HasSuffix(path.ToString(), ".zst"),
	}, nil
}

// OpenBuffer wraps an arbitrary reader as an Archive, with the caller
// declaring whether it is zstd-compressed. This is the entry point
// used when the archive's bytes came from somewhere other than the
// local filesystem (a content-addressed blob store, a remote-cache
// download already read into memory, an in-memory buffer assembled for
// a test, etc.) and so there is no path suffix to sniff and no backing
// file to reopen. If reader also implements io.Closer, Close releases
// it the same way it releases a path-opened handle.
func OpenBuffer(reader io.Reader, compressed bool) *Archive {
	closer, _ := reader.(io.Closer)
	return &Archive{
		reader:     reader,
		closer:     closer,
		compressed: compressed,
	}
}

// Restore extracts the archive's contents into anchor, returning the
// anchor-relative path of every entry that was restored, in the order
// entries were materialized (which, thanks to deferred symlinks, is not
// necessarily the order they appeared in the archive).
func (a *Archive) Restore(anchor syspath.AbsoluteSystemPath) (_ []syspath.AnchoredSystemPath, err error) {
	var tr *tar.Reader

	if a.compressed {
		zr := zstd.NewReader(a.reader)
		// zstd's Close just surfaces whatever error field the decompressor
		// accumulated; exceedingly unlikely to fire without some other
		// error having already fired first, but worth keeping. It becomes
		// the returned error only when nothing else failed.
		defer func() {
			if closeErr := zr.Close(); err == nil {
				err = wrapIO(closeErr)
			}
		}()
		tr = tar.NewReader(zr)
	} else {
		tr = tar.NewReader(a.reader)
	}

	var deferredSymlinks []*tar.Header
	restored := make([]syspath.AnchoredSystemPath, 0)

	if err := anchor.MkdirAll(0755); err != nil {
		return nil, wrapIO(err)
	}

	// Fast-path assumptions: entries are depth-first and every directory
	// is enumerated before its children. Violating them doesn't corrupt
	// anything, it just means dirCache stops paying for itself until the
	// next entry that shares a prefix with it again.
	dirCache := &cachedDirTree{
		anchorAtDepth: []syspath.AbsoluteSystemPath{anchor},
		prefix:        []syspath.RelativeSystemPath{},
	}

	for {
		header, trErr := tr.Next()
		if trErr == io.EOF {
			symlinksRestored, symlinksErr := topologicallyRestoreSymlinks(dirCache, anchor, deferredSymlinks, tr)
			restored = append(restored, symlinksRestored...)
			if symlinksErr != nil {
				return restored, symlinksErr
			}
			break
		}
		if trErr != nil {
			return restored, wrapIO(trErr)
		}

		entry, restoreErr := restoreEntry(dirCache, anchor, header, tr)
		if restoreErr != nil {
			if pkgerrors.Is(restoreErr, errMissingSymlinkTarget) {
				// Links get one shot at being valid immediately; after
				// that they're accumulated, topologically sorted, and
				// restored on a second pass.
				deferredSymlinks = append(deferredSymlinks, header)
				continue
			}
			return restored, restoreErr
		}
		restored = append(restored, entry)
	}

	return restored, nil
}

// restoreEntry dispatches a single tar entry to its type-specific
// restorer. Any entry kind other than directory, regular file, or
// symlink is rejected: a failure to restore an entry safely stops the
// whole operation before more damage is done.
func restoreEntry(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, header *tar.Header, reader *tar.Reader) (syspath.AnchoredSystemPath, error) {
	switch header.Typeflag {
	case tar.TypeDir:
		return restoreDirectory(dirCache, anchor, header)
	case tar.TypeReg:
		return restoreRegular(dirCache, anchor, header, reader)
	case tar.TypeSymlink:
		return restoreSymlink(dirCache, anchor, header)
	default:
		return "", errUnsupportedFileType(typeflagName(header.Typeflag))
	}
}

// typeflagName names a tar.Typeflag the way archive/tar's own constant
// names read (TypeLink, TypeChar, ...), since this string is part of
// the byte-stable error surface.
func typeflagName(flag byte) string {
	switch flag {
	case tar.TypeLink:
		return "Link"
	case tar.TypeChar:
		return "Char"
	case tar.TypeBlock:
		return "Block"
	case tar.TypeFifo:
		return "Fifo"
	default:
		return string(flag)
	}
}

// canonicalizeName turns a tar entry's raw name into an AnchoredSystemPath,
// rejecting anything that is malformed or, on Windows, unsafe.
func canonicalizeName(name string) (syspath.AnchoredSystemPath, error) {
	wellFormed, windowsSafe := checkName(name)

	if !wellFormed {
		return "", errMalformedName(name)
	}

	if runtime.GOOS == "windows" && !windowsSafe {
		return "", errNameWindowsUnsafe
	}

	noTrailingSlash := strings.TrimSuffix(name, "/")

	return syspath.AnchoredUnixPath(noTrailingSlash).ToSystemPath(), nil
}

// checkName reports wellFormed, windowsSafe via inspection of
// separators and traversal sequences. It never touches the filesystem.
func checkName(name string) (wellFormed bool, windowsSafe bool) {
	if len(name) == 0 {
		return false, false
	}

	wellFormed = true
	windowsSafe = true

	if name == "." || name == ".." {
		wellFormed = false
	}

	if wellFormed && (strings.HasPrefix(name, "/") || strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../")) {
		wellFormed = false
	}

	if wellFormed && (strings.HasSuffix(name, "/.") || strings.HasSuffix(name, "/..")) {
		wellFormed = false
	}

	if wellFormed && (strings.Contains(name, "//") || strings.Contains(name, "/./") || strings.Contains(name, "/../")) {
		wellFormed = false
	}

	if strings.ContainsRune(name, '\\') {
		windowsSafe = false
	}

	return wellFormed, windowsSafe
}
