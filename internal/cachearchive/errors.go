package cachearchive

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for the restore engine's failure taxonomy (spec §7).
// Surface strings are part of the contract and must stay byte-stable.
var (
	// errMissingSymlinkTarget is internal-only: it signals the dispatcher
	// to defer the current symlink entry to pass 2. It is never returned
	// from Restore.
	errMissingSymlinkTarget = errors.New("symlink restoration is delayed")

	// errCycleDetected surfaces when pass 2's topological sort finds a
	// cycle among deferred symlinks.
	errCycleDetected = errors.New("links in the cache are cyclic")

	// errNameWindowsUnsafe surfaces, on Windows only, when an otherwise
	// well-formed entry name contains a backslash.
	errNameWindowsUnsafe = errors.New("file name is not Windows-safe")
)

// malformedNameError carries the offending name so the surface string can
// include it while still satisfying errors.Is against any other
// malformedNameError, whatever name it carries.
type malformedNameError struct {
	name string
}

func (e *malformedNameError) Error() string {
	return fmt.Sprintf("file name is malformed: %s", e.name)
}

func (e *malformedNameError) Is(target error) bool {
	_, ok := target.(*malformedNameError)
	return ok
}

func errMalformedName(name string) error {
	return &malformedNameError{name: name}
}

// unsupportedFileTypeError carries the tar entry kind that was rejected.
type unsupportedFileTypeError struct {
	kind string
}

func (e *unsupportedFileTypeError) Error() string {
	return fmt.Sprintf("attempted to restore unsupported file type: %s", e.kind)
}

func (e *unsupportedFileTypeError) Is(target error) bool {
	_, ok := target.(*unsupportedFileTypeError)
	return ok
}

func errUnsupportedFileType(kind string) error {
	return &unsupportedFileTypeError{kind: kind}
}

// writeOutsideDirectoryError carries what escaped the anchor: usually a
// symlink's target exactly as recorded on disk (e.g. "../"), otherwise
// the offending path segment or path.
type writeOutsideDirectoryError struct {
	target string
}

func (e *writeOutsideDirectoryError) Error() string {
	return fmt.Sprintf("tar attempts to write outside of directory: %s", e.target)
}

func (e *writeOutsideDirectoryError) Is(target error) bool {
	_, ok := target.(*writeOutsideDirectoryError)
	return ok
}

func errTraversal(target string) error {
	return &writeOutsideDirectoryError{target: target}
}

// wrapIO annotates a lower-level I/O or decompression failure with the
// "IO error: " prefix mandated by spec §7, while keeping the original
// error reachable via errors.Unwrap/errors.Is.
func wrapIO(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, "IO error")
}
