package cachearchive

import (
	"archive/tar"
	"os"
	"path/filepath"
	"strings"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// restoreDirectory restores a directory entry.
func restoreDirectory(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, header *tar.Header) (syspath.AnchoredSystemPath, error) {
	processedName, err := canonicalizeName(header.Name)
	if err != nil {
		return "", err
	}

	if err := safeMkdirAll(dirCache, anchor, processedName, header.Mode); err != nil {
		return "", err
	}

	return processedName, nil
}

// safeMkdirAll creates every directory in processedName, walking from
// the anchor (or as much of the cached chain as still applies) one
// segment at a time so that a symlink planted partway down cannot be
// used to escape the anchor.
func safeMkdirAll(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, processedName syspath.AnchoredSystemPath, mode int64) error {
	calculatedAnchor, pathSegments := dirCache.getStartingPoint(processedName)

	var checkPathErr error
	for _, segment := range pathSegments {
		calculatedAnchor, checkPathErr = checkPath(anchor, calculatedAnchor, segment)
		if checkPathErr != nil {
			return checkPathErr
		}
	}

	if err := processedName.RestoreAnchor(anchor).MkdirAll(os.FileMode(mode)); err != nil {
		return wrapIO(err)
	}

	dirCache.update(anchor, processedName)
	return nil
}

// maxSymlinkChainDepth bounds how many hops checkPath will follow
// through a single path segment before giving up, matching the kind of
// ELOOP guard the OS itself enforces (Linux's MAXSYMLINKS is 40).
const maxSymlinkChainDepth = 40

// checkPath walks a single path segment, refusing to proceed through a
// symlink whose target (absolute or resolved-relative) would land
// outside of originalAnchor. A segment's on-disk entry may itself be a
// chain of symlinks (symlink -> symlink -> ...); every hop in that
// chain is re-validated against originalAnchor, not just the first one,
// since the OS will transitively resolve all of them on the eventual
// real open/mkdir call.
func checkPath(originalAnchor syspath.AbsoluteSystemPath, accumulatedAnchor syspath.AbsoluteSystemPath, segment syspath.RelativeSystemPath) (syspath.AbsoluteSystemPath, error) {
	// A segment that is itself absolute (CON, AUX, and friends aside,
	// this is mostly a Windows concern) is never legitimate input.
	if filepath.IsAbs(segment.ToString()) {
		return "", errTraversal(segment.ToString())
	}

	current := accumulatedAnchor.Join(segment)

	for hop := 0; hop < maxSymlinkChainDepth; hop++ {
		fileInfo, err := current.Lstat()

		// Failing to stat means there's nothing there yet; that's safe.
		if err != nil {
			return current, nil
		}

		if fileInfo.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}

		// It's a symlink. We don't resolve it fully (that could land us
		// somewhere entirely different); we only check where it points,
		// then continue the walk from there in case it too is a symlink.
		linkTarget, readLinkErr := current.Readlink()
		if readLinkErr != nil {
			return "", wrapIO(readLinkErr)
		}

		var resolved syspath.AbsoluteSystemPath
		if filepath.IsAbs(linkTarget) {
			resolved = syspath.AbsoluteSystemPath(linkTarget)
		} else {
			resolved = syspath.AbsoluteSystemPath(filepath.Join(current.Dir().ToString(), linkTarget))
		}

		if !strings.HasPrefix(resolved.ToString(), originalAnchor.ToString()) {
			return "", errTraversal(linkTarget)
		}

		current = resolved
	}

	return "", errTraversal(current.ToString())
}
