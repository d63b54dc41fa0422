package cachearchive

import (
	"os"
	"strings"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// cachedDirTree remembers the directory chain most recently materialized
// during a restore. Entries are assumed to arrive depth-first (every
// directory appears in the archive before its children), so instead of
// lstat-ing every ancestor of every entry we keep the anchor for each
// depth of the last path we walked and reuse whatever prefix still
// matches. A path that diverges from the cached chain simply falls back
// to its own shared prefix with it, which is always at least the root
// anchor.
type cachedDirTree struct {
	// anchorAtDepth[i] is the AbsoluteSystemPath reached after consuming
	// prefix[:i] path segments. anchorAtDepth[0] is always the restore
	// anchor.
	anchorAtDepth []syspath.AbsoluteSystemPath

	// prefix is the path segments (relative to the anchor) of the last
	// directory chain that was walked.
	prefix []syspath.RelativeSystemPath
}

// getStartingPoint returns the deepest cached anchor that is a prefix of
// path, along with the remaining segments of path beyond that anchor.
func (cr *cachedDirTree) getStartingPoint(path syspath.AnchoredSystemPath) (syspath.AbsoluteSystemPath, []syspath.RelativeSystemPath) {
	pathSegments := splitAnchoredPath(path)

	shared := 0
	for shared < len(cr.prefix) && shared < len(pathSegments) && cr.prefix[shared] == pathSegments[shared] {
		shared++
	}

	return cr.anchorAtDepth[shared], pathSegments[shared:]
}

// update records that the directory chain for path now exists on disk,
// so that a subsequent sibling or descendant entry can reuse as much of
// it as possible.
func (cr *cachedDirTree) update(anchor syspath.AbsoluteSystemPath, path syspath.AnchoredSystemPath) {
	pathSegments := splitAnchoredPath(path)

	anchorAtDepth := make([]syspath.AbsoluteSystemPath, len(pathSegments)+1)
	anchorAtDepth[0] = anchor
	walked := anchor
	for i, segment := range pathSegments {
		walked = walked.UntypedJoin(segment.ToString())
		anchorAtDepth[i+1] = walked
	}

	cr.anchorAtDepth = anchorAtDepth
	cr.prefix = pathSegments
}

func splitAnchoredPath(path syspath.AnchoredSystemPath) []syspath.RelativeSystemPath {
	raw := path.ToString()
	if raw == "" || raw == "." {
		return []syspath.RelativeSystemPath{}
	}
	parts := strings.Split(raw, string(os.PathSeparator))
	segments := make([]syspath.RelativeSystemPath, len(parts))
	for i, part := range parts {
		segments[i] = syspath.RelativeSystemPath(part)
	}
	return segments
}
