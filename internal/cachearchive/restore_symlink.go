package cachearchive

import (
	"archive/tar"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pyr-sh/dag"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// restoreSymlink restores a symlink, refusing (for now) if its target
// does not yet exist on disk. The caller is expected to catch
// errMissingSymlinkTarget and retry this entry in a later pass, once
// more of the archive has been materialized.
func restoreSymlink(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, header *tar.Header) (syspath.AnchoredSystemPath, error) {
	processedName, err := canonicalizeName(header.Name)
	if err != nil {
		return "", err
	}

	processedLinkname := canonicalizeLinkname(anchor, processedName, header.Linkname)
	if _, err := os.Lstat(processedLinkname); err != nil {
		if os.IsNotExist(err) {
			return "", errMissingSymlinkTarget
		}
		return "", wrapIO(err)
	}

	return actuallyRestoreSymlink(dirCache, anchor, processedName, header)
}

// restoreSymlinkMissingTarget restores a symlink without checking
// whether its target exists. It is only safe to call once the target
// has already been scheduled ahead of this entry by the topological
// pass below.
func restoreSymlinkMissingTarget(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, header *tar.Header) (syspath.AnchoredSystemPath, error) {
	processedName, err := canonicalizeName(header.Name)
	if err != nil {
		return "", err
	}

	return actuallyRestoreSymlink(dirCache, anchor, processedName, header)
}

func actuallyRestoreSymlink(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, processedName syspath.AnchoredSystemPath, header *tar.Header) (syspath.AnchoredSystemPath, error) {
	if err := safeMkdirFile(dirCache, anchor, processedName, header.Mode); err != nil {
		return "", err
	}

	symlinkFrom := processedName.RestoreAnchor(anchor)

	// An existing entry at this path is expected when a later archive
	// entry clobbers an earlier one; remove it and let creation fail if
	// something more surprising is actually going on.
	_ = symlinkFrom.Remove()

	// The link target is restored verbatim from header.Linkname: no
	// slash conversion, since we can't safely tell which platform it was
	// authored for.
	if err := symlinkFrom.Symlink(header.Linkname); err != nil {
		return "", wrapIO(err)
	}

	if err := symlinkFrom.Lchmod(fs.FileMode(header.Mode)); err != nil {
		return "", wrapIO(err)
	}

	return processedName, nil
}

// topologicallyRestoreSymlinks materializes every deferred symlink,
// ensuring each target is created before the link that points at it.
// Building the graph also reveals any cycle among the deferred links,
// which is unrestorable by construction.
func topologicallyRestoreSymlinks(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, symlinks []*tar.Header, tr *tar.Reader) ([]syspath.AnchoredSystemPath, error) {
	restored := make([]syspath.AnchoredSystemPath, 0)
	lookup := make(map[string]*tar.Header)

	var g dag.AcyclicGraph
	for _, header := range symlinks {
		processedName, err := canonicalizeName(header.Name)
		if err != nil {
			return nil, err
		}
		processedSourcename := canonicalizeLinkname(anchor, processedName, processedName.ToString())
		processedLinkname := canonicalizeLinkname(anchor, processedName, header.Linkname)

		g.Add(processedSourcename)
		g.Add(processedLinkname)
		g.Connect(dag.BasicEdge(processedLinkname, processedSourcename))
		lookup[processedSourcename] = header
	}

	if cycles := g.Cycles(); cycles != nil {
		return restored, errCycleDetected
	}

	roots := make(dag.Set)
	for _, v := range g.Vertices() {
		if g.UpEdges(v).Len() == 0 {
			roots.Add(v)
		}
	}

	walkFunc := func(vertex dag.Vertex, depth int) error {
		key, ok := vertex.(string)
		if !ok {
			return nil
		}
		header, exists := lookup[key]
		if !exists {
			return nil
		}

		file, restoreErr := restoreSymlinkMissingTarget(dirCache, anchor, header)
		if restoreErr != nil {
			return restoreErr
		}

		restored = append(restored, file)
		return nil
	}

	if walkErr := g.DepthFirstWalk(roots, walkFunc); walkErr != nil {
		return restored, walkErr
	}

	return restored, nil
}

// canonicalizeLinkname lexically determines what processedName's target
// resolves to if linkname is restored verbatim, without ever consulting
// the filesystem. A target is either already absolute (by the rules of
// the host platform) or is joined relative to the symlink's own parent
// directory.
func canonicalizeLinkname(anchor syspath.AbsoluteSystemPath, processedName syspath.AnchoredSystemPath, linkname string) string {
	cleanedLinkname := Clean(linkname)

	if filepath.IsAbs(cleanedLinkname) {
		return cleanedLinkname
	}

	source := processedName.RestoreAnchor(anchor)
	canonicalized := source.Dir().ToString() + string(os.PathSeparator) + cleanedLinkname
	return Clean(canonicalized)
}
