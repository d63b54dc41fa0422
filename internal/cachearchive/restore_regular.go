package cachearchive

import (
	"archive/tar"
	"io"
	"os"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// restoreRegular restores a plain file, streaming exactly the bytes the
// tar header says it has.
func restoreRegular(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, header *tar.Header, reader *tar.Reader) (syspath.AnchoredSystemPath, error) {
	processedName, err := canonicalizeName(header.Name)
	if err != nil {
		return "", err
	}

	if err := safeMkdirFile(dirCache, anchor, processedName, header.Mode); err != nil {
		return "", err
	}

	f, err := processedName.RestoreAnchor(anchor).OpenFile(os.O_WRONLY|os.O_TRUNC|os.O_CREATE, os.FileMode(header.Mode))
	if err != nil {
		return "", wrapIO(err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return "", wrapIO(err)
	}
	if err := f.Close(); err != nil {
		return "", wrapIO(err)
	}

	return processedName, nil
}

// safeMkdirFile ensures the parent directory of a file entry exists and
// is safe to descend into, without trying to mkdir the file's own name.
func safeMkdirFile(dirCache *cachedDirTree, anchor syspath.AbsoluteSystemPath, processedName syspath.AnchoredSystemPath, mode int64) error {
	if processedName.Dir() == "." {
		return nil
	}

	return safeMkdirAll(dirCache, anchor, processedName.Dir(), 0755)
}
