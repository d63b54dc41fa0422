package cachearchive

import (
	"archive/tar"
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/DataDog/zstd"
	"github.com/moby/sys/sequential"

	"github.com/cachecraft/archivekit/internal/syspath"
	"github.com/cachecraft/archivekit/internal/tarpatch"
)

// Create opens a new Archive for writing at path. It exists so that
// tests (and anything that wants to round-trip a restore) can produce
// archives without shelling out to an external tar/zstd binary; it is
// not a general-purpose cache-writing API.
func Create(path syspath.AbsoluteSystemPath) (*Archive, error) {
	handle, err := path.OpenFile(os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return nil, wrapIO(err)
	}

	a := &Archive{
		Path:       path,
		handle:     handle,
		compressed: strings.HasSuffix(path.ToString(), ".zst"),
	}

	a.init()
	return a, nil
}

// init wires tar.Writer -> zstd.Writer (if compressed) -> fileBuffer -> file.
func (a *Archive) init() {
	fileBuffer := bufio.NewWriterSize(a.handle, 1<<20)

	var tw *tar.Writer
	if a.compressed {
		zw := zstd.NewWriter(fileBuffer)
		tw = tar.NewWriter(zw)
		a.zw = zw
	} else {
		tw = tar.NewWriter(fileBuffer)
	}

	a.tw = tw
	a.fileBuffer = fileBuffer
}

// AddFile appends a single file, directory, or symlink entry, read from
// fsAnchor/filePath on disk, to the archive under construction.
func (a *Archive) AddFile(fsAnchor syspath.AbsoluteSystemPath, filePath syspath.AnchoredSystemPath) error {
	sourcePath := filePath.RestoreAnchor(fsAnchor)

	fileInfo, err := sourcePath.Lstat()
	if err != nil {
		return wrapIO(err)
	}

	var link string
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		linkTarget, err := sourcePath.Readlink()
		if err != nil {
			return wrapIO(err)
		}
		link = linkTarget
	}

	cacheDestinationName := filePath.ToUnixPath()

	header, err := tarpatch.FileInfoHeader(cacheDestinationName, fileInfo, link)
	if err != nil {
		return wrapIO(err)
	}

	if header.Typeflag != tar.TypeReg && header.Typeflag != tar.TypeDir && header.Typeflag != tar.TypeSymlink {
		return errUnsupportedFileType(typeflagName(header.Typeflag))
	}

	// Cache entries are content-addressed; normalize away anything that
	// would make two otherwise-identical trees hash differently.
	header.Uid = 0
	header.Gid = 0
	header.AccessTime = time.Unix(0, 0)
	header.ModTime = time.Unix(0, 0)
	header.ChangeTime = time.Unix(0, 0)

	if err := a.tw.WriteHeader(header); err != nil {
		return wrapIO(err)
	}

	if header.Typeflag == tar.TypeReg && header.Size > 0 {
		sourceFile, err := sequential.OpenFile(sourcePath.ToString(), os.O_RDONLY, 0777)
		if err != nil {
			return wrapIO(err)
		}

		if _, err := io.Copy(a.tw, sourceFile); err != nil {
			_ = sourceFile.Close()
			return wrapIO(err)
		}

		return wrapIO(sourceFile.Close())
	}

	return nil
}
