// Package localcache is the primary external caller of cachearchive: it
// looks a content hash up in a directory of archive files and restores
// whichever one it finds into a destination anchor, doing the Open ->
// Restore -> Close sequence a real caller performs. Apart from Put,
// which writes an uncompressed "<hash>.tar" entry, nothing here manages
// the directory's contents (no uploading, metadata, or eviction).
//
// It is also where internal/config and internal/logger actually get
// consulted: Store is the orchestration layer around cachearchive, so
// it's the natural place to read ForceCompressed/AnchorBase and to
// print the one-line-per-restore summary, rather than threading a
// Config and a Logger through cachearchive's own restore loop.
package localcache

import (
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/cachecraft/archivekit/internal/cachearchive"
	"github.com/cachecraft/archivekit/internal/config"
	"github.com/cachecraft/archivekit/internal/logger"
	"github.com/cachecraft/archivekit/internal/syspath"
)

// Store is a directory of cache archive files, named "<hash>.tar" or
// "<hash>.tar.zst".
type Store struct {
	directory       syspath.AbsoluteSystemPath
	anchorBase      string
	forceCompressed bool
	summary         *logger.Summary
	hlog            hclog.Logger
}

// NewStore wraps an existing directory as a Store, with default
// configuration (current directory as the anchor base, info-level
// logging, no forced compression). It does not create the directory:
// callers that want a fresh cache should MkdirAll it themselves before
// handing it here, the same way the teacher's fsCache constructor does
// for its own cache directory.
func NewStore(directory syspath.AbsoluteSystemPath) *Store {
	return NewStoreFromConfig(directory, &config.Config{AnchorBase: ".", LogLevel: "info"})
}

// NewStoreFromConfig wraps directory as a Store governed by cfg: its
// AnchorBase resolves relative anchors (see ResolveAnchor), its
// LogLevel sets the structured logger's verbosity, and its
// ForceCompressed overrides compression detection for FetchBuffer,
// which has no path suffix to sniff.
func NewStoreFromConfig(directory syspath.AbsoluteSystemPath, cfg *config.Config) *Store {
	return &Store{
		directory:       directory,
		anchorBase:      cfg.AnchorBase,
		forceCompressed: cfg.ForceCompressed,
		summary:         logger.NewSummary(),
		hlog:            logger.New("localcache", cfg.HCLogLevel()),
	}
}

// ResolveAnchor joins a caller-supplied relative anchor onto the
// Store's configured AnchorBase, for callers that only have a
// repo-relative destination in hand rather than an absolute path.
func (s *Store) ResolveAnchor(relative string) (syspath.AbsoluteSystemPath, error) {
	abs, err := filepath.Abs(filepath.Join(s.anchorBase, relative))
	if err != nil {
		return "", err
	}
	return syspath.AbsoluteSystemPath(abs), nil
}

// Status reports whether a Fetch call found and restored an entry.
type Status struct {
	Local bool
}

// Fetch locates the archive for hash, if any, and restores it into
// anchor. A miss is not an error: Status.Local is false and the
// returned path list is nil.
func (s *Store) Fetch(anchor syspath.AbsoluteSystemPath, hash string) (Status, []syspath.AnchoredSystemPath, error) {
	uncompressed := s.directory.UntypedJoin(hash + ".tar")
	compressed := s.directory.UntypedJoin(hash + ".tar.zst")

	var archivePath syspath.AbsoluteSystemPath
	switch {
	case uncompressed.FileExists():
		archivePath = uncompressed
	case compressed.FileExists():
		archivePath = compressed
	default:
		return Status{Local: false}, nil, nil
	}

	archive, err := cachearchive.Open(archivePath)
	if err != nil {
		s.reportFailure(hash, err)
		return Status{Local: false}, nil, err
	}

	restored, err := archive.Restore(anchor)
	if err != nil {
		_ = archive.Close()
		s.reportFailure(hash, err)
		return Status{Local: false}, nil, err
	}

	if err := archive.Close(); err != nil {
		s.reportFailure(hash, err)
		return Status{Local: false}, restored, err
	}

	s.reportSuccess(hash, len(restored))
	return Status{Local: true}, restored, nil
}

// FetchBuffer is Fetch's counterpart for an archive that already lives
// in memory (e.g. just downloaded from a remote cache) rather than on
// disk under the Store's directory: it has no path suffix to sniff
// compression from, so the Store's configured ForceCompressed decides
// instead.
func (s *Store) FetchBuffer(anchor syspath.AbsoluteSystemPath, data io.Reader, hash string) (Status, []syspath.AnchoredSystemPath, error) {
	archive := cachearchive.OpenBuffer(data, s.forceCompressed)

	restored, err := archive.Restore(anchor)
	if err != nil {
		_ = archive.Close()
		s.reportFailure(hash, err)
		return Status{Local: false}, nil, err
	}

	if err := archive.Close(); err != nil {
		s.reportFailure(hash, err)
		return Status{Local: false}, restored, err
	}

	s.reportSuccess(hash, len(restored))
	return Status{Local: true}, restored, nil
}

// Put archives every path under fsAnchor named in paths into a new
// "<hash>.tar" entry, the create-side counterpart to Fetch.
func (s *Store) Put(hash string, fsAnchor syspath.AbsoluteSystemPath, paths []syspath.AnchoredSystemPath) error {
	archive, err := cachearchive.Create(s.directory.UntypedJoin(hash + ".tar"))
	if err != nil {
		return err
	}

	for _, p := range paths {
		if err := archive.AddFile(fsAnchor, p); err != nil {
			_ = archive.Close()
			return err
		}
	}

	return archive.Close()
}

// reportSuccess prints the one-line human summary for a completed
// restore and mirrors it to the structured logger.
func (s *Store) reportSuccess(hash string, fileCount int) {
	s.hlog.Info("restore complete", "hash", hash, "files", fileCount)
	s.summary.Println(s.summary.Successf("restored %d file(s) for %s", fileCount, hash))
}

// reportFailure prints the one-line human summary for an aborted
// restore (including cycle/traversal errors surfaced by cachearchive)
// and mirrors it to the structured logger.
func (s *Store) reportFailure(hash string, err error) {
	s.hlog.Error("restore failed", "hash", hash, "error", err)
	s.summary.Println(s.summary.Errorf("restore %s: %v", hash, err).Error())
}
