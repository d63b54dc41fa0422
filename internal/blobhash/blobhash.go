// Package blobhash computes a git-blob-style content hash for a file,
// the way a local cache keys its entries without needing an actual git
// repository around. It is a lookup key, not part of the restore
// engine's safety contract, so it is kept stdlib-only: crypto/sha1 and
// os are already exactly what this needs, and pulling in a third-party
// hashing library for one well-known, fixed-format digest would add a
// dependency with nothing for it to do beyond what the standard
// library already does correctly.
package blobhash

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strconv"

	"github.com/cachecraft/archivekit/internal/syspath"
)

// GitLikeHash mimics Git's blob hashing (sha1("blob " + size + NUL + contents))
// without requiring a git repository, so cache entries can be addressed
// by content the same way Git addresses blobs.
func GitLikeHash(path syspath.AbsoluteSystemPath) (string, error) {
	file, err := path.OpenFile(os.O_RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	hash := sha1.New()
	hash.Write([]byte("blob "))
	hash.Write([]byte(strconv.FormatInt(stat.Size(), 10)))
	hash.Write([]byte{0})

	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
