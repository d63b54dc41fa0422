package syspath

import "path/filepath"

// AnchoredUnixPath is a path stemming from a specified root, using Unix
// `/` separators. This is how logical paths are stored inside the tar
// archive itself, regardless of the restoring host's platform.
type AnchoredUnixPath string

// ToString returns a string representation of this path.
func (p AnchoredUnixPath) ToString() string {
	return string(p)
}

// ToSystemPath converts an AnchoredUnixPath to an AnchoredSystemPath,
// translating separators for the current platform.
func (p AnchoredUnixPath) ToSystemPath() AnchoredSystemPath {
	return AnchoredSystemPath(filepath.FromSlash(p.ToString()))
}
