package syspath

import "path/filepath"

// AnchoredSystemPath is a path stemming from a specified root, using
// system separators.
type AnchoredSystemPath string

// ToString returns a string representation of this path.
func (p AnchoredSystemPath) ToString() string {
	return string(p)
}

// ToUnixPath converts an AnchoredSystemPath to an AnchoredUnixPath.
func (p AnchoredSystemPath) ToUnixPath() AnchoredUnixPath {
	return AnchoredUnixPath(filepath.ToSlash(p.ToString()))
}

// Dir returns the AnchoredSystemPath of the parent directory. Returns "."
// for a root-level entry.
func (p AnchoredSystemPath) Dir() AnchoredSystemPath {
	return AnchoredSystemPath(filepath.Dir(p.ToString()))
}

// RestoreAnchor prefixes the AnchoredSystemPath with its anchor, producing
// an AbsoluteSystemPath.
func (p AnchoredSystemPath) RestoreAnchor(anchor AbsoluteSystemPath) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(anchor.ToString(), p.ToString()))
}

// Join appends relative path segments to this AnchoredSystemPath.
func (p AnchoredSystemPath) Join(additional ...RelativeSystemPath) AnchoredSystemPath {
	cast := RelativeSystemPathArray(additional)
	return AnchoredSystemPath(filepath.Join(p.ToString(), filepath.Join(cast.ToStringArray()...)))
}
