package syspath

import (
	"os"
	"path/filepath"
)

// AbsoluteSystemPath is a root-relative path using system separators.
type AbsoluteSystemPath string

// For interface reasons, we stamp types so that the compiler prevents
// accidental mixing of Absolute/Anchored/Relative/System/Unix paths.
func (AbsoluteSystemPath) absolutePathStamp() {}
func (AbsoluteSystemPath) systemPathStamp()   {}

// ToString returns a string representation of this path. Used for
// interfacing with APIs that require a string.
func (p AbsoluteSystemPath) ToString() string {
	return string(p)
}

// RelativeTo calculates the relative path between two AbsoluteSystemPaths.
func (p AbsoluteSystemPath) RelativeTo(basePath AbsoluteSystemPath) (AnchoredSystemPath, error) {
	processed, err := filepath.Rel(basePath.ToString(), p.ToString())
	return AnchoredSystemPath(processed), err
}

// Join appends relative path segments to this AbsoluteSystemPath.
func (p AbsoluteSystemPath) Join(additional ...RelativeSystemPath) AbsoluteSystemPath {
	cast := RelativeSystemPathArray(additional)
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(cast.ToStringArray()...)))
}

// UntypedJoin appends raw path segments, for use with plain strings
// (test fixtures, hash-derived cache filenames, and the like).
func (p AbsoluteSystemPath) UntypedJoin(additional ...string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(append([]string{p.ToString()}, additional...)...))
}

// Dir returns the AbsoluteSystemPath of the parent directory.
func (p AbsoluteSystemPath) Dir() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Dir(p.ToString()))
}

// Mkdir implements os.Mkdir for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Mkdir(mode os.FileMode) error {
	return os.Mkdir(p.ToString(), mode)
}

// MkdirAll implements os.MkdirAll for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) MkdirAll(mode os.FileMode) error {
	return os.MkdirAll(p.ToString(), mode)
}

// OpenFile implements os.OpenFile for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) OpenFile(flags int, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(p.ToString(), flags, mode)
}

// Create implements os.Create for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Create() (*os.File, error) {
	return os.Create(p.ToString())
}

// Lstat implements os.Lstat for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Lstat() (os.FileInfo, error) {
	return os.Lstat(p.ToString())
}

// Readlink implements os.Readlink for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Readlink() (string, error) {
	return os.Readlink(p.ToString())
}

// Symlink implements os.Symlink(target, p) for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Symlink(target string) error {
	return os.Symlink(target, p.ToString())
}

// Remove implements os.Remove for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Remove() error {
	return os.Remove(p.ToString())
}

// FileExists returns true if the given path exists and is not a directory.
func (p AbsoluteSystemPath) FileExists() bool {
	info, err := p.Lstat()
	return err == nil && !info.IsDir()
}

// DirExists returns true if the given path exists and is a directory.
func (p AbsoluteSystemPath) DirExists() bool {
	info, err := p.Lstat()
	return err == nil && info.IsDir()
}
