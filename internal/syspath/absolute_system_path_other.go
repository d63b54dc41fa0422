//go:build !darwin
// +build !darwin

package syspath

import "os"

// Lchmod is a no-op outside Darwin: Linux's Fchmodat does not support
// AT_SYMLINK_NOFOLLOW for mode changes, and Windows has no symlink
// permission bits to change.
func (p AbsoluteSystemPath) Lchmod(mode os.FileMode) error {
	return nil
}
