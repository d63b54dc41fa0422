package cachearchive

import "os"

// Clean is a local copy of path/filepath's Clean, trimmed to what this
// package needs: separator and ".."/"." collapsing using the host's
// os.PathSeparator, with no volume-name handling. It exists so that
// canonicalizeLinkname can lexically resolve a symlink's recorded
// target without ever touching the filesystem (and so without being
// fooled by a target that is swapped out between validation and use).
func Clean(path string) string {
	if path == "" {
		return "."
	}

	sep := byte(os.PathSeparator)
	rooted := path[0] == sep
	n := len(path)

	out := make([]byte, 0, n)
	r, dotdot := 0, 0
	if rooted {
		out = append(out, sep)
		r, dotdot = 1, 1
	}

	for r < n {
		switch {
		case path[r] == sep:
			r++
		case path[r] == '.' && (r+1 == n || path[r+1] == sep):
			r++
		case path[r] == '.' && path[r+1] == '.' && (r+2 == n || path[r+2] == sep):
			r += 2
			switch {
			case len(out) > dotdot:
				i := len(out) - 1
				for i > dotdot && out[i] != sep {
					i--
				}
				out = out[:i]
			case !rooted:
				if len(out) > 0 {
					out = append(out, sep)
				}
				out = append(out, '.', '.')
				dotdot = len(out)
			}
		default:
			if (rooted && len(out) != 1) || (!rooted && len(out) != 0) {
				out = append(out, sep)
			}
			for ; r < n && path[r] != sep; r++ {
				out = append(out, path[r])
			}
		}
	}

	if len(out) == 0 {
		return "."
	}
	return string(out)
}
