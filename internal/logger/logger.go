// Package logger renders restore progress two ways: structured log
// lines via hclog, for anything that wants to pipe logs elsewhere, and
// a human-facing one-line summary with RESTORED/DEFERRED/FAILED banners
// for interactive terminals.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
)

// IsTTY reports whether stdout looks like an interactive terminal.
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var successPrefix = color.New(color.Bold, color.FgGreen, color.ReverseVideo).Sprint(" RESTORED ")
var warningPrefix = color.New(color.Bold, color.FgYellow, color.ReverseVideo).Sprint(" DEFERRED ")
var errorPrefix = color.New(color.Bold, color.FgRed, color.ReverseVideo).Sprint(" FAILED ")

// New builds the structured logger that localcache.Store uses for its
// per-restore outcome lines. Level is read from Config.LogLevel (see
// internal/config).
func New(name string, level hclog.Level) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: level,
		Output: os.Stderr,
	})
}

// Summary renders the one-line human-facing banner printed after a
// restore completes.
type Summary struct {
	Out io.Writer
}

// NewSummary builds a Summary that writes to stdout.
func NewSummary() *Summary {
	return &Summary{Out: os.Stdout}
}

// Successf reports a clean restore: every entry in the archive landed
// on disk.
func (s *Summary) Successf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s%s", successPrefix, color.GreenString(" %s", msg))
}

// Warnf reports a restore that completed but deferred or skipped
// something non-fatal (e.g. a clobbered symlink).
func (s *Summary) Warnf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s%s", warningPrefix, color.YellowString(" %s", msg))
}

// Errorf reports a restore that aborted. The returned value is an
// error so callers can return it directly while still getting the
// colorized banner in its message.
func (s *Summary) Errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s%s", errorPrefix, color.RedString(" %s", msg))
}

// Println writes a banner-formatted line (as produced by Successf,
// Warnf, or Errorf.Error()) to the summary's output.
func (s *Summary) Println(line string) {
	fmt.Fprintln(s.Out, line)
}
