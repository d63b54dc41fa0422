package logger

import (
	"fmt"

	"github.com/fatih/color"
)

// PassSummary renders the same RESTORED/DEFERRED/FAILED banners as Summary
// but with a pass label ahead of the message, so restore's two-pass
// symlink resolution can be told apart in the human-facing log ("[pass 1]
// 40 files restored" vs "[pass 2] 3 deferred symlinks resolved").
type PassSummary struct {
	*Summary
	passLabel string
}

// NewPassSummary builds a PassSummary prefixed with label.
func NewPassSummary(label string) *PassSummary {
	return &PassSummary{
		Summary:   NewSummary(),
		passLabel: label,
	}
}

func (p *PassSummary) Successf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s%s", successPrefix, color.GreenString(" [%s] %s", p.passLabel, msg))
}

func (p *PassSummary) Warnf(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s%s", warningPrefix, color.YellowString(" [%s] %s", p.passLabel, msg))
}

func (p *PassSummary) Errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s%s", errorPrefix, color.RedString(" [%s] %s", p.passLabel, msg))
}
