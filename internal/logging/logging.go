// Package logging provides the small leveled logger used by vaultctl and by
// the vault session for idle-timer bookkeeping. Secrets are never logged.
package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Logger writes leveled, prefixed messages. The zero value shows only
// warnings and errors.
type Logger struct {
	Verbose bool
	Debug   bool
}

// Infof is shown with Verbose or Debug.
func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		fmt.Fprintf(os.Stdout, color.GreenString("[info] ")+msg+"\n", args...)
	}
}

// Debugf is shown only with Debug.
func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		fmt.Fprintf(os.Stdout, color.CyanString("[debug] ")+msg+"\n", args...)
	}
}

// Warnf is always shown.
func (l Logger) Warnf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.YellowString("[warn] ")+msg+"\n", args...)
}

// Errorf is always shown.
func (l Logger) Errorf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, color.RedString("[error] ")+msg+"\n", args...)
}
