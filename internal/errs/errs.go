// Package errs has helpers for errors returned by deferred calls.
package errs

import (
	"fmt"
	"testing"

	"go.uber.org/multierr"
)

// Capture runs errF, usually a deferred Close, and merges its error into
// *err. An existing *err is kept and combined with the new error in a
// multierr. If msg is non-empty, it prefixes the errF error.
func Capture(err *error, errF func() error, msg string) {
	fErr := errF()
	if fErr == nil {
		return
	}
	if msg != "" {
		fErr = fmt.Errorf(msg+": %w", fErr)
	}
	multierr.AppendInto(err, fErr)
}

// CaptureT runs errF and fails the test if it returns an error.
func CaptureT(t testing.TB, errF func() error, msg string) {
	t.Helper()
	if err := errF(); err != nil {
		if msg == "" {
			t.Error(err)
		} else {
			t.Errorf(msg+": %s", err)
		}
	}
}
