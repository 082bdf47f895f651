// Package errutil holds small helpers for propagating errors through
// defer chains without silently dropping one.
package errutil

import "io"

// Close calls c.Close() and, if the deferred function's named return
// error is still nil, assigns the Close error to it. A non-nil err
// always takes precedence over a close failure.
func Close(c io.Closer, err *error) {
	if closeErr := c.Close(); closeErr != nil && *err == nil {
		*err = closeErr
	}
}
