// Package errutil contains small helpers to simplify working with errors
package errutil

import "io"

// Close closes the closer and assigns the resulting error to err if
// err doesn't already hold one. Meant to be used in a defer so a close
// failure isn't silently swallowed when the wrapped function already
// returned successfully.
func Close(c io.Closer, err *error) {
	e := c.Close()
	if *err == nil && e != nil {
		*err = e
	}
}
