package main

import (
	"errors"

	"github.com/amonks/tasknotes/internal/ids"
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

func (e exitError) ExitCode() int {
	return e.code
}

// exitCodeNotFound is used when an id or prefix names nothing.
const exitCodeNotFound = 3

// lookupError gives id resolution failures their own exit code.
func lookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ids.ErrNotFound) || errors.Is(err, ids.ErrAmbiguousPrefix) {
		return exitError{code: exitCodeNotFound, err: err}
	}
	return err
}
