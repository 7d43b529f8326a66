package cmd

import (
	"errors"

	"modpack-server-installer/config"
	"modpack-server-installer/modpacks"
)

// Process exit codes.
const (
	exitOK              = 0
	exitFailure         = 1  // manifest could not be resolved, or any other fatal error
	exitStrict          = 2  // --strict and at least one file failed
	exitTermTooShort    = -1 // search term shorter than minTermLength
	exitTermInvalid     = -2 // search term is not printable UTF-8
	exitVersionNotFound = -4
	exitPathMissing     = -5
)

// errShowHelp asks Execute to print usage and exit cleanly.
var errShowHelp = errors.New("show help")

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeFor maps an error returned by a command to the process exit code.
func exitCodeFor(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, modpacks.ErrVersionNotFound):
		return exitVersionNotFound
	case errors.Is(err, config.ErrInstallPathMissing):
		return exitPathMissing
	default:
		return exitFailure
	}
}
