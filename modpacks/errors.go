package modpacks

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestUnavailable means catalog data could not be fetched: the
	// request failed, the status was not 2xx or the API answered with an error.
	ErrManifestUnavailable = errors.New("manifest unavailable")
	// ErrManifestMalformed means the catalog answered with JSON that is
	// missing required fields or has fields of the wrong type.
	ErrManifestMalformed = errors.New("manifest malformed")
	// ErrVersionNotFound means no version of the pack matched the selection.
	ErrVersionNotFound = errors.New("version not found")
)

// TransferError reports a failed download of a single file.
type TransferError struct {
	File  string
	Cause error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer of '%s' failed: %v", e.File, e.Cause)
}

func (e *TransferError) Unwrap() error {
	return e.Cause
}
