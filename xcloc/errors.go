package xcloc

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by Load when a bundle is structurally incomplete.
// Check with errors.Is.
var (
	// ErrMissingManifest means the bundle has no contents.json.
	ErrMissingManifest = errors.New("contents.json not found")
	// ErrMissingTranslationFile means the .xliff file derived from the
	// manifest's targetLocale does not exist.
	ErrMissingTranslationFile = errors.New("translation file not found")
)

// FormatError reports a structurally invalid manifest or translation file,
// or a violated cross-file invariant (e.g. the xliff target-language not
// matching the manifest's targetLocale). FormatError is never transient:
// retrying the same call on the same bytes fails the same way.
type FormatError struct {
	// Path is the file the error refers to. Empty when parsing in-memory data.
	Path string
	// Reason is a human-readable description of what is wrong.
	Reason string
	// Err is the underlying decoder error, if any.
	Err error
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg != "" {
			msg += ": " + e.Err.Error()
		} else {
			msg = e.Err.Error()
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, msg)
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// formatErrf builds a *FormatError with a formatted reason and no path.
// Load/Save attach the path when propagating.
func formatErrf(err error, format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...), Err: err}
}
