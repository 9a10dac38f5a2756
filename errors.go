// FILE: tunable/errors.go
package tunable

import (
	"errors"
	"fmt"
)

// Errors returned by spec operations. Use errors.Is to match them.
var (
	// ErrManifestParse indicates malformed manifest JSON or a malformed entry.
	ErrManifestParse = errors.New("manifest parse error")

	// ErrColorParse indicates text that matches no supported color grammar.
	ErrColorParse = errors.New("color parse error")

	// ErrKeyNotFound indicates a read of an undeclared key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch indicates the stored kind differs from the requested kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrCallback indicates a bound callback returned an error.
	ErrCallback = errors.New("binding callback failed")

	// ErrInvalidValue indicates a double that is NaN or infinite.
	ErrInvalidValue = errors.New("invalid value")

	// ErrSpecNotFound indicates no manifest file exists for a spec name.
	ErrSpecNotFound = errors.New("spec manifest not found")
)

// ManifestParseError describes a manifest that could not be read, or a single
// entry that was skipped during import. Index is -1 for document-level errors.
type ManifestParseError struct {
	Index  int
	Key    string
	Reason string
	Err    error
}

func (e *ManifestParseError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("manifest: %s", e.Reason)
	case e.Key != "":
		return fmt.Sprintf("manifest entry %d (%q): %s", e.Index, e.Key, e.Reason)
	default:
		return fmt.Sprintf("manifest entry %d: %s", e.Index, e.Reason)
	}
}

// Is makes errors.Is(err, ErrManifestParse) match.
func (e *ManifestParseError) Is(target error) bool {
	return target == ErrManifestParse
}

// Unwrap returns the underlying error.
func (e *ManifestParseError) Unwrap() error {
	return e.Err
}

// ColorParseError carries the text that failed to parse as a color.
type ColorParseError struct {
	Text   string
	Reason string
}

func (e *ColorParseError) Error() string {
	return fmt.Sprintf("cannot parse color %q: %s", e.Text, e.Reason)
}

// Is makes errors.Is(err, ErrColorParse) match.
func (e *ColorParseError) Is(target error) bool {
	return target == ErrColorParse
}

// KeyNotFoundError is returned when a key is not declared in the spec.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %s", e.Key)
}

// Is makes errors.Is(err, ErrKeyNotFound) match.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// TypeMismatchError is returned when a key is read or written as the wrong kind.
type TypeMismatchError struct {
	Key    string
	Stored Kind
	Wanted Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for key %s: stored %s, requested %s", e.Key, e.Stored, e.Wanted)
}

// Is makes errors.Is(err, ErrTypeMismatch) match.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// CallbackError wraps an error returned by a bound callback. Bindings
// registered after the failing one were not notified.
type CallbackError struct {
	Key string
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("binding callback for key %s failed: %v", e.Key, e.Err)
}

// Is makes errors.Is(err, ErrCallback) match.
func (e *CallbackError) Is(target error) bool {
	return target == ErrCallback
}

// Unwrap returns the callback's error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}
