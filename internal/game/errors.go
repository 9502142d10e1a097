package game

import "errors"

// Sentinel errors for content store failures. Callers classify failures
// with errors.Is; operational detail is added by wrapping at the call site.
var (
	// ErrInvalidName indicates a folder or file name that is empty or
	// becomes empty after sanitization.
	ErrInvalidName = errors.New("invalid name")

	// ErrPathEscape indicates a path that resolves outside its namespace
	// root. This is a security check and must run before any filesystem
	// read or mutation built from a user-supplied name.
	ErrPathEscape = errors.New("path escapes namespace root")

	// ErrNotFound indicates a missing folder or file.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a name collision, e.g. renaming an image to a
	// name that already exists.
	ErrConflict = errors.New("name already exists")

	// ErrParse indicates a quiz document that exists but is not valid JSON.
	ErrParse = errors.New("malformed quiz document")

	// ErrValidation indicates a quiz item missing a required field.
	ErrValidation = errors.New("invalid quiz item")

	// ErrCreateFailed indicates a folder that could not be verified to
	// exist after creation.
	ErrCreateFailed = errors.New("folder creation failed")
)
