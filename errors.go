package critic

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrMissingCredential indicates no API key is configured. No external
	// call is made when this is returned.
	ErrMissingCredential = errors.New("missing API key: use /key or set GEMINI_API_KEY")

	// ErrEmptyPrompt indicates the user submitted only whitespace.
	ErrEmptyPrompt = errors.New("empty prompt")

	// ErrNoReferences indicates the reference folder yielded no text to
	// extract a style guide from.
	ErrNoReferences = errors.New("no reference files found")

	// ErrPersist indicates the turn succeeded but the snapshot could not be
	// written.
	ErrPersist = errors.New("save session")

	// ErrStreamNotReady indicates Reply() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
