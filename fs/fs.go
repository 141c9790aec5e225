// Package fs implements [critic.Sampler] over the local filesystem.
//
// A folder is listed with doublestar, filtered to plain-text extensions and
// an optional .criticignore file, shuffled, and read file by file until a
// character budget is spent. Every failure degrades to less text; failures
// are reported to an optional skip handler instead of the caller.
package fs

import "errors"

// IgnoreFile is the gitignore-syntax file honored in each sampled folder.
const IgnoreFile = ".criticignore"

// DefaultExtensions are the file extensions treated as prose.
var DefaultExtensions = []string{"txt", "md", "markdown"}

// ErrNotUTF8 is reported for files that do not decode as UTF-8.
var ErrNotUTF8 = errors.New("not valid UTF-8")
