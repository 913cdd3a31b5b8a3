package iovocab

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// UnresolvedTermError is returned when a term could not be fetched
// after all retries and no cached value exists.
type UnresolvedTermError struct {
	error
	gnlib.MessageBase
	URI      string
	Attempts int
}

// NewUnresolvedTermError creates an error naming the term URI and the
// number of fetch attempts made.
func NewUnresolvedTermError(uri string, attempts int, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Vocabulary Term Unresolved</title>

<warning>Could not resolve '%s' after %d attempt(s).</warning>

<em>Possible causes:</em>
  • The vocabulary authority is unreachable
  • The term URI is misspelled or retired

<em>How to fix:</em>
  1. Check the URI opens in a browser.

  2. Check network access to the authority, or point
     vocabulary.authority_url in emh.yaml at a mirror.

  3. Rerun when the authority is back; resolved terms are cached
     and reruns are cheap.
`,
		[]any{uri, attempts},
	)

	return UnresolvedTermError{
		error: fmt.Errorf(
			"cannot resolve term %q after %d attempts: %w",
			uri, attempts, cause,
		),
		MessageBase: userBase,
		URI:         uri,
		Attempts:    attempts,
	}
}

// CacheError is returned when the term cache cannot be opened or
// initialized.
type CacheError struct {
	error
	gnlib.MessageBase
	Path string
}

// NewCacheError creates an error for a broken term-cache store.
func NewCacheError(path string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Vocabulary Cache Unavailable</title>

<warning>Could not open the term cache at '%s'.</warning>

<em>How to fix:</em>
  1. Check the directory exists and is writable.

  2. If the file is corrupt, delete it; it will be rebuilt on the
     next run.
`,
		[]any{path},
	)

	return CacheError{
		error:       fmt.Errorf("cannot open term cache %q: %w", path, cause),
		MessageBase: userBase,
		Path:        path,
	}
}
