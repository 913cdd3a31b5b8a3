package ioerddap

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// ConflictError is returned when the store cannot be read or replaced.
// The original file is left untouched.
type ConflictError struct {
	error
	gnlib.MessageBase
	Path string
}

// NewConflictError creates an error for a failed store update.
func NewConflictError(path string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Store Update Failed</title>

<warning>Could not update '%s'. The file was not modified.</warning>

<em>How to fix:</em>
  1. Check the file and its directory are writable.

  2. The previous state is preserved; rerun once the problem is
     fixed.
`,
		[]any{path},
	)

	return ConflictError{
		error:       fmt.Errorf("cannot update store %q: %w", path, cause),
		MessageBase: userBase,
		Path:        path,
	}
}

// LockError is returned when the store lock cannot be taken.
type LockError struct {
	error
	gnlib.MessageBase
	Path string
}

// NewLockError creates an error for a held or unreachable store lock.
func NewLockError(path string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Store Is Locked</title>

<warning>Another process is updating '%s'.</warning>

<em>How to fix:</em>
  1. Wait for the other run to finish and retry.

  2. If no other run exists, remove the stale lock:
     <em>rm %s.lock</em>
`,
		[]any{path, path},
	)

	return LockError{
		error:       fmt.Errorf("cannot lock store %q: %w", path, cause),
		MessageBase: userBase,
		Path:        path,
	}
}

// BackupError is returned when the pre-mutation backup cannot be
// completed. The store is left untouched.
type BackupError struct {
	error
	gnlib.MessageBase
	Path string
}

// NewBackupError creates an error for a failed store backup.
func NewBackupError(path string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Store Backup Failed</title>

<warning>Could not back up '%s' before changing it.</warning>

<em>How to fix:</em>
  1. Check the directory is writable and has free space.

  2. The store was not modified.
`,
		[]any{path},
	)

	return BackupError{
		error:       fmt.Errorf("cannot back up store %q: %w", path, cause),
		MessageBase: userBase,
		Path:        path,
	}
}
