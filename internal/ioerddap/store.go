// Package ioerddap maintains an ERDDAP datasets.xml store: fragments
// are replaced or appended by datasetID while every other byte of the
// file stays untouched. This is an impure I/O package.
package ioerddap

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// staleLockAge is how old a lock file must be before it is
	// considered abandoned and broken.
	staleLockAge = 10 * time.Minute

	// backupStamp is the timestamp layout of backup file names.
	backupStamp = "20060102_150405"

	storeHeader = "<?xml version=\"1.0\" encoding=\"ISO-8859-1\" ?>\n" +
		"<erddapDatasets>\n</erddapDatasets>\n"

	closingTag = "</erddapDatasets>"
)

// Store merges dataset fragments into one datasets.xml file with
// single-writer discipline.
type Store struct {
	path string
}

// NewStore creates a Store for the datasets.xml file at path. The file
// is created on first merge if it does not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Merge inserts the rendered fragment into the store, replacing any
// existing fragment with the same datasetID in place. A timestamped
// backup of the previous store completes before any mutation, and the
// store is replaced atomically, so a failure at any point leaves the
// original untouched.
func (s *Store) Merge(datasetID string, fragment []byte) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	content, existed, err := s.read()
	if err != nil {
		return err
	}
	if existed {
		if err := s.backup(content); err != nil {
			return err
		}
	}

	merged, replaced := splice(content, datasetID, fragment)
	if err := s.writeAtomic(merged); err != nil {
		return err
	}

	action := "added"
	if replaced {
		action = "replaced"
	}
	slog.Info("merged dataset fragment into store",
		"store", s.path, "datasetID", datasetID, "action", action)
	return nil
}

// lock takes the advisory lock file next to the store. A lock older
// than staleLockAge is treated as abandoned and broken with a warning.
func (s *Store) lock() (func(), error) {
	lockPath := s.path + ".lock"

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(
			lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644,
		)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, NewLockError(s.path, err)
		}

		info, serr := os.Stat(lockPath)
		if serr == nil && time.Since(info.ModTime()) > staleLockAge {
			slog.Warn("breaking stale store lock",
				"lock", lockPath, "age", time.Since(info.ModTime()))
			os.Remove(lockPath)
			continue
		}
		return nil, NewLockError(s.path,
			fmt.Errorf("lock file %s is held", lockPath))
	}
	return nil, NewLockError(s.path, fmt.Errorf("cannot take lock"))
}

// read returns the store content, or an empty skeleton when the store
// does not exist yet.
func (s *Store) read() ([]byte, bool, error) {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []byte(storeHeader), false, nil
	}
	if err != nil {
		return nil, false, NewConflictError(s.path, err)
	}
	return content, true, nil
}

// backup writes a timestamped copy of the store and flushes it to disk
// before returning, so the previous state survives any later failure.
func (s *Store) backup(content []byte) error {
	dir, base := filepath.Split(s.path)
	stamp := time.Now().Format(backupStamp)

	var f *os.File
	var err error
	for n := 0; ; n++ {
		name := fmt.Sprintf(".%s.%s", base, stamp)
		if n > 0 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		f, err = os.OpenFile(
			filepath.Join(dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644,
		)
		if err == nil {
			break
		}
		if !os.IsExist(err) || n >= 100 {
			return NewBackupError(s.path, err)
		}
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return NewBackupError(s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return NewBackupError(s.path, err)
	}
	if err := f.Close(); err != nil {
		return NewBackupError(s.path, err)
	}
	return nil
}

// writeAtomic replaces the store through a synced temp file and rename.
func (s *Store) writeAtomic(content []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".datasets-*.xml")
	if err != nil {
		return NewConflictError(s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return NewConflictError(s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return NewConflictError(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return NewConflictError(s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return NewConflictError(s.path, err)
	}
	return nil
}

// splice replaces the fragment carrying datasetID in place, or inserts
// the new fragment just before the closing root tag. The replacement
// is text-level so every byte outside the fragment stays identical.
func splice(content []byte, datasetID string, fragment []byte) ([]byte, bool) {
	start, end, found := findFragment(content, datasetID)
	if found {
		var out bytes.Buffer
		out.Write(content[:start])
		out.Write(fragment)
		out.Write(content[end:])
		return out.Bytes(), true
	}

	closing := bytes.LastIndex(content, []byte(closingTag))
	var out bytes.Buffer
	if closing < 0 {
		out.Write(content)
		out.Write(fragment)
		out.WriteByte('\n')
		return out.Bytes(), false
	}
	out.Write(content[:closing])
	out.Write(fragment)
	out.WriteByte('\n')
	out.Write(content[closing:])
	return out.Bytes(), false
}

// findFragment locates the byte range of the <dataset> element with
// the given datasetID.
func findFragment(content []byte, datasetID string) (int, int, bool) {
	marker := []byte(fmt.Sprintf("datasetID=%q", datasetID))
	idx := bytes.Index(content, marker)
	if idx < 0 {
		return 0, 0, false
	}

	start := bytes.LastIndex(content[:idx], []byte("<dataset"))
	if start < 0 {
		return 0, 0, false
	}
	endTag := []byte("</dataset>")
	rel := bytes.Index(content[idx:], endTag)
	if rel < 0 {
		return 0, 0, false
	}
	end := idx + rel + len(endTag)
	return start, end, true
}
