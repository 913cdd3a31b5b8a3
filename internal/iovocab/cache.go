package iovocab

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/emso-eric/metadata-harmonizer/pkg/vocabulary"
	_ "modernc.org/sqlite"
)

const createTermsTable = `
CREATE TABLE IF NOT EXISTS terms (
	uri TEXT PRIMARY KEY,
	urn TEXT NOT NULL DEFAULT '',
	pref_label TEXT NOT NULL DEFAULT '',
	unit TEXT NOT NULL DEFAULT '',
	standard_name TEXT NOT NULL DEFAULT '',
	fetched_at TEXT NOT NULL
)`

// sqliteCache persists resolved terms across runs. Entries are
// append-only: a second Put for the same URI is ignored, and the only
// way to remove entries is Clear.
type sqliteCache struct {
	mu sync.Mutex
	db *sql.DB
}

// NewCache opens (creating if needed) the term cache at path.
func NewCache(path string) (vocabulary.Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, NewCacheError(path, err)
	}
	if _, err := db.Exec(createTermsTable); err != nil {
		db.Close()
		return nil, NewCacheError(path, err)
	}
	return &sqliteCache{db: db}, nil
}

func (c *sqliteCache) Get(uri string) (vocabulary.Term, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow(
		`SELECT urn, pref_label, unit, standard_name
		   FROM terms WHERE uri = ?`, uri,
	)
	term := vocabulary.Term{URI: uri}
	err := row.Scan(&term.URN, &term.PrefLabel, &term.Unit, &term.StandardName)
	if errors.Is(err, sql.ErrNoRows) {
		return vocabulary.Term{}, false, nil
	}
	if err != nil {
		return vocabulary.Term{}, false, err
	}
	return term, true, nil
}

func (c *sqliteCache) Put(term vocabulary.Term) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO terms
		   (uri, urn, pref_label, unit, standard_name, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		term.URI, term.URN, term.PrefLabel, term.Unit, term.StandardName,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *sqliteCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`DELETE FROM terms`)
	return err
}

func (c *sqliteCache) Close() error {
	return c.db.Close()
}
