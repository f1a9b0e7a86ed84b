// Package cache persists check results between runs. Results are keyed
// by a fingerprint of the document bytes, so re-checking an unchanged
// document costs one database read.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/selva-lang/matchcore/internal/diagnostics"
)

// cacheVersion is bumped when the stored payload layout changes, so
// entries written by older builds are not misread.
const cacheVersion = "v1"

const schema = `
CREATE TABLE IF NOT EXISTS analysis (
	key     TEXT PRIMARY KEY,
	created INTEGER NOT NULL,
	payload BLOB NOT NULL
)`

// Entry is one cached check result.
type Entry struct {
	Path  string
	Diags []*diagnostics.Diagnostic
}

type Store struct {
	db *sql.DB
}

// Open opens the cache database at path, creating it and its schema
// when missing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing cache: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Key fingerprints document bytes. Trailing whitespace is normalized
// away so formatting-only edits still hit, and the cache version is
// mixed in so layout changes invalidate old entries.
func Key(source []byte) string {
	h := sha256.New()
	h.Write(normalize(source))
	h.Write([]byte("\x00"))
	h.Write([]byte(cacheVersion))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func normalize(source []byte) []byte {
	lines := strings.Split(string(source), "\n")
	var normalized strings.Builder
	for _, line := range lines {
		normalized.WriteString(strings.TrimRight(line, " \t\r"))
		normalized.WriteString("\n")
	}
	return []byte(strings.TrimRight(normalized.String(), "\n"))
}

// Lookup returns the entry stored under key. A payload this build
// cannot decode counts as a miss.
func (s *Store) Lookup(key string) (*Entry, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM analysis WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var e Entry
	if err := yaml.Unmarshal(payload, &e); err != nil {
		return nil, false, nil
	}
	return &e, true, nil
}

// Put stores the entry under key, replacing any previous result.
func (s *Store) Put(key string, e *Entry) error {
	payload, err := yaml.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO analysis (key, created, payload) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET created = excluded.created, payload = excluded.payload`,
		key, time.Now().Unix(), payload)
	return err
}
