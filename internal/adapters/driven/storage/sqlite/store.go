// Package sqlite provides the SQLite-backed document and session stores.
// Vectors are stored as little-endian float32 blobs alongside chunk rows;
// similarity search is an exact scan, which is the correctness baseline
// the search contract is specified against.
package sqlite

import (
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// DefaultDimensions is the embedding dimensionality the store is
// provisioned with when the caller passes zero (all-MiniLM class models).
const DefaultDimensions = 384

// dimensionKey is the store_meta key holding the provisioned dimension.
const dimensionKey = "embedding_dimensions"

// Store is a unified SQLite-based storage providing the document and
// session store interfaces through wrapper types.
type Store struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewStore creates a new SQLite store under dataDir, provisioned for
// vectors of the given dimensionality. If dataDir is empty, defaults to
// ~/.askdocs/data. Reopening an existing store with a different
// dimensionality is an error: stored vectors would be incomparable.
func NewStore(dataDir string, dimensions int) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".askdocs", "data")
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "askdocs.db")

	// WAL keeps readers unblocked during chunk replacement, which is what
	// makes the upsert path invisible to concurrent searches.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		dimensions: dimensions,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.provisionDimensions(dimensions); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Dimensions returns the vector dimensionality the store accepts.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// provisionDimensions records the vector dimensionality on first open and
// rejects mismatched reopens.
func (s *Store) provisionDimensions(dimensions int) error {
	var stored string
	err := s.db.QueryRow("SELECT value FROM store_meta WHERE key = ?", dimensionKey).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec("INSERT INTO store_meta (key, value) VALUES (?, ?)",
			dimensionKey, strconv.Itoa(dimensions))
		if err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading dimensions: %w", err)
	}

	existing, err := strconv.Atoi(stored)
	if err != nil {
		return fmt.Errorf("parsing stored dimensions %q: %w", stored, err)
	}
	if existing != dimensions {
		return fmt.Errorf("%w: store provisioned for %d-dimensional vectors, got %d",
			domain.ErrDimensionMismatch, existing, dimensions)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
