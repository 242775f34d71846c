// Package storage persists built snapshots so repeated runs over an
// unchanged repository skip the build. Entries are keyed by repository
// identity and invalidated by content hash; payloads are zstd-compressed JSON
// in a single SQLite file.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"codemap/internal/errors"
	"codemap/internal/logging"
	"codemap/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	repo_root    TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	snapshot_id  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	payload      BLOB NOT NULL
);
`

// Cache is the on-disk snapshot store. One row per repository; a rebuild
// overwrites the previous entry.
type Cache struct {
	conn   *sql.DB
	logger *logging.Logger
}

// Open creates or opens the cache database, creating parent directories as
// needed.
func Open(path string, logger *logging.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &Cache{conn: conn, logger: logger}, nil
}

func (c *Cache) Close() error {
	return c.conn.Close()
}

// Put stores a snapshot, replacing any previous entry for the same
// repository.
func (c *Cache) Put(snap *model.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}
	payload := enc.EncodeAll(raw, nil)
	_ = enc.Close()

	_, err = c.conn.Exec(
		`INSERT OR REPLACE INTO snapshots (repo_root, content_hash, snapshot_id, created_at, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.RepoRoot, snap.ContentHash, snap.ID,
		time.Now().UTC().Format(time.RFC3339), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	c.logger.Debug("snapshot cached", map[string]interface{}{
		"repo": snap.RepoRoot, "hash": snap.ContentHash,
		"rawBytes": len(raw), "storedBytes": len(payload),
	})
	return nil
}

// Get loads the cached snapshot for a repository if its content hash still
// matches. A hash mismatch returns SNAPSHOT_STALE so the caller rebuilds.
func (c *Cache) Get(repoRoot, contentHash string) (*model.Snapshot, error) {
	var storedHash string
	var payload []byte
	err := c.conn.QueryRow(
		`SELECT content_hash, payload FROM snapshots WHERE repo_root = ?`,
		repoRoot,
	).Scan(&storedHash, &payload)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.NotFound, "no cached snapshot for %s", repoRoot)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	if storedHash != contentHash {
		return nil, errors.Newf(errors.SnapshotStale,
			"cached snapshot no longer matches repository content").
			WithDetails(map[string]string{"cached": storedHash, "current": contentHash})
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Evict removes the entry for a repository.
func (c *Cache) Evict(repoRoot string) error {
	_, err := c.conn.Exec(`DELETE FROM snapshots WHERE repo_root = ?`, repoRoot)
	if err != nil {
		return fmt.Errorf("failed to evict cache entry: %w", err)
	}
	return nil
}
