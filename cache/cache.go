// Package cache čuva poslednji snimak stanja u lokalnoj sqlite bazi da posle
// restarta ne krećemo od praznog stanja. Snimak nosi verziju formata i vreme
// upisa; na pogrešnu verziju ili prekoračenu starost snimak se odbacuje.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/malika-ai/project-management-prototype/models"
)

const snapshotKey = "state"

type SnapshotCache struct {
	db       *sql.DB
	version  string
	validity time.Duration
}

// Open otvara (i po potrebi kreira) bazu keša.
func Open(path, version string, validity time.Duration) (*SnapshotCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %v", err)
	}

	c := &SnapshotCache{db: db, version: version, validity: validity}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SnapshotCache) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			version TEXT NOT NULL,
			written_at INTEGER NOT NULL
		);`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate cache db: %v", err)
	}
	return nil
}

// Save upisuje snimak preko prethodnog.
func (c *SnapshotCache) Save(snap *models.Snapshot, now time.Time) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO snapshots (key, data, version, written_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, version = excluded.version, written_at = excluded.written_at`,
		snapshotKey, string(data), c.version, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}
	return nil
}

// Load vraća sačuvani snimak ili (nil, nil) kada snimka nema, kada mu se
// verzija ne poklapa ili kada je stariji od dozvoljene starosti.
func (c *SnapshotCache) Load(now time.Time) (*models.Snapshot, error) {
	var data, version string
	var writtenAt int64
	err := c.db.QueryRow(
		`SELECT data, version, written_at FROM snapshots WHERE key = ?`, snapshotKey,
	).Scan(&data, &version, &writtenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %v", err)
	}

	if version != c.version {
		return nil, nil
	}
	age := now.Sub(time.UnixMilli(writtenAt))
	if age < 0 || age > c.validity {
		return nil, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}
	return &snap, nil
}

func (c *SnapshotCache) Close() error {
	return c.db.Close()
}
