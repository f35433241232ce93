// Package sqlite persists the columnar component store in SQLite.
//
// Each ComponentBatch is one row of component_batches; its values are
// JSON-encoded cells in component_cells. A latest-at query selects the
// newest batch at or before the query time, breaking ties by insertion
// order.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/store"
)

// DefaultBusyTimeout is used when Options.BusyTimeout is zero.
const DefaultBusyTimeout = 5 * time.Second

// Options configures Open.
type Options struct {
	BusyTimeout time.Duration
}

// ComponentStore is a store.ComponentStore and store.ColumnarWriter
// backed by SQLite.
type ComponentStore struct {
	db *sql.DB
}

var (
	_ store.ComponentStore = (*ComponentStore)(nil)
	_ store.ColumnarWriter = (*ComponentStore)(nil)
)

// Open opens (creating if needed) the database at path, applies pragmas and
// migrates it to the latest schema.
func Open(path string, opts Options) (*ComponentStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps in-memory databases and pragmas consistent.
	db.SetMaxOpenConns(1)

	s := &ComponentStore{db: db}
	if err := s.applyPragmas(opts); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.MigrateUp(MigrationsFS()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ComponentStore) applyPragmas(opts Options) error {
	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", timeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *ComponentStore) Close() error {
	return s.db.Close()
}

// InsertComponent implements store.ColumnarWriter.
func (s *ComponentStore) InsertComponent(path entity.Path, timeline store.Timeline, name store.ComponentName, batch store.ComponentBatch) error {
	if err := batch.Validate(name); err != nil {
		return fmt.Errorf("insert %s.%s: %w", path, name, err)
	}
	cells := make([][]byte, len(batch.Values))
	for i, v := range batch.Values {
		data, err := store.EncodeComponent(name, v)
		if err != nil {
			return fmt.Errorf("insert %s.%s: %w", path, name, err)
		}
		cells[i] = data
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	implicit := 0
	if batch.Instances == nil {
		implicit = 1
	}
	res, err := tx.Exec(`
		INSERT INTO component_batches (entity_path, timeline, component, time, implicit_instances)
		VALUES (?, ?, ?, ?, ?)`,
		path.String(), string(timeline), string(name), int64(batch.Time), implicit)
	if err != nil {
		return fmt.Errorf("insert batch %s.%s: %w", path, name, err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO component_cells (batch_id, row, instance, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, data := range cells {
		var instance sql.NullInt64
		if batch.Instances != nil {
			// Instance keys are stored bit-for-bit as signed integers.
			instance = sql.NullInt64{Int64: int64(batch.Instances[i]), Valid: true}
		}
		if _, err := stmt.Exec(batchID, i, instance, string(data)); err != nil {
			return fmt.Errorf("insert cell %d of %s.%s: %w", i, path, name, err)
		}
	}
	return tx.Commit()
}

// LatestAt implements store.ComponentStore.
func (s *ComponentStore) LatestAt(path entity.Path, q store.LatestAtQuery, name store.ComponentName) (*store.ComponentBatch, error) {
	var (
		batchID  int64
		t        int64
		implicit int
	)
	err := s.db.QueryRow(`
		SELECT batch_id, time, implicit_instances
		FROM component_batches
		WHERE entity_path = ? AND timeline = ? AND component = ? AND time <= ?
		ORDER BY time DESC, batch_id DESC
		LIMIT 1`,
		path.String(), string(q.Timeline), string(name), int64(q.At),
	).Scan(&batchID, &t, &implicit)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest-at %s.%s: %w", path, name, err)
	}

	rows, err := s.db.Query(`SELECT instance, value FROM component_cells WHERE batch_id = ? ORDER BY row`, batchID)
	if err != nil {
		return nil, fmt.Errorf("read cells %s.%s: %w", path, name, err)
	}
	defer rows.Close()

	batch := &store.ComponentBatch{Time: store.TimeInt(t)}
	for rows.Next() {
		var (
			instance sql.NullInt64
			value    string
		)
		if err := rows.Scan(&instance, &value); err != nil {
			return nil, fmt.Errorf("scan cell %s.%s: %w", path, name, err)
		}
		v, err := store.DecodeComponent(name, []byte(value))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if implicit == 0 {
			if !instance.Valid {
				return nil, fmt.Errorf("%w: %s.%s batch %d has a cell without instance key",
					store.ErrMalformedComponent, path, name, batchID)
			}
			batch.Instances = append(batch.Instances, store.Instance(uint64(instance.Int64)))
		}
		batch.Values = append(batch.Values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}

// Paths returns every entity path with data, sorted.
func (s *ComponentStore) Paths() ([]entity.Path, error) {
	rows, err := s.db.Query(`SELECT entity_path FROM entity_paths ORDER BY entity_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []entity.Path
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		parsed, err := entity.ParsePath(p)
		if err != nil {
			return nil, fmt.Errorf("%w: stored path %q: %v", store.ErrMalformedComponent, p, err)
		}
		paths = append(paths, parsed)
	}
	return paths, rows.Err()
}
