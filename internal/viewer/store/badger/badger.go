// Package badger persists the legacy per-object store in BadgerDB.
//
// Key layout:
//
//	t/<path>                                    object type (1 byte)
//	f/<path>\x00<timeline>\x00<field>\x00<time><seq>  gob-encoded batch
//
// <time> is the batch time as a big-endian uint64 with the sign bit
// flipped so keys sort in time order; <seq> is a big-endian insertion
// sequence that orders batches logged at the same time. A latest-at query
// seeks a reverse iterator to the largest key at or below the query time.
package badger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/banshee-data/sceneview/internal/viewer"
	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/store"
)

const (
	typePrefix  = "t/"
	fieldPrefix = "f/"
	seqKey      = "seq/batches"
	seqBand     = 256
)

// Config holds configuration for an ObjectStores database.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is
	// true.
	Path string

	// InMemory keeps everything in memory. Useful for tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger routes BadgerDB's log output to the viewer log streams.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	viewer.Opsf("[badger] "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	viewer.Opsf("[badger] "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	viewer.Diagf("[badger] "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	viewer.Tracef("[badger] "+format, args...)
}

// ObjectStores is a store.ObjectStores and store.LegacyWriter backed by
// BadgerDB. It is safe for concurrent use.
type ObjectStores struct {
	db  *badger.DB
	seq *badger.Sequence
}

var (
	_ store.ObjectStores = (*ObjectStores)(nil)
	_ store.LegacyWriter = (*ObjectStores)(nil)
)

// Open opens the database described by cfg.
func Open(cfg Config) (*ObjectStores, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	seq, err := db.GetSequence([]byte(seqKey), seqBand)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open batch sequence: %w", err)
	}
	return &ObjectStores{db: db, seq: seq}, nil
}

// Close releases the sequence and closes the database.
func (s *ObjectStores) Close() error {
	var errs []error
	if err := s.seq.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release sequence: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func typeKey(path entity.Path) []byte {
	return []byte(typePrefix + path.String())
}

func seriesPrefix(path entity.Path, timeline store.Timeline, field store.FieldName) []byte {
	var b strings.Builder
	b.WriteString(fieldPrefix)
	b.WriteString(path.String())
	b.WriteByte(0)
	b.WriteString(string(timeline))
	b.WriteByte(0)
	b.WriteString(string(field))
	b.WriteByte(0)
	return []byte(b.String())
}

func encodeTime(t store.TimeInt) uint64 {
	return uint64(t) ^ (1 << 63)
}

func batchKey(prefix []byte, t store.TimeInt, seq uint64) []byte {
	key := make([]byte, len(prefix)+16)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], encodeTime(t))
	binary.BigEndian.PutUint64(key[len(prefix)+8:], seq)
	return key
}

// SetObjectType implements store.LegacyWriter.
func (s *ObjectStores) SetObjectType(path entity.Path, t store.ObjectType) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(typeKey(path))
		switch {
		case err == nil:
			var existing store.ObjectType
			if err := item.Value(func(v []byte) error {
				existing, err = decodeType(v)
				return err
			}); err != nil {
				return err
			}
			if existing != store.ObjectTypeUnknown && existing != t {
				return fmt.Errorf("object %s already has type %s, cannot change to %s", path, existing, t)
			}
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}
		return txn.Set(typeKey(path), []byte{byte(t)})
	})
}

func decodeType(v []byte) (store.ObjectType, error) {
	if len(v) != 1 {
		return store.ObjectTypeUnknown, fmt.Errorf("%w: object type value of %d bytes", store.ErrMalformedComponent, len(v))
	}
	return store.ObjectType(v[0]), nil
}

// InsertField implements store.LegacyWriter. The object is created with
// an unknown type if it does not exist yet.
func (s *ObjectStores) InsertField(path entity.Path, timeline store.Timeline, field store.FieldName, batch store.FieldBatch) error {
	for _, v := range batch.Values {
		if err := store.CheckFieldValue(field, v.Value); err != nil {
			return fmt.Errorf("insert %s.%s: %w", path, field, err)
		}
	}
	data, err := encodeBatch(batch)
	if err != nil {
		return fmt.Errorf("insert %s.%s: %w", path, field, err)
	}
	seq, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next batch sequence: %w", err)
	}
	key := batchKey(seriesPrefix(path, timeline, field), batch.Time, seq)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(typeKey(path)); errors.Is(err, badger.ErrKeyNotFound) {
			if err := txn.Set(typeKey(path), []byte{byte(store.ObjectTypeUnknown)}); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// ObjectStore implements store.ObjectStores.
func (s *ObjectStores) ObjectStore(path entity.Path) (store.ObjectStore, error) {
	var typ store.ObjectType
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(typeKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			typ, err = decodeType(v)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", store.ErrObjectNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", path, err)
	}
	return &objectStore{db: s.db, path: path, typ: typ}, nil
}

// Paths returns every path with an object, sorted.
func (s *ObjectStores) Paths() ([]entity.Path, error) {
	var paths []entity.Path
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(typePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			raw := strings.TrimPrefix(string(it.Item().Key()), typePrefix)
			p, err := entity.ParsePath(raw)
			if err != nil {
				return fmt.Errorf("%w: stored path %q: %v", store.ErrMalformedComponent, raw, err)
			}
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths, nil
}

type objectStore struct {
	db   *badger.DB
	path entity.Path
	typ  store.ObjectType
}

func (o *objectStore) Type() store.ObjectType {
	return o.typ
}

func (o *objectStore) LatestAt(q store.LatestAtQuery, field store.FieldName) (*store.FieldBatch, error) {
	prefix := seriesPrefix(o.path, q.Timeline, field)
	seek := batchKey(prefix, q.At, ^uint64(0))

	var batch *store.FieldBatch
	err := o.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		opts.PrefetchSize = 1
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(seek)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		return it.Item().Value(func(v []byte) error {
			b, err := decodeBatch(v)
			if err != nil {
				return err
			}
			batch = &b
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("latest-at %s.%s: %w", o.path, field, err)
	}
	return batch, nil
}
