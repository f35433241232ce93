package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
)

// MemComponentStore is an in-memory ComponentStore and ColumnarWriter.
type MemComponentStore struct {
	mu     sync.RWMutex
	series map[componentKey][]ComponentBatch
	paths  map[entity.Path]struct{}
}

type componentKey struct {
	path     entity.Path
	timeline Timeline
	name     ComponentName
}

// NewMemComponentStore returns an empty store.
func NewMemComponentStore() *MemComponentStore {
	return &MemComponentStore{
		series: make(map[componentKey][]ComponentBatch),
		paths:  make(map[entity.Path]struct{}),
	}
}

// InsertComponent implements ColumnarWriter.
func (s *MemComponentStore) InsertComponent(path entity.Path, timeline Timeline, name ComponentName, batch ComponentBatch) error {
	if err := batch.Validate(name); err != nil {
		return fmt.Errorf("insert %s.%s: %w", path, name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := componentKey{path: path, timeline: timeline, name: name}
	series := s.series[key]
	i := sort.Search(len(series), func(i int) bool { return series[i].Time > batch.Time })
	series = append(series, ComponentBatch{})
	copy(series[i+1:], series[i:])
	series[i] = batch
	s.series[key] = series
	s.paths[path] = struct{}{}
	return nil
}

// LatestAt implements ComponentStore.
func (s *MemComponentStore) LatestAt(path entity.Path, q LatestAtQuery, name ComponentName) (*ComponentBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.series[componentKey{path: path, timeline: q.Timeline, name: name}]
	i := sort.Search(len(series), func(i int) bool { return series[i].Time > q.At })
	if i == 0 {
		return nil, nil
	}
	b := series[i-1]
	return &b, nil
}

// Paths returns every path with data, sorted.
func (s *MemComponentStore) Paths() []entity.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]entity.Path, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}
