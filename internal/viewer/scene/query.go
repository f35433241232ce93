package scene

import (
	"iter"

	"github.com/banshee-data/sceneview/internal/viewer/entity"
	"github.com/banshee-data/sceneview/internal/viewer/store"
)

// SceneQuery selects the entities and time of one frame.
type SceneQuery struct {
	EntityPaths []entity.Path
	LatestAt    store.LatestAtQuery
	Properties  *entity.PropertyMap
}

// IterEntities yields the visible entities with their properties, in
// EntityPaths order.
func (q *SceneQuery) IterEntities() iter.Seq2[entity.Path, entity.Properties] {
	return func(yield func(entity.Path, entity.Properties) bool) {
		for _, p := range q.EntityPaths {
			props := q.Properties.Get(p)
			if !props.Visible {
				continue
			}
			if !yield(p, props) {
				return
			}
		}
	}
}
