// Package store models the two time-indexed data stores the box scene can
// read from.
//
// The legacy store is organised per object: each entity path holds one
// object of a fixed ObjectType whose named fields are independent time
// series of FieldBatches. A box is a row of the "obb" field joined with
// the color, stroke_width, label and class_id fields by instance Index.
//
// The columnar store is organised per component: each entity path holds
// one time series of ComponentBatches per ComponentName. A box is a row of
// the box3d component joined with position, rotation, colour, radius,
// label and class id components by Instance key. QueryEntityWithPrimary
// performs that join and returns a materialised EntityView.
//
// Both stores answer latest-at queries: the most recent batch at or before
// the query time on the query's timeline. In-memory implementations live
// here; persistent ones live in the sqlite (columnar) and badger (legacy)
// subpackages.
package store
