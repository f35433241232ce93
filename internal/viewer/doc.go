// Package viewer holds the pieces shared by every stage of the 3D scene
// viewer: the ops/diag/trace log streams and the once-per-key logger used
// to keep per-entity failures from flooding the ops stream.
//
// The stages themselves live in subpackages:
//
//	geom        box geometry kernel (unit cube edges under an affine transform)
//	entity      entity paths, per-path properties, instance identity hashes
//	annotation  class descriptions, annotation contexts, default colours
//	transform   world-from-entity resolution over the scene graph
//	store       legacy per-object and columnar component stores
//	scene       per-frame accumulator and the box extraction parts
//	synthetic   deterministic test and demo scenes
package viewer
