// Package annotation resolves the display colour and label of an instance
// from its class id.
//
// An annotation Context maps class ids to descriptions (colour, label).
// Contexts are attached to entity paths in a Map; an entity uses the
// context of its nearest ancestor (or itself) that has one. When neither
// the instance nor its class supplies a colour, a DefaultColor policy
// picks one, by default derived from the entity path so that distinct
// entities get distinguishable colours.
package annotation
