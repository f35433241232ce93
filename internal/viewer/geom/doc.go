// Package geom is the geometry kernel of the box scene: a small affine
// transform type on top of gonum's r3 vectors and rotations, and the
// twelve edges of the canonical unit cube under such a transform.
//
// The unit cube is centred on the origin with half-extent 0.5 on each
// axis. A box with half extent h, rotation q and translation t is drawn
// as the unit cube under FromScaleRotationTranslation(h, q, t), so its
// corners sit at t + q·(±h/2).
package geom
