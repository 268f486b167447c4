// Package physics provides the rigid-body model for circular bodies.
//
//   - [PointMass]: mass, position and velocity with force accumulation and
//     semi-implicit Euler integration
//   - [Circle]: a PointMass with a radius, bounding box and wall reflection
//   - [ResolveCollisionWith]: restitution-based response along the contact normal
//   - [SeparateOverlap]: single-pass positional de-penetration
//
// All types are generic over [vec.Float].
//
// # Degenerate input
//
// Constructors reject non-positive mass and radius with [ErrInvalidParameter].
// Geometry without a defined direction (a zero reflection edge, coincident
// centers) is skipped rather than reported:
//
//	if !physics.ResolveCollision(a, b) {
//	    // centers coincide, velocities untouched
//	}
package physics
