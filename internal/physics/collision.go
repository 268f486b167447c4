package physics

import "github.com/san-kum/circlesim/internal/vec"

// DefaultRestitution is the coefficient used by ResolveCollision.
const DefaultRestitution = 0.6

// CircleDistance is the center-to-center distance.
func CircleDistance[T vec.Float](a, b *Circle[T]) T {
	return vec.Distance(a.position, b.position)
}

// Touching reports whether the disks touch or overlap.
func Touching[T vec.Float](a, b *Circle[T]) bool {
	return CircleDistance(a, b) <= a.radius+b.radius
}

// ResolveCollision applies ResolveCollisionWith at DefaultRestitution.
func ResolveCollision[T vec.Float](a, b *Circle[T]) bool {
	return ResolveCollisionWith(a, b, DefaultRestitution)
}

// ResolveCollisionWith sets post-collision velocities for two touching disks.
// Velocities are split along the center line (normal) and its perpendicular
// (tangent). The normal parts follow the 1-D inelastic formula with restitution
// cr; the tangent parts are unchanged. Coincident centers have no normal, so
// nothing happens and false is returned.
func ResolveCollisionWith[T vec.Float](a, b *Circle[T], cr T) bool {
	diff := a.position.Sub(b.position)
	if !diff.NonZero() {
		return false
	}

	normal := diff.Normalized()
	tangent := normal.Perp()

	m1, m2 := a.mass, b.mass
	v1n, v2n := normal.Dot(a.velocity), normal.Dot(b.velocity)
	v1t, v2t := tangent.Dot(a.velocity), tangent.Dot(b.velocity)

	v1nf := InelasticCollision(cr, m1, v1n, m2, v2n)
	v2nf := InelasticCollision(cr, m2, v2n, m1, v1n)

	a.velocity = normal.Mul(v1nf).Add(tangent.Mul(v1t))
	b.velocity = normal.Mul(v2nf).Add(tangent.Mul(v2t))
	return true
}

// SeparateOverlap pushes overlapping disks apart so their centers end up
// exactly ra+rb apart. Only the lighter body moves; on equal masses b moves.
// Returns the penetration depth that was removed, or 0.
func SeparateOverlap[T vec.Float](a, b *Circle[T]) T {
	diff := a.position.Sub(b.position)
	depth := a.radius + b.radius - diff.Length()
	if depth <= 0 {
		return 0
	}

	// coincident centers push along +x
	diff.AddLength(depth)

	if a.mass < b.mass {
		a.position = b.position.Add(diff)
	} else {
		b.position = a.position.Sub(diff)
	}
	return depth
}

// VectorCollision is the closed-form post-collision velocity of body 1 for
// disks at x1, x2. It agrees with the normal/tangent decomposition used by
// ResolveCollisionWith and returns the zero vector for coincident centers.
func VectorCollision[T vec.Float](cr, m1 T, x1, v1 vec.Vector2[T], m2 T, x2, v2 vec.Vector2[T]) vec.Vector2[T] {
	diff := x1.Sub(x2)
	if !diff.NonZero() {
		return vec.Vector2[T]{}
	}

	massRatio := (cr + 1) * m2 / (m1 + m2)
	projection := v1.Sub(v2).Dot(diff) / diff.Squared()

	return v1.Sub(diff.Mul(massRatio * projection))
}
