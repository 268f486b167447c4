package world

import (
	"github.com/san-kum/circlesim/internal/physics"
	"github.com/san-kum/circlesim/internal/vec"
)

// Update advances the world by dt seconds.
//
// Every unordered pair is visited once: touching pairs exchange momentum and
// are pushed apart, then pairwise gravity is accumulated as a force on both.
// Boundary handling runs next, and finally each body is integrated with the
// global gravity as a uniform acceleration. An empty world is left untouched.
func (w *World[T]) Update(dt T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.bodies)
	if n == 0 {
		return
	}

	var comparisons int64
	for i := 0; i < n; i++ {
		a := w.bodies[i]
		for j := i + 1; j < n; j++ {
			b := w.bodies[j]
			comparisons++

			if physics.Touching(a, b) {
				physics.ResolveCollisionWith(a, b, w.collisionRestitution)
				physics.SeparateOverlap(a, b)
			}
			if w.pairwise {
				w.attract(a, b)
			}
		}
	}

	switch w.boundary {
	case Bounce:
		for _, b := range w.bodies {
			w.bounce(b)
		}
	case Wrap:
		for _, b := range w.bodies {
			w.wrap(b)
		}
	}

	for _, b := range w.bodies {
		b.IntegrateWith(dt, w.gravity)
	}

	w.comparisons.Store(comparisons)
	w.publish()
}

// attract applies Newtonian attraction G·m1·m2/r² along the center line.
// Coincident centers have no direction and are skipped.
func (w *World[T]) attract(a, b *physics.Circle[T]) {
	diff := b.Position().Sub(a.Position())
	r2 := diff.Squared()
	if r2 == 0 {
		return
	}

	magnitude := w.g * a.Mass() * b.Mass() / r2
	f := vec.WithLength(magnitude, diff)
	a.AddExternalForce(f)
	b.AddExternalForce(f.Neg())
}

// bounce reflects the velocity of a body touching or past a wall while moving
// into it, and moves the body back inside by the overshoot.
func (w *World[T]) bounce(c *physics.Circle[T]) {
	v := c.Velocity()

	if minX := c.MinX(); minX <= 0 {
		if v.X < 0 {
			c.ReflectAxis(physics.AxisX, w.wallRestitution)
		}
		c.TranslateX(-minX)
	} else if maxX := c.MaxX(); maxX >= w.width {
		if v.X > 0 {
			c.ReflectAxis(physics.AxisX, w.wallRestitution)
		}
		c.TranslateX(w.width - maxX)
	}

	if minY := c.MinY(); minY <= 0 {
		if v.Y < 0 {
			c.ReflectAxis(physics.AxisY, w.wallRestitution)
		}
		c.TranslateY(-minY)
	} else if maxY := c.MaxY(); maxY >= w.height {
		if v.Y > 0 {
			c.ReflectAxis(physics.AxisY, w.wallRestitution)
		}
		c.TranslateY(w.height - maxY)
	}
}

// wrap teleports a body whose center left the arena to the opposite edge.
// Each axis is handled on its own so a corner exit wraps both coordinates.
func (w *World[T]) wrap(c *physics.Circle[T]) {
	p := c.Position()
	if p.X < 0 {
		c.TranslateX(w.width)
	} else if p.X >= w.width {
		c.TranslateX(-w.width)
	}
	if p.Y < 0 {
		c.TranslateY(w.height)
	} else if p.Y >= w.height {
		c.TranslateY(-w.height)
	}
}
