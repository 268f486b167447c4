package physics

import "github.com/san-kum/circlesim/internal/vec"

// PointMass is a mass with position and velocity that accumulates external
// forces between integration steps.
type PointMass[T vec.Float] struct {
	mass     T
	position vec.Vector2[T]
	velocity vec.Vector2[T]
	force    vec.Vector2[T]
}

// NewPointMass returns ErrInvalidParameter for a non-positive or non-finite mass.
func NewPointMass[T vec.Float](mass T, position, velocity vec.Vector2[T]) (*PointMass[T], error) {
	if err := checkPositive("mass", float64(mass)); err != nil {
		return nil, err
	}
	return &PointMass[T]{mass: mass, position: position, velocity: velocity}, nil
}

// AddExternalForce adds f to the force applied at the next integration step.
func (p *PointMass[T]) AddExternalForce(f vec.Vector2[T]) {
	p.force.Translate(f)
}

// Integrate advances one semi-implicit Euler step under the accumulated force.
func (p *PointMass[T]) Integrate(dt T) {
	p.IntegrateWith(dt, vec.Vector2[T]{})
}

// IntegrateWith advances one step with an additional uniform acceleration.
// Position moves with the velocity from before this step; velocity is updated
// afterwards and the accumulated force is cleared.
func (p *PointMass[T]) IntegrateWith(dt T, accel vec.Vector2[T]) {
	p.position.Translate(p.velocity.Mul(dt))
	p.velocity.Translate(p.force.Div(p.mass).Add(accel).Mul(dt))
	p.force.Clear()
}

func (p *PointMass[T]) Mass() T                  { return p.mass }
func (p *PointMass[T]) Position() vec.Vector2[T] { return p.position }
func (p *PointMass[T]) Velocity() vec.Vector2[T] { return p.velocity }

// Force is the external force accumulated since the last integration step.
func (p *PointMass[T]) Force() vec.Vector2[T] { return p.force }

func (p *PointMass[T]) SetPosition(pos vec.Vector2[T]) { p.position = pos }
func (p *PointMass[T]) SetVelocity(v vec.Vector2[T])   { p.velocity = v }
func (p *PointMass[T]) ScaleVelocity(f T)              { p.velocity.ScaleBy(f) }

func (p *PointMass[T]) Translate(d vec.Vector2[T]) vec.Vector2[T] {
	p.position.Translate(d)
	return p.position
}

func (p *PointMass[T]) TranslateX(dx T) T {
	p.position.X += dx
	return p.position.X
}

func (p *PointMass[T]) TranslateY(dy T) T {
	p.position.Y += dy
	return p.position.Y
}

func (p *PointMass[T]) Speed() T { return p.velocity.Length() }

func (p *PointMass[T]) Momentum() vec.Vector2[T] { return p.velocity.Mul(p.mass) }

// Energy is the kinetic energy ½·m·|v|².
func (p *PointMass[T]) Energy() T { return p.mass * p.velocity.Squared() / 2 }

func (p *PointMass[T]) DistanceTo(o *PointMass[T]) T {
	return vec.Distance(p.position, o.position)
}

// ElasticCollision is the post-collision 1-D velocity of body 1.
func ElasticCollision[T vec.Float](m1, v1, m2, v2 T) T {
	return ((m1-m2)*v1 + 2*m2*v2) / (m1 + m2)
}

// InelasticCollision is the post-collision 1-D velocity of body 1 for a
// coefficient of restitution cr in [0, 1]. cr = 1 is the elastic case.
func InelasticCollision[T vec.Float](cr, m1, v1, m2, v2 T) T {
	return (cr*m2*(v2-v1) + m1*v1 + m2*v2) / (m1 + m2)
}
