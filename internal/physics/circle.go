package physics

import "github.com/san-kum/circlesim/internal/vec"

// Axis selects a velocity component for axis-aligned reflection.
type Axis int

const (
	// AxisX negates the x velocity, a bounce off a vertical wall.
	AxisX Axis = iota
	// AxisY negates the y velocity, a bounce off a horizontal wall.
	AxisY
)

// Circle is a rigid disk: a PointMass with a radius.
type Circle[T vec.Float] struct {
	PointMass[T]
	radius T
}

// NewCircle returns ErrInvalidParameter for a non-positive or non-finite
// radius or mass.
func NewCircle[T vec.Float](radius, mass T, position, velocity vec.Vector2[T]) (*Circle[T], error) {
	if err := checkPositive("radius", float64(radius)); err != nil {
		return nil, err
	}
	if err := checkPositive("mass", float64(mass)); err != nil {
		return nil, err
	}
	return &Circle[T]{
		PointMass: PointMass[T]{mass: mass, position: position, velocity: velocity},
		radius:    radius,
	}, nil
}

func (c *Circle[T]) Radius() T { return c.radius }

func (c *Circle[T]) MinX() T { return c.position.X - c.radius }
func (c *Circle[T]) MaxX() T { return c.position.X + c.radius }
func (c *Circle[T]) MinY() T { return c.position.Y - c.radius }
func (c *Circle[T]) MaxY() T { return c.position.Y + c.radius }

// Bounds is the axis-aligned bounding box of the disk.
func (c *Circle[T]) Bounds() vec.Box[T] {
	r := vec.Vector2[T]{X: c.radius, Y: c.radius}
	return vec.Box[T]{Min: c.position.Sub(r), Max: c.position.Add(r)}
}

// Reflect bounces the velocity off an immovable surface whose tangent is edge:
// the component along edge is kept and the component across it is negated.
// A zero edge has no direction; the velocity is left alone and false returned.
func (c *Circle[T]) Reflect(edge vec.Vector2[T]) bool {
	if !edge.NonZero() {
		return false
	}
	c.ReflectUnit(edge.Normalized())
	return true
}

// ReflectUnit is Reflect for an edge that is already unit length.
func (c *Circle[T]) ReflectUnit(unit vec.Vector2[T]) {
	projection := unit.Mul(vec.Dot(c.velocity, unit))
	rejection := c.velocity.Sub(projection)
	c.velocity = projection.Sub(rejection)
}

// ReflectAxis negates one velocity component and scales it by restitution.
func (c *Circle[T]) ReflectAxis(axis Axis, restitution T) {
	switch axis {
	case AxisX:
		c.velocity.X = -c.velocity.X * restitution
	case AxisY:
		c.velocity.Y = -c.velocity.Y * restitution
	}
}
