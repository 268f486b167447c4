package vec

import (
	"fmt"
	"math"
)

// Float is the scalar type a Vector2 is built on.
type Float interface {
	~float32 | ~float64
}

// Vector2 is a 2D vector with value semantics. Most methods return new values;
// Translate, ScaleBy, Clear, AddLength, SetLength and ScaleLength mutate in place.
type Vector2[T Float] struct {
	X, Y T
}

func New[T Float](x, y T) Vector2[T] {
	return Vector2[T]{X: x, Y: y}
}

// WithLength returns a vector of the given length pointing along dir.
// dir must be non-zero.
func WithLength[T Float](length T, dir Vector2[T]) Vector2[T] {
	l := dir.Length()
	return Vector2[T]{X: dir.X / l * length, Y: dir.Y / l * length}
}

func (v Vector2[T]) Add(o Vector2[T]) Vector2[T] { return Vector2[T]{v.X + o.X, v.Y + o.Y} }
func (v Vector2[T]) Sub(o Vector2[T]) Vector2[T] { return Vector2[T]{v.X - o.X, v.Y - o.Y} }
func (v Vector2[T]) Mul(n T) Vector2[T]          { return Vector2[T]{v.X * n, v.Y * n} }
func (v Vector2[T]) Div(n T) Vector2[T]          { return Vector2[T]{v.X / n, v.Y / n} }
func (v Vector2[T]) Neg() Vector2[T]             { return Vector2[T]{-v.X, -v.Y} }
func (v Vector2[T]) Perp() Vector2[T]            { return Vector2[T]{-v.Y, v.X} }

func (v Vector2[T]) Equal(o Vector2[T]) bool { return v.X == o.X && v.Y == o.Y }

// NonZero reports whether either component is non-zero.
func (v Vector2[T]) NonZero() bool { return v.X != 0 || v.Y != 0 }

func (v Vector2[T]) IsFinite() bool {
	x, y := float64(v.X), float64(v.Y)
	return !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0)
}

func (v Vector2[T]) Length() T {
	return T(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Squared is the squared magnitude, i.e. the dot product with itself.
func (v Vector2[T]) Squared() T { return v.X*v.X + v.Y*v.Y }

func (v Vector2[T]) Dot(o Vector2[T]) T { return v.X*o.X + v.Y*o.Y }

// Normalized returns the unit vector along v. v must be non-zero.
func (v Vector2[T]) Normalized() Vector2[T] {
	l := v.Length()
	return Vector2[T]{v.X / l, v.Y / l}
}

// Angle is the angle with respect to the x-axis, in radians.
func (v Vector2[T]) Angle() T {
	return T(math.Atan2(float64(v.Y), float64(v.X)))
}

func (v *Vector2[T]) Translate(d Vector2[T]) {
	v.X += d.X
	v.Y += d.Y
}

func (v *Vector2[T]) ScaleBy(n T) {
	v.X *= n
	v.Y *= n
}

func (v *Vector2[T]) Clear() {
	v.X = 0
	v.Y = 0
}

// AddLength extends the magnitude by delta without changing direction.
// A zero vector has no direction: X is set to delta and Y is left untouched.
func (v *Vector2[T]) AddLength(delta T) {
	if !v.NonZero() {
		v.X = delta
		return
	}
	l := v.Length()
	v.X += v.X / l * delta
	v.Y += v.Y / l * delta
}

// SetLength rescales v to newLength. v must be non-zero.
func (v *Vector2[T]) SetLength(newLength T) {
	l := v.Length()
	v.X = v.X / l * newLength
	v.Y = v.Y / l * newLength
}

// ScaleLength multiplies the magnitude by f, keeping the direction.
func (v *Vector2[T]) ScaleLength(f T) {
	v.ScaleBy(f)
}

func (v Vector2[T]) String() string {
	return fmt.Sprintf("[%g %g]", float64(v.X), float64(v.Y))
}

func Dot[T Float](a, b Vector2[T]) T { return a.X*b.X + a.Y*b.Y }

func Distance[T Float](a, b Vector2[T]) T {
	dx, dy := a.X-b.X, a.Y-b.Y
	return T(math.Sqrt(float64(dx*dx + dy*dy)))
}
