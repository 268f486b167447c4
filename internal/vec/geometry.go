package vec

import "math"

// Box is an axis-aligned rectangle.
type Box[T Float] struct {
	Min, Max Vector2[T]
}

// BoxFromCorners builds a Box from any two diagonally opposite corners.
func BoxFromCorners[T Float](r1, r2 Vector2[T]) Box[T] {
	return Box[T]{
		Min: Vector2[T]{min(r1.X, r2.X), min(r1.Y, r2.Y)},
		Max: Vector2[T]{max(r1.X, r2.X), max(r1.Y, r2.Y)},
	}
}

func (b Box[T]) Width() T  { return b.Max.X - b.Min.X }
func (b Box[T]) Height() T { return b.Max.Y - b.Min.Y }

// Contains is inclusive on every edge.
func (b Box[T]) Contains(p Vector2[T]) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b Box[T]) Overlaps(o Box[T]) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Expand grows the box outward by margin on every side.
func (b Box[T]) Expand(margin T) Box[T] {
	return Box[T]{
		Min: Vector2[T]{b.Min.X - margin, b.Min.Y - margin},
		Max: Vector2[T]{b.Max.X + margin, b.Max.Y + margin},
	}
}

// DistancePointToLine is the perpendicular distance from p to the infinite line
// through l1 and l2.
func DistancePointToLine[T Float](p, l1, l2 Vector2[T]) T {
	if l1.X == l2.X {
		return T(math.Abs(float64(p.X - l1.X)))
	}

	m := (l1.Y - l2.Y) / (l1.X - l2.X)
	b := l1.Y - m*l1.X

	return T(math.Abs(float64(p.Y-m*p.X-b)) / math.Sqrt(float64(m*m+1)))
}

// WithinRectangle reports whether p lies in the rectangle spanned by the
// diagonal corners r1 and r2, edges included.
func WithinRectangle[T Float](p, r1, r2 Vector2[T]) bool {
	return BoxFromCorners(r1, r2).Contains(p)
}

// CloseToRectangle reports whether p lies within distance d of the rectangle
// spanned by r1 and r2, measured per axis.
func CloseToRectangle[T Float](p, r1, r2 Vector2[T], d T) bool {
	return BoxFromCorners(r1, r2).Expand(d).Contains(p)
}
