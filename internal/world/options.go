package world

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/circlesim/internal/physics"
	"github.com/san-kum/circlesim/internal/vec"
)

// Boundary selects how bodies interact with the arena edges.
type Boundary int

const (
	NoWrap Boundary = iota
	Wrap
	Bounce
)

func (b Boundary) String() string {
	switch b {
	case NoWrap:
		return "none"
	case Wrap:
		return "wrap"
	case Bounce:
		return "bounce"
	default:
		return fmt.Sprintf("boundary(%d)", int(b))
	}
}

// Next cycles NoWrap -> Wrap -> Bounce -> NoWrap.
func (b Boundary) Next() Boundary {
	return (b + 1) % 3
}

func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "nowrap", "no_wrap":
		return NoWrap, nil
	case "wrap":
		return Wrap, nil
	case "bounce", "":
		return Bounce, nil
	default:
		return NoWrap, fmt.Errorf("unknown boundary mode: %s", s)
	}
}

const (
	// GravitationalConstant is G in N·m²/kg².
	GravitationalConstant = 6.6738480e-11
	// EarthGravity is standard gravity in m/s².
	EarthGravity = 9.80665
)

// RandomOptions are the distributions used by the randomized insertions.
type RandomOptions struct {
	RadiusMin      float64
	RadiusMax      float64
	PointRadiusMin float64
	PointRadiusMax float64
	VelocityStdDev float64
	Margin         float64
}

func DefaultRandomOptions() RandomOptions {
	return RandomOptions{
		RadiusMin:      3,
		RadiusMax:      15,
		PointRadiusMin: 5,
		PointRadiusMax: 10,
		VelocityStdDev: 200,
		Margin:         101,
	}
}

// Options configures a World.
type Options[T vec.Float] struct {
	Width, Height        T
	Boundary             Boundary
	Gravity              vec.Vector2[T]
	PairwiseGravity      bool
	G                    T
	WallRestitution      T
	CollisionRestitution T
	Random               RandomOptions
	Seed                 int64
}

func DefaultOptions[T vec.Float](width, height T) Options[T] {
	return Options[T]{
		Width:                width,
		Height:               height,
		Boundary:             Bounce,
		PairwiseGravity:      true,
		G:                    GravitationalConstant,
		WallRestitution:      1,
		CollisionRestitution: physics.DefaultRestitution,
		Random:               DefaultRandomOptions(),
		Seed:                 1,
	}
}

// Validate reports the first invalid option, wrapping physics.ErrInvalidParameter.
func (o Options[T]) Validate() error {
	if !(o.Width > 0) || !(o.Height > 0) {
		return fmt.Errorf("%w: arena must have positive size, got %gx%g",
			physics.ErrInvalidParameter, float64(o.Width), float64(o.Height))
	}
	if o.Boundary < NoWrap || o.Boundary > Bounce {
		return fmt.Errorf("%w: %s", physics.ErrInvalidParameter, o.Boundary)
	}
	if !unit(float64(o.WallRestitution)) || !unit(float64(o.CollisionRestitution)) {
		return fmt.Errorf("%w: restitution must be in [0, 1]", physics.ErrInvalidParameter)
	}
	if o.G < 0 || math.IsNaN(float64(o.G)) {
		return fmt.Errorf("%w: gravitational constant must be non-negative", physics.ErrInvalidParameter)
	}
	r := o.Random
	if !(r.RadiusMin > 0) || r.RadiusMax < r.RadiusMin || !(r.PointRadiusMin > 0) || r.PointRadiusMax < r.PointRadiusMin {
		return fmt.Errorf("%w: random radius ranges must be positive and ordered", physics.ErrInvalidParameter)
	}
	if r.VelocityStdDev < 0 || r.Margin < 0 {
		return fmt.Errorf("%w: velocity spread and margin must be non-negative", physics.ErrInvalidParameter)
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }
