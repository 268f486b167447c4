package world

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/san-kum/circlesim/internal/physics"
	"github.com/san-kum/circlesim/internal/vec"
	"go.uber.org/zap"
)

// BodyState is a read-only copy of one body for renderers and reporters.
type BodyState[T vec.Float] struct {
	Position vec.Vector2[T]
	Velocity vec.Vector2[T]
	Radius   T
	Mass     T
}

// Stats is a consistent summary of the world taken under the guard.
type Stats[T vec.Float] struct {
	Bodies          int
	Energy          T
	Momentum        vec.Vector2[T]
	Gravity         vec.Vector2[T]
	PairwiseGravity bool
	Boundary        Boundary
	Comparisons     int64
}

// World is a bounded arena of circles advanced by Update.
//
// Update, the insertions, Clear and every other mutator serialize on a single
// mutex. Renderers never touch live bodies: after each mutation the world
// publishes a fresh []BodyState that Snapshot hands out.
type World[T vec.Float] struct {
	mu sync.Mutex

	width, height        T
	boundary             Boundary
	gravity              vec.Vector2[T]
	pairwise             bool
	g                    T
	wallRestitution      T
	collisionRestitution T
	random               RandomOptions
	rng                  *rand.Rand
	bodies               []*physics.Circle[T]

	comparisons atomic.Int64

	snapMu   sync.RWMutex
	snapshot []BodyState[T]

	log *zap.Logger
}

// New validates opts and returns an empty world. A nil logger discards output.
func New[T vec.Float](opts Options[T], logger *zap.Logger) (*World[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World[T]{
		width:                opts.Width,
		height:               opts.Height,
		boundary:             opts.Boundary,
		gravity:              opts.Gravity,
		pairwise:             opts.PairwiseGravity,
		g:                    opts.G,
		wallRestitution:      opts.WallRestitution,
		collisionRestitution: opts.CollisionRestitution,
		random:               opts.Random,
		rng:                  rand.New(rand.NewSource(opts.Seed)),
		bodies:               make([]*physics.Circle[T], 0, 64),
		snapshot:             []BodyState[T]{},
		log:                  logger,
	}, nil
}

// Size returns the arena width and height.
func (w *World[T]) Size() (T, T) { return w.width, w.height }

// Snapshot returns the bodies as of the last completed mutation. The slice is
// shared between callers and must not be modified.
func (w *World[T]) Snapshot() []BodyState[T] {
	w.snapMu.RLock()
	defer w.snapMu.RUnlock()
	return w.snapshot
}

// Comparisons is the number of pairs examined by the most recent non-empty Update.
func (w *World[T]) Comparisons() int64 { return w.comparisons.Load() }

func (w *World[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.bodies)
}

// publish must be called with mu held.
func (w *World[T]) publish() {
	snap := make([]BodyState[T], len(w.bodies))
	for i, b := range w.bodies {
		snap[i] = BodyState[T]{
			Position: b.Position(),
			Velocity: b.Velocity(),
			Radius:   b.Radius(),
			Mass:     b.Mass(),
		}
	}
	w.snapMu.Lock()
	w.snapshot = snap
	w.snapMu.Unlock()
}

// Insert appends a body with explicit parameters.
func (w *World[T]) Insert(radius, mass T, position, velocity vec.Vector2[T]) error {
	c, err := physics.NewCircle(radius, mass, position, velocity)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.appendLocked(c)
	return nil
}

// InsertRandom appends a body with radius drawn uniformly from the configured
// range, mass radius², a uniform position inside the arena inset by the
// margin, and normally distributed velocity components.
func (w *World[T]) InsertRandom() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.random
	radius := T(r.RadiusMin + w.rng.Float64()*(r.RadiusMax-r.RadiusMin))
	x := w.uniformAxis(float64(w.width), r.Margin)
	y := w.uniformAxis(float64(w.height), r.Margin)
	vx := T(w.rng.NormFloat64() * r.VelocityStdDev)
	vy := T(w.rng.NormFloat64() * r.VelocityStdDev)

	c, err := physics.NewCircle(radius, radius*radius, vec.New(x, y), vec.New(vx, vy))
	if err != nil {
		return err
	}
	w.appendLocked(c)
	return nil
}

// InsertAt appends a resting body at (x, y). A zero radius is drawn from the
// point radius range and a zero mass becomes radius².
func (w *World[T]) InsertAt(x, y, mass, radius T) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if radius == 0 {
		r := w.random
		radius = T(r.PointRadiusMin + w.rng.Float64()*(r.PointRadiusMax-r.PointRadiusMin))
	}
	if mass == 0 {
		mass = radius * radius
	}

	c, err := physics.NewCircle(radius, mass, vec.New(x, y), vec.Vector2[T]{})
	if err != nil {
		return err
	}
	w.appendLocked(c)
	return nil
}

func (w *World[T]) uniformAxis(extent, margin float64) T {
	lo, span := margin, extent-2*margin
	if span <= 0 {
		lo, span = 0, extent
	}
	return T(lo + w.rng.Float64()*span)
}

func (w *World[T]) appendLocked(c *physics.Circle[T]) {
	w.bodies = append(w.bodies, c)
	w.publish()
	w.log.Debug("body inserted",
		zap.Int("count", len(w.bodies)),
		zap.Float64("radius", float64(c.Radius())),
		zap.Float64("mass", float64(c.Mass())),
		zap.Stringer("position", c.Position()),
		zap.Stringer("velocity", c.Velocity()),
	)
}

// Clear removes every body.
func (w *World[T]) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.bodies)
	w.bodies = w.bodies[:0:0]
	w.publish()
	w.log.Info("world cleared", zap.Int("removed", n))
}

// TotalEnergy is the summed kinetic energy.
func (w *World[T]) TotalEnergy() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.energyLocked()
}

// TotalMomentum is the vector sum of every body's momentum.
func (w *World[T]) TotalMomentum() vec.Vector2[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.momentumLocked()
}

func (w *World[T]) energyLocked() T {
	var total T
	for _, b := range w.bodies {
		total += b.Energy()
	}
	return total
}

func (w *World[T]) momentumLocked() vec.Vector2[T] {
	var total vec.Vector2[T]
	for _, b := range w.bodies {
		total.Translate(b.Momentum())
	}
	return total
}

func (w *World[T]) Stats() Stats[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats[T]{
		Bodies:          len(w.bodies),
		Energy:          w.energyLocked(),
		Momentum:        w.momentumLocked(),
		Gravity:         w.gravity,
		PairwiseGravity: w.pairwise,
		Boundary:        w.boundary,
		Comparisons:     w.comparisons.Load(),
	}
}

// ScaleAllVelocities multiplies every velocity by ratio.
func (w *World[T]) ScaleAllVelocities(ratio T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.bodies {
		b.ScaleVelocity(ratio)
	}
	w.publish()
}

// StopAll zeroes every velocity.
func (w *World[T]) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.bodies {
		b.SetVelocity(vec.Vector2[T]{})
	}
	w.publish()
}

func (w *World[T]) Gravity() vec.Vector2[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gravity
}

func (w *World[T]) SetGravity(g vec.Vector2[T]) {
	w.mu.Lock()
	w.gravity = g
	w.mu.Unlock()
}

// NudgeGravity adds d to the global gravity vector.
func (w *World[T]) NudgeGravity(d vec.Vector2[T]) {
	w.mu.Lock()
	w.gravity.Translate(d)
	w.mu.Unlock()
}

func (w *World[T]) PairwiseGravity() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pairwise
}

func (w *World[T]) SetPairwiseGravity(on bool) {
	w.mu.Lock()
	w.pairwise = on
	w.mu.Unlock()
}

func (w *World[T]) Boundary() Boundary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.boundary
}

func (w *World[T]) SetBoundary(b Boundary) {
	w.mu.Lock()
	w.boundary = b
	w.mu.Unlock()
}
