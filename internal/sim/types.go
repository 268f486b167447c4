package sim

import (
	"errors"
	"math"
	"time"

	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
)

var (
	// ErrInvalidConfig indicates a driver configuration that cannot run.
	ErrInvalidConfig = errors.New("sim: invalid driver configuration")

	// ErrDiverged indicates the world energy became NaN or Inf.
	ErrDiverged = errors.New("sim: simulation diverged (non-finite energy)")
)

// Sample is one recorded point of a run.
type Sample struct {
	Time        float64
	Energy      float64
	Momentum    vec.Vector2[float64]
	Bodies      int
	Comparisons int64
	Tracked     vec.Vector2[float64]
}

func (s Sample) Valid() bool {
	return !math.IsNaN(s.Energy) && !math.IsInf(s.Energy, 0) && s.Momentum.IsFinite()
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Sample)

func (f ObserverFunc) OnTick(s Sample) { f(s) }

// Script is advanced to the current simulation time before each tick.
type Script interface {
	Advance(t float64) error
}

type Config struct {
	Dt             float64
	MaxDt          float64
	Duration       float64
	SampleEvery    int
	Track          int
	ReportInterval time.Duration
}

type Result struct {
	Samples []Sample
	Final   []world.BodyState[float64]
	Metrics map[string]float64
	Steps   int
	Elapsed time.Duration

	// EnergyDrift is |E_final - E_initial| / |E_initial|, or 0 for a resting start.
	EnergyDrift float64
}

// Times, Energies and friends flatten the sample series for plotting and analysis.
func (r *Result) Times() []float64 {
	return r.column(func(s Sample) float64 { return s.Time })
}

func (r *Result) Energies() []float64 {
	return r.column(func(s Sample) float64 { return s.Energy })
}

func (r *Result) MomentumMagnitudes() []float64 {
	return r.column(func(s Sample) float64 { return s.Momentum.Length() })
}

func (r *Result) Trail() []vec.Vector2[float64] {
	out := make([]vec.Vector2[float64], len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Tracked
	}
	return out
}

func (r *Result) column(f func(Sample) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = f(s)
	}
	return out
}

// SimError wraps an error with the step and time at which it happened.
type SimError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
