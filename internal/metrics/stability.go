package metrics

import "github.com/san-kum/circlesim/internal/sim"

// Stability is the fraction of samples whose energy stayed finite and within
// threshold times the initial energy. Close gravitational encounters with a
// coarse dt show up as runaway energy.
type Stability struct {
	name       string
	threshold  float64
	initial    float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.Sample) {
	if s.samples == 0 {
		s.initial = x.Energy
	}
	s.samples++

	if !x.Valid() {
		s.violations++
		return
	}
	if s.initial > 0 && x.Energy > s.threshold*s.initial {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.initial = 0
	s.violations = 0
	s.samples = 0
}

// All returns the standard metric set used by the CLI.
func All() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewPeakComparisons(),
		NewStability(10),
	}
}
