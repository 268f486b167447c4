package metrics

import (
	"math"

	"github.com/san-kum/circlesim/internal/sim"
	"github.com/san-kum/circlesim/internal/vec"
)

// MomentumDrift is the largest magnitude of change in total momentum relative
// to the first sample. Walls and global gravity make it grow; in a closed
// arena without them it stays near zero.
type MomentumDrift struct {
	name     string
	initial  vec.Vector2[float64]
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s sim.Sample) {
	if m.samples == 0 {
		m.initial = s.Momentum
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, s.Momentum.Sub(m.initial).Length())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vec.Vector2[float64]{}
	m.maxDrift = 0
	m.samples = 0
}

// PeakComparisons is the largest pair count seen in one tick.
type PeakComparisons struct {
	name string
	peak int64
}

func NewPeakComparisons() *PeakComparisons {
	return &PeakComparisons{name: "peak_comparisons"}
}

func (p *PeakComparisons) Name() string { return p.name }

func (p *PeakComparisons) Observe(s sim.Sample) {
	p.peak = max(p.peak, s.Comparisons)
}

func (p *PeakComparisons) Value() float64 { return float64(p.peak) }

func (p *PeakComparisons) Reset() { p.peak = 0 }
