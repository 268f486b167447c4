package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/circlesim/internal/sim"
	"github.com/san-kum/circlesim/internal/vec"
)

func TestKineticEnergyMean(t *testing.T) {
	m := NewKineticEnergy()

	m.Observe(sim.Sample{Energy: 10})
	m.Observe(sim.Sample{Energy: 20})

	if math.Abs(m.Value()-15) > 1e-12 {
		t.Errorf("expected mean 15, got %f", m.Value())
	}
}

func TestKineticEnergyReset(t *testing.T) {
	m := NewKineticEnergy()

	m.Observe(sim.Sample{Energy: 4})
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	for _, e := range []float64{100, 110, 95, 100} {
		m.Observe(sim.Sample{Energy: e})
	}
	if math.Abs(m.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %f", m.Value())
	}

	m.Reset()
	m.Observe(sim.Sample{Energy: 0})
	m.Observe(sim.Sample{Energy: 50})
	if m.Value() != 0 {
		t.Errorf("resting start has no relative drift, got %f", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()

	m.Observe(sim.Sample{Momentum: vec.New(1.0, 1.0)})
	m.Observe(sim.Sample{Momentum: vec.New(4.0, 5.0)})
	m.Observe(sim.Sample{Momentum: vec.New(1.0, 2.0)})

	if math.Abs(m.Value()-5) > 1e-12 {
		t.Errorf("expected drift 5, got %f", m.Value())
	}
}

func TestPeakComparisons(t *testing.T) {
	m := NewPeakComparisons()

	for _, c := range []int64{3, 45, 10} {
		m.Observe(sim.Sample{Comparisons: c})
	}
	if m.Value() != 45 {
		t.Errorf("expected peak 45, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(2)

	m.Observe(sim.Sample{Energy: 10})
	m.Observe(sim.Sample{Energy: 15})
	m.Observe(sim.Sample{Energy: 25})
	m.Observe(sim.Sample{Energy: math.NaN()})

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 1 {
		t.Errorf("expected 1 after reset, got %f", m.Value())
	}
}

func TestAllNamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range All() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
