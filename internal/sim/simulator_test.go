package sim

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
)

func testWorld(t testing.TB, pairwise bool) *world.World[float64] {
	t.Helper()
	opts := world.DefaultOptions[float64](1600, 900)
	opts.PairwiseGravity = pairwise
	w, err := world.New(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestDriverRunFor(t *testing.T) {
	w := testWorld(t, false)
	if err := w.Insert(10, 100, vec.New(100.0, 100.0), vec.New(10.0, 0.0)); err != nil {
		t.Fatal(err)
	}

	d := New(w, nil)
	cfg := Config{Dt: 0.1, Duration: 1.0, SampleEvery: 2, Track: 0}

	result, err := d.RunFor(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Steps != 10 {
		t.Errorf("expected 10 steps, got %d", result.Steps)
	}
	if len(result.Samples) != 6 {
		t.Errorf("expected 6 samples, got %d", len(result.Samples))
	}

	last := result.Samples[len(result.Samples)-1]
	if math.Abs(last.Time-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %f", last.Time)
	}
	if math.Abs(last.Tracked.X-110) > 1e-9 {
		t.Errorf("expected tracked x 110, got %f", last.Tracked.X)
	}
	if result.EnergyDrift > 1e-12 {
		t.Errorf("free flight should conserve energy, drift %g", result.EnergyDrift)
	}
	if len(result.Final) != 1 {
		t.Errorf("expected final snapshot of 1 body, got %d", len(result.Final))
	}
}

func TestDriverInvalidConfig(t *testing.T) {
	d := New(testWorld(t, false), nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0, SampleEvery: 1}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0, SampleEvery: 1}},
		{"zero duration", Config{Dt: 0.1, Duration: 0, SampleEvery: 1}},
		{"zero sample interval", Config{Dt: 0.1, Duration: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.RunFor(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s Sample) {
	t.count++
	t.sum += s.Energy
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestDriverMetricsAndObservers(t *testing.T) {
	w := testWorld(t, false)
	if err := w.Insert(5, 2, vec.New(800.0, 450.0), vec.New(3.0, 4.0)); err != nil {
		t.Fatal(err)
	}

	d := New(w, nil)
	metric := &testMetric{}
	d.AddMetric(metric)

	seen := 0
	d.AddObserver(ObserverFunc(func(Sample) { seen++ }))

	result, err := d.RunFor(context.Background(), Config{Dt: 0.1, Duration: 1.0, SampleEvery: 1, Track: -1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got, ok := result.Metrics["test"]; !ok || math.Abs(got-25) > 1e-9 {
		t.Errorf("expected mean energy 25, got %v (present %v)", got, ok)
	}
	if metric.count != 11 || seen != 11 {
		t.Errorf("expected 11 observations, got metric %d observer %d", metric.count, seen)
	}
}

type countingScript struct {
	times []float64
	fail  float64
}

func (s *countingScript) Advance(t float64) error {
	s.times = append(s.times, t)
	if s.fail > 0 && t >= s.fail {
		return errors.New("boom")
	}
	return nil
}

func TestDriverAdvancesScript(t *testing.T) {
	d := New(testWorld(t, false), nil)
	script := &countingScript{}
	d.SetScript(script)

	if _, err := d.RunFor(context.Background(), Config{Dt: 0.5, Duration: 2, SampleEvery: 1}); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.5, 1, 1.5}
	if len(script.times) != len(want) {
		t.Fatalf("expected %d advances, got %v", len(want), script.times)
	}
	for i := range want {
		if math.Abs(script.times[i]-want[i]) > 1e-12 {
			t.Errorf("advance %d at %f, want %f", i, script.times[i], want[i])
		}
	}
}

func TestDriverScriptError(t *testing.T) {
	d := New(testWorld(t, false), nil)
	d.SetScript(&countingScript{fail: 1})

	result, err := d.RunFor(context.Background(), Config{Dt: 0.5, Duration: 2, SampleEvery: 1})
	var simErr *SimError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimError, got %v", err)
	}
	if simErr.Step != 2 || result.Steps != 2 {
		t.Errorf("expected failure at step 2, got step %d after %d steps", simErr.Step, result.Steps)
	}
}

func TestDriverDetectsDivergence(t *testing.T) {
	w := testWorld(t, false)
	if err := w.Insert(1, 1, vec.New(800.0, 450.0), vec.New(0.0, 0.0)); err != nil {
		t.Fatal(err)
	}
	w.SetGravity(vec.New(math.Inf(1), 0))

	_, err := New(w, nil).RunFor(context.Background(), Config{Dt: 0.1, Duration: 1, SampleEvery: 1})
	if !errors.Is(err, ErrDiverged) {
		t.Errorf("expected ErrDiverged, got %v", err)
	}
}

func TestDriverRunForCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(testWorld(t, false), nil).RunFor(ctx, Config{Dt: 0.1, Duration: 1, SampleEvery: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Steps != 0 {
		t.Error("expected a partial result with no steps")
	}
}

func TestDriverRunLive(t *testing.T) {
	w := testWorld(t, false)
	if err := w.Insert(10, 100, vec.New(800.0, 450.0), vec.New(50.0, 0.0)); err != nil {
		t.Fatal(err)
	}

	d := New(w, nil)
	var mu sync.Mutex
	ticks := 0
	d.AddObserver(ObserverFunc(func(Sample) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := d.Run(ctx, Config{Dt: 0.001, MaxDt: 0.02, SampleEvery: 1, Track: 0})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ticks == 0 {
		t.Error("expected at least one tick")
	}
	if x := w.Snapshot()[0].Position.X; x <= 800 {
		t.Errorf("body should have moved right, x=%f", x)
	}
}

func TestDriverRunLiveRejectsBadClamp(t *testing.T) {
	err := New(testWorld(t, false), nil).Run(context.Background(), Config{Dt: 0.01, MaxDt: 0.001})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
