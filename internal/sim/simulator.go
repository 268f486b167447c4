package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/circlesim/internal/world"
	"go.uber.org/zap"
)

// Driver owns the tick loop of one world.
type Driver struct {
	w         *world.World[float64]
	script    Script
	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

func New(w *world.World[float64], logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		w:         w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logger,
	}
}

func (d *Driver) World() *world.World[float64] { return d.w }

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }
func (d *Driver) SetScript(s Script)     { d.script = s }

// RunFor advances the world with a fixed dt until cfg.Duration and records a
// sample every cfg.SampleEvery ticks, plus the initial and final state.
func (d *Driver) RunFor(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Samples: make([]Sample, 0, steps/cfg.SampleEvery+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range d.metrics {
		m.Reset()
	}

	start := time.Now()
	rep := newReporter(cfg.ReportInterval, start)

	first := d.sample(0, cfg.Track)
	d.record(result, first)
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			d.finish(result, first, start)
			return result, ctx.Err()
		default:
		}

		if d.script != nil {
			if err := d.script.Advance(t); err != nil {
				d.finish(result, first, start)
				return result, &SimError{Step: i, Time: t, Wrapped: err}
			}
		}

		d.w.Update(cfg.Dt)
		t = float64(i+1) * cfg.Dt
		result.Steps++

		if (i+1)%cfg.SampleEvery == 0 || i == steps-1 {
			s := d.sample(t, cfg.Track)
			if !s.Valid() {
				d.finish(result, first, start)
				return result, &SimError{Step: i, Time: t, Wrapped: ErrDiverged}
			}
			d.record(result, s)
		}

		if now := time.Now(); rep.due(now) {
			d.report(rep.flush(now, result.Steps), t)
		}
	}

	d.finish(result, first, start)
	d.log.Info("run finished",
		zap.Int("steps", result.Steps),
		zap.Int("samples", len(result.Samples)),
		zap.Duration("elapsed", result.Elapsed),
		zap.Float64("energy_drift", result.EnergyDrift),
	)
	return result, nil
}

// Run advances the world in real time until ctx is canceled. Each tick uses the
// measured wall-clock time since the previous one, clamped to cfg.MaxDt; ticks
// shorter than cfg.Dt sleep off the difference.
func (d *Driver) Run(ctx context.Context, cfg Config) error {
	if err := validateLive(cfg); err != nil {
		return err
	}

	last := time.Now()
	rep := newReporter(cfg.ReportInterval, last)
	simTime := 0.0
	ticks := 0
	minTick := time.Duration(cfg.Dt * float64(time.Second))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if elapsed := time.Since(last); elapsed < minTick {
			time.Sleep(minTick - elapsed)
		}
		now := time.Now()
		dt := math.Min(now.Sub(last).Seconds(), cfg.MaxDt)
		last = now

		if d.script != nil {
			if err := d.script.Advance(simTime); err != nil {
				return &SimError{Step: ticks, Time: simTime, Wrapped: err}
			}
		}

		d.w.Update(dt)
		simTime += dt
		ticks++

		if cfg.SampleEvery > 0 && ticks%cfg.SampleEvery == 0 && len(d.observers) > 0 {
			s := d.sample(simTime, cfg.Track)
			for _, obs := range d.observers {
				obs.OnTick(s)
			}
		}

		if rep.due(now) {
			d.report(rep.flush(now, ticks), simTime)
		}
	}
}

// Report logs the current world statistics.
func (d *Driver) Report() {
	st := d.w.Stats()
	d.log.Info("world report",
		zap.Int("bodies", st.Bodies),
		zap.Int64("comparisons", st.Comparisons),
		zap.Float64("energy", st.Energy),
		zap.Stringer("momentum", st.Momentum),
		zap.Stringer("gravity", st.Gravity),
		zap.Bool("pairwise_gravity", st.PairwiseGravity),
		zap.Stringer("boundary", st.Boundary),
	)
}

func (d *Driver) sample(t float64, track int) Sample {
	st := d.w.Stats()
	s := Sample{
		Time:        t,
		Energy:      st.Energy,
		Momentum:    st.Momentum,
		Bodies:      st.Bodies,
		Comparisons: st.Comparisons,
	}
	if track >= 0 {
		if snap := d.w.Snapshot(); track < len(snap) {
			s.Tracked = snap[track].Position
		}
	}
	return s
}

func (d *Driver) record(r *Result, s Sample) {
	r.Samples = append(r.Samples, s)
	for _, m := range d.metrics {
		m.Observe(s)
	}
	for _, obs := range d.observers {
		obs.OnTick(s)
	}
}

func (d *Driver) finish(r *Result, first Sample, start time.Time) {
	r.Elapsed = time.Since(start)
	r.Final = d.w.Snapshot()
	if n := len(r.Samples); n > 0 && first.Energy != 0 {
		r.EnergyDrift = math.Abs(r.Samples[n-1].Energy-first.Energy) / math.Abs(first.Energy)
	}
	for _, m := range d.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func (d *Driver) report(tps float64, simTime float64) {
	st := d.w.Stats()
	frame := 0.0
	if tps > 0 {
		frame = 1000 / tps
	}
	d.log.Info("tick report",
		zap.Int64("comparisons", st.Comparisons),
		zap.Float64("ticks_per_sec", tps),
		zap.Float64("frame_ms", frame),
		zap.Float64("sim_time", simTime),
		zap.Int("bodies", st.Bodies),
		zap.Float64("energy", st.Energy),
		zap.Stringer("momentum", st.Momentum),
	)
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample interval must be positive, got %d", ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}

func validateLive(cfg Config) error {
	if cfg.Dt <= 0 || cfg.MaxDt < cfg.Dt {
		return fmt.Errorf("%w: need 0 < dt <= max_dt, got %f and %f", ErrInvalidConfig, cfg.Dt, cfg.MaxDt)
	}
	return nil
}

// reporter rate-limits the periodic tick report.
type reporter struct {
	every    time.Duration
	last     time.Time
	lastTick int
}

func newReporter(every time.Duration, now time.Time) *reporter {
	return &reporter{every: every, last: now}
}

func (r *reporter) due(now time.Time) bool {
	return r.every > 0 && now.Sub(r.last) >= r.every
}

// flush returns ticks per second since the previous report.
func (r *reporter) flush(now time.Time, ticks int) float64 {
	elapsed := now.Sub(r.last).Seconds()
	tps := 0.0
	if elapsed > 0 {
		tps = float64(ticks-r.lastTick) / elapsed
	}
	r.last, r.lastTick = now, ticks
	return tps
}
