package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth          = 1600.0
	DefaultHeight         = 900.0
	DefaultDt             = 0.001
	DefaultMaxDt          = 0.02
	DefaultDuration       = 30.0
	DefaultFPS            = 30
	DefaultSampleEvery    = 10
	DefaultReportInterval = 5.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Scene        string        `yaml:"scene"`
	Arena        ArenaConfig   `yaml:"arena"`
	Physics      PhysicsConfig `yaml:"physics"`
	Random       RandomConfig  `yaml:"random"`
	Run          RunConfig     `yaml:"run"`
	Bodies       []BodyConfig  `yaml:"bodies,omitempty"`
	RandomBodies int           `yaml:"random_bodies"`
	Script       string        `yaml:"script,omitempty"`
}

type ArenaConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Boundary string  `yaml:"boundary"`
}

type PhysicsConfig struct {
	GravityX             float64 `yaml:"gravity_x"`
	GravityY             float64 `yaml:"gravity_y"`
	PairwiseGravity      bool    `yaml:"pairwise_gravity"`
	G                    float64 `yaml:"g"`
	WallRestitution      float64 `yaml:"wall_restitution"`
	CollisionRestitution float64 `yaml:"collision_restitution"`
}

type RandomConfig struct {
	RadiusMin      float64 `yaml:"radius_min"`
	RadiusMax      float64 `yaml:"radius_max"`
	PointRadiusMin float64 `yaml:"point_radius_min"`
	PointRadiusMax float64 `yaml:"point_radius_max"`
	VelocityStdDev float64 `yaml:"velocity_stddev"`
	Margin         float64 `yaml:"margin"`
}

type RunConfig struct {
	Dt             float64 `yaml:"dt"`
	MaxDt          float64 `yaml:"max_dt"`
	Duration       float64 `yaml:"duration"`
	Seed           int64   `yaml:"seed"`
	FPS            int     `yaml:"fps"`
	SampleEvery    int     `yaml:"sample_every"`
	Track          int     `yaml:"track"`
	ReportInterval float64 `yaml:"report_interval"`
}

// BodyConfig places one body explicitly. A zero mass means radius².
type BodyConfig struct {
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
}

func DefaultConfig() *Config {
	r := world.DefaultRandomOptions()
	return &Config{
		Scene: "custom",
		Arena: ArenaConfig{
			Width:    DefaultWidth,
			Height:   DefaultHeight,
			Boundary: world.Bounce.String(),
		},
		Physics: PhysicsConfig{
			PairwiseGravity:      true,
			G:                    world.GravitationalConstant,
			WallRestitution:      1,
			CollisionRestitution: 0.6,
		},
		Random: RandomConfig{
			RadiusMin:      r.RadiusMin,
			RadiusMax:      r.RadiusMax,
			PointRadiusMin: r.PointRadiusMin,
			PointRadiusMax: r.PointRadiusMax,
			VelocityStdDev: r.VelocityStdDev,
			Margin:         r.Margin,
		},
		Run: RunConfig{
			Dt:             DefaultDt,
			MaxDt:          DefaultMaxDt,
			Duration:       DefaultDuration,
			Seed:           1,
			FPS:            DefaultFPS,
			SampleEvery:    DefaultSampleEvery,
			Track:          -1,
			ReportInterval: DefaultReportInterval,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets can be tweaked by flags.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &out
}

func (c *Config) Validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("%w: arena %gx%g", ErrInvalidConfig, c.Arena.Width, c.Arena.Height)
	}
	if _, err := world.ParseBoundary(c.Arena.Boundary); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Run.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive", ErrInvalidConfig)
	}
	if c.Run.MaxDt < c.Run.Dt {
		return fmt.Errorf("%w: max_dt %g below dt %g", ErrInvalidConfig, c.Run.MaxDt, c.Run.Dt)
	}
	if c.Run.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	}
	if c.Run.FPS <= 0 || c.Run.SampleEvery <= 0 {
		return fmt.Errorf("%w: fps and sample_every must be positive", ErrInvalidConfig)
	}
	if c.RandomBodies < 0 {
		return fmt.Errorf("%w: random_bodies must be non-negative", ErrInvalidConfig)
	}
	if c.Run.Track >= len(c.Bodies)+c.RandomBodies {
		return fmt.Errorf("%w: track index %d out of range", ErrInvalidConfig, c.Run.Track)
	}
	for i, b := range c.Bodies {
		if b.Radius <= 0 || b.Mass < 0 {
			return fmt.Errorf("%w: body %d has radius %g mass %g", ErrInvalidConfig, i, b.Radius, b.Mass)
		}
	}
	opts, err := c.WorldOptions()
	if err == nil {
		err = opts.Validate()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WorldOptions converts the arena, physics and random sections.
func (c *Config) WorldOptions() (world.Options[float64], error) {
	boundary, err := world.ParseBoundary(c.Arena.Boundary)
	if err != nil {
		return world.Options[float64]{}, err
	}
	opts := world.DefaultOptions(c.Arena.Width, c.Arena.Height)
	opts.Boundary = boundary
	opts.Gravity = vec.New(c.Physics.GravityX, c.Physics.GravityY)
	opts.PairwiseGravity = c.Physics.PairwiseGravity
	opts.G = c.Physics.G
	opts.WallRestitution = c.Physics.WallRestitution
	opts.CollisionRestitution = c.Physics.CollisionRestitution
	opts.Random = world.RandomOptions{
		RadiusMin:      c.Random.RadiusMin,
		RadiusMax:      c.Random.RadiusMax,
		PointRadiusMin: c.Random.PointRadiusMin,
		PointRadiusMax: c.Random.PointRadiusMax,
		VelocityStdDev: c.Random.VelocityStdDev,
		Margin:         c.Random.Margin,
	}
	opts.Seed = c.Run.Seed
	return opts, nil
}

// Populate inserts the explicit bodies, then the random ones.
func (c *Config) Populate(w *world.World[float64]) error {
	for i, b := range c.Bodies {
		mass := b.Mass
		if mass == 0 {
			mass = b.Radius * b.Radius
		}
		if err := w.Insert(b.Radius, mass, vec.New(b.X, b.Y), vec.New(b.VX, b.VY)); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	for i := 0; i < c.RandomBodies; i++ {
		if err := w.InsertRandom(); err != nil {
			return err
		}
	}
	return nil
}
