package config

import (
	"sort"

	"github.com/san-kum/circlesim/internal/world"
)

const DefaultPreset = "orbit"

var Presets = map[string]*Config{
	// planet, satellite and a ball bouncing off the walls
	"orbit": preset("orbit", func(c *Config) {
		c.Run.Duration = 40
		c.Run.Track = 1
		c.Bodies = []BodyConfig{
			{Radius: 50, Mass: 1e17, X: 800, Y: 500},
			{Radius: 3, Mass: 100, X: 800, Y: 200, VX: 150},
			{Radius: 25, Mass: 625, X: 200, Y: 500, VX: 200},
		}
	}),
	"gas": preset("gas", func(c *Config) {
		c.Physics.PairwiseGravity = false
		c.Physics.CollisionRestitution = 1
		c.RandomBodies = 80
		c.Run.Duration = 20
		c.Run.Track = 0
	}),
	"rain": preset("rain", func(c *Config) {
		c.Physics.PairwiseGravity = false
		c.Physics.GravityY = world.EarthGravity * 20
		c.Physics.WallRestitution = 0.7
		c.Random.VelocityStdDev = 50
		c.RandomBodies = 40
		c.Run.Duration = 15
	}),
	"billiards": preset("billiards", func(c *Config) {
		c.Physics.PairwiseGravity = false
		c.Physics.CollisionRestitution = 0.95
		c.Physics.WallRestitution = 0.9
		c.Run.Track = 0
		c.Bodies = append([]BodyConfig{{Radius: 20, X: 300, Y: 450, VX: 900}}, rack(1100, 450, 20, 5)...)
	}),
	"cradle": preset("cradle", func(c *Config) {
		c.Physics.PairwiseGravity = false
		c.Physics.CollisionRestitution = 1
		c.Run.Duration = 10
		c.Run.Track = 5
		c.Bodies = []BodyConfig{
			{Radius: 20, X: 700, Y: 450},
			{Radius: 20, X: 740, Y: 450},
			{Radius: 20, X: 780, Y: 450},
			{Radius: 20, X: 820, Y: 450},
			{Radius: 20, X: 860, Y: 450},
			{Radius: 20, X: 300, Y: 450, VX: 300},
		}
	}),
	"torus": preset("torus", func(c *Config) {
		c.Arena.Boundary = world.Wrap.String()
		c.Physics.PairwiseGravity = false
		c.RandomBodies = 30
		c.Run.Duration = 20
		c.Run.Track = 0
	}),
}

func preset(name string, tweak func(*Config)) *Config {
	c := DefaultConfig()
	c.Scene = name
	tweak(c)
	return c
}

// rack lays out a triangle of rows balls pointing at -x, apex at (x, y).
func rack(x, y, r float64, rows int) []BodyConfig {
	var out []BodyConfig
	step := 2 * r
	for row := 0; row < rows; row++ {
		top := y - float64(row)*r
		for i := 0; i <= row; i++ {
			out = append(out, BodyConfig{Radius: r, X: x + float64(row)*step*0.87, Y: top + float64(i)*step})
		}
	}
	return out
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
