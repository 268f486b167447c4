package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrUnknownAction = errors.New("automation: unknown action")

// Script is a timed list of world actions.
type Script struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Actions     []Action `yaml:"actions"`
}

// Action fires once when simulation time reaches At. Which fields matter
// depends on Do.
type Action struct {
	At     float64 `yaml:"at"`
	Do     string  `yaml:"do"`
	Count  int     `yaml:"count,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	Mass   float64 `yaml:"mass,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	VX     float64 `yaml:"vx,omitempty"`
	VY     float64 `yaml:"vy,omitempty"`
	Ratio  float64 `yaml:"ratio,omitempty"`
	On     bool    `yaml:"on,omitempty"`
	Mode   string  `yaml:"mode,omitempty"`
}

// Target is the part of a world a script can drive.
type Target interface {
	Insert(radius, mass float64, position, velocity vec.Vector2[float64]) error
	InsertRandom() error
	InsertAt(x, y, mass, radius float64) error
	Clear()
	ScaleAllVelocities(ratio float64)
	StopAll()
	SetGravity(g vec.Vector2[float64])
	NudgeGravity(d vec.Vector2[float64])
	SetPairwiseGravity(on bool)
	SetBoundary(b world.Boundary)
}

var _ Target = (*world.World[float64])(nil)

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

func (s *Script) Validate() error {
	for i, a := range s.Actions {
		if a.At < 0 {
			return fmt.Errorf("action %d: negative time %g", i+1, a.At)
		}
		switch strings.ToLower(a.Do) {
		case "insert":
			if a.Radius <= 0 {
				return fmt.Errorf("action %d: insert needs a positive radius", i+1)
			}
		case "insert_random":
			if a.Count < 0 {
				return fmt.Errorf("action %d: negative count", i+1)
			}
		case "energize":
			if a.Ratio < 0 {
				return fmt.Errorf("action %d: negative ratio", i+1)
			}
		case "boundary":
			if _, err := world.ParseBoundary(a.Mode); err != nil {
				return fmt.Errorf("action %d: %w", i+1, err)
			}
		case "insert_at", "clear", "halt", "gravity", "nudge_gravity", "pairwise_gravity":
		default:
			return fmt.Errorf("action %d: %w: %q", i+1, ErrUnknownAction, a.Do)
		}
	}
	return nil
}

// Apply performs a single action on t.
func Apply(t Target, a Action) error {
	switch strings.ToLower(a.Do) {
	case "insert":
		mass := a.Mass
		if mass == 0 {
			mass = a.Radius * a.Radius
		}
		return t.Insert(a.Radius, mass, vec.New(a.X, a.Y), vec.New(a.VX, a.VY))
	case "insert_random":
		n := a.Count
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			if err := t.InsertRandom(); err != nil {
				return err
			}
		}
	case "insert_at":
		return t.InsertAt(a.X, a.Y, a.Mass, a.Radius)
	case "clear":
		t.Clear()
	case "energize":
		t.ScaleAllVelocities(a.Ratio)
	case "halt":
		t.StopAll()
	case "gravity":
		t.SetGravity(vec.New(a.X, a.Y))
	case "nudge_gravity":
		t.NudgeGravity(vec.New(a.X, a.Y))
	case "pairwise_gravity":
		t.SetPairwiseGravity(a.On)
	case "boundary":
		b, err := world.ParseBoundary(a.Mode)
		if err != nil {
			return err
		}
		t.SetBoundary(b)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Do)
	}
	return nil
}

// Player fires the actions of a script in time order.
type Player struct {
	target  Target
	actions []Action
	next    int
	log     *zap.Logger
}

func NewPlayer(s *Script, t Target, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	actions := append([]Action(nil), s.Actions...)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].At < actions[j].At })
	return &Player{target: t, actions: actions, log: logger.With(zap.String("script", s.Name))}
}

// Advance applies every pending action with At <= now.
func (p *Player) Advance(now float64) error {
	for p.next < len(p.actions) && p.actions[p.next].At <= now {
		a := p.actions[p.next]
		p.next++
		if err := Apply(p.target, a); err != nil {
			return fmt.Errorf("action %q at %g: %w", a.Do, a.At, err)
		}
		p.log.Debug("action applied", zap.String("do", a.Do), zap.Float64("at", a.At), zap.Float64("now", now))
	}
	return nil
}

// Done reports whether every action has fired.
func (p *Player) Done() bool { return p.next >= len(p.actions) }

func (p *Player) Pending() int { return len(p.actions) - p.next }
