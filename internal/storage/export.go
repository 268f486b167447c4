package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/circlesim/internal/sim"
	"github.com/san-kum/circlesim/internal/world"
)

type ExportBody struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Mass   float64 `json:"mass"`
}

type ExportSample struct {
	Time        float64    `json:"time"`
	Energy      float64    `json:"energy"`
	Momentum    [2]float64 `json:"momentum"`
	Bodies      int        `json:"bodies"`
	Comparisons int64      `json:"comparisons"`
	Tracked     [2]float64 `json:"tracked"`
}

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
	Final   []ExportBody   `json:"final"`
}

// ExportJSON writes a run with its series and final state as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample, final []world.BodyState[float64]) error {
	data := ExportData{
		Run:     meta,
		Samples: make([]ExportSample, len(samples)),
		Final:   make([]ExportBody, len(final)),
	}

	for i, s := range samples {
		data.Samples[i] = ExportSample{
			Time:        s.Time,
			Energy:      s.Energy,
			Momentum:    [2]float64{s.Momentum.X, s.Momentum.Y},
			Bodies:      s.Bodies,
			Comparisons: s.Comparisons,
			Tracked:     [2]float64{s.Tracked.X, s.Tracked.Y},
		}
	}
	for i, b := range final {
		data.Final[i] = ExportBody{
			X:      b.Position.X,
			Y:      b.Position.Y,
			VX:     b.Velocity.X,
			VY:     b.Velocity.Y,
			Radius: b.Radius,
			Mass:   b.Mass,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportRun loads a stored run and exports it.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}
	final, err := s.LoadFinal(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, *meta, samples, final)
}
