package storage

import (
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/san-kum/circlesim/internal/sim"
	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	finalFile    = "final.csv"
)

var (
	seriesHeader = []string{"time", "energy", "momentum_x", "momentum_y", "bodies", "comparisons", "tracked_x", "tracked_y"}
	finalHeader  = []string{"x", "y", "vx", "vy", "radius", "mass"}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Boundary    string             `json:"boundary"`
	Bodies      int                `json:"bodies"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Fingerprint string             `json:"fingerprint"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewRunID returns scene_<8 hex chars of a random UUID>.
func NewRunID(scene string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%x", scene, id[:4])
}

// Fingerprint hashes the final body states so two runs can be compared for
// bit-identical outcomes.
func Fingerprint(bodies []world.BodyState[float64]) string {
	d := xxhash.New()
	var buf [8]byte
	for _, b := range bodies {
		for _, v := range [...]float64{b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y, b.Radius, b.Mass} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			d.Write(buf[:])
		}
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// Save writes a run directory and fills in ID, Timestamp, Steps, Bodies,
// EnergyDrift, Fingerprint and Metrics from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	meta.ID = NewRunID(meta.Scene)
	meta.Timestamp = time.Now()
	meta.Steps = result.Steps
	meta.Bodies = len(result.Final)
	meta.EnergyDrift = result.EnergyDrift
	meta.Fingerprint = Fingerprint(result.Final)
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	series := make([][]string, 0, len(result.Samples)+1)
	series = append(series, seriesHeader)
	for _, smp := range result.Samples {
		series = append(series, []string{
			formatFloat(smp.Time),
			formatFloat(smp.Energy),
			formatFloat(smp.Momentum.X),
			formatFloat(smp.Momentum.Y),
			strconv.Itoa(smp.Bodies),
			strconv.FormatInt(smp.Comparisons, 10),
			formatFloat(smp.Tracked.X),
			formatFloat(smp.Tracked.Y),
		})
	}
	if err := writeCSV(filepath.Join(runDir, seriesFile), series); err != nil {
		return "", err
	}

	final := make([][]string, 0, len(result.Final)+1)
	final = append(final, finalHeader)
	for _, b := range result.Final {
		final = append(final, []string{
			formatFloat(b.Position.X),
			formatFloat(b.Position.Y),
			formatFloat(b.Velocity.X),
			formatFloat(b.Velocity.Y),
			formatFloat(b.Radius),
			formatFloat(b.Mass),
		})
	}
	if err := writeCSV(filepath.Join(runDir, finalFile), final); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Latest returns the newest run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return &runs[0], nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSeries(runID string) ([]sim.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	samples := make([]sim.Sample, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(seriesHeader) {
			return nil, fmt.Errorf("run %s: series row %d has %d fields", runID, i+1, len(rec))
		}
		f, err := parseFloats(rec[:4])
		if err != nil {
			return nil, fmt.Errorf("run %s: series row %d: %w", runID, i+1, err)
		}
		bodies, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("run %s: series row %d: %w", runID, i+1, err)
		}
		comparisons, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: series row %d: %w", runID, i+1, err)
		}
		tracked, err := parseFloats(rec[6:8])
		if err != nil {
			return nil, fmt.Errorf("run %s: series row %d: %w", runID, i+1, err)
		}
		samples = append(samples, sim.Sample{
			Time:        f[0],
			Energy:      f[1],
			Momentum:    vec.New(f[2], f[3]),
			Bodies:      bodies,
			Comparisons: comparisons,
			Tracked:     vec.New(tracked[0], tracked[1]),
		})
	}
	return samples, nil
}

func (s *Store) LoadFinal(runID string) ([]world.BodyState[float64], error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	bodies := make([]world.BodyState[float64], 0, len(records))
	for i, rec := range records {
		f, err := parseFloats(rec)
		if err != nil || len(f) != len(finalHeader) {
			return nil, fmt.Errorf("run %s: final row %d is malformed", runID, i+1)
		}
		bodies = append(bodies, world.BodyState[float64]{
			Position: vec.New(f[0], f[1]),
			Velocity: vec.New(f[2], f[3]),
			Radius:   f[4],
			Mass:     f[5],
		})
	}
	return bodies, nil
}

// SeriesPath is the CSV holding a run's samples.
func (s *Store) SeriesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, seriesFile)
}

func notFound(runID string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns the records after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
