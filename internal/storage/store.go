package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/kinetic/internal/config"
	"github.com/san-kum/kinetic/internal/dynamo"
	"github.com/san-kum/kinetic/internal/metrics"
)

const (
	metadataFile      = "metadata.json"
	seriesFile        = "series.csv"
	finalFile         = "final.csv"
	distributionsFile = "distributions.json"
)

var seriesHeader = []string{"time", "energy", "pressure", "com_x", "com_y", "com_z", "wall_hits", "collisions"}

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
	ID              string             `json:"id"`
	Preset          string             `json:"preset"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	Particles       int                `json:"particles"`
	Box             dynamo.Box         `json:"box"`
	FinalBox        dynamo.Box         `json:"final_box"`
	VMax            float64            `json:"v_max"`
	Mass            float64            `json:"mass"`
	Collisions      bool               `json:"collisions"`
	Radius          float64            `json:"radius"`
	Collider        string             `json:"collider"`
	ApproachingOnly bool               `json:"approaching_only"`
	Frames          int                `json:"frames"`
	FramesTaken     int                `json:"frames_taken"`
	Dt              float64            `json:"dt"`
	TimeScale       float64            `json:"time_scale"`
	Events          int                `json:"events"`
	Metrics         map[string]float64 `json:"metrics"`
	Checksum        string             `json:"checksum"`
}

// Series is the per-frame record of a stored run.
type Series struct {
	Times        []float64
	Energy       []float64
	Pressure     []float64
	CenterOfMass []dynamo.Vec3
	WallHits     []int
	Collisions   []int
}

func NewRunID(preset string) string {
	if preset == "" {
		preset = "run"
	}
	return fmt.Sprintf("%s_%s", preset, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Save writes metadata, the per-frame series, the final particle state and,
// when given, the end-of-run distributions into a new run directory.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result, dist *metrics.Distributions) (string, error) {
	runID := NewRunID(cfg.Preset)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Preset:          cfg.Preset,
		Timestamp:       time.Now(),
		Seed:            cfg.Seed,
		Particles:       cfg.Particles,
		Box:             cfg.Box(),
		VMax:            cfg.VMax,
		Mass:            cfg.Mass,
		Collisions:      cfg.Collisions,
		Radius:          cfg.Radius,
		Collider:        cfg.Collider,
		ApproachingOnly: cfg.ApproachingOnly,
		Frames:          cfg.Frames,
		FramesTaken:     result.FramesTaken,
		Dt:              cfg.Dt,
		TimeScale:       cfg.TimeScale,
		Events:          len(cfg.Schedule),
		Metrics:         result.Metrics,
		Checksum:        fmt.Sprintf("%016x", result.Checksum),
	}
	if result.Final != nil {
		meta.FinalBox = result.Final.Box
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if result.Final != nil {
		if err := writeFinal(filepath.Join(runDir, finalFile), result.Final); err != nil {
			return "", err
		}
	}
	if dist != nil {
		if err := writeJSON(filepath.Join(runDir, distributionsFile), dist); err != nil {
			return "", err
		}
	}

	return runID, nil
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

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeSeries(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}

	for i := range result.Times {
		com := result.CenterOfMass[i]
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(result.Energy[i]),
			formatFloat(result.Pressure[i]),
			formatFloat(com.X),
			formatFloat(com.Y),
			formatFloat(com.Z),
			strconv.Itoa(result.WallHits[i]),
			strconv.Itoa(result.Collisions[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeFinal(path string, g *dynamo.Gas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	for i := range g.Pos {
		p, v := g.Pos[i], g.Vel[i]
		row := []string{
			formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
			formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) open(runID, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrRunNotFound, runID)
	}
	return f, err
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	f, err := s.open(runID, metadataFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var meta RunMetadata
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadDistributions(runID string) (*metrics.Distributions, error) {
	f, err := s.open(runID, distributionsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dist metrics.Distributions
	if err := json.NewDecoder(f).Decode(&dist); err != nil {
		return nil, fmt.Errorf("decode %s distributions: %w", runID, err)
	}
	return &dist, nil
}

func readRecords(f *os.File) ([][]string, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(record []string) ([]float64, error) {
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	f, err := s.open(runID, seriesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i, record := range records {
		if len(record) != len(seriesHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d fields, got %d", seriesFile, i+1, len(seriesHeader), len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", seriesFile, i+1, err)
		}
		series.Times = append(series.Times, vals[0])
		series.Energy = append(series.Energy, vals[1])
		series.Pressure = append(series.Pressure, vals[2])
		series.CenterOfMass = append(series.CenterOfMass, dynamo.Vec3{X: vals[3], Y: vals[4], Z: vals[5]})
		series.WallHits = append(series.WallHits, int(vals[6]))
		series.Collisions = append(series.Collisions, int(vals[7]))
	}

	return series, nil
}

// LoadFinal rebuilds the final gas of a run from final.csv and metadata.
func (s *Store) LoadFinal(runID string) (*dynamo.Gas, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := s.open(runID, finalFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, err
	}

	g := dynamo.NewGas(len(records), meta.FinalBox, meta.Mass)
	for i, record := range records {
		if len(record) != 6 {
			return nil, fmt.Errorf("%s row %d: expected 6 fields, got %d", finalFile, i+1, len(record))
		}
		vals, err := parseFloats(record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", finalFile, i+1, err)
		}
		g.Pos[i] = dynamo.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
		g.Vel[i] = dynamo.Vec3{X: vals[3], Y: vals[4], Z: vals[5]}
	}

	return g, nil
}
