package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/diagnostics"
	"github.com/san-kum/oscsim/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	samplesFile  = "samples.csv"
)

var csvHeader = []string{"t", "x", "v", "kinetic", "potential", "total"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string            `json:"id"`
	Label     string            `json:"label,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Report    experiment.Report `json:"report"`
}

// Save writes a run directory holding the report, the config that produced
// the run and one CSV row per sample. It returns the run ID.
func (s *Store) Save(res *experiment.Result) (string, error) {
	return s.SaveAs(res, "")
}

// SaveAs is Save with a label; a non-empty label replaces the model name in
// the run ID.
func (s *Store) SaveAs(res *experiment.Result, label string) (string, error) {
	prefix := res.Config.Model
	if label != "" {
		if label != filepath.Base(label) || label == "." || label == ".." {
			return "", fmt.Errorf("invalid run label %q", label)
		}
		prefix = label
	}

	now := s.now()
	runDir, runID, err := s.makeRunDir(fmt.Sprintf("%s_%d", prefix, now.Unix()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: now,
		Report:    res.Report(),
	}
	if err := writeRun(runDir, meta, res); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			return "", errors.Join(err, rmErr)
		}
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, res *experiment.Result) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if err := config.Save(filepath.Join(runDir, configFile), res.Config); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, res.Series); err != nil {
		return err
	}
	return csvFile.Sync()
}

// makeRunDir creates a fresh directory, suffixing the ID when two runs land in
// the same second.
func (s *Store) makeRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for i := 1; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, id, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

// List returns the readable runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadSeries(runID string) ([]diagnostics.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// WriteCSV writes one row per sample. Values are printed in shortest
// round-trip form so ReadCSV recovers them bit for bit.
func WriteCSV(w io.Writer, series diagnostics.Series) error {
	return WritePoints(w, series.Points())
}

func WritePoints(w io.Writer, points []diagnostics.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for _, p := range points {
		for j, v := range []float64{p.T, p.Position, p.Velocity, p.Kinetic, p.Potential, p.Total} {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]diagnostics.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	points := make([]diagnostics.Point, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [6]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, csvHeader[j], err)
			}
			vals[j] = v
		}
		points = append(points, diagnostics.Point{
			T:         vals[0],
			Position:  vals[1],
			Velocity:  vals[2],
			Kinetic:   vals[3],
			Potential: vals[4],
			Total:     vals[5],
		})
	}
	return points, nil
}
