package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/autoxsim/internal/dynamo"
	"github.com/san-kum/autoxsim/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
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
	ID        string             `json:"id"`
	Variant   string             `json:"variant"`
	Method    string             `json:"method"`
	Timestamp time.Time          `json:"timestamp"`
	Start     float64            `json:"start"`
	End       float64            `json:"end"`
	Samples   int                `json:"samples"`
	Tolerance dynamo.Tolerance   `json:"tolerance"`
	Rates     map[string]float64 `json:"rates"`
	Initial   map[string]float64 `json:"initial"`
	Species   []string           `json:"species"`
	Summary   metrics.Summary    `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
	Stats     dynamo.Stats       `json:"stats"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run id. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta *RunMetadata, traj *dynamo.Trajectory) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Variant, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 1; ; n++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Variant, now.UnixNano(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Species = traj.Species()
	meta.Samples = traj.Len()
	meta.Stats = traj.Stats()

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, traj); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes a time column followed by one column per species.
// Values keep full precision since most concentrations are far below 1e-6.
func WriteCSV(out io.Writer, traj *dynamo.Trajectory) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, traj.Species()...)
	if err := w.Write(header); err != nil {
		return err
	}

	var werr error
	traj.Each(func(_ int, t float64, x dynamo.State) {
		if werr != nil {
			return
		}
		row := make([]string, 0, len(x)+1)
		row = append(row, strconv.FormatFloat(t, 'g', -1, 64))
		for _, val := range x {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		werr = w.Write(row)
	})
	if werr != nil {
		return werr
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

// LoadTrajectory reads states.csv back; species come from the header.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: empty states file", runID)
	}

	species := records[0][1:]
	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}
		state := make(dynamo.State, len(record)-1)
		for j, field := range record[1:] {
			state[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d, %s: %w", runID, i+1, species[j], err)
			}
		}
		times = append(times, t)
		states = append(states, state)
	}

	return dynamo.NewTrajectory(times, states, species, dynamo.Stats{}), nil
}
