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

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/peaks"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrAmbiguous = errors.New("storage: run id prefix is ambiguous")
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

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was configured.
type RunInfo struct {
	Integrator string             `json:"integrator"`
	Plateau    string             `json:"plateau"`
	Preset     string             `json:"preset,omitempty"`
	Params     map[string]float64 `json:"params"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Steps   int                `json:"steps"`
	Vars    []string           `json:"vars"`
	Metrics map[string]float64 `json:"metrics"`
}

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var fixedColumns = []string{"time", "forcing", "state", "level"}

func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var vars []string
	if len(result.Snapshots) > 0 {
		vars = result.Snapshots[0].VarNames()
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     result.Model,
		Timestamp: time.Now().UTC(),
		RunInfo:   info,
		Steps:     len(result.Snapshots),
		Vars:      vars,
		Metrics:   result.Metrics,
	}

	err := writeJSON(filepath.Join(runDir, metadataFile), meta)
	if err == nil {
		err = writeStates(filepath.Join(runDir, statesFile), vars, result)
	}
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run: %w", err)
	}
	return runID, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, vars []string, result *dynamo.Result) (err error) {
	n := len(result.Snapshots)
	if len(result.Times) < n || len(result.Forcing) < n {
		return fmt.Errorf("%w: %d snapshots, %d times, %d forcing values",
			dynamo.ErrLengthMismatch, n, len(result.Times), len(result.Forcing))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string(nil), fixedColumns...), vars...)); err != nil {
		return err
	}

	for i, snap := range result.Snapshots {
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(result.Forcing[i]),
			snap.State.Label(),
			formatFloat(snap.State.Level()),
		}
		for _, name := range vars {
			v, ok := snap.Vars[name]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every stored run, newest first.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Resolve expands a unique run id prefix to the full id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}
	if _, err := uuid.Parse(prefix); err == nil {
		return prefix, nil
	}

	runs, err := s.List()
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range runs {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
		}
		match = r.ID
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResult rebuilds the stored run. Peak indices are recomputed from the
// forcing with the run's plateau mode.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
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

	result := &dynamo.Result{Model: meta.Model, Metrics: meta.Metrics}
	if len(records) < 2 {
		return result, nil
	}

	header := records[0]
	if len(header) < len(fixedColumns) {
		return nil, fmt.Errorf("storage: %s: malformed header", runID)
	}
	vars := header[len(fixedColumns):]

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("storage: %s: row %d has %d fields", runID, i+1, len(record))
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: row %d: %w", runID, i+1, err)
		}
		ins, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s: row %d: %w", runID, i+1, err)
		}
		state, err := dynamo.ParseGlacialState(record[2])
		if err != nil {
			return nil, fmt.Errorf("storage: %s: row %d: %w", runID, i+1, err)
		}

		snap := dynamo.Snapshot{State: state, Vars: make(map[string]float64, len(vars))}
		for j, name := range vars {
			cell := record[len(fixedColumns)+j]
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s: row %d: %w", runID, i+1, err)
			}
			snap.Vars[name] = v
		}

		result.Times = append(result.Times, t)
		result.Forcing = append(result.Forcing, ins)
		result.Snapshots = append(result.Snapshots, snap)
	}

	mode, err := peaks.ParsePlateauMode(meta.Plateau)
	if err != nil {
		mode = peaks.PlateauStrict
	}
	result.PeakIdx, _ = peaks.Locate(result.Forcing, mode)
	result.StepsTaken = len(result.Snapshots) - 1
	return result, nil
}

// Delete removes a stored run.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}
