// Package storage keeps finished runs on disk, one directory per run:
// metadata.json, history.csv with the sampled diagnostics, and field.csv
// with the final fields.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/fieldsim/internal/diagnostics"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/grid"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	fieldFile    = "field.csv"
)

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("run not found")

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

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Shape        []int              `json:"shape"`
	Dx           float64            `json:"dx"`
	Params       engine.Params      `json:"params"`
	Potential    string             `json:"potential"`
	Boundary     string             `json:"boundary"`
	Stepper      string             `json:"stepper"`
	Companion    bool               `json:"companion"`
	Steps        int                `json:"steps"`
	Time         float64            `json:"time"`
	Stable       bool               `json:"stable"`
	BlowUpStep   int                `json:"blow_up_step,omitempty"`
	BlowUpReason string             `json:"blow_up_reason,omitempty"`
	LastGoodStep int                `json:"last_good_step"`
	Clamped      int                `json:"clamped"`
	ElapsedMs    int64              `json:"elapsed_ms"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Save writes a finished run and returns its id. A run that fails to
// write completely leaves nothing behind.
func (s *Store) Save(run experiment.Config, res *experiment.Result) (runID string, err error) {
	name := safeName(run.Name)
	runID = fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	meta := RunMetadata{
		ID:           runID,
		Name:         name,
		Timestamp:    time.Now(),
		Seed:         run.Seed,
		Shape:        res.Field.Shape(),
		Dx:           res.Field.Dx(),
		Params:       run.Engine.Params,
		Potential:    run.Engine.Potential.String(),
		Boundary:     run.Engine.Boundary.Profile.String(),
		Stepper:      stepperName(run.Engine.StepSizer),
		Companion:    res.Companion != nil,
		Steps:        res.Steps,
		Time:         res.Time,
		Stable:       res.Stable(),
		LastGoodStep: res.LastGoodStep,
		Clamped:      res.Clamped,
		ElapsedMs:    res.Elapsed.Milliseconds(),
		Metrics:      finiteOnly(res.Metrics),
	}
	if res.BlowUp != nil {
		meta.BlowUpStep = res.BlowUp.Step
		meta.BlowUpReason = res.BlowUp.Verdict.Reason.String()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), res.Samples); err != nil {
		return "", err
	}
	if err := writeField(filepath.Join(runDir, fieldFile), res.Field, res.Companion); err != nil {
		return "", err
	}
	return runID, nil
}

// safeName reduces a run name to characters that are safe in a single
// path element.
func safeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '=', r == ',':
			return r
		}
		return '_'
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "run"
	}
	return name
}

// finiteOnly drops NaN and ±Inf, which JSON cannot carry. A blown-up run
// keeps its non-finite extremes in history.csv.
func finiteOnly(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func stepperName(s engine.StepSizer) string {
	if s == nil {
		return engine.Fixed{}.Name()
	}
	return s.Name()
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

func format(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeHistory(path string, samples []diagnostics.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	probes := diagnostics.ProbeNames(samples)
	header := []string{"step", "time", "dt", "omega", "min", "max", "mean"}
	if err := w.Write(append(header, probes...)); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Step),
			format(smp.Time),
			format(smp.Dt),
			format(smp.Omega),
			format(smp.Min),
			format(smp.Max),
			format(smp.Mean),
		}
		for _, p := range probes {
			v, ok := smp.Probes[p]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, format(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var axisNames = []string{"x", "y", "z"}

func writeField(path string, c, comp *grid.Field) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string(nil), axisNames[:c.Dims()]...)
	header = append(header, "c")
	if comp != nil {
		header = append(header, "i")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	coord := make([]int, c.Dims())
	cv := c.Values()
	for idx := range cv {
		c.Coords(idx, coord)
		row := make([]string, 0, len(header))
		for _, x := range coord {
			row = append(row, strconv.Itoa(x))
		}
		row = append(row, format(cv[idx]))
		if comp != nil {
			row = append(row, format(comp.Values()[idx]))
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
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
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

// LoadHistory reads the sampled diagnostics back.
func (s *Store) LoadHistory(runID string) ([]diagnostics.Sample, error) {
	f, err := s.open(runID, historyFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s history: %w", runID, err)
	}
	if len(records) < 2 {
		return []diagnostics.Sample{}, nil
	}

	header := records[0]
	const fixed = 7
	out := make([]diagnostics.Sample, 0, len(records)-1)
	for line, rec := range records[1:] {
		vals := make([]float64, fixed)
		for j := 0; j < fixed; j++ {
			vals[j], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("history line %d column %s: %w", line+2, header[j], err)
			}
		}
		smp := diagnostics.Sample{
			Step:  int(vals[0]),
			Time:  vals[1],
			Dt:    vals[2],
			Omega: vals[3],
			Min:   vals[4],
			Max:   vals[5],
			Mean:  vals[6],
		}
		for j := fixed; j < len(rec) && j < len(header); j++ {
			if rec[j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("history line %d column %s: %w", line+2, header[j], err)
			}
			if smp.Probes == nil {
				smp.Probes = make(map[string]float64)
			}
			smp.Probes[header[j]] = v
		}
		out = append(out, smp)
	}
	return out, nil
}

// LoadField rebuilds the final primary field and, when stored, the
// companion. The grid spacing comes from the metadata.
func (s *Store) LoadField(runID string) (*grid.Field, *grid.Field, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.open(runID, fieldFile)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	c, err := grid.New(meta.Shape, meta.Dx)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	var comp *grid.Field
	if meta.Companion {
		comp, _ = grid.New(meta.Shape, meta.Dx)
	}

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s field: %w", runID, err)
	}
	dims := c.Dims()
	if len(header) < dims+1 || strings.Join(header[:dims], ",") != strings.Join(axisNames[:dims], ",") {
		return nil, nil, fmt.Errorf("run %s: unexpected field header %v", runID, header)
	}

	coord := make([]int, dims)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s field: %w", runID, err)
		}
		for a := 0; a < dims; a++ {
			coord[a], err = strconv.Atoi(rec[a])
			if err != nil {
				return nil, nil, fmt.Errorf("run %s field coordinate: %w", runID, err)
			}
			if coord[a] < 0 || coord[a] >= c.Extent(a) {
				return nil, nil, fmt.Errorf("run %s: coordinate %d out of range on axis %s", runID, coord[a], axisNames[a])
			}
		}
		v, err := strconv.ParseFloat(rec[dims], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("run %s field value: %w", runID, err)
		}
		c.Set(v, coord...)
		if comp != nil && len(rec) > dims+1 {
			iv, err := strconv.ParseFloat(rec[dims+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s companion value: %w", runID, err)
			}
			comp.Set(iv, coord...)
		}
	}
	return c, comp, nil
}
