package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/fieldsim/internal/diagnostics"
)

// jsonFloat encodes NaN and ±Inf as null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type ExportSample struct {
	Step   int                  `json:"step"`
	Time   jsonFloat            `json:"time"`
	Dt     jsonFloat            `json:"dt"`
	Omega  jsonFloat            `json:"omega"`
	Min    jsonFloat            `json:"min"`
	Max    jsonFloat            `json:"max"`
	Mean   jsonFloat            `json:"mean"`
	Probes map[string]jsonFloat `json:"probes,omitempty"`
}

type ExportData struct {
	Metadata RunMetadata    `json:"metadata"`
	History  []ExportSample `json:"history"`
	Field    []jsonFloat    `json:"field,omitempty"`
}

func exportSample(s diagnostics.Sample) ExportSample {
	out := ExportSample{
		Step:  s.Step,
		Time:  jsonFloat(s.Time),
		Dt:    jsonFloat(s.Dt),
		Omega: jsonFloat(s.Omega),
		Min:   jsonFloat(s.Min),
		Max:   jsonFloat(s.Max),
		Mean:  jsonFloat(s.Mean),
	}
	if len(s.Probes) > 0 {
		out.Probes = make(map[string]jsonFloat, len(s.Probes))
		for k, v := range s.Probes {
			out.Probes[k] = jsonFloat(v)
		}
	}
	return out
}

// Export writes a stored run as one JSON document. The final field is
// included only when withField is set.
func (s *Store) Export(w io.Writer, runID string, withField bool) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}
	data := ExportData{Metadata: *meta, History: make([]ExportSample, len(history))}
	for i, smp := range history {
		data.History[i] = exportSample(smp)
	}
	if withField {
		c, _, err := s.LoadField(runID)
		if err != nil {
			return err
		}
		data.Field = make([]jsonFloat, c.Len())
		for i, v := range c.Values() {
			data.Field[i] = jsonFloat(v)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportFile is Export into a newly created file.
func (s *Store) ExportFile(path, runID string, withField bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Export(f, runID, withField); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
