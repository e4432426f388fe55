package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/fieldsim/internal/boundary"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/initial"
	"github.com/san-kum/fieldsim/internal/metrics"
)

func finishedRun(t *testing.T) (experiment.Config, *experiment.Result) {
	t.Helper()
	p := engine.DefaultParams()
	ec := engine.NewConfig([]int{6, 5}, 0.2, p, boundary.Driven)
	vals, err := initial.Build(ec.Shape, ec.Dx, initial.Spec{Kind: initial.Noise, Base: 1, Amplitude: 0.05, Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	ec.Initial = vals
	ec.Probes = metrics.Default(metrics.Options{C0: p.C0})
	run := experiment.Config{Name: "test", Engine: ec, Steps: 10, Seed: 42}

	res, err := experiment.NewRunner(slog.New(slog.NewTextHandler(io.Discard, nil))).Run(context.Background(), run)
	if err != nil {
		t.Fatal(err)
	}
	return run, res
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run, res := finishedRun(t)
	runID, err := st.Save(run, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Boundary != "driven" || meta.Potential != "quadratic" || meta.Stepper != "fixed" {
		t.Errorf("unexpected strategy names %+v", meta)
	}
	if !meta.Stable || meta.Steps != 10 || !meta.Companion {
		t.Errorf("unexpected outcome %+v", meta)
	}
	if meta.Metrics["omega"] != res.FinalOmega {
		t.Errorf("expected omega %v, got %v", res.FinalOmega, meta.Metrics["omega"])
	}

	history, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != len(res.Samples) {
		t.Fatalf("expected %d samples, got %d", len(res.Samples), len(history))
	}
	last, want := history[len(history)-1], res.Samples[len(res.Samples)-1]
	if last.Step != want.Step || last.Omega != want.Omega || last.Time != want.Time {
		t.Errorf("sample mismatch: %+v vs %+v", last, want)
	}
	if last.Probes["kinetic_proxy"] != want.Probes["kinetic_proxy"] {
		t.Errorf("probe mismatch: %v vs %v", last.Probes, want.Probes)
	}

	c, comp, err := st.LoadField(runID)
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	if !c.SameShape(res.Field) || comp == nil {
		t.Fatalf("unexpected field shape %v", c.Shape())
	}
	for i, v := range res.Field.Values() {
		if c.Values()[i] != v || comp.Values()[i] != res.Companion.Values()[i] {
			t.Fatalf("field value %d differs", i)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty store: %v, %v", runs, err)
	}

	run, res := finishedRun(t)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(run, res); err != nil {
			t.Fatal(err)
		}
	}
	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID == runs[1].ID {
		t.Errorf("expected two distinct runs, got %v", runs)
	}
}

func TestSaveKeepsRunsInsideStore(t *testing.T) {
	base := filepath.Join(t.TempDir(), "data")
	st := New(base)
	run, res := finishedRun(t)

	for _, name := range []string{"../escape", "/abs/path", "a/b\\c", "..", ""} {
		run.Name = name
		runID, err := st.Save(run, res)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if strings.ContainsAny(runID, "/\\") || strings.HasPrefix(runID, ".") {
			t.Errorf("%q: unsafe run id %q", name, runID)
		}
		if _, err := os.Stat(filepath.Join(base, runID, metadataFile)); err != nil {
			t.Errorf("%q: run not stored under the data dir: %v", name, err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(base))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("files written outside the data dir: %v", entries)
	}
}

func TestSaveCleansUpOnFailure(t *testing.T) {
	base := t.TempDir()
	st := New(base)
	run, res := finishedRun(t)
	run.Engine.Params.Beta = math.NaN()

	runID, err := st.Save(run, res)
	if err == nil {
		t.Fatal("expected metadata encoding to fail")
	}
	if runID != "" {
		t.Errorf("expected empty id on failure, got %q", runID)
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("half-written run left behind: %v", entries)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadHistory("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	run, res := finishedRun(t)
	runID, err := st.Save(run, res)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID, true); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var out struct {
		Metadata RunMetadata `json:"metadata"`
		History  []struct {
			Step  int     `json:"step"`
			Omega float64 `json:"omega"`
		} `json:"history"`
		Field []float64 `json:"field"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Metadata.ID != runID || len(out.History) != len(res.Samples) || len(out.Field) != 30 {
		t.Errorf("unexpected export %+v", out.Metadata)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := st.ExportFile(path, runID, false); err != nil {
		t.Fatal(err)
	}
}

func TestJSONFloatNonFinite(t *testing.T) {
	b, err := json.Marshal([]jsonFloat{1.5, jsonFloat(math.NaN()), jsonFloat(math.Inf(1))})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[1.5,null,null]" {
		t.Errorf("got %s", b)
	}
	if got := finiteOnly(map[string]float64{"a": 1, "b": math.NaN()}); len(got) != 1 {
		t.Errorf("got %v", got)
	}
}
