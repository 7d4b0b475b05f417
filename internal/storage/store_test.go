package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/oscsim/internal/config"
	"github.com/san-kum/oscsim/internal/experiment"
)

func runPreset(t *testing.T, model, preset string) *experiment.Result {
	t.Helper()
	cfg := config.GetPreset(model, preset)
	cfg.Duration = 5
	exp, err := experiment.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestSaveLoad(t *testing.T) {
	s := New(t.TempDir())
	s.now = fixedClock(time.Unix(1700000000, 0).UTC())
	res := runPreset(t, config.ModelPendulum, "large")

	id, err := s.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	if id != "pendulum_1700000000" {
		t.Errorf("unexpected run id %q", id)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != id || meta.Report.Model != config.ModelPendulum {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Report.Samples != res.Trajectory.Len() {
		t.Errorf("samples = %d, want %d", meta.Report.Samples, res.Trajectory.Len())
	}
	if _, ok := meta.Report.Periods["exact"]; !ok {
		t.Error("exact period missing from report")
	}

	cfg, err := s.LoadConfig(id)
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *res.Config {
		t.Errorf("config mismatch:\n got %+v\nwant %+v", cfg, res.Config)
	}

	points, err := s.LoadSeries(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != res.Series.Len() {
		t.Fatalf("loaded %d points, want %d", len(points), res.Series.Len())
	}
	for i, p := range points {
		if p != res.Series.At(i) {
			t.Fatalf("point %d: got %+v, want %+v", i, p, res.Series.At(i))
		}
	}
}

func TestSaveSameSecond(t *testing.T) {
	s := New(t.TempDir())
	s.now = fixedClock(time.Unix(1700000000, 0))
	res := runPreset(t, config.ModelSpring, "free")

	first, err := s.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(res)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("run ids collide: %s", first)
	}
	if second != first+"-1" {
		t.Errorf("second id = %q", second)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	runs, err := New(dir + "/missing").List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("missing dir: runs=%v err=%v", runs, err)
	}

	res := runPreset(t, config.ModelSpring, "underdamped")
	for _, sec := range []int64{300, 100, 200} {
		s.now = fixedClock(time.Unix(sec, 0))
		if _, err := s.Save(res); err != nil {
			t.Fatal(err)
		}
	}

	runs, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"spring_100", "spring_200", "spring_300"}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs", len(runs))
	}
	for i, r := range runs {
		if r.ID != want[i] {
			t.Errorf("run %d = %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); err == nil {
		t.Error("expected error")
	}
	if _, err := s.LoadSeries("nope"); err == nil {
		t.Error("expected error")
	}
}

func TestCSV(t *testing.T) {
	res := runPreset(t, config.ModelSpring, "driven")

	var buf bytes.Buffer
	if err := WriteCSV(&buf, res.Series); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "t,x,v,kinetic,potential,total" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != res.Series.Len()+1 {
		t.Errorf("got %d lines, want %d", len(lines), res.Series.Len()+1)
	}

	points, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if points[len(points)-1] != res.Series.At(res.Series.Len()-1) {
		t.Error("last point does not round trip")
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad number", "t,x,v,kinetic,potential,total\n0,1,2,3,4,five\n"},
		{"short row", "t,x,v,kinetic,potential,total\n0,1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	s := New(t.TempDir())
	res := runPreset(t, config.ModelSpring, "critical")
	id, err := s.Save(res)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportJSON(&buf, id); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != id || got.Report.Model != config.ModelSpring {
		t.Errorf("metadata mismatch: %+v", got.RunMetadata)
	}
	if len(got.Samples) != res.Series.Len() {
		t.Fatalf("got %d samples, want %d", len(got.Samples), res.Series.Len())
	}
	if got.Samples[1] != res.Series.At(1) {
		t.Errorf("sample 1 = %+v, want %+v", got.Samples[1], res.Series.At(1))
	}
	if !strings.Contains(buf.String(), `"kinetic"`) {
		t.Error("expected lower-case sample keys")
	}

	if err := s.ExportJSON(&buf, "missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestSaveAsLabel(t *testing.T) {
	s := New(t.TempDir())
	s.now = fixedClock(time.Unix(42, 0))
	id, err := s.SaveAs(runPreset(t, config.ModelPendulum, "small"), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	if id != "baseline_42" {
		t.Errorf("id = %q", id)
	}
	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Label != "baseline" {
		t.Errorf("label = %q", meta.Label)
	}
}

func TestSaveAsRejectsPathLabel(t *testing.T) {
	s := New(t.TempDir())
	res := runPreset(t, config.ModelPendulum, "small")
	for _, label := range []string{"../escape", "a/b", ".."} {
		if _, err := s.SaveAs(res, label); err == nil {
			t.Errorf("label %q accepted", label)
		}
	}
}

// unencodableParams reports a NaN parameter, which JSON cannot represent.
type unencodableParams struct{ experiment.Model }

func (unencodableParams) ParamMap() map[string]float64 {
	return map[string]float64{"length": math.NaN()}
}

func TestSaveFailureLeavesNoRunDir(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	res := runPreset(t, config.ModelPendulum, "small")
	res.Model = unencodableParams{res.Model}

	if _, err := s.Save(res); err == nil {
		t.Fatal("expected metadata encoding to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("half-written run left behind: %v", entries)
	}
}
