package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/glacialsim/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		Model:   "state",
		Times:   []float64{0, 1000, 2000},
		Forcing: []float64{1, -1, 0.5},
		Snapshots: []dynamo.Snapshot{
			{State: dynamo.Interglacial, Vars: map[string]float64{"tc": 0}},
			{State: dynamo.MildGlacial, Vars: map[string]float64{"tc": 0}},
			{State: dynamo.MildGlacial, Vars: map[string]float64{"tc": 1000}},
		},
		Metrics: map[string]float64{"transitions": 1},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"msgpack", FormatMsgPack, false},
		{"mp", FormatMsgPack, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if FormatMsgPack.Ext() != ".msgpack" || FormatJSON.Ext() != ".json" {
		t.Error("unexpected extensions")
	}
}

func TestFromResult(t *testing.T) {
	data := FromResult("abc", "rk4", sampleResult())

	if data.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", data.Steps)
	}
	want := []string{"i", "g", "g"}
	for i, s := range data.States {
		if s != want[i] {
			t.Errorf("states[%d] = %s, want %s", i, s, want[i])
		}
	}
	if tc := data.Vars["tc"]; len(tc) != 3 || tc[2] != 1000 {
		t.Errorf("unexpected tc column %v", tc)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, FromResult("", "", sampleResult())); err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"model", "times", "forcing", "states", "vars", "metrics"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
	if _, ok := raw["id"]; ok {
		t.Error("empty id should be omitted")
	}
}

func TestMsgPackRoundTrip(t *testing.T) {
	in := FromResult("run-1", "euler", sampleResult())
	in.Vars["v"] = []float64{0.5, math.Inf(1), -2}

	var buf bytes.Buffer
	if err := Write(&buf, FormatMsgPack, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadMsgPack(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if out.ID != "run-1" || out.Integrator != "euler" || out.Steps != 3 {
		t.Errorf("header fields lost: %+v", out)
	}
	if !math.IsInf(out.Vars["v"][1], 1) {
		t.Error("msgpack should carry non-finite floats")
	}
	if out.Metrics["transitions"] != 1 {
		t.Errorf("metrics lost: %v", out.Metrics)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := WriteFile(path, FormatJSON, FromResult("", "", sampleResult())); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty file, got %v", err)
	}

	if err := Write(&bytes.Buffer{}, Format("xml"), ExportData{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
