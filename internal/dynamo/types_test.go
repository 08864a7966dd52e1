package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestGlacialStateLabels(t *testing.T) {
	tests := []struct {
		state GlacialState
		label string
		level float64
		next  GlacialState
	}{
		{Interglacial, "i", 2, MildGlacial},
		{MildGlacial, "g", 1, FullGlacial},
		{FullGlacial, "G", 0, Interglacial},
	}

	for _, tt := range tests {
		if got := tt.state.Label(); got != tt.label {
			t.Errorf("%v.Label() = %q, want %q", tt.state, got, tt.label)
		}
		if got := tt.state.Level(); got != tt.level {
			t.Errorf("%v.Level() = %v, want %v", tt.state, got, tt.level)
		}
		if got := tt.state.Next(); got != tt.next {
			t.Errorf("%v.Next() = %v, want %v", tt.state, got, tt.next)
		}
	}
}

func TestParseGlacialState(t *testing.T) {
	for in, want := range map[string]GlacialState{
		"i":            Interglacial,
		"g":            MildGlacial,
		"G":            FullGlacial,
		"interglacial": Interglacial,
		"Full_Glacial": FullGlacial,
	} {
		got, err := ParseGlacialState(in)
		if err != nil || got != want {
			t.Errorf("ParseGlacialState(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	for _, in := range []string{"", "x", "I", "glacial"} {
		if _, err := ParseGlacialState(in); !errors.Is(err, ErrInvalidState) {
			t.Errorf("ParseGlacialState(%q): expected ErrInvalidState, got %v", in, err)
		}
	}
}

func TestGlacialStateValid(t *testing.T) {
	if GlacialState(3).Valid() {
		t.Error("state 3 should be invalid")
	}
	if _, err := GlacialState(9).MarshalText(); err == nil {
		t.Error("expected MarshalText to reject an invalid state")
	}

	var s GlacialState
	if err := s.UnmarshalText([]byte("G")); err != nil || s != FullGlacial {
		t.Errorf("UnmarshalText(G) = %v, %v", s, err)
	}
}

func TestSnapshotIsValid(t *testing.T) {
	tests := []struct {
		name  string
		snap  Snapshot
		valid bool
	}{
		{"no vars", Snapshot{State: MildGlacial}, true},
		{"finite", Snapshot{State: Interglacial, Vars: map[string]float64{"v": -3}}, true},
		{"with NaN", Snapshot{Vars: map[string]float64{"v": math.NaN()}}, false},
		{"with +Inf", Snapshot{Vars: map[string]float64{"v": math.Inf(1)}}, false},
		{"bad state", Snapshot{State: GlacialState(4)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSnapshotClone(t *testing.T) {
	s := Snapshot{State: FullGlacial, Vars: map[string]float64{"v": 1, "tau_r": 50}}
	c := s.Clone()
	c.Vars["v"] = 99

	if s.Vars["v"] != 1 {
		t.Error("Clone shares the vars map")
	}
	if names := s.VarNames(); len(names) != 2 || names[0] != "tau_r" || names[1] != "v" {
		t.Errorf("VarNames() = %v", names)
	}
}

func TestInputsPeak(t *testing.T) {
	in := NewInputs(0.1, 0.2)
	if in.HasPreviousPeak() {
		t.Error("NewInputs should carry no peak")
	}
	if !(in.InsolationPreviousPeak < -1e300) {
		t.Error("absent peak should compare below any threshold")
	}
	if !in.WithPeak(0.5).HasPreviousPeak() {
		t.Error("WithPeak should set a peak")
	}
}

func TestResultSeries(t *testing.T) {
	r := &Result{Snapshots: []Snapshot{
		{State: Interglacial, Vars: map[string]float64{"v": 0}},
		{State: MildGlacial},
	}}

	v := r.Series("v")
	if v[0] != 0 || !math.IsNaN(v[1]) {
		t.Errorf("Series(v) = %v", v)
	}
	if st := r.States(); st[1] != MildGlacial {
		t.Errorf("States() = %v", st)
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimulationError should unwrap to its cause")
	}
	if err.Error() != "step 150 (t=1.5): dynamo: invalid state" {
		t.Errorf("Error() = %q", err.Error())
	}
}
