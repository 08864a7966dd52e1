package models

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/integrators"
)

func nan() float64 { return math.NaN() }

func newIceVolume(t *testing.T, mutate func(p *IceVolumeParams)) *IceVolumeModel {
	t.Helper()
	p := DefaultIceVolumeParams()
	if mutate != nil {
		mutate(&p)
	}
	m, err := NewIceVolumeModel(p, nil)
	if err != nil {
		t.Fatalf("NewIceVolumeModel: %v", err)
	}
	return m
}

func TestIceVolumeInitialState(t *testing.T) {
	m := newIceVolume(t, nil)

	if m.State() != dynamo.Interglacial {
		t.Errorf("expected interglacial, got %v", m.State())
	}
	snap := m.Snapshot()
	if snap.Vars["v"] != 0 || snap.Vars["tau_r"] != 10 || snap.Vars["v_r"] != 0 {
		t.Errorf("unexpected initial snapshot %+v", snap.Vars)
	}
}

func TestIceVolumeInterglacialToMild(t *testing.T) {
	m := newIceVolume(t, func(p *IceVolumeParams) { p.I0 = 0.5 })

	snap := m.Step(dynamo.Inputs{Insolation: 0.0})

	if snap.State != dynamo.MildGlacial {
		t.Fatalf("expected mild glacial, got %v", snap.State)
	}
	if snap.Vars["tau_r"] != 50 || snap.Vars["v_r"] != 1 {
		t.Errorf("relaxation row did not follow the regime: %+v", snap.Vars)
	}
}

func TestIceVolumeMildToFull(t *testing.T) {
	for _, f := range []float64{-2, -1, 0, 0.5, 1, 2} {
		m := newIceVolume(t, func(p *IceVolumeParams) {
			p.InitState = dynamo.MildGlacial
			p.VMax = 1.0
			p.V0 = 2.0
		})

		snap := m.Step(dynamo.Inputs{Insolation: f})
		if snap.State != dynamo.FullGlacial {
			t.Errorf("insolation %v: expected full glacial, got %v (v=%v)", f, snap.State, snap.Vars["v"])
		}
	}
}

func TestIceVolumeFullToInterglacial(t *testing.T) {
	m := newIceVolume(t, func(p *IceVolumeParams) {
		p.I1 = -1.0
		p.InitState = dynamo.FullGlacial
	})

	snap := m.Step(dynamo.Inputs{Insolation: 0.0})

	if snap.State != dynamo.Interglacial {
		t.Errorf("expected interglacial, got %v", snap.State)
	}
	if r := m.Relaxation(); r != DefaultStateParams()[dynamo.Interglacial] {
		t.Errorf("active relaxation %+v, want interglacial row", r)
	}
}

func TestIceVolumeIgnoresHistoryInputs(t *testing.T) {
	a := newIceVolume(t, nil)
	b := newIceVolume(t, nil)

	sa := a.Step(dynamo.NewInputs(0.3, 5).WithPeak(9))
	sb := b.Step(dynamo.Inputs{Insolation: 0.3})

	if sa.Vars["v"] != sb.Vars["v"] || sa.State != sb.State {
		t.Errorf("previous/peak inputs changed the step: %+v vs %+v", sa, sb)
	}
}

func TestIceVolumeIntegration(t *testing.T) {
	p := DefaultIceVolumeParams()
	m, err := NewIceVolumeModel(p, integrators.NewEuler())
	if err != nil {
		t.Fatal(err)
	}

	// dv/dt = (0 - 0)/10 - 1/25
	snap := m.Step(dynamo.Inputs{Insolation: 1})
	if math.Abs(snap.Vars["v"]+0.04) > 1e-12 {
		t.Errorf("v = %v, want -0.04", snap.Vars["v"])
	}
}

func TestIceVolumeIsNotClamped(t *testing.T) {
	m := newIceVolume(t, nil)

	for i := 0; i < 50; i++ {
		m.Step(dynamo.Inputs{Insolation: 5})
	}

	if m.Volume() >= 0 {
		t.Errorf("expected strong positive forcing to drive v negative, got %v", m.Volume())
	}
}

func TestIceVolumeConstructionErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *IceVolumeParams)
		want   error
	}{
		{"nan volume", func(p *IceVolumeParams) { p.V0 = math.NaN() }, dynamo.ErrNonFinite},
		{"inf volume", func(p *IceVolumeParams) { p.V0 = math.Inf(1) }, dynamo.ErrNonFinite},
		{"state out of range", func(p *IceVolumeParams) { p.InitState = dynamo.GlacialState(3) }, dynamo.ErrInvalidState},
		{"nan threshold", func(p *IceVolumeParams) { p.I1 = math.NaN() }, dynamo.ErrNonFinite},
		{"zero step", func(p *IceVolumeParams) { p.Dt = 0 }, dynamo.ErrInvalidParam},
		{"zero forcing scale", func(p *IceVolumeParams) { p.TauF = 0 }, dynamo.ErrInvalidParam},
		{"negative relaxation", func(p *IceVolumeParams) { p.States[dynamo.MildGlacial].TauR = -50 }, dynamo.ErrInvalidParam},
		{"zero relaxation", func(p *IceVolumeParams) { p.States[dynamo.Interglacial].TauR = 0 }, dynamo.ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultIceVolumeParams()
			tt.mutate(&p)
			m, err := NewIceVolumeModel(p, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if m != nil {
				t.Error("expected no model on construction error")
			}
		})
	}
}

func TestIceVolumeSetParam(t *testing.T) {
	m := newIceVolume(t, func(p *IceVolumeParams) { p.InitState = dynamo.MildGlacial })

	if err := m.SetParam("tau_r.g", 20); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if err := m.SetParam("v_r.g", 2); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if r := m.Relaxation(); r.TauR != 20 || r.VR != 2 {
		t.Errorf("active relaxation %+v, want {20 2}", r)
	}

	for _, name := range []string{"tau_r.x", "tau_r.", "tg", "v_r.interglacial"} {
		if err := m.SetParam(name, 1); !errors.Is(err, dynamo.ErrUnknownParam) {
			t.Errorf("SetParam(%q): expected ErrUnknownParam, got %v", name, err)
		}
	}

	for _, name := range []string{"dt", "tau_f", "tau_r.i", "tau_r.g", "tau_r.G"} {
		for _, v := range []float64{0, -1} {
			if err := m.SetParam(name, v); !errors.Is(err, dynamo.ErrInvalidParam) {
				t.Errorf("SetParam(%q, %v): expected ErrInvalidParam, got %v", name, v, err)
			}
		}
	}
	// volumes and thresholds may take any sign
	for _, name := range []string{"v_r.i", "i0", "vmax"} {
		if err := m.SetParam(name, -0.5); err != nil {
			t.Errorf("SetParam(%q, -0.5): %v", name, err)
		}
	}
	if r := m.Relaxation(); r.TauR != 20 {
		t.Errorf("rejected tau_r changed the active row: %+v", r)
	}
	snap := m.Step(dynamo.NewInputs(0, 0))
	if !snap.IsValid() {
		t.Errorf("snapshot invalid after rejected overrides: %+v", snap)
	}

	params := m.GetParams()
	for _, name := range []string{"i0", "i1", "vmax", "tau_f", "dt", "tau_r.i", "tau_r.g", "tau_r.G", "v_r.i", "v_r.g", "v_r.G"} {
		if _, ok := params[name]; !ok {
			t.Errorf("GetParams missing %q", name)
		}
	}
}
