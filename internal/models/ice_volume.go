package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/glacialsim/internal/dynamo"
	"github.com/san-kum/glacialsim/internal/integrators"
)

const iceVolumeModelName = "ice_volume"

// Relaxation is the per-regime relaxation timescale and reference volume.
type Relaxation struct {
	TauR float64
	VR   float64
}

// StateParams holds one Relaxation row per regime, indexed by GlacialState.
type StateParams [dynamo.NumStates]Relaxation

func DefaultStateParams() StateParams {
	var sp StateParams
	sp[dynamo.Interglacial] = Relaxation{TauR: 10, VR: 0}
	sp[dynamo.MildGlacial] = Relaxation{TauR: 50, VR: 1}
	sp[dynamo.FullGlacial] = Relaxation{TauR: 50, VR: 1}
	return sp
}

// IceVolumeParams configures an IceVolumeModel.
type IceVolumeParams struct {
	I0   float64
	I1   float64
	VMax float64
	// TauF is the forcing timescale.
	TauF float64
	// Dt is the integration step.
	Dt     float64
	States StateParams

	InitState dynamo.GlacialState
	V0        float64
}

func DefaultIceVolumeParams() IceVolumeParams {
	return IceVolumeParams{
		I0:     -0.75,
		I1:     0.0,
		VMax:   1.0,
		TauF:   25.0,
		Dt:     1.0,
		States: DefaultStateParams(),
	}
}

// IceVolumeModel couples a continuous ice volume v to the glacial regime:
//
//	dv/dt = (vR - v)/tauR - F/tauF
//
// where (tauR, vR) is the row of the state table for the current regime.
// v is not clamped and may go negative.
type IceVolumeModel struct {
	p       IceVolumeParams
	v       float64
	state   dynamo.GlacialState
	stepper integrators.Stepper
	t       float64
}

// NewIceVolumeModel validates p and builds the model. A nil stepper selects
// the legacy RK4 stepper.
func NewIceVolumeModel(p IceVolumeParams, stepper integrators.Stepper) (*IceVolumeModel, error) {
	if !p.InitState.Valid() {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrInvalidState, uint8(p.InitState))
	}
	if math.IsNaN(p.V0) || math.IsInf(p.V0, 0) {
		return nil, fmt.Errorf("%w: initial volume %v", dynamo.ErrNonFinite, p.V0)
	}
	if err := checkParams(iceVolumeParamMap(p)); err != nil {
		return nil, err
	}
	if stepper == nil {
		stepper = integrators.NewRK4()
	}

	return &IceVolumeModel{
		p:       p,
		v:       p.V0,
		state:   p.InitState,
		stepper: stepper,
	}, nil
}

func (m *IceVolumeModel) Name() string { return iceVolumeModelName }

func (m *IceVolumeModel) State() dynamo.GlacialState { return m.state }

func (m *IceVolumeModel) Volume() float64 { return m.v }

// Relaxation returns the active (tauR, vR), always the current regime's row.
func (m *IceVolumeModel) Relaxation() Relaxation {
	return m.p.States[m.state]
}

// Step integrates v over one Dt with the current regime's relaxation, then
// applies at most one transition using the new v. Only Insolation is read.
func (m *IceVolumeModel) Step(in dynamo.Inputs) dynamo.Snapshot {
	f := in.Insolation
	r := m.Relaxation()
	tauF := m.p.TauF

	dvdt := func(v, t float64) float64 {
		return (r.VR-v)/r.TauR - f/tauF
	}
	m.v = m.stepper.Step(dvdt, m.v, m.t, m.p.Dt)
	m.t += m.p.Dt

	switch {
	case m.state == dynamo.Interglacial && f < m.p.I0:
		m.transition(dynamo.MildGlacial)
	case m.state == dynamo.MildGlacial && m.v > m.p.VMax:
		m.transition(dynamo.FullGlacial)
	case m.state == dynamo.FullGlacial && f > m.p.I1:
		m.transition(dynamo.Interglacial)
	}

	return m.Snapshot()
}

// transition is the only place the regime changes. The active relaxation
// row follows the regime because Relaxation reads it from the table.
func (m *IceVolumeModel) transition(to dynamo.GlacialState) {
	m.state = to
}

func (m *IceVolumeModel) Snapshot() dynamo.Snapshot {
	r := m.Relaxation()
	return dynamo.Snapshot{
		State: m.state,
		Vars: map[string]float64{
			"v":     m.v,
			"tau_r": r.TauR,
			"v_r":   r.VR,
		},
	}
}

func (m *IceVolumeModel) GetParams() map[string]float64 {
	return iceVolumeParamMap(m.p)
}

func (m *IceVolumeModel) ValidateParam(name string, value float64) error {
	if _, ok := iceVolumeParamMap(m.p)[name]; !ok {
		return dynamo.UnknownParam(iceVolumeModelName, name)
	}
	return checkParam(name, value)
}

func (m *IceVolumeModel) SetParam(name string, value float64) error {
	if err := m.ValidateParam(name, value); err != nil {
		return err
	}
	switch name {
	case "i0":
		m.p.I0 = value
	case "i1":
		m.p.I1 = value
	case "vmax":
		m.p.VMax = value
	case "tau_f":
		m.p.TauF = value
	case "dt":
		m.p.Dt = value
	default:
		s, field, ok := parseRowParam(name)
		if !ok {
			return dynamo.UnknownParam(iceVolumeModelName, name)
		}
		if field == "tau_r" {
			m.p.States[s].TauR = value
		} else {
			m.p.States[s].VR = value
		}
	}
	return nil
}

func iceVolumeParamMap(p IceVolumeParams) map[string]float64 {
	params := map[string]float64{
		"i0":    p.I0,
		"i1":    p.I1,
		"vmax":  p.VMax,
		"tau_f": p.TauF,
		"dt":    p.Dt,
	}
	for s := dynamo.GlacialState(0); s < dynamo.NumStates; s++ {
		params["tau_r."+s.Label()] = p.States[s].TauR
		params["v_r."+s.Label()] = p.States[s].VR
	}
	return params
}

// parseRowParam splits names like "tau_r.g" into regime and field.
func parseRowParam(name string) (dynamo.GlacialState, string, bool) {
	field, label, ok := strings.Cut(name, ".")
	if !ok || (field != "tau_r" && field != "v_r") {
		return 0, "", false
	}
	for s := dynamo.GlacialState(0); s < dynamo.NumStates; s++ {
		if s.Label() == label {
			return s, field, true
		}
	}
	return 0, "", false
}
